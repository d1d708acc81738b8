package meeting

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name     string
		duration int
		company  string
		want     error
	}{
		{"lower bound", 15, "Holcim", nil},
		{"upper bound", 180, "Holcim", nil},
		{"default", DefaultDuration, "Holcim", nil},
		{"below range", 0, "Holcim", ErrDurationOutOfRange},
		{"above range", 195, "Holcim", ErrDurationOutOfRange},
		{"off step", 50, "Holcim", ErrDurationStep},
		{"blank company", 60, "   ", ErrMissingCompany},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := Request{CompanyName: tc.company, DurationMinutes: tc.duration}
			err := Validate(req)
			if !errors.Is(err, tc.want) {
				t.Errorf("Validate(%d) = %v, want %v", tc.duration, err, tc.want)
			}
		})
	}
}

func TestParseAttendees(t *testing.T) {
	input := "Jane Doe - Plant Manager\n\nJohn Roe: CFO\n* Ana Lima, Buyer\nMax Mustermann (Engineer)\nSolo"

	got := ParseAttendees(input)
	want := []Attendee{
		{"Jane Doe", "Plant Manager"},
		{"John Roe", "CFO"},
		{"Ana Lima", "Buyer"},
		{"Max Mustermann", "Engineer"},
		{"Solo", ""},
	}

	if len(got) != len(want) {
		t.Fatalf("got %d attendees, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("attendee %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestNewRequestCopiesAttendees(t *testing.T) {
	attendees := []Attendee{{Name: "Jane Doe", Role: "Plant Manager"}}
	req := NewRequest("CEMEX", "kiln repair", attendees, 60, "")

	attendees[0].Name = "Changed"
	if req.Attendees[0].Name != "Jane Doe" {
		t.Errorf("request attendee mutated through caller slice: %q", req.Attendees[0].Name)
	}
}

func TestFormatAttendees(t *testing.T) {
	if got := FormatAttendees(nil); got != "Not specified" {
		t.Errorf("empty list = %q", got)
	}
	got := FormatAttendees([]Attendee{{"Jane Doe", "Plant Manager"}, {"Solo", ""}})
	want := "- Jane Doe (Plant Manager)\n- Solo"
	if got != want {
		t.Errorf("FormatAttendees = %q, want %q", got, want)
	}
}
