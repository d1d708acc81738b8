package meeting

import (
	"errors"
	"fmt"
	"strings"
)

const (
	MinDuration     = 15
	MaxDuration     = 180
	DurationStep    = 15
	DefaultDuration = 60
)

var (
	ErrMissingCompany     = errors.New("company name is required")
	ErrDurationOutOfRange = fmt.Errorf("duration must be between %d and %d minutes", MinDuration, MaxDuration)
	ErrDurationStep       = fmt.Errorf("duration must be a multiple of %d minutes", DurationStep)
)

// Attendee is one person expected in the meeting.
type Attendee struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// Request holds the meeting parameters collected at the input boundary.
type Request struct {
	CompanyName     string     `json:"company_name"`
	Objective       string     `json:"objective"`
	Attendees       []Attendee `json:"attendees"`
	DurationMinutes int        `json:"duration_minutes"`
	FocusAreas      string     `json:"focus_areas"`
}

// NewRequest copies the attendee list so later edits by the caller do not
// leak into a submitted request.
func NewRequest(company, objective string, attendees []Attendee, duration int, focus string) Request {
	return Request{
		CompanyName:     company,
		Objective:       objective,
		Attendees:       append([]Attendee(nil), attendees...),
		DurationMinutes: duration,
		FocusAreas:      focus,
	}
}

// Validate checks the request the way the form inputs constrain it.
// The plan assembler never calls this.
func Validate(req Request) error {
	if strings.TrimSpace(req.CompanyName) == "" {
		return ErrMissingCompany
	}
	if req.DurationMinutes < MinDuration || req.DurationMinutes > MaxDuration {
		return ErrDurationOutOfRange
	}
	if req.DurationMinutes%DurationStep != 0 {
		return ErrDurationStep
	}
	return nil
}

var attendeeSeparators = []string{" - ", " – ", ":", ","}

// ParseAttendees reads one attendee per line. Accepted forms are
// "Name - Role", "Name: Role", "Name, Role" and "Name (Role)".
func ParseAttendees(text string) []Attendee {
	var out []Attendee
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*• ")
		if line == "" {
			continue
		}
		out = append(out, parseAttendee(line))
	}
	return out
}

func parseAttendee(line string) Attendee {
	if open := strings.LastIndex(line, "("); open > 0 && strings.HasSuffix(line, ")") {
		return Attendee{
			Name: strings.TrimSpace(line[:open]),
			Role: strings.TrimSpace(line[open+1 : len(line)-1]),
		}
	}
	for _, sep := range attendeeSeparators {
		if name, role, ok := strings.Cut(line, sep); ok {
			return Attendee{Name: strings.TrimSpace(name), Role: strings.TrimSpace(role)}
		}
	}
	return Attendee{Name: line}
}

// FormatAttendees renders the attendee list as markdown bullets.
func FormatAttendees(attendees []Attendee) string {
	if len(attendees) == 0 {
		return "Not specified"
	}
	lines := make([]string, 0, len(attendees))
	for _, a := range attendees {
		if a.Role == "" {
			lines = append(lines, "- "+a.Name)
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s (%s)", a.Name, a.Role))
	}
	return strings.Join(lines, "\n")
}
