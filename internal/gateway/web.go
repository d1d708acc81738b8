package gateway

import (
	"context"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/microcosm-cc/bluemonday"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rahul/meetprep/internal/meeting"
	"github.com/rahul/meetprep/internal/prep"
	"github.com/russross/blackfriday/v2"
)

var formTemplate = template.Must(template.New("form").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Castolin Meeting Preparation</title></head>
<body>
<h1>Castolin Meeting Preparation</h1>
{{if .Warning}}<p class="warning">{{.Warning}}</p>{{end}}
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<form method="post" action="/prepare">
  <fieldset>
    <legend>API keys</legend>
    <label>LLM API key <input type="password" name="llm_api_key" placeholder="{{if .HasLLMKey}}configured{{end}}"></label>
    <label>Search API key <input type="password" name="search_api_key" placeholder="{{if .HasSearchKey}}configured{{end}}"></label>
  </fieldset>
  <label>Company name <input type="text" name="company_name" value="{{.Form.CompanyName}}"></label>
  <label>Meeting objective <textarea name="objective">{{.Form.Objective}}</textarea></label>
  <label>Attendees (one per line, "Name - Role") <textarea name="attendees">{{.Form.Attendees}}</textarea></label>
  <label>Duration (minutes) <input type="number" name="duration_minutes" min="15" max="180" step="15" value="{{.Form.Duration}}"></label>
  <label>Focus areas <textarea name="focus_areas">{{.Form.FocusAreas}}</textarea></label>
  <button type="submit">Prepare Meeting</button>
</form>
{{if .Brief}}
<hr>
<h2>Executive brief</h2>
<div class="brief">{{.Brief}}</div>
{{end}}
</body>
</html>
`))

type formValues struct {
	CompanyName string
	Objective   string
	Attendees   string
	Duration    int
	FocusAreas  string
}

type formPage struct {
	Form         formValues
	Warning      string
	Error        string
	Brief        template.HTML
	HasLLMKey    bool
	HasSearchKey bool
}

// WebGateway serves the preparation form.
type WebGateway struct {
	Preparer   Preparer
	Configured prep.Credentials
	server     *http.Server
}

func NewWebGateway(p Preparer, configured prep.Credentials) *WebGateway {
	return &WebGateway{Preparer: p, Configured: configured}
}

// Router returns the HTTP routes.
func (wg *WebGateway) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/", wg.handleForm).Methods("GET")
	router.HandleFunc("/prepare", wg.handlePrepare).Methods("POST")
	router.HandleFunc("/healthz", handleHealth).Methods("GET")
	router.Handle("/metrics", promhttp.Handler())
	return router
}

// ListenAndServe blocks until the server stops. It returns nil after Shutdown.
func (wg *WebGateway) ListenAndServe(addr string) error {
	wg.server = &http.Server{
		Addr:              addr,
		Handler:           wg.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("Web form listening on %s", addr)
	if err := wg.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (wg *WebGateway) Shutdown(ctx context.Context) error {
	if wg.server == nil {
		return nil
	}
	return wg.server.Shutdown(ctx)
}

func (wg *WebGateway) page(form formValues) formPage {
	return formPage{
		Form:         form,
		HasLLMKey:    wg.Configured.LLMAPIKey != "",
		HasSearchKey: wg.Configured.SearchAPIKey != "",
	}
}

func (wg *WebGateway) handleForm(w http.ResponseWriter, r *http.Request) {
	wg.render(w, http.StatusOK, wg.page(formValues{Duration: meeting.DefaultDuration}))
}

func (wg *WebGateway) handlePrepare(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	form := formValues{
		CompanyName: strings.TrimSpace(r.PostFormValue("company_name")),
		Objective:   strings.TrimSpace(r.PostFormValue("objective")),
		Attendees:   r.PostFormValue("attendees"),
		FocusAreas:  strings.TrimSpace(r.PostFormValue("focus_areas")),
		Duration:    meeting.DefaultDuration,
	}
	page := wg.page(form)

	if raw := strings.TrimSpace(r.PostFormValue("duration_minutes")); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil {
			page.Error = "Duration must be a whole number of minutes."
			wg.render(w, http.StatusBadRequest, page)
			return
		}
		page.Form.Duration = d
	}

	creds := prep.Credentials{
		LLMAPIKey:    r.PostFormValue("llm_api_key"),
		SearchAPIKey: r.PostFormValue("search_api_key"),
	}.Or(wg.Configured)
	if err := wg.Preparer.CheckCredentials(creds); err != nil {
		page.Warning = prep.MissingCredentialsWarning
		wg.render(w, http.StatusOK, page)
		return
	}

	req := meeting.NewRequest(form.CompanyName, form.Objective, meeting.ParseAttendees(form.Attendees), page.Form.Duration, form.FocusAreas)
	if err := meeting.Validate(req); err != nil {
		page.Error = validationMessage(err)
		wg.render(w, http.StatusBadRequest, page)
		return
	}

	out, err := wg.Preparer.Prepare(r.Context(), creds, req)
	if err != nil {
		log.Printf("Error preparing meeting for %s: %v", req.CompanyName, err)
		page.Error = "Preparation failed: " + err.Error()
		wg.render(w, http.StatusBadGateway, page)
		return
	}
	page.Brief = renderBrief(out.Result.Output)
	wg.render(w, http.StatusOK, page)
}

func (wg *WebGateway) render(w http.ResponseWriter, status int, page formPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := formTemplate.Execute(w, page); err != nil {
		log.Printf("Error rendering form: %v", err)
	}
}

var briefPolicy = bluemonday.UGCPolicy()

// renderBrief formats the markdown brief as sanitised HTML.
func renderBrief(markdown string) template.HTML {
	unsafe := blackfriday.Run([]byte(markdown))
	return template.HTML(briefPolicy.SanitizeBytes(unsafe))
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, meeting.ErrMissingCompany):
		return "Company name is required."
	case errors.Is(err, meeting.ErrDurationOutOfRange), errors.Is(err, meeting.ErrDurationStep):
		return "Duration must be between 15 and 180 minutes in steps of 15."
	default:
		return err.Error()
	}
}
