// Package prep runs one meeting preparation request end to end.
package prep

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/rahul/meetprep/internal/agent"
	"github.com/rahul/meetprep/internal/governance"
	"github.com/rahul/meetprep/internal/meeting"
	"github.com/rahul/meetprep/internal/observability"
	"github.com/rahul/meetprep/internal/plan"
	"github.com/rahul/meetprep/internal/relevance"
	"github.com/rahul/meetprep/internal/store"
	"github.com/rahul/meetprep/internal/tools"
	"github.com/tmc/langchaingo/llms"
)

// MissingCredentialsWarning is shown instead of running anything.
const MissingCredentialsWarning = "Please enter both API keys before proceeding."

var ErrMissingCredentials = errors.New("missing API credentials")

// Credentials are passed by value into every run; nothing is exported to the
// process environment.
type Credentials struct {
	LLMAPIKey    string
	SearchAPIKey string
}

// Or fills empty fields from fallback.
func (c Credentials) Or(fallback Credentials) Credentials {
	if c.LLMAPIKey == "" {
		c.LLMAPIKey = fallback.LLMAPIKey
	}
	if c.SearchAPIKey == "" {
		c.SearchAPIKey = fallback.SearchAPIKey
	}
	return c
}

type ModelFactory func(apiKey string) (llms.Model, error)

type SearchFactory func(apiKey string) (tools.Searcher, error)

// Journal receives finished runs.
type Journal interface {
	Record(run store.Run) error
}

type Service struct {
	Assembler      *plan.Assembler
	NewModel       ModelFactory
	NewSearcher    SearchFactory
	SearchProvider string
	Policy         governance.PolicyEngine
	Logger         *observability.Logger
	Options        agent.Options
	Journal        Journal
}

// Outcome is what a boundary renders. Result.Output is the brief.
type Outcome struct {
	RunID   string
	Verdict bool
	Plan    plan.Plan
	Result  agent.Result
}

// CheckCredentials reports ErrMissingCredentials when a key the configured
// providers need is empty.
func (s *Service) CheckCredentials(creds Credentials) error {
	if creds.LLMAPIKey == "" {
		return ErrMissingCredentials
	}
	if tools.RequiresKey(s.SearchProvider) && creds.SearchAPIKey == "" {
		return ErrMissingCredentials
	}
	return nil
}

// Plan classifies the request and assembles its plan without running it.
func (s *Service) Plan(req meeting.Request) (bool, plan.Plan) {
	verdict := relevance.ClassifyRequest(req)
	return verdict, s.Assembler.Build(verdict, req)
}

// Prepare runs the whole pipeline and blocks until the final stage is done.
func (s *Service) Prepare(ctx context.Context, creds Credentials, req meeting.Request) (Outcome, error) {
	if err := s.CheckCredentials(creds); err != nil {
		return Outcome{}, err
	}

	runID := uuid.NewString()
	verdict, p := s.Plan(req)
	s.Logger.LogPlan(runID, verdict, p.StageIDs(), relevance.Matches(req.CompanyName, req.Objective, req.FocusAreas))
	log.Printf("[Run %s] %s: sector relevant=%v, %d stages", runID, req.CompanyName, verdict, len(p.Stages))

	out := Outcome{RunID: runID, Verdict: verdict, Plan: p}

	crew, err := s.crew(creds)
	if err != nil {
		observability.CountRun(verdict, "error")
		return out, err
	}

	res, err := crew.Kickoff(ctx, runID, p.Tasks())
	if err != nil {
		observability.CountRun(verdict, "error")
		return out, fmt.Errorf("run %s: %w", runID, err)
	}
	observability.CountRun(verdict, "ok")
	out.Result = res

	if s.Journal != nil {
		err := s.Journal.Record(store.Run{
			RunID:      runID,
			Company:    req.CompanyName,
			Objective:  req.Objective,
			Verdict:    verdict,
			StageCount: len(p.Stages),
			Brief:      res.Output,
		})
		if err != nil {
			log.Printf("Warning: failed to journal run %s: %v", runID, err)
		}
	}

	return out, nil
}

func (s *Service) crew(creds Credentials) (*agent.Crew, error) {
	model, err := s.NewModel(creds.LLMAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize model: %w", err)
	}

	registry := tools.NewRegistry()
	if s.NewSearcher != nil {
		searcher, err := s.NewSearcher(creds.SearchAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize search tool: %w", err)
		}
		registry.Register(tools.NewSearchTool(searcher, s.SearchProvider))
	}
	registry.Register(tools.NewScraperTool())

	return agent.NewCrew(model, registry, s.Policy, s.Logger, s.Options), nil
}
