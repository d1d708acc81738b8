package prep

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rahul/meetprep/internal/agent"
	"github.com/rahul/meetprep/internal/meeting"
	"github.com/rahul/meetprep/internal/observability"
	"github.com/rahul/meetprep/internal/plan"
	"github.com/rahul/meetprep/internal/store"
	"github.com/rahul/meetprep/internal/tools"
	"github.com/rahul/meetprep/pkg/config"
	"github.com/tmc/langchaingo/llms"
)

// countingModel records the stage input (the first human message) of every call.
type countingModel struct {
	calls  int
	err    error
	inputs []string
}

func (m *countingModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.calls++
	m.inputs = append(m.inputs, humanInput(messages))
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "output " + strings.Repeat("#", m.calls)}}}, nil
}

func (m *countingModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func humanInput(messages []llms.MessageContent) string {
	for _, msg := range messages {
		if msg.Role != llms.ChatMessageTypeHuman {
			continue
		}
		var parts []string
		for _, p := range msg.Parts {
			if t, ok := p.(llms.TextContent); ok {
				parts = append(parts, t.Text)
			}
		}
		return strings.Join(parts, "\n")
	}
	return ""
}

// stageInput returns what the model saw for stage id of p.
func stageInput(t *testing.T, model *countingModel, p plan.Plan, id string) string {
	t.Helper()
	for i, s := range p.Stages {
		if s.ID == id {
			return model.inputs[i]
		}
	}
	t.Fatalf("stage %s not in plan", id)
	return ""
}

type memJournal struct {
	runs []store.Run
}

func (j *memJournal) Record(run store.Run) error {
	j.runs = append(j.runs, run)
	return nil
}

type nopSearcher struct{}

func (nopSearcher) Call(ctx context.Context, query string) (string, error) { return "", nil }

func newTestService(t *testing.T, model *countingModel, journal Journal) (*Service, *int) {
	t.Helper()
	assembler, err := plan.NewAssembler(plan.NewPromptManager(""))
	if err != nil {
		t.Fatal(err)
	}
	factoryCalls := 0
	return &Service{
		Assembler: assembler,
		NewModel: func(apiKey string) (llms.Model, error) {
			factoryCalls++
			if apiKey != "llm-key" {
				t.Errorf("model factory got key %q", apiKey)
			}
			return model, nil
		},
		NewSearcher: func(apiKey string) (tools.Searcher, error) {
			return nopSearcher{}, nil
		},
		SearchProvider: tools.ProviderSerper,
		Logger:         observability.NewLogger("").WithOutput(&bytes.Buffer{}),
		Options:        agent.DefaultOptions(),
		Journal:        journal,
	}, &factoryCalls
}

func cemex() meeting.Request {
	return meeting.NewRequest("CEMEX", "discuss kiln repair partnership",
		[]meeting.Attendee{{Name: "Jane Doe", Role: "Plant Manager"}}, 60, "downtime reduction")
}

func TestPrepare_MissingCredentials(t *testing.T) {
	model := &countingModel{}
	svc, factoryCalls := newTestService(t, model, nil)

	for _, creds := range []Credentials{
		{},
		{LLMAPIKey: "llm-key"},
		{SearchAPIKey: "search-key"},
	} {
		_, err := svc.Prepare(context.Background(), creds, cemex())
		if !errors.Is(err, ErrMissingCredentials) {
			t.Errorf("creds %+v: expected ErrMissingCredentials, got %v", creds, err)
		}
	}
	if *factoryCalls != 0 || model.calls != 0 {
		t.Error("nothing should run without both keys")
	}
}

func TestPrepare_DuckDuckGoNeedsNoSearchKey(t *testing.T) {
	svc, _ := newTestService(t, &countingModel{}, nil)
	svc.SearchProvider = tools.ProviderDuckDuckGo
	if err := svc.CheckCredentials(Credentials{LLMAPIKey: "llm-key"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPrepare_RelevantRun(t *testing.T) {
	model := &countingModel{}
	journal := &memJournal{}
	svc, _ := newTestService(t, model, journal)

	out, err := svc.Prepare(context.Background(), Credentials{LLMAPIKey: "llm-key", SearchAPIKey: "search-key"}, cemex())
	if err != nil {
		t.Fatal(err)
	}

	if !out.Verdict || len(out.Plan.Stages) != 5 || out.Plan.Stages[0].ID != plan.StageInternalData {
		t.Fatalf("unexpected plan: verdict=%v stages=%v", out.Verdict, out.Plan.StageIDs())
	}
	if model.calls != 5 {
		t.Errorf("expected one model call per stage, got %d", model.calls)
	}
	if out.Result.Output != "output #####" {
		t.Errorf("brief should be the final stage output, got %q", out.Result.Output)
	}
	if out.RunID == "" {
		t.Error("run ID should be set")
	}

	for i, input := range model.inputs {
		if !strings.Contains(input, "CEMEX") {
			t.Errorf("stage %s input does not name the company", out.Plan.Stages[i].ID)
		}
	}
	if in := stageInput(t, model, out.Plan, plan.StageInternalData); !strings.Contains(in, "applications_records:") {
		t.Error("internal-data stage should receive the hub dataset")
	}
	if in := stageInput(t, model, out.Plan, plan.StageContextAnalysis); !strings.Contains(in, plan.InternalClauseRelevant) {
		t.Error("context stage should receive the relevant internal clause")
	}
	brief := stageInput(t, model, out.Plan, plan.StageExecutiveBrief)
	if !strings.Contains(brief, plan.ROIClauseRelevant) || strings.Contains(brief, plan.ROIClauseIrrelevant) {
		t.Error("brief stage should receive the relevant ROI clause only")
	}
	if !strings.Contains(brief, "output ####") {
		t.Error("brief stage should receive the strategy output as context")
	}

	if len(journal.runs) != 1 {
		t.Fatalf("expected one journal entry, got %d", len(journal.runs))
	}
	if r := journal.runs[0]; r.RunID != out.RunID || !r.Verdict || r.StageCount != 5 || r.Brief != out.Result.Output {
		t.Errorf("unexpected journal entry: %+v", r)
	}
}

func TestPrepare_IrrelevantRun(t *testing.T) {
	model := &countingModel{}
	svc, _ := newTestService(t, model, nil)

	req := meeting.NewRequest("Acme Software", "pricing strategy", nil, 30, "")
	out, err := svc.Prepare(context.Background(), Credentials{LLMAPIKey: "llm-key", SearchAPIKey: "k"}, req)
	if err != nil {
		t.Fatal(err)
	}
	if out.Verdict || len(out.Plan.Stages) != 4 || model.calls != 4 {
		t.Fatalf("verdict=%v stages=%d calls=%d", out.Verdict, len(out.Plan.Stages), model.calls)
	}

	for i, input := range model.inputs {
		if !strings.Contains(input, "Acme Software") {
			t.Errorf("stage %s input does not name the company", out.Plan.Stages[i].ID)
		}
	}
	if in := stageInput(t, model, out.Plan, plan.StageContextAnalysis); !strings.Contains(in, plan.InternalClauseIrrelevant) {
		t.Error("context stage should receive the irrelevant internal clause")
	}
	brief := stageInput(t, model, out.Plan, plan.StageExecutiveBrief)
	if !strings.Contains(brief, plan.ROIClauseIrrelevant) || strings.Contains(brief, plan.ROIClauseRelevant) {
		t.Error("brief stage should receive the irrelevant ROI clause only")
	}
	if !strings.Contains(brief, "30-minute meeting") {
		t.Error("brief stage should carry the duration")
	}
}

func TestPrepare_ModelFailurePropagates(t *testing.T) {
	journal := &memJournal{}
	svc, _ := newTestService(t, &countingModel{err: errors.New("overloaded")}, journal)

	_, err := svc.Prepare(context.Background(), Credentials{LLMAPIKey: "llm-key", SearchAPIKey: "k"}, cemex())
	if err == nil || !strings.Contains(err.Error(), "overloaded") {
		t.Fatalf("expected model error, got %v", err)
	}
	if len(journal.runs) != 0 {
		t.Error("failed runs must not be journaled")
	}
}

func TestCredentialsOr(t *testing.T) {
	got := Credentials{LLMAPIKey: "form"}.Or(Credentials{LLMAPIKey: "cfg", SearchAPIKey: "cfg-search"})
	if got.LLMAPIKey != "form" || got.SearchAPIKey != "cfg-search" {
		t.Errorf("Or = %+v", got)
	}
}

func TestNewService_FromConfig(t *testing.T) {
	cfg := config.Default()
	svc, err := NewService(cfg, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if svc.SearchProvider != tools.ProviderSerper || svc.Options.Temperature != 0.7 {
		t.Errorf("unexpected service: %+v", svc)
	}

	cfg.Providers = map[string]config.ProviderConfig{"vertex": {Enabled: true}}
	if _, err := NewService(cfg, nil, nil); err == nil {
		t.Error("expected error for an unsupported provider")
	}
}
