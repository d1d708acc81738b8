// Package plan assembles the ordered stage list for one meeting request.
package plan

import (
	"fmt"
	"regexp"
	"strconv"
	"sync"

	"github.com/rahul/meetprep/internal/agent"
	"github.com/rahul/meetprep/internal/knowledge"
	"github.com/rahul/meetprep/internal/meeting"
	"github.com/tmc/langchaingo/prompts"
)

const (
	StageInternalData     = "internal_data"
	StageContextAnalysis  = "context_analysis"
	StageIndustryAnalysis = "industry_analysis"
	StageMeetingStrategy  = "meeting_strategy"
	StageExecutiveBrief   = "executive_brief"
)

// catalog is the fixed stage order. The internal-data stage is filtered
// out when the verdict is false.
var catalog = []string{
	StageInternalData,
	StageContextAnalysis,
	StageIndustryAnalysis,
	StageMeetingStrategy,
	StageExecutiveBrief,
}

// Verdict-dependent clauses.
const (
	InternalClauseRelevant   = "Integrate public sources with Castolin ROI data."
	InternalClauseIrrelevant = "No Castolin data available; rely solely on public sources."
	ROINoteRelevant          = "Include Castolin ROI stories as social proof."
	ROINoteIrrelevant        = "Do not reference Castolin internal data."
	ROIClauseRelevant        = "Cite at least 2 Castolin ROI stats."
	ROIClauseIrrelevant      = "Exclude Castolin internal data."
	InsightSuffixRelevant    = ", Castolin ROI tie-ins"
)

var expectedOutputs = map[string]string{
	StageInternalData:     "Markdown with ROI table, success stories and masked directory *or* the single-line notice when sector not relevant.",
	StageContextAnalysis:  "Context analysis (public + optional internal).",
	StageIndustryAnalysis: "Industry brief aligned with meeting goals.",
	StageMeetingStrategy:  "Agenda table + facilitator tips.",
	StageExecutiveBrief:   "Concise executive brief.",
}

var stageProfiles = map[string]agent.Profile{
	StageInternalData:     agent.KnowledgeHubRetriever,
	StageContextAnalysis:  agent.ContextAnalyzer,
	StageIndustryAnalysis: agent.IndustryAnalyst,
	StageMeetingStrategy:  agent.StrategyFormulator,
	StageExecutiveBrief:   agent.BriefingCreator,
}

// Stage is one unit of sequential work.
type Stage struct {
	ID             string
	Profile        agent.Profile
	Prompt         string
	ExpectedOutput string
	DependsOn      []string
}

// Plan is the ordered stage list for one request.
type Plan struct {
	Verdict bool
	Stages  []Stage
}

// Tasks converts the plan into executor input.
func (p Plan) Tasks() []agent.Task {
	tasks := make([]agent.Task, 0, len(p.Stages))
	for _, s := range p.Stages {
		tasks = append(tasks, agent.Task{
			ID:             s.ID,
			Profile:        s.Profile,
			Prompt:         s.Prompt,
			ExpectedOutput: s.ExpectedOutput,
		})
	}
	return tasks
}

// StageIDs lists the stage IDs in execution order.
func (p Plan) StageIDs() []string {
	ids := make([]string, 0, len(p.Stages))
	for _, s := range p.Stages {
		ids = append(ids, s.ID)
	}
	return ids
}

// Assembler renders stage templates into plans.
type Assembler struct {
	templates map[string]prompts.PromptTemplate
	dataset   string
}

// NewAssembler loads templates through pm and checks that every one of them
// renders, so Build cannot fail later.
func NewAssembler(pm *PromptManager) (*Assembler, error) {
	templates, err := pm.Load()
	if err != nil {
		return nil, err
	}
	a := &Assembler{templates: templates, dataset: knowledge.Raw()}

	probe := meeting.Request{CompanyName: "probe", DurationMinutes: meeting.DefaultDuration}
	for _, verdict := range []bool{true, false} {
		for _, id := range catalog {
			out, err := a.render(id, verdict, probe)
			if err != nil {
				return nil, fmt.Errorf("template %s: %w", id, err)
			}
			if left := leftoverPlaceholder.FindString(out); left != "" {
				return nil, fmt.Errorf("template %s: placeholder %s was not substituted", id, left)
			}
		}
	}
	return a, nil
}

// leftoverPlaceholder matches an f-string variable that survived rendering.
var leftoverPlaceholder = regexp.MustCompile(`\{[a-z_]+\}`)

var defaultAssembler = sync.OnceValue(func() *Assembler {
	a, err := NewAssembler(NewPromptManager(""))
	if err != nil {
		panic(fmt.Sprintf("built-in templates are broken: %v", err))
	}
	return a
})

// Build assembles a plan with the built-in templates.
func Build(verdict bool, req meeting.Request) Plan {
	return defaultAssembler().Build(verdict, req)
}

// Build returns the catalog stages in order, skipping the internal-data
// stage when verdict is false. Every stage depends on all earlier stages.
func (a *Assembler) Build(verdict bool, req meeting.Request) Plan {
	p := Plan{Verdict: verdict}
	var previous []string

	for _, id := range catalog {
		if id == StageInternalData && !verdict {
			continue
		}
		prompt, err := a.render(id, verdict, req)
		if err != nil {
			// Templates were rendered with the same keys in NewAssembler.
			panic(fmt.Sprintf("render %s: %v", id, err))
		}
		p.Stages = append(p.Stages, Stage{
			ID:             id,
			Profile:        stageProfiles[id],
			Prompt:         prompt,
			ExpectedOutput: expectedOutputs[id],
			DependsOn:      append([]string(nil), previous...),
		})
		previous = append(previous, id)
	}
	return p
}

func (a *Assembler) render(id string, verdict bool, req meeting.Request) (string, error) {
	tmpl, ok := a.templates[id]
	if !ok {
		return "", fmt.Errorf("no template loaded")
	}
	return tmpl.Format(a.values(id, verdict, req))
}

func (a *Assembler) values(id string, verdict bool, req meeting.Request) map[string]any {
	all := map[string]any{
		"company_name":     req.CompanyName,
		"objective":        req.Objective,
		"attendees":        meeting.FormatAttendees(req.Attendees),
		"duration_minutes": strconv.Itoa(req.DurationMinutes),
		"focus_areas":      req.FocusAreas,
		"dataset":          a.dataset,
		"internal_clause":  pick(verdict, InternalClauseRelevant, InternalClauseIrrelevant),
		"roi_note":         pick(verdict, ROINoteRelevant, ROINoteIrrelevant),
		"roi_clause":       pick(verdict, ROIClauseRelevant, ROIClauseIrrelevant),
		"insight_suffix":   pick(verdict, InsightSuffixRelevant, ""),
	}

	values := make(map[string]any, len(templateVars[id]))
	for _, name := range templateVars[id] {
		values[name] = all[name]
	}
	return values
}

func pick(verdict bool, yes, no string) string {
	if verdict {
		return yes
	}
	return no
}
