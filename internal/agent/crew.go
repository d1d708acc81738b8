package agent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/rahul/meetprep/internal/governance"
	"github.com/rahul/meetprep/internal/observability"
	"github.com/rahul/meetprep/internal/tools"
	"github.com/tmc/langchaingo/llms"
)

// Task is one stage as the crew executes it.
type Task struct {
	ID             string
	Profile        Profile
	Prompt         string
	ExpectedOutput string
}

// StageResult is the output one stage hands to every later stage.
type StageResult struct {
	StageID  string        `json:"stage_id"`
	Role     string        `json:"role"`
	Output   string        `json:"output"`
	Duration time.Duration `json:"duration"`
}

// Result is the outcome of a full run. Output is the final stage's output.
type Result struct {
	Output string        `json:"output"`
	Stages []StageResult `json:"stages"`
}

type Options struct {
	Temperature  float64
	MaxTokens    int
	MaxToolSteps int
	StageTimeout time.Duration // zero means no timeout
}

func DefaultOptions() Options {
	return Options{
		Temperature:  0.7,
		MaxTokens:    4096,
		MaxToolSteps: 8,
	}
}

var ErrEmptyResponse = errors.New("model returned no choices")

// Crew runs tasks strictly in order against one model and one tool registry.
type Crew struct {
	Model    llms.Model
	Registry *tools.Registry
	Policy   governance.PolicyEngine
	Logger   *observability.Logger
	Options  Options
}

func NewCrew(model llms.Model, registry *tools.Registry, policy governance.PolicyEngine, logger *observability.Logger, opts Options) *Crew {
	if registry == nil {
		registry = tools.NewRegistry()
	}
	if opts.MaxToolSteps <= 0 {
		opts.MaxToolSteps = DefaultOptions().MaxToolSteps
	}
	return &Crew{
		Model:    model,
		Registry: registry,
		Policy:   policy,
		Logger:   logger,
		Options:  opts,
	}
}

// Kickoff executes every task in order. Each task receives the outputs of all
// earlier tasks as explicit context. The first failing task aborts the run.
func (c *Crew) Kickoff(ctx context.Context, runID string, tasks []Task) (Result, error) {
	var res Result
	for i, task := range tasks {
		log.Printf("[Crew] Stage %d/%d: %s (%s)", i+1, len(tasks), task.ID, task.Profile.Role)
		c.Logger.LogStage(runID, task.ID, "started", "")

		start := time.Now()
		output, err := c.runStage(ctx, runID, task, res.Stages)
		elapsed := time.Since(start)
		observability.ObserveStage(task.ID, elapsed)

		if err != nil {
			c.Logger.LogStage(runID, task.ID, "failed", err.Error())
			return Result{}, fmt.Errorf("stage %s: %w", task.ID, err)
		}
		c.Logger.LogStage(runID, task.ID, "completed", "")

		res.Stages = append(res.Stages, StageResult{
			StageID:  task.ID,
			Role:     task.Profile.Role,
			Output:   output,
			Duration: elapsed,
		})
		res.Output = output
	}
	return res, nil
}

func (c *Crew) runStage(ctx context.Context, runID string, task Task, prior []StageResult) (string, error) {
	if c.Options.StageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Options.StageTimeout)
		defer cancel()
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, task.Profile.SystemPrompt()),
		llms.TextParts(llms.ChatMessageTypeHuman, stageInput(task, prior)),
	}

	stageTools := c.toolsFor(task.Profile)
	opts := c.callOptions()
	if len(stageTools) > 0 {
		opts = append(opts, llms.WithTools(stageTools))
	}

	for step := 0; step < c.Options.MaxToolSteps; step++ {
		choice, err := c.generate(ctx, runID, task.ID, messages, opts)
		if err != nil {
			return "", err
		}

		var assistantParts []llms.ContentPart
		if choice.Content != "" {
			assistantParts = append(assistantParts, llms.TextContent{Text: choice.Content})
		}
		for _, tc := range choice.ToolCalls {
			assistantParts = append(assistantParts, tc)
		}
		messages = append(messages, llms.MessageContent{
			Role:  llms.ChatMessageTypeAI,
			Parts: assistantParts,
		})

		if len(choice.ToolCalls) == 0 {
			return choice.Content, nil
		}

		for _, tc := range choice.ToolCalls {
			result := c.executeTool(ctx, runID, task, step, tc)
			messages = append(messages, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{
					llms.ToolCallResponse{
						ToolCallID: tc.ID,
						Name:       tc.FunctionCall.Name,
						Content:    result,
					},
				},
			})
		}
	}

	// Out of tool steps: ask once more without tools for the final answer.
	log.Printf("[Crew] Stage %s reached %d tool steps, requesting final answer", task.ID, c.Options.MaxToolSteps)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman,
		"You have used all available tool calls. Give your best complete final answer now."))
	choice, err := c.generate(ctx, runID, task.ID, messages, c.callOptions())
	if err != nil {
		return "", err
	}
	return choice.Content, nil
}

func (c *Crew) generate(ctx context.Context, runID, stageID string, messages []llms.MessageContent, opts []llms.CallOption) (*llms.ContentChoice, error) {
	resp, err := c.Model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}
	choice := resp.Choices[0]

	c.Logger.LogLLM(runID, stageID, messages, choice.Content, choice.ToolCalls)
	prompt, completion := tokenUsage(choice.GenerationInfo)
	if prompt > 0 || completion > 0 {
		c.Logger.LogCost(runID, stageID, prompt, completion)
	}
	return choice, nil
}

func (c *Crew) executeTool(ctx context.Context, runID string, task Task, step int, tc llms.ToolCall) string {
	if tc.FunctionCall == nil {
		return "Error: empty tool call"
	}
	name, args := tc.FunctionCall.Name, tc.FunctionCall.Arguments

	tool := c.Registry.Get(name)
	if tool == nil || !allowed(task.Profile, name) {
		observability.CountToolCall(name, "unknown")
		return fmt.Sprintf("Error: Tool %s not found", name)
	}

	if c.Policy != nil {
		verdict, err := c.Policy.Evaluate(ctx, governance.Request{Tool: name, Arguments: args, RunID: runID})
		if err != nil {
			return fmt.Sprintf("Error: policy check failed: %v", err)
		}
		c.Logger.LogPolicyCheck(runID, task.ID, name, string(verdict.Effect), verdict.Reason)
		if verdict.Effect == governance.EffectDeny {
			observability.CountToolCall(name, "denied")
			return fmt.Sprintf("Error: %s", verdict.Reason)
		}
	}

	log.Printf("[Stage %s step %d] Executing tool %s with args: %s", task.ID, step+1, name, args)
	c.Logger.LogToolCall(runID, task.ID, name, args)

	result, err := tool.Execute(ctx, args)
	if err != nil {
		observability.CountToolCall(name, "error")
		result = fmt.Sprintf("Error: %v", err)
	} else {
		observability.CountToolCall(name, "ok")
	}
	c.Logger.LogToolResult(runID, task.ID, name, result)
	return result
}

func (c *Crew) toolsFor(p Profile) []llms.Tool {
	var out []llms.Tool
	for _, name := range p.Tools {
		t := c.Registry.Get(name)
		if t == nil {
			continue
		}
		out = append(out, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return out
}

func (c *Crew) callOptions() []llms.CallOption {
	opts := []llms.CallOption{llms.WithTemperature(c.Options.Temperature)}
	if c.Options.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(c.Options.MaxTokens))
	}
	return opts
}

func allowed(p Profile, tool string) bool {
	for _, name := range p.Tools {
		if name == tool {
			return true
		}
	}
	return false
}

func stageInput(task Task, prior []StageResult) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(task.Prompt))
	if task.ExpectedOutput != "" {
		fmt.Fprintf(&b, "\n\nThis is the expected criteria for your final answer: %s\n", task.ExpectedOutput)
		b.WriteString("You MUST return the actual complete content as the final answer, not a summary.")
	}
	if len(prior) > 0 {
		b.WriteString("\n\nThis is the context you're working with, produced by the previous stages:\n")
		for _, r := range prior {
			fmt.Fprintf(&b, "\n## %s (%s)\n%s\n", r.Role, r.StageID, r.Output)
		}
	}
	return b.String()
}

// tokenUsage reads token counts from provider-specific generation info.
func tokenUsage(info map[string]any) (prompt, completion int) {
	prompt = firstInt(info, "InputTokens", "PromptTokens")
	completion = firstInt(info, "OutputTokens", "CompletionTokens")
	return prompt, completion
}

func firstInt(info map[string]any, keys ...string) int {
	for _, k := range keys {
		switch v := info[k].(type) {
		case int:
			return v
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return 0
}
