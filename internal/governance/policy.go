package governance

import (
	"context"
	"fmt"
	"regexp"
)

// Effect defines the result of a policy evaluation.
type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// Request contains the context of a tool call to be evaluated.
type Request struct {
	Tool      string
	Arguments string
	RunID     string
}

// Result contains the outcome of a policy evaluation.
type Result struct {
	Effect Effect
	Reason string
}

// PolicyEngine evaluates tool calls against a set of rules.
type PolicyEngine interface {
	Evaluate(ctx context.Context, req Request) (Result, error)
}

type argumentRule struct {
	tool string // empty matches every tool
	re   *regexp.Regexp
}

// DefaultPolicyEngine is a basic implementation of PolicyEngine.
type DefaultPolicyEngine struct {
	DeniedTools map[string]bool
	rules       []argumentRule
}

func NewDefaultPolicyEngine() *DefaultPolicyEngine {
	return &DefaultPolicyEngine{
		DeniedTools: make(map[string]bool),
	}
}

// NewResearchPolicyEngine keeps the scraper on the public web.
func NewResearchPolicyEngine() *DefaultPolicyEngine {
	e := NewDefaultPolicyEngine()
	for _, pattern := range []string{
		`(?i)file://`,
		`(?i)://(localhost|127\.|0\.0\.0\.0|\[::1\])`,
		`(?i)://(10\.|192\.168\.|172\.(1[6-9]|2[0-9]|3[01])\.)`,
		`(?i)://169\.254\.`,
		`(?i)metadata\.google\.internal`,
	} {
		e.mustDenyToolArguments("scraper", pattern)
	}
	return e
}

// mustDenyToolArguments is DenyToolArguments for built-in patterns.
func (e *DefaultPolicyEngine) mustDenyToolArguments(tool, pattern string) {
	e.rules = append(e.rules, argumentRule{tool: tool, re: regexp.MustCompile(pattern)})
}

func (e *DefaultPolicyEngine) DenyTool(name string) {
	e.DeniedTools[name] = true
}

// DenyArguments rejects calls to any tool whose arguments match pattern.
func (e *DefaultPolicyEngine) DenyArguments(pattern string) error {
	return e.DenyToolArguments("", pattern)
}

// DenyToolArguments rejects calls to tool whose arguments match pattern.
func (e *DefaultPolicyEngine) DenyToolArguments(tool, pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	e.rules = append(e.rules, argumentRule{tool: tool, re: re})
	return nil
}

func (e *DefaultPolicyEngine) Evaluate(ctx context.Context, req Request) (Result, error) {
	if e.DeniedTools[req.Tool] {
		return Result{
			Effect: EffectDeny,
			Reason: fmt.Sprintf("Tool '%s' is restricted by system policy", req.Tool),
		}, nil
	}

	for _, rule := range e.rules {
		if rule.tool != "" && rule.tool != req.Tool {
			continue
		}
		if rule.re.MatchString(req.Arguments) {
			return Result{
				Effect: EffectDeny,
				Reason: fmt.Sprintf("Arguments match restricted pattern: %s", rule.re.String()),
			}, nil
		}
	}

	return Result{
		Effect: EffectAllow,
		Reason: "Approved by default policy",
	}, nil
}
