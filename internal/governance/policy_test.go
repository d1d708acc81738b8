package governance

import (
	"context"
	"testing"
)

func TestDefaultPolicyEngine_Evaluate(t *testing.T) {
	engine := NewDefaultPolicyEngine()
	ctx := context.Background()

	// Test Allow (Default)
	res1, err := engine.Evaluate(ctx, Request{Tool: "search"})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res1.Effect != EffectAllow {
		t.Errorf("Expected EffectAllow, got %s", res1.Effect)
	}

	// Test Deny
	engine.DenyTool("scraper")
	res2, err := engine.Evaluate(ctx, Request{Tool: "scraper"})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res2.Effect != EffectDeny {
		t.Errorf("Expected EffectDeny, got %s", res2.Effect)
	}
}

func TestResearchPolicyEngine(t *testing.T) {
	engine := NewResearchPolicyEngine()
	ctx := context.Background()

	cases := []struct {
		tool, args string
		want       Effect
	}{
		{"scraper", `{"url":"https://www.cemex.com/investors"}`, EffectAllow},
		{"scraper", `{"url":"file:///etc/passwd"}`, EffectDeny},
		{"scraper", `{"url":"http://localhost:8080/admin"}`, EffectDeny},
		{"scraper", `{"url":"http://169.254.169.254/latest/meta-data"}`, EffectDeny},
		{"scraper", `{"url":"http://192.168.1.10/"}`, EffectDeny},
		{"search", `{"query":"localhost development tips"}`, EffectAllow},
	}

	for _, tc := range cases {
		res, err := engine.Evaluate(ctx, Request{Tool: tc.tool, Arguments: tc.args})
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		if res.Effect != tc.want {
			t.Errorf("%s %s: got %s, want %s", tc.tool, tc.args, res.Effect, tc.want)
		}
	}
}

func TestDenyArgumentsInvalidPattern(t *testing.T) {
	engine := NewDefaultPolicyEngine()
	if err := engine.DenyArguments(`(`); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestDenyToolArguments_InvalidPattern(t *testing.T) {
	engine := NewDefaultPolicyEngine()
	if err := engine.DenyToolArguments("scraper", `(unclosed`); err == nil {
		t.Error("expected an error for an invalid pattern")
	}
	if len(engine.rules) != 0 {
		t.Error("invalid pattern must not add a rule")
	}
}

func TestResearchPolicyEngine_CompilesAllRules(t *testing.T) {
	engine := NewResearchPolicyEngine()
	if len(engine.rules) != 5 {
		t.Fatalf("expected 5 scraper rules, got %d", len(engine.rules))
	}
	for _, rule := range engine.rules {
		if rule.tool != "scraper" || rule.re == nil {
			t.Errorf("unexpected rule: %+v", rule)
		}
	}
}
