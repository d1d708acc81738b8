package plan

import (
	"embed"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/tmc/langchaingo/prompts"
)

//go:embed templates/*.md
var defaultTemplates embed.FS

// templateVars lists the placeholders each stage template may use.
var templateVars = map[string][]string{
	StageInternalData:     {"company_name", "objective", "focus_areas", "dataset"},
	StageContextAnalysis:  {"internal_clause", "company_name", "objective", "attendees", "focus_areas"},
	StageIndustryAnalysis: {"company_name"},
	StageMeetingStrategy:  {"duration_minutes", "company_name", "objective", "attendees", "roi_note"},
	StageExecutiveBrief:   {"duration_minutes", "company_name", "objective", "insight_suffix", "attendees", "focus_areas", "roi_clause"},
}

// PromptManager loads stage templates. Files in Directory named after a
// stage ID (e.g. context_analysis.md) override the embedded defaults.
type PromptManager struct {
	Directory string
}

func NewPromptManager(dir string) *PromptManager {
	return &PromptManager{Directory: dir}
}

// Load returns one template per stage in catalog order.
func (pm *PromptManager) Load() (map[string]prompts.PromptTemplate, error) {
	out := make(map[string]prompts.PromptTemplate, len(catalog))
	for _, id := range catalog {
		text, err := pm.read(id)
		if err != nil {
			return nil, err
		}
		out[id] = prompts.PromptTemplate{
			Template:       text,
			InputVariables: templateVars[id],
			TemplateFormat: prompts.TemplateFormatFString,
		}
	}
	return out, nil
}

func (pm *PromptManager) read(id string) (string, error) {
	name := id + ".md"
	if pm.Directory != "" {
		data, err := os.ReadFile(filepath.Join(pm.Directory, name))
		if err == nil {
			return string(data), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to read prompt override %s: %w", name, err)
		}
		log.Printf("No override for %s in %s, using built-in template", name, pm.Directory)
	}

	data, err := fs.ReadFile(defaultTemplates, "templates/"+name)
	if err != nil {
		return "", fmt.Errorf("missing built-in template %s: %w", name, err)
	}
	return string(data), nil
}
