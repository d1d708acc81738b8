// Package knowledge ships the Castolin Central Knowledge Hub extract that the
// internal-data stage hands to the model.
package knowledge

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed hub.yaml
var hubYAML string

type ApplicationRecord struct {
	ID                     string  `yaml:"id"`
	Plant                  string  `yaml:"plant"`
	Country                string  `yaml:"country"`
	Equipment              string  `yaml:"equipment"`
	ProductUsed            string  `yaml:"product_used"`
	Year                   int     `yaml:"year"`
	DowntimeReductionHours int     `yaml:"downtime_reduction_hours"`
	CostSavingEUR          int     `yaml:"cost_saving_eur"`
	ROIMonths              float64 `yaml:"roi_months"`
}

type SuccessStory struct {
	StoryID string `yaml:"story_id"`
	Plant   string `yaml:"plant"`
	Quote   string `yaml:"quote"`
	Outcome string `yaml:"outcome"`
}

type CRMReference struct {
	Plant             string  `yaml:"plant"`
	Contact           string  `yaml:"contact"`
	Role              string  `yaml:"role"`
	Email             string  `yaml:"email"`
	SatisfactionScore float64 `yaml:"satisfaction_score"`
}

type DirectoryContact struct {
	Plant    string `yaml:"plant"`
	Person   string `yaml:"person"`
	Position string `yaml:"position"`
	Email    string `yaml:"email"`
	Phone    string `yaml:"phone"`
}

// Dataset is the parsed hub extract.
type Dataset struct {
	Applications []ApplicationRecord `yaml:"applications_records"`
	Stories      []SuccessStory      `yaml:"success_stories"`
	References   []CRMReference      `yaml:"crm_references"`
	Directory    []DirectoryContact  `yaml:"directory_contacts"`
}

// Raw returns the extract exactly as it is embedded in the prompt.
func Raw() string {
	return hubYAML
}

// Load parses the embedded extract.
func Load() (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal([]byte(hubYAML), &ds); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge hub: %w", err)
	}
	if len(ds.Applications) == 0 {
		return nil, fmt.Errorf("knowledge hub has no application records")
	}
	return &ds, nil
}

// TotalSavingsEUR sums the first-year savings over all application records.
func (d *Dataset) TotalSavingsEUR() int {
	total := 0
	for _, a := range d.Applications {
		total += a.CostSavingEUR
	}
	return total
}

func (d *Dataset) Summary() string {
	return fmt.Sprintf("%d application records, %d success stories, %d CRM references, %d directory contacts",
		len(d.Applications), len(d.Stories), len(d.References), len(d.Directory))
}
