package publishers

import "time"

// Report is the payload published downstream after a verification run.
type Report struct {
	RunID      string           `json:"run_id"`
	BaseURL    string           `json:"base_url"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	OK         bool             `json:"ok"`
	Strict     bool             `json:"strict"`
	Summary    Summary          `json:"summary"`
	Scenarios  []ScenarioReport `json:"scenarios"`
}

// Summary counts scenarios by outcome.
type Summary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Defects int `json:"defects"`
	Skipped int `json:"skipped"`
}

// ScenarioReport is the outcome of one scenario. Previous is empty when no
// history was available.
type ScenarioReport struct {
	ID        string   `json:"id"`
	Outcome   string   `json:"outcome"`
	Previous  string   `json:"previous,omitempty"`
	Changed   bool     `json:"changed"`
	Errors    []string `json:"errors,omitempty"`
	Defects   []string `json:"defects,omitempty"`
	ElapsedMs int64    `json:"elapsed_ms"`
}

// Changed returns the scenarios whose outcome differs from history.
func (r Report) Changed() []ScenarioReport {
	var out []ScenarioReport
	for _, s := range r.Scenarios {
		if s.Changed {
			out = append(out, s)
		}
	}
	return out
}

func (r Report) attributes() map[string]string {
	ok := "false"
	if r.OK {
		ok = "true"
	}
	return map[string]string{
		"run_id": r.RunID,
		"ok":     ok,
	}
}
