package pfemem

import (
	"fmt"
	"strings"
)

// Report is the rendered verdict of an item
type Report struct {
	Item    string   `json:"item"`
	Service string   `json:"service"`
	State   State    `json:"state"`
	Results []Result `json:"results"`
	Error   string   `json:"error,omitempty"`
}

// Report drains the check of the item.
// A reading error turns the state to UNKNOWN, results before it are kept.
func (p Plugin) Report(item string, section Section) Report {
	report := Report{Item: item, Service: p.ServiceName(item)}
	for res, err := range p.Check(item, section) {
		if err != nil {
			report.Error = err.Error()
			break
		}
		report.Results = append(report.Results, res)
	}
	report.State = WorstState(report.Results)
	if report.Error != "" {
		report.State = StateUnknown
	}
	return report
}

// Output renders the state with the summaries
func (r Report) Output() string {
	if r.Error != "" {
		return fmt.Sprintf("%s - %s", r.State, r.Error)
	}
	summaries := make([]string, 0, len(r.Results))
	for _, res := range r.Results {
		summaries = append(summaries, res.Summary)
	}
	return fmt.Sprintf("%s - %s", r.State, strings.Join(summaries, ", "))
}

// Details returns the details of the last result, it covers every evaluated MIC
func (r Report) Details() string {
	if len(r.Results) == 0 {
		return ""
	}
	return r.Results[len(r.Results)-1].Details
}
