package pfemem

import (
	"fmt"
	"iter"
)

// Fixed levels of free memory percent
const (
	CritLevel = 10
	WarnLevel = 15
)

// State defines check state, values match plugin exit codes
type State int

// Check states
const (
	StateOK State = iota
	StateWarn
	StateCrit
	StateUnknown
)

func (s State) String() string {
	if s < StateOK || s > StateUnknown {
		return "UNKNOWN"
	}
	return [...]string{"OK", "WARN", "CRIT", "UNKNOWN"}[s]
}

// MarshalText implements encoding.TextMarshaler
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *State) UnmarshalText(text []byte) error {
	for st := StateOK; st <= StateUnknown; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", text)
}

// stateWeight orders states for aggregation
var stateWeight = map[State]int{
	StateOK:      0,
	StateWarn:    1,
	StateUnknown: 2,
	StateCrit:    3,
}

// Result is a single verdict of the check
type Result struct {
	State   State  `json:"state"`
	Summary string `json:"summary"`
	Details string `json:"details"`
}

type tier struct {
	state State
	text  string
	match func(int) bool
}

// tiers are evaluated independently: a value at the critical level
// also matches the warning tier and both results are produced
var tiers = []tier{
	{StateCrit, "very low", func(v int) bool { return v <= CritLevel }},
	{StateWarn, "low", func(v int) bool { return v <= WarnLevel }},
	{StateOK, "normal", func(v int) bool { return v > WarnLevel }},
}

// Check evaluates the item readings.
// The sequence is empty for an item missing in the section.
// A missing or non-integer reading ends the sequence with an error.
func Check(item string, section Section) iter.Seq2[Result, error] {
	return func(yield func(Result, error) bool) {
		record, ok := section[item]
		if !ok {
			return
		}

		nhFree1, err := readingInt("nhFree1", record.NHFree1)
		if err != nil {
			yield(Result{}, err)
			return
		}
		fwFree1, err := readingInt("fwFree1", record.FWFree1)
		if err != nil {
			yield(Result{}, err)
			return
		}
		details := fmt.Sprintf("MIC 0  NH Free %d, MIC 0 FW Free %d", nhFree1, fwFree1)
		if !evaluate(yield, 0, nhFree1, fwFree1, details) {
			return
		}

		if !record.HasSecondMIC() {
			return
		}
		nhFree2, err := readingInt("nhFree2", record.NHFree2)
		if err != nil {
			yield(Result{}, err)
			return
		}
		fwFree2, err := readingInt("fwFree2", record.FWFree2)
		if err != nil {
			yield(Result{}, err)
			return
		}
		details = fmt.Sprintf("MIC 0  NH Free %d, MIC 0 FW Free %d, MIC 1 NH Free %d, MIC 1 FW Free %d",
			nhFree1, fwFree1, nhFree2, fwFree2)
		evaluate(yield, 1, nhFree2, fwFree2, details)
	}
}

func evaluate(yield func(Result, error) bool, mic, nhFree, fwFree int, details string) bool {
	pools := [...]struct {
		name  string
		value int
	}{{"NH", nhFree}, {"FW", fwFree}}

	for _, t := range tiers {
		for _, p := range pools {
			if !t.match(p.value) {
				continue
			}
			res := Result{
				State:   t.state,
				Summary: fmt.Sprintf("%s Free Memory on MIC %d is %s at %d", p.name, mic, t.text, p.value),
				Details: details,
			}
			if !yield(res, nil) {
				return false
			}
		}
	}
	return true
}

// Collect drains the check sequence.
// Results produced before an error are returned along with it.
func Collect(item string, section Section) ([]Result, error) {
	var results []Result
	for res, err := range Check(item, section) {
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// WorstState aggregates states: OK < WARN < UNKNOWN < CRIT
func WorstState(results []Result) State {
	worst := StateOK
	for _, res := range results {
		if stateWeight[res.State] > stateWeight[worst] {
			worst = res.State
		}
	}
	return worst
}
