package pfemem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testItem = "FPC: X @ 0/*/* Free Memory"

func testSection(r MemoryRecord) Section {
	r.CardLabel = "FPC: X @ 0/*/*"
	return Section{testItem: r}
}

func TestCheckLayeredLevels(t *testing.T) {
	results, err := Collect(testItem, testSection(MemoryRecord{NHFree1: "10", FWFree1: "99"}))
	require.NoError(t, err)

	details := "MIC 0  NH Free 10, MIC 0 FW Free 99"
	assert.Equal(t, []Result{
		{State: StateCrit, Summary: "NH Free Memory on MIC 0 is very low at 10", Details: details},
		{State: StateWarn, Summary: "NH Free Memory on MIC 0 is low at 10", Details: details},
		{State: StateOK, Summary: "FW Free Memory on MIC 0 is normal at 99", Details: details},
	}, results)
	assert.Equal(t, StateCrit, WorstState(results))
}

func TestCheckLevels(t *testing.T) {
	tests := []struct {
		value  string
		states []State
	}{
		{"0", []State{StateCrit, StateWarn}},
		{"10", []State{StateCrit, StateWarn}},
		{"11", []State{StateWarn}},
		{"15", []State{StateWarn}},
		{"16", []State{StateOK}},
		{"100", []State{StateOK}},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			results, err := Collect(testItem, testSection(MemoryRecord{NHFree1: tt.value, FWFree1: tt.value}))
			require.NoError(t, err)
			var states []State
			for i := 0; i < len(results); i += 2 {
				/* NH and FW results come in pairs for equal values */
				assert.Equal(t, results[i].State, results[i+1].State)
				states = append(states, results[i].State)
			}
			assert.Equal(t, tt.states, states)
		})
	}
}

func TestCheckSingleMIC(t *testing.T) {
	results, err := Collect(testItem, testSection(MemoryRecord{NHFree1: "16", FWFree1: "16"}))
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, res := range results {
		assert.Equal(t, StateOK, res.State)
		assert.Equal(t, "MIC 0  NH Free 16, MIC 0 FW Free 16", res.Details)
	}
}

func TestCheckTwoMICs(t *testing.T) {
	section := Parse([]Row{{"80", "99", "12", "9", "FPC: X @ 0/*/*"}})
	results, err := Collect(testItem, section)
	require.NoError(t, err)

	mic0 := "MIC 0  NH Free 80, MIC 0 FW Free 99"
	mic1 := "MIC 0  NH Free 80, MIC 0 FW Free 99, MIC 1 NH Free 12, MIC 1 FW Free 9"
	assert.Equal(t, []Result{
		{State: StateOK, Summary: "NH Free Memory on MIC 0 is normal at 80", Details: mic0},
		{State: StateOK, Summary: "FW Free Memory on MIC 0 is normal at 99", Details: mic0},
		{State: StateCrit, Summary: "FW Free Memory on MIC 1 is very low at 9", Details: mic1},
		{State: StateWarn, Summary: "NH Free Memory on MIC 1 is low at 12", Details: mic1},
		{State: StateWarn, Summary: "FW Free Memory on MIC 1 is low at 9", Details: mic1},
	}, results)
}

func TestCheckMissingItem(t *testing.T) {
	count := 0
	for _, err := range Check("FPC: none Free Memory", testSection(MemoryRecord{NHFree1: "1", FWFree1: "1"})) {
		assert.NoError(t, err)
		count++
	}
	assert.Zero(t, count)

	results, err := Collect("FPC: none Free Memory", nil)
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestCheckReadingErrors(t *testing.T) {
	tests := []struct {
		name    string
		record  MemoryRecord
		results int
		err     error
	}{
		{"missing nh", MemoryRecord{FWFree1: "50"}, 0, ErrMissingReading},
		{"missing fw", MemoryRecord{NHFree1: "50"}, 0, ErrMissingReading},
		{"not an integer", MemoryRecord{NHFree1: "²", FWFree1: "50"}, 0, ErrInvalidReading},
		{"second MIC invalid", MemoryRecord{NHFree1: "80", FWFree1: "80", NHFree2: "x", FWFree2: "99"}, 2, ErrInvalidReading},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := Collect(testItem, testSection(tt.record))
			assert.ErrorIs(t, err, tt.err)
			assert.Len(t, results, tt.results)
		})
	}
}

func TestCheckPartialSecondMIC(t *testing.T) {
	/* ["80","99","79","80"] leaves three readings */
	section := Parse([]Row{{"80", "99", "79", "80", "FPC: X @ 0/*/*"}})
	record := section[testItem]
	assert.Equal(t, 3, record.Readings())
	assert.False(t, record.HasSecondMIC())

	results, err := Collect(testItem, section)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, res := range results {
		assert.Equal(t, StateOK, res.State)
		assert.Equal(t, "MIC 0  NH Free 80, MIC 0 FW Free 80", res.Details)
	}
}

func TestCheckStopsOnBreak(t *testing.T) {
	section := testSection(MemoryRecord{NHFree1: "1", FWFree1: "1", NHFree2: "1", FWFree2: "1"})
	count := 0
	for range Check(testItem, section) {
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(t, 3, count)
}

func TestDiscoverRoundTrip(t *testing.T) {
	section := Parse([]Row{
		{"80", "99", "FPC: B @ 1/*/*"},
		{"80", "99", "79", "99", "FPC: A @ 0/*/*"},
		{"50", "50", "FPC: C @ 2/*/*"},
	})
	items := Discover(section)
	assert.Equal(t, []string{"FPC: A @ 0/*/* Free Memory", "FPC: B @ 1/*/* Free Memory", "FPC: C @ 2/*/* Free Memory"}, items)
	for _, item := range items {
		_, ok := section[item]
		assert.True(t, ok, item)
	}

	/* a tie record is discovered but fails on the missing reading */
	_, err := Collect("FPC: C @ 2/*/* Free Memory", section)
	assert.ErrorIs(t, err, ErrMissingReading)
}

func TestWorstState(t *testing.T) {
	assert.Equal(t, StateOK, WorstState(nil))
	assert.Equal(t, StateWarn, WorstState([]Result{{State: StateOK}, {State: StateWarn}}))
	assert.Equal(t, StateUnknown, WorstState([]Result{{State: StateWarn}, {State: StateUnknown}}))
	assert.Equal(t, StateCrit, WorstState([]Result{{State: StateCrit}, {State: StateUnknown}}))
}

func TestPluginRegistry(t *testing.T) {
	p, ok := Lookup("pfememory")
	require.True(t, ok)
	assert.Equal(t, "PFE FPC: X @ 0/*/* Free Memory Memory Utilization", p.ServiceName(testItem))
	assert.Equal(t, []string{
		".1.3.6.1.4.1.2636.3.1.13.1.5.7",
		".1.3.6.1.4.1.2636.3.44.1.2.2.1.3",
	}, p.Fetch.Columns())
	assert.Equal(t, JuniperEnterprise, p.Detect)

	_, ok = Lookup("unknown")
	assert.False(t, ok)
}

func TestStateText(t *testing.T) {
	var s State
	require.NoError(t, s.UnmarshalText([]byte("CRIT")))
	assert.Equal(t, StateCrit, s)
	assert.Error(t, s.UnmarshalText([]byte("FATAL")))
	assert.Equal(t, "UNKNOWN", State(7).String())
}
