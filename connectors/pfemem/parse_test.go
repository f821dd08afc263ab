package pfemem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		rows []Row
		want Section
	}{
		{
			name: "single MIC",
			rows: []Row{{"80", "99", "FPC: X @ 0/*/*"}},
			want: Section{
				"FPC: X @ 0/*/* Free Memory": {CardLabel: "FPC: X @ 0/*/*", NHFree1: "80", FWFree1: "99"},
			},
		},
		{
			name: "two MICs",
			rows: []Row{{"80", "99", "79", "99", "FPC: X @ 0/*/*"}},
			want: Section{
				"FPC: X @ 0/*/* Free Memory": {
					CardLabel: "FPC: X @ 0/*/*",
					NHFree1:   "80", FWFree1: "99",
					NHFree2: "79", FWFree2: "99",
				},
			},
		},
		{
			name: "identical values of single MIC are forwarding free",
			rows: []Row{{"50", "50", "FPC: X @ 0/*/*"}},
			want: Section{
				"FPC: X @ 0/*/* Free Memory": {CardLabel: "FPC: X @ 0/*/*", FWFree1: "50"},
			},
		},
		{
			name: "values accumulate across rows until a card",
			rows: []Row{{"80"}, {"99", "FPC: A @ 1/*/*"}, {"70", "98", "FPC: B @ 2/*/*"}},
			want: Section{
				"FPC: A @ 1/*/* Free Memory": {CardLabel: "FPC: A @ 1/*/*", NHFree1: "80", FWFree1: "99"},
				"FPC: B @ 2/*/* Free Memory": {CardLabel: "FPC: B @ 2/*/*", NHFree1: "70", FWFree1: "98"},
			},
		},
		{
			name: "other tokens are ignored",
			rows: []Row{{"", "80", "percent", "99", "-1", "FPC: X @ 0/*/*"}},
			want: Section{
				"FPC: X @ 0/*/* Free Memory": {CardLabel: "FPC: X @ 0/*/*", NHFree1: "80", FWFree1: "99"},
			},
		},
		{
			name: "unsupported count of values",
			rows: []Row{{"80", "99", "79", "FPC: X @ 0/*/*"}, {"FPC: Y @ 1/*/*"}},
			want: Section{},
		},
		{
			name: "trailing values without card",
			rows: []Row{{"80", "99", "FPC: X @ 0/*/*"}, {"10", "20"}},
			want: Section{
				"FPC: X @ 0/*/* Free Memory": {CardLabel: "FPC: X @ 0/*/*", NHFree1: "80", FWFree1: "99"},
			},
		},
		{
			name: "duplicate card overwrites",
			rows: []Row{{"80", "99", "FPC: X @ 0/*/*"}, {"70", "98", "FPC: X @ 0/*/*"}},
			want: Section{
				"FPC: X @ 0/*/* Free Memory": {CardLabel: "FPC: X @ 0/*/*", NHFree1: "70", FWFree1: "98"},
			},
		},
		{
			name: "duplicate card without readings drops the earlier one",
			rows: []Row{{"80", "99", "FPC: X @ 0/*/*"}, {"FPC: X @ 0/*/*"}},
			want: Section{},
		},
		{
			name: "empty table",
			rows: nil,
			want: Section{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.rows))
		})
	}
}

func TestParseTwoMICTies(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   MemoryRecord
	}{
		{
			name:   "first equals last",
			values: []string{"80", "99", "79", "80"},
			want:   MemoryRecord{NHFree1: "80", FWFree1: "80", FWFree2: "99"},
		},
		{
			name:   "first equals second",
			values: []string{"80", "80", "79", "99"},
			want:   MemoryRecord{NHFree1: "80", FWFree1: "80"},
		},
		{
			name:   "third equals fourth",
			values: []string{"80", "99", "79", "79"},
			want:   MemoryRecord{NHFree1: "80", FWFree1: "99"},
		},
		{
			name:   "all equal",
			values: []string{"50", "50", "50", "50"},
			want:   MemoryRecord{NHFree1: "50", FWFree1: "50"},
		},
		{
			name:   "fw values repeat",
			values: []string{"80", "99", "79", "99"},
			want:   MemoryRecord{NHFree1: "80", FWFree1: "99", NHFree2: "79", FWFree2: "99"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := append(Row{}, tt.values...)
			row = append(row, "FPC: T @ 0/*/*")
			section := Parse([]Row{row})
			tt.want.CardLabel = "FPC: T @ 0/*/*"
			assert.Equal(t, tt.want, section["FPC: T @ 0/*/* Free Memory"])
		})
	}
}

func TestParseJuniperTable(t *testing.T) {
	rows := []Row{
		{"79", "99", "80", "99", "FPC: MPC4E 3D 32XGE @ 0/*/*"},
		{"80", "99", "80", "99", "FPC: MPC3E NG PQ & Flex Q @ 1/*/*"},
		{"80", "99", "FPC: MPCE Type 3 3D @ 3/*/*"},
		{"79", "99", "80", "99", "FPC: MPC7E 3D MRATE-12xQSFPP-XGE-XLGE-CGE @ 5/*/*"},
	}
	section := Parse(rows)

	assert.Equal(t, []string{
		"FPC: MPC3E NG PQ & Flex Q @ 1/*/* Free Memory",
		"FPC: MPC4E 3D 32XGE @ 0/*/* Free Memory",
		"FPC: MPC7E 3D MRATE-12xQSFPP-XGE-XLGE-CGE @ 5/*/* Free Memory",
		"FPC: MPCE Type 3 3D @ 3/*/* Free Memory",
	}, Discover(section))

	assert.Equal(t, MemoryRecord{
		CardLabel: "FPC: MPC4E 3D 32XGE @ 0/*/*",
		NHFree1:   "79", FWFree1: "99", NHFree2: "80", FWFree2: "99",
	}, section["FPC: MPC4E 3D 32XGE @ 0/*/* Free Memory"])
	assert.Equal(t, 4, section["FPC: MPC3E NG PQ & Flex Q @ 1/*/* Free Memory"].Readings())
	assert.False(t, section["FPC: MPCE Type 3 3D @ 3/*/* Free Memory"].HasSecondMIC())
}

func TestGroups(t *testing.T) {
	groups := Groups([]Row{{"1", "2"}, {"3", "FPC: A"}, {"FPC: B", "4"}})
	assert.Equal(t, []CardGroup{
		{CardLabel: "FPC: A", RawValues: []string{"1", "2", "3"}},
		{CardLabel: "FPC: B", RawValues: nil},
	}, groups)
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, isNumeric("0"))
	assert.True(t, isNumeric("099"))
	assert.True(t, isNumeric("²"))
	assert.False(t, isNumeric(""))
	assert.False(t, isNumeric("-1"))
	assert.False(t, isNumeric("1.5"))
	assert.False(t, isNumeric("99 percent"))
}

func TestRecordPools(t *testing.T) {
	pools, err := MemoryRecord{NHFree1: "80", FWFree1: "99", NHFree2: "12", FWFree2: "7"}.Pools()
	assert.NoError(t, err)
	assert.Equal(t, []Pool{
		{MIC: 0, Name: "NH", Free: 80},
		{MIC: 0, Name: "FW", Free: 99},
		{MIC: 1, Name: "NH", Free: 12},
		{MIC: 1, Name: "FW", Free: 7},
	}, pools)

	pools, err = MemoryRecord{NHFree1: "80", FWFree1: "99", FWFree2: "7"}.Pools()
	assert.NoError(t, err)
	assert.Len(t, pools, 2)

	pools, err = MemoryRecord{NHFree1: "80", FWFree1: "x"}.Pools()
	assert.ErrorIs(t, err, ErrInvalidReading)
	assert.Len(t, pools, 1)
}
