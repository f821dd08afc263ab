package pfemem

import (
	"errors"
	"fmt"
	"strconv"
)

const (
	// ItemSuffix is appended to the card label to make the item name
	ItemSuffix = " Free Memory"
	// CardPattern marks a token as a card boundary
	CardPattern = "FPC"
)

var (
	ErrMissingReading = errors.New("missing reading")
	ErrInvalidReading = errors.New("invalid reading")
)

// Row is one entry of the fetched table:
// numeric percent-free gauges followed by the card description
type Row []string

// CardGroup collects the numeric tokens seen before a card boundary
type CardGroup struct {
	CardLabel string
	RawValues []string
}

// MemoryRecord holds the reconstructed readings of a card.
// Empty strings mean the reading is absent.
type MemoryRecord struct {
	CardLabel string `json:"card"`
	NHFree1   string `json:"nhFree1,omitempty"`
	FWFree1   string `json:"fwFree1,omitempty"`
	NHFree2   string `json:"nhFree2,omitempty"`
	FWFree2   string `json:"fwFree2,omitempty"`
}

// Readings returns count of populated readings
func (r MemoryRecord) Readings() int {
	n := 0
	for _, s := range []string{r.NHFree1, r.FWFree1, r.NHFree2, r.FWFree2} {
		if s != "" {
			n++
		}
	}
	return n
}

// HasSecondMIC reports whether all four readings are populated.
// A record with three readings is a single-MIC card, its partial second MIC is ignored.
func (r MemoryRecord) HasSecondMIC() bool {
	return r.Readings() == 4
}

// Section maps item name to record
type Section map[string]MemoryRecord

// ItemName returns the item name for the card label
func ItemName(cardLabel string) string {
	return cardLabel + ItemSuffix
}

func readingInt(name, s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: %s", ErrMissingReading, name)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidReading, name, s)
	}
	return v, nil
}

// Pool is a parsed percent-free reading of a memory pool
type Pool struct {
	MIC  int    `json:"mic"`
	Name string `json:"pool"`
	Free int    `json:"free"`
}

// Pools returns the parsed readings present on the record.
// Absent readings are skipped, so are second MIC readings unless HasSecondMIC.
// A reading that is not an integer fails.
func (r MemoryRecord) Pools() ([]Pool, error) {
	readings := [...]struct {
		field string
		pool  Pool
		raw   string
	}{
		{"nhFree1", Pool{MIC: 0, Name: "NH"}, r.NHFree1},
		{"fwFree1", Pool{MIC: 0, Name: "FW"}, r.FWFree1},
		{"nhFree2", Pool{MIC: 1, Name: "NH"}, r.NHFree2},
		{"fwFree2", Pool{MIC: 1, Name: "FW"}, r.FWFree2},
	}
	pools := make([]Pool, 0, len(readings))
	secondMIC := r.HasSecondMIC()
	for _, rd := range readings {
		if rd.raw == "" || (rd.pool.MIC == 1 && !secondMIC) {
			continue
		}
		v, err := readingInt(rd.field, rd.raw)
		if err != nil {
			return pools, err
		}
		rd.pool.Free = v
		pools = append(pools, rd.pool)
	}
	return pools, nil
}
