package pfemem

import (
	"slices"
	"strings"
	"unicode"
)

// accumulator carries the fold state across rows.
// The pending buffer is not reset on row boundaries, only when a card seals it.
type accumulator struct {
	pending []string
	groups  []CardGroup
}

func (acc accumulator) fold(row Row) accumulator {
	for _, token := range row {
		switch {
		case isNumeric(token):
			acc.pending = append(acc.pending, token)
		case strings.Contains(token, CardPattern):
			acc.groups = append(acc.groups, CardGroup{
				CardLabel: token,
				RawValues: acc.pending,
			})
			acc.pending = nil
		}
	}
	return acc
}

// Parse reconstructs the per-card records from the table rows.
// It never fails: rows that cannot be classified leave the record without readings
// and records without any reading are skipped.
func Parse(rows []Row) Section {
	groups := Groups(rows)
	section := make(Section, len(groups))
	for _, group := range groups {
		/* last card wins, even when it has no readings */
		record := classify(group)
		if record.Readings() == 0 {
			delete(section, ItemName(group.CardLabel))
			continue
		}
		section[ItemName(group.CardLabel)] = record
	}
	return section
}

// Groups folds the rows into sealed card groups.
// Numeric tokens trailing the last card are dropped.
func Groups(rows []Row) []CardGroup {
	acc := accumulator{}
	for _, row := range rows {
		acc = acc.fold(row)
	}
	return acc.groups
}

func classify(group CardGroup) MemoryRecord {
	record := MemoryRecord{CardLabel: group.CardLabel}
	values := group.RawValues

	var nhFree, fwFree []string
	switch len(values) {
	case 2:
		if values[0] == values[1] {
			fwFree = append(fwFree, values[0])
		} else {
			nhFree = append(nhFree, values[0])
			fwFree = append(fwFree, values[1])
		}
	case 4:
		for _, v := range values {
			/* position is taken by the first occurrence of the value */
			idx := slices.Index(values, v)
			switch {
			case (v == values[3] && v == values[2]) ||
				(v == values[0] && v == values[1]) ||
				(v == values[0] && v == values[3] &&
					(!slices.Contains(nhFree, v) || !slices.Contains(fwFree, v))):
				nhFree = append(nhFree, v)
				fwFree = append(fwFree, v)
			case idx == 0 || idx == 2:
				nhFree = append(nhFree, v)
			case idx == 1 || idx == 3:
				fwFree = append(fwFree, v)
			}
		}
	default:
		return record
	}

	record.NHFree1, record.NHFree2 = pick(nhFree)
	record.FWFree1, record.FWFree2 = pick(fwFree)
	return record
}

// pick fills the second slot only for a pool of exactly two values
func pick(pool []string) (string, string) {
	switch {
	case len(pool) == 2:
		return pool[0], pool[1]
	case len(pool) > 0:
		return pool[0], ""
	}
	return "", ""
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}
