package clients

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	snmp "github.com/gosnmp/gosnmp"
	"github.com/rs/zerolog/log"
	"github.com/sulefrederickjohne/pfememory/connectors/pfemem"
)

type gauge struct {
	pfe, typ int
	value    string
}

// AssembleRows builds one row per FPC description:
// the slot gauges ordered by (pfe, type) followed by the description.
// The description column is walked under the FPC container,
// so its index is L1.L2.L3 with L1 = slot+1.
// Memory table index is slot.pfe.type.
func AssembleRows(tree pfemem.Tree, pdus []snmp.SnmpPDU) []pfemem.Row {
	cols := tree.Columns()
	if len(cols) < 2 {
		return nil
	}
	descrCol, memCol := cols[0]+".", cols[1]+"."

	descr := map[int]string{}
	gauges := map[int][]gauge{}
	for _, pdu := range pdus {
		name := "." + strings.TrimPrefix(pdu.Name, ".")
		switch {
		case strings.HasPrefix(name, descrCol):
			idx, ok := parseIndex(strings.TrimPrefix(name, descrCol), 3)
			if !ok || idx[0] < 1 {
				continue
			}
			descr[idx[0]-1] = pduString(pdu)
		case strings.HasPrefix(name, memCol):
			idx, ok := parseIndex(strings.TrimPrefix(name, memCol), 3)
			if !ok {
				continue
			}
			gauges[idx[0]] = append(gauges[idx[0]], gauge{idx[1], idx[2], pduString(pdu)})
		}
	}

	slots := make([]int, 0, len(descr))
	for slot := range descr {
		slots = append(slots, slot)
	}
	slices.Sort(slots)

	rows := make([]pfemem.Row, 0, len(slots))
	for _, slot := range slots {
		gg := gauges[slot]
		slices.SortFunc(gg, func(a, b gauge) int {
			return cmp.Or(cmp.Compare(a.pfe, b.pfe), cmp.Compare(a.typ, b.typ))
		})
		row := make(pfemem.Row, 0, len(gg)+1)
		for _, g := range gg {
			row = append(row, g.value)
		}
		rows = append(rows, append(row, descr[slot]))
	}
	return rows
}

func parseIndex(s string, n int) ([]int, bool) {
	parts := strings.Split(s, ".")
	if len(parts) != n {
		return nil, false
	}
	idx := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, false
		}
		idx[i] = v
	}
	return idx, true
}

func pduString(pdu snmp.SnmpPDU) string {
	switch v := pdu.Value.(type) {
	case []byte:
		return string(v)
	case string:
		return v
	case nil:
		return ""
	}
	switch pdu.Type {
	case snmp.Integer, snmp.Counter32, snmp.Gauge32, snmp.Counter64, snmp.Uinteger32, snmp.TimeTicks:
		return snmp.ToBigInt(pdu.Value).String()
	}
	return fmt.Sprint(pdu.Value)
}

// ParseWalk reads snmpwalk output with numeric OIDs, lines like
//
//	.1.3.6.1.4.1.2636.3.1.13.1.5.7.1.0.0 = STRING: "FPC: MPC4E 3D 32XGE @ 0/*/*"
//	.1.3.6.1.4.1.2636.3.44.1.2.2.1.3.0.0.1 = Gauge32: 79 percent
//	.1.3.6.1.4.1.2636.3.1.13.1.6.7.1.0.0 = INTEGER: running(2)
//
// Numbers are taken from the leading field, enums from the parenthesized value.
// Lines in other formats or with unparsable values are skipped.
func ParseWalk(r io.Reader) ([]snmp.SnmpPDU, error) {
	var pdus []snmp.SnmpPDU
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		name, rest, ok := strings.Cut(scanner.Text(), " = ")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if after, found := strings.CutPrefix(name, "iso."); found {
			name = ".1." + after
		}
		typ, value, ok := strings.Cut(rest, ": ")
		if !ok {
			continue
		}
		pdu := snmp.SnmpPDU{Name: name}
		switch typ {
		case "STRING", "Hex-STRING":
			pdu.Type = snmp.OctetString
			pdu.Value = []byte(strings.Trim(value, `"`))
		case "Gauge32", "Counter32", "INTEGER", "Counter64":
			v, ok := walkInt(value)
			if !ok {
				log.Debug().Str("oid", name).Str("value", value).Msg("skipped walk value")
				continue
			}
			pdu.Type = map[string]snmp.Asn1BER{
				"Gauge32":   snmp.Gauge32,
				"Counter32": snmp.Counter32,
				"INTEGER":   snmp.Integer,
				"Counter64": snmp.Counter64,
			}[typ]
			pdu.Value = int(v)
		default:
			continue
		}
		pdus = append(pdus, pdu)
	}
	return pdus, scanner.Err()
}

// walkInt reads "79", "79 percent" and "running(2)"
func walkInt(value string) (int64, bool) {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return 0, false
	}
	s := fields[0]
	if _, enum, found := strings.Cut(s, "("); found {
		var ok bool
		if s, ok = strings.CutSuffix(enum, ")"); !ok {
			return 0, false
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	return v, err == nil
}
