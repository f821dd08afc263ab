package pfemem

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"sync"
)

// Juniper OIDs
const (
	JuniperEnterprise = ".1.3.6.1.4.1.2636.3"
	// JUNIPER-MIB::jnxOperatingDescr of the FPC container (7)
	OperatingDescr = "1.13.1.5.7"
	// JUNIPER-PFE-MIB::jnxPfeMemoryForwardingPercentFree
	PfeMemoryForwardingPercentFree = "44.1.2.2.1.3"
)

// ServiceNameTemplate defines the display name of discovered items
const ServiceNameTemplate = "PFE %s Memory Utilization"

// Tree describes columns to fetch
type Tree struct {
	Base string
	OIDs []string
}

// Columns returns full OIDs of the tree columns
func (t Tree) Columns() []string {
	cols := make([]string, 0, len(t.OIDs))
	for _, oid := range t.OIDs {
		cols = append(cols, t.Base+"."+oid)
	}
	return cols
}

// Plugin describes a check with its section
type Plugin struct {
	Name                string
	ServiceNameTemplate string
	// Detect is the OID prefix that must exist on the device
	Detect   string
	Fetch    Tree
	Parse    func([]Row) Section
	Discover func(Section) []string
	Check    func(string, Section) iter.Seq2[Result, error]
}

// ServiceName renders the display name of the item
func (p Plugin) ServiceName(item string) string {
	return fmt.Sprintf(p.ServiceNameTemplate, item)
}

// PfeMemory is the plugin for PFE memory pools
var PfeMemory = Plugin{
	Name:                "pfememory",
	ServiceNameTemplate: ServiceNameTemplate,
	Detect:              JuniperEnterprise,
	Fetch: Tree{
		Base: JuniperEnterprise,
		OIDs: []string{OperatingDescr, PfeMemoryForwardingPercentFree},
	},
	Parse:    Parse,
	Discover: Discover,
	Check:    Check,
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Plugin{}
)

func init() {
	Register(PfeMemory)
}

// Register adds the plugin, a plugin with the same name is replaced
func Register(p Plugin) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[p.Name] = p
}

// Lookup returns the registered plugin
func Lookup(name string) (Plugin, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	p, ok := registry[name]
	return p, ok
}

// Discover returns item names of the section in stable order
func Discover(section Section) []string {
	return slices.Sorted(maps.Keys(section))
}

// ServiceName renders the display name of the item
func ServiceName(item string) string {
	return PfeMemory.ServiceName(item)
}
