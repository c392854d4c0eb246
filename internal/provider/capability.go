package provider

import "sort"

// Capability is what a provider can be asked for.
type Capability struct {
	Intervals []string
	// Period is true when the provider answers range queries like "60d" or "max".
	Period bool
}

var capabilities = map[string]Capability{
	"binance": {
		Intervals: []string{"1m", "5m", "15m", "30m", "60m", "1h", "1d", "1wk", "1mo"},
	},
	"yahoo": {
		Intervals: []string{"1m", "2m", "5m", "15m", "30m", "60m", "90m", "1h", "1d", "5d", "1wk", "1mo", "3mo"},
		Period:    true,
	},
	"polygon": {
		Intervals: []string{"1m", "5m", "15m", "30m", "60m", "90m", "1h", "1d", "1wk", "1mo", "3mo"},
	},
}

// CapabilityOf returns the capability of the named provider.
func CapabilityOf(name string) (Capability, bool) {
	c, ok := capabilities[name]
	return c, ok
}

// Names lists known provider names in sorted order.
func Names() []string {
	out := make([]string, 0, len(capabilities))
	for n := range capabilities {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Has reports whether interval is in c.
func (c Capability) Has(interval string) bool {
	for _, iv := range c.Intervals {
		if iv == interval {
			return true
		}
	}
	return false
}
