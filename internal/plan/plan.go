// Package plan describes market profiles: which provider to query, which intervals to
// download and how each interval's date range is derived.
package plan

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"gopkg.in/yaml.v2"

	"github.com/budydeveloper/crypto-dataset/internal/model"
	"github.com/budydeveloper/crypto-dataset/internal/provider"
	"github.com/budydeveloper/crypto-dataset/internal/tickers"
)

//go:embed profiles.yaml
var defaultProfiles []byte

// Range modes.
const (
	ModeResume   = "resume"   // continue after the last stored row, else from the first available candle
	ModeLookback = "lookback" // fixed window ending now
	ModePeriod   = "period"   // single provider range query such as "60d" or "max"
	ModeFull     = "full"     // whole history from the provider epoch
)

// IntervalPlan controls the download of one interval.
type IntervalPlan struct {
	Name          string `yaml:"name"`
	Mode          string `yaml:"mode"`
	ChunkDays     int    `yaml:"chunk_days"`
	LookbackDays  int    `yaml:"lookback_days"`
	Period        string `yaml:"period"`
	PreferFetched bool   `yaml:"prefer_fetched"`
}

// Profile is one market configuration.
type Profile struct {
	Name         string         `yaml:"-"`
	Provider     string         `yaml:"provider"`
	TickersFile  string         `yaml:"tickers_file"`
	Folder       string         `yaml:"folder"`
	TrimSuffix   string         `yaml:"trim_suffix"`
	SymbolSuffix string         `yaml:"symbol_suffix"`
	Subdir       string         `yaml:"subdir"`
	Layout       string         `yaml:"layout"`
	Intervals    []IntervalPlan `yaml:"intervals"`
}

// Document is the parsed profiles file.
type Document struct {
	Profiles map[string]*Profile `yaml:"profiles"`
}

// Load parses path, or the embedded defaults when path is empty.
func Load(path string) (*Document, error) {
	data := defaultProfiles
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read profiles %s: %w", path, err)
		}
		data = b
	}
	return Parse(data)
}

// Parse decodes and validates a profiles document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}
	if len(doc.Profiles) == 0 {
		return nil, fmt.Errorf("parse profiles: no profiles defined")
	}
	for name, p := range doc.Profiles {
		if p == nil {
			return nil, fmt.Errorf("profile %q is empty", name)
		}
		p.Name = name
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("profile %q: %w", name, err)
		}
	}
	return &doc, nil
}

// Profile returns the named profile.
func (d *Document) Profile(name string) (*Profile, error) {
	p, ok := d.Profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q (available: %v)", name, d.Names())
	}
	return p, nil
}

// Names lists profile names in sorted order.
func (d *Document) Names() []string {
	names := make([]string, 0, len(d.Profiles))
	for n := range d.Profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (p *Profile) validate() error {
	capability, ok := provider.CapabilityOf(p.Provider)
	if !ok {
		return fmt.Errorf("unknown provider %q (available: %v)", p.Provider, provider.Names())
	}
	if _, ok := model.LayoutByName(p.Layout); !ok {
		return fmt.Errorf("unknown layout %q", p.Layout)
	}
	if _, err := tickers.Folder("X", p.Folder, p.TrimSuffix); err != nil {
		return err
	}
	if len(p.Intervals) == 0 {
		return fmt.Errorf("no intervals")
	}
	for i := range p.Intervals {
		ip := &p.Intervals[i]
		if _, err := model.ParseInterval(ip.Name); err != nil {
			return err
		}
		if !capability.Has(ip.Name) {
			return fmt.Errorf("interval %s: not served by %s", ip.Name, p.Provider)
		}
		switch ip.Mode {
		case ModeResume, ModeFull:
			if ip.ChunkDays <= 0 {
				return fmt.Errorf("interval %s: %s mode needs chunk_days", ip.Name, ip.Mode)
			}
		case ModeLookback:
			if ip.ChunkDays <= 0 || ip.LookbackDays <= 0 {
				return fmt.Errorf("interval %s: lookback mode needs chunk_days and lookback_days", ip.Name)
			}
		case ModePeriod:
			if ip.Period == "" {
				return fmt.Errorf("interval %s: period mode needs period", ip.Name)
			}
			if !capability.Period {
				return fmt.Errorf("interval %s: %s does not answer period queries", ip.Name, p.Provider)
			}
		default:
			return fmt.Errorf("interval %s: unknown mode %q", ip.Name, ip.Mode)
		}
		clamp(p.Provider, ip)
	}
	return nil
}

// LayoutModel returns the model layout of the profile. Profiles are validated on load.
func (p *Profile) LayoutModel() model.Layout {
	l, _ := model.LayoutByName(p.Layout)
	return l
}

// Select keeps only the named intervals, in profile order. An empty list keeps all.
func (p *Profile) Select(names []string) ([]IntervalPlan, error) {
	if len(names) == 0 {
		return p.Intervals, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []IntervalPlan
	for _, ip := range p.Intervals {
		if want[ip.Name] {
			out = append(out, ip)
			delete(want, ip.Name)
		}
	}
	if len(want) > 0 {
		missing := make([]string, 0, len(want))
		for n := range want {
			missing = append(missing, n)
		}
		sort.Strings(missing)
		return nil, fmt.Errorf("profile %q has no intervals %v", p.Name, missing)
	}
	return out, nil
}

// yahooMinuteIntervals only serve about thirty days of history.
var yahooMinuteIntervals = map[string]bool{"1m": true, "2m": true, "5m": true, "15m": true, "30m": true}

// clamp applies provider query limits.
func clamp(providerName string, ip *IntervalPlan) {
	if providerName != "yahoo" || ip.Mode != ModeLookback {
		return
	}
	if yahooMinuteIntervals[ip.Name] && ip.LookbackDays > 30 {
		slog.Warn("lookback above provider limit, clamping", "interval", ip.Name, "lookback_days", ip.LookbackDays, "max", 30)
		ip.LookbackDays = 30
	}
	if ip.Name == "1m" && ip.ChunkDays > 8 {
		slog.Warn("chunk above provider limit, clamping", "interval", ip.Name, "chunk_days", ip.ChunkDays, "max", 8)
		ip.ChunkDays = 8
	}
}
