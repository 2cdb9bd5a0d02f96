// Package manifest handles intercede.toml policy configuration.
package manifest

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/tliron/commonlog"

	"github.com/chazu/intercede/policy"
	"github.com/chazu/intercede/proxy"
)

// FileName is the manifest file looked up by Load and FindAndLoad.
const FileName = "intercede.toml"

// Manifest represents an intercede.toml configuration.
type Manifest struct {
	Log      LogConfig `toml:"log"`
	Policies []Policy  `toml:"policy"`

	// Dir is the directory containing the intercede.toml file (set at load time).
	Dir string `toml:"-"`
}

// LogConfig configures commonlog output.
type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Policy declares the rules for one kind of proxied object.
type Policy struct {
	Name          string            `toml:"name"`
	PrivatePrefix string            `toml:"private-prefix"`
	ReadOnly      []string          `toml:"read-only"`
	Hidden        []string          `toml:"hidden"`
	Deny          []string          `toml:"deny"`
	Alias         map[string]string `toml:"alias"`
	Trace         bool              `toml:"trace"`
	Ranges        []Range           `toml:"range"`
}

// Range bounds numeric writes to Key. Missing bounds are open.
type Range struct {
	Key string   `toml:"key"`
	Min *float64 `toml:"min"`
	Max *float64 `toml:"max"`
}

// Load parses the intercede.toml file in the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m, err := Parse(data, path)
	if err != nil {
		return nil, err
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return m, nil
}

// Parse decodes and validates manifest content. source names the content
// in error messages.
func Parse(data []byte, source string) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", source, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", source, err)
	}
	return &m, nil
}

// FindAndLoad walks up from startDir to find an intercede.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// Validate checks policy names, deny kinds and range bounds.
func (m *Manifest) Validate() error {
	if m.Log.Verbosity < -4 || m.Log.Verbosity > 2 {
		return fmt.Errorf("log verbosity %d out of range [-4, 2]", m.Log.Verbosity)
	}
	seen := make(map[string]bool)
	for i, p := range m.Policies {
		if p.Name == "" {
			return fmt.Errorf("policy #%d has no name", i+1)
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate policy %q", p.Name)
		}
		seen[p.Name] = true

		for _, d := range p.Deny {
			if _, err := proxy.ParseKind(d); err != nil {
				return fmt.Errorf("policy %q: %w", p.Name, err)
			}
		}
		for _, r := range p.Ranges {
			if r.Key == "" {
				return fmt.Errorf("policy %q: range without key", p.Name)
			}
			if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
				return fmt.Errorf("policy %q: range %q has min %v > max %v", p.Name, r.Key, *r.Min, *r.Max)
			}
		}
		for from, to := range p.Alias {
			if from == "" || to == "" {
				return fmt.Errorf("policy %q: empty alias", p.Name)
			}
		}
	}
	return nil
}

// Policy returns the named policy.
func (m *Manifest) Policy(name string) (*Policy, error) {
	for i := range m.Policies {
		if m.Policies[i].Name == name {
			return &m.Policies[i], nil
		}
	}
	return nil, fmt.Errorf("no policy named %q", name)
}

// LogFile returns the log path for commonlog.Configure, nil for stderr.
// Relative paths resolve against the manifest directory.
func (m *Manifest) LogFile() *string {
	if m.Log.File == "" {
		return nil
	}
	path := m.Log.File
	if !filepath.IsAbs(path) && m.Dir != "" {
		path = filepath.Join(m.Dir, path)
	}
	return &path
}

// Rules converts the declarations into policy rules. Order: deny, private
// prefix, read-only, ranges.
func (p *Policy) Rules() ([]policy.Rule, error) {
	var rules []policy.Rule
	if len(p.Deny) > 0 {
		kinds := make([]proxy.Kind, 0, len(p.Deny))
		for _, d := range p.Deny {
			k, err := proxy.ParseKind(d)
			if err != nil {
				return nil, fmt.Errorf("policy %q: %w", p.Name, err)
			}
			kinds = append(kinds, k)
		}
		rules = append(rules, policy.Deny(kinds...))
	}
	if p.PrivatePrefix != "" {
		rules = append(rules, policy.PrivatePrefix(p.PrivatePrefix))
	}
	if len(p.ReadOnly) > 0 {
		rules = append(rules, policy.ReadOnly(p.ReadOnly...))
	}
	for _, r := range p.Ranges {
		lo, hi := math.Inf(-1), math.Inf(1)
		if r.Min != nil {
			lo = *r.Min
		}
		if r.Max != nil {
			hi = *r.Max
		}
		rules = append(rules, policy.Range(r.Key, lo, hi))
	}
	return rules, nil
}

// Options builds the policy options for this declaration. A nil logger
// selects the policy package default.
func (p *Policy) Options(logger commonlog.Logger) (policy.Options, error) {
	rules, err := p.Rules()
	if err != nil {
		return policy.Options{}, err
	}
	return policy.Options{
		Rules:  rules,
		Hidden: p.Hidden,
		Alias:  p.Alias,
		Trace:  p.Trace,
		Logger: logger,
	}, nil
}
