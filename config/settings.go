package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rustyeddy/fxplan/market"
	"github.com/rustyeddy/fxplan/risk"
	"github.com/rustyeddy/fxplan/signal"
	"gopkg.in/yaml.v3"
)

var ErrPersistence = errors.New("settings persistence failed")

// Settings is the persisted operator document.
type Settings struct {
	Global risk.Params                `json:"global_settings" yaml:"global_settings"`
	Pairs  map[string]signal.Snapshot `json:"pair_settings" yaml:"pair_settings"`
}

// rawSettings detects missing sections.
type rawSettings struct {
	Global *risk.Params               `json:"global_settings" yaml:"global_settings"`
	Pairs  map[string]signal.Snapshot `json:"pair_settings" yaml:"pair_settings"`
}

// DefaultSnapshots are the starting readings for the default pairs.
func DefaultSnapshots() map[string]signal.Snapshot {
	return map[string]signal.Snapshot{
		"EUR/USD": {CurrentPrice: 1.08550, EMAReference: 1.08200, RSI: 40, RawATR: 0.00150},
		"GBP/USD": {CurrentPrice: 1.27000, EMAReference: 1.26800, RSI: 50, RawATR: 0.00200},
		"USD/JPY": {CurrentPrice: 157.100, EMAReference: 156.800, RSI: 60, RawATR: 0.15000},
		"AUD/USD": {CurrentPrice: 0.66500, EMAReference: 0.66300, RSI: 50, RawATR: 0.00120},
	}
}

func DefaultSettings() Settings {
	return Settings{Global: risk.DefaultParams(), Pairs: DefaultSnapshots()}
}

// DecodeSettings parses a JSON or YAML document. A document lacking either
// section yields the defaults.
func DecodeSettings(data []byte, yamlFormat bool) (Settings, error) {
	var raw rawSettings
	var err error
	if yamlFormat {
		err = yaml.Unmarshal(data, &raw)
	} else {
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return Settings{}, err
	}
	if raw.Global == nil || raw.Pairs == nil {
		return DefaultSettings(), nil
	}
	if err := validateGlobal(*raw.Global); err != nil {
		return Settings{}, err
	}
	s := Settings{Global: *raw.Global, Pairs: make(map[string]signal.Snapshot, len(raw.Pairs))}
	for k, v := range raw.Pairs {
		s.Pairs[market.NormalizePair(k)] = v
	}
	return s, nil
}

// validateGlobal range checks the stored risk inputs. The balance is only
// required to be finite since reconciliation may take it to zero or below.
func validateGlobal(p risk.Params) error {
	if !market.Finite(p.AccountBalance) {
		return market.Invalid("account_balance", "must be finite, got %v", p.AccountBalance)
	}
	return risk.ValidateRiskPct(p.RiskPercentage)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// SettingsStore is the file-backed settings document. An empty path keeps
// everything in memory.
type SettingsStore struct {
	mu   sync.RWMutex
	path string
	doc  Settings
}

// OpenSettings loads path. A missing file yields defaults that are written
// on the first change. An unreadable document is an error and the file is
// left alone.
func OpenSettings(path string) (*SettingsStore, error) {
	s := &SettingsStore{path: path, doc: DefaultSettings()}
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w: %w", ErrPersistence, err)
	}
	doc, err := DecodeSettings(data, isYAML(path))
	if err != nil {
		return nil, fmt.Errorf("decode settings %s: %w: %w", path, ErrPersistence, err)
	}
	s.doc = doc
	return s, nil
}

// NewMemorySettings wraps a document without a backing file.
func NewMemorySettings(doc Settings) *SettingsStore {
	if doc.Pairs == nil {
		doc.Pairs = map[string]signal.Snapshot{}
	}
	return &SettingsStore{doc: doc}
}

func (s *SettingsStore) Path() string { return s.path }

func (s *SettingsStore) RiskParameters() (risk.Params, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Global, nil
}

// SetAccountBalance stores a new balance. Reconciliation may drive the
// balance to zero or below, so only finiteness is checked.
func (s *SettingsStore) SetAccountBalance(amount float64) error {
	if !market.Finite(amount) {
		return market.Invalid("account_balance", "must be finite, got %v", amount)
	}
	return s.update(func(d *Settings) { d.Global.AccountBalance = amount })
}

func (s *SettingsStore) SetRiskPercentage(pct float64) error {
	if err := risk.ValidateRiskPct(pct); err != nil {
		return err
	}
	return s.update(func(d *Settings) { d.Global.RiskPercentage = pct })
}

// SetSnapshot replaces a pair's readings wholesale after sanitising them.
// A rejected snapshot leaves the stored one untouched.
func (s *SettingsStore) SetSnapshot(pair string, snap signal.Snapshot) error {
	clean, err := snap.Sanitize()
	if err != nil {
		return err
	}
	pair = market.NormalizePair(pair)
	return s.update(func(d *Settings) { d.Pairs[pair] = clean })
}

// Snapshot returns the stored readings. Unknown pairs fall back to the
// default readings, or the zero snapshot.
func (s *SettingsStore) Snapshot(pair string) signal.Snapshot {
	pair = market.NormalizePair(pair)
	s.mu.RLock()
	snap, ok := s.doc.Pairs[pair]
	s.mu.RUnlock()
	if ok {
		return snap
	}
	return DefaultSnapshots()[pair]
}

// Pairs lists the pairs with stored readings.
func (s *SettingsStore) Pairs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.doc.Pairs))
	for p := range s.doc.Pairs {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Document returns a copy of the settings.
func (s *SettingsStore) Document() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSettings(s.doc)
}

// Save writes the current document.
func (s *SettingsStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(s.doc)
}

// update applies fn to a copy and only keeps it once written.
func (s *SettingsStore) update(fn func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneSettings(s.doc)
	fn(&next)
	if err := s.write(next); err != nil {
		return err
	}
	s.doc = next
	return nil
}

func (s *SettingsStore) write(doc Settings) error {
	if s.path == "" {
		return nil
	}
	var data []byte
	var err error
	if isYAML(s.path) {
		data, err = yaml.Marshal(doc)
	} else {
		data, err = json.MarshalIndent(doc, "", "    ")
	}
	if err != nil {
		return fmt.Errorf("marshal settings: %w: %w", ErrPersistence, err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("write settings: %w: %w", ErrPersistence, err)
	}
	return nil
}

func cloneSettings(s Settings) Settings {
	out := Settings{Global: s.Global, Pairs: make(map[string]signal.Snapshot, len(s.Pairs))}
	for k, v := range s.Pairs {
		out.Pairs[k] = v
	}
	return out
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
