package record

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// LogFileName is the fixed filename the trainer writes inside each run directory.
const LogFileName = "log.json"

// Directory name prefixes, one per experiment family.
const (
	ActivationPrefix = "activation_"
	WarmupPrefix     = "warmup_"
)

// Baselines every comparison is measured against.
const (
	ActivationBaseline = "gelu"
	WarmupBaseline     = "0.23"
)

// ActivationOrder is the canonical presentation order for the activation family.
// Keys not in this list are dropped when reordering.
var ActivationOrder = []string{"gelu", "relu_squared", "relu", "swish"}

var displayNames = map[string]string{
	"gelu":         "GELU",
	"relu":         "ReLU",
	"relu_squared": "ReLU²",
	"swish":        "Swish",
}

// RunRecord is the persisted summary of repeated training runs for one
// hyperparameter value. It is written by the external trainer and trusted
// on read: the summary scalars are not re-derived from the arrays.
type RunRecord struct {
	Activation  string    `json:"activation,omitempty"`
	WarmupRatio *float64  `json:"warmup_ratio,omitempty"`
	Accs        []float64 `json:"accs"`
	Times       []float64 `json:"times"`
	MeanAcc     float64   `json:"mean_acc"`
	StdAcc      float64   `json:"std_acc"`
	MeanTime    float64   `json:"mean_time"`
	StdTime     float64   `json:"std_time"`
	NumRuns     int       `json:"num_runs"`
}

// Key returns the hyperparameter value this record belongs to. The key comes
// from the record body, never from the directory name, so naming and content
// cannot drift apart.
func (r *RunRecord) Key() (string, error) {
	if r.Activation != "" {
		return r.Activation, nil
	}
	if r.WarmupRatio != nil {
		return KeyForRatio(*r.WarmupRatio), nil
	}
	return "", fmt.Errorf("record has neither activation nor warmup_ratio")
}

// KeyForRatio encodes a warmup ratio as a result-set key.
func KeyForRatio(r float64) string {
	return strconv.FormatFloat(r, 'g', -1, 64)
}

// RatioForKey parses a warmup key back into its numeric value.
func RatioForKey(key string) (float64, error) {
	v, err := strconv.ParseFloat(key, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing warmup key %q: %w", key, err)
	}
	return v, nil
}

// DisplayName returns the human-readable label for a key: the activation's
// presentation name, a two-decimal rendering for numeric keys, or the key
// itself.
func DisplayName(key string) string {
	if name, ok := displayNames[key]; ok {
		return name
	}
	if v, err := strconv.ParseFloat(key, 64); err == nil {
		return fmt.Sprintf("%.2f", v)
	}
	return key
}

// Set is an ordered mapping from hyperparameter key to run record.
type Set struct {
	Keys    []string
	Records map[string]*RunRecord
}

func NewSet() *Set {
	return &Set{Records: map[string]*RunRecord{}}
}

func (s *Set) Add(key string, rec *RunRecord) {
	if _, ok := s.Records[key]; !ok {
		s.Keys = append(s.Keys, key)
	}
	s.Records[key] = rec
}

func (s *Set) Get(key string) (*RunRecord, bool) {
	rec, ok := s.Records[key]
	return rec, ok
}

func (s *Set) Len() int {
	return len(s.Keys)
}

// Reorder rewrites the key order to follow the given canonical list,
// dropping keys not present in it.
func (s *Set) Reorder(order []string) {
	var keys []string
	records := map[string]*RunRecord{}
	for _, key := range order {
		if rec, ok := s.Records[key]; ok {
			keys = append(keys, key)
			records[key] = rec
		}
	}
	s.Keys = keys
	s.Records = records
}

// SortNumeric sorts the keys ascending by their numeric value.
func (s *Set) SortNumeric() error {
	var parseErr error
	sort.Slice(s.Keys, func(i, j int) bool {
		a, errA := strconv.ParseFloat(s.Keys[i], 64)
		b, errB := strconv.ParseFloat(s.Keys[j], 64)
		if errA != nil && parseErr == nil {
			parseErr = fmt.Errorf("non-numeric key %q", s.Keys[i])
		}
		if errB != nil && parseErr == nil {
			parseErr = fmt.Errorf("non-numeric key %q", s.Keys[j])
		}
		return a < b
	})
	return parseErr
}

// Load reads a single run record file.
func Load(path string) (*RunRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading record: %w", err)
	}
	var rec RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing record %s: %w", path, err)
	}
	return &rec, nil
}

// Write stores a run record as log.json under dir, creating dir if needed.
// The trainer is the usual writer; this exists for tests and tooling.
func Write(dir string, rec *RunRecord) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating record dir: %w", err)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, LogFileName), data, 0o644)
}

// LoadFamily scans the immediate subdirectories of logsDir whose names start
// with prefix and loads the record file inside each. Directories without a
// record file are skipped silently. A missing logsDir yields an empty set.
func LoadFamily(logsDir, prefix string) (*Set, error) {
	set := NewSet()
	entries, err := os.ReadDir(logsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return set, nil
		}
		return nil, fmt.Errorf("reading logs dir: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		path := filepath.Join(logsDir, entry.Name(), LogFileName)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		rec, err := Load(path)
		if err != nil {
			return nil, err
		}
		key, err := rec.Key()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		set.Add(key, rec)
	}
	return set, nil
}

// LoadActivations loads the activation family in its canonical order.
func LoadActivations(logsDir string) (*Set, error) {
	set, err := LoadFamily(logsDir, ActivationPrefix)
	if err != nil {
		return nil, err
	}
	set.Reorder(ActivationOrder)
	return set, nil
}

// LoadWarmups loads the warmup family sorted ascending by ratio.
func LoadWarmups(logsDir string) (*Set, error) {
	set, err := LoadFamily(logsDir, WarmupPrefix)
	if err != nil {
		return nil, err
	}
	if err := set.SortNumeric(); err != nil {
		return nil, err
	}
	return set, nil
}
