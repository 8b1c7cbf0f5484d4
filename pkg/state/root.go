// Package state defines the persisted root document, the normalizer that
// keeps its invariants, and the pure account/entry operations applied to it.
package state

import (
	"encoding/json"
	"math"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"tableflip.dev/sip/pkg/entry"
)

const (
	// DefaultGoalML applies when a log has no usable goal.
	DefaultGoalML = 2000
	// DefaultAccountName labels synthesized and unnamed accounts.
	DefaultAccountName = "Personal"
)

// Root is the single persisted aggregate: every account plus the pointer to
// the active one.
type Root struct {
	Selected string              `json:"selected" yaml:"selected"`
	Accounts map[string]*Account `json:"accounts" yaml:"accounts"`
}

// Account is an isolated named profile.
type Account struct {
	Name string    `json:"name" yaml:"name"`
	Data *DailyLog `json:"data" yaml:"data"`
}

// DailyLog is an account's goal and its day buckets keyed by YYYY-MM-DD.
type DailyLog struct {
	GoalML int                      `json:"goal_ml" yaml:"goal_ml"`
	Days   map[string]*entry.Bucket `json:"days" yaml:"days"`
}

// UnmarshalJSON accepts a goal stored as any number or numeric string and
// rounds it. Goals that do not round to a positive integer decode as zero
// and are replaced by Normalize.
func (l *DailyLog) UnmarshalJSON(data []byte) error {
	var raw struct {
		GoalML json.RawMessage          `json:"goal_ml"`
		Days   map[string]*entry.Bucket `json:"days"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = DailyLog{GoalML: roundGoal(entry.Coerce(gjson.ParseBytes(raw.GoalML))), Days: raw.Days}
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON.
func (l *DailyLog) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		GoalML yaml.Node                `yaml:"goal_ml"`
		Days   map[string]*entry.Bucket `yaml:"days"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*l = DailyLog{GoalML: roundGoal(entry.CoerceNode(&raw.GoalML)), Days: raw.Days}
	return nil
}

// roundGoal rounds g into [0, MaxInt32].
func roundGoal(g float64) int {
	rounded := math.Round(g)
	switch {
	case !entry.Finite(rounded) || rounded < 0:
		return 0
	case rounded > math.MaxInt32:
		return math.MaxInt32
	}
	return int(rounded)
}

// NewDailyLog returns an empty log with the default goal.
func NewDailyLog() *DailyLog {
	return &DailyLog{GoalML: DefaultGoalML, Days: make(map[string]*entry.Bucket)}
}

// Bucket returns the bucket for key, or nil.
func (l *DailyLog) Bucket(key string) *entry.Bucket {
	if l == nil || l.Days == nil {
		return nil
	}
	return l.Days[key]
}

// EnsureBucket returns the bucket for key, creating it when absent.
func (l *DailyLog) EnsureBucket(key string) *entry.Bucket {
	if l.Days == nil {
		l.Days = make(map[string]*entry.Bucket)
	}
	b := l.Days[key]
	if b == nil {
		b = entry.NewBucket()
		l.Days[key] = b
	}
	if b.Entries == nil {
		b.Entries = []entry.Entry{}
	}
	return b
}

// Clone returns a deep copy.
func (l *DailyLog) Clone() *DailyLog {
	if l == nil {
		return nil
	}
	cp := &DailyLog{GoalML: l.GoalML}
	if l.Days != nil {
		cp.Days = make(map[string]*entry.Bucket, len(l.Days))
		for k, b := range l.Days {
			cp.Days[k] = b.Clone()
		}
	}
	return cp
}

// Clone returns a deep copy.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	return &Account{Name: a.Name, Data: a.Data.Clone()}
}

// Clone returns a deep copy of the root so callers can mutate it freely.
func (r *Root) Clone() *Root {
	if r == nil {
		return nil
	}
	cp := &Root{Selected: r.Selected}
	if r.Accounts != nil {
		cp.Accounts = make(map[string]*Account, len(r.Accounts))
		for id, a := range r.Accounts {
			cp.Accounts[id] = a.Clone()
		}
	}
	return cp
}

// Marshal encodes the root in its persisted JSON form.
func Marshal(r *Root) ([]byte, error) {
	return json.Marshal(r)
}

// MarshalIndent encodes the root for humans.
func MarshalIndent(r *Root) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Unmarshal decodes a persisted root. The result is not normalized.
func Unmarshal(data []byte) (*Root, error) {
	r := &Root{}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, err
	}
	return r, nil
}

// UnmarshalLegacy decodes a pre-multi-account document, which is a bare
// DailyLog.
func UnmarshalLegacy(data []byte) (*DailyLog, error) {
	l := &DailyLog{}
	if err := json.Unmarshal(data, l); err != nil {
		return nil, err
	}
	return l, nil
}
