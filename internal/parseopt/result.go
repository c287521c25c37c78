// Package parseopt implements the Argv Parser and Env Importer: the two
// components that populate a Result's ParseOption value slots before the
// Source Merger (internal/merge) folds in on-disk configuration.
package parseopt

import "github.com/pgguru/pgbackrest/internal/ruletable"

// Source records which collaborator set a Value, for the "param > env >
// config" precedence law and for diagnostics that mention where a value
// came from.
type Source int

const (
	SourceParam Source = iota
	SourceEnv
	SourceConfig
)

func (s Source) String() string {
	switch s {
	case SourceParam:
		return "param"
	case SourceEnv:
		return "environment"
	case SourceConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Value is one ParseOption slot: the per-(option, key index) record of
// whether/how/where a value was set before typed validation.
type Value struct {
	Found  bool
	Negate bool
	Reset  bool
	Source Source
	Values []string
}

// Result is the full output of the Argv Parser, Env Importer, and Source
// Merger combined: the command, its role, its positional parameters, and
// every option's Value slots keyed by (option id, key index). Ungrouped
// options always use key index 0.
type Result struct {
	Command ruletable.Command
	Role    ruletable.Role
	Params  []string

	slots map[ruletable.OptionID]map[int]*Value
}

// NewResult returns an empty Result with no command resolved yet.
func NewResult() *Result {
	return &Result{
		Command: ruletable.CmdNone,
		Role:    ruletable.RoleDefault,
		slots:   map[ruletable.OptionID]map[int]*Value{},
	}
}

// Slot returns the Value for (id, keyIndex), creating an unfound one on
// first access.
func (r *Result) Slot(id ruletable.OptionID, keyIndex int) *Value {
	byKey, ok := r.slots[id]
	if !ok {
		byKey = map[int]*Value{}
		r.slots[id] = byKey
	}
	v, ok := byKey[keyIndex]
	if !ok {
		v = &Value{}
		byKey[keyIndex] = v
	}
	return v
}

// KeyIndexes returns every key index with a Value slot for id, ascending.
// Used by the Group Resolver to compute indexMap.
func (r *Result) KeyIndexes(id ruletable.OptionID) []int {
	byKey, ok := r.slots[id]
	if !ok {
		return nil
	}
	out := make([]int, 0, len(byKey))
	for k := range byKey {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
