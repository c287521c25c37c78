// Package merge implements the Source Merger and Group Resolver: it folds
// a parsed inifile.Document into a parseopt.Result already populated by
// argv/env, then computes each group's indexMap/indexDefault.
package merge

import (
	"github.com/pgguru/pgbackrest/internal/cfgerror"
	"github.com/pgguru/pgbackrest/internal/cfglog"
	"github.com/pgguru/pgbackrest/internal/inifile"
	"github.com/pgguru/pgbackrest/internal/l10n"
	"github.com/pgguru/pgbackrest/internal/parseopt"
	"github.com/pgguru/pgbackrest/internal/ruletable"
)

// Merge folds doc into result following the search-order and precedence
// rules below. doc may be nil (no config sources loaded), in which case
// Merge is a no-op. stanza is the value of the "stanza" option already
// resolved from argv/env, if any.
func Merge(result *parseopt.Result, doc *inifile.Document, stanza string, warn cfglog.Warner) error {
	if doc == nil {
		return nil
	}

	commandName := ruletable.CommandName(result.Command)

	for _, section := range inifile.StanzaSections(stanza, commandName) {
		s, ok := doc.Sections[section]
		if !ok {
			continue
		}

		commandScoped := inifile.IsCommandScoped(section, commandName)
		global := inifile.IsGlobalSection(section)

		foundInSection := map[ruletable.OptionID]map[int]bool{}

		for _, key := range s.Order {
			values := s.Keys[key]

			alias, ok := ruletable.Resolve(key)
			if !ok {
				warn.Warn(l10n.T("section '%s', key '%s' is not a valid option", section, key))
				continue
			}
			rule := ruletable.Option(alias.OptionID)

			if alias.Negate || alias.Reset {
				warn.Warn(l10n.T("section '%s', key '%s' cannot be negated or reset in a configuration file", section, key))
				continue
			}
			if rule.Section == ruletable.SectionCommandLine {
				warn.Warn(l10n.T("section '%s', key '%s' is only valid on the command line", section, key))
				continue
			}

			byKey, ok := foundInSection[alias.OptionID]
			if !ok {
				byKey = map[int]bool{}
				foundInSection[alias.OptionID] = byKey
			}
			if byKey[alias.KeyIndex] {
				return cfgerror.New(cfgerror.KindOptionInvalid,
					l10n.T("section '%s' has duplicate options for '%s'", section, rule.Name))
			}
			byKey[alias.KeyIndex] = true

			if commandScoped && !ruletable.OptionValid(alias.OptionID, result.Command, result.Role) {
				warn.Warn(l10n.T("section '%s', key '%s' is not valid for command '%s'", section, key, commandName))
				continue
			}

			if rule.Section == ruletable.SectionStanza && global {
				warn.Warn(l10n.T("section '%s', key '%s' is stanza-only but appears in a global section", section, key))
				continue
			}

			if alias.Deprecated {
				warn.Warn(l10n.T("section '%s', key '%s' is deprecated", section, key))
			}

			v := result.Slot(alias.OptionID, alias.KeyIndex)
			if v.Found {
				// A higher-precedence source (param, env, or an earlier
				// section in the search order) already won this slot.
				continue
			}

			if rule.Type == ruletable.TypeBoolean {
				if len(values) != 1 || (values[0] != "y" && values[0] != "n") {
					return cfgerror.New(cfgerror.KindOptionInvalidValue,
						l10n.T("section '%s', key '%s' must be 'y' or 'n'", section, key))
				}
				v.Found, v.Source, v.Negate = true, parseopt.SourceConfig, values[0] == "n"
				continue
			}

			if len(values) > 1 && !rule.Multi {
				return cfgerror.New(cfgerror.KindOptionInvalid,
					l10n.T("section '%s', key '%s' does not accept multiple values", section, key))
			}
			if len(values) == 1 && values[0] == "" {
				return cfgerror.New(cfgerror.KindOptionInvalidValue,
					l10n.T("section '%s', key '%s' must not be empty", section, key))
			}

			v.Values = append([]string(nil), values...)
			v.Found, v.Source = true, parseopt.SourceConfig
		}
	}

	return nil
}

// GroupState is the computed per-group result of §4.5.
type GroupState struct {
	IndexMap          []int
	IndexDefault      int
	IndexDefaultExists bool
}

// groupMemberKeys returns the union of key indexes found (and not reset)
// across every option in groupID, ascending.
func groupMemberKeys(result *parseopt.Result, groupID ruletable.GroupID) []int {
	seen := map[int]bool{}
	for id := range allOptions() {
		rule := ruletable.Option(id)
		if !rule.Group || rule.GroupID != groupID {
			continue
		}
		for _, k := range result.KeyIndexes(id) {
			v := result.Slot(id, k)
			if v.Found && !v.Reset {
				seen[k] = true
			}
		}
	}

	out := make([]int, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

func allOptions() map[ruletable.OptionID]bool {
	out := map[ruletable.OptionID]bool{}
	for _, id := range ruletable.Options() {
		out[id] = true
	}
	return out
}

// ResolveIndexMap computes the indexMap/indexDefaultExists half of a
// group's GroupState, applying the "pg" group's key-1 reservation. This
// runs right after Merge, before the Validator, because the validator
// needs indexTotal to size each grouped option's per-key slots.
//
// Mirrors parse.c's two-phase index build exactly, "???" comment and all:
// phase one counts every distinct found-and-not-reset key across the
// group's options, including key 0; phase two fills the index map, and for
// the pg group position 0 is hard-reserved for key 0 without re-scanning
// for it — the scan for any *other* member only starts at key 1 — "to
// maintain compatibility with older versions" that assumed a single pg1.
// An empty group (nothing found at all) still synthesizes index 0 so
// default-only options can materialize.
//
// selectorValid reports whether the group's own "pg"/"repo" selector
// option is valid for the active command — repo's indexDefaultExists is
// conditioned on this; pg's is unconditional.
func ResolveIndexMap(result *parseopt.Result, groupID ruletable.GroupID, selectorValid bool) GroupState {
	keys := groupMemberKeys(result, groupID)

	var indexMap []int
	switch {
	case len(keys) == 0:
		indexMap = []int{0}
	case groupID == ruletable.GroupPg:
		indexMap = append(indexMap, 0)
		for _, k := range keys {
			if k >= 1 {
				indexMap = append(indexMap, k)
			}
		}
	default:
		indexMap = keys
	}

	return GroupState{
		IndexMap:           indexMap,
		IndexDefaultExists: groupID == ruletable.GroupPg || (groupID == ruletable.GroupRepo && selectorValid),
	}
}

// ResolveDefaultIndex fills in state.IndexDefault from the group's already
// materialised "pg"/"repo" selector option value. This is a dedicated pass
// run after the full Validator/Materialiser loop, because it needs the
// selector's *parsed* integer value, not the raw string that was available
// when ResolveIndexMap ran.
func ResolveDefaultIndex(state GroupState, groupID ruletable.GroupID, selectorValue int64, selectorFound bool) (GroupState, error) {
	if !selectorFound {
		state.IndexDefault = 0
		return state, nil
	}

	idx := -1
	for i, k := range state.IndexMap {
		if k == int(selectorValue)-1 {
			idx = i
			break
		}
	}
	if idx < 0 {
		return state, cfgerror.New(cfgerror.KindOptionInvalidValue,
			l10n.T("key '%d' is not valid for '%s' option", selectorValue, ruletable.Group(groupID).Name))
	}

	state.IndexDefault = idx
	return state, nil
}
