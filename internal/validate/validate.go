// Package validate implements the Validator/Materialiser: given a fully
// merged parseopt.Result and each group's indexMap, it
// walks the rule table's resolve order, resolves Depend records, parses
// typed values, enforces allow-range/allow-list, applies defaults, and
// enforces required — producing the final per-option Slot arrays a
// Config is built from.
package validate

import (
	"strings"

	"github.com/pgguru/pgbackrest/internal/cfgerror"
	"github.com/pgguru/pgbackrest/internal/l10n"
	"github.com/pgguru/pgbackrest/internal/merge"
	"github.com/pgguru/pgbackrest/internal/parseopt"
	"github.com/pgguru/pgbackrest/internal/ruletable"
)

// Source tags where a materialised Slot's value ultimately came from,
// extending parseopt.Source with the fourth post-validation tag "default"
// (applied when no higher-precedence source set the option).
type Source int

const (
	SourceParam Source = iota
	SourceEnv
	SourceConfig
	SourceDefault
)

func (s Source) String() string {
	switch s {
	case SourceParam:
		return "param"
	case SourceEnv:
		return "environment"
	case SourceConfig:
		return "config"
	case SourceDefault:
		return "default"
	default:
		return "unknown"
	}
}

func fromParseSource(s parseopt.Source) Source {
	switch s {
	case parseopt.SourceEnv:
		return SourceEnv
	case parseopt.SourceConfig:
		return SourceConfig
	default:
		return SourceParam
	}
}

// Slot is one materialised (option, list-index) result.
type Slot struct {
	Value  *TypedValue
	Source Source
	Negate bool
	Reset  bool
}

// Option is the materialised result for one option id across every list
// index its group (or lack of one) implies.
type Option struct {
	Valid   bool
	Name    string
	Group   bool
	GroupID ruletable.GroupID
	Index   []Slot
}

// Materialise runs the Validator over every option in rule-table resolve
// order. groupStates must already have IndexMap/IndexDefaultExists filled
// in by merge.ResolveIndexMap for every group; IndexDefault is filled in
// separately by the caller after Materialise returns, via
// merge.ResolveDefaultIndex, since it needs these very results.
func Materialise(result *parseopt.Result, groupStates map[ruletable.GroupID]merge.GroupState, help bool) (map[ruletable.OptionID]*Option, error) {
	materialised := map[ruletable.OptionID]*Option{}

	for _, id := range ruletable.Options() {
		rule := ruletable.Option(id)
		valid := ruletable.OptionValid(id, result.Command, result.Role)

		opt := &Option{Valid: valid, Name: rule.Name, Group: rule.Group, GroupID: rule.GroupID}
		materialised[id] = opt

		if !valid {
			continue
		}

		keys := []int{0}
		if rule.Group {
			keys = groupStates[rule.GroupID].IndexMap
		}
		opt.Index = make([]Slot, len(keys))

		for i, key := range keys {
			slot, err := materialiseOne(result, materialised, groupStates, id, rule, key, help)
			if err != nil {
				return nil, err
			}
			opt.Index[i] = slot
		}
	}

	return materialised, nil
}

func materialiseOne(result *parseopt.Result, materialised map[ruletable.OptionID]*Option, groupStates map[ruletable.GroupID]merge.GroupState, id ruletable.OptionID, rule ruletable.OptionRule, key int, help bool) (Slot, error) {
	v := result.Slot(id, key)
	displayName := ruletable.DisplayName(rule, key)
	optionSet := v.Found && (rule.Type == ruletable.TypeBoolean || !v.Negate) && !v.Reset

	// negate/reset are recorded on every materialised slot regardless of
	// whether the option ends up set, defaulted, or left null.
	slot := Slot{Negate: v.Negate, Reset: v.Reset}

	if rec, ok := ruletable.Find(rule.Data, ruletable.RecordDepend, result.Command); ok {
		resolved, dependRef, err := resolveDepend(materialised, groupStates, rec, key)
		if err != nil {
			return Slot{}, err
		}
		if !resolved {
			if optionSet && v.Source == parseopt.SourceParam {
				return Slot{}, cfgerror.New(cfgerror.KindOptionInvalid,
					l10n.T("option '%s' not valid without option '%s'", displayName, dependRef))
			}
			return slot, nil
		}
	}

	if !optionSet {
		if defRec, ok := ruletable.Find(rule.Data, ruletable.RecordDefault, result.Command); ok {
			tv, err := parseTyped(rule.Type, defRec.Default, false)
			if err != nil {
				return Slot{}, err
			}
			slot.Value, slot.Source = tv, SourceDefault
			return slot, nil
		}

		if ruletable.OptionRequired(id, result.Command) && !help {
			hint := ""
			if rule.Section == ruletable.SectionStanza {
				hint = l10n.T("does this stanza exist?")
			}
			return Slot{}, cfgerror.WithHint(cfgerror.KindOptionRequired, hint, l10n.T("option '%s' required but not set", displayName))
		}

		return slot, nil
	}

	if v.Negate && rule.Type != ruletable.TypeBoolean {
		slot.Source = fromParseSource(v.Source)
		return slot, nil
	}

	tv, err := parseValue(rule, v, displayName)
	if err != nil {
		return Slot{}, err
	}

	rawValue := ""
	if len(v.Values) > 0 {
		rawValue = v.Values[len(v.Values)-1]
	}
	if err := checkAllowed(rule, result.Command, tv, rawValue, displayName); err != nil {
		return Slot{}, err
	}

	slot.Value, slot.Source = tv, fromParseSource(v.Source)
	return slot, nil
}

func parseValue(rule ruletable.OptionRule, v *parseopt.Value, displayName string) (*TypedValue, error) {
	switch rule.Type {
	case ruletable.TypeBoolean:
		return parseTyped(rule.Type, "", v.Negate)
	case ruletable.TypeList:
		return parseList(v.Values), nil
	case ruletable.TypeHash:
		return parseHash(v.Values)
	default:
		if len(v.Values) == 0 {
			return nil, cfgerror.New(cfgerror.KindOptionInvalidValue, l10n.T("option '%s' has no value", displayName))
		}
		return parseTyped(rule.Type, v.Values[len(v.Values)-1], false)
	}
}

func checkAllowed(rule ruletable.OptionRule, command ruletable.Command, tv *TypedValue, rawValue, displayName string) error {
	switch rule.Type {
	case ruletable.TypeInteger, ruletable.TypeSize, ruletable.TypeTime:
		if rec, ok := ruletable.Find(rule.Data, ruletable.RecordAllowRange, command); ok {
			if tv.Int < rec.RangeMin || tv.Int > rec.RangeMax {
				return cfgerror.New(cfgerror.KindOptionInvalidValue, l10n.T("'%s' is out of range for '%s' option", rawValue, displayName))
			}
		}
	case ruletable.TypeString, ruletable.TypePath:
		if rec, ok := ruletable.Find(rule.Data, ruletable.RecordAllowList, command); ok {
			allowed := false
			for _, a := range rec.AllowList {
				if a == tv.Str {
					allowed = true
					break
				}
			}
			if !allowed {
				return cfgerror.New(cfgerror.KindOptionInvalidValue, l10n.T("'%s' is not allowed for '%s'", tv.Str, displayName))
			}
		}
	}
	return nil
}

// resolveDepend reads the depend option's already-materialised value at
// the same raw key index (translated through the depend option's own
// group indexMap, since a grouped dependency's Index slice is positional
// within its own indexMap, not keyed by raw key directly). It reports
// whether the depend is resolved and, for the error path, the depend
// option reference to cite in the "not valid without option '%s'"
// message: the depend's absence cites its plain display name; a present
// value that fails the record's allow-list cites the enriched
// no-<name>/" = 'x'"/" in ('x', 'y')" form dependErrorReference builds.
func resolveDepend(materialised map[ruletable.OptionID]*Option, groupStates map[ruletable.GroupID]merge.GroupState, rec ruletable.Record, key int) (bool, string, error) {
	dependRule := ruletable.Option(rec.DependOption)
	dependOpt, ok := materialised[rec.DependOption]
	dependDisplay := ruletable.DisplayName(dependRule, key)
	if !ok {
		return false, dependDisplay, cfgerror.New(cfgerror.KindAssertError, l10n.T("option depends on '%s' which has not been materialised yet", dependRule.Name))
	}

	pos := 0
	if dependRule.Group {
		pos = -1
		for i, k := range groupStates[dependRule.GroupID].IndexMap {
			if k == key {
				pos = i
				break
			}
		}
		if pos < 0 {
			return false, dependDisplay, nil
		}
	}

	if pos >= len(dependOpt.Index) || dependOpt.Index[pos].Value == nil {
		return false, dependDisplay, nil
	}

	if len(rec.AllowList) == 0 {
		return true, dependDisplay, nil
	}

	depStr := AsDependString(dependOpt.Index[pos].Value)
	for _, allowed := range rec.AllowList {
		if allowed == depStr {
			return true, dependDisplay, nil
		}
	}
	return false, dependErrorReference(dependRule, dependDisplay, rec.AllowList), nil
}

// dependErrorReference formats the depend option's citation for a
// depend-unsatisfied error where the depend option does have a value, but
// one outside rec's allow-list: a single boolean-false candidate replaces
// the name with "no-<name>"; remaining non-boolean candidates render as a
// quoted, comma-joined "= 'x'" / "in ('x', 'y')" suffix appended to it.
func dependErrorReference(dependRule ruletable.OptionRule, dependDisplay string, allowList []string) string {
	name := dependDisplay
	var candidates []string
	for _, v := range allowList {
		if dependRule.Type == ruletable.TypeBoolean {
			if v == "0" {
				name = "no-" + dependDisplay
			}
			continue
		}
		candidates = append(candidates, "'"+v+"'")
	}

	switch len(candidates) {
	case 0:
		return name
	case 1:
		return name + " = " + candidates[0]
	default:
		return name + " in (" + strings.Join(candidates, ", ") + ")"
	}
}
