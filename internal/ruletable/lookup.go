package ruletable

import (
	"strconv"
	"strings"
)

// Find replicates parseRuleOptionDataFind's linear scan over an option's
// optional-data stream: records before the first RecordCommand are global;
// a RecordCommand entry scopes every record after it (of any type) until
// the next RecordCommand or end of stream. When a later RecordCommand for
// the SAME command we already matched under is reached without finding
// typeFind, the scan has left that command's scope — we stop rather than
// keep scanning into an unrelated command's records, exactly like the C
// source's "we found our own command scope and ran off the end of it"
// break. Last match wins: a global record found is remembered, but a
// later command-scoped match for the requested command overrides it.
func Find(records []Record, typeFind RecordType, command Command) (Record, bool) {
	var (
		result    Record
		found     bool
		inCommand = CmdNone
	)

	for _, rec := range records {
		if rec.Type == RecordCommand {
			if inCommand == command && !found {
				// We were inside the command we care about and didn't find
				// what we wanted before leaving its scope: nothing further
				// in a different command's scope can be ours.
				break
			}
			inCommand = rec.Command
			continue
		}

		if rec.Type != typeFind {
			continue
		}

		if inCommand == CmdNone {
			// Global record: remember it, but keep scanning — a
			// command-scoped record later in the stream wins.
			result, found = rec, true
			continue
		}

		if inCommand == command {
			result, found = rec, true
		}
	}

	return result, found
}

// CommandByName resolves a bare command name (no role suffix) to a Command.
func CommandByName(name string) (Command, bool) {
	for _, c := range commandOrder {
		if commandRule[c].Name == name {
			return c, true
		}
	}
	return CmdNone, false
}

// CommandName reports a command's canonical textual name.
func CommandName(c Command) string {
	return commandRule[c].Name
}

// CommandParametersAllowed reports whether c accepts positional parameters.
func CommandParametersAllowed(c Command) bool {
	return commandRule[c].ParametersAllowed
}

// CommandRoleValid reports whether role is a valid role for c.
func CommandRoleValid(c Command, role Role) bool {
	return commandRule[c].ValidRoles&(1<<uint(role)) != 0
}

// Commands returns every declared command, in declaration order.
func Commands() []Command {
	out := make([]Command, len(commandOrder))
	copy(out, commandOrder)
	return out
}

// Option returns the rule declared for id.
func Option(id OptionID) OptionRule {
	return optionRule[id]
}

// Options returns every declared option id, in resolve order. The resolve
// order already respects every Depend edge (see validateRuleTable), so
// callers that materialise options in this order never need a second
// topological pass.
func Options() []OptionID {
	out := make([]OptionID, len(resolveOrder))
	copy(out, resolveOrder)
	return out
}

// OptionValid reports whether id is valid for (command, role).
func OptionValid(id OptionID, command Command, role Role) bool {
	return optionRule[id].ValidCommands[role]&(1<<uint(command)) != 0
}

// OptionRequired reports whether id is required for command, honoring any
// RecordRequired override (e.g. stanza is optional for info, required for
// stanza-create).
func OptionRequired(id OptionID, command Command) bool {
	rule := optionRule[id]
	if rec, ok := Find(rule.Data, RecordRequired, command); ok {
		return rec.Required
	}
	return rule.Required
}

// Group returns the rule declared for id.
func Group(id GroupID) GroupRule {
	return groupRule[id]
}

// KeyIndexName formats a group option's display name for a given 0-based key
// index, e.g. ("pg-path", 0) -> "pg1-path", matching formatKeyIdxName's
// "group name, 1-based key, suffix" shape.
func KeyIndexName(groupName, suffix string, keyIndex int) string {
	return groupName + strconv.Itoa(keyIndex+1) + "-" + suffix
}

// DisplayName formats rule's user-visible name for a given 0-based key
// index, substituting the group prefix + (keyIndex+1) for grouped options
// and returning ungrouped names as-is.
func DisplayName(rule OptionRule, keyIndex int) string {
	if !rule.Group {
		return rule.Name
	}
	group, suffix, _ := strings.Cut(rule.Name, "-")
	return KeyIndexName(group, suffix, keyIndex)
}

// resolvedAlias is what Resolve reports for a recognized textual option
// name: which option and (for grouped options) which key index it refers
// to, plus any negate/reset/deprecated flags implied by the spelling.
type resolvedAlias struct {
	OptionID   OptionID
	KeyIndex   int
	Negate     bool
	Reset     bool
	Deprecated bool
}

// Resolve maps a textual option name — as it appears on argv (after
// stripping the leading "--"), in a PGBACKREST_ environment variable (after
// lower-kebab-casing), or as an INI key — to a concrete option and key
// index.
//
// Unlike the source engine's generated parse.auto.c, which emits one
// literal getopt_long entry per (option, key, negate/reset) combination,
// this resolves negate ("no-") and reset ("reset-") prefixes and grouped
// "<group><N>-<suffix>" spellings generically: the key range is data (up to
// KeyIndexMax), not something worth enumerating in code. See DESIGN.md for
// why this is judged a legitimate generalization rather than a behavior
// change: the resulting (option, key, flag) tuples are identical, just
// derived instead of tabulated.
func Resolve(name string) (resolvedAlias, bool) {
	for _, a := range explicitAlias {
		if a.Name == name {
			return resolvedAlias{OptionID: a.OptionID, KeyIndex: a.KeyIndex, Negate: a.Negate, Reset: a.Reset, Deprecated: a.Deprecated}, true
		}
	}

	if base, ok := strings.CutPrefix(name, "no-"); ok {
		r, ok := Resolve(base)
		if !ok || r.Negate || r.Reset {
			return resolvedAlias{}, false
		}
		if optionRule[r.OptionID].Type != TypeBoolean {
			return resolvedAlias{}, false
		}
		r.Negate = true
		return r, true
	}

	if base, ok := strings.CutPrefix(name, "reset-"); ok {
		r, ok := Resolve(base)
		if !ok || r.Negate || r.Reset {
			return resolvedAlias{}, false
		}
		if !hasAnyDefault(optionRule[r.OptionID]) {
			return resolvedAlias{}, false
		}
		r.Reset = true
		return r, true
	}

	if id, ok := ungroupedByName(name); ok {
		return resolvedAlias{OptionID: id}, true
	}

	if id, keyIndex, ok := groupedByName(name); ok {
		return resolvedAlias{OptionID: id, KeyIndex: keyIndex}, true
	}

	return resolvedAlias{}, false
}

func ungroupedByName(name string) (OptionID, bool) {
	for id, rule := range optionRule {
		if !rule.Group && rule.Name == name {
			return id, true
		}
	}
	return 0, false
}

// groupedByName matches "<groupname><digits>-<suffix>", e.g. "pg3-path"
// against the pg group's pg-path option (suffix "path", keyIndex 2).
func groupedByName(name string) (OptionID, int, bool) {
	for gid, g := range groupRule {
		if !strings.HasPrefix(name, g.Name) {
			continue
		}
		rest := name[len(g.Name):]
		digits := 0
		for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
			digits++
		}
		if digits == 0 || digits >= len(rest) || rest[digits] != '-' {
			continue
		}
		keyNum, err := strconv.Atoi(rest[:digits])
		if err != nil || keyNum < 1 || keyNum > KeyIndexMax {
			continue
		}
		suffix := rest[digits+1:]

		for id, rule := range optionRule {
			if !rule.Group || rule.GroupID != gid {
				continue
			}
			baseSuffix := strings.TrimPrefix(rule.Name, g.Name+"-")
			if baseSuffix == suffix {
				return id, keyNum - 1, true
			}
		}
	}
	return 0, 0, false
}

func hasAnyDefault(rule OptionRule) bool {
	for _, rec := range rule.Data {
		if rec.Type == RecordDefault {
			return true
		}
	}
	return false
}
