package engine

import (
	"github.com/pgguru/pgbackrest/internal/merge"
	"github.com/pgguru/pgbackrest/internal/parseopt"
	"github.com/pgguru/pgbackrest/internal/ruletable"
	"github.com/pgguru/pgbackrest/internal/validate"
)

// Config is the immutable, fully resolved result of Parse. Every getter
// is read-only; there is no mutation surface once Parse returns.
type Config struct {
	command ruletable.Command
	role    ruletable.Role
	exe     string
	params  []string

	options map[ruletable.OptionID]*validate.Option
	groups  map[ruletable.GroupID]merge.GroupState
}

func newConfig(exe string, result *parseopt.Result, materialised map[ruletable.OptionID]*validate.Option, groups map[ruletable.GroupID]merge.GroupState) *Config {
	return &Config{
		command: result.Command,
		role:    result.Role,
		exe:     exe,
		params:  result.Params,
		options: materialised,
		groups:  groups,
	}
}

// Command reports the resolved command id.
func (c *Config) Command() ruletable.Command { return c.command }

// CommandName reports the resolved command's canonical name.
func (c *Config) CommandName() string { return ruletable.CommandName(c.command) }

// CommandRole reports the resolved command role.
func (c *Config) CommandRole() ruletable.Role { return c.role }

// Help reports whether the resolved command is "help" — either because
// the user ran it explicitly or because no command and no positional
// argument were given at all, which synthesises help.
func (c *Config) Help() bool { return c.command == ruletable.CmdHelp }

// Exe reports the executable path from argv[0].
func (c *Config) Exe() string { return c.exe }

// Params reports the command's positional parameters, or nil if none.
func (c *Config) Params() []string { return c.params }

// OptionView is the read-only view of one option's materialised state.
type OptionView struct {
	Valid   bool
	Name    string
	Group   bool
	GroupID ruletable.GroupID
	Index   []validate.Slot
}

// Option returns the materialised view of id.
func (c *Config) Option(id ruletable.OptionID) OptionView {
	opt, ok := c.options[id]
	if !ok {
		return OptionView{}
	}
	return OptionView{Valid: opt.Valid, Name: opt.Name, Group: opt.Group, GroupID: opt.GroupID, Index: opt.Index}
}

// GroupView is the read-only view of one group's resolved index state.
type GroupView struct {
	Name               string
	IndexTotal         int
	IndexMap           []int
	IndexDefault       int
	IndexDefaultExists bool
}

// Group returns the resolved state of id.
func (c *Config) Group(id ruletable.GroupID) GroupView {
	state := c.groups[id]
	return GroupView{
		Name:               ruletable.Group(id).Name,
		IndexTotal:         len(state.IndexMap),
		IndexMap:           state.IndexMap,
		IndexDefault:       state.IndexDefault,
		IndexDefaultExists: state.IndexDefaultExists,
	}
}

// Value is a convenience accessor: the typed value of (id, listIndex), or
// nil if unset (null/unresolved/no default and not required).
func (c *Config) Value(id ruletable.OptionID, listIndex int) *validate.TypedValue {
	opt, ok := c.options[id]
	if !ok || listIndex < 0 || listIndex >= len(opt.Index) {
		return nil
	}
	return opt.Index[listIndex].Value
}
