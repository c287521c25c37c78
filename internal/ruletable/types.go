// Package ruletable holds the static rule table the engine resolves against:
// the command/group/option declarations, the per-option optional-data stream
// (allow-list, allow-range, depend, default, required, command-scope), the
// alias table, and the dependency-respecting option resolve order.
//
// This is hand-authored rather than code-generated the way the original
// engine's parse.auto.c is, but it keeps the same last-match-wins,
// command-scope-preferred lookup semantics (see Find) because the Source
// Merger and Validator depend on that exact scan order, not just key
// identity.
package ruletable

// Command identifies a pgBackRest-style subcommand.
type Command int

const (
	CmdNone Command = iota - 1 // sentinel: no command resolved yet / scope-unset marker
	CmdHelp
	CmdVersion
	CmdBackup
	CmdRestore
	CmdArchivePush
	CmdArchiveGet
	CmdCheck
	CmdStanzaCreate
	CmdInfo

	cmdTotal = 8 // number of real commands, CmdHelp..CmdInfo (CmdNone excluded)
)

// Role is the coarse capability tag scoping which options/commands are valid:
// the same command behaves differently when run as a local or remote helper
// process versus directly by the operator.
type Role int

const (
	RoleDefault Role = iota
	RoleAsync
	RoleLocal
	RoleRemote

	roleTotal = 4
)

var roleName = map[string]Role{
	"default": RoleDefault,
	"async":   RoleAsync,
	"local":   RoleLocal,
	"remote":  RoleRemote,
}

// RoleByName resolves a ":role" suffix to a Role. Missing suffix is handled
// by the caller (defaults to RoleDefault); an unrecognized name reports ok=false.
func RoleByName(name string) (Role, bool) {
	r, ok := roleName[name]
	return r, ok
}

// String renders a Role's canonical textual name.
func (r Role) String() string {
	for name, role := range roleName {
		if role == r {
			return name
		}
	}
	return "unknown"
}

// OptionType is the typed union an option's value is parsed into.
type OptionType int

const (
	TypeBoolean OptionType = iota
	TypeInteger
	TypeSize
	TypeTime
	TypeString
	TypePath
	TypeList
	TypeHash
)

// Section constrains which configuration surfaces an option may appear in.
type Section int

const (
	// SectionCommandLine options never take effect from env or config.
	SectionCommandLine Section = iota
	// SectionGlobal options may appear on the command line or in any
	// [global]/[global:cmd] config section.
	SectionGlobal
	// SectionStanza options may appear on the command line or in any
	// stanza section ([stanza]/[stanza:cmd]), never in a [global...] one.
	SectionStanza
)

// GroupID identifies an option group: a family of options indexed by a
// repeated key (pg1, pg2, ... / repo1, repo2, ...). This engine carries the
// two groups the original tool defines.
type GroupID int

const (
	GroupPg GroupID = iota
	GroupRepo

	groupTotal = 2
)

// OptionID identifies a single option rule.
type OptionID int

// KeyIndexMax bounds key indexes to [0, 256) internally (1-based on the
// CLI: "pg1".."pg256").
const KeyIndexMax = 256

// RecordType tags an entry in an option's optional-data stream.
type RecordType int

const (
	// RecordCommand scopes subsequent records to a command until the next
	// RecordCommand, end of stream, or a match under the requested command.
	RecordCommand RecordType = iota
	RecordAllowList
	RecordAllowRange
	RecordDefault
	RecordDepend
	RecordRequired
)

// Record is one entry in an option's optional-data stream. Only the fields
// relevant to Type are populated.
type Record struct {
	Type RecordType

	Command Command // RecordCommand: the command this and following records scope to

	AllowList []string // RecordAllowList; RecordDepend (optional allow-list restriction)

	RangeMin int64 // RecordAllowRange
	RangeMax int64 // RecordAllowRange

	Default string // RecordDefault

	DependOption OptionID // RecordDepend: the option this one depends on

	Required bool // RecordRequired: per-command override of OptionRule.Required
}

// CommandRule declares a command's valid roles and parameter acceptance.
type CommandRule struct {
	Name              string
	ValidRoles        uint32 // bitset over Role
	ParametersAllowed bool
}

// GroupRule declares an option group's display-name prefix.
type GroupRule struct {
	Name string
}

// OptionRule declares a single option's type, scoping, and optional data.
type OptionRule struct {
	Name     string
	Type     OptionType
	Required bool
	Section  Section
	Secure   bool
	Multi    bool
	Group    bool
	GroupID  GroupID

	// ValidCommands[role] is a bitset over Command: bit c is set iff the
	// option is valid for (command c, role).
	ValidCommands [roleTotal]uint32

	Data []Record
}

// Alias maps a textual option name (as it appears on argv/env/in a config
// key, already lower-kebab-cased) to a concrete (option, key index) plus the
// negate/reset/deprecated flags that name carries.
type Alias struct {
	Name       string
	OptionID   OptionID
	KeyIndex   int
	Negate     bool
	Reset      bool
	Deprecated bool
}
