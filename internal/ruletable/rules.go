package ruletable

import "github.com/pgguru/pgbackrest/internal/cfgerror"

// Option identifiers. Order here is display order only; materialisation
// order is governed by resolveOrder below.
const (
	OptStanza OptionID = iota
	OptConfig
	OptConfigPath
	OptConfigIncludePath
	OptPgPath
	OptPgPort
	OptPg
	OptRepoPath
	OptRepoType
	OptRepoCipherType
	OptRepoCipherPass
	OptRepo
	OptBufferSize
	OptArchiveAsync
	OptSpoolPath
	OptArchiveTimeout
	OptExclude
	OptRecoveryOption

	optionTotal
)

func cmdBits(cmds ...Command) uint32 {
	var bits uint32
	for _, c := range cmds {
		bits |= 1 << uint(c)
	}
	return bits
}

func roleBits(roles ...Role) uint32 {
	var bits uint32
	for _, r := range roles {
		bits |= 1 << uint(r)
	}
	return bits
}

// allCommands is used by options valid everywhere a real command runs (i.e.
// every command except cfgCmdNone/Help/Version, which never enter the
// validator: they carry no command options to validate).
var allCommands = []Command{CmdBackup, CmdRestore, CmdArchivePush, CmdArchiveGet, CmdCheck, CmdStanzaCreate, CmdInfo}

var commandRule = map[Command]CommandRule{
	CmdHelp:         {Name: "help", ValidRoles: roleBits(RoleDefault), ParametersAllowed: true},
	CmdVersion:      {Name: "version", ValidRoles: roleBits(RoleDefault), ParametersAllowed: false},
	CmdBackup:       {Name: "backup", ValidRoles: roleBits(RoleDefault, RoleLocal, RoleRemote), ParametersAllowed: false},
	CmdRestore:      {Name: "restore", ValidRoles: roleBits(RoleDefault, RoleLocal, RoleRemote), ParametersAllowed: false},
	CmdArchivePush:  {Name: "archive-push", ValidRoles: roleBits(RoleDefault, RoleAsync, RoleLocal, RoleRemote), ParametersAllowed: true},
	CmdArchiveGet:   {Name: "archive-get", ValidRoles: roleBits(RoleDefault, RoleAsync, RoleLocal, RoleRemote), ParametersAllowed: true},
	CmdCheck:        {Name: "check", ValidRoles: roleBits(RoleDefault, RoleLocal, RoleRemote), ParametersAllowed: false},
	CmdStanzaCreate: {Name: "stanza-create", ValidRoles: roleBits(RoleDefault), ParametersAllowed: false},
	CmdInfo:         {Name: "info", ValidRoles: roleBits(RoleDefault), ParametersAllowed: false},
}

var commandOrder = []Command{CmdHelp, CmdVersion, CmdBackup, CmdRestore, CmdArchivePush, CmdArchiveGet, CmdCheck, CmdStanzaCreate, CmdInfo}

var groupRule = map[GroupID]GroupRule{
	GroupPg:   {Name: "pg"},
	GroupRepo: {Name: "repo"},
}

var optionRule = map[OptionID]OptionRule{
	OptStanza: {
		Name: "stanza", Type: TypeString, Section: SectionGlobal, Required: true,
		ValidCommands: [roleTotal]uint32{
			RoleDefault: cmdBits(allCommands...),
			RoleLocal:   cmdBits(CmdBackup, CmdRestore, CmdArchivePush, CmdArchiveGet, CmdCheck),
			RoleRemote:  cmdBits(CmdBackup, CmdRestore, CmdArchivePush, CmdArchiveGet, CmdCheck),
			RoleAsync:   cmdBits(CmdArchivePush, CmdArchiveGet),
		},
		Data: []Record{
			{Type: RecordCommand, Command: CmdInfo},
			{Type: RecordRequired, Required: false},
			{Type: RecordCommand, Command: CmdStanzaCreate},
			{Type: RecordRequired, Required: true},
		},
	},
	OptConfig: {
		Name: "config", Type: TypeString, Section: SectionCommandLine,
		ValidCommands: [roleTotal]uint32{RoleDefault: cmdBits(allCommands...), RoleLocal: cmdBits(allCommands...), RoleRemote: cmdBits(allCommands...), RoleAsync: cmdBits(allCommands...)},
	},
	OptConfigPath: {
		Name: "config-path", Type: TypeString, Section: SectionCommandLine,
		ValidCommands: [roleTotal]uint32{RoleDefault: cmdBits(allCommands...), RoleLocal: cmdBits(allCommands...), RoleRemote: cmdBits(allCommands...), RoleAsync: cmdBits(allCommands...)},
	},
	OptConfigIncludePath: {
		Name: "config-include-path", Type: TypeString, Section: SectionCommandLine,
		ValidCommands: [roleTotal]uint32{RoleDefault: cmdBits(allCommands...), RoleLocal: cmdBits(allCommands...), RoleRemote: cmdBits(allCommands...), RoleAsync: cmdBits(allCommands...)},
	},

	OptPgPath: {
		Name: "pg-path", Type: TypePath, Section: SectionStanza, Group: true, GroupID: GroupPg, Required: true,
		ValidCommands: [roleTotal]uint32{
			RoleDefault: cmdBits(CmdBackup, CmdRestore, CmdArchivePush, CmdArchiveGet, CmdCheck, CmdStanzaCreate),
			RoleLocal:   cmdBits(CmdBackup, CmdRestore, CmdArchivePush, CmdArchiveGet, CmdCheck),
			RoleRemote:  cmdBits(CmdBackup, CmdRestore, CmdArchivePush, CmdArchiveGet, CmdCheck),
		},
		Data: []Record{
			{Type: RecordCommand, Command: CmdInfo},
			{Type: RecordRequired, Required: false},
		},
	},
	OptPgPort: {
		Name: "pg-port", Type: TypeInteger, Section: SectionStanza, Group: true, GroupID: GroupPg,
		ValidCommands: [roleTotal]uint32{
			RoleDefault: cmdBits(CmdBackup, CmdRestore, CmdArchivePush, CmdArchiveGet, CmdCheck),
			RoleLocal:   cmdBits(CmdBackup, CmdRestore, CmdArchivePush, CmdArchiveGet, CmdCheck),
			RoleRemote:  cmdBits(CmdBackup, CmdRestore, CmdArchivePush, CmdArchiveGet, CmdCheck),
		},
		Data: []Record{{Type: RecordDefault, Default: "5432"}},
	},
	OptPg: {
		Name: "pg", Type: TypeInteger, Section: SectionCommandLine,
		ValidCommands: [roleTotal]uint32{RoleDefault: cmdBits(CmdBackup, CmdRestore, CmdCheck)},
	},

	OptRepoPath: {
		Name: "repo-path", Type: TypePath, Section: SectionGlobal, Group: true, GroupID: GroupRepo,
		ValidCommands: [roleTotal]uint32{
			RoleDefault: cmdBits(allCommands...),
			RoleLocal:   cmdBits(allCommands...),
			RoleRemote:  cmdBits(allCommands...),
		},
		Data: []Record{{Type: RecordDefault, Default: "/var/lib/pgbackrest"}},
	},
	OptRepoType: {
		Name: "repo-type", Type: TypeString, Section: SectionGlobal, Group: true, GroupID: GroupRepo,
		ValidCommands: [roleTotal]uint32{RoleDefault: cmdBits(allCommands...), RoleLocal: cmdBits(allCommands...), RoleRemote: cmdBits(allCommands...)},
		Data: []Record{
			{Type: RecordDefault, Default: "posix"},
			{Type: RecordAllowList, AllowList: []string{"posix", "s3", "azure"}},
		},
	},
	OptRepoCipherType: {
		Name: "repo-cipher-type", Type: TypeString, Section: SectionGlobal, Group: true, GroupID: GroupRepo,
		ValidCommands: [roleTotal]uint32{RoleDefault: cmdBits(allCommands...), RoleLocal: cmdBits(allCommands...), RoleRemote: cmdBits(allCommands...)},
		Data: []Record{
			{Type: RecordDefault, Default: "none"},
			{Type: RecordAllowList, AllowList: []string{"none", "aes-256-cbc"}},
		},
	},
	OptRepoCipherPass: {
		Name: "repo-cipher-pass", Type: TypeString, Section: SectionGlobal, Secure: true, Group: true, GroupID: GroupRepo,
		ValidCommands: [roleTotal]uint32{RoleDefault: cmdBits(allCommands...), RoleLocal: cmdBits(allCommands...), RoleRemote: cmdBits(allCommands...)},
		Data: []Record{
			{Type: RecordDepend, DependOption: OptRepoCipherType, AllowList: []string{"aes-256-cbc"}},
		},
	},
	OptRepo: {
		Name: "repo", Type: TypeInteger, Section: SectionCommandLine,
		ValidCommands: [roleTotal]uint32{RoleDefault: cmdBits(allCommands...)},
	},

	OptBufferSize: {
		Name: "buffer-size", Type: TypeSize, Section: SectionGlobal,
		ValidCommands: [roleTotal]uint32{RoleDefault: cmdBits(CmdBackup, CmdRestore, CmdArchivePush, CmdArchiveGet)},
		Data: []Record{
			{Type: RecordDefault, Default: "1048576"},
			{Type: RecordAllowRange, RangeMin: 16384, RangeMax: 1073741824},
		},
	},
	OptArchiveAsync: {
		Name: "archive-async", Type: TypeBoolean, Section: SectionGlobal,
		ValidCommands: [roleTotal]uint32{RoleDefault: cmdBits(CmdArchivePush, CmdArchiveGet)},
		Data:          []Record{{Type: RecordDefault, Default: "0"}},
	},
	OptSpoolPath: {
		Name: "spool-path", Type: TypePath, Section: SectionGlobal,
		ValidCommands: [roleTotal]uint32{RoleDefault: cmdBits(CmdArchivePush, CmdArchiveGet)},
		Data: []Record{
			{Type: RecordDepend, DependOption: OptArchiveAsync, AllowList: []string{"1"}},
		},
	},
	OptArchiveTimeout: {
		Name: "archive-timeout", Type: TypeTime, Section: SectionGlobal,
		ValidCommands: [roleTotal]uint32{RoleDefault: cmdBits(CmdArchivePush, CmdArchiveGet, CmdBackup)},
		Data:          []Record{{Type: RecordDefault, Default: "60"}},
	},
	OptExclude: {
		Name: "exclude", Type: TypeList, Section: SectionStanza, Multi: true,
		ValidCommands: [roleTotal]uint32{RoleDefault: cmdBits(CmdRestore)},
	},
	OptRecoveryOption: {
		Name: "recovery-option", Type: TypeHash, Section: SectionStanza, Multi: true,
		ValidCommands: [roleTotal]uint32{RoleDefault: cmdBits(CmdRestore)},
	},
}

// resolveOrder is the dependency-respecting materialisation order: every
// option appears after every option it depends on (spool-path after
// archive-async; repo-cipher-pass after repo-cipher-type).
var resolveOrder = []OptionID{
	OptStanza, OptConfig, OptConfigPath, OptConfigIncludePath,
	OptPgPath, OptPgPort, OptPg,
	OptRepoPath, OptRepoType, OptRepoCipherType, OptRepoCipherPass, OptRepo,
	OptBufferSize, OptArchiveAsync, OptSpoolPath, OptArchiveTimeout,
	OptExclude, OptRecoveryOption,
}

// explicitAlias holds alias-table rows that cannot be derived generically
// from an option's base name: the legacy "no-config" control flag (config's
// type is String, not Boolean, but the file loader treats it as a negatable
// flag) and the deprecated "db-path" alias for pg1-path.
var explicitAlias = []Alias{
	{Name: "no-config", OptionID: OptConfig, KeyIndex: 0, Negate: true},
	{Name: "db-path", OptionID: OptPgPath, KeyIndex: 0, Deprecated: true},
}

func init() {
	validateRuleTable()
}

// validateRuleTable performs build-time acyclicity and duplicate-alias
// checks, refusing to let a cyclic or inconsistent table ship.
func validateRuleTable() {
	if len(optionRule) != int(optionTotal) {
		cfgerror.Assertf("rule table: %d option rules declared, %d option ids defined", len(optionRule), optionTotal)
	}

	// Duplicate alias names are a build-time error.
	seen := map[string]bool{}
	for _, a := range explicitAlias {
		if seen[a.Name] {
			cfgerror.Assertf("rule table: duplicate alias %q", a.Name)
		}
		seen[a.Name] = true
	}

	// Every two built-in groups must be exactly {pg, repo} — the group
	// default pass downstream hard-codes this pair.
	if _, ok := groupRule[GroupPg]; !ok {
		cfgerror.Assertf("rule table: missing pg group")
	}
	if _, ok := groupRule[GroupRepo]; !ok {
		cfgerror.Assertf("rule table: missing repo group")
	}
	if len(groupRule) != groupTotal {
		cfgerror.Assertf("rule table: expected %d groups, found %d", groupTotal, len(groupRule))
	}

	// Acyclicity: every Depend edge must point to an option that appears
	// earlier in resolveOrder.
	position := map[OptionID]int{}
	for i, id := range resolveOrder {
		position[id] = i
	}
	if len(resolveOrder) != len(optionRule) {
		cfgerror.Assertf("rule table: resolve order has %d entries, expected %d", len(resolveOrder), len(optionRule))
	}

	for id, rule := range optionRule {
		for _, rec := range rule.Data {
			if rec.Type != RecordDepend {
				continue
			}
			dependPos, ok := position[rec.DependOption]
			if !ok {
				cfgerror.Assertf("rule table: option %q depends on undeclared option", rule.Name)
			}
			if dependPos >= position[id] {
				cfgerror.Assertf("rule table: option %q depends on %q which does not resolve earlier (cycle?)", rule.Name, optionRule[rec.DependOption].Name)
			}
		}
	}
}
