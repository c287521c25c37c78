package parseopt

import (
	"strings"

	"github.com/pgguru/pgbackrest/internal/cfgerror"
	"github.com/pgguru/pgbackrest/internal/cfglog"
	"github.com/pgguru/pgbackrest/internal/l10n"
	"github.com/pgguru/pgbackrest/internal/ruletable"
)

// ParseArgv tokenises argv (argv[0] is the executable path, matching
// os.Args) and returns a Result with Command, Role, Params, and every
// argv-sourced option Value populated.
func ParseArgv(argv []string, warn cfglog.Warner) (*Result, error) {
	result := NewResult()
	haveCommand := false

	for i := 1; i < len(argv); i++ {
		tok := argv[i]

		if strings.HasPrefix(tok, "--") {
			consumed, err := dispatchOption(result, tok, argv, i, warn)
			if err != nil {
				return nil, err
			}
			i += consumed - 1
			continue
		}

		if !haveCommand {
			cmd, role, err := parseCommandToken(tok)
			if err != nil {
				return nil, err
			}
			result.Command = cmd
			result.Role = role
			haveCommand = true
			continue
		}

		result.Params = append(result.Params, tok)
	}

	if !haveCommand {
		result.Command = ruletable.CmdHelp
		result.Role = ruletable.RoleDefault
		return result, nil
	}

	if len(result.Params) > 0 && !ruletable.CommandParametersAllowed(result.Command) {
		return nil, cfgerror.New(cfgerror.KindParamInvalid,
			l10n.T("command '%s' does not allow parameters", ruletable.CommandName(result.Command)))
	}

	if err := result.checkParamValidForCommand(); err != nil {
		return nil, err
	}

	return result, nil
}

// checkParamValidForCommand re-checks every argv-sourced option against
// the now-fully-resolved command, since the command itself may appear
// after some of its options in argv — the Group Resolver phase does the
// equivalent re-check for config-sourced options, for the same reason:
// the command isn't necessarily known until the whole argument vector has
// been scanned.
func (r *Result) checkParamValidForCommand() error {
	for id, byKey := range r.slots {
		rule := ruletable.Option(id)
		if rule.Section == ruletable.SectionCommandLine {
			continue
		}
		for key, v := range byKey {
			if v.Source != SourceParam || !v.Found {
				continue
			}
			if !ruletable.OptionValid(id, r.Command, r.Role) {
				return cfgerror.New(cfgerror.KindOptionInvalid,
					l10n.T("option '%s' not valid for command '%s'", ruletable.DisplayName(rule, key), ruletable.CommandName(r.Command)))
			}
		}
	}
	return nil
}

// parseCommandToken resolves the first positional to a (command, role)
// pair, splitting an optional ":role" suffix.
func parseCommandToken(tok string) (ruletable.Command, ruletable.Role, error) {
	name, roleName, hasRole := strings.Cut(tok, ":")

	cmd, ok := ruletable.CommandByName(name)
	if !ok {
		return ruletable.CmdNone, ruletable.RoleDefault, cfgerror.New(cfgerror.KindCommandInvalid,
			l10n.T("invalid command '%s'", name))
	}

	role := ruletable.RoleDefault
	if hasRole {
		role, ok = ruletable.RoleByName(roleName)
		if !ok {
			return ruletable.CmdNone, ruletable.RoleDefault, cfgerror.New(cfgerror.KindCommandInvalid,
				l10n.T("invalid role ':%s' for command '%s'", roleName, name))
		}
	}

	if !ruletable.CommandRoleValid(cmd, role) {
		return ruletable.CmdNone, ruletable.RoleDefault, cfgerror.New(cfgerror.KindCommandInvalid,
			l10n.T("command '%s' does not support role ':%s'", name, roleName))
	}

	return cmd, role, nil
}

// dispatchOption parses and applies a single "--..." token, possibly
// consuming the following argv slot as its value. It returns how many
// argv slots (including tok) were consumed.
func dispatchOption(result *Result, tok string, argv []string, i int, warn cfglog.Warner) (int, error) {
	full := strings.TrimPrefix(tok, "--")
	if full == "" {
		return 0, cfgerror.New(cfgerror.KindOptionInvalid, l10n.T("'--' is not a valid option"))
	}

	name, value, hasValue := strings.Cut(full, "=")

	alias, ok := ruletable.Resolve(name)
	if !ok {
		return 0, cfgerror.New(cfgerror.KindOptionInvalid, l10n.T("unknown option '%s'", name))
	}

	rule := ruletable.Option(alias.OptionID)
	displayName := ruletable.DisplayName(rule, alias.KeyIndex)

	if alias.Deprecated {
		warn.Warn(l10n.T("option '%s' is deprecated", name))
	}

	switch {
	case alias.Reset:
		if hasValue {
			return 0, cfgerror.New(cfgerror.KindOptionInvalid, l10n.T("option '%s' reset does not take a value", displayName))
		}
		v := result.Slot(alias.OptionID, alias.KeyIndex)
		if v.Found {
			return 0, cfgerror.New(cfgerror.KindOptionInvalid, l10n.T("option '%s' cannot be both set and reset", displayName))
		}
		v.Found, v.Reset, v.Source = true, true, SourceParam
		return 1, nil

	case alias.Negate:
		if hasValue {
			return 0, cfgerror.New(cfgerror.KindOptionInvalid, l10n.T("option '%s' negation does not take a value", displayName))
		}
		v := result.Slot(alias.OptionID, alias.KeyIndex)
		if v.Found && v.Reset {
			return 0, cfgerror.New(cfgerror.KindOptionInvalid, l10n.T("option '%s' cannot be both negated and reset", displayName))
		}
		if v.Found && v.Negate {
			return 0, cfgerror.New(cfgerror.KindOptionInvalid, l10n.T("option '%s' negated more than once", displayName))
		}
		if v.Found {
			return 0, cfgerror.New(cfgerror.KindOptionInvalid, l10n.T("option '%s' cannot be both set and negated", displayName))
		}
		v.Found, v.Negate, v.Source = true, true, SourceParam
		return 1, nil

	default:
		if rule.Secure {
			return 0, cfgerror.WithHint(cfgerror.KindOptionInvalid,
				l10n.T("set this option in the environment or a configuration file instead"),
				l10n.T("option '%s' is not allowed on the command line", displayName))
		}

		consumed := 1
		if rule.Type == ruletable.TypeBoolean {
			if hasValue {
				return 0, cfgerror.New(cfgerror.KindOptionInvalidValue, l10n.T("option '%s' does not take a value", displayName))
			}
		} else if !hasValue {
			if i+1 >= len(argv) {
				return 0, cfgerror.New(cfgerror.KindOptionInvalid, l10n.T("option '%s' requires an argument", displayName))
			}
			value = argv[i+1]
			consumed = 2
		}

		v := result.Slot(alias.OptionID, alias.KeyIndex)
		if v.Found {
			if v.Negate || v.Reset {
				return 0, cfgerror.New(cfgerror.KindOptionInvalid, l10n.T("option '%s' cannot be both set and negated/reset", displayName))
			}
			if !rule.Multi {
				return 0, cfgerror.New(cfgerror.KindOptionInvalid, l10n.T("option '%s' cannot be set multiple times", displayName))
			}
			v.Values = append(v.Values, value)
			return consumed, nil
		}

		v.Found, v.Source = true, SourceParam
		if rule.Type == ruletable.TypeBoolean {
			v.Negate = false
		} else {
			v.Values = []string{value}
		}
		return consumed, nil
	}
}
