package parseopt

import (
	"strings"

	"github.com/pgguru/pgbackrest/internal/cfgerror"
	"github.com/pgguru/pgbackrest/internal/cfglog"
	"github.com/pgguru/pgbackrest/internal/l10n"
	"github.com/pgguru/pgbackrest/internal/ruletable"
)

// EnvPrefix is the variable-name prefix the importer recognizes, e.g.
// PGBACKREST_STANZA, PGBACKREST_PG1_PATH.
const EnvPrefix = "PGBACKREST_"

// ImportEnv walks environ (as returned by os.Environ) in order and fills
// any Result slot not already found by the Argv Parser. It mutates result
// in place.
func ImportEnv(environ []string, result *Result, warn cfglog.Warner) error {
	for _, entry := range environ {
		name, value, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}

		optName := strings.ToLower(strings.ReplaceAll(name[len(EnvPrefix):], "_", "-"))

		alias, ok := ruletable.Resolve(optName)
		if !ok {
			warn.Warn(l10n.T("environment contains invalid option '%s'", optName))
			continue
		}
		if alias.Negate {
			warn.Warn(l10n.T("environment contains negate option '%s'", optName))
			continue
		}
		if alias.Reset {
			warn.Warn(l10n.T("environment contains reset option '%s'", optName))
			continue
		}

		rule := ruletable.Option(alias.OptionID)
		if !ruletable.OptionValid(alias.OptionID, result.Command, result.Role) {
			warn.Warn(l10n.T("environment contains option '%s' not valid for command '%s'", optName, ruletable.CommandName(result.Command)))
			continue
		}

		v := result.Slot(alias.OptionID, alias.KeyIndex)
		if v.Found {
			// Env never overrides argv (or an earlier env entry).
			continue
		}

		if value == "" {
			return cfgerror.New(cfgerror.KindOptionInvalidValue, l10n.T("environment variable '%s' must not have an empty value", name))
		}

		if rule.Type == ruletable.TypeBoolean {
			if value != "y" && value != "n" {
				return cfgerror.New(cfgerror.KindOptionInvalidValue, l10n.T("environment variable '%s' must be 'y' or 'n'", name))
			}
			v.Found, v.Source, v.Negate = true, SourceEnv, value == "n"
			continue
		}

		if rule.Multi {
			v.Values = strings.Split(value, ":")
		} else {
			v.Values = []string{value}
		}
		v.Found, v.Source = true, SourceEnv
	}

	return nil
}
