package inifile

import (
	"path/filepath"
	"strings"

	"github.com/pgguru/pgbackrest/internal/cfgerror"
	"github.com/pgguru/pgbackrest/internal/cfglog"
	"github.com/pgguru/pgbackrest/internal/l10n"
)

// Defaults are the baked-in config-file/include-path/legacy-path defaults
// a caller supplies to Load; cmd/pgconf wires these to pgBackRest's own
// well-known paths ("/etc/pgbackrest.conf", "/etc/pgbackrest/conf.d",
// "/etc/pgbackrest.conf" again for orig-default prior to any rewrite).
type Defaults struct {
	ConfigDefault       string
	IncludePathDefault  string
	OrigDefault         string
	Binary              string
}

// Options carries the four command-line-only options the File Loader
// reads directly, bypassing the normal Validator path since they govern
// how the rest of the file set is even found.
type Options struct {
	Config             string
	ConfigFound        bool
	ConfigPath         string
	ConfigPathFound    bool
	ConfigIncludePath  string
	ConfigIncludeFound bool
	NoConfig           bool
}

// Load resolves and concatenates the main config file and include
// directory per the precedence matrix below, then parses the result into
// a single Document. A nil Document with a nil error means no sources
// were loaded at all.
func Load(storage Storage, defaults Defaults, opts Options, warn cfglog.Warner) (*Document, error) {
	if opts.NoConfig {
		return nil, nil
	}

	configDefault := defaults.ConfigDefault
	includeDefault := defaults.IncludePathDefault

	if opts.ConfigPathFound {
		configDefault = filepath.Join(opts.ConfigPath, filepath.Base(configDefault))
		includeDefault = filepath.Join(opts.ConfigPath, filepath.Base(includeDefault))
	}

	configPath := configDefault
	configIsDefault := true
	if opts.ConfigFound {
		configPath = opts.Config
		configIsDefault = false
	}

	includePath := includeDefault
	if opts.ConfigIncludeFound {
		includePath = opts.ConfigIncludePath
	}

	skipInclude := opts.ConfigFound && !opts.ConfigPathFound && !opts.ConfigIncludeFound

	var parts [][]byte

	mainData, err := loadMain(storage, configPath, configIsDefault, defaults.OrigDefault, warn)
	if err != nil {
		return nil, err
	}
	if mainData != nil {
		parts = append(parts, mainData)
	}

	if !skipInclude {
		includeData, err := loadInclude(storage, includePath, opts.ConfigIncludeFound, warn)
		if err != nil {
			return nil, err
		}
		parts = append(parts, includeData...)
	}

	if len(parts) == 0 {
		return nil, nil
	}

	var joined []byte
	for _, p := range parts {
		if len(joined) > 0 {
			joined = append(joined, '\n')
		}
		joined = append(joined, p...)
	}

	return parseDocument(configPath, joined)
}

// loadMain reads the main config file. A missing file is fatal only when
// the path came from argv (--config); otherwise it's silent, and if the
// path is still the unmodified default, a legacy fallback is attempted.
func loadMain(storage Storage, path string, isDefault bool, origDefault string, warn cfglog.Warner) ([]byte, error) {
	data, err := storage.Read(path)
	if err == nil {
		if validateErr := validateStructure(path, data); validateErr != nil {
			return nil, validateErr
		}
		return data, nil
	}
	if err != ErrNotFound {
		return nil, cfgerror.Wrap(cfgerror.KindFormatError, err, l10n.T("unable to read '%s'", path))
	}

	if !isDefault {
		return nil, cfgerror.New(cfgerror.KindOptionInvalidValue, l10n.T("unable to find '%s'", path))
	}

	if origDefault == "" || origDefault == path {
		return nil, nil
	}

	legacy, err := storage.Read(origDefault)
	if err != nil {
		if err == ErrNotFound {
			return nil, nil
		}
		return nil, cfgerror.Wrap(cfgerror.KindFormatError, err, l10n.T("unable to read '%s'", origDefault))
	}
	if validateErr := validateStructure(origDefault, legacy); validateErr != nil {
		return nil, validateErr
	}
	return legacy, nil
}

// loadInclude enumerates the include directory's ".conf" parts. A missing
// directory is fatal only when the user explicitly passed
// --config-include-path.
func loadInclude(storage Storage, dir string, required bool, warn cfglog.Warner) ([][]byte, error) {
	paths, err := ListConfParts(storage, dir)
	if err != nil {
		if err != ErrNotFound {
			return nil, cfgerror.Wrap(cfgerror.KindFormatError, err, l10n.T("unable to list '%s'", dir))
		}
		if required {
			return nil, cfgerror.New(cfgerror.KindOptionInvalidValue, l10n.T("unable to find '%s'", dir))
		}
		warn.Warn(l10n.T("include path '%s' does not exist", dir))
		return nil, nil
	}

	var parts [][]byte
	for _, p := range paths {
		data, err := storage.Read(p)
		if err != nil {
			if err == ErrNotFound {
				continue
			}
			return nil, cfgerror.Wrap(cfgerror.KindFormatError, err, l10n.T("unable to read '%s'", p))
		}
		if validateErr := validateStructure(p, data); validateErr != nil {
			return nil, validateErr
		}
		parts = append(parts, data)
	}

	return parts, nil
}

// StanzaSections returns the section-name family relevant to a merge walk
// for stanza and command, in search order: "[S:<command>]", "[S]",
// "[global:<command>]", "[global]". Missing stanza (empty S) skips the
// first two.
func StanzaSections(stanza, command string) []string {
	var names []string
	if stanza != "" {
		if command != "" {
			names = append(names, stanza+":"+command)
		}
		names = append(names, stanza)
	}
	if command != "" {
		names = append(names, "global:"+command)
	}
	names = append(names, "global")
	return names
}

// IsGlobalSection reports whether section begins with "global", used by
// the merger's "stanza option in a global section" warning.
func IsGlobalSection(section string) bool {
	return strings.HasPrefix(section, "global")
}

// IsCommandScoped reports whether section is one of the two command-scoped
// members of the search order ("[S:<command>]" or "[global:<command>]").
func IsCommandScoped(section, command string) bool {
	return command != "" && strings.HasSuffix(section, ":"+command)
}
