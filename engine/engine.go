// Package engine is the public entry point of the configuration
// resolution engine: Parse wires the Rule Table, Argv Parser, Env
// Importer, File Loader, Source Merger, Group Resolver, and
// Validator/Materialiser together in pipeline order and returns the
// immutable Config.
package engine

import (
	"os"

	"github.com/pgguru/pgbackrest/internal/cfglog"
	"github.com/pgguru/pgbackrest/internal/inifile"
	"github.com/pgguru/pgbackrest/internal/merge"
	"github.com/pgguru/pgbackrest/internal/parseopt"
	"github.com/pgguru/pgbackrest/internal/ruletable"
	"github.com/pgguru/pgbackrest/internal/validate"
)

// Defaults are the baked-in config path constants a caller supplies: the
// default main path and include directory are build constants.
var Defaults = inifile.Defaults{
	ConfigDefault:      "/etc/pgbackrest.conf",
	IncludePathDefault: "/etc/pgbackrest/conf.d",
	OrigDefault:        "/etc/pgbackrest.conf",
}

// Parse runs the full pipeline against argv (argv[0] is the executable
// path, matching os.Args) and the process environment, returning the
// resolved Config or the first error encountered. resetLog controls
// whether a fresh cfglog.Run correlation id is minted for this call; a
// caller chaining repeated parses in one process (e.g. a test suite) may
// pass false to reuse warn's existing correlation scope instead.
func Parse(argv []string, resetLog bool) (*Config, error) {
	return ParseWith(argv, os.Environ(), inifile.LocalStorage{}, cfglog.GoLog{}, resetLog)
}

// ParseWith is Parse with every external collaborator injected, for tests
// and for cmd/pgconf's own dependency wiring.
func ParseWith(argv, environ []string, storage inifile.Storage, sink cfglog.Warner, resetLog bool) (*Config, error) {
	var warn cfglog.Warner = sink
	if resetLog {
		warn = cfglog.NewRun(sink)
	}

	result, err := parseopt.ParseArgv(argv, warn)
	if err != nil {
		return nil, err
	}

	if err := parseopt.ImportEnv(environ, result, warn); err != nil {
		return nil, err
	}

	stanza := ""
	if v := result.Slot(ruletable.OptStanza, 0); v.Found && len(v.Values) > 0 {
		stanza = v.Values[0]
	}

	fileOpts := fileLoaderOptions(result)
	doc, err := inifile.Load(storage, Defaults, fileOpts, warn)
	if err != nil {
		return nil, err
	}

	if err := merge.Merge(result, doc, stanza, warn); err != nil {
		return nil, err
	}

	groupStates := map[ruletable.GroupID]merge.GroupState{
		ruletable.GroupPg:   merge.ResolveIndexMap(result, ruletable.GroupPg, true),
		ruletable.GroupRepo: merge.ResolveIndexMap(result, ruletable.GroupRepo, ruletable.OptionValid(ruletable.OptRepo, result.Command, result.Role)),
	}

	help := result.Command == ruletable.CmdHelp
	materialised, err := validate.Materialise(result, groupStates, help)
	if err != nil {
		return nil, err
	}

	groupStates[ruletable.GroupPg], err = resolveGroupDefault(groupStates[ruletable.GroupPg], ruletable.GroupPg, materialised)
	if err != nil {
		return nil, err
	}
	groupStates[ruletable.GroupRepo], err = resolveGroupDefault(groupStates[ruletable.GroupRepo], ruletable.GroupRepo, materialised)
	if err != nil {
		return nil, err
	}

	exe := ""
	if len(argv) > 0 {
		exe = argv[0]
	}

	return newConfig(exe, result, materialised, groupStates), nil
}

func resolveGroupDefault(state merge.GroupState, groupID ruletable.GroupID, materialised map[ruletable.OptionID]*validate.Option) (merge.GroupState, error) {
	selectorID := ruletable.OptPg
	if groupID == ruletable.GroupRepo {
		selectorID = ruletable.OptRepo
	}

	selector := materialised[selectorID]
	if selector == nil || len(selector.Index) == 0 || selector.Index[0].Value == nil {
		return merge.ResolveDefaultIndex(state, groupID, 0, false)
	}
	return merge.ResolveDefaultIndex(state, groupID, selector.Index[0].Value.Int, true)
}

// fileLoaderOptions reads the four command-line-only options the File
// Loader needs directly, bypassing the normal Validator path (they govern
// how the rest of the file set is found in the first place).
func fileLoaderOptions(result *parseopt.Result) inifile.Options {
	opts := inifile.Options{}

	if v := result.Slot(ruletable.OptConfig, 0); v.Found {
		if v.Negate {
			opts.NoConfig = true
		} else if len(v.Values) > 0 {
			opts.Config, opts.ConfigFound = v.Values[0], true
		}
	}
	if v := result.Slot(ruletable.OptConfigPath, 0); v.Found && len(v.Values) > 0 {
		opts.ConfigPath, opts.ConfigPathFound = v.Values[0], true
	}
	if v := result.Slot(ruletable.OptConfigIncludePath, 0); v.Found && len(v.Values) > 0 {
		opts.ConfigIncludePath, opts.ConfigIncludeFound = v.Values[0], true
	}

	return opts
}
