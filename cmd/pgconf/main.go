// Command pgconf is a demonstration CLI over the configuration resolution
// engine: it drives engine.Parse against the arguments that follow "--"
// and either dumps the resolved Config or maps the returned error's
// cfgerror.Kind to a distinct process exit code.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/pgguru/pgbackrest/engine"
	"github.com/pgguru/pgbackrest/internal/cfgerror"
	"github.com/pgguru/pgbackrest/internal/ruletable"
	"github.com/pgguru/pgbackrest/internal/validate"
)

func main() {
	app := &cli.App{
		Name:  "pgconf",
		Usage: "resolve a pgbackrest-style configuration and print it",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dump", Usage: "print every resolved option, not just the command"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	engineArgv := append([]string{"pgbackrest"}, ctx.Args().Slice()...)

	cfg, err := engine.Parse(engineArgv, true)
	if err != nil {
		if cerr, ok := err.(*cfgerror.Error); ok {
			warnf(cerr.Error())
			os.Exit(exitCode(cerr.Kind()))
		}
		return err
	}

	fmt.Printf("command: %s:%s\n", cfg.CommandName(), cfg.CommandRole())
	if len(cfg.Params()) > 0 {
		fmt.Printf("params: %v\n", cfg.Params())
	}

	if ctx.Bool("dump") {
		dump(cfg)
	}

	return nil
}

func dump(cfg *engine.Config) {
	for _, id := range ruletable.Options() {
		opt := cfg.Option(id)
		if !opt.Valid {
			continue
		}
		for i, slot := range opt.Index {
			name := opt.Name
			if opt.Group {
				name = fmt.Sprintf("%s[%d]", opt.Name, i)
			}
			if slot.Value == nil {
				fmt.Printf("  %s: <null> (%s)\n", name, slot.Source)
				continue
			}
			fmt.Printf("  %s: %v (%s)\n", name, renderValue(slot.Value), slot.Source)
		}
	}
}

func renderValue(v *validate.TypedValue) any {
	switch v.Type {
	case ruletable.TypeBoolean:
		return v.Bool
	case ruletable.TypeInteger, ruletable.TypeSize, ruletable.TypeTime:
		return v.Int
	case ruletable.TypeList:
		return v.List
	case ruletable.TypeHash:
		return v.Hash
	default:
		return v.Str
	}
}

func exitCode(kind cfgerror.Kind) int {
	switch kind {
	case cfgerror.KindCommandInvalid:
		return 10
	case cfgerror.KindCommandRequired:
		return 11
	case cfgerror.KindParamInvalid:
		return 12
	case cfgerror.KindOptionInvalid:
		return 20
	case cfgerror.KindOptionInvalidValue:
		return 21
	case cfgerror.KindOptionRequired:
		return 22
	case cfgerror.KindFormatError:
		return 30
	case cfgerror.KindAssertError:
		return 99
	default:
		return 1
	}
}

func warnf(msg string) {
	prefix := "WARN: "
	if term.IsTerminal(int(os.Stderr.Fd())) {
		prefix = "\x1b[2mWARN:\x1b[0m "
	}
	fmt.Fprintln(os.Stderr, prefix+msg)
}
