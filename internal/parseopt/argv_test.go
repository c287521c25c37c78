package parseopt

import (
	"testing"

	"github.com/pgguru/pgbackrest/internal/cfglog"
	"github.com/pgguru/pgbackrest/internal/ruletable"
)

func TestParseArgvBasic(t *testing.T) {
	result, err := ParseArgv([]string{"pgbackrest", "--stanza=demo", "backup"}, &cfglog.Collector{})
	if err != nil {
		t.Fatalf("ParseArgv() error = %v", err)
	}
	if result.Command != ruletable.CmdBackup || result.Role != ruletable.RoleDefault {
		t.Fatalf("command/role = %v/%v, want backup/default", result.Command, result.Role)
	}
	v := result.Slot(ruletable.OptStanza, 0)
	if !v.Found || v.Values[0] != "demo" || v.Source != SourceParam {
		t.Errorf("stanza slot = %+v, want found demo param", v)
	}
}

func TestParseArgvSeparateValue(t *testing.T) {
	result, err := ParseArgv([]string{"pgbackrest", "--stanza", "demo", "backup"}, &cfglog.Collector{})
	if err != nil {
		t.Fatalf("ParseArgv() error = %v", err)
	}
	v := result.Slot(ruletable.OptStanza, 0)
	if !v.Found || v.Values[0] != "demo" {
		t.Errorf("stanza slot = %+v, want found demo", v)
	}
}

func TestParseArgvGroupedKeys(t *testing.T) {
	result, err := ParseArgv([]string{"pgbackrest", "--stanza=demo", "--pg1-path=/db", "--pg3-path=/alt", "backup"}, &cfglog.Collector{})
	if err != nil {
		t.Fatalf("ParseArgv() error = %v", err)
	}
	if v := result.Slot(ruletable.OptPgPath, 0); !v.Found || v.Values[0] != "/db" {
		t.Errorf("pg1-path slot = %+v", v)
	}
	if v := result.Slot(ruletable.OptPgPath, 2); !v.Found || v.Values[0] != "/alt" {
		t.Errorf("pg3-path slot = %+v", v)
	}
}

func TestParseArgvNoCommandSynthesizesHelp(t *testing.T) {
	result, err := ParseArgv([]string{"pgbackrest"}, &cfglog.Collector{})
	if err != nil {
		t.Fatalf("ParseArgv() error = %v", err)
	}
	if result.Command != ruletable.CmdHelp {
		t.Errorf("command = %v, want CmdHelp", result.Command)
	}
}

func TestParseArgvUnknownCommand(t *testing.T) {
	if _, err := ParseArgv([]string{"pgbackrest", "bogus"}, &cfglog.Collector{}); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestParseArgvParamsNotAllowed(t *testing.T) {
	if _, err := ParseArgv([]string{"pgbackrest", "backup", "extra"}, &cfglog.Collector{}); err == nil {
		t.Fatal("expected ParamInvalid for backup with a parameter")
	}
}

func TestParseArgvDoubleNegate(t *testing.T) {
	_, err := ParseArgv([]string{"pgbackrest", "--no-archive-async", "--no-archive-async", "archive-push"}, &cfglog.Collector{})
	if err == nil {
		t.Fatal("expected OptionInvalid for double-negate")
	}
}

func TestParseArgvSecureOptionRejected(t *testing.T) {
	_, err := ParseArgv([]string{"pgbackrest", "--stanza=demo", "--repo1-cipher-pass=secret", "backup"}, &cfglog.Collector{})
	if err == nil {
		t.Fatal("expected OptionInvalid for a secure option on argv")
	}
}

func TestParseArgvDuplicateNonMulti(t *testing.T) {
	_, err := ParseArgv([]string{"pgbackrest", "--stanza=a", "--stanza=b", "backup"}, &cfglog.Collector{})
	if err == nil {
		t.Fatal("expected OptionInvalid for duplicate non-multi option")
	}
}

func TestParseArgvMultiAccumulates(t *testing.T) {
	result, err := ParseArgv([]string{"pgbackrest", "--stanza=demo", "--exclude=a", "--exclude=b", "restore"}, &cfglog.Collector{})
	if err != nil {
		t.Fatalf("ParseArgv() error = %v", err)
	}
	v := result.Slot(ruletable.OptExclude, 0)
	if len(v.Values) != 2 || v.Values[0] != "a" || v.Values[1] != "b" {
		t.Errorf("exclude values = %v, want [a b]", v.Values)
	}
}

func TestParseArgvDeprecatedAliasWarns(t *testing.T) {
	collector := &cfglog.Collector{}
	_, err := ParseArgv([]string{"pgbackrest", "--db-path=/db", "--stanza=demo", "backup"}, collector)
	if err != nil {
		t.Fatalf("ParseArgv() error = %v", err)
	}
	if len(collector.Messages) == 0 {
		t.Error("expected a deprecation warning for --db-path")
	}
}
