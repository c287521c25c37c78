package parseopt

import (
	"testing"

	"github.com/pgguru/pgbackrest/internal/cfglog"
	"github.com/pgguru/pgbackrest/internal/ruletable"
)

func TestImportEnvBasic(t *testing.T) {
	result := NewResult()
	result.Command, result.Role = ruletable.CmdBackup, ruletable.RoleDefault

	err := ImportEnv([]string{"PGBACKREST_STANZA=demo"}, result, &cfglog.Collector{})
	if err != nil {
		t.Fatalf("ImportEnv() error = %v", err)
	}
	v := result.Slot(ruletable.OptStanza, 0)
	if !v.Found || v.Values[0] != "demo" || v.Source != SourceEnv {
		t.Errorf("stanza slot = %+v", v)
	}
}

func TestImportEnvNeverOverridesArgv(t *testing.T) {
	result := NewResult()
	result.Command, result.Role = ruletable.CmdBackup, ruletable.RoleDefault
	v := result.Slot(ruletable.OptStanza, 0)
	v.Found, v.Source, v.Values = true, SourceParam, []string{"from-argv"}

	if err := ImportEnv([]string{"PGBACKREST_STANZA=from-env"}, result, &cfglog.Collector{}); err != nil {
		t.Fatalf("ImportEnv() error = %v", err)
	}
	if result.Slot(ruletable.OptStanza, 0).Values[0] != "from-argv" {
		t.Error("env should never override a value already set from argv")
	}
}

func TestImportEnvBooleanRule(t *testing.T) {
	result := NewResult()
	result.Command, result.Role = ruletable.CmdArchivePush, ruletable.RoleDefault

	if err := ImportEnv([]string{"PGBACKREST_ARCHIVE_ASYNC=maybe"}, result, &cfglog.Collector{}); err == nil {
		t.Fatal("expected OptionInvalidValue for a non-y/n boolean env value")
	}

	result2 := NewResult()
	result2.Command, result2.Role = ruletable.CmdArchivePush, ruletable.RoleDefault
	if err := ImportEnv([]string{"PGBACKREST_ARCHIVE_ASYNC=y"}, result2, &cfglog.Collector{}); err != nil {
		t.Fatalf("ImportEnv() error = %v", err)
	}
	v := result2.Slot(ruletable.OptArchiveAsync, 0)
	if !v.Found || v.Negate {
		t.Errorf("archive-async slot = %+v, want found, not negated", v)
	}
}

func TestImportEnvEmptyValueIsHardError(t *testing.T) {
	result := NewResult()
	result.Command, result.Role = ruletable.CmdBackup, ruletable.RoleDefault
	if err := ImportEnv([]string{"PGBACKREST_STANZA="}, result, &cfglog.Collector{}); err == nil {
		t.Fatal("expected OptionInvalidValue for an empty env value")
	}
}

func TestImportEnvUnknownOptionWarnsAndSkips(t *testing.T) {
	result := NewResult()
	result.Command, result.Role = ruletable.CmdBackup, ruletable.RoleDefault
	collector := &cfglog.Collector{}
	if err := ImportEnv([]string{"PGBACKREST_DOES_NOT_EXIST=x"}, result, collector); err != nil {
		t.Fatalf("ImportEnv() error = %v", err)
	}
	if len(collector.Messages) != 1 {
		t.Errorf("expected exactly one warning, got %v", collector.Messages)
	}
}

func TestImportEnvIgnoresNonPrefixedVars(t *testing.T) {
	result := NewResult()
	result.Command, result.Role = ruletable.CmdBackup, ruletable.RoleDefault
	if err := ImportEnv([]string{"PATH=/usr/bin"}, result, &cfglog.Collector{}); err != nil {
		t.Fatalf("ImportEnv() error = %v", err)
	}
}

func TestImportEnvMultiSplitsOnColon(t *testing.T) {
	result := NewResult()
	result.Command, result.Role = ruletable.CmdRestore, ruletable.RoleDefault
	if err := ImportEnv([]string{"PGBACKREST_EXCLUDE=a:b:c"}, result, &cfglog.Collector{}); err != nil {
		t.Fatalf("ImportEnv() error = %v", err)
	}
	v := result.Slot(ruletable.OptExclude, 0)
	want := []string{"a", "b", "c"}
	if len(v.Values) != len(want) {
		t.Fatalf("values = %v, want %v", v.Values, want)
	}
	for i := range want {
		if v.Values[i] != want[i] {
			t.Errorf("values[%d] = %q, want %q", i, v.Values[i], want[i])
		}
	}
}
