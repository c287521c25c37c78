package ruletable

import "testing"

func TestFindCommandScopePreferred(t *testing.T) {
	records := []Record{
		{Type: RecordRequired, Required: true},
		{Type: RecordCommand, Command: CmdInfo},
		{Type: RecordRequired, Required: false},
		{Type: RecordCommand, Command: CmdStanzaCreate},
		{Type: RecordRequired, Required: true},
	}

	tests := []struct {
		name    string
		command Command
		want    bool
	}{
		{"backup falls back to global", CmdBackup, true},
		{"info overrides to false", CmdInfo, false},
		{"stanza-create overrides to true", CmdStanzaCreate, true},
		{"restore falls back to global too", CmdRestore, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := Find(records, RecordRequired, tt.command)
			if !ok {
				t.Fatalf("Find() found = false, want true")
			}
			if rec.Required != tt.want {
				t.Errorf("Find() Required = %v, want %v", rec.Required, tt.want)
			}
		})
	}
}

func TestFindNoMatch(t *testing.T) {
	records := []Record{{Type: RecordCommand, Command: CmdInfo}, {Type: RecordDefault, Default: "x"}}
	if _, ok := Find(records, RecordAllowRange, CmdBackup); ok {
		t.Errorf("Find() found = true for an absent record type, want false")
	}
}

func TestResolveUngrouped(t *testing.T) {
	r, ok := Resolve("stanza")
	if !ok || r.OptionID != OptStanza || r.KeyIndex != 0 {
		t.Fatalf("Resolve(%q) = %+v, %v", "stanza", r, ok)
	}
}

func TestResolveGrouped(t *testing.T) {
	r, ok := Resolve("pg3-path")
	if !ok {
		t.Fatalf("Resolve(pg3-path) not found")
	}
	if r.OptionID != OptPgPath || r.KeyIndex != 2 {
		t.Errorf("Resolve(pg3-path) = %+v, want OptPgPath key 2", r)
	}
}

func TestResolveNegateBoolean(t *testing.T) {
	r, ok := Resolve("no-archive-async")
	if !ok || !r.Negate || r.OptionID != OptArchiveAsync {
		t.Fatalf("Resolve(no-archive-async) = %+v, %v", r, ok)
	}
}

func TestResolveNegateRejectsNonBoolean(t *testing.T) {
	if _, ok := Resolve("no-stanza"); ok {
		t.Errorf("Resolve(no-stanza) should fail: stanza is not boolean-typed")
	}
}

func TestResolveResetRequiresDefault(t *testing.T) {
	if _, ok := Resolve("reset-pg-port"); !ok {
		t.Errorf("Resolve(reset-pg-port) should succeed: pg-port has a default")
	}
	if _, ok := Resolve("reset-stanza"); ok {
		t.Errorf("Resolve(reset-stanza) should fail: stanza has no default")
	}
}

func TestResolveExplicitAlias(t *testing.T) {
	r, ok := Resolve("db-path")
	if !ok || r.OptionID != OptPgPath || r.KeyIndex != 0 || !r.Deprecated {
		t.Fatalf("Resolve(db-path) = %+v, %v", r, ok)
	}

	r, ok = Resolve("no-config")
	if !ok || r.OptionID != OptConfig || !r.Negate {
		t.Fatalf("Resolve(no-config) = %+v, %v", r, ok)
	}
}

func TestResolveUnknown(t *testing.T) {
	if _, ok := Resolve("does-not-exist"); ok {
		t.Errorf("Resolve(does-not-exist) should fail")
	}
}

func TestCommandByName(t *testing.T) {
	cmd, ok := CommandByName("backup")
	if !ok || cmd != CmdBackup {
		t.Fatalf("CommandByName(backup) = %v, %v", cmd, ok)
	}
	if _, ok := CommandByName("bogus"); ok {
		t.Errorf("CommandByName(bogus) should fail")
	}
}

func TestCommandRoleValid(t *testing.T) {
	if !CommandRoleValid(CmdArchivePush, RoleAsync) {
		t.Errorf("archive-push should support :async")
	}
	if CommandRoleValid(CmdInfo, RoleAsync) {
		t.Errorf("info should not support :async")
	}
}
