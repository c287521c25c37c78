package merge

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pgguru/pgbackrest/internal/cfglog"
	"github.com/pgguru/pgbackrest/internal/inifile"
	"github.com/pgguru/pgbackrest/internal/parseopt"
	"github.com/pgguru/pgbackrest/internal/ruletable"
)

func newDoc(t *testing.T, text string) *inifile.Document {
	t.Helper()
	doc, err := inifile.Load(memStorage{files: map[string]string{"/etc/pgbackrest.conf": text}},
		inifile.Defaults{ConfigDefault: "/etc/pgbackrest.conf", IncludePathDefault: "/etc/pgbackrest/conf.d", OrigDefault: "/etc/pgbackrest.conf"},
		inifile.Options{}, &cfglog.Collector{})
	if err != nil {
		t.Fatalf("newDoc: %v", err)
	}
	return doc
}

type memStorage struct{ files map[string]string }

func (m memStorage) Read(path string) ([]byte, error) {
	if v, ok := m.files[path]; ok {
		return []byte(v), nil
	}
	return nil, inifile.ErrNotFound
}

func (m memStorage) List(string) ([]string, error) {
	return nil, inifile.ErrNotFound
}

func TestMergeSearchOrderPrefersStanzaCommandOverGlobal(t *testing.T) {
	doc := newDoc(t, "[global]\nrepo-path=/global\n\n[demo]\nrepo-path=/stanza\n\n[demo:backup]\nrepo-path=/stanza-backup\n")

	result := parseopt.NewResult()
	result.Command, result.Role = ruletable.CmdBackup, ruletable.RoleDefault

	if err := Merge(result, doc, "demo", &cfglog.Collector{}); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	v := result.Slot(ruletable.OptRepoPath, 0)
	if !v.Found || v.Values[0] != "/stanza-backup" {
		t.Errorf("repo-path = %+v, want /stanza-backup (most specific section wins)", v)
	}
}

func TestMergeParamPrecedesConfig(t *testing.T) {
	doc := newDoc(t, "[global]\nrepo-path=/from-config\n")

	result := parseopt.NewResult()
	result.Command, result.Role = ruletable.CmdBackup, ruletable.RoleDefault
	v := result.Slot(ruletable.OptRepoPath, 0)
	v.Found, v.Source, v.Values = true, parseopt.SourceParam, []string{"/from-argv"}

	if err := Merge(result, doc, "demo", &cfglog.Collector{}); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if result.Slot(ruletable.OptRepoPath, 0).Values[0] != "/from-argv" {
		t.Error("a value already found from argv must not be overwritten by config")
	}
}

func TestMergeDuplicateKeyInSectionIsHardError(t *testing.T) {
	doc := newDoc(t, "[global]\npg1-path=/a\ndb-path=/b\n")

	result := parseopt.NewResult()
	result.Command, result.Role = ruletable.CmdBackup, ruletable.RoleDefault

	// db-path is a deprecated alias of pg1-path (same option, same key), so
	// this section sets the same slot twice under different spellings.
	if err := Merge(result, doc, "demo", &cfglog.Collector{}); err == nil {
		t.Fatal("expected OptionInvalid for a duplicated key within one section")
	}
}

func TestMergeStanzaOptionInGlobalSectionWarns(t *testing.T) {
	doc := newDoc(t, "[global]\npg1-path=/db\n")

	result := parseopt.NewResult()
	result.Command, result.Role = ruletable.CmdBackup, ruletable.RoleDefault
	collector := &cfglog.Collector{}

	if err := Merge(result, doc, "demo", collector); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if len(collector.Messages) == 0 {
		t.Error("expected a warning for a stanza-only option in [global]")
	}
	if result.Slot(ruletable.OptPgPath, 0).Found {
		t.Error("pg1-path in [global] should be skipped, not applied")
	}
}

func TestMergeCommandScopedInvalidForCommandWarnsAndSkips(t *testing.T) {
	doc := newDoc(t, "[demo:info]\nbuffer-size=2mb\n")

	result := parseopt.NewResult()
	result.Command, result.Role = ruletable.CmdInfo, ruletable.RoleDefault
	collector := &cfglog.Collector{}

	if err := Merge(result, doc, "demo", collector); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if len(collector.Messages) == 0 {
		t.Error("expected a warning: buffer-size is not valid for info")
	}
	if result.Slot(ruletable.OptBufferSize, 0).Found {
		t.Error("buffer-size should not be applied under the info command")
	}
}

func TestMergeUnknownKeyWarnsAndSkips(t *testing.T) {
	doc := newDoc(t, "[global]\nnot-a-real-option=1\n")
	collector := &cfglog.Collector{}
	result := parseopt.NewResult()
	result.Command, result.Role = ruletable.CmdBackup, ruletable.RoleDefault

	if err := Merge(result, doc, "demo", collector); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if len(collector.Messages) != 1 {
		t.Errorf("expected exactly one warning, got %v", collector.Messages)
	}
}

func TestMergeNegateOrResetInConfigWarnsAndSkips(t *testing.T) {
	// "no-" and "reset-" spellings aren't legal INI keys semantically, but
	// the merger must still defend against a hand-edited file containing one.
	doc := newDoc(t, "[global]\nno-archive-async=y\n")
	collector := &cfglog.Collector{}
	result := parseopt.NewResult()
	result.Command, result.Role = ruletable.CmdArchivePush, ruletable.RoleDefault

	if err := Merge(result, doc, "demo", collector); err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if len(collector.Messages) != 1 {
		t.Errorf("expected exactly one warning, got %v", collector.Messages)
	}
	if result.Slot(ruletable.OptArchiveAsync, 0).Found {
		t.Error("no-archive-async in config should be skipped, not applied")
	}
}

func TestResolveIndexMapPgEmptySynthesizesKeyZero(t *testing.T) {
	result := parseopt.NewResult()
	state := ResolveIndexMap(result, ruletable.GroupPg, true)
	if diff := cmp.Diff([]int{0}, state.IndexMap); diff != "" {
		t.Errorf("empty pg group IndexMap mismatch (-want +got):\n%s", diff)
	}
	if !state.IndexDefaultExists {
		t.Error("pg group IndexDefaultExists must always be true")
	}
}

func TestResolveIndexMapPgAlwaysReservesPositionZero(t *testing.T) {
	result := parseopt.NewResult()
	result.Slot(ruletable.OptPgPath, 2).Found = true // pg3-path only, no pg1-path

	state := ResolveIndexMap(result, ruletable.GroupPg, true)
	if diff := cmp.Diff([]int{0, 2}, state.IndexMap); diff != "" {
		t.Errorf("IndexMap mismatch, position 0 is always reserved for key 0 (-want +got):\n%s", diff)
	}
}

func TestResolveIndexMapRepoEmptyWithoutSelector(t *testing.T) {
	result := parseopt.NewResult()
	state := ResolveIndexMap(result, ruletable.GroupRepo, false)
	if diff := cmp.Diff([]int{0}, state.IndexMap); diff != "" {
		t.Errorf("empty repo group IndexMap mismatch (-want +got):\n%s", diff)
	}
	if state.IndexDefaultExists {
		t.Error("repo group IndexDefaultExists must be false when the repo selector is invalid for this command")
	}
}

func TestResolveIndexMapGathersSetKeys(t *testing.T) {
	result := parseopt.NewResult()
	result.Slot(ruletable.OptRepoPath, 0).Found = true
	result.Slot(ruletable.OptRepoPath, 2).Found = true

	state := ResolveIndexMap(result, ruletable.GroupRepo, true)
	if diff := cmp.Diff([]int{0, 2}, state.IndexMap); diff != "" {
		t.Errorf("IndexMap mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveDefaultIndexSelectsMatchingKey(t *testing.T) {
	state := GroupState{IndexMap: []int{0, 2}, IndexDefaultExists: true}
	got, err := ResolveDefaultIndex(state, ruletable.GroupRepo, 3, true)
	if err != nil {
		t.Fatalf("ResolveDefaultIndex() error = %v", err)
	}
	if got.IndexDefault != 1 {
		t.Errorf("IndexDefault = %d, want 1 (position of key 2 within IndexMap)", got.IndexDefault)
	}
}

func TestResolveDefaultIndexRejectsUnmappedKey(t *testing.T) {
	state := GroupState{IndexMap: []int{0}, IndexDefaultExists: true}
	if _, err := ResolveDefaultIndex(state, ruletable.GroupRepo, 5, true); err == nil {
		t.Fatal("expected an error selecting a repo key not present in IndexMap")
	}
}
