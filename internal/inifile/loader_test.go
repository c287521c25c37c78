package inifile_test

import (
	"testing"

	"github.com/pgguru/pgbackrest/internal/cfglog"
	"github.com/pgguru/pgbackrest/internal/inifile"
	"github.com/pgguru/pgbackrest/internal/testutil"
)

func TestLoadMainFileOnly(t *testing.T) {
	storage := testutil.NewMemStorage()
	storage.Files["/etc/pgbackrest.conf"] = "[global]\nrepo-path=/var/lib/pgbackrest\n"

	doc, err := inifile.Load(storage, testDefaults(), inifile.Options{}, &cfglog.Collector{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc == nil {
		t.Fatal("Load() doc = nil, want a document")
	}
	values, ok := doc.Get("global", "repo-path")
	if !ok || values[0] != "/var/lib/pgbackrest" {
		t.Errorf("global.repo-path = %v, %v", values, ok)
	}
}

func TestLoadMissingOptionalMainIsSilent(t *testing.T) {
	storage := testutil.NewMemStorage()
	doc, err := inifile.Load(storage, testDefaults(), inifile.Options{}, &cfglog.Collector{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc != nil {
		t.Errorf("Load() doc = %v, want nil when nothing exists", doc)
	}
}

func TestLoadMissingExplicitConfigIsFatal(t *testing.T) {
	storage := testutil.NewMemStorage()
	opts := inifile.Options{Config: "/custom/pgbackrest.conf", ConfigFound: true}
	if _, err := inifile.Load(storage, testDefaults(), opts, &cfglog.Collector{}); err == nil {
		t.Fatal("expected an error when an explicit --config path is missing")
	}
}

func TestLoadNoConfigSkipsEverything(t *testing.T) {
	storage := testutil.NewMemStorage()
	storage.Files["/etc/pgbackrest.conf"] = "[global]\nrepo-path=/x\n"
	doc, err := inifile.Load(storage, testDefaults(), inifile.Options{NoConfig: true}, &cfglog.Collector{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc != nil {
		t.Error("Load() with --no-config should return no document")
	}
}

func TestLoadIncludeDirectoryConcatenatesSorted(t *testing.T) {
	storage := testutil.NewMemStorage()
	storage.Files["/etc/pgbackrest/conf.d/b.conf"] = "[global]\nrepo-type=s3\n"
	storage.Files["/etc/pgbackrest/conf.d/a.conf"] = "[global]\nrepo-type=posix\n"

	doc, err := inifile.Load(storage, testDefaults(), inifile.Options{}, &cfglog.Collector{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	// a.conf sorts before b.conf, so its repo-type entry appears first;
	// the merger (not the loader) decides precedence between repeats, but
	// the Document should have preserved both in file order as a list.
	values, ok := doc.Get("global", "repo-type")
	if !ok || len(values) != 2 || values[0] != "posix" || values[1] != "s3" {
		t.Errorf("global.repo-type = %v, %v", values, ok)
	}
}

func TestLoadSkipIncludeWhenOnlyConfigGiven(t *testing.T) {
	storage := testutil.NewMemStorage()
	storage.Files["/custom/pgbackrest.conf"] = "[global]\nrepo-path=/x\n"
	storage.Files["/etc/pgbackrest/conf.d/z.conf"] = "[global]\nrepo-path=/should-not-load\n"

	opts := inifile.Options{Config: "/custom/pgbackrest.conf", ConfigFound: true}
	doc, err := inifile.Load(storage, testDefaults(), opts, &cfglog.Collector{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	values, _ := doc.Get("global", "repo-path")
	if len(values) != 1 || values[0] != "/x" {
		t.Errorf("global.repo-path = %v, want only the explicit main file's value", values)
	}
}

func TestLoadConfigPathRewritesDefaults(t *testing.T) {
	storage := testutil.NewMemStorage()
	storage.Files["/alt/pgbackrest.conf"] = "[global]\nrepo-path=/x\n"

	opts := inifile.Options{ConfigPath: "/alt", ConfigPathFound: true}
	doc, err := inifile.Load(storage, testDefaults(), opts, &cfglog.Collector{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc == nil {
		t.Fatal("Load() doc = nil, want the rewritten main file to be found")
	}
}

func TestLoadBracketKeyAccumulatesWithPlainKey(t *testing.T) {
	storage := testutil.NewMemStorage()
	storage.Files["/etc/pgbackrest.conf"] = "[global]\npg1-path[]=/a\npg1-path=/b\npg1-path[]=/c\n"

	doc, err := inifile.Load(storage, testDefaults(), inifile.Options{}, &cfglog.Collector{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	values, ok := doc.Get("global", "pg1-path")
	if !ok || len(values) != 3 || values[0] != "/a" || values[1] != "/b" || values[2] != "/c" {
		t.Errorf("global.pg1-path = %v, %v, want [/a /b /c]", values, ok)
	}
	if _, ok := doc.Get("global", "pg1-path[]"); ok {
		t.Error("global.pg1-path[] should not exist as a literal key")
	}
}

func testDefaults() inifile.Defaults {
	return inifile.Defaults{
		ConfigDefault:      "/etc/pgbackrest.conf",
		IncludePathDefault: "/etc/pgbackrest/conf.d",
		OrigDefault:        "/etc/pgbackrest.conf",
	}
}
