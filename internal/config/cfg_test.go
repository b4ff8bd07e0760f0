package config

import (
	"testing"

	"github.com/spf13/cobra"
)

func bindAndParse(t *testing.T, args []string) *Cfg {
	t.Helper()

	cmd := &cobra.Command{Use: "test", RunE: func(cmd *cobra.Command, args []string) error { return nil }}
	cfg := Bind(cmd)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	return cfg
}

func TestBindParsesRootFlagRepeatable(t *testing.T) {
	dir := t.TempDir()

	cfg := bindAndParse(t, []string{
		"--directory", dir,
		"--root", "music " + dir,
		"--root", "more " + dir,
	})

	if len(cfg.Roots) != 2 {
		t.Fatalf("got %d roots, want 2", len(cfg.Roots))
	}
	if cfg.Roots[0].Name != "music" || cfg.Roots[0].Path != dir {
		t.Fatalf("got root %+v", cfg.Roots[0])
	}
	if cfg.Roots[1].Name != "more" {
		t.Fatalf("got root %+v", cfg.Roots[1])
	}
}

func TestRootFlagRejectsMissingPath(t *testing.T) {
	cmd := &cobra.Command{Use: "test", RunE: func(cmd *cobra.Command, args []string) error { return nil }}
	Bind(cmd)
	cmd.SetArgs([]string{"--directory", t.TempDir(), "--root", "onlyname"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error for a --root value with no path")
	}
}

func TestValidateDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg := bindAndParse(t, []string{"--directory", dir, "--root", "music " + dir})

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsMissingDirectory(t *testing.T) {
	cfg := bindAndParse(t, []string{"--directory", "", "--root", "music " + t.TempDir()})

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for a missing --directory")
	}
}

func TestValidateRejectsNonexistentDirectory(t *testing.T) {
	missing := t.TempDir() + "/does-not-exist"
	cfg := bindAndParse(t, []string{"--directory", missing, "--root", "music " + t.TempDir()})

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for a nonexistent --directory")
	}
}

func TestValidateRejectsNoRoots(t *testing.T) {
	cfg := bindAndParse(t, []string{"--directory", t.TempDir()})

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error when no --root is declared")
	}
}

func TestValidateRejectsDuplicateRootNames(t *testing.T) {
	dir := t.TempDir()
	cfg := bindAndParse(t, []string{
		"--directory", dir,
		"--root", "music " + dir,
		"--root", "music " + dir,
	})

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for a duplicate root name")
	}
}

func TestValidateRejectsInvalidLogLevel(t *testing.T) {
	dir := t.TempDir()
	cfg := bindAndParse(t, []string{"--directory", dir, "--root", "music " + dir, "--log-level", "verbose"})

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for an invalid --log-level")
	}
}

func TestDBPaths(t *testing.T) {
	cfg := &Cfg{Directory: "/var/lib/musicd"}
	if got := cfg.CacheDBPath(); got != "/var/lib/musicd/cache.db" {
		t.Fatalf("CacheDBPath = %q", got)
	}
	if got := cfg.IndexDBPath(); got != "/var/lib/musicd/index.db" {
		t.Fatalf("IndexDBPath = %q", got)
	}
	if got := cfg.StoreDBPath(); got != "/var/lib/musicd/store.db" {
		t.Fatalf("StoreDBPath = %q", got)
	}
}
