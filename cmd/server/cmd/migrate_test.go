package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestMigrateOptionsResolveURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/hackhub")

	url, err := migrateOptions{databaseURL: "postgres://flag/hackhub"}.resolveURL()
	if err != nil || url != "postgres://flag/hackhub" {
		t.Errorf("expected flag url, got %q, %v", url, err)
	}

	url, err = migrateOptions{}.resolveURL()
	if err != nil || url != "postgres://env/hackhub" {
		t.Errorf("expected env url, got %q, %v", url, err)
	}

	t.Setenv("DATABASE_URL", "")
	if _, err := (migrateOptions{}).resolveURL(); err == nil {
		t.Error("expected error without a database url")
	}
}

func TestMigrateCommandSubcommands(t *testing.T) {
	cmd := newMigrateCommand()
	for _, name := range []string{"up", "down", "version"} {
		sub, _, err := cmd.Find([]string{name})
		if err != nil || sub.Name() != name {
			t.Errorf("expected subcommand %q, got %v", name, err)
		}
	}

	down, _, _ := cmd.Find([]string{"down"})
	if f := down.Flags().Lookup("steps"); f == nil || f.DefValue != "1" {
		t.Error("expected --steps flag defaulting to 1")
	}
}

func TestMigrateUpWithoutDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cmd := newMigrateCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"up"})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "database url is required") {
		t.Fatalf("expected database url error, got %v", err)
	}
}
