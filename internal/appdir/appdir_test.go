package appdir

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestResolve_Override(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	got, err := Resolve(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != dir {
		t.Errorf("expected %s, got %s", dir, got)
	}
	if info, err := os.Stat(got); err != nil || !info.IsDir() {
		t.Fatalf("expected directory to be created, stat err: %v", err)
	}
}

func TestResolve_UserConfigDir(t *testing.T) {
	base := t.TempDir()
	orig := userConfigDir
	userConfigDir = func() (string, error) { return base, nil }
	t.Cleanup(func() { userConfigDir = orig })

	got, err := Resolve("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != filepath.Join(base, AppName) {
		t.Errorf("unexpected dir %s", got)
	}
}

func TestResolve_UserConfigDirError(t *testing.T) {
	orig := userConfigDir
	userConfigDir = func() (string, error) { return "", errors.New("$HOME is not defined") }
	t.Cleanup(func() { userConfigDir = orig })

	if _, err := Resolve(""); err == nil {
		t.Fatal("expected error when config dir cannot be resolved")
	}
}

func TestResolve_FileInTheWay(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Resolve(filepath.Join(blocker, "data")); err == nil {
		t.Fatal("expected error when a file blocks the directory path")
	}
}
