package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()
	first := UniquePath(dir, "members.bmi", ".csv")
	if filepath.Base(first) != "members.bmi.csv" {
		t.Fatalf("first = %s", first)
	}
	if err := SafeWriteFile(first, []byte("x")); err != nil {
		t.Fatal(err)
	}
	second := UniquePath(dir, "members.bmi", ".csv")
	if filepath.Base(second) != "members.bmi__2.csv" {
		t.Fatalf("second = %s", second)
	}
}

func TestSafeWriteFileCreatesDir(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "out.txt")
	if err := SafeWriteFile(p, []byte("hello")); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(p)
	if err != nil || string(b) != "hello" {
		t.Fatalf("read back %q, %v", b, err)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("temp file left behind")
	}
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"b.csv", "a.csv", "c.txt"} {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	got := ExpandInputs([]string{filepath.Join(dir, "*.csv"), filepath.Join(dir, "a.csv"), filepath.Join(dir, "missing.csv")})
	if len(got) != 2 || filepath.Base(got[0]) != "a.csv" || filepath.Base(got[1]) != "b.csv" {
		t.Fatalf("got %v", got)
	}
}
