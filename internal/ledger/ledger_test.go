package ledger

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	logx "econalert/pkg/logx"
)

func TestOpenMissingIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sent_events.json")
	l, err := Open(path, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if l.Len() != 0 {
		t.Fatalf("Len = %d, want 0", l.Len())
	}
	if l.Changed() {
		t.Fatal("fresh ledger must not be changed")
	}
}

func TestRoundTripIgnoresInsertionOrder(t *testing.T) {
	dir := t.TempDir()
	ids := []string{"c3", "a1", "b2", "e5", "d4"}

	pathA := filepath.Join(dir, "a.json")
	la, _ := Open(pathA, logx.Nop())
	for _, id := range ids {
		la.Add(id)
	}
	if wrote, err := la.SaveIfChanged(); err != nil || !wrote {
		t.Fatalf("SaveIfChanged = %v, %v; want true, nil", wrote, err)
	}

	pathB := filepath.Join(dir, "b.json")
	lb, _ := Open(pathB, logx.Nop())
	for i := len(ids) - 1; i >= 0; i-- {
		lb.Add(ids[i])
	}
	if _, err := lb.SaveIfChanged(); err != nil {
		t.Fatalf("SaveIfChanged: %v", err)
	}

	ra, err := Open(pathA, logx.Nop())
	if err != nil {
		t.Fatalf("reopen a: %v", err)
	}
	rb, err := Open(pathB, logx.Nop())
	if err != nil {
		t.Fatalf("reopen b: %v", err)
	}

	want := append([]string(nil), ids...)
	sort.Strings(want)
	for _, l := range []*Ledger{ra, rb} {
		got := l.IDs()
		if len(got) != len(want) {
			t.Fatalf("IDs = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("IDs = %v, want %v", got, want)
			}
		}
	}

	a, _ := os.ReadFile(pathA)
	b, _ := os.ReadFile(pathB)
	if string(a) != string(b) {
		t.Fatalf("files differ:\n%s\n%s", a, b)
	}
}

func TestSaveIfChangedSkipsUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sent.json")
	l, _ := Open(path, logx.Nop())
	if wrote, err := l.SaveIfChanged(); err != nil || wrote {
		t.Fatalf("SaveIfChanged on clean ledger = %v, %v; want false, nil", wrote, err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("clean ledger must not create a file, stat err = %v", err)
	}

	l.Add("x")
	if _, err := l.SaveIfChanged(); err != nil {
		t.Fatalf("SaveIfChanged: %v", err)
	}
	info, _ := os.Stat(path)

	l2, _ := Open(path, logx.Nop())
	l2.Add("x") // already present
	if l2.Changed() {
		t.Fatal("re-adding a known id must not mark the ledger changed")
	}
	if wrote, _ := l2.SaveIfChanged(); wrote {
		t.Fatal("unchanged ledger was rewritten")
	}
	info2, _ := os.Stat(path)
	if !info.ModTime().Equal(info2.ModTime()) {
		t.Fatal("file modified although nothing changed")
	}
}

func TestCorruptLedgerRecovered(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sent.json")
	if err := os.WriteFile(path, []byte(`["abc", "de`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("Load err = %v, want ErrCorrupt", err)
	}

	l, err := Open(path, logx.Nop())
	if err != nil {
		t.Fatalf("Open on corrupt ledger: %v", err)
	}
	if l.Len() != 0 {
		t.Fatalf("Len = %d, want 0", l.Len())
	}
	if _, err := os.Stat(path + ".corrupt"); err != nil {
		t.Fatalf("expected corrupt backup: %v", err)
	}
}

func TestOpenReadOnlyLeavesFileAlone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sent.json")
	corrupt := []byte(`["abc", "de`)
	if err := os.WriteFile(path, corrupt, 0o644); err != nil {
		t.Fatal(err)
	}

	l, err := OpenReadOnly(path, logx.Nop())
	if err != nil {
		t.Fatalf("OpenReadOnly: %v", err)
	}
	if l.Len() != 0 {
		t.Fatalf("Len = %d, want 0", l.Len())
	}
	l.Add("fresh")
	if !l.Contains("fresh") {
		t.Fatal("Add should still work in memory")
	}
	if wrote, err := l.SaveIfChanged(); wrote || err != nil {
		t.Fatalf("SaveIfChanged = %v, %v; want false, nil", wrote, err)
	}
	if err := l.Reset(); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("Reset err = %v, want ErrReadOnly", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ledger file gone: %v", err)
	}
	if string(got) != string(corrupt) {
		t.Fatalf("ledger content changed: %q", got)
	}
	if _, err := os.Stat(path + ".corrupt"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("read-only open created a backup: %v", err)
	}
}

func TestWrongShapeIsCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sent.json")
	if err := os.WriteFile(path, []byte(`{"ids": ["a"]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("Load err = %v, want ErrCorrupt", err)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sent.json")
	if err := Save(path, []string{"a", "b"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "sent.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("dir entries = %v, want [sent.json]", names)
	}
	b, _ := os.ReadFile(path)
	if string(b) != `["a","b"]` {
		t.Fatalf("file = %s", b)
	}
}

func TestReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sent.json")
	if err := Save(path, []string{"a"}); err != nil {
		t.Fatal(err)
	}
	l, _ := Open(path, logx.Nop())
	if err := l.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	again, _ := Open(path, logx.Nop())
	if again.Len() != 0 {
		t.Fatalf("Len after reset = %d, want 0", again.Len())
	}
}
