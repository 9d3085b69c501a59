package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/propdesk/internal/checksum"
)

func tempInbox(t *testing.T) *FS {
	t.Helper()
	s, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return s
}

func TestWriteAndRead(t *testing.T) {
	s := tempInbox(t)
	content := []byte("Name,Email\nPriya,p@example.com\n")
	if err := s.Write("leads.csv", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("leads.csv")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempInbox(t)
	if err := s.Write("processed/2024/a.json", []byte("{}")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("processed/2024/a.json")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "{}" {
		t.Errorf("content = %q", got)
	}
}

func TestMove(t *testing.T) {
	s := tempInbox(t)
	_ = s.Write("old.csv", []byte("data"))
	if err := s.Move("old.csv", "processed/new.csv"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	got, err := s.Read("processed/new.csv")
	if err != nil {
		t.Fatalf("Read after move: %v", err)
	}
	if string(got) != "data" {
		t.Errorf("content = %q", got)
	}
	if _, err := s.Read("old.csv"); err == nil {
		t.Error("old path should not exist")
	}
}

func TestList(t *testing.T) {
	s := tempInbox(t)
	_ = s.Write("b.csv", []byte("b"))
	_ = s.Write("a.CSV", []byte("a"))
	_ = s.Write("processed/c.csv", []byte("c"))
	_ = s.Write("readme.txt", []byte("not csv"))

	items, err := s.List("", ".csv")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].Path != "a.CSV" || items[1].Path != "b.csv" {
		t.Errorf("unexpected order: %+v", items)
	}
	if items[1].Checksum != checksum.Sum([]byte("b")) {
		t.Errorf("checksum = %q", items[1].Checksum)
	}

	sub, err := s.List("processed", ".csv")
	if err != nil {
		t.Fatalf("List processed: %v", err)
	}
	if len(sub) != 1 || sub[0].Path != filepath.Join("processed", "c.csv") {
		t.Errorf("processed listing = %+v", sub)
	}
}

func TestListMissingDir(t *testing.T) {
	s := tempInbox(t)
	items, err := s.List("processed", ".csv")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("len = %d, want 0", len(items))
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempInbox(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.csv",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	s := tempInbox(t)
	_ = s.Write("atomic.csv", []byte("original"))
	if err := s.Write("atomic.csv", []byte("updated")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.csv")
	if string(got) != "updated" {
		t.Errorf("expected updated content, got %q", got)
	}
	matches, _ := filepath.Glob(filepath.Join(s.root, ".propdesk-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp(t.TempDir(), "propdesk-test-*")
	_ = f.Close()
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}

func TestMoveNeverOverwrites(t *testing.T) {
	s := tempInbox(t)
	_ = s.Write("a.csv", []byte("first"))
	_ = s.Write("b.csv", []byte("second"))

	err := s.Move("b.csv", "a.csv")
	if !errors.Is(err, fs.ErrExist) {
		t.Fatalf("Move onto existing file: err = %v, want fs.ErrExist", err)
	}
	got, _ := s.Read("a.csv")
	if string(got) != "first" {
		t.Errorf("target overwritten: %q", got)
	}
	if _, err := s.Read("b.csv"); err != nil {
		t.Errorf("source should stay in place: %v", err)
	}
}

func TestWriteIsWorldReadable(t *testing.T) {
	s := tempInbox(t)
	if err := s.Write("summary.json", []byte("{}")); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(filepath.Join(s.Root(), "summary.json"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o644 {
		t.Errorf("perm = %v, want 0644", perm)
	}
}
