package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStore_FileNotExist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	fs, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	if len(fs.Entries) != 0 {
		t.Errorf("expected no entries, got %d", len(fs.Entries))
	}
	if _, ok, _ := fs.Get(context.Background(), KeyToken); ok {
		t.Error("expected token to be absent")
	}
}

func TestFileStore_FileExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	buf, _ := json.Marshal(map[string]any{"entries": map[string]string{KeyToken: "abc"}})
	if err := os.WriteFile(path, buf, 0o600); err != nil {
		t.Fatal(err)
	}

	fs, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	v, ok, err := fs.Get(context.Background(), KeyToken)
	if err != nil || !ok || v != "abc" {
		t.Errorf("Get = %q, %v, %v; want abc, true, nil", v, ok, err)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("not-json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(path); err == nil {
		t.Error("expected error for corrupt file")
	}
}

func TestFileStore_SetDeleteWriteThrough(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	fs, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := fs.Set(ctx, KeyToken, "t1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := fs.Set(ctx, KeyUser, `{"id":1}`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// a second store sees the data without any explicit flush
	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if v, ok, _ := reopened.Get(ctx, KeyUser); !ok || v != `{"id":1}` {
		t.Errorf("reopened Get(user) = %q, %v", v, ok)
	}

	if err := fs.Delete(ctx, KeyToken, KeyUser, "missing"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	reopened, err = NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(reopened.Entries) != 0 {
		t.Errorf("expected empty store after delete, got %+v", reopened.Entries)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file mode = %v; want 0600", perm)
	}
}

func TestFileStore_Closed(t *testing.T) {
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "s.json"))
	if err != nil {
		t.Fatal(err)
	}
	_ = fs.Close()
	if err := fs.Set(context.Background(), "k", "v"); err != ErrClosed {
		t.Errorf("Set after Close = %v; want ErrClosed", err)
	}
	if _, _, err := fs.Get(context.Background(), "k"); err != ErrClosed {
		t.Errorf("Get after Close = %v; want ErrClosed", err)
	}
}
