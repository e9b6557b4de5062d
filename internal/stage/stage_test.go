package stage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"
)

func TestStashAndOpen(t *testing.T) {
	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, "mem://")
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	defer bucket.Close()

	path := filepath.Join(t.TempDir(), "raw.json")
	if err := os.WriteFile(path, []byte(`{"rows":3}`), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if err := Stash(ctx, bucket, "runs/abc/raw.json", path); err != nil {
		t.Fatalf("Stash: %v", err)
	}

	r, err := Open(ctx, bucket, "runs/abc/raw.json")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != `{"rows":3}` {
		t.Errorf("unexpected artifact content: %q", got)
	}
}

func TestOpenMissing(t *testing.T) {
	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, "mem://")
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	defer bucket.Close()

	_, err = Open(ctx, bucket, "nowhere")
	if !errors.Is(err, ErrNotStaged) {
		t.Errorf("expected ErrNotStaged, got %v", err)
	}
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, "mem://")
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	defer bucket.Close()

	tmp := t.TempDir()
	src := filepath.Join(tmp, "src.bin")
	if err := os.WriteFile(src, []byte("payload"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if err := Stash(ctx, bucket, "artifact", src); err != nil {
		t.Fatalf("Stash: %v", err)
	}

	dest := filepath.Join(tmp, "restored.bin")
	if err := Restore(ctx, bucket, "artifact", dest); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "payload" {
		t.Errorf("unexpected restored content: %q", got)
	}
}

func TestStashMissingFile(t *testing.T) {
	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, "mem://")
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	defer bucket.Close()

	err = Stash(ctx, bucket, "key", filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatal("expected error for missing source file")
	}
}
