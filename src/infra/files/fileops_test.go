package files

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMoveCreatesDirectoriesAndRelocates(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in", "track.mp3")
	if err := os.MkdirAll(filepath.Dir(src), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src, []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(dir, "out", "Artist", "Album", "track.mp3")
	if err := NewMover().Move(src, dst); err != nil {
		t.Fatalf("Move failed: %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "audio" {
		t.Errorf("destination content wrong: %q err %v", data, err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source should be gone after move")
	}
}

func TestMoveMissingSourceErrors(t *testing.T) {
	dir := t.TempDir()
	err := NewMover().Move(filepath.Join(dir, "absent.mp3"), filepath.Join(dir, "out.mp3"))
	if err == nil {
		t.Error("moving a missing file must error")
	}
}

func TestRemoveEmptyDirectoriesStopsAtRoot(t *testing.T) {
	root := t.TempDir()
	leaf := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(leaf, 0o755); err != nil {
		t.Fatal(err)
	}

	if err := NewMover().RemoveEmptyDirectories(leaf, root); err != nil {
		t.Fatalf("RemoveEmptyDirectories failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "a")); !os.IsNotExist(err) {
		t.Error("empty chain should be removed up to the root")
	}
	if _, err := os.Stat(root); err != nil {
		t.Errorf("root itself must survive: %v", err)
	}
}

func TestRemoveEmptyDirectoriesKeepsNonEmpty(t *testing.T) {
	root := t.TempDir()
	leaf := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(leaf, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "a", "keep.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := NewMover().RemoveEmptyDirectories(leaf, root); err != nil {
		t.Fatalf("RemoveEmptyDirectories failed: %v", err)
	}

	if _, err := os.Stat(leaf); !os.IsNotExist(err) {
		t.Error("empty leaf should be removed")
	}
	if _, err := os.Stat(filepath.Join(root, "a")); err != nil {
		t.Errorf("directory with content must survive: %v", err)
	}
}

func TestCopyFilePreservesContent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.flac")
	if err := os.WriteFile(src, []byte("flacdata"), 0o600); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(dir, "dst.flac")
	if err := copyFile(src, dst); err != nil {
		t.Fatalf("copyFile failed: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "flacdata" {
		t.Errorf("copy content wrong: %q err %v", data, err)
	}
}

func TestRemoveEmptyDirectoriesNeverRemovesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "dest")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}

	if err := NewMover().RemoveEmptyDirectories(root, root); err != nil {
		t.Fatalf("RemoveEmptyDirectories failed: %v", err)
	}

	if _, err := os.Stat(root); err != nil {
		t.Errorf("empty root must survive: %v", err)
	}
}
