package snapshot

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestDiffNoChanges(t *testing.T) {
	tmp := t.TempDir()
	os.WriteFile(filepath.Join(tmp, "a.txt"), []byte("a"), 0644)

	before, err := Take(tmp)
	if err != nil {
		t.Fatalf("take failed: %v", err)
	}
	after, err := Take(tmp)
	if err != nil {
		t.Fatalf("take failed: %v", err)
	}

	if d := Diff(before, after); !d.Empty() {
		t.Errorf("expected empty diff, got %+v", d)
	}
}

func TestDiffCreated(t *testing.T) {
	tmp := t.TempDir()

	before, _ := Take(tmp)
	os.WriteFile(filepath.Join(tmp, "new.txt"), []byte("data"), 0644)
	os.MkdirAll(filepath.Join(tmp, "newdir"), 0755)
	after, _ := Take(tmp)

	d := Diff(before, after)

	if len(d.FilesCreated) != 1 || d.FilesCreated[0] != filepath.Join(tmp, "new.txt") {
		t.Errorf("expected one created file, got %v", d.FilesCreated)
	}
	if len(d.DirsCreated) != 1 || d.DirsCreated[0] != filepath.Join(tmp, "newdir") {
		t.Errorf("expected one created dir, got %v", d.DirsCreated)
	}
	if len(d.FilesDeleted) != 0 || len(d.FilesModified) != 0 || len(d.FilesMoved) != 0 {
		t.Errorf("created file leaked into another category: %+v", d)
	}
}

func TestDiffDeleted(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "gone.txt")
	os.WriteFile(path, []byte("bye"), 0644)

	before, _ := Take(tmp)
	os.Remove(path)
	after, _ := Take(tmp)

	d := Diff(before, after)

	if len(d.FilesDeleted) != 1 || d.FilesDeleted[0] != path {
		t.Errorf("expected one deleted file, got %v", d.FilesDeleted)
	}
	if len(d.FilesCreated) != 0 {
		t.Errorf("deletion leaked into created: %v", d.FilesCreated)
	}
}

func TestDiffModified(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "mod.txt")
	os.WriteFile(path, []byte("v1"), 0644)

	before, _ := Take(tmp)

	// Size change alone is enough; also push mtime to dodge coarse
	// filesystem timestamp granularity.
	os.WriteFile(path, []byte("version two"), 0644)
	os.Chtimes(path, time.Now(), time.Now().Add(time.Second))

	after, _ := Take(tmp)

	d := Diff(before, after)

	if len(d.FilesModified) != 1 || d.FilesModified[0] != path {
		t.Errorf("expected one modified file, got %v", d.FilesModified)
	}
	if len(d.FilesCreated) != 0 || len(d.FilesDeleted) != 0 {
		t.Errorf("modification leaked into another category: %+v", d)
	}
}

func TestDiffMoved(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no entry identity on windows")
	}

	tmp := t.TempDir()
	oldPath := filepath.Join(tmp, "old.txt")
	newPath := filepath.Join(tmp, "new.txt")
	os.WriteFile(oldPath, []byte("payload"), 0644)

	before, _ := Take(tmp)
	os.Rename(oldPath, newPath)
	after, _ := Take(tmp)

	d := Diff(before, after)

	if len(d.FilesMoved) != 1 {
		t.Fatalf("expected one moved file, got %+v", d)
	}
	if d.FilesMoved[0].OldPath != oldPath || d.FilesMoved[0].Path != newPath {
		t.Errorf("expected move %s -> %s, got %+v", oldPath, newPath, d.FilesMoved[0])
	}

	// A move must never surface as a delete+create pair
	if len(d.FilesDeleted) != 0 || len(d.FilesCreated) != 0 {
		t.Errorf("move reported as delete+create: %+v", d)
	}
}

func TestDiffMovedWithExtraHardLink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no entry identity on windows")
	}

	tmp := t.TempDir()
	oldPath := filepath.Join(tmp, "a.txt")
	newPath := filepath.Join(tmp, "b.txt")
	linkPath := filepath.Join(tmp, "c.txt")
	os.WriteFile(oldPath, []byte("payload"), 0644)

	before, _ := Take(tmp)
	os.Rename(oldPath, newPath)
	// A second path now shares the renamed file's identity
	if err := os.Link(newPath, linkPath); err != nil {
		t.Skipf("hard links unsupported here: %v", err)
	}
	after, _ := Take(tmp)

	d := Diff(before, after)

	// One deletion pairs with exactly one creation; the extra link is
	// a plain create, never a second move from the same old path.
	if len(d.FilesMoved) != 1 {
		t.Fatalf("expected one moved file, got %+v", d.FilesMoved)
	}
	if d.FilesMoved[0].OldPath != oldPath {
		t.Errorf("expected move from %s, got %+v", oldPath, d.FilesMoved[0])
	}
	if len(d.FilesCreated) != 1 {
		t.Fatalf("expected one created file, got %v", d.FilesCreated)
	}

	// The move target and the create must cover b and c between them
	got := map[string]bool{d.FilesMoved[0].Path: true, d.FilesCreated[0]: true}
	if !got[newPath] || !got[linkPath] {
		t.Errorf("expected %s and %s across move+create, got move %+v create %v",
			newPath, linkPath, d.FilesMoved[0], d.FilesCreated)
	}
	if len(d.FilesDeleted) != 0 {
		t.Errorf("pairing leaked a deletion: %v", d.FilesDeleted)
	}
}

func TestDiffMovedDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no entry identity on windows")
	}

	tmp := t.TempDir()
	oldDir := filepath.Join(tmp, "olddir")
	newDir := filepath.Join(tmp, "newdir")
	os.MkdirAll(oldDir, 0755)

	before, _ := Take(tmp)
	os.Rename(oldDir, newDir)
	after, _ := Take(tmp)

	d := Diff(before, after)

	if len(d.DirsMoved) != 1 {
		t.Fatalf("expected one moved dir, got %+v", d)
	}
	if d.DirsMoved[0].OldPath != oldDir || d.DirsMoved[0].Path != newDir {
		t.Errorf("expected move %s -> %s, got %+v", oldDir, newDir, d.DirsMoved[0])
	}
}

func TestDiffSortedOrder(t *testing.T) {
	tmp := t.TempDir()

	before, _ := Take(tmp)
	os.WriteFile(filepath.Join(tmp, "c.txt"), []byte("c"), 0644)
	os.WriteFile(filepath.Join(tmp, "a.txt"), []byte("a"), 0644)
	os.WriteFile(filepath.Join(tmp, "b.txt"), []byte("b"), 0644)
	after, _ := Take(tmp)

	d := Diff(before, after)

	want := []string{
		filepath.Join(tmp, "a.txt"),
		filepath.Join(tmp, "b.txt"),
		filepath.Join(tmp, "c.txt"),
	}
	if len(d.FilesCreated) != 3 {
		t.Fatalf("expected 3 created files, got %v", d.FilesCreated)
	}
	for i, path := range want {
		if d.FilesCreated[i] != path {
			t.Errorf("position %d: expected %s, got %s", i, path, d.FilesCreated[i])
		}
	}
}
