package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"
)

// steppingClock returns a clock that advances one second per call so every
// rotation gets its own timestamp.
func steppingClock() func() time.Time {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func logFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), logFileExt) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

func TestRotatingWriterCreatesDirectoryLazily(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	w := newSizeRotatingWriter(dir, "app", 100, KeepAll(), steppingClock())
	defer w.Close()

	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("directory should not exist before the first write, stat err=%v", err)
	}
	if _, err := w.Write([]byte("first\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "app.log")); err != nil {
		t.Fatalf("active file missing: %v", err)
	}
}

func TestRotatingWriterKeepAllLeavesOneFilePerRotation(t *testing.T) {
	dir := t.TempDir()
	w := newSizeRotatingWriter(dir, "app", 10, KeepAll(), steppingClock())
	defer w.Close()

	rec := []byte("0123456789") // exactly the cap
	const writes = 4
	for i := 0; i < writes; i++ {
		if _, err := w.Write(rec); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}
	// first write fills the file, each later one rotates
	files := logFiles(t, dir)
	if len(files) != writes {
		t.Fatalf("want %d files after %d rotations, got %v", writes, writes-1, files)
	}
	for _, name := range files {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		if info.Size() > 10 {
			t.Fatalf("%s exceeds cap: %d bytes", name, info.Size())
		}
	}
}

func TestRotatingWriterRotatesBeforeExceedingCap(t *testing.T) {
	const maxSize = 10_000_000
	dir := t.TempDir()
	w := newSizeRotatingWriter(dir, "app", maxSize, KeepAll(), steppingClock())
	defer w.Close()

	big := bytes.Repeat([]byte("a"), maxSize-10)
	if _, err := w.Write(big); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(bytes.Repeat([]byte("b"), 10)); err != nil {
		t.Fatal(err)
	}
	if got := logFiles(t, dir); len(got) != 1 {
		t.Fatalf("file at exactly the cap must not rotate, files=%v", got)
	}

	if _, err := w.Write([]byte("c")); err != nil {
		t.Fatal(err)
	}
	files := logFiles(t, dir)
	if len(files) != 2 {
		t.Fatalf("want active + 1 rotated, got %v", files)
	}
	active, err := os.ReadFile(filepath.Join(dir, "app.log"))
	if err != nil {
		t.Fatal(err)
	}
	if string(active) != "c" {
		t.Fatalf("active file should hold only the new record, got %d bytes", len(active))
	}
}

func TestRotatingWriterOversizedRecordGoesAlone(t *testing.T) {
	dir := t.TempDir()
	w := newSizeRotatingWriter(dir, "app", 8, KeepAll(), steppingClock())
	defer w.Close()

	if _, err := w.Write([]byte("tiny")); err != nil {
		t.Fatal(err)
	}
	huge := []byte("this record is much larger than eight bytes")
	if _, err := w.Write(huge); err != nil {
		t.Fatal(err)
	}
	active, err := os.ReadFile(filepath.Join(dir, "app.log"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(active, huge) {
		t.Fatalf("oversized record must be written whole into a fresh file, got %q", active)
	}
}

func TestRotatingWriterKeepOneAndKeepSome(t *testing.T) {
	cases := []struct {
		name     string
		strategy RotationStrategy
		want     int // files on disk including the active one
	}{
		{"keep_one", KeepOne(), 1},
		{"keep_some", KeepSome(2), 3},
		{"keep_all", KeepAll(), 6},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			dir := t.TempDir()
			w := newSizeRotatingWriter(dir, "app", 4, c.strategy, steppingClock())
			defer w.Close()
			for i := 0; i < 6; i++ {
				if _, err := w.Write([]byte("abcd")); err != nil {
					t.Fatal(err)
				}
			}
			if got := logFiles(t, dir); len(got) != c.want {
				t.Fatalf("want %d files, got %v", c.want, got)
			}
		})
	}
}

func TestRotatingWriterNameCollision(t *testing.T) {
	dir := t.TempDir()
	fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	w := newSizeRotatingWriter(dir, "app", 2, KeepAll(), func() time.Time { return fixed })
	defer w.Close()
	for i := 0; i < 3; i++ {
		if _, err := w.Write([]byte("xy")); err != nil {
			t.Fatal(err)
		}
	}
	want := []string{"app.log", "app_2024-03-01_10-00-00.1.log", "app_2024-03-01_10-00-00.log"}
	got := logFiles(t, dir)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("want %v got %v", want, got)
	}

	rotated, err := w.rotatedFiles()
	if err != nil {
		t.Fatal(err)
	}
	if len(rotated) != 2 || rotated[0].seq != 0 || rotated[1].seq != 1 {
		t.Fatalf("rotated files out of order: %+v", rotated)
	}
}

func TestRotatingWriterAppendsToExistingFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "app.log"), []byte("12345678"), 0o644); err != nil {
		t.Fatal(err)
	}
	w := newSizeRotatingWriter(dir, "app", 10, KeepAll(), steppingClock())
	defer w.Close()
	if _, err := w.Write([]byte("abc")); err != nil {
		t.Fatal(err)
	}
	if got := logFiles(t, dir); len(got) != 2 {
		t.Fatalf("existing size must count toward the cap, files=%v", got)
	}
}
