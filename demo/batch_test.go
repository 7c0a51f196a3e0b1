package demo

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/zsiec/demparse/protocol"
)

func writeDemo(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDecodeFile(t *testing.T) {
	t.Parallel()
	path := writeDemo(t, t.TempDir(), "a.dem", validDemo("testchmb_a_08"))
	dem, err := NewDecoder().DecodeFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if dem.Header.MapName != "testchmb_a_08" {
		t.Errorf("map = %q", dem.Header.MapName)
	}

	_, err = NewDecoder().DecodeFile(filepath.Join(t.TempDir(), "missing.dem"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want ErrNotExist", err)
	}
}

func TestDecodeFilesOrder(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	maps := []string{"testchmb_a_00", "testchmb_a_01", "testchmb_a_02", "testchmb_a_03", "escape_00"}
	var paths []string
	for _, m := range maps {
		paths = append(paths, writeDemo(t, dir, m+".dem", validDemo(m)))
	}

	for _, limit := range []int{0, 1, 2} {
		demos, err := NewDecoder().DecodeFiles(context.Background(), paths, limit)
		if err != nil {
			t.Fatalf("limit %d: %v", limit, err)
		}
		if len(demos) != len(maps) {
			t.Fatalf("limit %d: got %d demos, want %d", limit, len(demos), len(maps))
		}
		for i, dem := range demos {
			if dem.Header.MapName != maps[i] {
				t.Errorf("limit %d: demo %d map = %q, want %q", limit, i, dem.Header.MapName, maps[i])
			}
			if dem.Events.Len() != 1 {
				t.Errorf("limit %d: demo %d schema holds %d events", limit, i, dem.Events.Len())
			}
		}
	}
}

func TestDecodeFilesError(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	bad := validDemo("broken")
	bad[0] = 'X'
	paths := []string{
		writeDemo(t, dir, "good.dem", validDemo("good")),
		writeDemo(t, dir, "bad.dem", bad),
	}

	demos, err := NewDecoder().DecodeFiles(context.Background(), paths, 2)
	if !errors.Is(err, protocol.ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
	if demos != nil {
		t.Errorf("got %d demos on failure, want nil", len(demos))
	}
}

func TestDecodeFilesCanceled(t *testing.T) {
	t.Parallel()
	path := writeDemo(t, t.TempDir(), "a.dem", validDemo("m"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDecoder().DecodeFiles(ctx, []string{path}, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
