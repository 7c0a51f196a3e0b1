package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zsiec/demparse/bitstream"
)

func writeMinimalDemo(t *testing.T, network int32) string {
	t.Helper()
	w := bitstream.NewWriter()
	w.PutBytes([]byte("HL2DEMO\x00"))
	w.PutInt(32, 3)
	w.PutInt(32, int64(network))
	w.PutString("localhost", 260)
	w.PutString("chell", 260)
	w.PutString("testchmb_a_00", 260)
	w.PutString("portal", 260)
	w.PutFloat(2.5)
	w.PutInt(32, 150000)
	w.PutInt(32, 149000)
	w.PutInt(32, 0)
	w.PutBits(8, 3) // SyncTick
	w.PutInt(32, 0)
	w.PutBits(8, 7) // Stop
	w.PutBits(24, 1)

	path := filepath.Join(t.TempDir(), "minimal.dem")
	if err := os.WriteFile(path, w.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunDump(t *testing.T) {
	t.Setenv("DEMDUMP_PACKETS", "true")
	path := writeMinimalDemo(t, 15)

	var stdout, stderr bytes.Buffer
	if code := run([]string{path}, &stdout, &stderr); code != exitOK {
		t.Fatalf("exit %d, stderr: %s", code, stderr.String())
	}
	out := stdout.String()
	for _, want := range []string{
		"HL2DEMO",
		"15 (portal-5135)",
		"testchmb_a_00",
		"2.500s",
		"150,000",
		"SyncTick:",
		"Stop:",
		"parsed in ",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunUsage(t *testing.T) {
	tests := [][]string{nil, {"a.dem", "b.dem"}}
	for _, args := range tests {
		var stdout, stderr bytes.Buffer
		if code := run(args, &stdout, &stderr); code != exitUsage {
			t.Errorf("args %v: exit %d, want %d", args, code, exitUsage)
		}
		if !strings.Contains(stderr.String(), "usage:") {
			t.Errorf("args %v: stderr = %q", args, stderr.String())
		}
		if stdout.Len() != 0 {
			t.Errorf("args %v: unexpected output %q", args, stdout.String())
		}
	}
}

func TestRunDecodeFailure(t *testing.T) {
	path := writeMinimalDemo(t, 99)

	var stdout, stderr bytes.Buffer
	if code := run([]string{path}, &stdout, &stderr); code != exitFail {
		t.Fatalf("exit %d, want %d", code, exitFail)
	}
	if stdout.Len() != 0 {
		t.Errorf("partial dump on failure: %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "unsupported") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRunMissingFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{filepath.Join(t.TempDir(), "nope.dem")}, &stdout, &stderr)
	if code != exitFail {
		t.Fatalf("exit %d, want %d", code, exitFail)
	}
}

func TestRunBadConfig(t *testing.T) {
	t.Setenv("DEMDUMP_LOG_FORMAT", "xml")
	path := writeMinimalDemo(t, 15)

	var stdout, stderr bytes.Buffer
	if code := run([]string{path}, &stdout, &stderr); code != exitFail {
		t.Fatalf("exit %d, want %d", code, exitFail)
	}
	if !strings.Contains(stderr.String(), "DEMDUMP_LOG_FORMAT") {
		t.Errorf("stderr = %q", stderr.String())
	}
	if stdout.Len() != 0 {
		t.Errorf("unexpected output %q", stdout.String())
	}
}
