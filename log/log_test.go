package log

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setupLogDir(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	SetDir(tmp)
	t.Cleanup(func() { Close(); SetDir("") })
	return tmp
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestResolveDirFlag(t *testing.T) {
	got, err := ResolveDir("/tmp/mylog")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/mylog" {
		t.Errorf("got %q, want /tmp/mylog", got)
	}
}

func TestResolveDirFlagRelative(t *testing.T) {
	got, err := ResolveDir("logs")
	if err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(wd, "logs")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveDirEnv(t *testing.T) {
	t.Setenv("MURMUR_LOG_PATH", "/tmp/murmur-env-log")
	got, err := ResolveDir("")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/murmur-env-log" {
		t.Errorf("got %q, want /tmp/murmur-env-log", got)
	}
}

func TestResolveDirFlagBeatsEnv(t *testing.T) {
	t.Setenv("MURMUR_LOG_PATH", "/tmp/from-env")
	got, err := ResolveDir("/tmp/from-flag")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/from-flag" {
		t.Errorf("got %q, want /tmp/from-flag", got)
	}
}

func TestResolveDirDefault(t *testing.T) {
	t.Setenv("MURMUR_LOG_PATH", "")
	got, err := ResolveDir("")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "murmur") {
		t.Errorf("expected default directory under murmur, got %q", got)
	}
}

func TestInitCreatesFiles(t *testing.T) {
	tmp := setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{diagFileName, transcriptFileName} {
		path := filepath.Join(tmp, name)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%s not created: %v", name, err)
		}
	}
}

func TestNoopBeforeInit(t *testing.T) {
	tmp := setupLogDir(t)

	// None of these may panic or create files before Init.
	Info("x")
	Warnf("y %d", 1)
	MeterStart(40, 50*time.Millisecond)
	TranscriptMessage("user", "hello")

	if _, err := os.Stat(filepath.Join(tmp, diagFileName)); !os.IsNotExist(err) {
		t.Errorf("diagnostics file created before Init: %v", err)
	}
}

func TestMeterEvents(t *testing.T) {
	tmp := setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}

	MeterStart(40, 50*time.Millisecond)
	InvalidSample(-1)
	MeterStop(12)
	Close()

	out := readFile(t, filepath.Join(tmp, diagFileName))
	for _, want := range []string{"meter_start", "bars=40", "invalid_sample", "meter_stop", "ticks=12"} {
		if !strings.Contains(out, want) {
			t.Errorf("diagnostics missing %q, got:\n%s", want, out)
		}
	}
}

func TestTranscriptDrop(t *testing.T) {
	tmp := setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}

	TranscriptDrop(3, errors.New("unknown sender"))
	Close()

	out := readFile(t, filepath.Join(tmp, diagFileName))
	if !strings.Contains(out, "transcript_drop") || !strings.Contains(out, "unknown sender") {
		t.Errorf("expected drop entry, got:\n%s", out)
	}
}

func TestTranscriptMessage(t *testing.T) {
	tmp := setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}

	TranscriptMessage("assistant", "hello world")

	line := readFile(t, filepath.Join(tmp, transcriptFileName))
	if !strings.Contains(line, "assistant\thello world") {
		t.Errorf("transcript_log.txt missing message, got: %q", line)
	}
	// format: "2006-01-02 15:04:05\t[pid]\tsender\ttext\n"
	if got := strings.Count(line, "\t"); got != 3 {
		t.Errorf("expected 3 tabs, got %d in %q", got, line)
	}
}

func TestCloseIdempotent(t *testing.T) {
	setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}
	Close()
	Close() // should not panic
}
