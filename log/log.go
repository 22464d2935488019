package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog        zerolog.Logger
	diagFile       *os.File
	transcriptFile *os.File
	logMu          sync.Mutex
	logReady       bool
	pid            int
	dir            string
)

const (
	diagFileName       = "diagnostics_log.txt"
	transcriptFileName = "transcript_log.txt"
)

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		return absPath(flagPath)
	}

	// Priority 2: MURMUR_LOG_PATH environment variable
	if envPath := os.Getenv("MURMUR_LOG_PATH"); envPath != "" {
		return absPath(envPath)
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func absPath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, p), nil
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagFile, err = os.OpenFile(filepath.Join(dir, diagFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	transcriptFile, err = os.OpenFile(filepath.Join(dir, transcriptFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		diagFile = nil
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if transcriptFile != nil {
		transcriptFile.Close()
		transcriptFile = nil
	}
	logReady = false
}

func ready() bool {
	logMu.Lock()
	defer logMu.Unlock()
	return logReady
}

func Info(msg string) {
	if ready() {
		diagLog.Info().Msg(msg)
	}
}

func Warn(msg string) {
	if ready() {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if ready() {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

func Error(msg string) {
	if ready() {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if ready() {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func SessionStart(device string, bars int, interval time.Duration) {
	if !ready() {
		return
	}
	diagLog.Info().
		Str("device", device).
		Int("bars", bars).
		Dur("interval", interval).
		Msg("session_start")
}

func SessionEnd(frames uint64) {
	if !ready() {
		return
	}
	diagLog.Info().
		Uint64("frames", frames).
		Msg("session_end")
}

func MeterStart(bars int, interval time.Duration) {
	if !ready() {
		return
	}
	diagLog.Info().
		Int("bars", bars).
		Dur("interval", interval).
		Msg("meter_start")
}

func MeterStop(ticks uint64) {
	if !ready() {
		return
	}
	diagLog.Info().
		Uint64("ticks", ticks).
		Msg("meter_stop")
}

// InvalidSample records an amplitude that was replaced with silence.
func InvalidSample(v float64) {
	if !ready() {
		return
	}
	diagLog.Warn().
		Float64("value", v).
		Msg("invalid_sample")
}

func TranscriptLoaded(id, path string, kept, dropped int) {
	if !ready() {
		return
	}
	diagLog.Info().
		Str("id", id).
		Str("path", path).
		Int("kept", kept).
		Int("dropped", dropped).
		Msg("transcript_loaded")
}

func TranscriptDrop(index int, err error) {
	if !ready() {
		return
	}
	diagLog.Warn().
		Int("index", index).
		Err(err).
		Msg("transcript_drop")
}

// TranscriptMessage appends one displayed message to transcript_log.txt.
func TranscriptMessage(sender, text string) {
	logMu.Lock()
	defer logMu.Unlock()
	if !logReady || transcriptFile == nil {
		return
	}
	line := fmt.Sprintf("%s\t[%d]\t%s\t%s\n", time.Now().Format("2006-01-02 15:04:05"), pid, sender, text)
	transcriptFile.WriteString(line)
}
