package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"murmur/audio"
	"murmur/chrome"
	"murmur/clipboard"
	"murmur/cue"
	"murmur/doctor"
	"murmur/hotkey"
	"murmur/log"
	"murmur/shutdown"
	"murmur/waveform"
)

var version = "dev"

// viewFactory builds the display for one session. The terminal UI and
// the fyne window both satisfy view.
type viewFactory func(cfg waveform.Config, w chrome.WindowChrome, ctl controls) view

func newTUI(cfg waveform.Config, w chrome.WindowChrome, ctl controls) view {
	return newTUIView(cfg, w, ctl)
}

// initCrashLog points runtime crash output at the default log directory
// before any CGO code runs. run() re-points it once -logpath is known.
func initCrashLog() {
	dir, err := log.ResolveDir("")
	if err != nil {
		return
	}
	openCrashLog(dir)
}

func openCrashLog(dir string) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return
	}
	crashFile, err := os.OpenFile(filepath.Join(dir, "crash_log.txt"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
	debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	crashFile.Close()
}

func deviceLineText(name string) string {
	suffix := ""
	if audio.IsBluetooth(name) {
		suffix = " (BT!)"
	}
	return "mic: " + name + suffix
}

// session owns the capture device and implements controls for the view.
type session struct {
	mu        sync.Mutex
	capture   audio.CaptureDevice
	meter     *waveform.Meter
	cue       cue.Player
	listening bool

	// used only from the meter goroutine
	sink         EventSink
	silence      *silenceMonitor
	epsilon      float64
	wasListening bool
}

func newSession(capture audio.CaptureDevice, cfg waveform.Config) *session {
	return &session{
		capture: capture,
		cue:     cue.Nop{},
		silence: newSilenceMonitor(cfg.Interval),
		epsilon: cfg.Epsilon,
	}
}

func (s *session) SetListening(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on == s.listening {
		return nil
	}
	if on {
		if err := s.capture.Start(); err != nil {
			log.Errorf("capture start error: %v", err)
			return fmt.Errorf("start capture: %w", err)
		}
		s.cue.Start()
		log.Info("listen_start: " + s.capture.DeviceName())
	} else {
		s.capture.Stop()
		// bars fall back to the baseline while the meter keeps ticking
		s.meter.Sample(0)
		s.cue.Stop()
		log.Info("listen_stop")
	}
	s.listening = on
	return nil
}

func (s *session) Listening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listening
}

// frame forwards one meter frame to the view and watches for a
// microphone that stays silent while listening.
func (s *session) frame(heights []float64) {
	level := s.meter.Level()
	s.sink.Waveform(heights)
	s.sink.AudioLevel(level)

	on := s.Listening()
	if on && !s.wasListening {
		s.silence.Reset()
	}
	s.wasListening = on
	if !on {
		return
	}
	switch s.silence.Tick(level > s.epsilon) {
	case SilenceWarn, SilenceRepeat:
		log.Warn("no_voice_detected")
		s.sink.Status("no voice detected, check the microphone")
	case SilenceWarnClear:
		log.Info("voice_detected")
		s.sink.Status("voice detected")
	}
}

func (s *session) Copy(text string) error {
	if err := clipboard.Copy(text); err != nil {
		log.Warnf("clipboard write failed: %v", err)
		return err
	}
	return nil
}

func newAudioContext(fake string) (audio.Context, error) {
	switch fake {
	case "":
		return audio.NewContext()
	case "tone":
		return audio.NewToneContext(), nil
	}
	return audio.NewFakeContext(fake, true)
}

func findDevice(actx audio.Context, name string) *audio.DeviceInfo {
	devices, err := actx.Devices()
	if err != nil {
		log.Warnf("device enumeration failed: %v", err)
		return nil
	}
	for i := range devices {
		if devices[i].Name == name {
			return &devices[i]
		}
	}
	log.Warnf("device not found: %s", name)
	return nil
}

// openCapture opens and probes the capture device. When the microphone
// is refused it shows the platform guidance and offers to try again.
func openCapture(actx audio.Context, dev *audio.DeviceInfo, perm chrome.PermissionPrompt) (audio.CaptureDevice, error) {
	for {
		c, err := actx.NewCapture(dev, audio.DefaultCaptureConfig())
		if err == nil {
			if err = c.Start(); err == nil {
				c.Stop()
				return c, nil
			}
			c.Close()
		}
		log.Errorf("capture device init error: %v", err)
		fmt.Fprintf(os.Stderr, "Error opening microphone: %v\n\n%s\n", err, perm.Explain(chrome.PermissionMicrophone))
		retry, cerr := perm.Confirm(chrome.PermissionMicrophone)
		if cerr != nil || !retry {
			return nil, err
		}
	}
}

func run(newView viewFactory) {
	def := waveform.DefaultConfig()

	transcriptFlag := flag.String("transcript", "", "Conversation record to display; re-read whenever it changes")
	deviceFlag := flag.String("device", "", "Use named microphone device")
	setupFlag := flag.Bool("setup", false, "Select microphone device (otherwise uses system default)")
	fakeFlag := flag.String("fake", "", "Replay a WAV file instead of the microphone, or \"tone\" for a synthetic signal")
	listenFlag := flag.Bool("listen", true, "Start listening immediately")
	barsFlag := flag.Int("bars", def.Bars, "Number of waveform bars")
	intervalFlag := flag.Duration("interval", def.Interval, "Waveform update interval")
	gainFlag := flag.Float64("gain", def.Gain, "Amplitude to bar height scale")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	flag.Bool("gui", false, "Open a desktop window instead of the terminal UI (build with -tags gui)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	profileFlag := flag.String("profile", "", "Enable pprof profiling server (e.g., :6060 or localhost:6060)")
	testFlag := flag.Bool("test", false, "Test mode (headless, stdin-driven)")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	hotkeyFlag := flag.Bool("hotkey", true, "Toggle listening with Ctrl+Shift+Space from any window (hold to talk)")
	cueFlag := flag.Bool("cue", true, "Play a short tick when listening starts or stops")
	longPressFlag := flag.Duration("longpress", hotkey.DefaultLongPress, "Long-press threshold for hold-to-talk vs tap (e.g., 350ms)")
	flag.Parse()

	if *testFlag {
		newView = newHeadless
	}

	if *versionFlag {
		fmt.Printf("murmur %s\n", version)
		os.Exit(0)
	}

	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if *logPathFlag != "" {
		openCrashLog(logPath)
	}
	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()

	if *doctorFlag {
		actx, err := newAudioContext(*fakeFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing audio: %v\n", err)
			os.Exit(1)
		}
		ctx, stop := shutdown.Context(context.Background())
		code := doctor.Run(ctx, os.Stdout, doctor.Default(logPath, actx))
		stop()
		actx.Close()
		log.Close()
		os.Exit(code)
	}

	cfg := def
	cfg.Bars = *barsFlag
	cfg.Interval = *intervalFlag
	cfg.Gain = *gainFlag
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if *profileFlag != "" {
		go func() {
			fmt.Fprintf(os.Stderr, "pprof server listening on http://%s/debug/pprof/\n", *profileFlag)
			if err := http.ListenAndServe(*profileFlag, nil); err != nil {
				fmt.Fprintf(os.Stderr, "pprof server error: %v\n", err)
			}
		}()
	}

	actx, err := newAudioContext(*fakeFlag)
	if err != nil {
		log.Errorf("audio context init error: %v", err)
		fmt.Fprintf(os.Stderr, "Error initializing audio: %v\n", err)
		os.Exit(1)
	}
	defer actx.Close()

	var dev *audio.DeviceInfo
	switch {
	case *fakeFlag != "":
	case *deviceFlag != "":
		dev = findDevice(actx, *deviceFlag)
	case *setupFlag:
		dev, err = audio.SelectDevice(actx)
		if errors.Is(err, audio.ErrSelectionAborted) {
			os.Exit(0)
		}
		if err != nil {
			log.Warnf("device selection failed: %v", err)
			fmt.Printf("Warning: device selection failed: %v\n", err)
			fmt.Println("Falling back to default device")
		}
	}

	plat := chrome.Current()
	capture, err := openCapture(actx, dev, plat.Permission)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing capture device: %v\n", err)
		os.Exit(1)
	}
	defer capture.Close()

	sess := newSession(capture, cfg)
	sess.cue = cue.New(*cueFlag && !*testFlag)
	defer sess.cue.Close()
	meter, err := waveform.NewMeter(cfg, waveform.WithOnFrame(sess.frame))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	sess.meter = meter
	capture.SetCallback(func(data []byte, _ uint32) {
		meter.Sample(audio.RMS(data))
	})
	defer capture.ClearCallback()

	v := newView(cfg, plat.Window, sess)
	sess.sink = v

	ctx, stop := shutdown.Context(context.Background())
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		v.Quit()
	}()

	if *hotkeyFlag && !*testFlag {
		hk := hotkey.New()
		if err := hk.Register(); err != nil {
			log.Warnf("global hotkey unavailable: %v", err)
		} else {
			defer hk.Unregister()
			go hotkey.Watch(ctx, hk, *longPressFlag, sess.Listening, func(on bool) {
				if err := sess.SetListening(on); err != nil {
					v.Status("mic: " + err.Error())
					return
				}
				v.Listening(on)
			})
		}
	}

	log.SessionStart(capture.DeviceName(), cfg.Bars, cfg.Interval)

	err = meter.Run(ctx, func(ctx context.Context) error {
		go func() {
			v.DeviceLine(deviceLineText(capture.DeviceName()))
			if *listenFlag {
				if err := sess.SetListening(true); err != nil {
					v.Status("mic: " + err.Error())
					return
				}
				v.Listening(true)
			}
		}()
		if *transcriptFlag != "" {
			go newTranscriptWatcher(*transcriptFlag, v).run(ctx, transcriptPoll)
		}
		return v.Run()
	})
	sess.SetListening(false)
	log.SessionEnd(meter.Ticks())
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Errorf("view error: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}
