package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"murmur/log"
	"murmur/transcript"
)

const transcriptPoll = time.Second

// transcriptWatcher re-reads a record file handed over by the assistant
// whenever it changes and pushes the conversation to the view.
type transcriptWatcher struct {
	path string
	sink EventSink

	modTime time.Time
	size    int64
	failed  bool
	seen    map[seenKey]bool
}

type seenKey struct {
	sender transcript.Sender
	at     time.Time
	text   string
}

func newTranscriptWatcher(path string, sink EventSink) *transcriptWatcher {
	return &transcriptWatcher{path: path, sink: sink, size: -1, seen: map[seenKey]bool{}}
}

// poll reloads the file if its size or mtime moved. It reports whether
// the view was updated.
func (w *transcriptWatcher) poll() bool {
	fi, err := os.Stat(w.path)
	if err != nil {
		if !w.failed {
			log.Warnf("transcript unavailable: %v", err)
			w.failed = true
		}
		return false
	}
	if fi.ModTime().Equal(w.modTime) && fi.Size() == w.size {
		return false
	}
	w.modTime, w.size = fi.ModTime(), fi.Size()

	rec, err := transcript.Load(w.path)
	if err != nil {
		// fail open: an unreadable record shows as an empty conversation
		log.Errorf("transcript load: %v", err)
		w.failed = true
		w.sink.Transcript(nil)
		return true
	}
	w.failed = false

	msgs, dropped := rec.Decode()
	log.TranscriptLoaded(rec.ID.String(), w.path, len(msgs), dropped)

	for _, m := range msgs {
		k := seenKey{m.Sender, m.Timestamp, m.Text}
		if w.seen[k] {
			continue
		}
		w.seen[k] = true
		log.TranscriptMessage(m.Sender.String(), m.Text)
	}
	w.sink.Transcript(msgs)
	return true
}

// run reloads on filesystem events until ctx is done. The ticker is a
// fallback for filesystems where fsnotify misses writes.
func (w *transcriptWatcher) run(ctx context.Context, interval time.Duration) {
	w.poll()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var events <-chan fsnotify.Event
	var errs <-chan error
	// watch the directory so editors that replace the file by rename are seen
	if fw, err := fsnotify.NewWatcher(); err != nil {
		log.Warnf("transcript watch unavailable, polling: %v", err)
	} else if err := fw.Add(filepath.Dir(w.path)); err != nil {
		log.Warnf("transcript watch unavailable, polling: %v", err)
		fw.Close()
	} else {
		defer fw.Close()
		events, errs = fw.Events, fw.Errors
	}

	name := filepath.Clean(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(ev.Name) == name && ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.poll()
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			log.Warnf("transcript watch: %v", err)
		case <-ticker.C:
			w.poll()
		}
	}
}
