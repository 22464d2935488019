//go:build !linux

package cue

import (
	"bytes"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"murmur/log"
)

// otoPlayer shares one oto context; oto allows only one per process.
type otoPlayer struct {
	ctx         *oto.Context
	start, stop []byte

	mu     sync.Mutex
	active *oto.Player
}

func newPlayer() (Player, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   50 * time.Millisecond,
	})
	if err != nil {
		log.Warnf("cue init: %v", err)
		return nil, err
	}
	<-ready
	return &otoPlayer{ctx: ctx, start: startTone.bytes(), stop: stopTone.bytes()}, nil
}

func (p *otoPlayer) Start() { p.play(p.start) }
func (p *otoPlayer) Stop()  { p.play(p.stop) }

func (p *otoPlayer) play(pcm []byte) {
	player := p.ctx.NewPlayer(bytes.NewReader(pcm))

	p.mu.Lock()
	if p.active != nil {
		// a new cue cuts off the previous one
		p.active.Pause()
	}
	p.active = player
	p.mu.Unlock()

	player.Play()
	go func() {
		for player.IsPlaying() {
			time.Sleep(10 * time.Millisecond)
		}
		p.mu.Lock()
		if p.active == player {
			p.active = nil
		}
		p.mu.Unlock()
		player.Close()
	}()
}

func (p *otoPlayer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active != nil {
		p.active.Pause()
	}
}
