//go:build linux

package cue

import (
	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"

	"murmur/log"
)

// pulsePlayer opens a short-lived playback stream per cue.
type pulsePlayer struct {
	start, stop []int16
}

func newPlayer() (Player, error) {
	// 200ms tail so PulseAudio fills its buffer before draining
	start, stop := startTone, stopTone
	start.secs, stop.secs = 0.2, 0.2
	return &pulsePlayer{start: start.samples(2), stop: stop.samples(2)}, nil
}

func (p *pulsePlayer) Start() { go play(p.start) }
func (p *pulsePlayer) Stop()  { go play(p.stop) }
func (p *pulsePlayer) Close() {}

func play(samples []int16) {
	c, err := pulse.NewClient()
	if err != nil {
		log.Warnf("cue playback: %v", err)
		return
	}
	defer c.Close()

	pos := 0
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		if pos >= len(samples) {
			return 0, pulse.EndOfData
		}
		n := copy(buf, samples[pos:])
		pos += n
		return n, nil
	})
	stream, err := c.NewPlayback(reader,
		pulse.PlaybackStereo,
		pulse.PlaybackSampleRate(sampleRate),
		pulse.PlaybackLatency(0.1),
		pulse.PlaybackRawOption(func(p *proto.CreatePlaybackStream) {
			p.ChannelVolumes = proto.ChannelVolumes{uint32(proto.VolumeNorm), uint32(proto.VolumeNorm)}
		}),
	)
	if err != nil {
		log.Warnf("cue playback: %v", err)
		return
	}
	stream.Start()
	stream.Drain()
	stream.Stop()
	stream.Close()
}
