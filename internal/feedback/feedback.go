// Package feedback plays the cue for a successful hit.
package feedback

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// Sink receives game events that deserve a sensory cue.
type Sink interface {
	Hit()
}

// Nop ignores every event.
type Nop struct{}

// Hit does nothing.
func (Nop) Hit() {}

// Bell rings the terminal bell on every hit.
type Bell struct {
	W io.Writer
}

// Hit writes BEL.
func (b Bell) Hit() {
	if b.W != nil {
		fmt.Fprint(b.W, "\a")
	}
}

const (
	sampleRate = beep.SampleRate(44100)

	chirpDuration = 120 * time.Millisecond
	chirpFrom     = 520.0 // Hz
	chirpTo       = 1560.0
	chirpGain     = 0.25
)

// Audio plays a short rising chirp through the speaker.
type Audio struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool

	// shutdown releases the speaker; speaker.Clear then speaker.Close
	// outside tests.
	shutdown func()
}

func closeSpeaker() {
	speaker.Clear()
	speaker.Close()
}

// NewAudio initializes the speaker and starts an always-on mixer that hit
// cues are added to.
func NewAudio() (*Audio, error) {
	a := &Audio{mixer: &beep.Mixer{}, shutdown: closeSpeaker}
	if err := speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(a.mixer)
	a.initialized = true
	return a, nil
}

// Hit queues one chirp. Safe after Close.
func (a *Audio) Hit() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.initialized {
		return
	}
	speaker.Lock()
	a.mixer.Add(beep.Take(sampleRate.N(chirpDuration), newChirp(sampleRate)))
	speaker.Unlock()
}

// Close silences pending cues and shuts the speaker down. Calling it again
// is a no-op.
func (a *Audio) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.initialized {
		return
	}
	a.shutdown()
	a.initialized = false
}

// New returns an Audio sink when enabled and the speaker comes up,
// otherwise a Bell writing to w. Closing is left to the caller through the
// returned func.
func New(enabled bool, w io.Writer, logger *slog.Logger) (Sink, func()) {
	if !enabled {
		return Bell{W: w}, func() {}
	}
	a, err := NewAudio()
	if err != nil {
		logger.Warn("audio unavailable, falling back to terminal bell", "err", err)
		return Bell{W: w}, func() {}
	}
	return a, a.Close
}

// chirp is a sine sweep from chirpFrom to chirpTo with a linear decay
// envelope over chirpDuration.
type chirp struct {
	sr    beep.SampleRate
	pos   int
	total int
	phase float64
}

func newChirp(sr beep.SampleRate) *chirp {
	return &chirp{sr: sr, total: sr.N(chirpDuration)}
}

func (c *chirp) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if c.pos >= c.total {
			return i, i > 0
		}
		progress := float64(c.pos) / float64(c.total)
		freq := chirpFrom + (chirpTo-chirpFrom)*progress
		c.phase += 2 * math.Pi * freq / float64(c.sr)

		v := math.Sin(c.phase) * chirpGain * (1 - progress)
		samples[i][0] = v
		samples[i][1] = v
		c.pos++
	}
	return len(samples), true
}

func (c *chirp) Err() error { return nil }
