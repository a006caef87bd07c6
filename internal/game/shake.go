package game

import (
	"math"
	"math/rand/v2"
	"time"
)

// Shake is a decaying camera jitter started by a hit.
type Shake struct {
	start     time.Time
	duration  time.Duration
	intensity float64
	active    bool
}

// Start begins a shake at now. A non-positive duration stops any shake.
func (s *Shake) Start(now time.Time, duration time.Duration, intensity float64) {
	s.start = now
	s.duration = duration
	s.intensity = intensity
	s.active = duration > 0
}

// Active reports whether the shake was still running at the last Offset.
func (s *Shake) Active() bool { return s.active }

// Offset returns the camera X and Y displacement at now:
// (rand-0.5) * sin(progress*50) * intensity * (1-progress) per axis. Once
// the duration has elapsed the shake deactivates and the offset is zero.
func (s *Shake) Offset(now time.Time, rng *rand.Rand) (x, y float64) {
	if !s.active {
		return 0, 0
	}
	elapsed := max(now.Sub(s.start), 0)
	if elapsed >= s.duration {
		s.active = false
		return 0, 0
	}
	progress := float64(elapsed) / float64(s.duration)
	amp := math.Sin(progress*50) * s.intensity * (1 - progress)
	return (rng.Float64() - 0.5) * amp, (rng.Float64() - 0.5) * amp
}
