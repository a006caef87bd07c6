package game

import "github.com/charmbracelet/harmonica"

// Mole body colours, picked at random on every spawn.
var moleColors = [][3]float64{
	{0.8, 0.4, 0.4},
	{0.4, 0.6, 0.8},
	{0.4, 0.8, 0.4},
	{0.8, 0.6, 0.2},
	{0.6, 0.4, 0.8},
}

// hitColor is the gold the mole flashes towards when hit.
var hitColor = [3]float64{1.0, 1.0, 0.2}

// ColorTransition eases an RGB colour towards a target with one critically
// damped spring per channel.
type ColorTransition struct {
	spring  harmonica.Spring
	current [3]float64
	vel     [3]float64
	target  [3]float64
}

// NewColorTransition creates a transition stepped once per frame at fps.
func NewColorTransition(fps int) *ColorTransition {
	return &ColorTransition{
		// Frequency 6.0 settles in about half a second, damping 1.0 never
		// overshoots.
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
	}
}

// Set jumps to c with no transition.
func (t *ColorTransition) Set(c [3]float64) {
	t.current = c
	t.target = c
	t.vel = [3]float64{}
}

// SetTarget starts easing towards c from the current colour.
func (t *ColorTransition) SetTarget(c [3]float64) {
	t.target = c
}

// Update advances one frame.
func (t *ColorTransition) Update() {
	for i := range t.current {
		t.current[i], t.vel[i] = t.spring.Update(t.current[i], t.vel[i], t.target[i])
	}
}

// Current returns the displayed colour.
func (t *ColorTransition) Current() [3]float64 { return t.current }

// Target returns the colour being eased towards.
func (t *ColorTransition) Target() [3]float64 { return t.target }
