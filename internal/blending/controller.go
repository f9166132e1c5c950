// Package blending implements the slider-driven blending interaction: slow
// drags play a word phoneme by phoneme with a position-dependent gap, fast
// swipes play the whole blended word.
package blending

import (
	"context"
	"log"
	"sync"
	"time"
)

// State of the controller
type State int

const (
	StateIdle State = iota
	StatePlayingSegments
	StatePlayingFull
)

func (s State) String() string {
	switch s {
	case StatePlayingSegments:
		return "playing_segments"
	case StatePlayingFull:
		return "playing_full"
	default:
		return "idle"
	}
}

const (
	// VelocityThreshold in slider units per millisecond; a faster drag
	// plays the blended word instead of segments
	VelocityThreshold = 0.3

	// SlowGap and FastGap bound the inter-segment gap; the gap is a linear
	// interpolation between them over the slider position
	SlowGap = 700 * time.Millisecond
	FastGap = 120 * time.Millisecond

	// FullPlayMidpoint is the slider position above which the manual play
	// button plays the full word
	FullPlayMidpoint = 60
)

// GapForPosition returns the inter-segment gap for a slider position (0-100)
func GapForPosition(position float64) time.Duration {
	if position < 0 {
		position = 0
	}
	if position > 100 {
		position = 100
	}
	return SlowGap - time.Duration(position/100*float64(SlowGap-FastGap))
}

// Controller sequences phoneme and word playback for one slider. Each
// playback request carries its own cancellation context, so cancelling a
// stale request can never interrupt a newer one. At most one clip is active
// at a time: starting any playback first stops and releases the previous.
type Controller struct {
	player Player

	mu      sync.Mutex
	state   State
	word    Word
	cancel  context.CancelFunc
	current Playback

	lastValue float64
	lastAt    time.Time
	hasLast   bool
}

// NewController creates a controller for the given word
func NewController(player Player, word Word) *Controller {
	return &Controller{player: player, word: word}
}

// State returns the current playback state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetWord switches the active word, stopping any playback in flight
func (c *Controller) SetWord(word Word) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.word = word
}

// HandleInput processes one slider event. Velocity is |Δvalue|/Δtime since
// the previous event; above the threshold the whole word plays, otherwise
// segments play with a gap derived from the absolute position.
func (c *Controller) HandleInput(position float64, at time.Time) {
	c.mu.Lock()

	velocity := 0.0
	if c.hasLast {
		deltaMs := float64(at.Sub(c.lastAt)) / float64(time.Millisecond)
		if deltaMs < 1 {
			deltaMs = 1
		}
		delta := position - c.lastValue
		if delta < 0 {
			delta = -delta
		}
		velocity = delta / deltaMs
	}
	c.lastValue = position
	c.lastAt = at
	c.hasLast = true

	if velocity > VelocityThreshold {
		c.startFullLocked()
		c.mu.Unlock()
		return
	}

	c.startSegmentsLocked(GapForPosition(position))
	c.mu.Unlock()
}

// TogglePlay starts playback if idle (full word above the midpoint, segments
// below) and stops it otherwise
func (c *Controller) TogglePlay() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle {
		c.stopLocked()
		return
	}

	if c.lastValue > FullPlayMidpoint {
		c.startFullLocked()
		return
	}
	c.startSegmentsLocked(GapForPosition(c.lastValue))
}

// Stop cancels any in-flight playback and returns to Idle
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// stopLocked cancels the active request and releases the audio resource.
// Caller must hold c.mu.
func (c *Controller) stopLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.current != nil {
		c.current.Stop()
		c.current = nil
	}
	c.state = StateIdle
}

// startFullLocked begins whole-word playback. Caller must hold c.mu.
func (c *Controller) startFullLocked() {
	c.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.state = StatePlayingFull
	word := c.word.Word

	go c.runFull(ctx, word)
}

// startSegmentsLocked begins segment-by-segment playback. Caller must hold c.mu.
func (c *Controller) startSegmentsLocked(gap time.Duration) {
	c.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.state = StatePlayingSegments
	phonemes := make([]string, len(c.word.Phonemes))
	copy(phonemes, c.word.Phonemes)

	go c.runSegments(ctx, phonemes, gap)
}

func (c *Controller) runFull(ctx context.Context, word string) {
	defer c.finish(ctx)

	pb, err := c.player.PlayWord(word)
	if err != nil {
		log.Printf("Word playback failed for %q: %v", word, err)
		return
	}
	if !c.register(ctx, pb) {
		return
	}

	select {
	case <-pb.Done():
	case <-ctx.Done():
		pb.Stop()
	}
}

func (c *Controller) runSegments(ctx context.Context, phonemes []string, gap time.Duration) {
	defer c.finish(ctx)

	for _, p := range phonemes {
		if ctx.Err() != nil {
			return
		}

		pb, err := c.player.PlayPhoneme(p)
		if err != nil {
			// A failed segment is skipped, not fatal to the sequence
			log.Printf("Segment playback failed for %q: %v", p, err)
			continue
		}
		if !c.register(ctx, pb) {
			return
		}

		// Advance when the clip ends or the gap elapses, whichever first
		timer := time.NewTimer(gap)
		select {
		case <-pb.Done():
			timer.Stop()
		case <-timer.C:
			pb.Stop()
		case <-ctx.Done():
			timer.Stop()
			pb.Stop()
			return
		}
	}
}

// register records the active playback for this request. A request that has
// already been cancelled stops the clip immediately and must not overwrite
// the newer request's playback.
func (c *Controller) register(ctx context.Context, pb Playback) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ctx.Err() != nil {
		pb.Stop()
		return false
	}
	c.current = pb
	return true
}

// finish returns to Idle, unless this request was already superseded
func (c *Controller) finish(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.current = nil
	c.state = StateIdle
}
