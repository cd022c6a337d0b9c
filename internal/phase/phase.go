// Package phase drives the top-level game phase and the presentation
// surface mounted for it.
package phase

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/abhisek/coderush/internal/events"
)

// Phase is one of the five top-level game phases.
type Phase int

const (
	Title Phase = iota
	Lobby
	Loading
	InGame
	Result
)

var names = [...]string{"Title", "Lobby", "Loading", "InGame", "Result"}

func (p Phase) String() string {
	if p.Valid() {
		return names[p]
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	return p >= Title && p <= Result
}

// Surface is what a phase shows while it is current.
type Surface interface {
	// Mount is called when the surface becomes the live one.
	Mount()

	// Unmount is called before the next surface is mounted.
	Unmount()
}

// Factory builds the surface for a phase. A phase without a factory shows
// nothing, which is how headless sessions run.
type Factory func() Surface

// Transition describes one phase change.
type Transition struct {
	From Phase
	To   Phase
}

// Controller holds the current phase and its mounted surface. At most one
// surface is live at a time.
type Controller struct {
	factories map[Phase]Factory
	current   Phase
	active    Surface
	started   bool
	changes   events.Topic[Transition]
	logger    zerolog.Logger
}

// NewController creates a Controller in the Title phase. No surface is
// mounted until Start.
func NewController(factories map[Phase]Factory, logger zerolog.Logger) *Controller {
	if factories == nil {
		factories = map[Phase]Factory{}
	}
	return &Controller{
		factories: factories,
		current:   Title,
		logger:    logger,
	}
}

// Start mounts the surface of the current phase. Calling it again is a
// no-op.
func (c *Controller) Start() {
	if c.started {
		return
	}
	c.started = true
	c.active = c.build(c.current)
	if c.active != nil {
		c.active.Mount()
	}
}

// Set transitions to p. It returns false when p is unknown or already
// current; nothing changes in that case.
func (c *Controller) Set(p Phase) bool {
	if !p.Valid() {
		c.logger.Warn().Int("phase", int(p)).Msg("ignoring unknown phase")
		return false
	}
	if p == c.current {
		return false
	}

	from := c.current
	if c.active != nil {
		c.active.Unmount()
		c.active = nil
	}
	c.current = p
	c.started = true
	c.active = c.build(p)
	if c.active != nil {
		c.active.Mount()
	}

	c.logger.Info().Str("from", from.String()).Str("to", p.String()).Msg("phase changed")
	c.changes.Publish(Transition{From: from, To: p})
	return true
}

// Current returns the current phase.
func (c *Controller) Current() Phase {
	return c.current
}

// Active returns the mounted surface, or nil.
func (c *Controller) Active() Surface {
	return c.active
}

// OnChange registers fn to run after every transition and returns a
// function that removes it.
func (c *Controller) OnChange(fn func(Transition)) func() {
	return c.changes.Subscribe(fn)
}

func (c *Controller) build(p Phase) Surface {
	f, ok := c.factories[p]
	if !ok || f == nil {
		return nil
	}
	return f()
}
