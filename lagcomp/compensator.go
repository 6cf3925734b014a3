package lagcomp

import "log"

// MaxEntities is the number of entity slots a compensator tracks. Histories
// are allocated once for every possible slot at world start.
const MaxEntities = 1024

// DefaultMaxCompensationMS is the default ceiling on how far back state may
// be rewound.
const DefaultMaxCompensationMS = 200

// The compensation ceiling is clamped into this range.
const maxCompensationCeiling = 500

// EntityState is one entity's spatial state as handed over by the simulation
// each tick.
type EntityState struct {
	Num    int
	Origin Vec3
	Mins   Vec3
	Maxs   Vec3
	Solid  bool
}

// Compensator owns one EntityHistory per entity slot and answers rewound hit
// queries against them. A disabled compensator is a pure bypass: every query
// reports no data and the caller falls back to live-state testing.
type Compensator struct {
	entities []EntityHistory

	enabled           bool
	maxCompensationMS int64
	debug             bool
	logger            *log.Logger
}

// NewCompensator allocates histories for every entity slot. Passing a nil
// logger selects the default one.
func NewCompensator(logger *log.Logger) *Compensator {
	if logger == nil {
		logger = log.Default()
	}

	return &Compensator{
		entities:          make([]EntityHistory, MaxEntities),
		enabled:           true,
		maxCompensationMS: DefaultMaxCompensationMS,
		logger:            logger,
	}
}

// SetEnabled turns compensation on or off.
func (c *Compensator) SetEnabled(enabled bool) {
	c.enabled = enabled
}

func (c *Compensator) Enabled() bool {
	return c.enabled
}

// SetMaxCompensation bounds the rewind window, clamped to [0, 500] ms.
func (c *Compensator) SetMaxCompensation(ms int64) {
	if ms < 0 {
		ms = 0
	}
	if ms > maxCompensationCeiling {
		ms = maxCompensationCeiling
	}
	c.maxCompensationMS = ms
}

func (c *Compensator) MaxCompensation() int64 {
	return c.maxCompensationMS
}

// SetDebug toggles per-query diagnostics.
func (c *Compensator) SetDebug(debug bool) {
	c.debug = debug
}

// RecordFrame pushes a snapshot for every live entity at the given server
// time. Called once per simulation tick.
func (c *Compensator) RecordFrame(now int64, states []EntityState) {
	if !c.enabled {
		return
	}

	for _, s := range states {
		if s.Num < 0 || s.Num >= len(c.entities) {
			continue
		}
		c.entities[s.Num].Record(now, s.Origin, s.Mins, s.Maxs, s.Solid)
	}
}

// RewindTime returns the historical timestamp hit detection should use for a
// client with the given ping: now minus the ping, capped by the compensation
// ceiling.
func (c *Compensator) RewindTime(now, ping int64) int64 {
	if ping > c.maxCompensationMS {
		ping = c.maxCompensationMS
	}
	return now - ping
}

// EntityAt returns the entity's state at target time. With interpolate set,
// the state is linearly blended between the two recorded snapshots bracketing
// the target; otherwise the single closest valid snapshot within tolerance is
// returned. ok=false means no usable history, which is expected steady state
// for freshly spawned entities.
func (c *Compensator) EntityAt(num int, target int64, interpolate bool) (EntitySnapshot, bool) {
	if !c.enabled {
		return EntitySnapshot{}, false
	}

	if num < 0 || num >= len(c.entities) {
		return EntitySnapshot{}, false
	}

	if interpolate {
		return c.entities[num].InterpolateAt(target, c.maxCompensationMS)
	}
	return c.entities[num].SnapshotAt(target, c.maxCompensationMS)
}

// TestHit answers whether the segment from start to end hits the entity where
// the shooting client saw it: entity state is rewound by the client's ping
// and interpolated before the segment test. A non-solid snapshot never
// reports a hit.
func (c *Compensator) TestHit(num int, now, ping int64, start, end Vec3) (Vec3, bool) {
	if !c.enabled {
		return Vec3{}, false
	}

	rewind := c.RewindTime(now, ping)

	snap, ok := c.EntityAt(num, rewind, true)
	if !ok || !snap.Solid {
		return Vec3{}, false
	}

	point, hit := SegmentIntersectsBox(start, end, snap.Origin, snap.Mins, snap.Maxs)
	if !hit {
		return Vec3{}, false
	}

	if c.debug {
		c.logger.Printf("lagcomp: hit entity %d rewound %dms (ping %d)", num, now-rewind, ping)
	}

	return point, true
}

// Clear wipes every entity's history. Called on map change.
func (c *Compensator) Clear() {
	for i := range c.entities {
		c.entities[i].Clear()
	}
}
