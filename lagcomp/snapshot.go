package lagcomp

// HistoryFrames is the depth of each entity's snapshot ring. At a 10Hz server
// frame rate 16 frames cover 1.6 seconds of history, comfortably more than
// the maximum compensation window.
const HistoryFrames = 16

// EntitySnapshot is one recorded spatial state of an entity. Snapshots are
// owned by the ring buffer: they are overwritten in ring order and never
// individually freed.
type EntitySnapshot struct {
	// Server time the snapshot was taken, in milliseconds.
	Time int64

	Origin Vec3
	Mins   Vec3
	Maxs   Vec3

	Valid bool
	Solid bool
}

// EntityHistory is a fixed-capacity ring of snapshots for a single entity.
// It is written once per simulation tick and read by hit queries within the
// same tick, so it needs no synchronization.
type EntityHistory struct {
	snapshots  [HistoryFrames]EntitySnapshot
	writeIndex int
}

// Record pushes a snapshot at the write cursor, silently overwriting the
// oldest entry.
func (h *EntityHistory) Record(time int64, origin, mins, maxs Vec3, solid bool) {
	snap := &h.snapshots[h.writeIndex]
	snap.Time = time
	snap.Origin = origin
	snap.Mins = mins
	snap.Maxs = maxs
	snap.Solid = solid
	snap.Valid = true

	h.writeIndex = (h.writeIndex + 1) % HistoryFrames
}

// SnapshotAt returns the single valid snapshot closest in time to target, or
// ok=false when nothing recorded lies within tolerance.
func (h *EntityHistory) SnapshotAt(target, tolerance int64) (EntitySnapshot, bool) {
	var best EntitySnapshot
	bestDiff := int64(-1)

	for i := range h.snapshots {
		snap := &h.snapshots[i]
		if !snap.Valid {
			continue
		}

		diff := snap.Time - target
		if diff < 0 {
			diff = -diff
		}
		if bestDiff < 0 || diff < bestDiff {
			bestDiff = diff
			best = *snap
		}
	}

	if bestDiff < 0 || bestDiff > tolerance {
		return EntitySnapshot{}, false
	}

	return best, true
}

// InterpolateAt returns the entity's state at exactly target time by linearly
// blending the two recorded snapshots bracketing it. If only one side of the
// bracket exists, that boundary snapshot is returned unmodified provided it
// lies within tolerance; interpolation never extrapolates past the oldest or
// newest sample.
func (h *EntityHistory) InterpolateAt(target, tolerance int64) (EntitySnapshot, bool) {
	var before, after *EntitySnapshot

	for i := range h.snapshots {
		snap := &h.snapshots[i]
		if !snap.Valid {
			continue
		}

		if snap.Time <= target && (before == nil || snap.Time > before.Time) {
			before = snap
		}
		if snap.Time >= target && (after == nil || snap.Time < after.Time) {
			after = snap
		}
	}

	switch {
	case before != nil && after != nil && before.Time != after.Time:
		frac := float32(target-before.Time) / float32(after.Time-before.Time)

		return EntitySnapshot{
			Time:   target,
			Origin: before.Origin.Lerp(after.Origin, frac),
			Mins:   before.Mins.Lerp(after.Mins, frac),
			Maxs:   before.Maxs.Lerp(after.Maxs, frac),
			Valid:  true,
			Solid:  before.Solid || after.Solid,
		}, true

	case before != nil:
		return h.boundary(before, target, tolerance)
	case after != nil:
		return h.boundary(after, target, tolerance)
	default:
		return EntitySnapshot{}, false
	}
}

func (h *EntityHistory) boundary(snap *EntitySnapshot, target, tolerance int64) (EntitySnapshot, bool) {
	diff := snap.Time - target
	if diff < 0 {
		diff = -diff
	}
	if diff > tolerance {
		return EntitySnapshot{}, false
	}
	return *snap, true
}

// Clear invalidates every snapshot and resets the write cursor. Called on map
// change.
func (h *EntityHistory) Clear() {
	for i := range h.snapshots {
		h.snapshots[i].Valid = false
	}
	h.writeIndex = 0
}
