package lagcomp

// Axes along which the segment direction is shorter than this are treated as
// a containment check instead of a division, avoiding NaN and infinity.
const parallelEpsilon = 1e-6

// SegmentIntersectsBox clips the segment from start to end against the
// axis-aligned box spanned by origin+mins and origin+maxs using the slab
// method: the parametric interval t in [0,1] is narrowed by each axis pair of
// planes in turn. It returns the entry point and whether the segment hits.
func SegmentIntersectsBox(start, end, origin, mins, maxs Vec3) (Vec3, bool) {
	boxMins := origin.Add(mins)
	boxMaxs := origin.Add(maxs)
	dir := end.Sub(start)

	tMin := float32(0)
	tMax := float32(1)

	for i := 0; i < 3; i++ {
		if dir[i] > -parallelEpsilon && dir[i] < parallelEpsilon {
			// Parallel to this slab: either inside it for the whole segment
			// or missing the box entirely.
			if start[i] < boxMins[i] || start[i] > boxMaxs[i] {
				return Vec3{}, false
			}
			continue
		}

		invD := 1 / dir[i]
		t1 := (boxMins[i] - start[i]) * invD
		t2 := (boxMaxs[i] - start[i]) * invD

		if t1 > t2 {
			t1, t2 = t2, t1
		}

		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}

		if tMin > tMax {
			return Vec3{}, false
		}
	}

	return start.Add(Vec3{dir[0] * tMin, dir[1] * tMin, dir[2] * tMin}), true
}
