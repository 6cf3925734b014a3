// Package lagcomp answers lag-compensated hit queries: it keeps a short
// history of entity positions, rewinds to where a shooting client saw the
// world, and tests shots against that historical, interpolated state. The
// live world is never touched by a query.
package lagcomp

// Vec3 is a position or extent in world units.
type Vec3 [3]float32

// Add returns v + o componentwise.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

// Sub returns v - o componentwise.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]}
}

// Lerp returns the linear blend of v towards o by fraction t.
func (v Vec3) Lerp(o Vec3, t float32) Vec3 {
	return Vec3{
		v[0] + t*(o[0]-v[0]),
		v[1] + t*(o[1]-v[1]),
		v[2] + t*(o[2]-v[2]),
	}
}
