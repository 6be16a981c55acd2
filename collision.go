package main

import "math"

// CirclesOverlap checks if two circles on the ground plane overlap.
// Touching circles do not overlap.
func CirclesOverlap(ax, az, ar, bx, bz, br float64) bool {
	dx := bx - ax
	dz := bz - az
	radSum := ar + br
	return dx*dx+dz*dz < radSum*radSum
}

// ToLocalFrame rotates a world-space offset into the frame of an obstacle
// rotated by rotation around the vertical axis.
func ToLocalFrame(dx, dz, rotation float64) (lx, lz float64) {
	cosR := math.Cos(-rotation)
	sinR := math.Sin(-rotation)
	lx = dx*cosR - dz*sinR
	lz = dx*sinR + dz*cosR
	return
}

// PointInRotatedRect checks if (px,pz) lies inside a rectangle centred on
// (cx,cz) with the given half extents, rotated by rotation.
func PointInRotatedRect(px, pz, cx, cz, halfW, halfD, rotation float64) bool {
	lx, lz := ToLocalFrame(px-cx, pz-cz, rotation)
	return math.Abs(lx) <= halfW && math.Abs(lz) <= halfD
}

// CircleRotatedRectOverlap checks a circle against a rotated rectangle by
// growing the rectangle by the circle radius on both local axes.
func CircleRotatedRectOverlap(px, pz, r, cx, cz, halfW, halfD, rotation float64) bool {
	return PointInRotatedRect(px, pz, cx, cz, halfW+r, halfD+r, rotation)
}

// segmentCircleIntersect checks if a line segment (x1,z1)-(x2,z2) intersects a circle at (cx,cz) with radius r.
func segmentCircleIntersect(x1, z1, x2, z2, cx, cz, r float64) bool {
	dx := x2 - x1
	dz := z2 - z1
	fx := x1 - cx
	fz := z1 - cz
	a := dx*dx + dz*dz
	if a == 0 {
		return fx*fx+fz*fz <= r*r
	}
	b := 2 * (fx*dx + fz*dz)
	c := fx*fx + fz*fz - r*r
	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return false
	}
	discriminant = math.Sqrt(discriminant)
	t1 := (-b - discriminant) / (2 * a)
	t2 := (-b + discriminant) / (2 * a)
	return (t1 >= 0 && t1 <= 1) || (t2 >= 0 && t2 <= 1) || (t1 <= 0 && t2 >= 1)
}

// normalize returns the unit vector of (dx,dz). ok is false for a
// zero-length input, in which case the caller must skip the step.
func normalize(dx, dz float64) (nx, nz float64, ok bool) {
	l := math.Sqrt(dx*dx + dz*dz)
	if l < 1e-9 {
		return 0, 0, false
	}
	return dx / l, dz / l, true
}
