package common

import (
	"cmp"
	"math"
)

func Sqrt(x float64) float64 {
	return math.Sqrt(x)
}

// / Performs a vector addition. (@p v1 + @p v2)
// / @param[out]		dest	The result vector. [(x, y, z)]
// / @param[in]		v1		The base vector. [(x, y, z)]
// / @param[in]		v2		The vector to add to @p v1. [(x, y, z)]
func Vadd[T float64 | float32](res []T, v1, v2 []T) {
	res[0] = v1[0] + v2[0]
	res[1] = v1[1] + v2[1]
	res[2] = v1[2] + v2[2]
}

// / Performs a vector subtraction. (@p v1 - @p v2)
// / @param[out]		dest	The result vector. [(x, y, z)]
// / @param[in]		v1		The base vector. [(x, y, z)]
// / @param[in]		v2		The vector to subtract from @p v1. [(x, y, z)]
func Vsub[T float64 | float32](res, v1, v2 []T) {
	res[0] = v1[0] - v2[0]
	res[1] = v1[1] - v2[1]
	res[2] = v1[2] - v2[2]
}

// / Selects the minimum value of each element from the specified vectors.
// / @param[in,out]	mn	A vector.  (Will be updated with the result.) [(x, y, z)]
// / @param[in]		v	A vector. [(x, y, z)]
func Vmin[T float64 | float32](mn, v []T) {
	mn[0] = min(mn[0], v[0])
	mn[1] = min(mn[1], v[1])
	mn[2] = min(mn[2], v[2])
}

// / Selects the maximum value of each element from the specified vectors.
// / @param[in,out]	mx	A vector.  (Will be updated with the result.) [(x, y, z)]
// / @param[in]		v	A vector. [(x, y, z)]
func Vmax[T float64 | float32](mx, v []T) {
	mx[0] = max(mx[0], v[0])
	mx[1] = max(mx[1], v[1])
	mx[2] = max(mx[2], v[2])
}

// / Returns the distance between two points.
// / @param[in]		v1	A point. [(x, y, z)]
// / @param[in]		v2	A point. [(x, y, z)]
// / @return The distance between the two points.
func Vdist[T float64 | float32](v1, v2 []T) T {
	dx := v2[0] - v1[0]
	dy := v2[1] - v1[1]
	dz := v2[2] - v1[2]
	return T(Sqrt(float64(dx*dx + dy*dy + dz*dz)))
}

// / Performs a scaled vector addition. (@p v1 + (@p v2 * @p s))
// / @param[out]		dest	The result vector. [(x, y, z)]
// / @param[in]		v1		The base vector. [(x, y, z)]
// / @param[in]		v2		The vector to scale and add to @p v1. [(x, y, z)]
// / @param[in]		s		The amount to scale @p v2 by before adding to @p v1.
func Vmad[T float64 | float32](res []T, v1, v2 []T, s T) {
	res[0] = v1[0] + v2[0]*s
	res[1] = v1[1] + v2[1]*s
	res[2] = v1[2] + v2[2]*s
}

// / Clamps the value to the specified range.
// / @param[in]		value			The value to clamp.
// / @param[in]		minInclusive	The minimum permitted return value.
// / @param[in]		maxInclusive	The maximum permitted return value.
// / @return The value, clamped to the specified range.
func Clamp[T cmp.Ordered](value, minInclusive, maxInclusive T) T {
	if value < minInclusive {
		return minInclusive
	}
	if value > maxInclusive {
		return maxInclusive
	}
	return value
}

// / Performs a linear interpolation between two vectors. (@p v1 toward @p v2)
// /  @param[out]	dest	The result vector. [(x, y, x)]
// /  @param[in]		v1		The starting vector.
// /  @param[in]		v2		The destination vector.
// /	 @param[in]		t		The interpolation factor. [Limits: 0 <= value <= 1.0]
func Vlerp(dest []float32, v1, v2 []float32, t float32) []float32 {
	dest[0] = v1[0] + (v2[0]-v1[0])*t
	dest[1] = v1[1] + (v2[1]-v1[1])*t
	dest[2] = v1[2] + (v2[2]-v1[2])*t
	return dest
}

// / Derives the signed xz-plane area of the triangle ABC, or the relationship of line AB to point C.
// /  @param[in]		a		Vertex A. [(x, y, z)]
// /  @param[in]		b		Vertex B. [(x, y, z)]
// /  @param[in]		c		Vertex C. [(x, y, z)]
// / @return The signed xz-plane area of the triangle.
func TriArea2D(a, b, c []float32) float32 {
	abx := b[0] - a[0]
	abz := b[2] - a[2]
	acx := c[0] - a[0]
	acz := c[2] - a[2]
	return abx*acz - acx*abz
}

func NextPow2(v uint32) uint32 {
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v++
	return v
}

func Ilog2(v uint32) uint32 {
	getBool := func(b bool) uint32 {
		if b {
			return 1
		}
		return 0
	}
	var r uint32
	var shift uint32
	r = getBool(v > 0xffff) << 4
	v >>= r
	shift = getBool(v > 0xff) << 3
	v >>= shift
	r |= shift
	shift = getBool(v > 0xf) << 2
	v >>= shift
	r |= shift
	shift = getBool(v > 0x3) << 1
	v >>= shift
	r |= shift
	r |= v >> 1
	return r
}
