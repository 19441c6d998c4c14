// Package rotate converts Euler orientation angles between the source axis
// convention and the solver's axis convention.
//
// The transform is pure: build the proper Euler Z-X'-Z'' rotation from the
// three angles, conjugate it with the fixed axis permutation that exchanges
// the y and z axes (or its inverse, depending on direction), and decompose
// the result back into angles.
//
// Decomposition near theta = 0 is ambiguous (only the sum of the first and
// third angle is determined); Rotate resolves it by convention with theta
// and psi set to zero. Round-trips are exact to ~1e-3 degrees away from that
// degenerate region.
package rotate

import "math"

// mat3 is a row-major 3x3 matrix.
type mat3 [3][3]float64

func (a mat3) mul(b mat3) mat3 {
	var c mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				c[i][j] += a[i][k] * b[k][j]
			}
		}
	}
	return c
}

func (a mat3) transpose() mat3 {
	var t mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t[i][j] = a[j][i]
		}
	}
	return t
}

// Rotate converts three Euler angles (degrees, Z-X'-Z'' sequence) to the
// target axis convention when toMicress is true, or back when false. Input
// angles may carry any sign; they are normalized into [0, 360) first. The
// returned angles lie in [0, 360).
func Rotate(eulerDeg [3]float64, toMicress bool) [3]float64 {
	var rad [3]float64
	for i, v := range eulerDeg {
		v *= math.Pi / 180
		if v < 0 {
			v += 2 * math.Pi
		}
		rad[i] = v
	}
	return anglesFromMatrix(matrixFromAngles(rad, toMicress))
}

// Matrix returns the composed, convention-adjusted rotation matrix for the
// given angles in degrees. Exposed for tests and diagnostics.
func Matrix(eulerDeg [3]float64, toMicress bool) [3][3]float64 {
	var rad [3]float64
	for i, v := range eulerDeg {
		v *= math.Pi / 180
		if v < 0 {
			v += 2 * math.Pi
		}
		rad[i] = v
	}
	return [3][3]float64(matrixFromAngles(rad, toMicress))
}

// matrixFromAngles composes the elemental Z, X', Z'' rotations and
// conjugates with the fixed y/z axis permutation.
func matrixFromAngles(eulerRad [3]float64, toMicress bool) mat3 {
	phi, theta, psi := eulerRad[0], eulerRad[1], eulerRad[2]

	rz := mat3{
		{math.Cos(phi), -math.Sin(phi), 0},
		{math.Sin(phi), math.Cos(phi), 0},
		{0, 0, 1},
	}
	rx := mat3{
		{1, 0, 0},
		{0, math.Cos(theta), -math.Sin(theta)},
		{0, math.Sin(theta), math.Cos(theta)},
	}
	rz2 := mat3{
		{math.Cos(psi), -math.Sin(psi), 0},
		{math.Sin(psi), math.Cos(psi), 0},
		{0, 0, 1},
	}

	// y/z exchange with sign flip, and its inverse
	ram := mat3{
		{1, 0, 0},
		{0, 0, 1},
		{0, -1, 0},
	}
	rma := mat3{
		{1, 0, 0},
		{0, 0, -1},
		{0, 1, 0},
	}
	if !toMicress {
		ram, rma = rma, ram
	}

	euler := rz.mul(rx).mul(rz2)
	return rma.mul(euler).mul(ram)
}

// anglesFromMatrix recovers the Z-X'-Z'' angles in degrees from a rotation
// matrix. The middle angle comes from m[2][2] via acos, clamped to absorb
// round-off; the first and third angles are recovered from the border
// entries with a sign-consistency correction.
func anglesFromMatrix(m mat3) [3]float64 {
	cosTheta := clamp(m[2][2])
	sinTheta := math.Sqrt(1 - cosTheta*cosTheta)
	theta := math.Acos(cosTheta)

	var phi, psi float64
	if math.Abs(sinTheta) < 1e-5 {
		// theta ~ 0: only phi+psi is determined; take psi = 0.
		theta = 0
		psi = 0
		phi = recoverAngle(m[1][0], m[0][0], 5e-3)
	} else {
		phi = recoverAngle(m[0][2]/sinTheta, -m[1][2]/sinTheta, 5e-3)
		psi = recoverAngle(m[2][0]/sinTheta, m[2][1]/sinTheta, 1e-3)
	}

	if phi < 0 {
		phi += 2 * math.Pi
	}
	if theta < 0 {
		theta += 2 * math.Pi
	}
	if psi < 0 {
		psi += 2 * math.Pi
	}

	const radToDeg = 180 / math.Pi
	return [3]float64{phi * radToDeg, theta * radToDeg, psi * radToDeg}
}

// recoverAngle computes asin(sinA) and mirrors the result across pi when its
// cosine disagrees with the matrix entry by more than tol.
func recoverAngle(sinA, cosA, tol float64) float64 {
	a := math.Asin(clamp(sinA))
	if math.Abs(math.Cos(a)-cosA) > tol {
		a = math.Pi - a
	}
	if a > math.Pi+1e-6 {
		a -= 2 * math.Pi
	}
	return a
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// IsRotationMatrix reports whether m is orthonormal within 1e-6, measured as
// the Frobenius norm of I - m^T m. Exposed for tests.
func IsRotationMatrix(raw [3][3]float64) bool {
	m := mat3(raw)
	p := m.transpose().mul(m)
	var sum float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			d := p[i][j]
			if i == j {
				d -= 1
			}
			sum += d * d
		}
	}
	return math.Sqrt(sum) < 1e-6
}
