package geometry

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/mat"
)

// ErrSingularMatrix is returned when inverting a matrix whose determinant is zero
var ErrSingularMatrix = errors.New("geometry: singular matrix")

// homogeneous coordinates with a |w| at or below this threshold are not divided
const homogeneousEpsilon = 1e-6

// Matrix4 is a 4x4 homogeneous transformation stored in row-major order,
// element (row, col) being at index row*4+col.
type Matrix4 [16]float32

// Identity returns the identity transformation
func Identity() Matrix4 {
	return Matrix4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// NewMatrix4 builds a matrix from 16 row-major values
func NewMatrix4(values []float32) (Matrix4, error) {
	var m Matrix4
	if len(values) != len(m) {
		return m, errors.New("geometry: a 4x4 matrix needs exactly 16 values")
	}
	copy(m[:], values)
	return m, nil
}

func (m Matrix4) At(row, col int) float32 {
	return m[row*4+col]
}

// Mul returns m*o, so that applying the result equals applying o first and then m
func (m Matrix4) Mul(o Matrix4) Matrix4 {
	var r Matrix4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[row*4+k] * o[k*4+col]
			}
			r[row*4+col] = sum
		}
	}
	return r
}

func (m Matrix4) Transpose() Matrix4 {
	var r Matrix4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			r[col*4+row] = m[row*4+col]
		}
	}
	return r
}

// Inverse computes the inverse matrix through LU decomposition
func (m Matrix4) Inverse() (Matrix4, error) {
	data := make([]float64, len(m))
	for i, v := range m {
		data[i] = float64(v)
	}
	a := mat.NewDense(4, 4, data)
	if math.Abs(mat.Det(a)) < 1e-12 {
		return Matrix4{}, ErrSingularMatrix
	}

	var inv mat.Dense
	if err := inv.Inverse(a); err != nil {
		return Matrix4{}, ErrSingularMatrix
	}

	var r Matrix4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			r[row*4+col] = float32(inv.At(row, col))
		}
	}
	return r, nil
}

// Translation returns a matrix moving points by (x, y, z)
func Translation(x, y, z float32) Matrix4 {
	return fromMgl(mgl32.Translate3D(x, y, z))
}

// Scale returns a matrix scaling each axis by the given factor
func Scale(x, y, z float32) Matrix4 {
	return fromMgl(mgl32.Scale3D(x, y, z))
}

// RotationX returns a counter-clockwise rotation of angle radians around the X axis
func RotationX(angle float32) Matrix4 {
	return fromMgl(mgl32.HomogRotate3DX(angle))
}

// RotationY returns a counter-clockwise rotation of angle radians around the Y axis
func RotationY(angle float32) Matrix4 {
	return fromMgl(mgl32.HomogRotate3DY(angle))
}

// RotationZ returns a counter-clockwise rotation of angle radians around the Z axis
func RotationZ(angle float32) Matrix4 {
	return fromMgl(mgl32.HomogRotate3DZ(angle))
}

// LookAt returns the right-handed view matrix of a camera at eye looking towards center
func LookAt(eye, center, up Point3) Matrix4 {
	return fromMgl(mgl32.LookAtV(toVec3(eye), toVec3(center), toVec3(up)))
}

// mgl32 matrices are column major
func fromMgl(src mgl32.Mat4) Matrix4 {
	var r Matrix4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			r[row*4+col] = src.At(row, col)
		}
	}
	return r
}

func toVec3(p Point3) mgl32.Vec3 {
	return mgl32.Vec3{p.X, p.Y, p.Z}
}

// TransformPoint3D applies m to p as the homogeneous column vector [x y z 1].
// The result is divided by w unless |w| is not greater than 1e-6.
func TransformPoint3D(p Point3, m Matrix4) Point3 {
	x := m[0]*p.X + m[1]*p.Y + m[2]*p.Z + m[3]
	y := m[4]*p.X + m[5]*p.Y + m[6]*p.Z + m[7]
	z := m[8]*p.X + m[9]*p.Y + m[10]*p.Z + m[11]
	w := m[12]*p.X + m[13]*p.Y + m[14]*p.Z + m[15]

	if math.Abs(float64(w)) > homogeneousEpsilon {
		x /= w
		y /= w
		z /= w
	}
	return Point3{X: x, Y: y, Z: z}
}
