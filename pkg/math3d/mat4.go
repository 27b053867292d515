package math3d

import "math"

// Mat4 is a 4x4 matrix stored row-major: element (row, col) is at [row*4+col].
// Vectors are treated as columns, so a.Mul(b) applies b first.
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate returns a translation matrix.
func Translate(v Vec3) Mat4 {
	return Mat4{
		1, 0, 0, v.X,
		0, 1, 0, v.Y,
		0, 0, 1, v.Z,
		0, 0, 0, 1,
	}
}

// Scale returns a scaling matrix.
func Scale(v Vec3) Mat4 {
	return Mat4{
		v.X, 0, 0, 0,
		0, v.Y, 0, 0,
		0, 0, v.Z, 0,
		0, 0, 0, 1,
	}
}

// RotateY returns a rotation around the Y axis (radians).
func RotateY(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		c, 0, s, 0,
		0, 1, 0, 0,
		-s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// QuatToMat4 converts a unit quaternion (x, y, z, w) into a rotation matrix.
func QuatToMat4(x, y, z, w float64) Mat4 {
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z
	return Mat4{
		1 - 2*(yy+zz), 2 * (xy - wz), 2 * (xz + wy), 0,
		2 * (xy + wz), 1 - 2*(xx+zz), 2 * (yz - wx), 0,
		2 * (xz - wy), 2 * (yz + wx), 1 - 2*(xx+yy), 0,
		0, 0, 0, 1,
	}
}

// Mat4FromSlice builds a matrix from 16 column-major values, the layout glTF
// uses for node matrices. Short slices leave the remaining elements at identity.
func Mat4FromSlice(s []float64) Mat4 {
	m := Identity()
	for i := 0; i < len(s) && i < 16; i++ {
		col, row := i/4, i%4
		m[row*4+col] = s[i]
	}
	return m
}

// Mul returns the matrix product a * b.
func (a Mat4) Mul(b Mat4) Mat4 {
	var r Mat4
	for row := range 4 {
		for col := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[row*4+k] * b[k*4+col]
			}
			r[row*4+col] = sum
		}
	}
	return r
}

// MulVec4 transforms a homogeneous vector.
func (a Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		a[0]*v.X + a[1]*v.Y + a[2]*v.Z + a[3]*v.W,
		a[4]*v.X + a[5]*v.Y + a[6]*v.Z + a[7]*v.W,
		a[8]*v.X + a[9]*v.Y + a[10]*v.Z + a[11]*v.W,
		a[12]*v.X + a[13]*v.Y + a[14]*v.Z + a[15]*v.W,
	}
}

// MulVec3 transforms a point (w = 1) and applies the perspective divide.
func (a Mat4) MulVec3(v Vec3) Vec3 {
	return a.MulVec4(V4FromV3(v, 1)).PerspectiveDivide()
}

// MulVec3Dir transforms a direction (w = 0), ignoring translation.
func (a Mat4) MulVec3Dir(v Vec3) Vec3 {
	return a.MulVec4(V4FromV3(v, 0)).Vec3()
}

// LookAt returns a right-handed view matrix for a camera at eye looking at target.
func LookAt(eye, target, up Vec3) Mat4 {
	f := target.Sub(eye).Normalize()
	s := f.Cross(up).Normalize()
	u := s.Cross(f)
	return Mat4{
		s.X, s.Y, s.Z, -s.Dot(eye),
		u.X, u.Y, u.Z, -u.Dot(eye),
		-f.X, -f.Y, -f.Z, f.Dot(eye),
		0, 0, 0, 1,
	}
}

// Perspective returns a perspective projection matrix (fov in radians).
func Perspective(fov, aspect, near, far float64) Mat4 {
	f := 1 / math.Tan(fov/2)
	nf := 1 / (near - far)
	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, 2 * far * near * nf,
		0, 0, -1, 0,
	}
}
