package services

import "math"

// Small dense-matrix helpers for the projection adapter. Matrices are
// row-major [][]float64; sizes stay at embedding-dimension scale so a
// dedicated linear-algebra dependency is not warranted.

// identityMatrix returns the n x n identity.
func identityMatrix(n int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		m[i][i] = 1
	}
	return m
}

// zeroMatrix returns an r x c zero matrix.
func zeroMatrix(r, c int) [][]float64 {
	m := make([][]float64, r)
	for i := range m {
		m[i] = make([]float64, c)
	}
	return m
}

// matVec computes m · v.
func matVec(m [][]float64, v []float64) []float64 {
	out := make([]float64, len(m))
	for i, row := range m {
		var sum float64
		for j, w := range row {
			sum += w * v[j]
		}
		out[i] = sum
	}
	return out
}

// matMul computes a · b.
func matMul(a, b [][]float64) [][]float64 {
	rows, inner, cols := len(a), len(b), len(b[0])
	out := zeroMatrix(rows, cols)
	for i := 0; i < rows; i++ {
		for k := 0; k < inner; k++ {
			aik := a[i][k]
			if aik == 0 {
				continue
			}
			for j := 0; j < cols; j++ {
				out[i][j] += aik * b[k][j]
			}
		}
	}
	return out
}

// transpose returns mᵀ.
func transpose(m [][]float64) [][]float64 {
	out := zeroMatrix(len(m[0]), len(m))
	for i, row := range m {
		for j, v := range row {
			out[j][i] = v
		}
	}
	return out
}

// addScaled computes dst += scale * src in place.
func addScaled(dst, src [][]float64, scale float64) {
	for i := range dst {
		for j := range dst[i] {
			dst[i][j] += scale * src[i][j]
		}
	}
}

// dot computes the inner product of two equal-length vectors.
func dot(a, b []float64) float64 {
	var sum float64
	for i, v := range a {
		sum += v * b[i]
	}
	return sum
}

// normalizeVec scales v to unit length in place. Zero vectors are left
// untouched so they never match anything.
func normalizeVec(v []float64) {
	norm := math.Sqrt(dot(v, v))
	if norm == 0 {
		return
	}
	for i := range v {
		v[i] /= norm
	}
}

// cloneMatrix deep-copies m.
func cloneMatrix(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = append([]float64(nil), row...)
	}
	return out
}
