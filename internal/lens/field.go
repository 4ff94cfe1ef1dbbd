package lens

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Field is a square brightness array indexed as At(row, col) = (y, x).
type Field struct {
	m *mat.Dense
}

// NewField allocates a zeroed n×n field.
func NewField(n int) *Field {
	return &Field{m: mat.NewDense(n, n, nil)}
}

// FieldFromRows builds a field from row-major data. All rows must have
// len(rows) entries.
func FieldFromRows(rows [][]float64) (*Field, error) {
	n := len(rows)
	if n == 0 {
		return nil, &ValidationError{Field: "rows", Value: 0, Reason: "field must not be empty"}
	}
	data := make([]float64, 0, n*n)
	for i, r := range rows {
		if len(r) != n {
			return nil, &ValidationError{Field: "rows", Value: float64(i), Reason: "field must be square"}
		}
		data = append(data, r...)
	}
	return &Field{m: mat.NewDense(n, n, data)}, nil
}

func (f *Field) N() int {
	r, _ := f.m.Dims()
	return r
}

func (f *Field) At(row, col int) float64 { return f.m.At(row, col) }

func (f *Field) Set(row, col int, v float64) { f.m.Set(row, col, v) }

// Row returns a copy of row r.
func (f *Field) Row(r int) []float64 {
	return mat.Row(nil, r, f.m)
}

// Rows returns a copy of the field as a slice of rows.
func (f *Field) Rows() [][]float64 {
	n := f.N()
	rows := make([][]float64, n)
	for r := 0; r < n; r++ {
		rows[r] = f.Row(r)
	}
	return rows
}

// Dense exposes the backing matrix read-only.
func (f *Field) Dense() mat.Matrix { return f.m }

func (f *Field) raw() []float64 { return f.m.RawMatrix().Data }

func (f *Field) Clone() *Field {
	return &Field{m: mat.DenseCopyOf(f.m)}
}

func (f *Field) Max() float64  { return floats.Max(f.raw()) }
func (f *Field) Min() float64  { return floats.Min(f.raw()) }
func (f *Field) Sum() float64  { return floats.Sum(f.raw()) }
func (f *Field) Mean() float64 { return stat.Mean(f.raw(), nil) }

// Equal reports whether both fields hold bit-identical values.
func (f *Field) Equal(other *Field) bool {
	if other == nil || f.N() != other.N() {
		return false
	}
	return floats.Equal(f.raw(), other.raw())
}

// EqualApprox reports whether all values agree within tol.
func (f *Field) EqualApprox(other *Field, tol float64) bool {
	if other == nil || f.N() != other.N() {
		return false
	}
	return mat.EqualApprox(f.m, other.m, tol)
}
