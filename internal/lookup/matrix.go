package lookup

import (
	"errors"
	"fmt"
	"slices"
)

// MaxElements bounds rows*cols of a matrix.
const MaxElements = 1 << 30

// Shape errors.
var (
	ErrShapeMismatch = errors.New("shape mismatch")
	ErrShapeTooLarge = errors.New("matrix shape too large")
)

// CheckShape reports whether rows x cols is a valid matrix shape.
func CheckShape(rows, cols int) error {
	if rows < 0 || cols < 0 {
		return fmt.Errorf("%w: negative dimension %dx%d", ErrShapeMismatch, rows, cols)
	}
	if rows > MaxElements || cols > MaxElements || (cols > 0 && rows > MaxElements/cols) {
		return fmt.Errorf("%w: %dx%d exceeds %d elements", ErrShapeTooLarge, rows, cols, MaxElements)
	}
	return nil
}

// Matrix is a dense row-major float32 matrix.
type Matrix struct {
	rows int
	cols int
	data []float32
}

// NewMatrix creates a zero-filled rows x cols matrix.
// It panics when CheckShape rejects the shape; decoders check first.
func NewMatrix(rows, cols int) *Matrix {
	if err := CheckShape(rows, cols); err != nil {
		panic(err)
	}
	return &Matrix{
		rows: rows,
		cols: cols,
		data: make([]float32, rows*cols),
	}
}

// NewMatrixFrom wraps data as a rows x cols matrix without copying.
func NewMatrixFrom(rows, cols int, data []float32) (*Matrix, error) {
	if err := CheckShape(rows, cols); err != nil {
		return nil, err
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%w: %d elements for %dx%d", ErrShapeMismatch, len(data), rows, cols)
	}
	return &Matrix{rows: rows, cols: cols, data: data}, nil
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// Shape returns [rows, cols].
func (m *Matrix) Shape() []int { return []int{m.rows, m.cols} }

// Data returns the backing slice in row-major order.
func (m *Matrix) Data() []float32 { return m.data }

// Row returns row i as a slice sharing the matrix storage.
func (m *Matrix) Row(i int) []float32 {
	return m.data[i*m.cols : (i+1)*m.cols]
}

// PutRow copies v into row i. A shorter v leaves the tail zeroed.
func (m *Matrix) PutRow(i int, v []float32) error {
	if i < 0 || i >= m.rows {
		return fmt.Errorf("row %d out of range [0, %d)", i, m.rows)
	}
	if len(v) > m.cols {
		return fmt.Errorf("%w: row of %d values for %d columns", ErrShapeMismatch, len(v), m.cols)
	}
	row := m.Row(i)
	n := copy(row, v)
	clear(row[n:])
	return nil
}

// At returns element (i, j).
func (m *Matrix) At(i, j int) float32 {
	return m.data[i*m.cols+j]
}

// Set stores v at (i, j).
func (m *Matrix) Set(i, j int, v float32) {
	m.data[i*m.cols+j] = v
}

// Clone returns a deep copy of m.
func (m *Matrix) Clone() *Matrix {
	return &Matrix{rows: m.rows, cols: m.cols, data: slices.Clone(m.data)}
}

// Equal reports whether m and other have the same shape and elements.
func (m *Matrix) Equal(other *Matrix) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.rows == other.rows && m.cols == other.cols && slices.Equal(m.data, other.data)
}
