package symbolic

import (
	"errors"
	"fmt"
	"strings"
)

// ============================================================
// Matrix - symbolic matrix
// ============================================================

var (
	ErrDimension = errors.New("symbolic: matrix dimension mismatch")
	ErrNotSquare = errors.New("symbolic: matrix is not square")
	ErrSingular  = errors.New("symbolic: matrix is singular")
)

// Matrix is a dense matrix of expressions. Operations return new matrices.
type Matrix struct {
	rows, cols int
	data       [][]Expr
}

func NewMatrix(rows, cols int) *Matrix {
	data := make([][]Expr, rows)
	for i := range data {
		data[i] = make([]Expr, cols)
		for j := range data[i] {
			data[i][j] = N(0)
		}
	}
	return &Matrix{rows: rows, cols: cols, data: data}
}

// MatrixFromRows builds a matrix from row slices, which must be non-empty
// and of equal length.
func MatrixFromRows(rows [][]Expr) (*Matrix, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty matrix", ErrDimension)
	}
	m := NewMatrix(len(rows), len(rows[0]))
	for i, row := range rows {
		if len(row) != m.cols {
			return nil, fmt.Errorf("%w: row %d has %d entries, want %d", ErrDimension, i, len(row), m.cols)
		}
		for j, e := range row {
			m.data[i][j] = e.Simplify()
		}
	}
	return m, nil
}

func Identity(n int) *Matrix {
	m := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		m.data[i][i] = N(1)
	}
	return m
}

func (m *Matrix) Get(row, col int) Expr { return m.data[row][col] }
func (m *Matrix) Rows() int             { return m.rows }
func (m *Matrix) Cols() int             { return m.cols }

func (m *Matrix) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < m.rows; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("[")
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(m.data[i][j].String())
		}
		sb.WriteString("]")
	}
	sb.WriteString("]")
	return sb.String()
}

func (m *Matrix) LaTeX() string {
	var sb strings.Builder
	sb.WriteString("\\begin{pmatrix}")
	for i := 0; i < m.rows; i++ {
		if i > 0 {
			sb.WriteString("\\\\")
		}
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				sb.WriteString(" & ")
			}
			sb.WriteString(m.data[i][j].LaTeX())
		}
	}
	sb.WriteString("\\end{pmatrix}")
	return sb.String()
}

func (m *Matrix) sameShape(other *Matrix) error {
	if m.rows != other.rows || m.cols != other.cols {
		return fmt.Errorf("%w: %dx%d and %dx%d", ErrDimension, m.rows, m.cols, other.rows, other.cols)
	}
	return nil
}

func (m *Matrix) MatAdd(other *Matrix) (*Matrix, error) {
	if err := m.sameShape(other); err != nil {
		return nil, err
	}
	result := NewMatrix(m.rows, m.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			result.data[i][j] = AddOf(m.data[i][j], other.data[i][j])
		}
	}
	return result, nil
}

func (m *Matrix) MatSub(other *Matrix) (*Matrix, error) {
	if err := m.sameShape(other); err != nil {
		return nil, err
	}
	result := NewMatrix(m.rows, m.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			result.data[i][j] = AddOf(m.data[i][j], Neg(other.data[i][j]))
		}
	}
	return result, nil
}

func (m *Matrix) MatMul(other *Matrix) (*Matrix, error) {
	if m.cols != other.rows {
		return nil, fmt.Errorf("%w: cannot multiply %dx%d by %dx%d", ErrDimension, m.rows, m.cols, other.rows, other.cols)
	}
	result := NewMatrix(m.rows, other.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < other.cols; j++ {
			terms := make([]Expr, m.cols)
			for k := 0; k < m.cols; k++ {
				terms[k] = MulOf(m.data[i][k], other.data[k][j])
			}
			result.data[i][j] = Expand(AddOf(terms...))
		}
	}
	return result, nil
}

func (m *Matrix) Scale(scalar Expr) *Matrix {
	result := NewMatrix(m.rows, m.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			result.data[i][j] = MulOf(scalar, m.data[i][j])
		}
	}
	return result
}

func (m *Matrix) Transpose() *Matrix {
	result := NewMatrix(m.cols, m.rows)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			result.data[j][i] = m.data[i][j]
		}
	}
	return result
}

func (m *Matrix) Trace() (Expr, error) {
	if m.rows != m.cols {
		return nil, ErrNotSquare
	}
	terms := make([]Expr, m.rows)
	for i := 0; i < m.rows; i++ {
		terms[i] = m.data[i][i]
	}
	return AddOf(terms...), nil
}

func (m *Matrix) Det() (Expr, error) {
	if m.rows != m.cols {
		return nil, ErrNotSquare
	}
	return Expand(matDet(m.data, m.rows)), nil
}

// matDet is cofactor expansion along the first row.
func matDet(data [][]Expr, n int) Expr {
	if n == 1 {
		return data[0][0]
	}
	if n == 2 {
		return AddOf(
			MulOf(data[0][0], data[1][1]),
			Neg(MulOf(data[0][1], data[1][0])),
		)
	}
	terms := make([]Expr, n)
	for j := 0; j < n; j++ {
		sign := N(1)
		if j%2 == 1 {
			sign = N(-1)
		}
		terms[j] = MulOf(sign, data[0][j], matDet(makeMinor(data, n, 0, j), n-1))
	}
	return AddOf(terms...)
}

func makeMinor(data [][]Expr, n, skipRow, skipCol int) [][]Expr {
	minor := make([][]Expr, 0, n-1)
	for i := 0; i < n; i++ {
		if i == skipRow {
			continue
		}
		row := make([]Expr, 0, n-1)
		for j := 0; j < n; j++ {
			if j != skipCol {
				row = append(row, data[i][j])
			}
		}
		minor = append(minor, row)
	}
	return minor
}

// Inverse is the adjugate divided by the determinant. A determinant that
// simplifies to zero reports ErrSingular.
func (m *Matrix) Inverse() (*Matrix, error) {
	det, err := m.Det()
	if err != nil {
		return nil, err
	}
	if dn, ok := det.(*Num); ok && dn.IsZero() {
		return nil, ErrSingular
	}
	n := m.rows
	if n == 1 {
		return &Matrix{rows: 1, cols: 1, data: [][]Expr{{PowOf(det, N(-1))}}}, nil
	}
	cof := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			sign := N(1)
			if (i+j)%2 == 1 {
				sign = N(-1)
			}
			cof.data[i][j] = Expand(MulOf(sign, matDet(makeMinor(m.data, n, i, j), n-1)))
		}
	}
	return cof.Transpose().Scale(PowOf(det, N(-1))), nil
}

func (m *Matrix) Equal(other *Matrix) bool {
	if m.sameShape(other) != nil {
		return false
	}
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			if !m.data[i][j].Equal(other.data[i][j]) {
				return false
			}
		}
	}
	return true
}
