package retriever

import (
	"math"
	"sort"
)

// CSRMatrix is an immutable compressed sparse row matrix.
type CSRMatrix struct {
	rows    int
	cols    int
	indptr  []int
	indices []int
	data    []float64
}

type cell struct {
	col int
	val float64
}

// newCSRMatrix builds a matrix from per-row cells sorted by column.
func newCSRMatrix(rows, cols int, rowCells [][]cell) *CSRMatrix {
	nnz := 0
	for _, cells := range rowCells {
		nnz += len(cells)
	}
	m := &CSRMatrix{
		rows:    rows,
		cols:    cols,
		indptr:  make([]int, rows+1),
		indices: make([]int, 0, nnz),
		data:    make([]float64, 0, nnz),
	}
	for i := 0; i < rows; i++ {
		if i < len(rowCells) {
			for _, c := range rowCells[i] {
				m.indices = append(m.indices, c.col)
				m.data = append(m.data, c.val)
			}
		}
		m.indptr[i+1] = len(m.indices)
	}
	return m
}

func (m *CSRMatrix) Rows() int { return m.rows }
func (m *CSRMatrix) Cols() int { return m.cols }

// NNZ returns the number of stored (non-zero) cells.
func (m *CSRMatrix) NNZ() int { return len(m.data) }

// Row returns the column indices and values stored for row i. The slices
// alias the matrix and must not be modified.
func (m *CSRMatrix) Row(i int) ([]int, []float64) {
	start, end := m.indptr[i], m.indptr[i+1]
	return m.indices[start:end], m.data[start:end]
}

func (m *CSRMatrix) At(i, j int) float64 {
	cols, vals := m.Row(i)
	k := sort.SearchInts(cols, j)
	if k < len(cols) && cols[k] == j {
		return vals[k]
	}
	return 0
}

// DenseRow expands row i into a slice of length Cols().
func (m *CSRMatrix) DenseRow(i int) []float64 {
	out := make([]float64, m.cols)
	cols, vals := m.Row(i)
	for k, c := range cols {
		out[c] = vals[k]
	}
	return out
}

func (m *CSRMatrix) ColumnSums() []float64 {
	sums := make([]float64, m.cols)
	for k, c := range m.indices {
		sums[c] += m.data[k]
	}
	return sums
}

// ScaleColumns returns a new matrix whose column j is multiplied by w[j].
func (m *CSRMatrix) ScaleColumns(w []float64) *CSRMatrix {
	scaled := &CSRMatrix{
		rows:    m.rows,
		cols:    m.cols,
		indptr:  m.indptr,
		indices: m.indices,
		data:    make([]float64, len(m.data)),
	}
	for k, c := range m.indices {
		scaled.data[k] = m.data[k] * w[c]
	}
	return scaled
}

// RowNorms returns the L2 norm of every row. Rows without stored values get
// norm 1 so that dividing by it is always defined.
func (m *CSRMatrix) RowNorms() []float64 {
	norms := make([]float64, m.rows)
	for i := 0; i < m.rows; i++ {
		_, vals := m.Row(i)
		sum := 0.0
		for _, v := range vals {
			sum += v * v
		}
		if sum == 0 {
			norms[i] = 1
			continue
		}
		norms[i] = math.Sqrt(sum)
	}
	return norms
}
