package htm

import (
	"bytes"
)

//Dense binary matrix stored row-major in a flat bool slice. The pooler
//keeps one row per column holding its potential pool.
type DenseBinaryMatrix struct {
	Width   int
	Height  int
	entries []bool
}

//Create new dense binary matrix of specified size
func NewDenseBinaryMatrix(height, width int) *DenseBinaryMatrix {
	m := &DenseBinaryMatrix{}
	m.Height = height
	m.Width = width
	m.entries = make([]bool, width*height)
	return m
}

//Create dense binary matrix from specified 2d slice
func NewDenseBinaryMatrixFromDense(values [][]bool) *DenseBinaryMatrix {
	if len(values) < 1 {
		panic("No values specified.")
	}

	m := NewDenseBinaryMatrix(len(values), len(values[0]))
	for r := 0; r < m.Height; r++ {
		m.ReplaceRow(r, values[r])
	}
	return m
}

//Get value at row,col position
func (sm *DenseBinaryMatrix) Get(row int, col int) bool {
	sm.validateRowCol(row, col)
	return sm.entries[row*sm.Width+col]
}

//Set value at row,col position
func (sm *DenseBinaryMatrix) Set(row int, col int, value bool) {
	sm.validateRowCol(row, col)
	sm.entries[row*sm.Width+col] = value
}

//Replaces specified row with values, assumes values is ordered
//correctly
func (sm *DenseBinaryMatrix) ReplaceRow(row int, values []bool) {
	sm.validateRow(row)
	if len(values) != sm.Width {
		panic("Row length does not match matrix width.")
	}
	copy(sm.entries[row*sm.Width:(row+1)*sm.Width], values)
}

//Replaces row with true values at specified indices
func (sm *DenseBinaryMatrix) ReplaceRowByIndices(row int, indices []int) {
	sm.validateRow(row)
	start := row * sm.Width
	for i := 0; i < sm.Width; i++ {
		sm.entries[start+i] = false
	}
	for _, idx := range indices {
		sm.validateCol(idx)
		sm.entries[start+idx] = true
	}
}

//Returns dense row
func (sm *DenseBinaryMatrix) GetDenseRow(row int) []bool {
	sm.validateRow(row)
	result := make([]bool, sm.Width)
	copy(result, sm.entries[row*sm.Width:(row+1)*sm.Width])
	return result
}

//Returns a rows "on" indices
func (sm *DenseBinaryMatrix) GetRowIndices(row int) []int {
	sm.validateRow(row)
	result := make([]int, 0, sm.Width)
	start := row * sm.Width
	for i := 0; i < sm.Width; i++ {
		if sm.entries[start+i] {
			result = append(result, i)
		}
	}
	return result
}

//Returns number of true entries in row
func (sm *DenseBinaryMatrix) RowCount(row int) int {
	sm.validateRow(row)
	count := 0
	start := row * sm.Width
	for i := 0; i < sm.Width; i++ {
		if sm.entries[start+i] {
			count++
		}
	}
	return count
}

//Returns total true entries
func (sm *DenseBinaryMatrix) TotalNonZeroCount() int {
	count := 0
	for _, val := range sm.entries {
		if val {
			count++
		}
	}
	return count
}

//Copys a matrix
func (sm *DenseBinaryMatrix) Copy() *DenseBinaryMatrix {
	if sm == nil {
		return nil
	}

	result := new(DenseBinaryMatrix)
	result.Width = sm.Width
	result.Height = sm.Height
	result.entries = make([]bool, len(sm.entries))
	copy(result.entries, sm.entries)

	return result
}

func (sm *DenseBinaryMatrix) ToString() string {
	var buffer bytes.Buffer

	for r := 0; r < sm.Height; r++ {
		for c := 0; c < sm.Width; c++ {
			if sm.entries[r*sm.Width+c] {
				buffer.WriteByte('1')
			} else {
				buffer.WriteByte('0')
			}
		}
		buffer.WriteByte('\n')
	}

	return buffer.String()
}

func (sm *DenseBinaryMatrix) validateCol(col int) {
	if col < 0 || col >= sm.Width {
		panic("Specified col is out of bounds.")
	}
}

func (sm *DenseBinaryMatrix) validateRow(row int) {
	if row < 0 || row >= sm.Height {
		panic("Specified row is out of bounds.")
	}
}

func (sm *DenseBinaryMatrix) validateRowCol(row int, col int) {
	sm.validateRow(row)
	sm.validateCol(col)
}
