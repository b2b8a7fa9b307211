package htm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

//Tests getting/setting values
func TestDenseGetSet(t *testing.T) {

	sm := NewDenseBinaryMatrix(10, 10)
	sm.Set(2, 4, true)
	sm.Set(6, 5, true)
	sm.Set(7, 5, false)

	if !sm.Get(2, 4) {
		t.Errorf("Was false expected true @ [2,4]")
	}

	if !sm.Get(6, 5) {
		t.Errorf("Was false expected true @ [6,5]")
	}

	if sm.Get(7, 5) {
		t.Errorf("Was true expected false @ [7,5]")
	}

	assert.Panics(t, func() { sm.Get(10, 0) })
	assert.Panics(t, func() { sm.Set(0, -1, true) })
}

func TestDenseRowReplace(t *testing.T) {
	sm := NewDenseBinaryMatrix(10, 10)
	sm.Set(2, 4, true)
	sm.Set(6, 5, true)
	sm.Set(7, 5, true)
	sm.Set(8, 8, true)

	if !sm.Get(8, 8) {
		t.Errorf("Was false expected true @ [8,8]")
	}

	newRow := make([]bool, 10)
	newRow[6] = true
	sm.ReplaceRow(8, newRow)

	if !sm.Get(8, 6) {
		t.Errorf("Was false expected true @ [8,6]")
	}

	if sm.Get(8, 8) {
		t.Errorf("Was true expected false @ [8,8]")
	}

	assert.Panics(t, func() { sm.ReplaceRow(8, make([]bool, 3)) })
}

func TestDenseReplaceRowByIndices(t *testing.T) {
	sm := NewDenseBinaryMatrix(10, 10)

	sm.ReplaceRowByIndices(4, []int{3, 9, 6})

	assert.True(t, sm.Get(4, 3))
	assert.True(t, sm.Get(4, 9))
	assert.True(t, sm.Get(4, 6))
	assert.False(t, sm.Get(4, 5))
	assert.False(t, sm.Get(4, 0))

	sm.ReplaceRowByIndices(4, []int{4, 0, 0})

	assert.False(t, sm.Get(4, 3))
	assert.False(t, sm.Get(4, 9))
	assert.True(t, sm.Get(4, 4))
	assert.True(t, sm.Get(4, 0))
	assert.Equal(t, 2, sm.RowCount(4))
}

func TestDenseGetRowIndices(t *testing.T) {
	sm := NewDenseBinaryMatrix(10, 10)

	indices := []int{3, 6, 9}
	sm.ReplaceRowByIndices(4, indices)

	assert.Equal(t, indices, sm.GetRowIndices(4))
	assert.Equal(t, []int{}, sm.GetRowIndices(5))
	assert.Equal(t, 3, sm.TotalNonZeroCount())
}

func TestDenseNewFromDense(t *testing.T) {
	sbm := NewDenseBinaryMatrixFromDense([][]bool{
		{true, true, true},
		{false, false, false},
		{false, true, false},
		{true, false, true},
	})

	assert.Equal(t, 4, sbm.Height)
	assert.Equal(t, 3, sbm.Width)
	assert.Equal(t, true, sbm.Get(3, 2))
	assert.Equal(t, []bool{false, true, false}, sbm.GetDenseRow(2))
	assert.Equal(t, "111\n000\n010\n101\n", sbm.ToString())

	cp := sbm.Copy()
	cp.Set(1, 1, true)
	assert.False(t, sbm.Get(1, 1))
	assert.True(t, cp.Get(1, 1))
}
