package utils

import (
	"math"

	"github.com/cznic/mathutil"
)

//Euclidean modulus, result is always in [0, b)
func Mod(a, b int) int {
	r := a % b
	if r < 0 {
		r += b
	}
	return r
}

//Dot product
func DotInt(a, b []int) int {
	if len(a) != len(b) {
		panic("Params have differing lengths")
	}
	result := 0
	for i := range a {
		result += a[i] * b[i]
	}
	return result
}

//Populates float64 slice with specified value
func FillSliceFloat64(values []float64, value float64) {
	for i := range values {
		values[i] = value
	}
}

//Populates bool slice with specified value
func FillSliceBool(values []bool, value bool) {
	for i := range values {
		values[i] = value
	}
}

//Sets length values starting at start
func FillSliceRangeBool(values []bool, value bool, start, length int) {
	for i := 0; i < length; i++ {
		values[start+i] = value
	}
}

//Returns the subset of values specified by indices
func SubsetSliceFloat64(values []float64, indices []int) []float64 {
	result := make([]float64, len(indices))
	for i, val := range indices {
		result[i] = values[val]
	}
	return result
}

//Creates a float slice with every entry set to initialValue
func MakeSliceFloat64(size int, initialValue float64) []float64 {
	result := make([]float64, size)
	if initialValue != 0 {
		for i := range result {
			result[i] = initialValue
		}
	}
	return result
}

//Returns cartesian product of specified
//2d array
func CartProductInt(values [][]int) [][]int {
	if len(values) == 0 {
		return nil
	}
	for _, v := range values {
		if len(v) == 0 {
			return nil
		}
	}

	pos := make([]int, len(values))
	var result [][]int

	for pos[0] < len(values[0]) {
		temp := make([]int, len(values))
		for j := 0; j < len(values); j++ {
			temp[j] = values[j][pos[j]]
		}
		result = append(result, temp)
		pos[len(values)-1]++
		for k := len(values) - 1; k >= 1; k-- {
			if pos[k] >= len(values[k]) {
				pos[k] = 0
				pos[k-1]++
			} else {
				break
			}
		}
	}
	return result
}

//Searches int slice for specified integer
func ContainsInt(q int, vals []int) bool {
	for _, val := range vals {
		if val == q {
			return true
		}
	}
	return false
}

//Returns product of set of integers
func ProdInt(vals []int) int {
	if len(vals) == 0 {
		return 0
	}
	prod := 1
	for x := 0; x < len(vals); x++ {
		prod *= vals[x]
	}
	return prod
}

//Returns cumulative product starting from end
func RevCumProdInt(vals []int) []int {
	if len(vals) < 2 {
		return vals
	}
	result := make([]int, len(vals))
	result[len(vals)-1] = vals[len(vals)-1]
	for x := len(vals) - 2; x >= 0; x-- {
		result[x] = vals[x] * result[x+1]
	}

	return result
}

// Row-major strides for the given dimensions: the last dimension varies
// fastest.
func Strides(dims []int) []int {
	result := make([]int, len(dims))
	if len(dims) == 0 {
		return result
	}
	rev := RevCumProdInt(dims)
	for i := 0; i < len(dims)-1; i++ {
		result[i] = rev[i+1]
	}
	result[len(dims)-1] = 1
	return result
}

func RoundPrec(x float64, prec int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}

	sign := 1.0
	if x < 0 {
		sign = -1
		x *= -1
	}

	var rounder float64
	pow := math.Pow(10, float64(prec))
	intermed := x * pow
	_, frac := math.Modf(intermed)

	if frac >= 0.5 {
		rounder = math.Ceil(intermed)
	} else {
		rounder = math.Floor(intermed)
	}

	return rounder / pow * sign
}

//Rounds half away from zero to the nearest int
func RoundInt(x float64) int {
	return int(RoundPrec(x, 0))
}

//Helper for unit tests where int literals are easier
// to read
func Make1DBool(values []int) []bool {
	result := make([]bool, len(values))
	for i, val := range values {
		result[i] = val == 1
	}
	return result
}

//Returns number of entries equal to value
func CountInt(values []int, value int) int {
	count := 0
	for _, val := range values {
		if val == value {
			count++
		}
	}
	return count
}

//Returns number of on bits
func CountTrue(values []bool) int {
	count := 0
	for _, val := range values {
		if val {
			count++
		}
	}
	return count
}

//Returns "on" indices
func OnIndices(s []bool) []int {
	var result []int
	for idx, val := range s {
		if val {
			result = append(result, idx)
		}
	}
	return result
}

//Returns the largest value, 0 for an empty slice
func MaxSliceInt(values []int) int {
	if len(values) == 0 {
		return 0
	}
	result := values[0]
	for _, val := range values[1:] {
		result = mathutil.Max(result, val)
	}
	return result
}

func SumSliceInt(values []int) int {
	result := 0
	for _, val := range values {
		result += val
	}
	return result
}
