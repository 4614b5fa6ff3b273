package datastructure

import (
	"math"

	"golang.org/x/exp/constraints"
)

const epsilon = 1e-9

// Eq. equal within epsilon, +Inf equals +Inf.
func Eq[T constraints.Float](a, b T) bool {
	if a == b {
		return true
	}
	if math.IsInf(float64(a), 0) || math.IsInf(float64(b), 0) {
		return false
	}
	return math.Abs(float64(a-b)) <= epsilon*math.Max(1, math.Max(math.Abs(float64(a)), math.Abs(float64(b))))
}

func Lt[T constraints.Float](a, b T) bool {
	return a < b && !Eq(a, b)
}

func Le[T constraints.Float](a, b T) bool {
	return a < b || Eq(a, b)
}

func IsFinite[T constraints.Float](a T) bool {
	return !math.IsInf(float64(a), 0) && !math.IsNaN(float64(a))
}
