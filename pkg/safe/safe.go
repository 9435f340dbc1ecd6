package safe

import (
	"fmt"
	"math"
)

// SafeAdd returns a + b, panicking on int64 overflow.
// Monetary state must never wrap silently.
func SafeAdd(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		panic(fmt.Sprintf("INT64_OVERFLOW_ADD: %d + %d", a, b))
	}
	if b < 0 && a < math.MinInt64-b {
		panic(fmt.Sprintf("INT64_UNDERFLOW_ADD: %d + %d", a, b))
	}
	return a + b
}

// SafeSub returns a - b, panicking on int64 overflow.
func SafeSub(a, b int64) int64 {
	if b < 0 && a > math.MaxInt64+b {
		panic(fmt.Sprintf("INT64_OVERFLOW_SUB: %d - %d", a, b))
	}
	if b > 0 && a < math.MinInt64+b {
		panic(fmt.Sprintf("INT64_UNDERFLOW_SUB: %d - %d", a, b))
	}
	return a - b
}

// SafeMul returns a * b, panicking on int64 overflow.
func SafeMul(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	result := a * b
	if result/b != a {
		panic(fmt.Sprintf("INT64_OVERFLOW_MUL: %d * %d", a, b))
	}
	return result
}
