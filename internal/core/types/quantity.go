package types

import "math"

// MaxQuantity is the largest quantity a single production, transfer or plan
// line may carry.
const MaxQuantity int64 = 1_000_000_000

// QuantityInRange reports whether qty is a valid line quantity.
func QuantityInRange(qty int64) bool {
	return qty > 0 && qty <= MaxQuantity
}

// AddQty returns a+b, or false if the sum overflows int64.
func AddQty(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

// MulCount returns a*b, or false if the product overflows int64.
func MulCount(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	c := a * b
	if c/b != a {
		return 0, false
	}
	return c, true
}
