package overhead

// Keyed is implemented by batch items with an identifying key.
type Keyed interface {
	Key() string
}

// SameKeys reports whether a and b hold the same set of keys.
// Order and duplicates do not matter.
func SameKeys[R Keyed](a, b []R) bool {
	left := make(map[string]struct{}, len(a))
	for _, r := range a {
		left[r.Key()] = struct{}{}
	}
	right := make(map[string]struct{}, len(b))
	for _, r := range b {
		right[r.Key()] = struct{}{}
	}
	if len(left) != len(right) {
		return false
	}
	for k := range left {
		if _, ok := right[k]; !ok {
			return false
		}
	}
	return true
}
