// Package page provides pure pagination arithmetic. Views are derived
// from (list, page, size) on every read and never stored, so the
// invariant 1 <= page <= max(1, Total) is trivially checkable.
package page

// Total returns ceil(n / size). A zero or negative size yields 0.
func Total(n, size int) int {
	if size <= 0 || n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Clamp forces p into [1, max(1, total)].
func Clamp(p, total int) int {
	if total < 1 {
		total = 1
	}
	if p < 1 {
		return 1
	}
	if p > total {
		return total
	}
	return p
}

// Slice returns the window [(p-1)*size, p*size) of items, where p is
// clamped first. An empty list yields an empty slice.
func Slice[T any](items []T, p, size int) []T {
	if size <= 0 {
		return nil
	}
	p = Clamp(p, Total(len(items), size))
	lo := (p - 1) * size
	if lo >= len(items) {
		return nil
	}
	hi := lo + size
	if hi > len(items) {
		hi = len(items)
	}
	return items[lo:hi]
}

// Pair groups two consecutive items for a two-column layout. Second is
// nil when the group is the odd tail; a nil cell is simply not rendered.
type Pair[T any] struct {
	First  T
	Second *T
}

// Pairs groups items into consecutive pairs in order.
func Pairs[T any](items []T) []Pair[T] {
	if len(items) == 0 {
		return nil
	}
	out := make([]Pair[T], 0, (len(items)+1)/2)
	for i := 0; i < len(items); i += 2 {
		p := Pair[T]{First: items[i]}
		if i+1 < len(items) {
			p.Second = &items[i+1]
		}
		out = append(out, p)
	}
	return out
}
