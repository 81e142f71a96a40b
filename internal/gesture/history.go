package gesture

// MaxHistory bounds the stability window.
const MaxHistory = 32

// DefaultHistorySize is the number of recent classifications voted on.
const DefaultHistorySize = 5

// History is a fixed-capacity FIFO of recent raw classifications. It is a
// plain value so it can live inside MotionState and be copied freely.
type History struct {
	buf  [MaxHistory]Type
	n    int
	size int
}

// NewHistory returns an empty History holding at most size labels. Sizes
// outside [1, MaxHistory] are clamped.
func NewHistory(size int) History {
	if size < 1 {
		size = 1
	}
	if size > MaxHistory {
		size = MaxHistory
	}
	return History{size: size}
}

// Push appends t, evicting the oldest label when full, and returns the
// updated history.
func (h History) Push(t Type) History {
	if h.size == 0 {
		h.size = DefaultHistorySize
	}
	if h.n == h.size {
		copy(h.buf[:h.n-1], h.buf[1:h.n])
		h.n--
	}
	h.buf[h.n] = t
	h.n++
	return h
}

// Labels returns the window oldest first.
func (h History) Labels() []Type {
	out := make([]Type, h.n)
	copy(out, h.buf[:h.n])
	return out
}

// Len returns the number of labels held.
func (h History) Len() int {
	return h.n
}

// Majority returns the most frequent label in the window, or None when empty.
func (h History) Majority() Type {
	return Majority(h.buf[:h.n])
}

// Majority returns the most frequent label. Ties go to the label that reached
// the winning count first while scanning oldest to newest.
func Majority(labels []Type) Type {
	if len(labels) == 0 {
		return None
	}

	var counts [numTypes]int
	best, bestCount := None, 0
	for _, t := range labels {
		if !t.Valid() {
			continue
		}
		counts[t]++
		if counts[t] > bestCount {
			best, bestCount = t, counts[t]
		}
	}
	return best
}
