package testutil

// SequenceSource is a dice.Source that replays a fixed script of values.
// Each call returns the next scripted value modulo n; the script wraps.
// It lets tests force specific draws, faces, and trigger outcomes.
type SequenceSource struct {
	vals []int
	pos  int
}

// NewSequenceSource returns a SequenceSource over vals.
//
// Precondition: len(vals) > 0 and every value >= 0.
func NewSequenceSource(vals ...int) *SequenceSource {
	return &SequenceSource{vals: vals}
}

// Intn returns the next scripted value reduced into [0, n).
func (s *SequenceSource) Intn(n int) int {
	if n <= 0 {
		panic("testutil: Intn called with n <= 0")
	}
	v := s.vals[s.pos%len(s.vals)]
	s.pos++
	return v % n
}

// Calls returns how many values have been consumed.
func (s *SequenceSource) Calls() int { return s.pos }
