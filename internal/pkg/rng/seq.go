package rng

// SeqSource replays fixed sequences of draws. It exists so game logic can
// be exercised against known outcomes; it is not suitable for wagering.
type SeqSource struct {
	Ints   []int
	Floats []float64

	intPos   int
	floatPos int
}

// Int returns the next queued integer clamped into [min, max].
// An exhausted queue keeps returning min.
func (s *SeqSource) Int(min, max int) (int, error) {
	if max < min {
		return 0, ErrInvalidRange
	}
	if s.intPos >= len(s.Ints) {
		return min, nil
	}
	v := s.Ints[s.intPos]
	s.intPos++
	if v < min {
		v = min
	}
	if v > max {
		v = max
	}
	return v, nil
}

// Float returns the next queued float, or 0 once the queue is exhausted.
func (s *SeqSource) Float() float64 {
	if s.floatPos >= len(s.Floats) {
		return 0
	}
	v := s.Floats[s.floatPos]
	s.floatPos++
	return v
}
