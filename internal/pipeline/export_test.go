package pipeline

// Test exports for internal state.

// Batches returns the number of notification batches handled.
func (l *Live) Batches() int {
	return l.batches
}
