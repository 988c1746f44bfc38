package clock

import "time"

// Mock is a test double that allows controlling time explicitly, for
// deterministic tests of expiration and staleness logic elsewhere in the
// module. Unlike System, Mock is not safe for concurrent use: Advance must
// not run concurrently with Now or Since.
type Mock struct {
	currentTime time.Time
}

// NewMock creates a new Mock initialized to the given time.
func NewMock(t time.Time) *Mock {
	return &Mock{currentTime: t}
}

// Now returns the mock's current time.
func (m *Mock) Now() time.Time { return m.currentTime }

// Since returns the duration since the given time, as measured against the
// mock's current time.
func (m *Mock) Since(t time.Time) time.Duration { return m.currentTime.Sub(t) }

// Advance moves the mock's current time forward by d.
func (m *Mock) Advance(d time.Duration) { m.currentTime = m.currentTime.Add(d) }
