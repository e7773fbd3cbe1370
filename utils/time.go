package utils

import "time"

// TimeProvider interface for time operations
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider implements TimeProvider using actual system time
type RealTimeProvider struct{}

func (p RealTimeProvider) Now() time.Time {
	return time.Now()
}

// FixedTimeProvider advances by Step on every call, starting at Start.
type FixedTimeProvider struct {
	Start time.Time
	Step  time.Duration
	calls int
}

func (p *FixedTimeProvider) Now() time.Time {
	t := p.Start.Add(time.Duration(p.calls) * p.Step)
	p.calls++
	return t
}
