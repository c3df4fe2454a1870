package clock

import "time"

// Clock supplies the current time to a single component. Instances are never
// shared between components; each unit receives its own from a Factory so
// time-dependent hooks can be driven independently.
type Clock interface {
	Now() time.Time
}

// Factory produces independent Clock instances, one per registered component.
type Factory interface {
	NewInstance() Clock
}

type WallClock struct{}

func NewWallClock() *WallClock { return &WallClock{} }

func (c *WallClock) Now() time.Time { return time.Now() }

type WallClockFactory struct{}

func NewWallClockFactory() *WallClockFactory { return &WallClockFactory{} }

func (f *WallClockFactory) NewInstance() Clock { return NewWallClock() }

// SimClock is a manually driven clock used for historical replay. It only
// moves when told to, which keeps backtests reproducible.
type SimClock struct {
	now time.Time
}

func NewSimClock(start time.Time) *SimClock {
	return &SimClock{now: start}
}

func (c *SimClock) Now() time.Time { return c.now }

func (c *SimClock) SetTime(t time.Time) { c.now = t }

func (c *SimClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type SimClockFactory struct {
	start time.Time
}

func NewSimClockFactory(start time.Time) *SimClockFactory {
	return &SimClockFactory{start: start}
}

func (f *SimClockFactory) NewInstance() Clock { return NewSimClock(f.start) }
