package ember

import "time"

// Clock tracks wall-clock time for the loop. Delta is measured in
// milliseconds between consecutive Update calls; Elapsed is the scaled
// length of the current fixed step in seconds, written by the loop before
// each World update.
type Clock struct {
	now func() time.Time

	// TimeScale multiplies Elapsed. 1 is real time, 0.5 is slow motion.
	TimeScale float64
	// Delta is the real time in milliseconds since the previous Update.
	Delta float64
	// Elapsed is the scaled duration of one fixed step, in seconds.
	Elapsed float64

	started time.Time
	last    time.Time
	frames  uint64

	fps         float64
	fpsFrames   int
	fpsSampleAt time.Time
}

func newClock(now func() time.Time, timeScale float64) *Clock {
	t := now()
	return &Clock{
		now:         now,
		TimeScale:   timeScale,
		started:     t,
		last:        t,
		fpsSampleAt: t,
	}
}

// Update samples the wall clock and computes Delta.
func (c *Clock) Update() {
	t := c.now()
	c.Delta = float64(t.Sub(c.last)) / float64(time.Millisecond)
	if c.Delta < 0 {
		c.Delta = 0
	}
	c.last = t
	c.frames++

	c.fpsFrames++
	if span := t.Sub(c.fpsSampleAt); span >= time.Second {
		c.fps = float64(c.fpsFrames) / span.Seconds()
		c.fpsFrames = 0
		c.fpsSampleAt = t
	}
}

// Resync moves the last sample to now so the next Update reports only the
// time since this call. Used when resuming from pause.
func (c *Clock) Resync() {
	t := c.now()
	c.last = t
	c.fpsFrames = 0
	c.fpsSampleAt = t
}

// Now returns the time of the most recent sample.
func (c *Clock) Now() time.Time {
	return c.last
}

// NowMS returns the most recent sample as milliseconds since the clock was created.
func (c *Clock) NowMS() float64 {
	return float64(c.last.Sub(c.started)) / float64(time.Millisecond)
}

// Frames returns the number of Update calls so far.
func (c *Clock) Frames() uint64 {
	return c.frames
}

// FPS returns the measured tick rate over the last full second.
func (c *Clock) FPS() float64 {
	return c.fps
}
