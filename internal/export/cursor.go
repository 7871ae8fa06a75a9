package export

// sceneCursor maps absolute frame timestamps onto (scene index, intra-scene
// elapsed) pairs. The cursor only moves forward: the frame loop feeds it
// monotonically increasing times, so locating a frame is O(1) amortized
// over the whole export instead of a rescan per frame.
type sceneCursor struct {
	durations []float64 // per-scene effective durations, ms
	index     int
	cumStart  float64 // timeline start of the current scene, ms
}

func newSceneCursor(durations []float64) *sceneCursor {
	return &sceneCursor{durations: durations}
}

// Locate returns the scene owning the timestamp and the elapsed time within
// it. Times past the end clamp to the last scene.
func (c *sceneCursor) Locate(tMs float64) (int, float64) {
	for c.index < len(c.durations)-1 && tMs >= c.cumStart+c.durations[c.index] {
		c.cumStart += c.durations[c.index]
		c.index++
	}

	elapsed := tMs - c.cumStart
	if elapsed < 0 {
		elapsed = 0
	}
	if last := c.durations[c.index]; elapsed > last {
		elapsed = last
	}
	return c.index, elapsed
}
