// Package playback drives the interactive preview clock over a generated
// scene list. The player is single-threaded and cooperative: the owner calls
// Tick from its frame callback, and stopping the callback is the only
// cancellation needed.
package playback

import (
	"github.com/ivlev/versus2video/internal/scene"
)

// Player is the virtual clock over a scene list. Not safe for concurrent
// use; it is designed for one frame-callback goroutine.
type Player struct {
	scenes    []scene.Scene
	durations []float64 // effective per-scene durations in ms, unscaled

	currentIndex   int
	sceneElapsedMs float64
	isPlaying      bool
	speed          float64
}

// New builds a player over the enabled scenes of the given list.
func New(scenes []scene.Scene) *Player {
	enabled := scene.EnabledScenes(scenes)
	durations := make([]float64, len(enabled))
	for i := range enabled {
		durations[i] = float64(scene.Resolve(&enabled[i]).DurationMs)
	}
	return &Player{
		scenes:    enabled,
		durations: durations,
		speed:     1.0,
	}
}

// scaledDuration is the wall-clock duration of scene i at the current speed.
func (p *Player) scaledDuration(i int) float64 {
	return p.durations[i] / p.speed
}

// TotalDurationMs is the wall-clock length of the whole timeline at the
// current speed.
func (p *Player) TotalDurationMs() float64 {
	total := 0.0
	for i := range p.durations {
		total += p.scaledDuration(i)
	}
	return total
}

// OverallElapsedMs is the wall-clock position within the whole timeline.
func (p *Player) OverallElapsedMs() float64 {
	elapsed := p.sceneElapsedMs
	for i := 0; i < p.currentIndex; i++ {
		elapsed += p.scaledDuration(i)
	}
	return elapsed
}

func (p *Player) CurrentIndex() int       { return p.currentIndex }
func (p *Player) SceneElapsedMs() float64 { return p.sceneElapsedMs }
func (p *Player) IsPlaying() bool         { return p.isPlaying }
func (p *Player) Speed() float64          { return p.speed }
func (p *Player) SceneCount() int         { return len(p.scenes) }

// CurrentScene returns the scene under the playhead, or nil for an empty list.
func (p *Player) CurrentScene() *scene.Scene {
	if len(p.scenes) == 0 {
		return nil
	}
	return &p.scenes[p.currentIndex]
}

func (p *Player) Play() {
	if len(p.scenes) == 0 {
		return
	}
	p.isPlaying = true
}

func (p *Player) Pause() {
	p.isPlaying = false
}

func (p *Player) Toggle() {
	if p.isPlaying {
		p.Pause()
	} else {
		p.Play()
	}
}

// Tick advances the clock by deltaMs of wall time. Only effective while
// playing. When the current scene's duration is exhausted the player moves
// to the next scene; at the end of the last scene it stops and clamps.
func (p *Player) Tick(deltaMs float64) {
	if !p.isPlaying || len(p.scenes) == 0 || deltaMs <= 0 {
		return
	}

	p.sceneElapsedMs += deltaMs
	for p.sceneElapsedMs >= p.scaledDuration(p.currentIndex) {
		if p.currentIndex == len(p.scenes)-1 {
			p.sceneElapsedMs = p.scaledDuration(p.currentIndex)
			p.isPlaying = false
			return
		}
		p.sceneElapsedMs -= p.scaledDuration(p.currentIndex)
		p.currentIndex++
	}
}

// Next jumps to the start of the following scene.
func (p *Player) Next() {
	if p.currentIndex < len(p.scenes)-1 {
		p.currentIndex++
	}
	p.sceneElapsedMs = 0
}

// Prev jumps to the start of the previous scene.
func (p *Player) Prev() {
	if p.currentIndex > 0 {
		p.currentIndex--
	}
	p.sceneElapsedMs = 0
}

// Seek maps percent (0..100) of the total duration onto the owning scene and
// intra-scene offset by a linear scan over cumulative durations. Idempotent;
// out-of-range values clamp to the timeline bounds.
func (p *Player) Seek(percent float64) {
	if len(p.scenes) == 0 {
		return
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	target := percent / 100 * p.TotalDurationMs()
	for i := range p.scenes {
		d := p.scaledDuration(i)
		if target < d || i == len(p.scenes)-1 {
			p.currentIndex = i
			if target > d {
				target = d
			}
			p.sceneElapsedMs = target
			return
		}
		target -= d
	}
}

// SetSpeed rescales all subsequent scene durations by 1/s. Already-elapsed
// time within the current scene is kept as-is.
func (p *Player) SetSpeed(s float64) {
	if s <= 0 {
		return
	}
	p.speed = s
}
