// Package audio renders a project's audio tracks into one PCM mixdown. Each
// track is decoded to raw samples (via ffmpeg, the only codec dependency in
// the pipeline), scheduled on the timeline, summed, and serialized as a
// 16-bit stereo WAV spanning exactly the requested duration.
package audio

import (
	"context"
	"errors"
	"log"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/versus2video/internal/project"
)

const (
	SampleRate = 44100
	Channels   = 2
	BitDepth   = 16
)

// Decoder turns encoded audio bytes into interleaved stereo float samples
// in [-1, 1] at the mix sample rate.
type Decoder interface {
	Decode(ctx context.Context, data []byte) ([]float64, error)
}

// Mixer performs the offline multi-track mixdown. One mixer is created per
// export job and owns no global state.
type Mixer struct {
	Resolver project.Resolver
	Decoder  Decoder
}

func NewMixer(res project.Resolver, dec Decoder) *Mixer {
	return &Mixer{Resolver: res, Decoder: dec}
}

// Mix renders all tracks into a WAV container spanning totalDurationMs.
// Track failures (missing source, undecodable bytes) are logged and skipped:
// a single bad track never aborts the mix.
func (m *Mixer) Mix(ctx context.Context, tracks []project.AudioTrack, totalDurationMs int) ([]byte, error) {
	if totalDurationMs < 0 {
		totalDurationMs = 0
	}
	frames := int(math.Round(float64(totalDurationMs) / 1000 * SampleRate))
	mix := make([]float64, frames*Channels)

	// Декодируем дорожки параллельно, суммируем последовательно.
	decoded := make([][]float64, len(tracks))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for i := range tracks {
		i := i
		g.Go(func() error {
			samples, err := m.decodeTrack(gctx, &tracks[i])
			if err != nil {
				log.Printf("[!] Дорожка %s пропущена: %v", tracks[i].SourceRef, err)
				return nil
			}
			mu.Lock()
			decoded[i] = samples
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range tracks {
		if decoded[i] != nil {
			scheduleTrack(mix, decoded[i], &tracks[i])
		}
	}

	return EncodeWAV(mix), nil
}

func (m *Mixer) decodeTrack(ctx context.Context, track *project.AudioTrack) ([]float64, error) {
	data, err := m.Resolver.Resolve(track.SourceRef)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("источник не найден")
	}

	samples, err := m.Decoder.Decode(ctx, data)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, errors.New("пустой поток после декодирования")
	}
	return samples, nil
}

// scheduleTrack sums one decoded track into the mix buffer: started at the
// track's offset, looped if requested, stopped at the explicit duration (or
// the natural end), and always clipped to the mix window.
func scheduleTrack(mix []float64, samples []float64, track *project.AudioTrack) {
	startFrame := int(math.Round(float64(track.StartOffsetMs) / 1000 * SampleRate))

	endFrame := len(mix) / Channels
	if track.DurationMs > 0 {
		explicit := startFrame + int(math.Round(float64(track.DurationMs)/1000*SampleRate))
		if explicit < endFrame {
			endFrame = explicit
		}
	}

	trackFrames := len(samples) / Channels
	if trackFrames == 0 {
		return
	}
	if !track.Loop {
		natural := startFrame + trackFrames
		if natural < endFrame {
			endFrame = natural
		}
	}

	volume := track.Volume
	if volume <= 0 {
		return
	}

	for frame := startFrame; frame < endFrame; frame++ {
		if frame < 0 {
			continue
		}
		srcFrame := (frame - startFrame) % trackFrames
		for ch := 0; ch < Channels; ch++ {
			mix[frame*Channels+ch] += samples[srcFrame*Channels+ch] * volume
		}
	}
}
