// Package export turns a project into a single media file. The frame loop
// is strictly sequential — frame N+1 never starts before frame N is fully
// composited — which keeps the output pixel-accurate and order-preserving.
// Only asset prefetches inside one scene run concurrently.
package export

import (
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ivlev/versus2video/internal/audio"
	"github.com/ivlev/versus2video/internal/compositor"
	"github.com/ivlev/versus2video/internal/project"
	"github.com/ivlev/versus2video/internal/scene"
	"github.com/ivlev/versus2video/internal/system"
)

// Format selects the encode path.
type Format string

const (
	// FormatFast streams raw frames into a single hardware-friendly encoder
	// session and muxes audio in with a stream copy.
	FormatFast Format = "fast"
	// FormatCompatible writes a PNG frame sequence and re-encodes it with
	// libx264/yuv420p for maximum player compatibility.
	FormatCompatible Format = "compatible"
)

// Options configure one export job.
type Options struct {
	Resolution string // 480p, 720p, 1080p
	FPS        int    // 30 or 60
	Format     Format
	Encoder    string // ffmpeg video encoder; autodetected when empty
	Quality    int    // 0 = per-encoder default
	ShowStats  bool
}

// Progress is one status update emitted by a running job.
type Progress struct {
	Percent    int
	StatusText string
}

// ProgressFunc receives progress updates. Called from the job goroutine.
type ProgressFunc func(Progress)

// Job is a single export session. It owns its compositor, mixer and temp
// directory; nothing survives the job.
type Job struct {
	Project    *project.Project
	Resolver   project.Resolver
	Options    Options
	OnProgress ProgressFunc

	id      string
	tempDir string
	comp    *compositor.Compositor
}

func NewJob(p *project.Project, res project.Resolver, opts Options) *Job {
	return &Job{
		Project:  p,
		Resolver: res,
		Options:  opts,
		id:       uuid.NewString(),
		comp:     compositor.New(),
	}
}

func (j *Job) progress(percent int, status string) {
	if j.OnProgress != nil {
		j.OnProgress(Progress{Percent: percent, StatusText: status})
	}
}

// Run renders every frame, mixes the audio and muxes the final container,
// returning the file bytes. Cancellation is polled once per frame boundary;
// on cancel the temp output is discarded and ctx.Err() is returned — the
// caller treats it as a clean abort, not a failure. Any encode/mux failure
// surfaces as one terminal error and no partial file is ever returned.
func (j *Job) Run(ctx context.Context) ([]byte, error) {
	startTime := time.Now()

	width, height, err := j.resolveDimensions()
	if err != nil {
		return nil, err
	}
	fps := j.Options.FPS
	if fps != 30 && fps != 60 {
		return nil, fmt.Errorf("неподдерживаемый FPS: %d", fps)
	}

	encoderName := j.Options.Encoder
	if encoderName == "" {
		encoderName, _ = system.GetBestH264Encoder()
	}
	quality := j.Options.Quality
	if quality == 0 {
		quality = defaultQuality(encoderName)
	}

	scenes := scene.EnabledScenes(scene.Generate(j.Project))
	if len(scenes) == 0 {
		return nil, fmt.Errorf("проект не содержит ни одной активной сцены")
	}

	durations := make([]float64, len(scenes))
	totalMs := 0.0
	for i := range scenes {
		durations[i] = float64(scene.Resolve(&scenes[i]).DurationMs)
		totalMs += durations[i]
	}
	totalFrames := int(math.Ceil(totalMs / 1000 * float64(fps)))

	system.CheckMemoryHeadroom(width, height, fps)

	j.tempDir, err = os.MkdirTemp("", "versus2video_")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(j.tempDir)

	fmt.Printf("[*] Экспорт %s: %dx%d @ %d FPS, %d кадров, %d сцен\n",
		j.id, width, height, fps, totalFrames, len(scenes))

	var renderEnd time.Time
	var framesPath string
	switch j.Options.Format {
	case FormatCompatible:
		framesPath, err = j.renderFrameSequence(ctx, scenes, durations, width, height, fps, totalFrames)
	default:
		framesPath, err = j.renderStream(ctx, scenes, durations, width, height, fps, totalFrames, encoderName, quality)
	}
	if err != nil {
		return nil, err
	}
	renderEnd = time.Now()

	// Аудио занимает хвост шкалы прогресса (90-95).
	var audioPath string
	if len(j.Project.Audio) > 0 {
		j.progress(90, "Микширование аудио")
		mixer := audio.NewMixer(j.Resolver, &audio.FFmpegDecoder{})
		wav, err := mixer.Mix(ctx, j.Project.Audio, int(totalMs))
		if err != nil {
			return nil, fmt.Errorf("ошибка микширования аудио: %w", err)
		}
		audioPath = filepath.Join(j.tempDir, "mix.wav")
		if err := os.WriteFile(audioPath, wav, 0644); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	j.progress(95, "Сборка контейнера")
	finalPath := filepath.Join(j.tempDir, "final.mp4")
	if j.Options.Format == FormatCompatible {
		err = j.encodeFrameSequence(ctx, framesPath, audioPath, finalPath, fps, quality)
	} else {
		err = j.muxStream(ctx, framesPath, audioPath, finalPath)
	}
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(finalPath)
	if err != nil {
		return nil, err
	}

	if j.Options.ShowStats {
		total := time.Since(startTime)
		fmt.Printf(
			"--- [PERFORMANCE REPORT] ---\n"+
				"Job: %s\n"+
				"Total Time: %.2fs\n"+
				"Rendering: %.2fs\n"+
				"Mix+Mux: %.2fs\n"+
				"Effective FPS: %.2f\n"+
				"----------------------------\n",
			j.id, total.Seconds(), renderEnd.Sub(startTime).Seconds(),
			time.Since(renderEnd).Seconds(), float64(totalFrames)/total.Seconds(),
		)
	}

	j.progress(100, "Готово")
	return data, nil
}

// renderFrames runs the shared frame loop, handing every finished RGBA
// frame to sink. Scene assets are prefetched once per scene entry, never
// per frame; the scene cursor advances monotonically.
func (j *Job) renderFrames(ctx context.Context, scenes []scene.Scene, durations []float64, width, height, fps, totalFrames int, sink func(frame *image.RGBA, index int) error) error {
	cursor := newSceneCursor(durations)
	frameDurMs := 1000.0 / float64(fps)

	var assets compositor.AssetMap
	currentScene := -1
	lastPercent := -1

	rect := image.Rect(0, 0, width, height)
	for i := 0; i < totalFrames; i++ {
		// Отмена проверяется только на границе кадра.
		if err := ctx.Err(); err != nil {
			return err
		}

		idx, elapsed := cursor.Locate(float64(i) * frameDurMs)
		if idx != currentScene {
			currentScene = idx
			eff := scene.Resolve(&scenes[idx])
			assets = compositor.Prefetch(ctx, &eff, j.Project, j.Resolver)
		}

		frame := system.GetImage(rect)
		j.comp.Render(frame, j.Project, &scenes[idx], elapsed, assets)
		err := sink(frame, i)
		system.PutImage(frame)
		if err != nil {
			return err
		}

		if percent := i * 90 / totalFrames; percent != lastPercent {
			lastPercent = percent
			j.progress(percent, fmt.Sprintf("Кадр %d/%d", i+1, totalFrames))
		}
	}

	return nil
}

func (j *Job) resolveDimensions() (int, int, error) {
	var width, height int
	switch j.Options.Resolution {
	case "480p":
		width, height = 854, 480
	case "720p", "":
		width, height = 1280, 720
	case "1080p":
		width, height = 1920, 1080
	default:
		return 0, 0, fmt.Errorf("неизвестное разрешение: %s", j.Options.Resolution)
	}

	switch j.Project.AspectRatioOverride {
	case "", "16:9":
	case "9:16":
		width, height = height, width
	case "1:1":
		width = height
	default:
		return 0, 0, fmt.Errorf("неизвестное соотношение сторон: %s", j.Project.AspectRatioOverride)
	}

	// Нечётные размеры ломают yuv420p.
	if width%2 != 0 {
		width++
	}
	if height%2 != 0 {
		height++
	}
	return width, height, nil
}

func defaultQuality(encoderName string) int {
	switch encoderName {
	case "h264_videotoolbox":
		return 75 // битрейт = Q*100 кбит/с
	case "h264_nvenc":
		return 28
	default:
		return 23 // CRF для x264
	}
}

func qualityArgs(encoderName string, quality int) []string {
	switch encoderName {
	case "h264_videotoolbox":
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default:
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}
