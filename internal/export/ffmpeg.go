package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ivlev/versus2video/internal/scene"
)

// renderStream is the fast path: one ffmpeg session consumes raw RGBA
// frames over stdin and encodes them in real time. Returns the path of the
// video-only container.
func (j *Job) renderStream(ctx context.Context, scenes []scene.Scene, durations []float64, width, height, fps, totalFrames int, encoderName string, quality int) (string, error) {
	videoPath := filepath.Join(j.tempDir, "video.mp4")

	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-framerate", fmt.Sprintf("%d", fps),
		"-i", "-",
		"-pix_fmt", "yuv420p",
		"-c:v", encoderName,
	}
	args = append(args, qualityArgs(encoderName, quality)...)
	args = append(args, videoPath)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return "", fmt.Errorf("stdin pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("ffmpeg start error: %w", err)
	}

	renderErr := j.renderFrames(ctx, scenes, durations, width, height, fps, totalFrames, func(frame *image.RGBA, _ int) error {
		_, err := stdin.Write(frame.Pix)
		return err
	})
	stdin.Close()

	waitErr := cmd.Wait()
	if renderErr != nil {
		return "", renderErr
	}
	if waitErr != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("ffmpeg encode error: %w\nLog: %s", waitErr, out.String())
	}

	return videoPath, nil
}

// muxStream finalizes the fast path: with audio the video stream is copied
// untouched and the audio encoded; without audio the captured stream is
// already the final container.
func (j *Job) muxStream(ctx context.Context, videoPath, audioPath, finalPath string) error {
	if audioPath == "" {
		return os.Rename(videoPath, finalPath)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		finalPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg mux error: %w, output: %s", err, string(out))
	}
	return nil
}

// renderFrameSequence is the compatibility path: every frame goes to disk
// as a numbered PNG for a later re-encode. Returns the frame pattern path.
func (j *Job) renderFrameSequence(ctx context.Context, scenes []scene.Scene, durations []float64, width, height, fps, totalFrames int) (string, error) {
	framesDir := filepath.Join(j.tempDir, "frames")
	if err := os.MkdirAll(framesDir, 0755); err != nil {
		return "", err
	}

	err := j.renderFrames(ctx, scenes, durations, width, height, fps, totalFrames, func(frame *image.RGBA, index int) error {
		f, err := os.Create(filepath.Join(framesDir, fmt.Sprintf("f%06d.png", index)))
		if err != nil {
			return err
		}
		if err := png.Encode(f, frame); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	})
	if err != nil {
		return "", err
	}

	return filepath.Join(framesDir, "f%06d.png"), nil
}

// encodeFrameSequence feeds the PNG sequence (plus audio, if mixed) into a
// single libx264 invocation producing the final container.
func (j *Job) encodeFrameSequence(ctx context.Context, pattern, audioPath, finalPath string, fps, quality int) error {
	args := []string{
		"-y",
		"-framerate", fmt.Sprintf("%d", fps),
		"-i", pattern,
	}
	if audioPath != "" {
		args = append(args, "-i", audioPath, "-c:a", "aac", "-shortest")
	}
	args = append(args,
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
	)
	args = append(args, qualityArgs("libx264", quality)...)
	args = append(args, finalPath)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg sequence encode error: %w, output: %s", err, string(out))
	}
	return nil
}
