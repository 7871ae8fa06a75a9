package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os/exec"
)

// FFmpegDecoder decodes any ffmpeg-supported audio format to raw samples by
// piping the source bytes through stdin and reading interleaved s16le from
// stdout — no temporary files.
type FFmpegDecoder struct{}

func (d *FFmpegDecoder) Decode(ctx context.Context, data []byte) ([]float64, error) {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner", "-loglevel", "error",
		"-i", "-",
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", fmt.Sprintf("%d", SampleRate),
		"-ac", fmt.Sprintf("%d", Channels),
		"-",
	)
	cmd.Stdin = bytes.NewReader(data)

	var out bytes.Buffer
	var errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg decode error: %w (%s)", err, errOut.String())
	}

	raw := out.Bytes()
	samples := make([]float64, len(raw)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		samples[i] = float64(v) / 32768
	}
	return samples, nil
}
