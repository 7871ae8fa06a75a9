package audio

import (
	"encoding/binary"
)

const wavHeaderSize = 44

// EncodeWAV serializes interleaved float samples into a PCM WAV container.
// Samples are clamped to [-1, 1] and scaled asymmetrically into int16
// (negatives by 32768, non-negatives by 32767) so a full-scale positive
// sample cannot overflow.
func EncodeWAV(samples []float64) []byte {
	dataSize := len(samples) * (BitDepth / 8)
	buf := make([]byte, wavHeaderSize+dataSize)

	blockAlign := Channels * BitDepth / 8
	byteRate := SampleRate * blockAlign

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16) // размер fmt-блока
	binary.LittleEndian.PutUint16(buf[20:22], 1)  // PCM
	binary.LittleEndian.PutUint16(buf[22:24], Channels)
	binary.LittleEndian.PutUint32(buf[24:28], SampleRate)
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], BitDepth)

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		var v int16
		if s < 0 {
			v = int16(s * 32768)
		} else {
			v = int16(s * 32767)
		}
		binary.LittleEndian.PutUint16(buf[wavHeaderSize+i*2:], uint16(v))
	}

	return buf
}

// WAVDurationMs reports the duration of an EncodeWAV result.
func WAVDurationMs(wav []byte) float64 {
	if len(wav) < wavHeaderSize {
		return 0
	}
	dataSize := len(wav) - wavHeaderSize
	frames := dataSize / (Channels * BitDepth / 8)
	return float64(frames) / SampleRate * 1000
}
