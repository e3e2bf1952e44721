package audio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/Neroli1108/intellidoc-reader/pkg/errorsx"
	"github.com/Neroli1108/intellidoc-reader/pkg/speech"
)

// DecodeWAV parses a PCM WAV byte stream into normalized float samples.
// 8, 16 and 32-bit sample widths are supported.
func DecodeWAV(data []byte) (speech.AudioData, error) {
	if len(data) < 44 {
		return speech.AudioData{}, errorsx.New(errorsx.ReasonAudio, "wav too short")
	}
	if !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		return speech.AudioData{}, errorsx.New(errorsx.ReasonAudio, "not a RIFF/WAVE stream")
	}

	pos := 12
	sampleRate := 22050
	channels := 1
	bitsPerSample := 16

	for pos+8 <= len(data) {
		chunkID := data[pos : pos+4]
		chunkSize := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))

		switch {
		case bytes.Equal(chunkID, []byte("fmt ")):
			if pos+24 > len(data) {
				return speech.AudioData{}, errorsx.New(errorsx.ReasonAudio, "truncated fmt chunk")
			}
			channels = int(binary.LittleEndian.Uint16(data[pos+10 : pos+12]))
			sampleRate = int(binary.LittleEndian.Uint32(data[pos+12 : pos+16]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[pos+22 : pos+24]))

		case bytes.Equal(chunkID, []byte("data")):
			start := pos + 8
			end := start + chunkSize
			if end > len(data) {
				end = len(data)
			}
			samples, err := decodePCM(data[start:end], bitsPerSample)
			if err != nil {
				return speech.AudioData{}, err
			}
			if channels <= 0 {
				channels = 1
			}
			return speech.AudioData{
				Samples:    samples,
				SampleRate: sampleRate,
				Channels:   channels,
			}, nil
		}

		pos += 8 + chunkSize
		if chunkSize%2 == 1 {
			pos++
		}
	}

	return speech.AudioData{}, errorsx.New(errorsx.ReasonAudio, "no data chunk found")
}

func decodePCM(raw []byte, bitsPerSample int) ([]float32, error) {
	switch bitsPerSample {
	case 16:
		return PCM16LEToF32(raw), nil
	case 8:
		out := make([]float32, len(raw))
		for i, b := range raw {
			out[i] = (float32(b) - 128) / 128
		}
		return out, nil
	case 32:
		out := make([]float32, 0, len(raw)/4)
		for i := 0; i+3 < len(raw); i += 4 {
			bits := binary.LittleEndian.Uint32(raw[i : i+4])
			out = append(out, math.Float32frombits(bits))
		}
		return out, nil
	default:
		return nil, errorsx.Errorf(errorsx.ReasonAudio, "unsupported bits per sample: %d", bitsPerSample)
	}
}

// ReadWAVFile loads and decodes a WAV file.
func ReadWAVFile(path string) (speech.AudioData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return speech.AudioData{}, errorsx.Wrap(err, errorsx.ReasonIO)
	}
	return DecodeWAV(data)
}

// EncodeWAV wraps normalized float samples in a 16-bit PCM WAV container.
func EncodeWAV(data speech.AudioData) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeWAV(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteWAVFile writes normalized float samples as a 16-bit PCM WAV file.
func WriteWAVFile(path string, data speech.AudioData) error {
	f, err := os.Create(path)
	if err != nil {
		return errorsx.Wrap(err, errorsx.ReasonIO)
	}
	defer f.Close()
	return writeWAV(f, data)
}

func writeWAV(out io.Writer, data speech.AudioData) error {
	const bitsPerSample = 16
	sampleRate := data.SampleRate
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	channels := data.Channels
	if channels <= 0 {
		channels = 1
	}

	pcm := F32ToPCM16LE(data.Samples)
	dataSize := uint32(len(pcm))
	byteRate := uint32(sampleRate * channels * bitsPerSample / 8)
	blockAlign := uint16(channels * bitsPerSample / 8)

	w := bufio.NewWriter(out)
	if _, err := w.WriteString("RIFF"); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(36)+dataSize); err != nil {
		return err
	}
	if _, err := w.WriteString("WAVE"); err != nil {
		return err
	}
	if _, err := w.WriteString("fmt "); err != nil {
		return err
	}
	for _, v := range []any{uint32(16), uint16(1), uint16(channels), uint32(sampleRate), byteRate, blockAlign, uint16(bitsPerSample)} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if _, err := w.WriteString("data"); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, dataSize); err != nil {
		return err
	}
	if _, err := w.Write(pcm); err != nil {
		return err
	}
	return w.Flush()
}
