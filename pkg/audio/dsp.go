// Package audio bridges raw hardware audio to normalized float sample
// streams and back: microphone capture, speaker playback, sample-format
// conversion, resampling, voice-activity detection and ring buffering.
package audio

import "math"

// VADResult classifies a sample window as speech or silence.
type VADResult int

const (
	VADSilence VADResult = iota
	VADSpeech
)

func (v VADResult) String() string {
	if v == VADSpeech {
		return "speech"
	}
	return "silence"
}

// DetectVoiceActivity classifies a window as speech when its RMS energy
// exceeds threshold. Used for barge-in and session gating, not for
// full-duplex filtering.
func DetectVoiceActivity(samples []float32, threshold float32) VADResult {
	if len(samples) == 0 {
		return VADSilence
	}
	var sumSquares float64
	for _, s := range samples {
		sumSquares += float64(s) * float64(s)
	}
	rms := math.Sqrt(sumSquares / float64(len(samples)))
	if rms > float64(threshold) {
		return VADSpeech
	}
	return VADSilence
}

// Resample converts samples between sample rates by linear interpolation.
// The output length is round(len(samples) * toRate / fromRate).
func Resample(samples []float32, fromRate, toRate int) []float32 {
	if fromRate == toRate || fromRate <= 0 || toRate <= 0 || len(samples) == 0 {
		out := make([]float32, len(samples))
		copy(out, samples)
		return out
	}

	ratio := float64(toRate) / float64(fromRate)
	newLen := int(math.Round(float64(len(samples)) * ratio))
	out := make([]float32, 0, newLen)

	for i := 0; i < newLen; i++ {
		srcIdx := float64(i) / ratio
		idxFloor := int(srcIdx)
		idxCeil := idxFloor + 1
		if idxCeil > len(samples)-1 {
			idxCeil = len(samples) - 1
		}
		if idxFloor > len(samples)-1 {
			idxFloor = len(samples) - 1
		}
		frac := float32(srcIdx - float64(idxFloor))
		out = append(out, samples[idxFloor]*(1-frac)+samples[idxCeil]*frac)
	}
	return out
}

// StereoToMono averages interleaved sample pairs. An odd trailing sample is
// passed through unchanged.
func StereoToMono(samples []float32) []float32 {
	out := make([]float32, 0, (len(samples)+1)/2)
	for i := 0; i < len(samples); i += 2 {
		if i+1 < len(samples) {
			out = append(out, (samples[i]+samples[i+1])/2)
		} else {
			out = append(out, samples[i])
		}
	}
	return out
}

// Normalize scales samples in place by 1/max(|sample|), but only when that
// factor is finite and not already 1.
func Normalize(samples []float32) {
	var maxAbs float32
	for _, s := range samples {
		if a := float32(math.Abs(float64(s))); a > maxAbs {
			maxAbs = a
		}
	}
	if maxAbs > 0 && maxAbs != 1 {
		scale := 1 / maxAbs
		for i := range samples {
			samples[i] *= scale
		}
	}
}

// NoiseGate zeroes samples below threshold in place.
func NoiseGate(samples []float32, threshold float32) {
	for i, s := range samples {
		if float32(math.Abs(float64(s))) < threshold {
			samples[i] = 0
		}
	}
}

// F32ToI16 converts normalized float samples to 16-bit PCM.
func F32ToI16(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		out[i] = int16(s * 32767)
	}
	return out
}

// I16ToF32 converts 16-bit PCM to normalized float samples.
func I16ToF32(samples []int16) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s) / 32768
	}
	return out
}

// F32ToPCM16LE converts normalized float samples to little-endian 16-bit
// PCM bytes, the wire format expected by streaming STT backends.
func F32ToPCM16LE(samples []float32) []byte {
	ints := F32ToI16(samples)
	out := make([]byte, len(ints)*2)
	for i, s := range ints {
		out[i*2] = byte(s)
		out[i*2+1] = byte(uint16(s) >> 8)
	}
	return out
}

// PCM16LEToF32 converts little-endian 16-bit PCM bytes to normalized float
// samples. A trailing odd byte is ignored.
func PCM16LEToF32(data []byte) []float32 {
	out := make([]float32, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		s := int16(uint16(data[i]) | uint16(data[i+1])<<8)
		out = append(out, float32(s)/32768)
	}
	return out
}
