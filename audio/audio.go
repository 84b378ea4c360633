package audio

import (
	"errors"
	"fmt"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/maastricht-university/audiosort/storage"
)

const (
	pcmFormat    = 1
	outBitDepth  = 16
	outMaxSample = 1<<(outBitDepth-1) - 1
)

var ErrUnsupported = errors.New("unsupported wav encoding")

// Clip is mono PCM in [-1, 1] at a fixed sample rate.
type Clip struct {
	Samples    []float64
	SampleRate int
}

func (c *Clip) Duration() float64 {
	if c.SampleRate == 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// Load decodes a PCM WAV file and downmixes it to mono.
func Load(s *storage.Store, path string) (*Clip, error) {
	f, err := s.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("decode %s: not a valid wav file", path)
	}
	if d.WavAudioFormat != pcmFormat {
		return nil, fmt.Errorf("decode %s: format %d: %w", path, d.WavAudioFormat, ErrUnsupported)
	}
	switch d.BitDepth {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("decode %s: %d-bit: %w", path, d.BitDepth, ErrUnsupported)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	channels := int(d.NumChans)
	if channels < 1 {
		channels = 1
	}
	scale := float64(int64(1) << (d.BitDepth - 1))
	frames := len(buf.Data) / channels
	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			sum += float64(buf.Data[i*channels+ch])
		}
		mono[i] = sum / float64(channels) / scale
	}

	return &Clip{Samples: mono, SampleRate: int(d.SampleRate)}, nil
}

// Save writes the clip as 16-bit mono PCM.
func Save(s *storage.Store, path string, c *Clip) error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("encode %s: invalid sample rate %d", path, c.SampleRate)
	}
	f, err := s.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	data := make([]int, len(c.Samples))
	for i, v := range c.Samples {
		v = math.Max(-1, math.Min(1, v))
		data[i] = int(math.Round(v * outMaxSample))
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: c.SampleRate},
		Data:           data,
		SourceBitDepth: outBitDepth,
	}

	enc := wav.NewEncoder(f, c.SampleRate, outBitDepth, 1, pcmFormat)
	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// Concat appends clips that share one sample rate.
func Concat(clips ...*Clip) []float64 {
	n := 0
	for _, c := range clips {
		n += len(c.Samples)
	}
	out := make([]float64, 0, n)
	for _, c := range clips {
		out = append(out, c.Samples...)
	}
	return out
}
