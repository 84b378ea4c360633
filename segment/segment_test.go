package segment

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maastricht-university/audiosort/audio"
	"github.com/maastricht-university/audiosort/logging"
	"github.com/maastricht-university/audiosort/storage"
)

const testRate = 100

func writeConst(t *testing.T, s *storage.Store, path string, seconds float64, rate int, value float64) {
	t.Helper()
	n := int(seconds * float64(rate))
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = value
	}
	require.NoError(t, audio.Save(s, path, &audio.Clip{Samples: samples, SampleRate: rate}))
}

func TestSeventeenSecondsWithPadding(t *testing.T) {
	s := storage.NewMem()
	writeConst(t, s, "in/bark/a.wav", 10, testRate, 0.25)
	writeConst(t, s, "in/bark/b.wav", 7, testRate, -0.5)

	res, err := NewEngine(s, logging.Discard()).Run("in", "out", Options{Length: 6, KeepRemaining: true})
	require.NoError(t, err)
	require.Len(t, res, 1)
	require.Len(t, res[0].Segments, 3)
	assert.InDelta(t, 17.0, res[0].Seconds, 1e-9)
	assert.Equal(t, 2, res[0].Files)

	files, err := s.Files("out/bark", ".wav")
	require.NoError(t, err)
	assert.Equal(t, []string{"combined_1.wav", "combined_2.wav", "combined_3.wav"}, files)

	for i, seg := range res[0].Segments {
		assert.Equal(t, i+1, seg.Index)
		assert.Equal(t, i == 2, seg.Padded)
		clip, err := audio.Load(s, seg.Path)
		require.NoError(t, err)
		assert.Len(t, clip.Samples, 600)
		assert.Equal(t, testRate, clip.SampleRate)
	}

	// second segment straddles the two files in sorted order
	second, err := audio.Load(s, filepath.Join("out", "bark", "combined_2.wav"))
	require.NoError(t, err)
	assert.InDelta(t, 0.25, second.Samples[0], 1e-4)
	assert.InDelta(t, -0.5, second.Samples[599], 1e-4)

	last, err := audio.Load(s, filepath.Join("out", "bark", "combined_3.wav"))
	require.NoError(t, err)
	assert.InDelta(t, -0.5, last.Samples[499], 1e-4)
	assert.Equal(t, 0.0, last.Samples[500])
	assert.Equal(t, 0.0, last.Samples[599])
}

func TestSeventeenSecondsWithoutPadding(t *testing.T) {
	s := storage.NewMem()
	writeConst(t, s, "in/bark/a.wav", 17, testRate, 0.1)

	res, err := NewEngine(s, logging.Discard()).Run("in", "out", Options{Length: 6})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Len(t, res[0].Segments, 2)

	files, err := s.Files("out/bark", ".wav")
	require.NoError(t, err)
	assert.Equal(t, []string{"combined_1.wav", "combined_2.wav"}, files)
}

func TestExactMultipleHasNoPaddedSegment(t *testing.T) {
	s := storage.NewMem()
	writeConst(t, s, "in/x/a.wav", 12, testRate, 0.1)

	res, err := NewEngine(s, logging.Discard()).Run("in", "out", Options{Length: 6, KeepRemaining: true, Prefix: "seg"})
	require.NoError(t, err)
	require.Len(t, res[0].Segments, 2)
	assert.False(t, res[0].Segments[1].Padded)
	assert.Equal(t, filepath.Join("out", "x", "seg_2.wav"), res[0].Segments[1].Path)
}

func TestRateMismatchAborts(t *testing.T) {
	s := storage.NewMem()
	writeConst(t, s, "in/x/a.wav", 1, 100, 0.1)
	writeConst(t, s, "in/x/b.wav", 1, 200, 0.1)

	_, err := NewEngine(s, logging.Discard()).Run("in", "out", Options{Length: 0.5})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRateMismatch))

	var rme *RateMismatchError
	require.True(t, errors.As(err, &rme))
	assert.Equal(t, "x", rme.Class)
	assert.Equal(t, "b.wav", rme.File)
	assert.Equal(t, 100, rme.Want)
	assert.Equal(t, 200, rme.Got)

	ok, err := s.Exists("out/x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSkipsEmptyClassesAndStrayFiles(t *testing.T) {
	s := storage.NewMem()
	require.NoError(t, s.MkdirAll("in/empty"))
	require.NoError(t, s.WriteFile("in/notes.txt", []byte("x")))
	writeConst(t, s, "in/full/a.wav", 2, testRate, 0.1)

	res, err := NewEngine(s, logging.Discard()).Run("in", "out", Options{Length: 1})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "full", res[0].Class)

	ok, err := s.Exists("out/empty")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInvalidLength(t *testing.T) {
	s := storage.NewMem()
	writeConst(t, s, "in/x/a.wav", 1, testRate, 0.1)
	e := NewEngine(s, logging.Discard())

	_, err := e.Run("in", "out", Options{Length: 0})
	assert.ErrorIs(t, err, ErrInvalidLength)

	_, err = e.Run("in", "out", Options{Length: 0.001})
	assert.ErrorIs(t, err, ErrInvalidLength)
}

func TestSegmentSizeIsRounded(t *testing.T) {
	s := storage.NewMem()
	writeConst(t, s, "in/x/a.wav", 1, testRate, 0.1)

	// 0.333s at 100 Hz rounds to 33 samples: 3 full segments, 1 sample left
	res, err := NewEngine(s, logging.Discard()).Run("in", "out", Options{Length: 0.333, KeepRemaining: true})
	require.NoError(t, err)
	require.Len(t, res[0].Segments, 4)
	clip, err := audio.Load(s, res[0].Segments[3].Path)
	require.NoError(t, err)
	assert.Len(t, clip.Samples, 33)
}

func TestChunk(t *testing.T) {
	in := []float64{1, 2, 3, 4, 5}
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, Chunk(in, 2, false))
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}, {5, 0}}, Chunk(in, 2, true))
	assert.Equal(t, [][]float64{{1, 2, 3, 4, 5, 0}}, Chunk(in, 6, true))
	assert.Empty(t, Chunk(in, 6, false))
	assert.Nil(t, Chunk(in, 0, true))
	assert.Empty(t, Chunk(nil, 3, true))
}
