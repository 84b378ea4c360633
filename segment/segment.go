package segment

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/audiosort/audio"
	"github.com/maastricht-university/audiosort/storage"
)

const AudioExt = ".wav"

var (
	ErrRateMismatch  = errors.New("sample rate mismatch")
	ErrInvalidLength = errors.New("invalid segment length")
)

// RateMismatchError names the file whose rate differs from the first file of
// its class.
type RateMismatchError struct {
	Class string
	File  string
	Want  int
	Got   int
}

func (e *RateMismatchError) Error() string {
	return fmt.Sprintf("inconsistent sample rates in files of %s: %d vs %d for %s", e.Class, e.Want, e.Got, e.File)
}

func (e *RateMismatchError) Is(target error) bool { return target == ErrRateMismatch }

type Options struct {
	Length        float64 // seconds
	KeepRemaining bool    // pad and keep the trailing partial segment
	Prefix        string
}

// Segment is one written chunk.
type Segment struct {
	Class  string `json:"class"`
	Index  int    `json:"index"`
	Padded bool   `json:"padded"`
	Path   string `json:"path"`
}

type ClassResult struct {
	Class      string    `json:"class"`
	Files      int       `json:"files"`
	SampleRate int       `json:"sample_rate"`
	Seconds    float64   `json:"seconds"`
	Segments   []Segment `json:"segments"`
}

type Engine struct {
	store *storage.Store
	log   logrus.FieldLogger
}

func NewEngine(store *storage.Store, log logrus.FieldLogger) *Engine {
	return &Engine{store: store, log: log}
}

// Run concatenates each class directory under inputDir and re-chunks it into
// fixed-length files under outputDir/<class>.
func (e *Engine) Run(inputDir, outputDir string, opts Options) ([]ClassResult, error) {
	if opts.Length <= 0 || math.IsNaN(opts.Length) || math.IsInf(opts.Length, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLength, opts.Length)
	}
	if opts.Prefix == "" {
		opts.Prefix = "combined"
	}
	classes, err := e.store.Dirs(inputDir)
	if err != nil {
		return nil, err
	}
	if err := e.store.MkdirAll(outputDir); err != nil {
		return nil, err
	}

	var out []ClassResult
	for _, class := range classes {
		res, err := e.runClass(inputDir, outputDir, class, opts)
		if err != nil {
			return out, err
		}
		if res != nil {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (e *Engine) runClass(inputDir, outputDir, class string, opts Options) (*ClassResult, error) {
	log := e.log.WithField("class", class)
	dir := filepath.Join(inputDir, class)
	files, err := e.store.Files(dir, AudioExt)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		log.Debug("no audio, skipping")
		return nil, nil
	}

	clips := make([]*audio.Clip, 0, len(files))
	rate := 0
	for _, name := range files {
		clip, err := audio.Load(e.store, filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if rate == 0 {
			rate = clip.SampleRate
		} else if clip.SampleRate != rate {
			return nil, &RateMismatchError{Class: class, File: name, Want: rate, Got: clip.SampleRate}
		}
		clips = append(clips, clip)
	}
	full := audio.Concat(clips...)

	size := int(math.Round(opts.Length * float64(rate)))
	if size < 1 {
		return nil, fmt.Errorf("%w: %vs at %d Hz is under one sample", ErrInvalidLength, opts.Length, rate)
	}

	res := &ClassResult{
		Class:      class,
		Files:      len(files),
		SampleRate: rate,
		Seconds:    float64(len(full)) / float64(rate),
	}
	chunks := Chunk(full, size, opts.KeepRemaining)
	whole := len(full) / size
	for i, chunk := range chunks {
		seg := Segment{
			Class:  class,
			Index:  i + 1,
			Padded: i >= whole,
			Path:   filepath.Join(outputDir, class, opts.Prefix+"_"+strconv.Itoa(i+1)+AudioExt),
		}
		if err := audio.Save(e.store, seg.Path, &audio.Clip{Samples: chunk, SampleRate: rate}); err != nil {
			return nil, err
		}
		res.Segments = append(res.Segments, seg)
	}
	log.WithFields(logrus.Fields{"files": len(files), "segments": len(res.Segments)}).Info("segmented")
	return res, nil
}

// Chunk cuts samples into consecutive slices of size. A non-empty remainder
// is zero-padded to size when pad is set and dropped otherwise.
func Chunk(samples []float64, size int, pad bool) [][]float64 {
	if size < 1 {
		return nil
	}
	n := len(samples) / size
	out := make([][]float64, 0, n+1)
	for i := 0; i < n; i++ {
		out = append(out, samples[i*size:(i+1)*size])
	}
	if rest := len(samples) % size; rest > 0 && pad {
		last := make([]float64, size)
		copy(last, samples[n*size:])
		out = append(out, last)
	}
	return out
}
