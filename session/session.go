package session

import (
	"errors"
	"fmt"
	"path/filepath"
)

// MaxBuckets bounds the bucket set so that scoring can enumerate every
// permutation of it.
const MaxBuckets = 6

const AudioExt = ".wav"

var (
	ErrInsufficientSamples = errors.New("insufficient samples")
	ErrInvalidRequest      = errors.New("invalid session request")
)

// InsufficientSamplesError names the first class that cannot supply the
// requested number of samples.
type InsufficientSamplesError struct {
	Class string
	Have  int
	Want  int
}

func (e *InsufficientSamplesError) Error() string {
	return fmt.Sprintf("class %q has only %d audio files, but %d samples are requested", e.Class, e.Have, e.Want)
}

func (e *InsufficientSamplesError) Is(target error) bool { return target == ErrInsufficientSamples }

// Sample is one clip of a session. ID is the scratch file name, Token is what
// the player sees.
type Sample struct {
	ID        string
	TrueLabel string
	Token     string
	Source    string
}

type Session struct {
	Samples    []Sample
	TrueLabels map[string]string // sample ID -> bucket label of its class
	Tokens     map[string]string // sample ID -> display token
	Buckets    []string
	ScratchDir string

	byToken map[string]string
}

func newSession(buckets []string, scratch string) *Session {
	return &Session{
		TrueLabels: map[string]string{},
		Tokens:     map[string]string{},
		Buckets:    append([]string(nil), buckets...),
		ScratchDir: scratch,
		byToken:    map[string]string{},
	}
}

func (s *Session) add(smp Sample) {
	s.Samples = append(s.Samples, smp)
	s.TrueLabels[smp.ID] = smp.TrueLabel
	s.Tokens[smp.ID] = smp.Token
	s.byToken[smp.Token] = smp.ID
}

// SampleID resolves a display token.
func (s *Session) SampleID(token string) (string, bool) {
	id, ok := s.byToken[token]
	return id, ok
}

// Path is the scratch copy of a sample.
func (s *Session) Path(id string) string { return filepath.Join(s.ScratchDir, id) }

func (s *Session) IDs() []string {
	ids := make([]string, len(s.Samples))
	for i, smp := range s.Samples {
		ids[i] = smp.ID
	}
	return ids
}

func (s *Session) Len() int { return len(s.Samples) }
