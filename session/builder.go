package session

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/audiosort/storage"
)

// Builder draws a balanced, shuffled session from a dataset root holding one
// directory per class and materializes it into a scratch directory.
type Builder struct {
	store   *storage.Store
	dataset string
	scratch string
	rng     *rand.Rand
	log     logrus.FieldLogger
}

func NewBuilder(store *storage.Store, dataset, scratch string, rng *rand.Rand, log logrus.FieldLogger) *Builder {
	return &Builder{store: store, dataset: dataset, scratch: scratch, rng: rng, log: log}
}

func (b *Builder) Build(classes []string, perClass int, buckets []string) (*Session, error) {
	if err := checkRequest(classes, perClass, buckets); err != nil {
		return nil, err
	}

	pools := make([][]string, len(classes))
	for i, class := range classes {
		files, err := b.store.Files(filepath.Join(b.dataset, class), AudioExt)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", class, err)
		}
		if len(files) < perClass {
			return nil, &InsufficientSamplesError{Class: class, Have: len(files), Want: perClass}
		}
		pools[i] = files
	}

	// copies land in a staging dir so a failed build leaves the current
	// scratch files untouched
	staging := b.staging()
	if err := b.store.ResetDir(staging); err != nil {
		return nil, err
	}

	total := len(classes) * perClass
	tokens := make([]string, total)
	for i, j := range b.rng.Perm(total) {
		tokens[i] = strconv.Itoa(j + 1)
	}

	s := newSession(buckets, b.scratch)
	counter := 0
	for i, class := range classes {
		pool := pools[i]
		for _, pick := range b.rng.Perm(len(pool))[:perClass] {
			src := filepath.Join(b.dataset, class, pool[pick])
			id := strconv.Itoa(counter+1) + AudioExt
			if err := b.store.Copy(src, filepath.Join(staging, id)); err != nil {
				_ = b.store.RemoveAll(staging)
				return nil, err
			}
			s.add(Sample{ID: id, TrueLabel: buckets[i], Token: tokens[counter], Source: src})
			counter++
		}
		b.log.WithFields(logrus.Fields{"class": class, "label": buckets[i], "available": len(pool)}).Debug("sampled class")
	}

	if err := b.promote(staging, s); err != nil {
		return nil, err
	}

	b.rng.Shuffle(len(s.Samples), func(i, j int) {
		s.Samples[i], s.Samples[j] = s.Samples[j], s.Samples[i]
	})
	b.log.WithField("samples", s.Len()).Info("session ready")
	return s, nil
}

// promote replaces the scratch contents with the staged copies.
func (b *Builder) promote(staging string, s *Session) error {
	if err := b.store.ResetDir(b.scratch); err != nil {
		return err
	}
	for _, smp := range s.Samples {
		if err := b.store.Rename(filepath.Join(staging, smp.ID), filepath.Join(b.scratch, smp.ID)); err != nil {
			return err
		}
	}
	return b.store.RemoveAll(staging)
}

func (b *Builder) staging() string {
	return filepath.Clean(b.scratch) + ".next"
}

// Clear removes the scratch directory and everything in it.
func (b *Builder) Clear() error {
	if err := b.store.RemoveAll(b.staging()); err != nil {
		return err
	}
	return b.store.RemoveAll(b.scratch)
}

func checkRequest(classes []string, perClass int, buckets []string) error {
	switch {
	case len(classes) == 0:
		return fmt.Errorf("%w: no classes", ErrInvalidRequest)
	case perClass < 1:
		return fmt.Errorf("%w: samples per class must be positive, got %d", ErrInvalidRequest, perClass)
	case len(buckets) > MaxBuckets:
		return fmt.Errorf("%w: %d buckets, at most %d", ErrInvalidRequest, len(buckets), MaxBuckets)
	case len(classes) > len(buckets):
		return fmt.Errorf("%w: %d classes but only %d buckets", ErrInvalidRequest, len(classes), len(buckets))
	}
	seen := map[string]bool{}
	for _, b := range buckets {
		if seen[b] {
			return fmt.Errorf("%w: duplicate bucket %q", ErrInvalidRequest, b)
		}
		seen[b] = true
	}
	return nil
}
