package dataset

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/audiosort/storage"
)

const (
	AudioExt = ".wav"
	TrainDir = "train"
	TestDir  = "test"
)

var ErrInvalidRatio = errors.New("train ratio must be within [0, 1]")

type SplitResult struct {
	Class string   `json:"class"`
	Train []string `json:"train"`
	Test  []string `json:"test"`
}

type ClassCount struct {
	Class string `json:"class"`
	Train int    `json:"train"`
	Test  int    `json:"test"`
}

type PruneResult struct {
	Kept    []ClassCount `json:"kept"`
	Removed []ClassCount `json:"removed"`
}

// RenameResult maps old class names to canonical names, per tree.
type RenameResult struct {
	Train map[string]string `json:"train"`
	Test  map[string]string `json:"test"`
}

// Aligned reports whether every class got the same canonical name in both trees.
func (r RenameResult) Aligned() bool {
	if len(r.Train) != len(r.Test) {
		return false
	}
	for old, name := range r.Train {
		if r.Test[old] != name {
			return false
		}
	}
	return true
}

type Stage struct {
	store *storage.Store
	log   logrus.FieldLogger
}

func NewStage(store *storage.Store, log logrus.FieldLogger) *Stage {
	return &Stage{store: store, log: log}
}

// Split copies each class of inputDir into outputDir/train and outputDir/test.
// Files are shuffled with a generator seeded once from seed and cut at
// floor(ratio*count).
func (s *Stage) Split(inputDir, outputDir string, ratio float64, seed int64) ([]SplitResult, error) {
	if math.IsNaN(ratio) || ratio < 0 || ratio > 1 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRatio, ratio)
	}
	classes, err := s.store.Dirs(inputDir)
	if err != nil {
		return nil, err
	}
	for _, sub := range []string{TrainDir, TestDir} {
		if err := s.store.MkdirAll(filepath.Join(outputDir, sub)); err != nil {
			return nil, err
		}
	}

	rng := rand.New(rand.NewSource(seed))
	var out []SplitResult
	for _, class := range classes {
		files, err := s.store.Files(filepath.Join(inputDir, class), AudioExt)
		if err != nil {
			return out, err
		}
		rng.Shuffle(len(files), func(i, j int) { files[i], files[j] = files[j], files[i] })
		cut := int(math.Floor(ratio * float64(len(files))))
		res := SplitResult{Class: class, Train: files[:cut], Test: files[cut:]}

		for sub, names := range map[string][]string{TrainDir: res.Train, TestDir: res.Test} {
			dst := filepath.Join(outputDir, sub, class)
			if err := s.store.MkdirAll(dst); err != nil {
				return out, err
			}
			for _, name := range names {
				if err := s.store.Copy(filepath.Join(inputDir, class, name), filepath.Join(dst, name)); err != nil {
					return out, err
				}
			}
		}
		s.log.WithFields(logrus.Fields{"class": class, "train": len(res.Train), "test": len(res.Test)}).Info("split")
		out = append(out, res)
	}
	return out, nil
}

// Prune removes, from both root/train and root/test, every class with fewer
// than minFiles items on either side. A class missing from one side counts
// as zero there.
func (s *Stage) Prune(root string, minFiles int) (PruneResult, error) {
	var res PruneResult
	trainRoot, testRoot := filepath.Join(root, TrainDir), filepath.Join(root, TestDir)

	trainClasses, err := s.classes(trainRoot)
	if err != nil {
		return res, err
	}
	testClasses, err := s.classes(testRoot)
	if err != nil {
		return res, err
	}
	all := union(trainClasses, testClasses)

	for _, class := range all {
		c := ClassCount{Class: class}
		if c.Train, err = s.count(trainRoot, class); err != nil {
			return res, err
		}
		if c.Test, err = s.count(testRoot, class); err != nil {
			return res, err
		}
		log := s.log.WithFields(logrus.Fields{"class": class, "train": c.Train, "test": c.Test})
		if c.Train < minFiles || c.Test < minFiles {
			for _, r := range []string{trainRoot, testRoot} {
				if err := s.store.RemoveAll(filepath.Join(r, class)); err != nil {
					return res, err
				}
			}
			log.Info("removed class with insufficient files")
			res.Removed = append(res.Removed, c)
			continue
		}
		log.Debug("class kept")
		res.Kept = append(res.Kept, c)
	}
	return res, nil
}

// RenameCanonical renames the classes of root/train and root/test to
// base_1..base_n. Each tree is numbered from its own sorted class list, so
// the two only line up when both trees hold the same classes.
func (s *Stage) RenameCanonical(root, base string) (RenameResult, error) {
	var res RenameResult
	var err error
	if res.Train, err = s.renameTree(filepath.Join(root, TrainDir), base); err != nil {
		return res, err
	}
	if res.Test, err = s.renameTree(filepath.Join(root, TestDir), base); err != nil {
		return res, err
	}
	if !res.Aligned() {
		s.log.WithFields(logrus.Fields{"train": len(res.Train), "test": len(res.Test)}).
			Warn("train and test class sets differ, canonical names are not aligned")
	}
	return res, nil
}

func (s *Stage) renameTree(dir, base string) (map[string]string, error) {
	classes, err := s.classes(dir)
	if err != nil {
		return nil, err
	}
	mapping := make(map[string]string, len(classes))
	tmp := make([]string, len(classes))
	// two phases so an existing base_k is never overwritten mid-rename
	for i, class := range classes {
		tmp[i] = filepath.Join(dir, ".rename-"+strconv.Itoa(i+1))
		if err := s.store.Rename(filepath.Join(dir, class), tmp[i]); err != nil {
			return nil, err
		}
	}
	for i, class := range classes {
		name := base + "_" + strconv.Itoa(i+1)
		if err := s.store.Rename(tmp[i], filepath.Join(dir, name)); err != nil {
			return nil, err
		}
		mapping[class] = name
	}
	if len(classes) > 0 {
		s.log.WithField("dir", dir).Infof("renamed classes %s_1 to %s_%d", base, base, len(classes))
	}
	return mapping, nil
}

// classes lists the class directories of a train or test tree. A missing
// tree is an error; only a missing class inside a tree counts as empty.
func (s *Stage) classes(dir string) ([]string, error) {
	ok, err := s.store.IsDir(dir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("tree %s: %w", dir, os.ErrNotExist)
	}
	return s.store.Dirs(dir)
}

func (s *Stage) count(root, class string) (int, error) {
	dir := filepath.Join(root, class)
	ok, err := s.store.IsDir(dir)
	if err != nil || !ok {
		return 0, err
	}
	files, err := s.store.Files(dir, AudioExt)
	return len(files), err
}

func union(a, b []string) []string {
	out := append(slices.Clone(a), b...)
	sort.Strings(out)
	return slices.Compact(out)
}
