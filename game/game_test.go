package game

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maastricht-university/audiosort/drag"
	"github.com/maastricht-university/audiosort/logging"
	"github.com/maastricht-university/audiosort/playback"
	"github.com/maastricht-university/audiosort/session"
	"github.com/maastricht-university/audiosort/storage"
)

type failingPlayer struct{ calls int }

func (f *failingPlayer) Play(string) error { f.calls++; return errors.New("no audio device") }
func (f *failingPlayer) Stop() error       { return nil }

// flakyFs fails to open files under the failing prefix.
type flakyFs struct {
	afero.Fs
	failing string
}

func (f *flakyFs) Open(name string) (afero.File, error) {
	if f.failing != "" && strings.HasPrefix(name, f.failing) {
		return nil, &os.PathError{Op: "open", Path: name, Err: errors.New("io error")}
	}
	return f.Fs.Open(name)
}

func newTestGame(t *testing.T, p playback.Player, counts map[string]int) (*Game, *storage.Store) {
	t.Helper()
	s := storage.NewMem()
	for class, n := range counts {
		for i := 0; i < n; i++ {
			require.NoError(t, s.WriteFile(filepath.Join("dataset", class, fmt.Sprintf("%d.wav", i)), []byte(class)))
		}
	}
	b := session.NewBuilder(s, "dataset", "scratch", rand.New(rand.NewSource(5)), logging.Discard())
	g, err := New(b, p, Options{
		Classes:  []string{"dog_9", "dog_10"},
		PerClass: 3,
		Buckets:  []string{"A", "B"},
		Width:    1100,
		Layout:   drag.DefaultLayout(),
	}, logging.Discard())
	require.NoError(t, err)
	return g, s
}

func areaCenter(t *testing.T, g *Game, label string) drag.Point {
	t.Helper()
	for _, a := range g.Areas() {
		if a.Label == label {
			return a.Center()
		}
	}
	t.Fatalf("no area %s", label)
	return drag.Point{}
}

func TestDragTokensAndValidate(t *testing.T) {
	g, _ := newTestGame(t, &playback.Nop{}, map[string]int{"dog_9": 4, "dog_10": 4})
	sess := g.Session()
	require.Equal(t, 6, sess.Len())

	// put every sample in the bucket opposite its class
	for _, smp := range sess.Samples {
		slot := g.Slots()[smp.Token]
		require.True(t, g.Press(smp.Token, slot.Center()))
		target := "A"
		if smp.TrueLabel == "A" {
			target = "B"
		}
		g.Move(areaCenter(t, g, target))
		_, ok := g.Release(areaCenter(t, g, target))
		require.True(t, ok)
	}
	assert.Empty(t, g.Slots())

	res := g.Validate()
	assert.Equal(t, 6, res.BestMatch)
	assert.Equal(t, 6, res.Total)
	for _, fb := range res.Feedback {
		assert.False(t, fb.Correct)
	}
}

func TestReleaseOutsideUnassigns(t *testing.T) {
	g, _ := newTestGame(t, &playback.Nop{}, map[string]int{"dog_9": 3, "dog_10": 3})
	tok := g.Tokens()[0]

	g.Press(tok, drag.Point{})
	g.Release(areaCenter(t, g, "B"))
	b, ok := g.BucketOf(tok)
	require.True(t, ok)
	assert.Equal(t, "B", b)

	g.Press(tok, drag.Point{})
	g.Release(drag.Point{X: 1, Y: 1})
	_, ok = g.BucketOf(tok)
	assert.False(t, ok)
	assert.Contains(t, g.Slots(), tok)
}

func TestPressUnknownToken(t *testing.T) {
	g, _ := newTestGame(t, &playback.Nop{}, map[string]int{"dog_9": 3, "dog_10": 3})
	assert.False(t, g.Press("999", drag.Point{}))
	_, ok := g.Release(drag.Point{})
	assert.False(t, ok)
}

func TestResizeSuppressedDuringDragAndFeedback(t *testing.T) {
	g, _ := newTestGame(t, &playback.Nop{}, map[string]int{"dog_9": 3, "dog_10": 3})

	require.True(t, g.Resize(900))
	assert.Equal(t, 900, g.Width())

	g.Press(g.Tokens()[0], drag.Point{})
	assert.False(t, g.Resize(700))
	g.Release(drag.Point{})
	assert.Equal(t, 900, g.Width())

	g.Validate()
	assert.True(t, g.ShowingFeedback())
	assert.False(t, g.Resize(700))
	g.Dismiss()
	assert.True(t, g.Resize(700))
	assert.Equal(t, 700, g.Width())
}

func TestPlayUsesScratchCopy(t *testing.T) {
	p := &playback.Nop{}
	g, s := newTestGame(t, p, map[string]int{"dog_9": 3, "dog_10": 3})
	smp := g.Session().Samples[0]

	g.Play(smp.Token)
	assert.Equal(t, filepath.Join("scratch", smp.ID), p.Last)
	ok, err := s.Exists(p.Last)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPlaybackFailureIsSwallowed(t *testing.T) {
	p := &failingPlayer{}
	g, _ := newTestGame(t, p, map[string]int{"dog_9": 3, "dog_10": 3})
	g.Play(g.Tokens()[0])
	g.Play("unknown")
	assert.Equal(t, 1, p.calls)
}

func TestResetStartsFreshSession(t *testing.T) {
	p := &playback.Nop{}
	g, _ := newTestGame(t, p, map[string]int{"dog_9": 6, "dog_10": 6})
	g.Press(g.Tokens()[0], drag.Point{})
	g.Release(areaCenter(t, g, "A"))
	g.Validate()

	require.NoError(t, g.Reset())
	assert.Empty(t, g.Assignments())
	assert.False(t, g.ShowingFeedback())
	assert.False(t, g.Dragging())
	assert.Equal(t, 6, g.Session().Len())
	assert.Equal(t, 1, p.Stopped)
}

func TestCloseRemovesScratch(t *testing.T) {
	g, s := newTestGame(t, &playback.Nop{}, map[string]int{"dog_9": 3, "dog_10": 3})
	require.NoError(t, g.Close())
	ok, err := s.Exists("scratch")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewFailsOnInsufficientSamples(t *testing.T) {
	s := storage.NewMem()
	require.NoError(t, s.WriteFile("dataset/dog_9/a.wav", []byte("x")))
	require.NoError(t, s.MkdirAll("dataset/dog_10"))
	b := session.NewBuilder(s, "dataset", "scratch", rand.New(rand.NewSource(1)), logging.Discard())

	_, err := New(b, &playback.Nop{}, Options{
		Classes: []string{"dog_9", "dog_10"}, PerClass: 5, Buckets: []string{"A", "B"}, Layout: drag.DefaultLayout(),
	}, logging.Discard())
	assert.ErrorIs(t, err, session.ErrInsufficientSamples)
}

func TestFailedResetKeepsPreviousSessionPlayable(t *testing.T) {
	fs := &flakyFs{Fs: afero.NewMemMapFs()}
	s := storage.New(fs)
	for _, class := range []string{"dog_9", "dog_10"} {
		for i := 0; i < 4; i++ {
			path := filepath.Join("dataset", class, fmt.Sprintf("%d.wav", i))
			require.NoError(t, s.WriteFile(path, []byte(path)))
		}
	}
	b := session.NewBuilder(s, "dataset", "scratch", rand.New(rand.NewSource(5)), logging.Discard())
	g, err := New(b, &playback.Nop{}, Options{
		Classes:  []string{"dog_9", "dog_10"},
		PerClass: 3,
		Buckets:  []string{"A", "B"},
		Width:    1100,
		Layout:   drag.DefaultLayout(),
	}, logging.Discard())
	require.NoError(t, err)
	before := g.Session()

	fs.failing = filepath.Join("dataset", "dog_10") + string(filepath.Separator)
	require.Error(t, g.Reset())
	fs.failing = ""

	assert.Same(t, before, g.Session())
	for _, smp := range before.Samples {
		data, err := s.ReadFile(before.Path(smp.ID))
		require.NoError(t, err, smp.ID)
		assert.Equal(t, smp.Source, string(data), smp.ID)
	}
	ok, err := s.Exists("scratch.next")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, g.Reset())
	assert.NotSame(t, before, g.Session())
	ok, err = s.Exists("scratch.next")
	require.NoError(t, err)
	assert.False(t, ok)
	for _, smp := range g.Session().Samples {
		data, err := s.ReadFile(g.Session().Path(smp.ID))
		require.NoError(t, err)
		assert.Equal(t, smp.Source, string(data))
	}
}
