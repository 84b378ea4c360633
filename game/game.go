package game

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/audiosort/drag"
	"github.com/maastricht-university/audiosort/playback"
	"github.com/maastricht-university/audiosort/scoring"
	"github.com/maastricht-university/audiosort/session"
)

type Options struct {
	Classes  []string
	PerClass int
	Buckets  []string
	Width    int
	Layout   drag.Layout
}

// Game is the controller behind any front end. All calls are expected from a
// single event loop.
type Game struct {
	opts    Options
	builder *session.Builder
	player  playback.Player
	log     logrus.FieldLogger

	sess      *session.Session
	partition scoring.Partition
	drag      *drag.Machine
	width     int
	feedback  bool
}

func New(b *session.Builder, p playback.Player, opts Options, log logrus.FieldLogger) (*Game, error) {
	g := &Game{
		opts:      opts,
		builder:   b,
		player:    p,
		log:       log,
		partition: scoring.Partition{},
		drag:      drag.NewMachine(),
		width:     opts.Width,
	}
	sess, err := b.Build(opts.Classes, opts.PerClass, opts.Buckets)
	if err != nil {
		return nil, err
	}
	g.sess = sess
	return g, nil
}

func (g *Game) Session() *session.Session { return g.sess }

func (g *Game) Buckets() []string { return g.sess.Buckets }

// Assignments returns a copy of the current user partition.
func (g *Game) Assignments() scoring.Partition { return g.partition.Clone() }

func (g *Game) Dragging() bool { return g.drag.Active() }

func (g *Game) ShowingFeedback() bool { return g.feedback }

func (g *Game) Width() int { return g.width }

func (g *Game) Areas() []drag.Area {
	return g.opts.Layout.Areas(g.sess.Buckets, g.width)
}

// Slots positions the tokens of unassigned samples, keyed by token.
func (g *Game) Slots() map[string]drag.Rect {
	var ids []string
	for _, smp := range g.sess.Samples {
		if _, assigned := g.partition[smp.ID]; !assigned {
			ids = append(ids, smp.ID)
		}
	}
	byID := g.opts.Layout.Slots(ids, g.width)
	out := make(map[string]drag.Rect, len(byID))
	for id, r := range byID {
		out[g.sess.Tokens[id]] = r
	}
	return out
}

// Tokens lists display tokens in session order.
func (g *Game) Tokens() []string {
	out := make([]string, len(g.sess.Samples))
	for i, smp := range g.sess.Samples {
		out[i] = smp.Token
	}
	return out
}

// BucketOf reports the bucket a token currently sits in.
func (g *Game) BucketOf(token string) (string, bool) {
	id, ok := g.sess.SampleID(token)
	if !ok {
		return "", false
	}
	b, ok := g.partition[id]
	return b, ok
}

func (g *Game) Press(token string, at drag.Point) bool {
	id, ok := g.sess.SampleID(token)
	if !ok {
		return false
	}
	return g.drag.Press(id, at)
}

func (g *Game) Move(at drag.Point) { g.drag.Move(at) }

func (g *Game) Release(at drag.Point) (drag.Drop, bool) {
	d, ok := g.drag.Release(at, g.Areas())
	if !ok {
		return d, false
	}
	drag.Apply(d, g.partition)
	g.log.WithFields(logrus.Fields{"token": g.sess.Tokens[d.Sample], "bucket": d.Bucket, "inside": d.Inside}).Debug("drop")
	return d, true
}

// Resize relays out the play field. It is ignored while a drag is in
// progress or validation feedback is shown.
func (g *Game) Resize(width int) bool {
	if g.drag.Active() || g.feedback {
		return false
	}
	g.width = width
	return true
}

// Play starts playback of a token's clip. Failures are only logged.
func (g *Game) Play(token string) {
	id, ok := g.sess.SampleID(token)
	if !ok {
		g.log.WithField("token", token).Warn("unknown token")
		return
	}
	if err := g.player.Play(g.sess.Path(id)); err != nil {
		g.log.WithError(err).WithField("token", token).Warn("playback failed")
	}
}

func (g *Game) Validate() scoring.Result {
	g.feedback = true
	res := scoring.Validate(g.partition, g.sess.TrueLabels, g.sess.Buckets)
	g.log.WithFields(logrus.Fields{"best": res.BestMatch, "total": res.Total}).Info("validated")
	return res
}

// Dismiss hides validation feedback and re-enables layout updates.
func (g *Game) Dismiss() { g.feedback = false }

// Reset stops playback and starts a fresh session. On failure the previous
// session stays in place.
func (g *Game) Reset() error {
	g.stopPlayback()
	sess, err := g.builder.Build(g.opts.Classes, g.opts.PerClass, g.opts.Buckets)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	g.sess = sess
	g.partition = scoring.Partition{}
	g.drag = drag.NewMachine()
	g.feedback = false
	return nil
}

// Close stops playback and removes the scratch copies.
func (g *Game) Close() error {
	g.stopPlayback()
	return g.builder.Clear()
}

func (g *Game) stopPlayback() {
	if err := g.player.Stop(); err != nil {
		g.log.WithError(err).Debug("stop playback")
	}
}
