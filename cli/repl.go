package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/maastricht-university/audiosort/drag"
	"github.com/maastricht-university/audiosort/game"
	"github.com/maastricht-university/audiosort/session"
)

const helpText = `commands:
  list                       tokens, their bucket and position
  play <token>               play a clip
  drag <token> <bucket|->    move a token into a bucket, or back to the pool with -
  press <token> <x> <y>      start a drag at a point
  move <x> <y>               move the dragged token
  release <x> <y>            drop the dragged token
  resize <width>             change the play field width
  validate                   score the current grouping
  ok                         dismiss the score
  reset                      start a new session
  quit                       clean up and exit
`

// outside is a point no bucket area can contain.
var outside = drag.Point{X: -1, Y: -1}

type repl struct {
	g   *game.Game
	out io.Writer
}

func newREPL(g *game.Game, out io.Writer) *repl {
	return &repl{g: g, out: out}
}

// run reads commands until quit, end of input or ctx is done.
func (r *repl) run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- sc.Err()
	}()

	fmt.Fprintf(r.out, "%d clips, buckets %s. Type help for commands.\n", r.g.Session().Len(), strings.Join(r.g.Buckets(), " "))
	r.prompt()
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.out)
			return nil
		case err := <-errc:
			return err
		case line := <-lines:
			if r.exec(line) {
				return nil
			}
			r.prompt()
		}
	}
}

func (r *repl) prompt() { fmt.Fprint(r.out, "> ") }

func (r *repl) printf(format string, args ...any) { fmt.Fprintf(r.out, format+"\n", args...) }

// exec runs one command line and reports whether the session should end.
func (r *repl) exec(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprint(r.out, helpText)
	case "list":
		r.list()
	case "play":
		if len(args) != 1 {
			r.printf("usage: play <token>")
			return false
		}
		r.g.Play(args[0])
	case "drag":
		if len(args) != 2 {
			r.printf("usage: drag <token> <bucket|->")
			return false
		}
		r.drag(args[0], args[1])
	case "press":
		if len(args) != 3 {
			r.printf("usage: press <token> <x> <y>")
			return false
		}
		pts, ok := r.ints(args[1:], 2, "usage: press <token> <x> <y>")
		if !ok {
			return false
		}
		if !r.g.Press(args[0], drag.Point{X: pts[0], Y: pts[1]}) {
			r.printf("cannot pick up %s", args[0])
		}
	case "move":
		pts, ok := r.ints(args, 2, "usage: move <x> <y>")
		if !ok {
			return false
		}
		r.g.Move(drag.Point{X: pts[0], Y: pts[1]})
	case "release":
		pts, ok := r.ints(args, 2, "usage: release <x> <y>")
		if !ok {
			return false
		}
		d, ok := r.g.Release(drag.Point{X: pts[0], Y: pts[1]})
		if !ok {
			r.printf("nothing is being dragged")
			return false
		}
		r.reportDrop(d)
	case "resize":
		w, ok := r.ints(args, 1, "usage: resize <width>")
		if !ok {
			return false
		}
		if !r.g.Resize(w[0]) {
			r.printf("layout is frozen while dragging or showing a score")
		}
	case "validate":
		res := r.g.Validate()
		renderFeedback(r.out, res, r.g.Session().Tokens)
		r.printf("Score: %s", res.Summary())
	case "ok":
		r.g.Dismiss()
	case "reset":
		err := r.g.Reset()
		if errors.Is(err, session.ErrInsufficientSamples) {
			r.printf("Insufficient data: %v", err)
			return false
		}
		if err != nil {
			r.printf("reset failed: %v", err)
			return false
		}
		r.printf("new session with %d clips", r.g.Session().Len())
	default:
		r.printf("unknown command %q, type help", cmd)
	}
	return false
}

func (r *repl) ints(args []string, n int, usage string) ([]int, bool) {
	if len(args) != n {
		r.printf("%s", usage)
		return nil, false
	}
	out := make([]int, n)
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			r.printf("%s", usage)
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func (r *repl) list() {
	slots := r.g.Slots()
	t := newTable(r.out, "TOKEN", "BUCKET", "POSITION")
	for _, tok := range r.g.Tokens() {
		bucket, pos := "-", "-"
		if b, ok := r.g.BucketOf(tok); ok {
			bucket = b
		} else if rect, ok := slots[tok]; ok {
			c := rect.Center()
			pos = fmt.Sprintf("%d,%d", c.X, c.Y)
		}
		t.Append([]string{tok, bucket, pos})
	}
	t.Render()
	for _, a := range r.g.Areas() {
		r.printf("bucket %s: x %d..%d y %d..%d", a.Label, a.X, a.X+a.W, a.Y, a.Y+a.H)
	}
}

// locate is where a token currently sits: its pool slot or its bucket.
func (r *repl) locate(token string) (drag.Point, bool) {
	if rect, ok := r.g.Slots()[token]; ok {
		return rect.Center(), true
	}
	if b, ok := r.g.BucketOf(token); ok {
		return r.areaCenter(b)
	}
	return drag.Point{}, false
}

func (r *repl) areaCenter(label string) (drag.Point, bool) {
	for _, a := range r.g.Areas() {
		if a.Label == label {
			return a.Center(), true
		}
	}
	return drag.Point{}, false
}

func (r *repl) drag(token, target string) {
	from, ok := r.locate(token)
	if !ok {
		r.printf("unknown token %q", token)
		return
	}
	to := outside
	if target != "-" {
		if to, ok = r.areaCenter(target); !ok {
			r.printf("unknown bucket %q", target)
			return
		}
	}
	if !r.g.Press(token, from) {
		r.printf("cannot pick up %s", token)
		return
	}
	d, _ := r.g.Release(to)
	r.reportDrop(d)
}

func (r *repl) reportDrop(d drag.Drop) {
	token := r.g.Session().Tokens[d.Sample]
	if d.Inside {
		r.printf("%s -> %s", token, d.Bucket)
		return
	}
	r.printf("%s -> pool", token)
}
