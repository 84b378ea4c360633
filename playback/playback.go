package playback

import (
	"fmt"
	"os/exec"
	"sync"
)

// Player starts playback of an audio file without waiting for it to finish.
type Player interface {
	Play(path string) error
	Stop() error
}

// ExecPlayer plays files through an external command such as ffplay or aplay.
// Starting a new file stops the one in flight.
type ExecPlayer struct {
	bin  string
	args []string

	mu  sync.Mutex
	cmd *exec.Cmd
}

func NewExecPlayer(bin string, args ...string) *ExecPlayer {
	return &ExecPlayer{bin: bin, args: args}
}

// DefaultArgs are the arguments known to make common players headless.
func DefaultArgs(bin string) []string {
	switch bin {
	case "ffplay":
		return []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}
	case "aplay":
		return []string{"-q"}
	default:
		return nil
	}
}

func (p *ExecPlayer) Play(path string) error {
	if _, err := exec.LookPath(p.bin); err != nil {
		return fmt.Errorf("player %s: %w", p.bin, err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()

	args := append(append([]string{}, p.args...), path)
	cmd := exec.Command(p.bin, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("player %s: %w", p.bin, err)
	}
	p.cmd = cmd
	go func() { _ = cmd.Wait() }()
	return nil
}

func (p *ExecPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	return nil
}

func (p *ExecPlayer) stopLocked() {
	if p.cmd != nil && p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	p.cmd = nil
}

// Nop never plays anything. It records the last path for tests.
type Nop struct {
	Last    string
	Stopped int
}

func (n *Nop) Play(path string) error { n.Last = path; return nil }

func (n *Nop) Stop() error { n.Stopped++; return nil }
