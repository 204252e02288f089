package bot

import (
	"bufio"
	"context"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"io"
	"os/exec"
	"path/filepath"
	"sync"
	"time"
)

const closeGrace = 500 * time.Millisecond

// ProcessBot is a Bot backed by a child process: requests go to its stdin,
// moves come back on its stdout and its stderr is logged.
type ProcessBot struct {
	name        string
	moveTimeout time.Duration
	cmd         *exec.Cmd
	stdin       io.WriteCloser
	lines       chan string
	pumps       sync.WaitGroup
	writeLock   sync.Mutex
	closeOnce   sync.Once
	log         *log.Entry
}

// StartProcess runs argv as a bot. Any failure to set up pipes or start the
// process is a *BotUnavailableError.
func StartProcess(name string, argv []string, moveTimeout time.Duration) (*ProcessBot, error) {
	if len(argv) == 0 {
		return nil, &BotUnavailableError{Name: name, Stage: "command", Err: errors.New("empty command line")}
	}
	if name == "" {
		name = filepath.Base(argv[0])
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &BotUnavailableError{Name: name, Stage: "stdin", Err: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &BotUnavailableError{Name: name, Stage: "stdout", Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &BotUnavailableError{Name: name, Stage: "stderr", Err: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &BotUnavailableError{Name: name, Stage: "start", Err: err}
	}

	p := &ProcessBot{
		name:        name,
		moveTimeout: moveTimeout,
		cmd:         cmd,
		stdin:       stdin,
		lines:       make(chan string, 16),
		log:         log.WithFields(log.Fields{"bot": name, "pid": cmd.Process.Pid}),
	}
	p.pumps.Add(2)
	go p.loopStdout(stdout)
	go p.loopStderr(stderr)
	p.log.Info("ProcessBot started")
	return p, nil
}

func (p *ProcessBot) Name() string {
	return p.name
}

func (p *ProcessBot) loopStdout(r io.Reader) {
	defer p.pumps.Done()
	defer close(p.lines)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.lines <- scanner.Text()
	}
	if err := scanner.Err(); err != nil {
		p.log.Warnf("ProcessBot.loopStdout %v", err)
	}
	p.log.Debug("ProcessBot.loopStdout ENDED")
}

func (p *ProcessBot) loopStderr(r io.Reader) {
	defer p.pumps.Done()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.log.Warnf("stderr: %s", scanner.Text())
	}
}

func (p *ProcessBot) write(line string) error {
	p.writeLock.Lock()
	defer p.writeLock.Unlock()
	if _, err := io.WriteString(p.stdin, line+"\n"); err != nil {
		return errors.Wrapf(ErrBotDisconnected, "bot %s: %v", p.name, err)
	}
	return nil
}

func (p *ProcessBot) Notify(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.write(message)
}

func (p *ProcessBot) RequestMove(ctx context.Context, snapshot string) (Move, error) {
	if err := ctx.Err(); err != nil {
		return Move{}, err
	}
	if err := p.write(snapshot); err != nil {
		return Move{}, err
	}

	var timeout <-chan time.Time
	if p.moveTimeout > 0 {
		timer := time.NewTimer(p.moveTimeout)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case line, ok := <-p.lines:
		if !ok {
			return Move{}, errors.Wrapf(ErrBotDisconnected, "bot %s closed its output", p.name)
		}
		return ParseMove(line)
	case <-timeout:
		return Move{}, errors.Wrapf(ErrMoveTimeout, "bot %s after %v", p.name, p.moveTimeout)
	case <-ctx.Done():
		return Move{}, ctx.Err()
	}
}

// Close ends the bot's input and gives it closeGrace to exit before killing it.
func (p *ProcessBot) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.stdin.Close()
		go func() {
			// unblock loopStdout, nobody reads moves any more
			for range p.lines {
			}
		}()
		pumped := make(chan struct{})
		go func() {
			p.pumps.Wait()
			close(pumped)
		}()
		killed := false
		select {
		case <-pumped:
		case <-time.After(closeGrace):
			p.log.Warn("ProcessBot.Close grace period over, killing")
			if kerr := p.cmd.Process.Kill(); kerr != nil {
				p.log.Warnf("ProcessBot.Close kill %v", kerr)
			}
			killed = true
			<-pumped
		}
		werr := p.cmd.Wait()
		if werr != nil && !killed {
			err = errors.Wrapf(werr, "bot %s", p.name)
		}
		p.log.Info("ProcessBot closed")
	})
	return err
}
