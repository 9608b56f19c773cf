package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"unicode/utf8"

	"vawter.tech/stopper"

	"github.com/bft-labs/lazymc-docker-proxy/internal/domain"
	"github.com/bft-labs/lazymc-docker-proxy/internal/ports"
)

// SupervisedProcess is a running lazymc process and its two output readers.
type SupervisedProcess struct {
	Group domain.Group

	cmd     *exec.Cmd
	readers sync.WaitGroup
	done    chan struct{}
	exitErr error
}

// Pid returns the operating system process id.
func (p *SupervisedProcess) Pid() int {
	return p.cmd.Process.Pid
}

// Done is closed once both readers have finished and the process was reaped.
func (p *SupervisedProcess) Done() <-chan struct{} {
	return p.done
}

// ExitErr returns the error reported by the process exit. Only valid after Done.
func (p *SupervisedProcess) ExitErr() error {
	return p.exitErr
}

// Supervisor spawns one lazymc process per group and bridges its output
// into the logging and control plane. Each process is one task of the
// supervisor's stopper: its stderr reader, its stdout reader and the reap.
//
// Exited processes are not restarted.
type Supervisor struct {
	logger      ports.Logger
	router      *Router
	metrics     ports.Metrics
	tasks       *stopper.Context
	passthrough io.Writer
	outMu       sync.Mutex

	mu      sync.Mutex
	procs   map[domain.Group]*SupervisedProcess
	running int
}

// NewSupervisor creates a supervisor. Lines that are not structured lazymc
// log lines are written to passthrough unchanged; nil selects os.Stdout.
// Once ctx ends no further process can be spawned.
func NewSupervisor(ctx context.Context, logger ports.Logger, router *Router, metrics ports.Metrics, passthrough io.Writer) *Supervisor {
	if passthrough == nil {
		passthrough = os.Stdout
	}
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	return &Supervisor{
		logger:      logger.WithTarget(targetPrefix + "supervisor"),
		router:      router,
		metrics:     metrics,
		tasks:       stopper.WithContext(ctx),
		passthrough: passthrough,
		procs:       make(map[domain.Group]*SupervisedProcess),
	}
}

// Launch spawns the configured groups one after another, in order. It does
// not wait for the processes. The first spawn failure is returned at once
// and no later group is spawned.
func (s *Supervisor) Launch(configs []domain.GroupConfig) ([]*SupervisedProcess, error) {
	procs := make([]*SupervisedProcess, 0, len(configs))
	for _, cfg := range configs {
		p, err := s.Spawn(cfg)
		if err != nil {
			return procs, err
		}
		procs = append(procs, p)
	}
	return procs, nil
}

// Spawn starts the lazymc process of one group with stdout and stderr
// captured, and starts one reader per stream.
func (s *Supervisor) Spawn(cfg domain.GroupConfig) (*SupervisedProcess, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.procs[cfg.Group]; ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateGroup, cfg.Group)
	}
	if s.tasks.IsStopping() || s.tasks.Err() != nil {
		return nil, fmt.Errorf("%w: group %s: supervisor is stopping", domain.ErrSpawn, cfg.Group)
	}

	s.logger.Info("Starting lazymc process for group: " + cfg.Group.String() + "...")

	cmd := exec.Command(cfg.Launch.Path, cfg.Launch.Args...)
	cmd.Dir = cfg.Launch.Dir
	if len(cfg.Launch.Env) > 0 {
		cmd.Env = append(os.Environ(), cfg.Launch.Env...)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: group %s: stdout: %w", domain.ErrSpawn, cfg.Group, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: group %s: stderr: %w", domain.ErrSpawn, cfg.Group, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: group %s: %w", domain.ErrSpawn, cfg.Group, err)
	}

	p := &SupervisedProcess{
		Group: cfg.Group,
		cmd:   cmd,
		done:  make(chan struct{}),
	}

	accepted := s.tasks.Go(func(ctx *stopper.Context) error {
		p.readers.Add(1)
		go func() {
			defer p.readers.Done()
			s.read(ctx, cfg.Group, stderr)
		}()
		s.read(ctx, cfg.Group, stdout)
		p.readers.Wait()
		s.reap(p)
		return nil
	})
	if !accepted {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, fmt.Errorf("%w: group %s: supervisor is stopping", domain.ErrSpawn, cfg.Group)
	}

	s.procs[cfg.Group] = p
	s.running++
	s.metrics.GroupsRunning(s.running)

	s.logger.Debug("lazymc process started",
		ports.String("group", cfg.Group.String()),
		ports.Int("pid", cmd.Process.Pid))

	return p, nil
}

// Wait stops accepting new processes and blocks until every spawned
// process has exited and its output has been fully consumed, or the
// supervisor's context ends.
func (s *Supervisor) Wait() error {
	s.tasks.Stop(0)
	return s.tasks.Wait()
}

// Running returns the number of supervised processes still alive.
func (s *Supervisor) Running() int {
	return s.tasks.Len()
}

// read consumes one output stream line by line until it closes.
func (s *Supervisor) read(ctx context.Context, group domain.Group, r io.Reader) {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			s.handleLine(ctx, group, line)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				s.logger.Debug("output stream closed",
					ports.String("group", group.String()),
					ports.Err(err))
			}
			return
		}
	}
}

func (s *Supervisor) handleLine(ctx context.Context, group domain.Group, raw string) {
	line := strings.TrimSuffix(strings.TrimSuffix(raw, "\n"), "\r")
	if !utf8.ValidString(line) {
		s.logger.Trace("dropping line that is not valid UTF-8",
			ports.String("group", group.String()))
		return
	}

	if ev, ok := ParseLine(line); ok {
		s.router.Route(ctx, group, ev)
		return
	}

	s.metrics.PassthroughLine(group)
	s.outMu.Lock()
	_, _ = io.WriteString(s.passthrough, line+"\n")
	s.outMu.Unlock()
}

// reap waits for the process once both readers are done, as required by
// exec.Cmd when using pipes.
func (s *Supervisor) reap(p *SupervisedProcess) {
	err := p.cmd.Wait()

	s.mu.Lock()
	p.exitErr = err
	s.running--
	s.metrics.GroupsRunning(s.running)
	s.mu.Unlock()
	s.metrics.ProcessExit(p.Group)

	fields := []ports.Field{ports.String("group", p.Group.String())}
	if err != nil {
		fields = append(fields, ports.Err(err))
	}
	s.logger.Error("lazymc process exited, it will not be restarted", fields...)
	close(p.done)
}
