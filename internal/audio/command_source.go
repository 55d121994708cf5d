package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

const stopGrace = 2 * time.Second

// CommandSource records from the microphone through an external recorder
// process writing raw PCM to stdout: arecord (ALSA) or ffmpeg (PulseAudio,
// AVFoundation, DirectShow).
type CommandSource struct {
	// Command is "arecord", "ffmpeg" or empty to pick the first available.
	Command string
	// Argv, when set, is run verbatim instead of a built-in command line.
	// The process must write PCM in Format to stdout.
	Argv   []string
	Device string
	Format Format

	// ProbeTimeout bounds how long Open waits for the first chunk before
	// handing the stream out anyway.
	ProbeTimeout time.Duration
	// MaxDuration ends the session on its own; zero means unlimited.
	MaxDuration time.Duration

	lookPath func(string) (string, error)
}

// Open starts the recorder process and waits until it produces audio, exits,
// or the probe timeout elapses.
func (s *CommandSource) Open(ctx context.Context) (Stream, error) {
	format := s.Format
	if format == (Format{}) {
		format = DefaultFormat
	}
	if err := format.validate(); err != nil {
		return nil, err
	}

	argv, err := s.argv(format)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cs := &commandStream{
		cmd:    cmd,
		format: format,
		events: make(chan Event, 64),
		first:  make(chan struct{}),
		exited: make(chan struct{}),
	}
	cmd.Stdout = cs
	cmd.Stderr = &cs.stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Start(); err != nil {
		if errors.Is(err, os.ErrPermission) {
			return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		}
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
		}
		return nil, fmt.Errorf("start %s: %w", argv[0], err)
	}
	go cs.wait()

	if s.MaxDuration > 0 {
		cs.mu.Lock()
		cs.timer = time.AfterFunc(s.MaxDuration, func() { _ = cs.Stop() })
		cs.mu.Unlock()
	}

	probe := s.ProbeTimeout
	if probe <= 0 {
		probe = time.Second
	}
	select {
	case <-cs.first:
		return cs, nil
	case <-cs.exited:
		return nil, cs.exitError(argv[0])
	case <-time.After(probe):
		return cs, nil
	case <-ctx.Done():
		_ = cs.Stop()
		return nil, ctx.Err()
	}
}

func (s *CommandSource) argv(f Format) ([]string, error) {
	if len(s.Argv) > 0 {
		return s.Argv, nil
	}
	lookPath := s.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	candidates := []string{s.Command}
	if s.Command == "" {
		candidates = []string{"ffmpeg"}
		if runtime.GOOS == "linux" {
			candidates = []string{"arecord", "ffmpeg"}
		}
	}
	for _, name := range candidates {
		path, err := lookPath(name)
		if err != nil {
			continue
		}
		switch strings.TrimSuffix(filepath.Base(name), ".exe") {
		case "arecord":
			return arecordArgs(path, s.Device, f), nil
		case "ffmpeg":
			return ffmpegArgs(path, s.Device, f), nil
		default:
			return nil, fmt.Errorf("unknown capture command %q", name)
		}
	}
	return nil, fmt.Errorf("%w: none of %s found in PATH", ErrUnsupported, strings.Join(candidates, ", "))
}

func arecordArgs(path, device string, f Format) []string {
	args := []string{path, "-q", "-t", "raw", "-f", "S16_LE",
		"-r", strconv.Itoa(f.SampleRate), "-c", strconv.Itoa(f.Channels)}
	if device != "" {
		args = append(args, "-D", device)
	}
	return args
}

func ffmpegArgs(path, device string, f Format) []string {
	var input, dev string
	switch runtime.GOOS {
	case "darwin":
		input, dev = "avfoundation", ":0"
	case "windows":
		input, dev = "dshow", "audio=default"
	default:
		input, dev = "pulse", "default"
	}
	if device != "" {
		dev = device
	}
	return []string{path, "-hide_banner", "-loglevel", "error", "-nostdin",
		"-f", input, "-i", dev,
		"-ac", strconv.Itoa(f.Channels), "-ar", strconv.Itoa(f.SampleRate),
		"-f", "s16le", "-"}
}

type commandStream struct {
	cmd    *exec.Cmd
	format Format
	events chan Event
	stderr lockedBuffer
	timer  *time.Timer

	firstOnce sync.Once
	first     chan struct{}
	exited    chan struct{}
	exitErr   error

	stopOnce sync.Once
	mu       sync.Mutex
	stopped  bool
}

func (s *commandStream) Format() Format       { return s.format }
func (s *commandStream) Events() <-chan Event { return s.events }

// Write receives the recorder's stdout.
func (s *commandStream) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	s.events <- Event{Data: bytes.Clone(p)}
	s.firstOnce.Do(func() { close(s.first) })
	return len(p), nil
}

func (s *commandStream) wait() {
	err := s.cmd.Wait()
	s.mu.Lock()
	stopped := s.stopped
	s.mu.Unlock()

	s.exitErr = err
	if err != nil && !stopped {
		s.events <- Event{Err: fmt.Errorf("capture process: %w: %s", err, s.stderr.Tail())}
	}
	close(s.events)
	close(s.exited)
}

func (s *commandStream) exitError(name string) error {
	msg := s.stderr.Tail()
	if isPermissionMessage(msg) {
		return fmt.Errorf("%w: %s", ErrPermissionDenied, msg)
	}
	if s.exitErr != nil {
		return fmt.Errorf("%s exited: %w: %s", name, s.exitErr, msg)
	}
	return fmt.Errorf("%s exited before producing audio", name)
}

func (s *commandStream) Stop() error {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		if s.timer != nil {
			s.timer.Stop()
		}
		s.mu.Unlock()

		select {
		case <-s.exited:
			return
		default:
		}
		if runtime.GOOS == "windows" {
			_ = s.cmd.Process.Kill()
		} else {
			_ = s.cmd.Process.Signal(os.Interrupt)
		}
		select {
		case <-s.exited:
		case <-time.After(stopGrace):
			_ = s.cmd.Process.Kill()
			<-s.exited
		}
	})
	return nil
}

func isPermissionMessage(msg string) bool {
	msg = strings.ToLower(msg)
	for _, needle := range []string{"permission denied", "not permitted", "access denied", "not authorized"} {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
}

// lockedBuffer keeps the last bytes a process wrote to stderr.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

const stderrLimit = 4 << 10

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Write(p)
	if over := b.buf.Len() - stderrLimit; over > 0 {
		b.buf.Next(over)
	}
	return len(p), nil
}

func (b *lockedBuffer) Tail() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.TrimSpace(b.buf.String())
}
