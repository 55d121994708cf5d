package audio

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"testing"
	"time"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not found")
	}
}

func TestCommandSourceNoBackend(t *testing.T) {
	s := &CommandSource{lookPath: func(string) (string, error) { return "", exec.ErrNotFound }}
	_, err := s.Open(context.Background())
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
}

func TestCommandSourceUnknownCommand(t *testing.T) {
	s := &CommandSource{Command: "sox", lookPath: func(n string) (string, error) { return "/usr/bin/" + n, nil }}
	if _, err := s.Open(context.Background()); err == nil || errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v, want a configuration error", err)
	}
}

func TestCommandSourceArgs(t *testing.T) {
	s := &CommandSource{
		Command:  "arecord",
		Device:   "hw:1,0",
		lookPath: func(n string) (string, error) { return "/usr/bin/" + n, nil },
	}
	argv, err := s.argv(DefaultFormat)
	if err != nil {
		t.Fatalf("argv: %v", err)
	}
	want := []string{"/usr/bin/arecord", "-q", "-t", "raw", "-f", "S16_LE", "-r", "16000", "-c", "1", "-D", "hw:1,0"}
	if len(argv) != len(want) {
		t.Fatalf("argv = %v, want %v", argv, want)
	}
	for i := range want {
		if argv[i] != want[i] {
			t.Fatalf("argv = %v, want %v", argv, want)
		}
	}
}

func TestCommandSourcePermissionDenied(t *testing.T) {
	requireShell(t)
	s := &CommandSource{
		Argv:         []string{"sh", "-c", "echo 'audio open error: Permission denied' >&2; exit 1"},
		ProbeTimeout: 5 * time.Second,
	}
	_, err := s.Open(context.Background())
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
}

func TestCommandSourceOtherFailure(t *testing.T) {
	requireShell(t)
	s := &CommandSource{
		Argv:         []string{"sh", "-c", "echo 'no such device' >&2; exit 3"},
		ProbeTimeout: 5 * time.Second,
	}
	_, err := s.Open(context.Background())
	if err == nil || errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v, want a plain capture error", err)
	}
}

func TestCommandSourceRecordAndStop(t *testing.T) {
	requireShell(t)
	s := &CommandSource{
		Argv:         []string{"sh", "-c", "printf abcd; exec sleep 30"},
		ProbeTimeout: 5 * time.Second,
	}
	rec, err := NewRecorder(s, nil).Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	start := time.Now()
	blob, err := rec.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if string(blob.Data) != "abcd" {
		t.Fatalf("data = %q, want abcd", blob.Data)
	}
	if time.Since(start) > 10*time.Second {
		t.Fatal("Stop did not terminate the recorder process")
	}
	select {
	case <-rec.Done():
	default:
		t.Fatal("Done not closed after Stop")
	}
}

func TestCommandSourceMaxDuration(t *testing.T) {
	requireShell(t)
	s := &CommandSource{
		Argv:         []string{"sh", "-c", "printf ab; exec sleep 30"},
		ProbeTimeout: 5 * time.Second,
		MaxDuration:  100 * time.Millisecond,
	}
	rec, err := NewRecorder(s, nil).Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	select {
	case <-rec.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("session did not end after MaxDuration")
	}
	if _, err := rec.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}
