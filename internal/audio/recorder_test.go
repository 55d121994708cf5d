package audio

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// scriptedStream replays events and counts device releases.
type scriptedStream struct {
	events   chan Event
	closed   bool
	released int
}

func newScriptedStream(evs []Event, endOnItsOwn bool) *scriptedStream {
	s := &scriptedStream{events: make(chan Event, len(evs))}
	for _, ev := range evs {
		s.events <- ev
	}
	if endOnItsOwn {
		close(s.events)
		s.closed = true
	}
	return s
}

func (s *scriptedStream) Format() Format       { return DefaultFormat }
func (s *scriptedStream) Events() <-chan Event { return s.events }

func (s *scriptedStream) Stop() error {
	s.released++
	if !s.closed {
		close(s.events)
		s.closed = true
	}
	return nil
}

type staticSource struct {
	stream Stream
	err    error
}

func (s staticSource) Open(context.Context) (Stream, error) { return s.stream, s.err }

func TestRecordingConcatenatesNonEmptyChunks(t *testing.T) {
	st := newScriptedStream([]Event{{Data: []byte("ab")}, {Data: nil}, {Data: []byte("cd")}}, false)
	rec, err := NewRecorder(staticSource{stream: st}, nil).Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	// let the collector buffer everything before stopping
	deadline := time.Now().Add(time.Second)
	for rec.Size() < 4 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	blob, err := rec.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if string(blob.Data) != "abcd" {
		t.Fatalf("data = %q, want abcd", blob.Data)
	}
	if blob.MIMEType != DefaultFormat.MIMEType() {
		t.Fatalf("mime = %q", blob.MIMEType)
	}
	if st.released != 1 {
		t.Fatalf("released = %d, want 1", st.released)
	}

	if _, err := rec.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	if st.released != 1 {
		t.Fatalf("released twice")
	}
}

func TestRecordingDoneWhenSessionEnds(t *testing.T) {
	st := newScriptedStream([]Event{{Data: []byte("xy")}}, true)
	rec, err := NewRecorder(staticSource{stream: st}, nil).Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	select {
	case <-rec.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed after the stream ended")
	}
	blob, err := rec.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if string(blob.Data) != "xy" {
		t.Fatalf("data = %q", blob.Data)
	}
}

func TestRecordingReleasesDeviceOnCaptureError(t *testing.T) {
	boom := errors.New("device unplugged")
	st := newScriptedStream([]Event{{Data: []byte("ab")}, {Err: boom}}, true)
	rec, err := NewRecorder(staticSource{stream: st}, nil).Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	<-rec.Done()
	blob, err := rec.Stop()
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if string(blob.Data) != "ab" {
		t.Fatalf("partial data = %q", blob.Data)
	}
	if st.released != 1 {
		t.Fatalf("released = %d, want 1", st.released)
	}
}

func TestRecorderStartErrors(t *testing.T) {
	if _, err := NewRecorder(nil, nil).Start(context.Background()); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("nil source err = %v", err)
	}
	_, err := NewRecorder(staticSource{err: ErrPermissionDenied}, nil).Start(context.Background())
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("err = %v", err)
	}
}

func TestFileSource(t *testing.T) {
	pcm := pcmSamples(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	wav, err := EncodeWAV(pcm, DefaultFormat)
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}
	path := filepath.Join(t.TempDir(), "memo.wav")
	if err := os.WriteFile(path, wav, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	rec, err := NewRecorder(&FileSource{Path: path, ChunkBytes: 6}, nil).Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	<-rec.Done()
	blob, err := rec.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !bytes.Equal(blob.Data, pcm) {
		t.Fatalf("data = % x, want % x", blob.Data, pcm)
	}
}

func TestFileSourceMissingFile(t *testing.T) {
	_, err := (&FileSource{Path: filepath.Join(t.TempDir(), "nope.wav")}).Open(context.Background())
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want ErrNotExist", err)
	}
}
