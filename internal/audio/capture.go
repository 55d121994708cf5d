package audio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrUnsupported reports that no capture backend is available.
	ErrUnsupported = errors.New("audio capture not supported")
	// ErrPermissionDenied reports that microphone access was refused.
	ErrPermissionDenied = errors.New("microphone access denied")
)

// Format describes signed 16-bit little-endian PCM.
type Format struct {
	SampleRate int
	Channels   int
}

// DefaultFormat is mono 16 kHz, enough for speech.
var DefaultFormat = Format{SampleRate: 16000, Channels: 1}

// MIMEType returns the RFC 3551 type for raw PCM in this format.
func (f Format) MIMEType() string {
	return fmt.Sprintf("%s;rate=%d;channels=%d", pcmMIMEType, f.SampleRate, f.Channels)
}

// BytesPerSecond is the PCM data rate.
func (f Format) BytesPerSecond() int {
	return f.SampleRate * f.Channels * 2
}

func (f Format) validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("channels must be positive, got %d", f.Channels)
	}
	return nil
}

const pcmMIMEType = "audio/L16"

func isPCM(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(mimeType), strings.ToLower(pcmMIMEType))
}

// Event is delivered by a Stream. A non-nil Err reports a capture failure;
// otherwise Data holds the next chunk.
type Event struct {
	Data []byte
	Err  error
}

// Stream is one capture session on an acquired device. Events is closed when
// the session ends, either on its own or after Stop.
type Stream interface {
	Format() Format
	Events() <-chan Event
	// Stop releases the device. It is safe to call more than once.
	Stop() error
}

// Source acquires capture streams.
type Source interface {
	// Open acquires the device. It fails with ErrUnsupported or
	// ErrPermissionDenied (possibly wrapped) when capture cannot start.
	Open(ctx context.Context) (Stream, error)
}

// Blob is the concatenation of all chunks of one recording.
type Blob struct {
	MIMEType string
	Format   Format
	Data     []byte
}

// Duration estimates the recorded length from the PCM data rate.
func (b Blob) Duration() time.Duration {
	bps := b.Format.BytesPerSecond()
	if bps <= 0 {
		return 0
	}
	return time.Duration(len(b.Data)) * time.Second / time.Duration(bps)
}
