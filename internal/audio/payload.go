package audio

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// WAVMIMEType is the single encoding used for captured audio.
const WAVMIMEType = "audio/wav"

// ErrEmptyRecording reports a blob without any audio.
var ErrEmptyRecording = errors.New("recording is empty")

// Payload is a self-describing encoded recording.
type Payload struct {
	MIMEType string
	Data     []byte
}

// Encode turns a recorded blob into a payload in one pass. PCM blobs are
// wrapped as WAV; WAV blobs pass through.
func Encode(b Blob) (Payload, error) {
	if len(b.Data) == 0 {
		return Payload{}, ErrEmptyRecording
	}
	switch {
	case isPCM(b.MIMEType):
		wav, err := EncodeWAV(b.Data, b.Format)
		if err != nil {
			return Payload{}, fmt.Errorf("encode wav: %w", err)
		}
		return Payload{MIMEType: WAVMIMEType, Data: wav}, nil
	case baseType(b.MIMEType) == WAVMIMEType:
		return Payload{MIMEType: WAVMIMEType, Data: b.Data}, nil
	}
	return Payload{}, fmt.Errorf("unsupported recording type %q", b.MIMEType)
}

// DataURI renders the payload as data:<mime>;base64,<data>.
func (p Payload) DataURI() string {
	return "data:" + p.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}

// Filename suggests an upload file name matching the MIME type.
func (p Payload) Filename() string {
	ext := "bin"
	switch baseType(p.MIMEType) {
	case "audio/wav", "audio/x-wav", "audio/wave":
		ext = "wav"
	case "audio/webm":
		ext = "webm"
	case "audio/ogg":
		ext = "ogg"
	case "audio/mpeg", "audio/mp3":
		ext = "mp3"
	case "audio/mp4", "audio/m4a", "audio/x-m4a":
		ext = "m4a"
	case "audio/flac":
		ext = "flac"
	}
	return "memo." + ext
}

// ParseDataURI parses a base64 data URI carrying audio.
func ParseDataURI(s string) (Payload, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), "data:")
	if !ok {
		return Payload{}, errors.New("data uri: missing data: prefix")
	}
	meta, data, ok := strings.Cut(rest, ",")
	if !ok {
		return Payload{}, errors.New("data uri: missing comma")
	}
	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return Payload{}, errors.New("data uri: only base64 encoding is supported")
	}
	if !strings.HasPrefix(strings.ToLower(mimeType), "audio/") {
		return Payload{}, fmt.Errorf("data uri: not audio: %q", mimeType)
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return Payload{}, fmt.Errorf("data uri: %w", err)
	}
	if len(raw) == 0 {
		return Payload{}, ErrEmptyRecording
	}
	return Payload{MIMEType: mimeType, Data: raw}, nil
}

func baseType(mimeType string) string {
	t, _, _ := strings.Cut(mimeType, ";")
	return strings.ToLower(strings.TrimSpace(t))
}
