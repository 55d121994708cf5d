package audio

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// FileSource replays the PCM frames of a WAV file as a capture session that
// ends on its own once the file is exhausted.
type FileSource struct {
	Path string
	// ChunkBytes is the size of each delivered chunk; zero means 100ms of audio.
	ChunkBytes int
}

// Open reads and validates the file.
func (s *FileSource) Open(ctx context.Context) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}
	f, pcm, err := DecodeWAV(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return newBufferStream(f, pcm, s.ChunkBytes), nil
}

// newBufferStream delivers pcm in chunks and then ends.
func newBufferStream(f Format, pcm []byte, chunkBytes int) Stream {
	if chunkBytes <= 0 {
		chunkBytes = f.BytesPerSecond() / 10
		if chunkBytes <= 0 {
			chunkBytes = 3200
		}
	}
	bs := &bufferStream{
		format: f,
		events: make(chan Event),
		stop:   make(chan struct{}),
	}
	go bs.run(pcm, chunkBytes)
	return bs
}

type bufferStream struct {
	format   Format
	events   chan Event
	stop     chan struct{}
	stopOnce sync.Once
}

func (s *bufferStream) Format() Format       { return s.format }
func (s *bufferStream) Events() <-chan Event { return s.events }

func (s *bufferStream) Stop() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

func (s *bufferStream) run(pcm []byte, chunkBytes int) {
	defer close(s.events)
	for len(pcm) > 0 {
		n := min(chunkBytes, len(pcm))
		chunk := pcm[:n]
		pcm = pcm[n:]
		select {
		case s.events <- Event{Data: chunk}:
		case <-s.stop:
			return
		}
	}
}
