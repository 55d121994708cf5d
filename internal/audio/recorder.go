package audio

import (
	"bytes"
	"context"
	"sync"

	"go.uber.org/zap"
)

// Recorder starts capture sessions on a Source.
type Recorder struct {
	source Source
	log    *zap.Logger
}

// NewRecorder returns a Recorder for src.
func NewRecorder(src Source, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{source: src, log: log}
}

// Start acquires the device and begins buffering chunks.
func (r *Recorder) Start(ctx context.Context) (*Recording, error) {
	if r.source == nil {
		return nil, ErrUnsupported
	}
	stream, err := r.source.Open(ctx)
	if err != nil {
		return nil, err
	}
	rec := &Recording{
		stream: stream,
		log:    r.log,
		done:   make(chan struct{}),
	}
	go rec.collect()
	r.log.Debug("recording started", zap.String("mime", stream.Format().MIMEType()))
	return rec, nil
}

// Recording is one active capture session.
type Recording struct {
	stream Stream
	log    *zap.Logger

	mu     sync.Mutex
	chunks [][]byte
	size   int
	err    error

	done     chan struct{}
	stopOnce sync.Once
	stopErr  error
}

func (r *Recording) collect() {
	defer close(r.done)
	for ev := range r.stream.Events() {
		r.mu.Lock()
		switch {
		case ev.Err != nil:
			if r.err == nil {
				r.err = ev.Err
			}
		case len(ev.Data) > 0:
			r.chunks = append(r.chunks, bytes.Clone(ev.Data))
			r.size += len(ev.Data)
		}
		r.mu.Unlock()
	}
}

// Done is closed once the capture session has ended and every chunk has
// been buffered.
func (r *Recording) Done() <-chan struct{} {
	return r.done
}

// Size returns the number of bytes buffered so far.
func (r *Recording) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Stop ends the session, releases the device and returns the recording as a
// single blob. The device is released even when capture failed; the capture
// error, if any, is returned alongside the partial blob.
func (r *Recording) Stop() (Blob, error) {
	r.stopOnce.Do(func() {
		r.stopErr = r.stream.Stop()
	})
	<-r.done

	r.mu.Lock()
	defer r.mu.Unlock()

	blob := Blob{
		MIMEType: r.stream.Format().MIMEType(),
		Format:   r.stream.Format(),
		Data:     bytes.Join(r.chunks, nil),
	}
	if r.stopErr != nil {
		r.log.Warn("release capture device", zap.Error(r.stopErr))
	}
	r.log.Debug("recording stopped",
		zap.Int("chunks", len(r.chunks)),
		zap.Int("bytes", len(blob.Data)),
		zap.Duration("duration", blob.Duration()),
	)
	return blob, r.err
}
