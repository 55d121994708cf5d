// Package pipeline runs a voice memo from capture to a stored list.
//
// The pipeline is a small state machine (Idle, Recording, Transcribing)
// driven by explicit start and stop events. Every run ends in exactly one
// Outcome and the pipeline returns to Idle. Events that do not fit the
// current state are ignored.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Makepad-fr/verbalist/internal/ai"
	"github.com/Makepad-fr/verbalist/internal/audio"
	"github.com/Makepad-fr/verbalist/internal/store"
)

// ItemSeparator joins extracted items into the title prompt.
const ItemSeparator = ", "

// Timeouts bound each capability call. Zero means no limit.
type Timeouts struct {
	Extraction time.Duration
	Title      time.Duration
}

type Deps struct {
	Source    audio.Source
	Extractor ai.Extractor
	Titler    ai.Titler
	Store     *store.Store
	Logger    *zap.Logger
	Timeouts  Timeouts
}

type Pipeline struct {
	recorder  *audio.Recorder
	extractor ai.Extractor
	titler    ai.Titler
	store     *store.Store
	log       *zap.Logger
	timeouts  Timeouts

	mu    sync.Mutex
	state State
	rec   *audio.Recording
}

func New(d Deps) *Pipeline {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("pipeline")
	return &Pipeline{
		recorder:  audio.NewRecorder(d.Source, log.Named("recorder")),
		extractor: d.Extractor,
		titler:    d.Titler,
		store:     d.Store,
		log:       log,
		timeouts:  d.Timeouts,
	}
}

// State reports the current state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Start handles the user start event. It reports an outcome only when the
// device could not be acquired; otherwise the pipeline is Recording and the
// outcome arrives from Stop.
func (p *Pipeline) Start(ctx context.Context) (Outcome, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Idle {
		p.log.Debug("start ignored", zap.Stringer("state", p.state))
		return Outcome{}, false
	}
	rec, err := p.recorder.Start(ctx)
	if err != nil {
		o := failed(captureReason(err), err)
		p.logOutcome(o)
		return o, true
	}
	p.rec = rec
	p.state = Recording
	return Outcome{}, false
}

func captureReason(err error) Reason {
	switch {
	case errors.Is(err, audio.ErrUnsupported):
		return CapabilityUnsupported
	case errors.Is(err, audio.ErrPermissionDenied):
		return PermissionDenied
	}
	return CaptureFailed
}

var closedChan = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()

// CaptureDone is closed when the active capture session ends on its own.
// Outside Recording it returns a closed channel.
func (p *Pipeline) CaptureDone() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rec == nil {
		return closedChan
	}
	return p.rec.Done()
}

// Stop handles the stop event, whether from the user or from the capture
// session ending. The device is released before any capability call.
// Capability calls are not canceled with ctx; only the timeouts bound them.
func (p *Pipeline) Stop(ctx context.Context) (Outcome, bool) {
	p.mu.Lock()
	if state := p.state; state != Recording {
		p.mu.Unlock()
		p.log.Debug("stop ignored", zap.Stringer("state", state))
		return Outcome{}, false
	}
	rec := p.rec
	p.rec = nil
	p.state = Transcribing
	p.mu.Unlock()

	defer p.setState(Idle)

	blob, err := rec.Stop()
	if err != nil {
		if len(blob.Data) == 0 {
			o := failed(captureReason(err), err)
			p.logOutcome(o)
			return o, true
		}
		p.log.Warn("capture ended with error, using partial recording",
			zap.Error(err), zap.Int("bytes", len(blob.Data)))
	}

	payload, err := audio.Encode(blob)
	if errors.Is(err, audio.ErrEmptyRecording) {
		o := Outcome{Kind: Empty}
		p.logOutcome(o)
		return o, true
	}
	if err != nil {
		o := failed(CaptureFailed, err)
		p.logOutcome(o)
		return o, true
	}
	return p.Process(context.WithoutCancel(ctx), payload), true
}

// Recorded is the number of audio bytes captured so far in the active
// session.
func (p *Pipeline) Recorded() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rec == nil {
		return 0
	}
	return p.rec.Size()
}

// Abort ends an active recording without processing it. It reports whether
// a recording was discarded.
func (p *Pipeline) Abort() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Recording {
		return false
	}
	if _, err := p.rec.Stop(); err != nil {
		p.log.Debug("aborted recording ended with error", zap.Error(err))
	}
	p.rec = nil
	p.state = Idle
	p.log.Info("recording discarded")
	return true
}

func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// Process runs extraction, title synthesis and list creation on an encoded
// memo. It does not touch the pipeline state.
func (p *Pipeline) Process(ctx context.Context, memo audio.Payload) Outcome {
	o := p.process(ctx, memo)
	p.logOutcome(o)
	return o
}

func (p *Pipeline) process(ctx context.Context, memo audio.Payload) Outcome {
	start := time.Now()
	items, err := p.extract(ctx, memo)
	if err != nil {
		return failed(ExtractionFailed, &ExtractionError{Err: err})
	}
	if len(items) == 0 {
		return Outcome{Kind: Empty}
	}
	p.log.Debug("items extracted", zap.Int("count", len(items)), zap.Duration("took", time.Since(start)))

	title, err := p.title(ctx, strings.Join(items, ItemSeparator))
	if err != nil {
		return failed(TitleSynthesisFailed, &TitleError{Err: err})
	}
	list := p.store.Create(title, items)
	return Outcome{Kind: Success, List: list}
}

func (p *Pipeline) extract(ctx context.Context, memo audio.Payload) ([]string, error) {
	if p.extractor == nil {
		return nil, errors.New("no extractor configured")
	}
	ctx, cancel := withTimeout(ctx, p.timeouts.Extraction)
	defer cancel()
	items, err := p.extractor.ExtractItems(ctx, memo)
	if err != nil {
		return nil, err
	}
	kept := items[:0:0]
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			kept = append(kept, it)
		}
	}
	return kept, nil
}

func (p *Pipeline) title(ctx context.Context, content string) (string, error) {
	if p.titler == nil {
		return "", errors.New("no titler configured")
	}
	ctx, cancel := withTimeout(ctx, p.timeouts.Title)
	defer cancel()
	title, err := p.titler.GenerateTitle(ctx, content)
	if err != nil {
		return "", err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrBlankTitle
	}
	return title, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func (p *Pipeline) logOutcome(o Outcome) {
	switch o.Kind {
	case Success:
		p.log.Info("list created",
			zap.String("list_id", o.List.ID),
			zap.String("title", o.List.Title),
			zap.Int("items", len(o.List.Items)))
	case Empty:
		p.log.Info("no items found")
	case Failed:
		p.log.Warn("voice memo failed",
			zap.Stringer("reason", o.Reason),
			zap.Error(o.Err),
			zap.String("hint", ai.Diagnose(o.Err)))
	}
}
