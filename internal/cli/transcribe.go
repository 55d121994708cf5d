package cli

import (
	"bufio"
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/Makepad-fr/verbalist/internal/audio"
	"github.com/Makepad-fr/verbalist/internal/model"
	"github.com/Makepad-fr/verbalist/internal/pipeline"
	"github.com/Makepad-fr/verbalist/internal/store"
	"github.com/Makepad-fr/verbalist/internal/store/jsonstore"
	"github.com/Makepad-fr/verbalist/internal/ui"
)

type transcribeOptions struct {
	duration time.Duration
	json     bool
	out      string
	export   bool
}

func (a *app) transcribeCmd() *cobra.Command {
	var opts transcribeOptions
	cmd := &cobra.Command{
		Use:   "transcribe [file.wav]",
		Short: "Turn one voice memo into a list and print it",
		Long: `Records a voice memo from the microphone until enter is pressed, or reads
a WAV file, and prints the resulting list.`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTranscribe(cmd.Context(), args, opts)
		},
	}
	f := cmd.Flags()
	f.DurationVarP(&opts.duration, "duration", "d", 0, "stop recording after this long (default: on enter)")
	f.BoolVar(&opts.json, "json", false, "print the list as JSON")
	f.StringVarP(&opts.out, "out", "o", "", "also export the list to this JSON file")
	f.BoolVar(&opts.export, "export", false, "also export the list to verbalist-<time>.json in the working directory")
	return cmd
}

func (a *app) runTranscribe(ctx context.Context, args []string, opts transcribeOptions) error {
	if opts.duration < 0 {
		return usagef("--duration cannot be negative, got %s", opts.duration)
	}
	log, err := a.logger("stderr")
	if err != nil {
		return err
	}
	defer log.Sync()

	client, err := a.aiClient(ctx, log)
	if err != nil {
		return err
	}

	live := len(args) == 0
	var src audio.Source
	if live {
		src = a.microphone(a.cfg.Audio.MaxDuration)
	} else {
		src = &audio.FileSource{Path: args[0], ChunkBytes: a.cfg.Audio.ChunkBytes}
	}
	p := pipeline.New(pipeline.Deps{
		Source:    src,
		Extractor: client,
		Titler:    client,
		Store:     store.New(store.WithLogger(log), store.WithClock(a.now)),
		Logger:    log,
		Timeouts:  a.timeouts(),
	})

	pr := a.printer()
	if o, done := p.Start(ctx); done {
		return a.report(pr, o, opts)
	}
	if live {
		hint := "Press enter to stop."
		if opts.duration > 0 {
			hint = fmt.Sprintf("Stopping in %s, or press enter.", opts.duration)
		}
		fmt.Fprintln(a.stderr, pr.C(pr.Theme.Accent, "● Recording. "+hint))
	}
	if err := a.waitForStop(ctx, p, live, opts.duration); err != nil {
		p.Abort()
		return err
	}
	if live {
		fmt.Fprintln(a.stderr, pr.C(pr.Theme.Muted, "Creating your list..."))
	}
	o, _ := p.Stop(ctx)
	return a.report(pr, o, opts)
}

// waitForStop blocks until the capture ends, the user presses enter (live
// only), the duration elapses, or ctx is done.
func (a *app) waitForStop(ctx context.Context, p *pipeline.Pipeline, live bool, d time.Duration) error {
	var enter <-chan struct{}
	if live {
		enter = a.readLine()
	}
	var deadline <-chan time.Time
	if d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		deadline = t.C
	}
	select {
	case <-p.CaptureDone():
	case <-enter:
	case <-deadline:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// readLine signals once a full line has been read from stdin. A closed stdin
// never signals.
func (a *app) readLine() <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		if _, err := bufio.NewReader(a.stdin).ReadString('\n'); err == nil {
			close(ch)
		}
	}()
	return ch
}

type outcomeError struct {
	notice pipeline.Notice
	err    error
}

func (e *outcomeError) Error() string {
	return e.notice.Title + ": " + e.notice.Description
}

func (e *outcomeError) Unwrap() error { return e.err }

func (a *app) report(pr *ui.Printer, o pipeline.Outcome, opts transcribeOptions) error {
	n := o.Notice()
	switch o.Kind {
	case pipeline.Empty:
		fmt.Fprintln(a.stderr, pr.C(pr.Theme.Muted, n.Title+". "+n.Description))
		return nil
	case pipeline.Success:
	default:
		return &outcomeError{notice: n, err: o.Err}
	}

	if opts.out == "" && opts.export {
		path, err := jsonstore.DefaultPath(a.now())
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		opts.out = path
	}
	if opts.out != "" {
		if err := jsonstore.Export(opts.out, []model.ToDoList{o.List}); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}
	if opts.json {
		b, err := json.MarshalIndent(o.List, "", "  ")
		if err != nil {
			return fmt.Errorf("json marshal: %w", err)
		}
		_, err = fmt.Fprintln(a.stdout, string(b))
		return err
	}
	pr.List(o.List, a.now())
	if opts.out != "" {
		pr.OK("exported to " + opts.out)
	}
	return nil
}
