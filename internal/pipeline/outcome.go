package pipeline

import (
	"errors"
	"fmt"

	"github.com/Makepad-fr/verbalist/internal/model"
)

// State is the pipeline's resting or working state.
type State int

const (
	Idle State = iota
	Recording
	Transcribing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Transcribing:
		return "transcribing"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Kind classifies a finished run.
type Kind int

const (
	Success Kind = iota + 1
	Empty
	Failed
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Empty:
		return "empty"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Reason says why a run failed.
type Reason int

const (
	NoReason Reason = iota
	CapabilityUnsupported
	PermissionDenied
	CaptureFailed
	ExtractionFailed
	TitleSynthesisFailed
)

func (r Reason) String() string {
	switch r {
	case NoReason:
		return "none"
	case CapabilityUnsupported:
		return "capability-unsupported"
	case PermissionDenied:
		return "permission-denied"
	case CaptureFailed:
		return "capture-failed"
	case ExtractionFailed:
		return "extraction-failed"
	case TitleSynthesisFailed:
		return "title-synthesis-failed"
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// Outcome is the transient result of one voice memo.
type Outcome struct {
	Kind   Kind
	Reason Reason
	Err    error
	List   model.ToDoList
}

// Notice is the user-facing message for an outcome.
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Destructive bool   `json:"destructive"`
}

func (o Outcome) Notice() Notice {
	switch o.Kind {
	case Success:
		return Notice{
			Title:       "List created",
			Description: fmt.Sprintf("%q with %d items", o.List.Title, len(o.List.Items)),
		}
	case Empty:
		return Notice{
			Title:       "No items found",
			Description: "We couldn't find any list items in your recording. Please try again.",
		}
	}
	switch o.Reason {
	case CapabilityUnsupported:
		return Notice{
			Title:       "Audio Recording Not Supported",
			Description: "Your system does not support this feature.",
			Destructive: true,
		}
	case PermissionDenied:
		return Notice{
			Title:       "Microphone Access Denied",
			Description: "Please allow microphone access in your system settings.",
			Destructive: true,
		}
	}
	return Notice{
		Title:       "An Error Occurred",
		Description: "Failed to process your voice memo. Please try again.",
		Destructive: true,
	}
}

func failed(r Reason, err error) Outcome {
	return Outcome{Kind: Failed, Reason: r, Err: err}
}

// ErrBlankTitle reports a title synthesis reply with no text.
var ErrBlankTitle = errors.New("title is blank")

// ExtractionError wraps a list extraction failure.
type ExtractionError struct{ Err error }

func (e *ExtractionError) Error() string { return "extract list items: " + e.Err.Error() }
func (e *ExtractionError) Unwrap() error { return e.Err }

// TitleError wraps a title synthesis failure.
type TitleError struct{ Err error }

func (e *TitleError) Error() string { return "generate list title: " + e.Err.Error() }
func (e *TitleError) Unwrap() error { return e.Err }
