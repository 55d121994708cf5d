package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/Makepad-fr/verbalist/internal/ai"
	"github.com/Makepad-fr/verbalist/internal/audio"
	"github.com/Makepad-fr/verbalist/internal/editing"
	"github.com/Makepad-fr/verbalist/internal/model"
	"github.com/Makepad-fr/verbalist/internal/pipeline"
)

type voiceMemoRequest struct {
	AudioDataURI string `json:"audioDataUri"`
}

type voiceMemoResponse struct {
	ListItems []string `json:"listItems"`
}

type listTitleRequest struct {
	ListContent string `json:"listContent"`
}

type listTitleResponse struct {
	Title string `json:"title"`
}

type outcomeResponse struct {
	Status string          `json:"status"`
	Notice pipeline.Notice `json:"notice"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	return true
}

func (s *Server) memo(w http.ResponseWriter, r *http.Request) (audio.Payload, bool) {
	var req voiceMemoRequest
	if !s.decode(w, r, &req) {
		return audio.Payload{}, false
	}
	p, err := audio.ParseDataURI(req.AudioDataURI)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return audio.Payload{}, false
	}
	return p, true
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func (s *Server) capabilityFailed(w http.ResponseWriter, what string, err error) {
	s.log.Warn(what+" failed", zap.Error(err), zap.String("hint", ai.Diagnose(err)))
	writeError(w, http.StatusBadGateway, what+" failed")
}

// handleVoiceMemo is the bare extraction capability.
func (s *Server) handleVoiceMemo(w http.ResponseWriter, r *http.Request) {
	memo, ok := s.memo(w, r)
	if !ok {
		return
	}
	ctx, cancel := withTimeout(r.Context(), s.timeouts.Extraction)
	defer cancel()
	items, err := s.ext.ExtractItems(ctx, memo)
	if err != nil {
		s.capabilityFailed(w, "list extraction", err)
		return
	}
	if items == nil {
		items = []string{}
	}
	writeJSON(w, http.StatusOK, voiceMemoResponse{ListItems: items})
}

// handleListTitle is the bare title capability.
func (s *Server) handleListTitle(w http.ResponseWriter, r *http.Request) {
	var req listTitleRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ListContent) == "" {
		writeError(w, http.StatusBadRequest, "listContent is required")
		return
	}
	ctx, cancel := withTimeout(r.Context(), s.timeouts.Title)
	defer cancel()
	title, err := s.tit.GenerateTitle(ctx, req.ListContent)
	if err != nil {
		s.capabilityFailed(w, "title synthesis", err)
		return
	}
	writeJSON(w, http.StatusOK, listTitleResponse{Title: title})
}

// handleCreateList runs the whole memo-to-list flow.
func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	memo, ok := s.memo(w, r)
	if !ok {
		return
	}
	o := s.pipe.Process(r.Context(), memo)
	switch o.Kind {
	case pipeline.Success:
		writeJSON(w, http.StatusCreated, o.List)
	case pipeline.Empty:
		writeJSON(w, http.StatusOK, outcomeResponse{Status: "empty", Notice: o.Notice()})
	default:
		writeJSON(w, http.StatusBadGateway, outcomeResponse{Status: "failed", Notice: o.Notice()})
	}
}

func (s *Server) handleLists(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Lists())
}

func (s *Server) handleUpdateList(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var l model.ToDoList
	if !s.decode(w, r, &l) {
		return
	}
	if l.ID == "" {
		l.ID = id
	}
	if l.ID != id {
		writeError(w, http.StatusBadRequest, "list id does not match path")
		return
	}
	l = tidyList(l)
	if err := l.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.store.Update(l) {
		writeError(w, http.StatusNotFound, "list not found")
		return
	}
	updated, _ := s.store.Get(id)
	writeJSON(w, http.StatusOK, updated)
}

// tidyList trims the title and item texts; items left blank are removed,
// as committing an empty edit does.
func tidyList(l model.ToDoList) model.ToDoList {
	l = l.Clone()
	l.Title = strings.TrimSpace(l.Title)
	items := l.Items[:0]
	for _, it := range l.Items {
		if it.Text = strings.TrimSpace(it.Text); it.Text != "" {
			items = append(items, it)
		}
	}
	l.Items = items
	return l
}

func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	s.store.Delete(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	l, ok := s.store.Modify(chi.URLParam(r, "id"), func(cur model.ToDoList) model.ToDoList {
		next, _ := editing.AddItem(cur, nil)
		return next
	})
	if !ok {
		writeError(w, http.StatusNotFound, "list not found")
		return
	}
	writeJSON(w, http.StatusCreated, l)
}
