package practice

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/studyaid/backend/internal/models"
)

// TokenIssuer binds a bearer token to a session id.
type TokenIssuer interface {
	Issue(sessionID string) (string, error)
}

type Handler struct {
	service *Service
	tokens  TokenIssuer
}

func NewHandler(service *Service, tokens TokenIssuer) *Handler {
	return &Handler{service: service, tokens: tokens}
}

// RegisterRoutes mounts the practice API on r. Per-session routes are
// wrapped in requireToken.
func (h *Handler) RegisterRoutes(r *mux.Router, requireToken mux.MiddlewareFunc) {
	r.HandleFunc("/practice", h.Start).Methods("POST")
	r.HandleFunc("/practice/results", h.ListResults).Methods("GET")

	session := r.PathPrefix("/practice/{id}").Subrouter()
	if requireToken != nil {
		session.Use(requireToken)
	}
	session.HandleFunc("", h.GetSession).Methods("GET")
	session.HandleFunc("/reveal", h.Reveal).Methods("POST")
	session.HandleFunc("/correct", h.MarkCorrect).Methods("POST")
	session.HandleFunc("/incorrect", h.MarkIncorrect).Methods("POST")
	session.HandleFunc("/pause", h.TogglePause).Methods("POST")
	session.HandleFunc("/reorder", h.Reorder).Methods("POST")
	session.HandleFunc("/hint", h.Hint).Methods("GET")
	session.HandleFunc("/save", h.Save).Methods("POST")
	session.HandleFunc("/exit", h.Exit).Methods("POST")
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req models.StartPracticeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.CardLimit < 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "card_limit must not be negative"})
		return
	}
	if req.Difficulty != nil && (*req.Difficulty < models.MinDifficulty || *req.Difficulty > models.MaxDifficulty) {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "difficulty must be between 1 and 5"})
		return
	}

	session, err := h.service.Start(r.Context(), req)
	switch {
	case errors.Is(err, ErrNoFlashcards):
		writeJSON(w, http.StatusOK, models.StartPracticeResponse{
			Status:  models.SessionEmpty,
			Message: "No flashcards available for practice",
		})
		return
	case errors.Is(err, ErrInvalidFlashcard):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	case err != nil:
		log.Printf("[practice] start failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to start practice"})
		return
	}

	resp := models.StartPracticeResponse{
		SessionID: session.ID(),
		Status:    models.SessionActive,
	}
	if h.tokens != nil {
		token, err := h.tokens.Issue(session.ID())
		if err != nil {
			log.Printf("[practice] issue token for %s: %v", session.ID(), err)
			h.service.manager.Remove(session.ID())
			writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to start practice"})
			return
		}
		resp.Token = token
	}
	view := session.View()
	resp.View = &view

	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) ListResults(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var ownerID *int64
	if s := query.Get("owner_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid owner_id"})
			return
		}
		ownerID = &id
	}

	limit := intQueryParam(query, "limit", models.DefaultPageSize)
	if limit > models.MaxPageSize {
		limit = models.MaxPageSize
	}
	offset := intQueryParam(query, "offset", 0)

	results, err := h.service.Results(r.Context(), ownerID, limit, offset)
	if err != nil {
		log.Printf("[practice] list results: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list results"})
		return
	}

	if results == nil {
		results = []models.PracticeResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session.View())
}

func (h *Handler) Reveal(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, (*Session).Reveal)
}

func (h *Handler) MarkCorrect(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, (*Session).MarkCorrect)
}

func (h *Handler) MarkIncorrect(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, (*Session).MarkIncorrect)
}

func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, (*Session).Recalculate)
}

func (h *Handler) TogglePause(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(s *Session) bool {
		if s.Status() != models.SessionActive {
			return false
		}
		s.TogglePause()
		return true
	})
}

func (h *Handler) Exit(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, (*Session).Exit)
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	stats := session.Save()
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) Hint(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	hint, available := session.Hint()
	writeJSON(w, http.StatusOK, models.HintResponse{Available: available, Hint: hint})
}

func (h *Handler) act(w http.ResponseWriter, r *http.Request, fn func(*Session) bool) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	applied := fn(session)
	writeJSON(w, http.StatusOK, models.ActionResponse{Applied: applied, View: session.View()})
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	session, err := h.service.Session(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Session not found"})
		return nil, false
	}
	return session, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func intQueryParam(query url.Values, key string, defaultVal int) int {
	s := query.Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	return v
}
