package flashcards

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/studyaid/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/flashcards", h.Create).Methods("POST")
	r.HandleFunc("/flashcards", h.List).Methods("GET")
	r.HandleFunc("/flashcards/bulk", h.BulkCreate).Methods("POST")
	r.HandleFunc("/flashcards/{id}", h.Get).Methods("GET")
	r.HandleFunc("/flashcards/{id}", h.Update).Methods("PUT")
	r.HandleFunc("/flashcards/{id}", h.Delete).Methods("DELETE")
	r.HandleFunc("/flashcards/{id}/performance", h.RecordPerformance).Methods("POST")
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateFlashcardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	card, err := h.service.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, "Failed to create flashcard")
		return
	}
	writeJSON(w, http.StatusCreated, models.NewFlashcardResponse(*card))
}

func (h *Handler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	var req models.BulkCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.BulkCreate(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, "Failed to create flashcards")
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := models.FlashcardFilter{
		Search:     query.Get("search"),
		SortBy:     models.SortField(query.Get("sort_by")),
		Descending: query.Get("order") == "desc",
		Limit:      intQueryParam(query, "limit", models.DefaultPageSize),
		Offset:     intQueryParam(query, "offset", 0),
	}

	var ok bool
	if filter.OwnerID, ok = int64QueryParam(query, "owner_id"); !ok {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid owner_id"})
		return
	}
	if filter.StudyMaterialID, ok = int64QueryParam(query, "study_material_id"); !ok {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid study_material_id"})
		return
	}
	if s := query.Get("difficulty"); s != "" {
		d, err := strconv.Atoi(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid difficulty"})
			return
		}
		filter.Difficulty = &d
	}

	resp, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err, "Failed to list flashcards")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	card, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err, "Failed to get flashcard")
		return
	}
	writeJSON(w, http.StatusOK, models.NewFlashcardResponse(*card))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateFlashcardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	card, err := h.service.Update(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		writeServiceError(w, err, "Failed to update flashcard")
		return
	}
	writeJSON(w, http.StatusOK, models.NewFlashcardResponse(*card))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err, "Failed to delete flashcard")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RecordPerformance(w http.ResponseWriter, r *http.Request) {
	var u models.PerformanceUpdate
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	u.ID = mux.Vars(r)["id"]

	if err := h.service.UpdatePerformance(r.Context(), u); err != nil {
		writeServiceError(w, err, "Failed to record performance")
		return
	}
	writeJSON(w, http.StatusOK, models.StatusResponse{Status: "recorded"})
}

func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Flashcard not found"})
	case errors.Is(err, ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
	default:
		log.Printf("[flashcards] %s: %v", fallback, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: fallback})
	}
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

// int64QueryParam returns nil for an absent key and false for a malformed one.
func int64QueryParam(query url.Values, key string) (*int64, bool) {
	s := query.Get(key)
	if s == "" {
		return nil, true
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, false
	}
	return &v, true
}
