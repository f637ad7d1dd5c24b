package flashcards

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyaid/backend/internal/models"
)

func newTestRouter() *mux.Router {
	r := mux.NewRouter()
	NewHandler(NewService(newMemoryRepo())).RegisterRoutes(r)
	return r
}

func send(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func TestHandlerCRUD(t *testing.T) {
	r := newTestRouter()

	rec := send(t, r, "POST", "/flashcards", models.CreateFlashcardRequest{OwnerID: 1, Question: "Q1", Answer: "A1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created models.FlashcardResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, 3, created.Difficulty)
	assert.Equal(t, 0, created.Mastery)

	rec = send(t, r, "GET", "/flashcards/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = send(t, r, "PUT", "/flashcards/"+created.ID, map[string]interface{}{"question": "Q1 edited"})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated models.FlashcardResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&updated))
	assert.Equal(t, "Q1 edited", updated.Question)

	rec = send(t, r, "POST", "/flashcards/"+created.ID+"/performance", map[string]interface{}{"is_correct": true, "difficulty": 2})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = send(t, r, "GET", "/flashcards/"+created.ID, nil)
	var reviewed models.FlashcardResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&reviewed))
	assert.Equal(t, 1, reviewed.CorrectAnswers)
	assert.Equal(t, 100, reviewed.Mastery)

	rec = send(t, r, "DELETE", "/flashcards/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = send(t, r, "GET", "/flashcards/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerValidation(t *testing.T) {
	r := newTestRouter()

	rec := send(t, r, "POST", "/flashcards", models.CreateFlashcardRequest{Question: "Q", Answer: "A", Difficulty: 9})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/flashcards", bytes.NewBufferString("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(t, r, "GET", "/flashcards?owner_id=x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(t, r, "GET", "/flashcards?sort_by=answer", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerBulkAndList(t *testing.T) {
	r := newTestRouter()

	rec := send(t, r, "POST", "/flashcards/bulk", models.BulkCreateRequest{OwnerID: 3, Content: "Q: a\nA: b\nQ: c\nA: d"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var bulk models.BulkCreateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&bulk))
	assert.Len(t, bulk.Created, 2)

	rec = send(t, r, "GET", "/flashcards?owner_id=3&limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list models.FlashcardListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Equal(t, 2, list.Total)
	assert.Len(t, list.Flashcards, 1)

	rec = send(t, r, "GET", "/flashcards?owner_id=4", nil)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Equal(t, 0, list.Total)
	assert.NotNil(t, list.Flashcards)
}
