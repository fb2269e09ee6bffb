package problem

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hackhub-dev/server/internal/validation"
	"github.com/stretchr/testify/require"
)

func TestWrite_DevIncludesDetail(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com/api/events", nil)
	res := httptest.NewRecorder()

	Write(res, req, http.StatusInternalServerError, "Server error while fetching events", errors.New("boom"), "development")

	require.Equal(t, http.StatusInternalServerError, res.Code)
	require.Equal(t, "application/json", res.Result().Header.Get("Content-Type"))

	var body Failure
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.False(t, body.Success)
	require.Equal(t, "Server error while fetching events", body.Message)
	require.Equal(t, "boom", body.Detail)
}

func TestWrite_ProdHidesDetail(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com/api/events", nil)
	res := httptest.NewRecorder()

	Write(res, req, http.StatusInternalServerError, "Server error while fetching events", errors.New("dial tcp: refused"), "production")

	var body map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.NotContains(t, body, "detail")
	require.Equal(t, false, body["success"])
}

func TestWrite_CodeAndErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "http://example.com/api/events/x/register", nil)
	res := httptest.NewRecorder()

	Write(res, req, http.StatusBadRequest, "Event is full", nil, "production",
		WithCode("event-full"),
		WithErrors([]validation.FieldError{{Field: "id", Message: "bad"}}),
	)

	var body Failure
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.Equal(t, "event-full", body.Code)
	require.Len(t, body.Errors, 1)
}

func TestSuccessMergesPayload(t *testing.T) {
	res := httptest.NewRecorder()

	Success(res, http.StatusCreated, "Event created successfully", Payload{"event": map[string]string{"id": "1"}})

	require.Equal(t, http.StatusCreated, res.Code)
	var body map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.Equal(t, true, body["success"])
	require.Equal(t, "Event created successfully", body["message"])
	require.Contains(t, body, "event")
}

func TestSuccessOmitsEmptyMessage(t *testing.T) {
	res := httptest.NewRecorder()

	Success(res, http.StatusOK, "", nil)

	var body map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.NotContains(t, body, "message")
}
