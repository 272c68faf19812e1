package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "ijazah/pkg/domain-errors"
)

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestWriteError_DomainError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, dErrors.New(dErrors.CodeNotFound, "credential not found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeErrorBody(t, rec)
	assert.Equal(t, "not_found", body["error"])
	assert.Equal(t, "credential not found", body["error_description"])
}

func TestWriteError_UnwrapsWrappedDomainError(t *testing.T) {
	// Domain errors passing through fmt.Errorf chains keep their status.
	wrapped := fmt.Errorf("loading credential: %w",
		dErrors.New(dErrors.CodeAlreadyFinalized, "anchor record already finalized"))

	rec := httptest.NewRecorder()
	WriteError(rec, wrapped)

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeErrorBody(t, rec)
	assert.Equal(t, "already_finalized", body["error"])
}

func TestWriteError_PlainErrorIsInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("connection reset"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeErrorBody(t, rec)
	assert.Equal(t, "internal_error", body["error"])
	// Raw infrastructure detail never leaks into the response.
	assert.NotContains(t, body, "error_description")
}
