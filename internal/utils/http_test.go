package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-trip-keeper/models"
)

func TestWriteJSON_Snapshot(t *testing.T) {
	w := httptest.NewRecorder()
	snapshot := models.Snapshot{
		models.Trips:    json.RawMessage(`[{"id":"t1","name":"Lisbon"}]`),
		models.Settings: json.RawMessage(`{"currency":"EUR"}`),
	}

	n, err := WriteJSON(w, snapshot, http.StatusOK)
	require.NoError(t, err)

	assert.Equal(t, w.Body.Len(), n)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var got models.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.JSONEq(t, `[{"id":"t1","name":"Lisbon"}]`, string(got[models.Trips]))
	assert.JSONEq(t, `{"currency":"EUR"}`, string(got[models.Settings]))
	assert.Equal(t, []models.Collection{models.Trips, models.Settings}, got.Present())
}

func TestWriteJSON_SyncResultOmitsEmptyLists(t *testing.T) {
	w := httptest.NewRecorder()

	_, err := WriteJSON(w, models.SyncResult{Success: true, Pushed: []models.Collection{models.Expenses}}, http.StatusAccepted)
	require.NoError(t, err)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"success":true,"pushed":["expenses"]}`, w.Body.String())
}

func TestWriteJSON_MalformedBlob(t *testing.T) {
	w := httptest.NewRecorder()

	// a raw message must itself be valid JSON
	_, err := WriteJSON(w, models.Snapshot{models.Todos: json.RawMessage(`[{"id":`)}, http.StatusOK)

	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEqual(t, "application/json", w.Header().Get("Content-Type"))
}

func TestWriteJSON_EmptySnapshot(t *testing.T) {
	tests := []struct {
		name string
		data any
		want string
	}{
		{"nil snapshot", models.Snapshot(nil), "null"},
		{"empty snapshot", models.Snapshot{}, "{}"},
		{"empty ledger", models.DeletedItemsLedger{}, "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			_, err := WriteJSON(w, tt.data, http.StatusOK)
			require.NoError(t, err)
			assert.Equal(t, tt.want, w.Body.String())
		})
	}
}
