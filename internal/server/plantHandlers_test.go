package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"leaflog/internal/lifecycle"
	"leaflog/internal/model"
)

type noopLogger struct{}

func (noopLogger) Trace(...any)          {}
func (noopLogger) Debug(...any)          {}
func (noopLogger) Info(...any)           {}
func (noopLogger) Warn(...any)           {}
func (noopLogger) Error(...any)          {}
func (noopLogger) Tracef(string, ...any) {}
func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Infof(string, ...any)  {}
func (noopLogger) Warnf(string, ...any)  {}
func (noopLogger) Errorf(string, ...any) {}

func TestWriteLifecycleError(t *testing.T) {
	s := Server{Logger: noopLogger{}}
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"validation", errors.Wrap(lifecycle.ErrValidation, "a name is required"), http.StatusBadRequest},
		{"event log full", lifecycle.ErrEventLogFull, http.StatusUnprocessableEntity},
		{"not found", lifecycle.ErrNotFound, http.StatusNotFound},
		{"store unavailable", lifecycle.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.writeLifecycleError(rec, "test", tt.err)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestToPlantJson(t *testing.T) {
	watered := primitive.NewDateTimeFromTime(time.Now().AddDate(0, 0, -3))
	p := model.Plant{
		ID:          primitive.NewObjectID(),
		Name:        "Monstera",
		Status:      model.StatusAlive,
		Image:       "http://img/a.jpg",
		LastWatered: watered,
		Events: []model.Event{
			{ID: "2", Type: model.EventWatering, Date: watered, Attempt: 2},
			{ID: "1", Type: model.EventRevived, Date: watered, Attempt: 2},
		},
	}

	pj := toPlantJson(p)
	assert.Equal(t, 2, pj.CurrentAttempt)
	assert.Equal(t, 3, pj.DaysSinceWatered)
	require.Len(t, pj.Gallery, 1, "primary image is merged into the gallery")
	assert.Equal(t, "http://img/a.jpg", pj.Gallery[0].ImageURL)

	data, err := json.Marshal(pj)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, p.ID.Hex(), out["plant_id"])
	assert.EqualValues(t, 2, out["current_attempt"])
	assert.NotContains(t, out, "owner_id")
}

func TestWriteJsonResponse(t *testing.T) {
	s := Server{Logger: noopLogger{}}
	rec := httptest.NewRecorder()
	s.writeJsonResponse(rec, map[string]bool{"success": true}, http.StatusCreated)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}
