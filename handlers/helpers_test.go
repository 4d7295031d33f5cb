package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/otalvarodev/liga-live/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("valid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Aguilas"}`))
		var dst payload
		require.NoError(t, readJSON(httptest.NewRecorder(), req, &dst))
		assert.Equal(t, "Aguilas", dst.Name)
	})

	t.Run("unknown field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","bogus":1}`))
		var dst payload
		err := readJSON(httptest.NewRecorder(), req, &dst)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown key")
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
		var dst payload
		assert.Error(t, readJSON(httptest.NewRecorder(), req, &dst))
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		var dst payload
		err := readJSON(httptest.NewRecorder(), req, &dst)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must not be empty")
	})

	t.Run("trailing value", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}{"name":"y"}`))
		var dst payload
		err := readJSON(httptest.NewRecorder(), req, &dst)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "single JSON value")
	})
}

func TestMapServiceError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"match not found", services.ErrMatchNotFound, http.StatusNotFound},
		{"bracket not found", services.ErrBracketNotFound, http.StatusNotFound},
		{"invalid transition", services.ErrInvalidTransition, http.StatusConflict},
		{"immutable state", services.ErrImmutableState, http.StatusConflict},
		{"not in progress", services.ErrMatchNotInProgress, http.StatusConflict},
		{"scheduling conflict", services.ErrSchedulingConflict, http.StatusConflict},
		{"ineligible player", services.ErrPlayerNotEligible, http.StatusUnprocessableEntity},
		{"foreign team", services.ErrTeamNotInMatch, http.StatusUnprocessableEntity},
		{"invalid kind", services.ErrInvalidEventKind, http.StatusUnprocessableEntity},
		{"too few qualifiers", services.ErrInsufficientQualifiers, http.StatusUnprocessableEntity},
		{"unexpected", errors.New("pq: connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/matches/1/start", nil)
			rec := httptest.NewRecorder()

			mapServiceError(rec, req, logger, tc.err)
			assert.Equal(t, tc.status, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body, "error")
		})
	}
}

func TestMapServiceErrorHidesInternalDetails(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	req := httptest.NewRequest(http.MethodGet, "/matches/1", nil)
	rec := httptest.NewRecorder()

	mapServiceError(rec, req, logger, errors.New("dial tcp 10.0.0.5:5432: timeout"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}
