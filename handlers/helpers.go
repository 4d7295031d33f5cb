package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/otalvarodev/liga-live/services"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	if err = dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, status int, message interface{}) {
	if err := writeJSON(w, status, jsonResponse{"error": message}); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func badRequestResponse(w http.ResponseWriter, err error) {
	errorResponse(w, http.StatusBadRequest, err.Error())
}

// mapServiceError translates domain sentinels to structured HTTP failures.
// Unexpected errors are logged with context and surfaced as a generic 500,
// never with internal details.
func mapServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrMatchNotFound),
		errors.Is(err, services.ErrBracketNotFound):
		errorResponse(w, http.StatusNotFound, err.Error())

	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrMatchNotInProgress),
		errors.Is(err, services.ErrMatchNotEditable):
		errorResponse(w, http.StatusConflict, err.Error())

	case errors.Is(err, services.ErrImmutableState):
		errorResponse(w, http.StatusConflict, err.Error())

	case errors.Is(err, services.ErrSchedulingConflict):
		errorResponse(w, http.StatusConflict, err.Error())

	case errors.Is(err, services.ErrPlayerNotEligible),
		errors.Is(err, services.ErrTeamNotInMatch),
		errors.Is(err, services.ErrInvalidEventKind),
		errors.Is(err, services.ErrInsufficientTeams),
		errors.Is(err, services.ErrInsufficientQualifiers),
		errors.Is(err, services.ErrUnsupportedFormat),
		errors.Is(err, services.ErrValidationFailed):
		errorResponse(w, http.StatusUnprocessableEntity, err.Error())

	default:
		logger.Error("internal server error",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		errorResponse(w, http.StatusInternalServerError,
			"the server encountered a problem and could not process your request")
	}
}
