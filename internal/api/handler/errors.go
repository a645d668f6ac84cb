package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"streamgate/internal/domain"
	"streamgate/internal/downloader"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// statusForError maps engine and extractor failures onto HTTP status
// codes. Anything unrecognized is a 500.
func statusForError(err error) int {
	var (
		passwordErr  *domain.PasswordRequiredError
		wrongPassErr *domain.WrongPasswordError
		timeErr      *domain.InvalidTimeError
		protoErr     *domain.ProtocolError
		extErr       *domain.ExtractorError
		statusErr    *downloader.StatusError
	)

	switch {
	case errors.As(err, &passwordErr), errors.As(err, &wrongPassErr):
		return http.StatusUnauthorized
	case errors.As(err, &timeErr),
		errors.As(err, &protoErr),
		errors.Is(err, domain.ErrPlaylistConversion),
		errors.Is(err, domain.ErrRemuxConflict),
		errors.Is(err, domain.ErrRemuxNeedsTwoURLs):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrEmptyURL),
		errors.As(err, &extErr),
		errors.As(err, &statusErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
