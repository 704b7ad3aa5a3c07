package api

import (
	"net/http"

	"github.com/vytor/quizflash/internal/errors"
	"github.com/vytor/quizflash/internal/logger"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handleError centralizes error handling for HTTP responses
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	handleErrorWith(w, r, err, nil)
}

// handleErrorWith writes err plus extra top-level fields, such as the state a
// failed update fell back to.
func handleErrorWith(w http.ResponseWriter, r *http.Request, err error, extra map[string]any) {
	log := logger.FromContext(r.Context())

	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.NewInternalError(err)
	}

	if appErr.Status >= 500 {
		log.Error("server error: %v", appErr)
	} else if appErr.Status >= 400 {
		log.Warn("client error: %v", appErr)
	} else {
		log.Debug("error: %v", appErr)
	}

	body := map[string]any{
		"error": errorBody{Code: appErr.Code, Message: appErr.Message},
	}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, r, appErr.Status, body)
}
