package utils

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/nijaru/yt-summary/errors"
	"github.com/nijaru/yt-summary/models"
)

func HandleError(w http.ResponseWriter, message string, statusCode int) {
	RespondWithError(w, logrus.StandardLogger(), errors.New(statusCode, "utils.HandleError", nil, message))
}

// RespondWithError writes err as {"error": message}. Errors that are not an
// AppError are reported as a generic 500 so internal details never reach the
// client.
func RespondWithError(w http.ResponseWriter, logger logrus.FieldLogger, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.Internal("utils.RespondWithError", err, "Internal server error")
	}

	entry := logger.WithFields(logrus.Fields{
		"status_code": appErr.Code,
		"op":          appErr.Op,
		"error":       appErr.Error(),
	})
	if appErr.Code >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}

	writeJSON(w, logger, appErr.Code, models.ErrorResponse{Error: appErr.Message})
}

func RespondWithJSON(w http.ResponseWriter, logger logrus.FieldLogger, code int, payload any) {
	writeJSON(w, logger, code, payload)
}

func writeJSON(w http.ResponseWriter, logger logrus.FieldLogger, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.WithError(err).Error("Failed to encode JSON response")
	}
}
