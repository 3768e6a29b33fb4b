// Package httpjson writes the {status, data | code, message} envelope that
// the portal's browser script understands.
package httpjson

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/programme-lv/contest-portal/srvcerror"
)

type JsonResponse struct {
	Status  string `json:"status"` // "success" or "error"
	Data    any    `json:"data,omitempty"`
	ErrCode string `json:"code,omitempty"`
	ErrMsg  string `json:"message,omitempty"`
}

func writeJson(w http.ResponseWriter, statusCode int, resp JsonResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Default().Debug("writing json response", "error", err)
	}
}

func WriteSuccessJson(w http.ResponseWriter, data any) {
	writeJson(w, http.StatusOK, JsonResponse{
		Status: "success",
		Data:   data,
	})
}

func WriteErrorJson(w http.ResponseWriter, errMsg string, statusCode int, errCode string) {
	writeJson(w, statusCode, JsonResponse{
		Status:  "error",
		ErrMsg:  errMsg,
		ErrCode: errCode,
	})
}

// HandleError writes err as an error envelope. Service errors keep their
// status, code and user-facing message; anything else becomes a bare 500.
func HandleError(logger *slog.Logger, w http.ResponseWriter, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	srvcErr := &srvcerror.Error{}
	if !errors.As(err, &srvcErr) {
		logger.Error("internal server error", "error", err)
		WriteErrorJson(w,
			http.StatusText(http.StatusInternalServerError),
			http.StatusInternalServerError,
			srvcerror.ErrInternalSE().ErrorCode())
		return
	}

	status := srvcErr.HttpStatusCode()
	attrs := []any{"error", err, "code", srvcErr.ErrorCode(), "status", status}
	if srvcErr.DebugInfo() != nil {
		attrs = append(attrs, "debug", srvcErr.DebugInfo())
	}
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("service error", attrs...)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		logger.Info("service error", attrs...)
	default:
		logger.Warn("service error", attrs...)
	}
	WriteErrorJson(w, srvcErr.Error(), status, srvcErr.ErrorCode())
}
