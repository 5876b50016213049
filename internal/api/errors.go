package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/babylonlabs-io/metrics-publisher/internal/types"
	"github.com/rs/zerolog/log"
)

type ErrorResponse struct {
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to write response")
	}
}

// writeError answers with the status of a types.Error, any other error is an
// internal one and its message is not exposed.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	apiErr, ok := types.AsError(err)
	if !ok {
		log.Ctx(ctx).Error().Err(err).Msg("unexpected error")
		apiErr = types.NewErrorWithMsg(http.StatusInternalServerError, types.InternalServiceError, "internal service error")
	} else if apiErr.StatusCode >= http.StatusInternalServerError {
		log.Ctx(ctx).Error().Err(err).Str("error_code", apiErr.ErrorCode.String()).Msg("request failed")
	}

	writeJSON(ctx, w, apiErr.StatusCode, ErrorResponse{
		ErrorCode: apiErr.ErrorCode.String(),
		Message:   apiErr.Err.Error(),
	})
}
