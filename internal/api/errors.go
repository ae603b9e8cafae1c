// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jaycherian/gcp-go-temporal-align/internal/core/model"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/sampling"
	"github.com/jaycherian/gcp-go-temporal-align/internal/core/services"
	"github.com/jaycherian/gcp-go-temporal-align/internal/dataset"
)

// ErrorResponse is the body of every non-2xx response. Invariant names the
// rule the request broke and Details carries the values that broke it.
type ErrorResponse struct {
	Error     string         `json:"error"`
	Invariant string         `json:"invariant,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// NewErrorResponse classifies err and returns its status code and body.
func NewErrorResponse(err error) (int, ErrorResponse) {
	out := ErrorResponse{Error: err.Error()}

	var configErr *sampling.ConfigError
	var splitErr *sampling.DegenerateSplitError
	var groupsErr *sampling.InsufficientGroupsError

	switch {
	case errors.As(err, &configErr):
		out.Invariant = "invalid_configuration"
		out.Details = map[string]any{"field": configErr.Field, "value": configErr.Value, "reason": configErr.Reason}
		return http.StatusBadRequest, out
	case errors.As(err, &splitErr):
		out.Invariant = "degenerate_split"
		out.Details = map[string]any{
			"num_frames":   splitErr.NumFrames,
			"num_segments": splitErr.NumSegments,
			"overlap_rate": splitErr.OverlapRate,
			"avg_len":      splitErr.AvgLen,
			"half_lap":     splitErr.HalfLap,
			"segment":      splitErr.Segment,
		}
		return http.StatusUnprocessableEntity, out
	case errors.As(err, &groupsErr):
		out.Invariant = "insufficient_groups"
		out.Details = map[string]any{"groups": groupsErr.Groups, "retained": groupsErr.Retained, "required": 2}
		return http.StatusUnprocessableEntity, out
	case errors.Is(err, sampling.ErrInvalidConfiguration):
		out.Invariant = "invalid_configuration"
		return http.StatusBadRequest, out
	case errors.Is(err, sampling.ErrDegenerateSplit):
		out.Invariant = "degenerate_split"
		return http.StatusUnprocessableEntity, out
	case errors.Is(err, sampling.ErrInsufficientGroups):
		out.Invariant = "insufficient_groups"
		return http.StatusUnprocessableEntity, out
	case errors.Is(err, model.ErrInvalidRecord):
		out.Invariant = "invalid_record"
		return http.StatusBadRequest, out
	case errors.Is(err, services.ErrInvalidRequest):
		return http.StatusBadRequest, out
	case errors.Is(err, dataset.ErrUnknownSplit):
		out.Invariant = "unknown_split"
		return http.StatusNotFound, out
	case errors.Is(err, dataset.ErrRecordNotFound):
		out.Invariant = "record_not_found"
		return http.StatusNotFound, out
	case errors.Is(err, services.ErrNoDataset):
		return http.StatusServiceUnavailable, out
	default:
		return http.StatusInternalServerError, out
	}
}

// abortWithError writes the classified error and stops the handler chain.
func abortWithError(c *gin.Context, err error) {
	status, body := NewErrorResponse(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	} else {
		slog.DebugContext(c.Request.Context(), "request rejected", "path", c.FullPath(), "status", status, "error", err)
	}
	c.AbortWithStatusJSON(status, body)
}
