package api

import (
	"errors"
	"net/http"

	service "github.com/okian/housescore/internal/app"
	"github.com/okian/housescore/internal/domain/model"
	"github.com/okian/housescore/internal/domain/types"
	"github.com/okian/housescore/pkg/logger"
	"github.com/okian/housescore/pkg/metrics"
)

// ScoreHandler handles scoring invocations.
type ScoreHandler struct {
	scorer       Scorer
	maxBodyBytes int64
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(scorer Scorer) *ScoreHandler {
	return &ScoreHandler{scorer: scorer, maxBodyBytes: DefaultMaxBodyBytes}
}

// HandleScore handles POST /score requests.
func (h *ScoreHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.score"
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
		return
	}
	ctx := r.Context()

	if h.scorer.State() != types.StateReady {
		metrics.RecordScoreRequest(metrics.OutcomeNotReady)
		writeError(w, http.StatusServiceUnavailable, "not_ready", NewKind(op, ErrNotReady))
		return
	}

	req, err := model.ParseRequest(http.MaxBytesReader(w, r.Body, h.maxBodyBytes), h.scorer.Schema())
	if err != nil {
		metrics.RecordScoreRequest(metrics.OutcomeInvalid)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", NewKind(op, ErrBodyTooLarge))
			return
		}
		metrics.RecordValidationError()
		logger.Get().Debug(ctx, "rejected scoring request", logger.String("request_id", RequestID(ctx)), logger.Error(err))
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	resp, err := h.scorer.Run(ctx, req)
	switch {
	case errors.Is(err, service.ErrNotReady):
		metrics.RecordScoreRequest(metrics.OutcomeNotReady)
		writeError(w, http.StatusServiceUnavailable, "not_ready", NewKind(op, ErrNotReady))
		return
	case err != nil:
		metrics.RecordScoreRequest(metrics.OutcomeError)
		logger.Get().Error(ctx, "scoring request failed", logger.String("request_id", RequestID(ctx)), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "prediction_failed", NewKind(op, ErrPredictionFailed))
		return
	}

	metrics.RecordScoreRequest(metrics.OutcomeOK)
	writeJSON(w, http.StatusOK, resp)
}
