// Package httpapi exposes the study workflow over a JSON HTTP API.
// Learner identity arrives in the X-Learner-Id header on every route.
package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/status"

	"github.com/eslsoft/revise/internal/adapter/mapping"
	"github.com/eslsoft/revise/internal/entity"
	"github.com/eslsoft/revise/internal/repository"
	"github.com/eslsoft/revise/internal/usecase"
	"github.com/eslsoft/revise/pkg/filterexpr"
)

const learnerHeader = "X-Learner-Id"

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Handler routes HTTP requests to the usecases.
type Handler struct {
	sessions usecase.SessionUsecase
	reviews  usecase.ReviewUsecase
	stats    usecase.StatsUsecase
	progress usecase.ProgressUsecase
	logger   logrus.FieldLogger
}

// NewHandler wires the usecases.
func NewHandler(
	sessions usecase.SessionUsecase,
	reviews usecase.ReviewUsecase,
	stats usecase.StatsUsecase,
	progress usecase.ProgressUsecase,
	logger logrus.FieldLogger,
) *Handler {
	return &Handler{
		sessions: sessions,
		reviews:  reviews,
		stats:    stats,
		progress: progress,
		logger:   logger,
	}
}

// Register mounts all routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/sessions", h.handleStartSession)
	mux.HandleFunc("POST /v1/answers", h.handleSubmitAnswer)
	mux.HandleFunc("GET /v1/stats", h.handleStats)
	mux.HandleFunc("GET /v1/progress", h.handleListProgress)
}

func (h *Handler) handleStartSession(w http.ResponseWriter, r *http.Request) {
	learnerID, err := learnerFrom(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	session, err := h.sessions.StartSession(r.Context(), learnerID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, mapping.FromSession(session))
}

func (h *Handler) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	learnerID, err := learnerFrom(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req mapping.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, fmt.Errorf("%w: malformed request body", entity.ErrInvalidSignal))
		return
	}

	signal := entity.PerformanceSignal(req.Performance)
	result, err := h.reviews.SubmitAnswer(r.Context(), learnerID, req.ProgressID, signal)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, mapping.FromSubmissionResult(result))
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	learnerID, err := learnerFrom(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	stats, err := h.stats.Stats(r.Context(), learnerID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, mapping.FromLearnerStats(stats))
}

func (h *Handler) handleListProgress(w http.ResponseWriter, r *http.Request) {
	learnerID, err := learnerFrom(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	query, err := listProgressQuery(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	query.LearnerID = learnerID

	recs, total, err := h.progress.ListProgress(r.Context(), query)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, mapping.FromProgressRecords(recs, total))
}

func listProgressQuery(r *http.Request) (*repository.ListProgressQuery, error) {
	params := r.URL.Query()

	query := &repository.ListProgressQuery{
		Pagination: repository.Pagination{
			PageNo:   1,
			PageSize: defaultPageSize,
		},
		FilterOrder: repository.FilterOrder{
			Filter:  params.Get("filter"),
			OrderBy: params.Get("order_by"),
		},
	}
	if raw := params.Get("page_no"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: invalid page_no %q", entity.ErrInvalidFilter, raw)
		}
		query.PageNo = int32(n)
	}
	if raw := params.Get("page_size"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || n < 1 || n > maxPageSize {
			return nil, fmt.Errorf("%w: invalid page_size %q", entity.ErrInvalidFilter, raw)
		}
		query.PageSize = int32(n)
	}

	if err := filterexpr.Bind(query, query, progressSchema()); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidFilter, err)
	}

	if query.Status != "" && !entity.Status(query.Status).IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", entity.ErrInvalidFilter, query.Status)
	}
	return query, nil
}

func progressSchema() filterexpr.ResourceSchema {
	return filterexpr.ResourceSchema{
		Filter: map[string]filterexpr.FilterField{
			"status": {
				Kind: filterexpr.KindString,
				Ops:  map[filterexpr.Op]string{filterexpr.OpEQ: "Status"},
			},
			"next_review_at": {
				Kind: filterexpr.KindTimestamp,
				Ops: map[filterexpr.Op]string{
					filterexpr.OpLTE: "DueBefore",
					filterexpr.OpGTE: "DueAfter",
				},
			},
			"repetitions": {
				Kind: filterexpr.KindNumber,
				Ops: map[filterexpr.Op]string{
					filterexpr.OpGTE: "MinRepetitions",
					filterexpr.OpLTE: "MaxRepetitions",
				},
			},
		},
		Order: filterexpr.OrderSchema{
			Default: "next_review_at",
			Fields: map[string]string{
				"next_review_at": "next_review_at",
				"repetitions":    "repetitions",
				"ease_factor":    "ease_factor",
				"updated_at":     "updated_at",
			},
		},
	}
}

func learnerFrom(r *http.Request) (int64, error) {
	raw := r.Header.Get(learnerHeader)
	if raw == "" {
		return 0, fmt.Errorf("%w: missing %s header", entity.ErrInvalidLearner, learnerHeader)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad %s header %q", entity.ErrInvalidLearner, learnerHeader, raw)
	}
	return id, nil
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	stErr := mapping.ToStatusError(err)
	code := mapping.HTTPStatus(stErr)
	if code >= http.StatusInternalServerError {
		h.logger.WithError(err).Error("request failed")
	}

	st, ok := status.FromError(stErr)
	if !ok {
		h.writeJSON(w, code, errorBody{Code: "internal", Message: "internal error"})
		return
	}
	h.writeJSON(w, code, errorBody{Code: st.Code().String(), Message: st.Message()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.WithError(err).Warn("encode response")
	}
}
