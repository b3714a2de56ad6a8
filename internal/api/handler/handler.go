package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/api"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/api/validator"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/pipeline"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/internal/spelling"
	apperrors "github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tweet-normalizer/pkg/logger"
)

const maxBodyBytes = 4 << 20

// Runner normalizes records, possibly through a checkpoint.
type Runner interface {
	Run(ctx context.Context, rec pipeline.Record, reprocess bool) (*pipeline.Result, error)
	RunBatch(ctx context.Context, recs []pipeline.Record, reprocess bool) ([]*pipeline.Result, error)
}

// Corrector resolves a single token against the dictionary.
type Corrector interface {
	CorrectDetailed(token string) spelling.Correction
}

type Handler struct {
	runner    Runner
	corrector Corrector
	logger    *slog.Logger
}

func New(runner Runner, corrector Corrector) *Handler {
	return &Handler{
		runner:    runner,
		corrector: corrector,
		logger:    slog.Default().With("component", "normalize-handler"),
	}
}

// Register mounts the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/normalize", h.Normalize)
	mux.HandleFunc("POST /api/v1/normalize/batch", h.NormalizeBatch)
	mux.HandleFunc("POST /api/v1/correct", h.Correct)
}

func (h *Handler) Normalize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)
	var req api.NormalizeRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !h.validate(w, validator.ValidateNormalizeRequest(&req)) {
		return
	}
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	res, err := h.runner.Run(ctx, pipeline.Record{ID: req.ID, Text: req.Text}, req.Reprocess)
	if err != nil {
		statusCode := apperrors.HTTPStatusCode(err)
		log.Error("normalization failed",
			"record_id", req.ID,
			"error", err,
			"status_code", statusCode,
		)
		h.writeError(w, statusCode, "normalization failed")
		return
	}
	log.Info("record normalized",
		"record_id", res.ID,
		"tokens", len(res.Tokens),
		"cached", res.Cached,
	)
	h.writeJSON(w, http.StatusOK, res)
}

func (h *Handler) NormalizeBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)
	var req api.BatchRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !h.validate(w, validator.ValidateBatchRequest(&req)) {
		return
	}
	for i := range req.Records {
		if req.Records[i].ID == "" {
			req.Records[i].ID = uuid.New().String()
		}
	}

	results, err := h.runner.RunBatch(ctx, req.Records, req.Reprocess)
	if err != nil {
		statusCode := apperrors.HTTPStatusCode(err)
		log.Error("batch normalization failed",
			"records", len(req.Records),
			"error", err,
			"status_code", statusCode,
		)
		h.writeError(w, statusCode, "batch normalization failed")
		return
	}
	log.Info("batch normalized", "records", len(results))
	h.writeJSON(w, http.StatusOK, api.BatchResponse{Results: results})
}

func (h *Handler) Correct(w http.ResponseWriter, r *http.Request) {
	var req api.CorrectRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !h.validate(w, validator.ValidateCorrectRequest(&req)) {
		return
	}
	h.writeJSON(w, http.StatusOK, h.corrector.CorrectDetailed(strings.ToLower(req.Token)))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		appErr := apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "invalid JSON body")
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			appErr = apperrors.Newf(apperrors.ErrInvalidInput, http.StatusRequestEntityTooLarge,
				"request body exceeds %d bytes", tooLarge.Limit)
		}
		h.writeError(w, apperrors.HTTPStatusCode(appErr), appErr.Message)
		return false
	}
	return true
}

func (h *Handler) validate(w http.ResponseWriter, err error) bool {
	if err == nil {
		return true
	}
	statusCode := apperrors.HTTPStatusCode(err)
	var validationErr *validator.ValidationError
	if errors.As(err, &validationErr) {
		h.writeJSON(w, statusCode, map[string]any{
			"error":  "validation failed",
			"fields": validationErr.Fields,
		})
		return false
	}
	h.writeError(w, statusCode, err.Error())
	return false
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
