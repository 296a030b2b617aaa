package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/cooccur"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/ingestion/publisher"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/ingestion/validator"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/store"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/logger"
)

const maxRequestBytes = 4 << 20

// PairReader serves stored pairs. *store.PairStore satisfies it.
type PairReader interface {
	PairsForDocument(ctx context.Context, docID string) ([]cooccur.Pair, error)
	Neighbors(ctx context.Context, word string, limit int) ([]store.Neighbor, error)
}

type Handler struct {
	publisher *publisher.Publisher
	gen       *cooccur.Generator
	pairs     PairReader
	logger    *slog.Logger
}

// New creates a Handler. pairs may be nil, in which case the read endpoints
// answer 503.
func New(pub *publisher.Publisher, gen *cooccur.Generator, pairs PairReader) *Handler {
	return &Handler{
		publisher: pub,
		gen:       gen,
		pairs:     pairs,
		logger:    logger.WithComponent("ingestion-handler"),
	}
}

// Register mounts the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/documents", h.Ingest)
	mux.HandleFunc("POST /api/v1/pairs", h.GeneratePairs)
	mux.HandleFunc("GET /api/v1/documents/{id}/pairs", h.DocumentPairs)
	mux.HandleFunc("GET /api/v1/neighbors", h.Neighbors)
}

func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)
	var req ingestion.IngestRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validator.ValidateIngestRequest(&req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	resp, err := h.publisher.Ingest(ctx, &req)
	if err != nil {
		statusCode := apperrors.HTTPStatusCode(err)
		log.Error("ingestion failed",
			"error", err,
			"status_code", statusCode,
		)
		h.writeError(w, statusCode, errorMessage(err, "ingestion failed"))
		return
	}
	log.Info("document ingested",
		"doc_id", resp.DocumentID,
		"occurrences", resp.Occurrences,
	)
	h.writeJSON(w, http.StatusAccepted, resp)
}

// GeneratePairs runs the generator synchronously. A malformed occurrence set
// is not an error: it yields an empty pair list.
func (h *Handler) GeneratePairs(w http.ResponseWriter, r *http.Request) {
	var req ingestion.PairsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validator.ValidatePairsRequest(&req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	gen := h.gen
	if maxDistance := validator.EffectiveMaxDistance(req.MaxDistance, gen.MaxDistance()); maxDistance != gen.MaxDistance() {
		gen = cooccur.NewGenerator(maxDistance)
	}
	pairs := gen.GenerateRaw(req.Occurrences)
	if pairs == nil {
		pairs = []cooccur.Pair{}
	}
	h.writeJSON(w, http.StatusOK, ingestion.PairsResponse{Pairs: pairs, Count: len(pairs)})
}

func (h *Handler) DocumentPairs(w http.ResponseWriter, r *http.Request) {
	if h.pairs == nil {
		h.writeError(w, http.StatusServiceUnavailable, "pair store not configured")
		return
	}
	docID := r.PathValue("id")
	pairs, err := h.pairs.PairsForDocument(r.Context(), docID)
	if err != nil {
		logger.FromContext(r.Context()).Error("loading document pairs failed", "doc_id", docID, "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), "loading pairs failed")
		return
	}
	if pairs == nil {
		pairs = []cooccur.Pair{}
	}
	h.writeJSON(w, http.StatusOK, ingestion.PairsResponse{Pairs: pairs, Count: len(pairs)})
}

func (h *Handler) Neighbors(w http.ResponseWriter, r *http.Request) {
	if h.pairs == nil {
		h.writeError(w, http.StatusServiceUnavailable, "pair store not configured")
		return
	}
	word := r.URL.Query().Get("word")
	if word == "" {
		h.writeError(w, http.StatusBadRequest, "word is required")
		return
	}
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 1000 {
			h.writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}
	neighbors, err := h.pairs.Neighbors(r.Context(), word, limit)
	if err != nil {
		logger.FromContext(r.Context()).Error("neighbor query failed", "word", word, "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), "neighbor query failed")
		return
	}
	if neighbors == nil {
		neighbors = []store.Neighbor{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"word":      cooccur.Normalize(word),
		"neighbors": neighbors,
	})
}

func (h *Handler) writeValidationError(w http.ResponseWriter, err error) {
	var validationErr *validator.ValidationError
	if errors.As(err, &validationErr) {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": validationErr.Fields,
		})
		return
	}
	h.writeError(w, http.StatusBadRequest, err.Error())
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

func errorMessage(err error, fallback string) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return fallback
}
