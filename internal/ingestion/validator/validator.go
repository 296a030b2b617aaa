// Package validator provides input validation for ingestion requests. It
// enforces document id, title and body constraints and returns per-field
// error details.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/cooccur"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/ingestion"
)

const (
	maxDocumentIDLength = 255
	maxTitleLength      = 1024
	maxBodyLength       = 1048576
	maxDistanceLimit    = 1000
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, msg))
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

// ValidateIngestRequest checks the document id, title and body of req.
func ValidateIngestRequest(req *ingestion.IngestRequest) error {
	errs := make(map[string]string)

	if len(req.DocumentID) > maxDocumentIDLength {
		errs["document_id"] = fmt.Sprintf("document id must be at most %d characters", maxDocumentIDLength)
	} else if strings.ContainsAny(req.DocumentID, ",\n\r") {
		errs["document_id"] = "document id must not contain commas or line breaks"
	}
	if len(req.Title) > maxTitleLength {
		errs["title"] = fmt.Sprintf("title must be at most %d characters", maxTitleLength)
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		errs["body"] = "body is required and must not be empty"
	} else if len(body) > maxBodyLength {
		errs["body"] = fmt.Sprintf("body must be at most %d characters", maxBodyLength)
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// ValidatePairsRequest checks the window override of req. The occurrence set
// itself is left to the generator, which treats malformed sets as empty.
func ValidatePairsRequest(req *ingestion.PairsRequest) error {
	if req.MaxDistance < 0 || req.MaxDistance > maxDistanceLimit {
		return &ValidationError{Fields: map[string]string{
			"max_distance": fmt.Sprintf("max distance must be between 0 and %d", maxDistanceLimit),
		}}
	}
	return nil
}

// EffectiveMaxDistance resolves a request override against the configured
// window. Zero keeps the configured value.
func EffectiveMaxDistance(requested, configured int) int {
	if requested > 0 {
		return requested
	}
	if configured > 0 {
		return configured
	}
	return cooccur.DefaultMaxDistance
}
