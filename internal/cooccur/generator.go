package cooccur

import (
	"log/slog"

	apperrors "github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/logger"
)

// Generator produces co-occurrence pairs for one document at a time. It holds
// no per-call state and is safe for concurrent use.
type Generator struct {
	maxDistance int
	logger      *slog.Logger
}

// NewGenerator returns a Generator that records pairs up to maxDistance tokens
// apart. A non-positive maxDistance selects DefaultMaxDistance.
func NewGenerator(maxDistance int) *Generator {
	if maxDistance <= 0 {
		maxDistance = DefaultMaxDistance
	}
	return &Generator{
		maxDistance: maxDistance,
		logger:      logger.WithComponent("pair-generator"),
	}
}

// MaxDistance returns the inclusive distance cutoff.
func (g *Generator) MaxDistance() int {
	return g.maxDistance
}

// Generate returns the pairs for one document's occurrences, in the order they
// are discovered: for each occurrence after the first, its pairs with every
// earlier occurrence, nearest-inserted first. The document id of the first
// occurrence labels every pair. Fewer than two occurrences, or any malformed
// occurrence, yields nil.
//
// Positions are not assumed to follow input order, so the backward scan visits
// every earlier occurrence instead of stopping at the first one out of range.
func (g *Generator) Generate(occs []Occurrence) []Pair {
	if len(occs) < 2 {
		return nil
	}
	if err := validate(occs); err != nil {
		g.logger.Warn("discarding malformed occurrence set", "error", err, "count", len(occs))
		return nil
	}

	docID := occs[0].DocumentID
	words := make([]string, len(occs))
	positions := make([]int, len(occs))
	words[0] = Normalize(occs[0].Word)
	positions[0] = occs[0].Position

	var pairs []Pair
	for i := 1; i < len(occs); i++ {
		word := Normalize(occs[i].Word)
		pos := occs[i].Position
		words[i] = word
		positions[i] = pos
		for j := i - 1; j >= 0; j-- {
			distance := abs(pos - positions[j])
			if distance > g.maxDistance {
				continue
			}
			pairs = append(pairs, Pair{
				Word1:      words[j],
				Word2:      word,
				Distance:   distance,
				DocumentID: docID,
			})
		}
	}
	return pairs
}

// GenerateRaw decodes a JSON occurrence set and generates its pairs. Input
// that cannot be decoded is logged and yields nil.
func (g *Generator) GenerateRaw(data []byte) []Pair {
	occs, err := DecodeOccurrences(data)
	if err != nil {
		g.logger.Warn("expected a list of word/document/position triplets",
			"error", err,
			"size", len(data),
		)
		return nil
	}
	return g.Generate(occs)
}

func validate(occs []Occurrence) error {
	for i, o := range occs {
		if o.Word == "" {
			return apperrors.Malformedf("occurrence %d has an empty word", i)
		}
		if o.Position < 0 {
			return apperrors.Malformedf("occurrence %d has negative position %d", i, o.Position)
		}
	}
	return nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
