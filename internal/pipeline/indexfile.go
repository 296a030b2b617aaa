package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/cooccur"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/errors"
)

// ParseIndexFile reads an occurrence index with one "word,docID,position"
// record per line. Blank lines and lines starting with '#' are skipped.
// Fields are trimmed of surrounding whitespace.
func ParseIndexFile(r io.Reader) ([]cooccur.Occurrence, error) {
	var occs []cooccur.Occurrence
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		occ, err := parseRecord(line)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", apperrors.ErrMalformedInput, lineNo, err)
		}
		occs = append(occs, occ)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading index file: %w", err)
	}
	return occs, nil
}

func parseRecord(line string) (cooccur.Occurrence, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 3 {
		return cooccur.Occurrence{}, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}
	word := strings.TrimSpace(fields[0])
	docID := strings.TrimSpace(fields[1])
	if word == "" {
		return cooccur.Occurrence{}, fmt.Errorf("empty word")
	}
	pos, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return cooccur.Occurrence{}, fmt.Errorf("position %q is not an integer", fields[2])
	}
	if pos < 0 {
		return cooccur.Occurrence{}, fmt.Errorf("negative position %d", pos)
	}
	return cooccur.Occurrence{Word: word, DocumentID: docID, Position: pos}, nil
}
