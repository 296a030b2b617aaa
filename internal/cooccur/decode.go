package cooccur

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	apperrors "github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/errors"
)

// DecodeOccurrences parses a JSON array of occurrences. Each element may be a
// triplet array ["word", "doc", 3] or an object with word, document_id and
// position fields. A JSON null decodes to an empty set.
func DecodeOccurrences(data []byte) ([]Occurrence, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, apperrors.Malformedf("empty input")
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, apperrors.Malformedf("not an array: %v", err)
	}
	occs := make([]Occurrence, 0, len(elems))
	for i, raw := range elems {
		raw = bytes.TrimSpace(raw)
		var (
			occ Occurrence
			err error
		)
		switch {
		case len(raw) > 0 && raw[0] == '[':
			occ, err = decodeTriplet(raw)
		case len(raw) > 0 && raw[0] == '{':
			occ, err = decodeObject(raw)
		default:
			return nil, apperrors.Malformedf("element %d is neither a triplet nor an object", i)
		}
		if err != nil {
			return nil, apperrors.Malformedf("element %d: %v", i, err)
		}
		occs = append(occs, occ)
	}
	return occs, nil
}

func decodeTriplet(raw json.RawMessage) (Occurrence, error) {
	var fields []json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Occurrence{}, err
	}
	if len(fields) != 3 {
		return Occurrence{}, fmt.Errorf("triplet has %d fields", len(fields))
	}
	var occ Occurrence
	if err := json.Unmarshal(fields[0], &occ.Word); err != nil {
		return Occurrence{}, fmt.Errorf("word: %v", err)
	}
	if err := json.Unmarshal(fields[1], &occ.DocumentID); err != nil {
		return Occurrence{}, fmt.Errorf("document id: %v", err)
	}
	pos, err := decodePosition(fields[2])
	if err != nil {
		return Occurrence{}, err
	}
	occ.Position = pos
	return occ, nil
}

type occurrenceObject struct {
	Word       *string         `json:"word"`
	DocumentID *string         `json:"document_id"`
	Position   json.RawMessage `json:"position"`
}

func decodeObject(raw json.RawMessage) (Occurrence, error) {
	var obj occurrenceObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Occurrence{}, err
	}
	if obj.Word == nil || obj.DocumentID == nil || obj.Position == nil {
		return Occurrence{}, fmt.Errorf("missing word, document_id or position")
	}
	pos, err := decodePosition(obj.Position)
	if err != nil {
		return Occurrence{}, err
	}
	return Occurrence{Word: *obj.Word, DocumentID: *obj.DocumentID, Position: pos}, nil
}

func decodePosition(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == '"' {
		return 0, fmt.Errorf("position must be a JSON number")
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return 0, fmt.Errorf("position: %v", err)
	}
	v, err := n.Int64()
	if err != nil {
		return 0, fmt.Errorf("position %q is not an integer", n.String())
	}
	if v < 0 || v > math.MaxInt32 {
		return 0, fmt.Errorf("position %d out of range", v)
	}
	return int(v), nil
}
