package cooccur

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/errors"
)

func TestDecodeOccurrences(t *testing.T) {
	got, err := DecodeOccurrences([]byte(`
		[
			["Girl", "d2", 0],
			{"word": "child", "document_id": "d2", "position": 1}
		]`))
	require.NoError(t, err)
	assert.Equal(t, []Occurrence{occ("Girl", "d2", 0), occ("child", "d2", 1)}, got)
}

func TestDecodeOccurrencesNull(t *testing.T) {
	got, err := DecodeOccurrences([]byte(`null`))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeOccurrencesErrors(t *testing.T) {
	tests := map[string]string{
		"empty":          ``,
		"object root":    `{"word":"a"}`,
		"short triplet":  `[["a","d"]]`,
		"long triplet":   `[["a","d",1,2]]`,
		"string pos":     `[["a","d","1"]]`,
		"float pos":      `[["a","d",1.25]]`,
		"negative pos":   `[["a","d",-1]]`,
		"numeric word":   `[[1,"d",0]]`,
		"missing field":  `[{"word":"a","position":0}]`,
		"null position":  `[{"word":"a","document_id":"d","position":null}]`,
		"scalar element": `["a"]`,
		"truncated":      `[["a","d",0]`,
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeOccurrences([]byte(in))
			require.Error(t, err)
			assert.True(t, apperrors.IsMalformed(err), "got %v", err)
		})
	}
}
