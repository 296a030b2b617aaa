package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/cooccur"
)

const index = `# word,docID,position
This,d1,0
is,d1,1
Is,d2,0
a,d1,2
test,d2,1
`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestGenerateCSV(t *testing.T) {
	out, err := run(t, index, "generate")
	require.NoError(t, err)
	assert.Equal(t, "this,is,1,d1\nis,a,1,d1\nthis,a,2,d1\nis,test,1,d2\n", out)
}

func TestGenerateSortedMirroredJSON(t *testing.T) {
	out, err := run(t, index, "generate", "--mirror", "--sort", "--format", "json", "--max-distance", "1")
	require.NoError(t, err)

	var pairs []cooccur.Pair
	require.NoError(t, json.Unmarshal([]byte(out), &pairs))
	assert.Equal(t, []cooccur.Pair{
		{Word1: "a", Word2: "is", Distance: 1, DocumentID: "d1"},
		{Word1: "is", Word2: "a", Distance: 1, DocumentID: "d1"},
		{Word1: "is", Word2: "test", Distance: 1, DocumentID: "d2"},
		{Word1: "is", Word2: "this", Distance: 1, DocumentID: "d1"},
		{Word1: "test", Word2: "is", Distance: 1, DocumentID: "d2"},
		{Word1: "this", Word2: "is", Distance: 1, DocumentID: "d1"},
	}, pairs)
}

func TestGenerateFromFileWritesSegment(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "index.csv")
	require.NoError(t, os.WriteFile(input, []byte(index), 0644))
	segDir := filepath.Join(dir, "segments")

	_, err := run(t, "", "generate", "--input", input, "--segment-dir", segDir)
	require.NoError(t, err)

	out, err := run(t, "", "lookup", "--dir", segDir, "This", "a")
	require.NoError(t, err)
	assert.Equal(t, "d1\t2\n", out)
}

func TestLookupMissingDirectory(t *testing.T) {
	segDir := filepath.Join(t.TempDir(), "missing")

	_, err := run(t, "", "lookup", "--dir", segDir, "this", "is")
	assert.ErrorContains(t, err, "opening segment directory")
	assert.NoDirExists(t, segDir)
}

func TestGenerateRejectsBadInput(t *testing.T) {
	_, err := run(t, "a,d1\n", "generate")
	assert.ErrorContains(t, err, "line 1")

	_, err = run(t, index, "generate", "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestNormalize(t *testing.T) {
	out, err := run(t, "", "normalize", "Apple", "iPhone", "ÉCOLE", "HELLO")
	require.NoError(t, err)
	assert.Equal(t, "apple\niPhone\nÉCOLE\nhELLO\n", out)

	_, err = run(t, "", "normalize")
	assert.Error(t, err)
}
