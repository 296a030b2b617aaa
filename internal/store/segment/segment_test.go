package segment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/cooccur"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/config"
)

var docPairs = []cooccur.Pair{
	{Word1: "this", Word2: "is", Distance: 1, DocumentID: "d2"},
	{Word1: "is", Word2: "a", Distance: 1, DocumentID: "d2"},
	{Word1: "this", Word2: "a", Distance: 2, DocumentID: "d2"},
	{Word1: "this", Word2: "is", Distance: 1, DocumentID: "d1"},
	{Word1: "this", Word2: "is", Distance: 4, DocumentID: "d1"},
}

func TestBuildEntries(t *testing.T) {
	entries := BuildEntries(docPairs)
	require.Len(t, entries, 3)
	assert.Equal(t, "is", entries[0].Word1)
	assert.Equal(t, "this", entries[1].Word1)
	assert.Equal(t, "a", entries[1].Word2)

	thisIs := entries[2]
	assert.Equal(t, "is", thisIs.Word2)
	assert.Equal(t, []Posting{
		{DocumentID: "d1", Distances: []int{1, 4}},
		{DocumentID: "d2", Distances: []int{1}},
	}, thisIs.Postings)
}

func TestWriteAndLookup(t *testing.T) {
	dir := t.TempDir()
	name, err := NewWriter(dir).Write(BuildEntries(docPairs))
	require.NoError(t, err)
	assert.Equal(t, FileExt, filepath.Ext(name))

	r, err := OpenReader(filepath.Join(dir, name))
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, 3, r.Pairs())
	assert.Equal(t, uint32(2), r.DocCount())

	postings, err := r.Lookup("this", "is")
	require.NoError(t, err)
	assert.Len(t, postings, 2)

	postings, err = r.Lookup("is", "this")
	require.NoError(t, err)
	assert.Nil(t, postings)

	postings, err = r.Lookup("zzz", "a")
	require.NoError(t, err)
	assert.Nil(t, postings)
}

func TestWriteSortsUnorderedEntries(t *testing.T) {
	dir := t.TempDir()
	entries := []PairEntry{
		{Word1: "b", Word2: "a", Postings: []Posting{{DocumentID: "d", Distances: []int{1}}}},
		{Word1: "a", Word2: "b", Postings: []Posting{{DocumentID: "d", Distances: []int{2}}}},
	}
	name, err := NewWriter(dir).Write(entries)
	require.NoError(t, err)
	assert.Equal(t, "b", entries[0].Word1)

	r, err := OpenReader(filepath.Join(dir, name))
	require.NoError(t, err)
	defer r.Close()
	postings, err := r.Lookup("b", "a")
	require.NoError(t, err)
	assert.Equal(t, []Posting{{DocumentID: "d", Distances: []int{1}}}, postings)
}

func TestWriteRejectsEmpty(t *testing.T) {
	_, err := NewWriter(t.TempDir()).Write(nil)
	assert.Error(t, err)
}

func TestOpenReaderDetectsCorruption(t *testing.T) {
	dir := t.TempDir()
	name, err := NewWriter(dir).Write(BuildEntries(docPairs))
	require.NoError(t, err)
	path := filepath.Join(dir, name)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-FooterSize-2] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0644))

	_, err = OpenReader(path)
	assert.ErrorContains(t, err, "checksum")

	bogus := filepath.Join(dir, "bogus"+FileExt)
	require.NoError(t, os.WriteFile(bogus, make([]byte, HeaderSize), 0644))
	_, err = OpenReader(bogus)
	assert.ErrorContains(t, err, "magic")
}

func TestSinkFlushesAndReloads(t *testing.T) {
	cfg := config.SegmentsConfig{DataDir: t.TempDir(), FlushPairs: 3}
	sink, err := OpenSink(cfg, nil)
	require.NoError(t, err)

	require.NoError(t, sink.Add(docPairs[:2]))
	assert.Equal(t, 2, sink.Pending())
	require.NoError(t, sink.Add(docPairs[2:3]))
	assert.Zero(t, sink.Pending())

	require.NoError(t, sink.Add(docPairs[3:]))
	require.NoError(t, sink.Close())

	reopened, err := OpenSink(cfg, nil)
	require.NoError(t, err)
	defer reopened.Close()

	postings, err := reopened.Lookup("this", "is")
	require.NoError(t, err)
	assert.ElementsMatch(t, []Posting{
		{DocumentID: "d2", Distances: []int{1}},
		{DocumentID: "d1", Distances: []int{1, 4}},
	}, postings)
}

func TestSinkKeepsPairsBufferedWhenFlushFails(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "segments")
	sink, err := OpenSink(config.SegmentsConfig{DataDir: dir, FlushPairs: 2}, nil)
	require.NoError(t, err)

	// A file in place of the directory makes every segment write fail.
	require.NoError(t, os.Remove(dir))
	require.NoError(t, os.WriteFile(dir, nil, 0644))

	require.NoError(t, sink.Add(docPairs[:2]))
	assert.Equal(t, 2, sink.Pending())

	require.NoError(t, os.Remove(dir))
	require.NoError(t, os.Mkdir(dir, 0755))
	require.NoError(t, sink.Flush())
	assert.Zero(t, sink.Pending())

	postings, err := sink.Lookup("this", "is")
	require.NoError(t, err)
	assert.Equal(t, []Posting{{DocumentID: "d2", Distances: []int{1}}}, postings)
	require.NoError(t, sink.Close())
}
