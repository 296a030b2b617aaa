package benchmark

import (
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/tokenizer"
)

var sampleTexts = map[string]string{
	"short": "The quick brown fox jumps over the lazy dog",
	"medium": `Word co-occurrence statistics describe how often two words appear close
        to each other inside the same document. A sliding window over token
        positions records every pair whose distance stays within the window, and
        the resulting counts feed similarity measures, collocation discovery, and
        query expansion in search systems that index billions of documents.`,
	"long": strings.Repeat(`Distributional semantics rests on the observation that words
        occurring in similar contexts tend to carry similar meanings. Building the
        context requires tokenization, case folding, and stop word removal before the
        positional index is fed to a windowed pair generator. Downstream jobs group
        the pairs by word, reflect them so both orientations are present, and sort the
        output for stable joins against vocabulary tables. `, 20),
}

func BenchmarkTokenize(b *testing.B) {
	for name, text := range sampleTexts {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			for i := 0; i < b.N; i++ {
				occs := tokenizer.Tokenize("doc", text)
				_ = occs
			}
		})
	}
}

func BenchmarkTokenizeParallel(b *testing.B) {
	text := sampleTexts["medium"]
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			occs := tokenizer.Tokenize("doc", text)
			_ = occs
		}
	})
}

func BenchmarkTokenizeKeepStopWords(b *testing.B) {
	text := sampleTexts["long"]
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	for i := 0; i < b.N; i++ {
		occs := tokenizer.TokenizeWithOptions("doc", text, tokenizer.Options{KeepStopWords: true})
		_ = occs
	}
}
