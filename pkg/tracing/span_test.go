package tracing

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/logger"
)

func TestSpanTree(t *testing.T) {
	ctx := logger.WithRequestID(context.Background(), "req-1")
	ctx, root := StartSpan(ctx, "handle")
	assert.Equal(t, "req-1", root.TraceID)

	childCtx, child := StartChildSpan(ctx, "generate")
	child.SetAttr("pairs", 3)
	child.End()
	root.End()

	assert.Same(t, child, SpanFromContext(childCtx))
	require.Len(t, root.Children, 1)
	assert.Equal(t, "req-1", root.Children[0].TraceID)
	assert.Equal(t, 3, root.Children[0].Attrs["pairs"])

	var buf bytes.Buffer
	root.Log(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "span=handle")
	assert.Contains(t, lines[1], "depth=1")
	assert.Contains(t, lines[1], "pairs=3")
}

func TestChildWithoutParentStartsTrace(t *testing.T) {
	_, span := StartChildSpan(context.Background(), "orphan")
	assert.Len(t, span.TraceID, 36)
	assert.Nil(t, SpanFromContext(context.Background()))
}
