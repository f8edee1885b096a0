package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryGatewayRoundTrip(t *testing.T) {
	g := NewMemoryGateway()
	ctx := context.Background()

	assert.NoError(t, g.Put(ctx, "facilities/1/root/x.pdf", strings.NewReader("hello"), 5, "application/pdf"))

	exists, err := g.Exists(ctx, "facilities/1/root/x.pdf")
	assert.NoError(t, err)
	assert.True(t, exists)

	rc, err := g.Get(ctx, "facilities/1/root/x.pdf")
	assert.NoError(t, err)
	data, err := io.ReadAll(rc)
	assert.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.NoError(t, rc.Close())
}

func TestMemoryGatewayDeleteIdempotent(t *testing.T) {
	g := NewMemoryGateway()
	ctx := context.Background()

	assert.NoError(t, g.Put(ctx, "k", strings.NewReader("x"), 1, "text/plain"))
	assert.NoError(t, g.Delete(ctx, "k"))
	assert.NoError(t, g.Delete(ctx, "k"))

	_, err := g.Get(ctx, "k")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryGatewayForcedFailures(t *testing.T) {
	g := NewMemoryGateway()
	ctx := context.Background()
	boom := errors.New("boom")

	g.FailPut["bad"] = boom
	assert.ErrorIs(t, g.Put(ctx, "bad", strings.NewReader("x"), 1, ""), boom)

	assert.NoError(t, g.Put(ctx, "ok", strings.NewReader("x"), 1, ""))
	g.FailDelete["ok"] = boom
	assert.ErrorIs(t, g.Delete(ctx, "ok"), boom)
	assert.Equal(t, 1, g.Len())
}

func TestMemoryGatewayForcedFailuresMatchByPrefix(t *testing.T) {
	g := NewMemoryGateway()
	ctx := context.Background()
	boom := errors.New("boom")

	g.FailPut["facilities/7/"] = boom
	assert.ErrorIs(t, g.Put(ctx, "facilities/7/root/generated-token.pdf", strings.NewReader("x"), 1, ""), boom)
	assert.NoError(t, g.Put(ctx, "facilities/8/root/fine.pdf", strings.NewReader("x"), 1, ""))
}
