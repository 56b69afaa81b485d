package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbe_NilStoreNeverConnects(t *testing.T) {
	p := NewProbe(nil)
	assert.False(t, p.Ensure(context.Background()))
	assert.Equal(t, "unconfigured", p.State())
}

func TestProbe_MemoizesPing(t *testing.T) {
	remote := &fakeRemote{}
	p := NewProbe(remote)
	ctx := context.Background()

	assert.Equal(t, "unknown", p.State())

	assert.True(t, p.Ensure(ctx))
	assert.True(t, p.Ensure(ctx))
	assert.True(t, p.Ensure(ctx))
	assert.Equal(t, 1, remote.pingCalls)
	assert.Equal(t, "connected", p.State())
}

func TestProbe_MemoizesFailureToo(t *testing.T) {
	remote := &fakeRemote{pingErr: errors.New("no route to host")}
	p := NewProbe(remote)
	ctx := context.Background()

	assert.False(t, p.Ensure(ctx))
	assert.False(t, p.Ensure(ctx))
	assert.Equal(t, 1, remote.pingCalls)
	assert.Equal(t, "disconnected", p.State())
}

func TestProbe_InvalidateForcesRecheck(t *testing.T) {
	remote := &fakeRemote{pingErr: errors.New("down")}
	p := NewProbe(remote)
	ctx := context.Background()

	assert.False(t, p.Ensure(ctx))

	// the backend comes back; nothing changes until invalidation
	remote.pingErr = nil
	assert.False(t, p.Ensure(ctx))

	p.Invalidate()
	assert.Equal(t, "unknown", p.State())
	assert.True(t, p.Ensure(ctx))
	assert.Equal(t, 2, remote.pingCalls)
}

func TestProbe_MarkUnreachableSkipsPing(t *testing.T) {
	remote := &fakeRemote{}
	p := NewProbe(remote)

	p.MarkUnreachable()
	assert.False(t, p.Ensure(context.Background()))
	assert.Equal(t, 0, remote.pingCalls)
	assert.Equal(t, "disconnected", p.State())
}
