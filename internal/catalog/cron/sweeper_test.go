package cron

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casadecor/portfolio-backend/internal/catalog/domain"
	"github.com/casadecor/portfolio-backend/internal/catalog/localstore"
	"github.com/casadecor/portfolio-backend/internal/kv"
)

func TestSweeper_RemovesOnlyOrphans(t *testing.T) {
	store := kv.NewMemoryStore()
	local := localstore.New(store)

	kept, err := local.StoreImage("kept.png", []byte("\x89PNG\r\n\x1a\nkept"))
	require.NoError(t, err)
	orphan, err := local.StoreImage("orphan.png", []byte("\x89PNG\r\n\x1a\norphan"))
	require.NoError(t, err)

	_, err = local.Create(domain.CreateInput{
		Title:        "Keeps its image",
		Service:      domain.ServiceWallpapers,
		MainImageRef: kept,
	})
	require.NoError(t, err)

	NewSweeper(local).Run()

	_, ok := local.GetImage(kept)
	assert.True(t, ok, "referenced blob survives the sweep")
	_, ok = local.GetImage(orphan)
	assert.False(t, ok, "orphan blob is removed")
}

func TestSweeper_StartRejectsBadSchedule(t *testing.T) {
	s := NewSweeper(localstore.New(kv.NewMemoryStore()))
	assert.Error(t, s.Start("not a cron spec"))

	require.NoError(t, s.Start(""))
	s.Stop()
}
