package main

import (
	"context"
	"testing"

	"PlayerHub/internal/player/infra/persistence/memory"
	"PlayerHub/internal/shared/serverconfig"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenStore_内存驱动(t *testing.T) {
	conf := serverconfig.Default()
	conf.Store.Driver = serverconfig.StoreDriverMemory

	repo, closeFn, err := openStore(context.Background(), conf, zap.NewNop())
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &memory.PlayerRepo{}, repo)
}

func TestOpenStore_mongo地址为空(t *testing.T) {
	conf := serverconfig.Default()
	conf.MongoDB.URI = ""

	_, _, err := openStore(context.Background(), conf, zap.NewNop())
	assert.Error(t, err)
}
