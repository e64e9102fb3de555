package service

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"studentportal/internal/repository/memory"
	"studentportal/internal/seed"
)

var testNow = func() time.Time { return time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC) }

// seededStore returns a memory store holding the demo fixtures.
func seededStore(t *testing.T, opts ...seed.Option) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	opts = append([]seed.Option{seed.WithGenerator(seed.NewGenerator(rand.New(rand.NewPCG(1, 1)), testNow))}, opts...)
	require.NoError(t, seed.NewSeeder(store.Seed(), zap.NewNop(), opts...).Run(context.Background()))
	return store
}
