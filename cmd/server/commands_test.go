package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/grocery_shop/internal/repo"
	pkgdb "github.com/Skotchmaster/grocery_shop/pkg/db"
)

func TestSeed(t *testing.T) {
	gdb, err := pkgdb.Open(context.Background(), pkgdb.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = pkgdb.Close(gdb) })
	require.NoError(t, repo.AutoMigrate(gdb))
	r := repo.New(gdb)
	ctx := context.Background()

	require.NoError(t, seed(ctx, r))

	cats, err := r.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, len(starterCatalog))

	total, items, err := r.ListProducts(ctx, repo.ProductFilter{Search: "rye"}, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, "rye-bread", items[0].Slug)

	require.NoError(t, seed(ctx, r))
	cats, err = r.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, len(starterCatalog))
}

func TestCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range []string{serveCommand().Name, migrateCommand().Name, createAdminCommand().Name, seedCommand().Name} {
		names[c] = true
	}
	assert.Equal(t, map[string]bool{"serve": true, "migrate": true, "create-admin": true, "seed": true}, names)
}
