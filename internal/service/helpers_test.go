package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/grocery_shop/internal/models"
	"github.com/Skotchmaster/grocery_shop/internal/repo"
	"github.com/Skotchmaster/grocery_shop/pkg/db"
)

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()

	gdb, err := db.Open(context.Background(), db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	require.NoError(t, repo.AutoMigrate(gdb))

	return repo.New(gdb)
}

func seedUser(t *testing.T, r *repo.GormRepo, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, PasswordHash: "x", Role: "user"}
	require.NoError(t, r.CreateUser(context.Background(), u))
	return u
}

func seedCategory(t *testing.T, r *repo.GormRepo, title string) *models.Category {
	t.Helper()
	c := &models.Category{Title: title}
	require.NoError(t, r.CreateCategory(context.Background(), c))
	return c
}

func seedProduct(t *testing.T, r *repo.GormRepo, categoryID uint, title string, price int64, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Title:      title,
		Slug:       title,
		Price:      price,
		Unit:       models.UnitPiece,
		Quantity:   stock,
		CategoryID: categoryID,
	}
	require.NoError(t, r.CreateProduct(context.Background(), p))
	return p
}

type publishedEvent struct {
	Topic string
	Key   string
	Event Event
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ev, ok := event.(Event); ok {
		p.events = append(p.events, publishedEvent{Topic: topic, Key: key, Event: ev})
	}
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Event.Type)
	}
	return out
}
