package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/ports"
)

func TestRepository_SaveKeepsCreatedAtAndOrder(t *testing.T) {
	repo := NewRepository()
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.WithClock(func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	})
	ctx := context.Background()

	first, err := repo.Save(ctx, &domain.Book{ISBN: "b", Title: "Second Alphabetically", Price: decimal.NewFromInt(3)})
	require.NoError(t, err)
	_, err = repo.Save(ctx, &domain.Book{ISBN: "a", Title: "First", Price: decimal.NewFromInt(2)})
	require.NoError(t, err)

	updated, err := repo.Save(ctx, &domain.Book{ISBN: "b", Title: "Renamed", Price: decimal.NewFromInt(4)})
	require.NoError(t, err)
	assert.Equal(t, first.Metadata.CreatedAt, updated.Metadata.CreatedAt)
	assert.True(t, updated.Metadata.UpdatedAt.After(first.Metadata.UpdatedAt))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].Entity.ISBN)
	assert.Equal(t, "Renamed", list[0].Entity.Title)
	assert.Equal(t, "a", list[1].Entity.ISBN)
}

func TestRepository_ReturnsCopies(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	book := &domain.Book{ISBN: "1", Title: "T", Contributors: []domain.Contributor{{FirstName: "A", LastName: "B"}}}
	_, err := repo.Save(ctx, book)
	require.NoError(t, err)
	book.Contributors[0].LastName = "mutated"

	got, err := repo.GetByISBN(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "B", got.Entity.Contributors[0].LastName)
}

func TestRepository_DeleteAndMissing(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	_, err := repo.Save(ctx, &domain.Book{ISBN: "1", Title: "T"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "1"))
	require.ErrorIs(t, repo.Delete(ctx, "1"), ports.ErrNotFound)
	_, err = repo.GetByISBN(ctx, "1")
	require.ErrorIs(t, err, ports.ErrNotFound)

	_, err = repo.Save(ctx, &domain.Book{ISBN: " ", Title: "T"})
	require.ErrorIs(t, err, domain.ErrInvalidISBN)
}
