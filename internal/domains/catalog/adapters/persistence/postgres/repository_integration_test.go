//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-bookstore/internal/platform/migrations"
)

func setupCatalogPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("bookstore_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func kiteRunner() *domain.Book {
	return &domain.Book{
		ISBN:         "1573222453",
		Title:        "The Kite Runner",
		Contributors: []domain.Contributor{{FirstName: "Khaled", LastName: "Hosseini"}},
		Publisher:    "Riverhead Books",
		Genre:        "Historical fiction",
		Price:        decimal.RequireFromString("22.00"),
		Description:  "The Kite Runner tells the story of Amir",
		PublishedOn:  "29/05/2003",
	}
}

func TestRepository_SaveAndGetByISBN(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCatalogPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	saved, err := repo.Save(ctx, kiteRunner())
	require.NoError(t, err)
	assert.Equal(t, "1573222453", saved.Entity.ISBN)
	assert.False(t, saved.Metadata.CreatedAt.IsZero())

	fetched, err := repo.GetByISBN(ctx, "1573222453")
	require.NoError(t, err)
	assert.Equal(t, []string{"Hosseini, Khaled"}, fetched.Entity.ContributorNames())
	assert.True(t, decimal.RequireFromString("22").Equal(fetched.Entity.Price))
	assert.Equal(t, "29/05/2003", fetched.Entity.PublishedOn)
}

func TestRepository_Upsert(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCatalogPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	book := kiteRunner()
	first, err := repo.Save(ctx, book)
	require.NoError(t, err)

	book.Price = decimal.RequireFromString("19.99")
	updated, err := repo.Save(ctx, book)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("19.99").Equal(updated.Entity.Price))
	assert.Equal(t, first.Metadata.CreatedAt.Unix(), updated.Metadata.CreatedAt.Unix())

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRepository_Delete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupCatalogPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Save(ctx, kiteRunner())
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "1573222453"))
	_, err = repo.GetByISBN(ctx, "1573222453")
	assert.ErrorIs(t, err, ports.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "1573222453"), ports.ErrNotFound)
}
