package repository

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"

	"github.com/Behnamfe76/docvault/internal/domain"
	"github.com/Behnamfe76/docvault/internal/persistence"
)

func newSQLiteRepo(t *testing.T) *sqliteDocumentRepository {
	t.Helper()
	store, err := persistence.OpenSQLite(context.Background(), ":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewSQLiteDocumentRepository(store.DB).(*sqliteDocumentRepository)
}

var (
	pgPool     *pgxpool.Pool
	pgPoolErr  error
	pgPoolOnce sync.Once
)

// postgresPool uses POSTGRES_TEST_DSN when set and otherwise starts a
// throwaway container. The test is skipped when neither is available.
func postgresPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		if testing.Short() {
			t.Skip("postgres tests skipped in short mode")
		}
		testcontainers.SkipIfProviderIsNotHealthy(t)
	}

	pgPoolOnce.Do(func() {
		ctx := context.Background()
		if dsn == "" {
			container, err := pgcontainer.Run(ctx,
				"postgres:16-alpine",
				pgcontainer.WithDatabase("docvault"),
				pgcontainer.WithUsername("docvault"),
				pgcontainer.WithPassword("docvault"),
				pgcontainer.BasicWaitStrategies(),
			)
			if err != nil {
				pgPoolErr = err
				return
			}
			dsn, pgPoolErr = container.ConnectionString(ctx, "sslmode=disable")
			if pgPoolErr != nil {
				return
			}
		}
		pgPool, pgPoolErr = pgxpool.New(ctx, dsn)
		if pgPoolErr != nil {
			return
		}
		pgPoolErr = persistence.RunMigrations(ctx, pgPool, zap.NewNop())
	})
	require.NoError(t, pgPoolErr)

	_, err := pgPool.Exec(context.Background(), `TRUNCATE documents`)
	require.NoError(t, err)
	return pgPool
}

func repositories(t *testing.T) map[string]func(t *testing.T) DocumentRepository {
	return map[string]func(t *testing.T) DocumentRepository{
		"sqlite": func(t *testing.T) DocumentRepository { return newSQLiteRepo(t) },
		"postgres": func(t *testing.T) DocumentRepository {
			return NewDocumentRepository(postgresPool(t))
		},
	}
}

func TestDocumentRepositoryInsertAndGetOwner(t *testing.T) {
	for name, open := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := open(t)

			doc := &domain.Document{OwnerSubject: "alice@example.com", ResourceKey: "report.pdf", Tag: "q1", SizeBytes: 12}
			require.NoError(t, repo.Insert(ctx, doc))
			assert.NotEmpty(t, doc.ID)
			assert.False(t, doc.CreatedAt.IsZero())

			owner, found, err := repo.GetOwner(ctx, "report.pdf")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, "alice@example.com", owner)

			_, found, err = repo.GetOwner(ctx, "missing.pdf")
			require.NoError(t, err)
			assert.False(t, found)

			_, found, err = repo.GetOwner(ctx, "")
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, repo.Ping(ctx))
		})
	}
}

func TestDocumentRepositoryUpsertSameOwner(t *testing.T) {
	for name, open := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := open(t)

			first := &domain.Document{OwnerSubject: "alice@example.com", ResourceKey: "report.pdf", Tag: "draft"}
			require.NoError(t, repo.Insert(ctx, first))

			second := &domain.Document{OwnerSubject: "alice@example.com", ResourceKey: "report.pdf", Tag: "final", SizeBytes: 99}
			require.NoError(t, repo.Insert(ctx, second))
			assert.Equal(t, first.ID, second.ID)

			docs, err := repo.ListByOwner(ctx, "alice@example.com")
			require.NoError(t, err)
			require.Len(t, docs, 1)
			assert.Equal(t, "final", docs[0].Tag)
			assert.EqualValues(t, 99, docs[0].SizeBytes)
		})
	}
}

func TestDocumentRepositoryKeyTaken(t *testing.T) {
	for name, open := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := open(t)

			require.NoError(t, repo.Insert(ctx, &domain.Document{OwnerSubject: "alice@example.com", ResourceKey: "report.pdf", Tag: "mine"}))

			err := repo.Insert(ctx, &domain.Document{OwnerSubject: "bob@example.com", ResourceKey: "report.pdf", Tag: "theirs"})
			assert.ErrorIs(t, err, ErrKeyTaken)

			owner, _, err := repo.GetOwner(ctx, "report.pdf")
			require.NoError(t, err)
			assert.Equal(t, "alice@example.com", owner)

			docs, err := repo.ListByOwner(ctx, "alice@example.com")
			require.NoError(t, err)
			require.Len(t, docs, 1)
			assert.Equal(t, "mine", docs[0].Tag)
		})
	}
}

func TestDocumentRepositoryListByOwner(t *testing.T) {
	for name, open := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := open(t)

			for _, doc := range []*domain.Document{
				{OwnerSubject: "alice@example.com", ResourceKey: "a.pdf"},
				{OwnerSubject: "bob@example.com", ResourceKey: "b.pdf"},
				{OwnerSubject: "alice@example.com", ResourceKey: "c.pdf"},
			} {
				require.NoError(t, repo.Insert(ctx, doc))
			}

			docs, err := repo.ListByOwner(ctx, "alice@example.com")
			require.NoError(t, err)
			keys := make([]string, 0, len(docs))
			for _, doc := range docs {
				assert.Equal(t, "alice@example.com", doc.OwnerSubject)
				keys = append(keys, doc.ResourceKey)
			}
			assert.ElementsMatch(t, []string{"a.pdf", "c.pdf"}, keys)

			docs, err = repo.ListByOwner(ctx, "carol@example.com")
			require.NoError(t, err)
			assert.NotNil(t, docs)
			assert.Empty(t, docs)
		})
	}
}

func TestDocumentRepositoryDelete(t *testing.T) {
	for name, open := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := open(t)

			require.NoError(t, repo.Insert(ctx, &domain.Document{OwnerSubject: "alice@example.com", ResourceKey: "report.pdf", Tag: "q1"}))

			_, err := repo.Delete(ctx, "bob@example.com", "report.pdf")
			assert.ErrorIs(t, err, ErrNotFound)

			doc, err := repo.Delete(ctx, "alice@example.com", "report.pdf")
			require.NoError(t, err)
			assert.Equal(t, "report.pdf", doc.ResourceKey)
			assert.Equal(t, "q1", doc.Tag)

			_, found, err := repo.GetOwner(ctx, "report.pdf")
			require.NoError(t, err)
			assert.False(t, found)

			_, err = repo.Delete(ctx, "alice@example.com", "report.pdf")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestSQLiteListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, key := range []string{"old.pdf", "mid.pdf", "new.pdf"} {
		at := base.Add(time.Duration(i) * 1500 * time.Millisecond)
		repo.now = func() time.Time { return at }
		require.NoError(t, repo.Insert(ctx, &domain.Document{OwnerSubject: "alice@example.com", ResourceKey: key}))
	}

	docs, err := repo.ListByOwner(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "new.pdf", docs[0].ResourceKey)
	assert.Equal(t, "mid.pdf", docs[1].ResourceKey)
	assert.Equal(t, "old.pdf", docs[2].ResourceKey)
	assert.Equal(t, base.Add(3*time.Second), docs[0].CreatedAt)
}
