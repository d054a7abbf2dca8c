package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Behnamfe76/docvault/internal/domain"
)

var (
	// ErrNotFound is returned when no document exists for a key.
	ErrNotFound = errors.New("document not found")
	// ErrKeyTaken is returned when a resource key is already owned by another subject.
	ErrKeyTaken = errors.New("resource key owned by another subject")
)

// DocumentRepository encapsulates document metadata persistence. Resource keys
// are unique across all owners.
type DocumentRepository interface {
	// Insert creates the record or, when the key already belongs to the same
	// owner, replaces its tag, description and size. A key held by a different
	// owner yields ErrKeyTaken.
	Insert(ctx context.Context, doc *domain.Document) error
	ListByOwner(ctx context.Context, owner string) ([]domain.Document, error)
	// Delete removes the owner's record at key and returns it.
	Delete(ctx context.Context, owner, key string) (*domain.Document, error)
	GetOwner(ctx context.Context, key string) (string, bool, error)
	Ping(ctx context.Context) error
}

type documentRepository struct {
	pool *pgxpool.Pool
}

// NewDocumentRepository instantiates the Postgres repository.
func NewDocumentRepository(pool *pgxpool.Pool) DocumentRepository {
	return &documentRepository{pool: pool}
}

func (r *documentRepository) Insert(ctx context.Context, doc *domain.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO documents (id, owner_subject, resource_key, tag, description, size_bytes)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (resource_key) DO UPDATE
            SET tag=EXCLUDED.tag, description=EXCLUDED.description, size_bytes=EXCLUDED.size_bytes, updated_at=NOW()
            WHERE documents.owner_subject = EXCLUDED.owner_subject
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		doc.ID,
		doc.OwnerSubject,
		doc.ResourceKey,
		doc.Tag,
		doc.Description,
		doc.SizeBytes,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrKeyTaken
	}
	return err
}

func (r *documentRepository) ListByOwner(ctx context.Context, owner string) ([]domain.Document, error) {
	const query = `
        SELECT id, owner_subject, resource_key, tag, description, size_bytes, created_at, updated_at
        FROM documents WHERE owner_subject=$1
        ORDER BY created_at DESC, resource_key`
	rows, err := r.pool.Query(ctx, query, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(
			&doc.ID,
			&doc.OwnerSubject,
			&doc.ResourceKey,
			&doc.Tag,
			&doc.Description,
			&doc.SizeBytes,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *documentRepository) Delete(ctx context.Context, owner, key string) (*domain.Document, error) {
	const query = `
        DELETE FROM documents WHERE resource_key=$1 AND owner_subject=$2
        RETURNING id, owner_subject, resource_key, tag, description, size_bytes, created_at, updated_at`
	var doc domain.Document
	err := r.pool.QueryRow(ctx, query, key, owner).Scan(
		&doc.ID,
		&doc.OwnerSubject,
		&doc.ResourceKey,
		&doc.Tag,
		&doc.Description,
		&doc.SizeBytes,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) GetOwner(ctx context.Context, key string) (string, bool, error) {
	if strings.TrimSpace(key) == "" {
		return "", false, nil
	}
	var owner string
	err := r.pool.QueryRow(ctx, `SELECT owner_subject FROM documents WHERE resource_key=$1`, key).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return owner, true, nil
}

func (r *documentRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
