package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Behnamfe76/docvault/internal/domain"
)

// sqliteTimeLayout has a fixed width so text ordering matches time ordering.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

type sqliteDocumentRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteDocumentRepository instantiates the SQLite repository. Timestamps
// are stored as UTC text.
func NewSQLiteDocumentRepository(db *sql.DB) DocumentRepository {
	return &sqliteDocumentRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *sqliteDocumentRepository) Insert(ctx context.Context, doc *domain.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	now := r.now().UTC().Format(sqliteTimeLayout)
	const query = `
        INSERT INTO documents (id, owner_subject, resource_key, tag, description, size_bytes, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (resource_key) DO UPDATE
            SET tag=excluded.tag, description=excluded.description, size_bytes=excluded.size_bytes, updated_at=excluded.updated_at
            WHERE documents.owner_subject = excluded.owner_subject
        RETURNING id, created_at, updated_at`

	var createdAt, updatedAt string
	err := r.db.QueryRowContext(ctx, query,
		doc.ID, doc.OwnerSubject, doc.ResourceKey, doc.Tag, doc.Description, doc.SizeBytes, now, now,
	).Scan(&doc.ID, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrKeyTaken
	}
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	if doc.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
		return fmt.Errorf("insert: parse created_at: %w", err)
	}
	if doc.UpdatedAt, err = time.Parse(sqliteTimeLayout, updatedAt); err != nil {
		return fmt.Errorf("insert: parse updated_at: %w", err)
	}
	return nil
}

func (r *sqliteDocumentRepository) ListByOwner(ctx context.Context, owner string) ([]domain.Document, error) {
	const query = `
        SELECT id, owner_subject, resource_key, tag, description, size_bytes, created_at, updated_at
        FROM documents WHERE owner_subject = ?
        ORDER BY created_at DESC, resource_key`
	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	docs := []domain.Document{}
	for rows.Next() {
		doc, err := scanSQLiteDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("list: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return docs, nil
}

func (r *sqliteDocumentRepository) Delete(ctx context.Context, owner, key string) (*domain.Document, error) {
	const query = `
        DELETE FROM documents WHERE resource_key = ? AND owner_subject = ?
        RETURNING id, owner_subject, resource_key, tag, description, size_bytes, created_at, updated_at`
	doc, err := scanSQLiteDocument(r.db.QueryRowContext(ctx, query, key, owner))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete: %w", err)
	}
	return &doc, nil
}

func (r *sqliteDocumentRepository) GetOwner(ctx context.Context, key string) (string, bool, error) {
	if strings.TrimSpace(key) == "" {
		return "", false, nil
	}
	var owner string
	err := r.db.QueryRowContext(ctx, `SELECT owner_subject FROM documents WHERE resource_key = ?`, key).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get owner: %w", err)
	}
	return owner, true, nil
}

func (r *sqliteDocumentRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteDocument(row rowScanner) (domain.Document, error) {
	var doc domain.Document
	var createdAt, updatedAt string
	if err := row.Scan(
		&doc.ID,
		&doc.OwnerSubject,
		&doc.ResourceKey,
		&doc.Tag,
		&doc.Description,
		&doc.SizeBytes,
		&createdAt,
		&updatedAt,
	); err != nil {
		return domain.Document{}, err
	}
	var err error
	if doc.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
		return domain.Document{}, fmt.Errorf("parse created_at: %w", err)
	}
	if doc.UpdatedAt, err = time.Parse(sqliteTimeLayout, updatedAt); err != nil {
		return domain.Document{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return doc, nil
}
