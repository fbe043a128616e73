// Package sqlstore implements repository.DocumentRepository on database/sql.
// Statements are composed with squirrel so the same code serves PostgreSQL and SQLite.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"docvault/internal/model"
	"docvault/internal/query"
	"docvault/internal/repository"
)

var documentColumns = []string{
	"documents.id",
	"documents.user_name",
	"documents.document_name",
	"documents.storage_path",
	"documents.file_size",
	"documents.file_type",
	"documents.created_at",
	"documents.updated_at",
}

// DocumentStore persists documents and their tags. It contains no business logic.
type DocumentStore struct {
	db      *sql.DB
	dialect Dialect
	sb      sq.StatementBuilderType
	now     func() time.Time
	newID   func() (string, error)
}

var _ repository.DocumentRepository = (*DocumentStore)(nil)

// Option customizes a DocumentStore.
type Option func(*DocumentStore)

// WithClock overrides the time source used for CreatedAt/UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *DocumentStore) { s.now = now }
}

// WithIDGenerator overrides document ID generation.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(s *DocumentStore) { s.newID = gen }
}

// New creates a store for the given dialect.
func New(db *sql.DB, d Dialect, opts ...Option) *DocumentStore {
	s := &DocumentStore{
		db:      db,
		dialect: d,
		sb:      sq.StatementBuilder.PlaceholderFormat(d.Placeholder),
		now:     time.Now,
		newID:   newUUIDv7,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewPostgres creates a store speaking the PostgreSQL dialect.
func NewPostgres(db *sql.DB, opts ...Option) *DocumentStore {
	return New(db, Postgres, opts...)
}

// NewSQLite creates a store speaking the SQLite dialect.
func NewSQLite(db *sql.DB, opts ...Option) *DocumentStore {
	return New(db, SQLite, opts...)
}

// UUIDv7 is time ordered, so id DESC agrees with insertion order on equal timestamps.
func newUUIDv7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Save inserts the document row and its tag rows in one transaction.
func (s *DocumentStore) Save(ctx context.Context, doc *model.Document) (out *model.Document, err error) {
	saved := *doc
	if saved.ID == "" {
		if saved.ID, err = s.newID(); err != nil {
			return nil, fmt.Errorf("generate id: %w", err)
		}
	}
	// Postgres keeps microseconds; truncate so both dialects round-trip the same value.
	now := s.now().UTC().Truncate(time.Microsecond)
	saved.CreatedAt = now
	saved.UpdatedAt = now
	saved.Tags = make([]model.Tag, 0, len(doc.Tags))
	for _, t := range doc.Tags {
		saved.Tags = append(saved.Tags, model.Tag{DocumentID: saved.ID, Name: t.Name})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	insDoc, args, err := s.sb.Insert("documents").
		Columns("id", "user_name", "document_name", "storage_path", "file_size", "file_type", "created_at", "updated_at").
		Values(saved.ID, saved.Owner, saved.Name, saved.StoragePath, saved.Size, saved.ContentType,
			s.dialect.EncodeTime(saved.CreatedAt), s.dialect.EncodeTime(saved.UpdatedAt)).
		ToSql()
	if err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx, insDoc, args...); err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}

	if len(saved.Tags) > 0 {
		ins := s.sb.Insert("tags").Columns("document_id", "tag_name")
		for _, t := range saved.Tags {
			ins = ins.Values(t.DocumentID, t.Name)
		}
		insTags, tagArgs, err := ins.ToSql()
		if err != nil {
			return nil, err
		}
		if _, err = tx.ExecContext(ctx, insTags, tagArgs...); err != nil {
			return nil, fmt.Errorf("insert tags: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &saved, nil
}

// FindByID fetches a single document and its tags.
func (s *DocumentStore) FindByID(ctx context.Context, id string) (*model.Document, error) {
	q, args, err := s.sb.Select(documentColumns...).From("documents").Where(sq.Eq{"documents.id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	var d model.Document
	if err := scanDocument(s.db.QueryRowContext(ctx, q, args...), &d); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	docs := []model.Document{d}
	if err := s.attachTags(ctx, docs); err != nil {
		return nil, err
	}
	return &docs[0], nil
}

// FindPage counts matches, then fetches one page ordered by created_at DESC, id DESC.
func (s *DocumentStore) FindPage(ctx context.Context, pred query.Predicate, pr repository.PageRequest) (*repository.Page[model.Document], error) {
	if pr.Page < 0 || pr.Size < 1 {
		return nil, fmt.Errorf("invalid page request: page=%d size=%d", pr.Page, pr.Size)
	}

	countQ, err := where(s.sb.Select("COUNT(*)").From("documents"), pred, s.dialect)
	if err != nil {
		return nil, err
	}
	q, args, err := countQ.ToSql()
	if err != nil {
		return nil, err
	}
	var total int64
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	page := &repository.Page[model.Document]{
		Items:      make([]model.Document, 0),
		Page:       pr.Page,
		Size:       pr.Size,
		TotalItems: total,
	}
	offset, ok := pr.Offset()
	if !ok || offset >= total {
		return page, nil
	}

	listQ, err := where(s.sb.Select(documentColumns...).From("documents"), pred, s.dialect)
	if err != nil {
		return nil, err
	}
	q, args, err = listQ.
		OrderBy("documents.created_at DESC", "documents.id DESC").
		Limit(uint64(pr.Size)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d model.Document
		if err := scanDocument(rows, &d); err != nil {
			return nil, err
		}
		page.Items = append(page.Items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.attachTags(ctx, page.Items); err != nil {
		return nil, err
	}
	return page, nil
}

// DeleteByID removes a document and its tags. It does not return an error if the row does not exist.
func (s *DocumentStore) DeleteByID(ctx context.Context, id string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, b := range []sq.DeleteBuilder{
		s.sb.Delete("tags").Where(sq.Eq{"document_id": id}),
		s.sb.Delete("documents").Where(sq.Eq{"id": id}),
	} {
		q, args, err := b.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ExistsByStoragePath reports whether any document row references path.
func (s *DocumentStore) ExistsByStoragePath(ctx context.Context, path string) (bool, error) {
	q, args, err := s.sb.Select("1").From("documents").Where(sq.Eq{"storage_path": path}).Limit(1).ToSql()
	if err != nil {
		return false, err
	}
	var one int
	switch err := s.db.QueryRowContext(ctx, q, args...).Scan(&one); {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, err
	default:
		return true, nil
	}
}

// attachTags loads the tags of all docs with a single IN query.
func (s *DocumentStore) attachTags(ctx context.Context, docs []model.Document) error {
	if len(docs) == 0 {
		return nil
	}
	ids := make([]string, len(docs))
	byID := make(map[string]*model.Document, len(docs))
	for i := range docs {
		ids[i] = docs[i].ID
		byID[docs[i].ID] = &docs[i]
	}

	q, args, err := s.sb.Select("id", "document_id", "tag_name").
		From("tags").
		Where(sq.Eq{"document_id": ids}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return err
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.DocumentID, &t.Name); err != nil {
			return err
		}
		if d, ok := byID[t.DocumentID]; ok {
			d.Tags = append(d.Tags, t)
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(r rowScanner, d *model.Document) error {
	return r.Scan(
		&d.ID,
		&d.Owner,
		&d.Name,
		&d.StoragePath,
		&d.Size,
		&d.ContentType,
		timestamp{&d.CreatedAt},
		timestamp{&d.UpdatedAt},
	)
}
