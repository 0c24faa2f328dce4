package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
	"github.com/ome/openmicroscopy-sub033/internal/core/port"
)

type sqlRecordRepository struct {
	db SQLQuerier
}

// NewSQLRecordRepository creates the catalog gateway over postgres.
func NewSQLRecordRepository(db SQLQuerier) port.RecordRepository {
	return &sqlRecordRepository{db: db}
}

const recordColumns = `id, repo, parent_path, name, size_bytes, mtime, hash, hasher, mimetype, created_at, updated_at`

// Register inserts one catalog row. The unique (repo, parent_path, name)
// constraint surfaces as domain.ErrRecordExists so callers can resolve
// concurrent-creation races.
func (s *sqlRecordRepository) Register(ctx context.Context, rec domain.Record) (*domain.Record, error) {
	query := `INSERT INTO records (repo, parent_path, name, size_bytes, mtime, hash, hasher, mimetype)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
              RETURNING ` + recordColumns

	var dbRec dbRecord
	err := s.db.QueryRowContext(ctx, query,
		rec.Repo, rec.ParentPath, rec.Name, rec.Size, rec.Mtime, rec.Hash, rec.Hasher, rec.Mimetype,
	).Scan(dbRec.fields()...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, fmt.Errorf("%w: %s/%s", domain.ErrRecordExists, rec.ParentPath, rec.Name)
		}
		return nil, fmt.Errorf("error inserting record: %w", err)
	}
	return dbRec.toDomain(), nil
}

// FindRecord finds one row by its unique path triple.
func (s *sqlRecordRepository) FindRecord(ctx context.Context, repo uuid.UUID, parentPath, name string) (*domain.Record, error) {
	query := `SELECT ` + recordColumns + `
              FROM records
              WHERE repo = $1 AND parent_path = $2 AND name = $3`

	var dbRec dbRecord
	err := s.db.QueryRowContext(ctx, query, repo, parentPath, name).Scan(dbRec.fields()...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%s", domain.ErrRecordNotFound, parentPath, name)
		}
		return nil, err
	}
	return dbRec.toDomain(), nil
}

// FindByID finds one row by id.
func (s *sqlRecordRepository) FindByID(ctx context.Context, id int64) (*domain.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE id = $1`

	var dbRec dbRecord
	err := s.db.QueryRowContext(ctx, query, id).Scan(dbRec.fields()...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %d", domain.ErrRecordNotFound, id)
		}
		return nil, err
	}
	return dbRec.toDomain(), nil
}

// ListChildren lists the rows whose parent path equals dirPath.
func (s *sqlRecordRepository) ListChildren(ctx context.Context, repo uuid.UUID, dirPath string) ([]domain.Record, error) {
	query := `SELECT ` + recordColumns + `
              FROM records
              WHERE repo = $1 AND parent_path = $2
              ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, repo, dirPath)
	if err != nil {
		return nil, fmt.Errorf("error listing children of %q: %w", dirPath, err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// TreeList lists every row at dirPath or below it.
func (s *sqlRecordRepository) TreeList(ctx context.Context, repo uuid.UUID, dirPath string) ([]domain.Record, error) {
	query := `SELECT ` + recordColumns + `
              FROM records
              WHERE repo = $1 AND (parent_path = $2 OR parent_path LIKE $3)
              ORDER BY parent_path, name`

	rows, err := s.db.QueryContext(ctx, query, repo, dirPath, likePrefix(dirPath))
	if err != nil {
		return nil, fmt.Errorf("error tree-listing %q: %w", dirPath, err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func likePrefix(dirPath string) string {
	if dirPath == "" {
		return "%"
	}
	return escapeLike(dirPath) + "/%"
}

// escapeLike neutralizes LIKE metacharacters in a literal path prefix.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

// Exists reports whether a row exists for the path triple.
func (s *sqlRecordRepository) Exists(ctx context.Context, repo uuid.UUID, parentPath, name string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM records WHERE repo = $1 AND parent_path = $2 AND name = $3)`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, repo, parentPath, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking existence of %s/%s: %w", parentPath, name, err)
	}
	return exists, nil
}

// Delete removes one row.
func (s *sqlRecordRepository) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting record: %w", err)
	}
	return requireRow(result)
}

// UpdateSize stores a fresh size and modification time.
func (s *sqlRecordRepository) UpdateSize(ctx context.Context, id int64, size int64, mtime time.Time) error {
	query := `UPDATE records SET size_bytes = $1, mtime = $2, updated_at = now() WHERE id = $3`

	result, err := s.db.ExecContext(ctx, query, size, mtime, id)
	if err != nil {
		return fmt.Errorf("error updating record size: %w", err)
	}
	return requireRow(result)
}

// UpdateHash stores a computed content hash and its algorithm.
func (s *sqlRecordRepository) UpdateHash(ctx context.Context, id int64, hash string, hasher domain.ChecksumAlgo) error {
	query := `UPDATE records SET hash = $1, hasher = $2, updated_at = now() WHERE id = $3`

	result, err := s.db.ExecContext(ctx, query, hash, hasher, id)
	if err != nil {
		return fmt.Errorf("error updating record hash: %w", err)
	}
	return requireRow(result)
}

// UpdateMimetype stores a sniffed mimetype.
func (s *sqlRecordRepository) UpdateMimetype(ctx context.Context, id int64, mimetype string) error {
	query := `UPDATE records SET mimetype = $1, updated_at = now() WHERE id = $2`

	result, err := s.db.ExecContext(ctx, query, mimetype, id)
	if err != nil {
		return fmt.Errorf("error updating record mimetype: %w", err)
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

func scanRecords(rows *sql.Rows) ([]domain.Record, error) {
	var recs []domain.Record
	for rows.Next() {
		var dbRec dbRecord
		if err := rows.Scan(dbRec.fields()...); err != nil {
			return nil, fmt.Errorf("error scanning record: %w", err)
		}
		recs = append(recs, *dbRec.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}
	return recs, nil
}

// dbRecord represents a catalog row in DB
type dbRecord struct {
	ID         int64          `db:"id"`
	Repo       uuid.UUID      `db:"repo"`
	ParentPath string         `db:"parent_path"`
	Name       string         `db:"name"`
	Size       int64          `db:"size_bytes"`
	Mtime      time.Time      `db:"mtime"`
	Hash       sql.NullString `db:"hash"`
	Hasher     sql.NullString `db:"hasher"`
	Mimetype   string         `db:"mimetype"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func (r *dbRecord) fields() []any {
	return []any{&r.ID, &r.Repo, &r.ParentPath, &r.Name, &r.Size, &r.Mtime, &r.Hash, &r.Hasher, &r.Mimetype, &r.CreatedAt, &r.UpdatedAt}
}

func (r *dbRecord) toDomain() *domain.Record {
	rec := &domain.Record{
		ID:         r.ID,
		Repo:       r.Repo,
		ParentPath: r.ParentPath,
		Name:       r.Name,
		Size:       r.Size,
		Mtime:      r.Mtime,
		Mimetype:   r.Mimetype,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.Hash.Valid {
		rec.Hash = r.Hash.String
	}
	if r.Hasher.Valid {
		rec.Hasher = domain.ChecksumAlgo(r.Hasher.String)
	}
	return rec
}
