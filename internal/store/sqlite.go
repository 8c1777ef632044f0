package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/edvin/dockpanel/internal/model"
)

// SQLite stores projects in a single-file database. Timestamps are kept
// as unix milliseconds.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

func sqliteContains(column, bind string) string {
	return fmt.Sprintf("instr(%s, %s) > 0", column, bind)
}

func sqliteTimestamp(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.UnixMilli()
	}
	return v
}

type sqliteScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteProject(row sqliteScanner) (*model.Project, error) {
	var (
		p                    model.Project
		created, updated     int64
		createdBy, updatedBy sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Content, &created, &updated, &createdBy, &updatedBy); err != nil {
		return nil, err
	}
	p.CreatedAt = time.UnixMilli(created).UTC()
	p.UpdatedAt = time.UnixMilli(updated).UTC()
	if createdBy.Valid {
		p.CreatedUser = &createdBy.String
	}
	if updatedBy.Valid {
		p.UpdatedUser = &updatedBy.String
	}
	return &p, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func isUniqueViolation(err error) bool {
	var e *sqlite.Error
	return errors.As(err, &e) && e.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func (s *SQLite) FindByName(ctx context.Context, name string) (*model.Project, error) {
	p, err := scanSQLiteProject(s.db.QueryRowContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE name = ?", name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get project %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", name, err)
	}
	return p, nil
}

func (s *SQLite) FindMany(ctx context.Context, filter model.ProjectFilter) ([]model.Project, error) {
	f := filter.WithDefaults()
	where, args := whereClause(f, sqlitePlaceholder, sqliteContains, sqliteTimestamp, nil)

	query := "SELECT " + projectColumns + " FROM projects" + where +
		" ORDER BY updated_at DESC, name LIMIT ? OFFSET ?"
	args = append(args, f.PageSize, f.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		p, err := scanSQLiteProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

func (s *SQLite) Count(ctx context.Context, filter model.ProjectFilter) (int, error) {
	where, args := whereClause(filter.WithDefaults(), sqlitePlaceholder, sqliteContains, sqliteTimestamp, nil)

	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM projects"+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}

func (s *SQLite) Create(ctx context.Context, p *model.Project) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (`+projectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Content, p.CreatedAt.UnixMilli(), p.UpdatedAt.UnixMilli(),
		nullString(p.CreatedUser), nullString(p.UpdatedUser),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("create project %s: %w", p.Name, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("create project %s: %w", p.Name, err)
	}
	return nil
}

func (s *SQLite) Update(ctx context.Context, p *model.Project) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET content = ?, updated_at = ?, updated_user = ? WHERE name = ?`,
		p.Content, p.UpdatedAt.UnixMilli(), nullString(p.UpdatedUser), p.Name,
	)
	if err != nil {
		return fmt.Errorf("update project %s: %w", p.Name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update project %s: %w", p.Name, ErrNotFound)
	}
	return nil
}

func (s *SQLite) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("delete project %s: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete project %s: %w", name, ErrNotFound)
	}
	return nil
}

func (s *SQLite) ListNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM projects ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list project names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan project name: %w", err)
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project names: %w", err)
	}
	return names, nil
}

func (s *SQLite) ListContents(ctx context.Context) ([]model.ProjectContent, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, content FROM projects ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list project contents: %w", err)
	}
	defer rows.Close()

	var out []model.ProjectContent
	for rows.Next() {
		var pc model.ProjectContent
		if err := rows.Scan(&pc.Name, &pc.Content); err != nil {
			return nil, fmt.Errorf("scan project content: %w", err)
		}
		out = append(out, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project contents: %w", err)
	}
	return out, nil
}
