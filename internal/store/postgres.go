package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/edvin/dockpanel/internal/model"
)

// DB is the subset of pgx used by the Postgres store. *pgxpool.Pool
// satisfies it.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const pgUniqueViolation = "23505"

type Postgres struct {
	db DB
}

func NewPostgres(db DB) *Postgres {
	return &Postgres{db: db}
}

func pgContains(column, bind string) string {
	return fmt.Sprintf("strpos(%s, %s) > 0", column, bind)
}

func pgTimestamp(v any) any {
	return v
}

func (s *Postgres) FindByName(ctx context.Context, name string) (*model.Project, error) {
	var p model.Project
	err := s.db.QueryRow(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE name = $1", name,
	).Scan(&p.ID, &p.Name, &p.Content, &p.CreatedAt, &p.UpdatedAt, &p.CreatedUser, &p.UpdatedUser)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get project %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", name, err)
	}
	return &p, nil
}

func (s *Postgres) FindMany(ctx context.Context, filter model.ProjectFilter) ([]model.Project, error) {
	f := filter.WithDefaults()
	where, args := whereClause(f, pgPlaceholder, pgContains, pgTimestamp, nil)

	query := "SELECT " + projectColumns + " FROM projects" + where
	query += ` ORDER BY updated_at DESC, name`
	query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, f.PageSize, f.Offset())

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Content, &p.CreatedAt, &p.UpdatedAt, &p.CreatedUser, &p.UpdatedUser); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

func (s *Postgres) Count(ctx context.Context, filter model.ProjectFilter) (int, error) {
	where, args := whereClause(filter.WithDefaults(), pgPlaceholder, pgContains, pgTimestamp, nil)

	var n int
	if err := s.db.QueryRow(ctx, "SELECT count(*) FROM projects"+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}

func (s *Postgres) Create(ctx context.Context, p *model.Project) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO projects (`+projectColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.Name, p.Content, p.CreatedAt, p.UpdatedAt, p.CreatedUser, p.UpdatedUser,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("create project %s: %w", p.Name, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("create project %s: %w", p.Name, err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, p *model.Project) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE projects SET content = $1, updated_at = $2, updated_user = $3 WHERE name = $4`,
		p.Content, p.UpdatedAt, p.UpdatedUser, p.Name,
	)
	if err != nil {
		return fmt.Errorf("update project %s: %w", p.Name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update project %s: %w", p.Name, ErrNotFound)
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, name string) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM projects WHERE name = $1", name)
	if err != nil {
		return fmt.Errorf("delete project %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete project %s: %w", name, ErrNotFound)
	}
	return nil
}

func (s *Postgres) ListNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, "SELECT name FROM projects ORDER BY name")
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

func (s *Postgres) ListContents(ctx context.Context) ([]model.ProjectContent, error) {
	rows, err := s.db.Query(ctx, "SELECT name, content FROM projects ORDER BY name")
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
