package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iconforge/iconforge-backend/internal/domain/entity"
	"github.com/iconforge/iconforge-backend/internal/domain/repository"
)

type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

// Create inserts the project row and all initial membership rows in a single
// transaction so a half-created project never becomes visible.
func (r *ProjectRepository) Create(ctx context.Context, p *entity.Project, ownerID int64, memberIDs []int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		INSERT INTO projects (prefix, name, "desc", logo, total, icon_set_json)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, p.Prefix, p.Name, p.Desc, p.Logo, p.Total, p.IconSetJSON)
	if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrDuplicatePrefix
		}
		return err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO project_members (project_id, user_id, role)
		VALUES ($1, $2, $3)
	`, p.ID, ownerID, entity.RoleOwner); err != nil {
		return err
	}
	for _, uid := range memberIDs {
		if uid == ownerID {
			continue
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO project_members (project_id, user_id, role)
			VALUES ($1, $2, $3)
			ON CONFLICT (project_id, user_id) DO NOTHING
		`, p.ID, uid, entity.RoleMember); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*entity.Project, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT id, prefix, name, "desc", logo, total, icon_set_json, created_at, updated_at
		FROM projects
		WHERE id = $1
	`, id))
}

func (r *ProjectRepository) GetByPrefix(ctx context.Context, prefix string) (*entity.Project, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT id, prefix, name, "desc", logo, total, icon_set_json, created_at, updated_at
		FROM projects
		WHERE prefix = $1
	`, prefix))
}

func (r *ProjectRepository) scanOne(row pgx.Row) (*entity.Project, error) {
	p := &entity.Project{}
	if err := row.Scan(&p.ID, &p.Prefix, &p.Name, &p.Desc, &p.Logo, &p.Total,
		&p.IconSetJSON, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *ProjectRepository) SummaryByPrefix(ctx context.Context, prefix string) (*entity.ProjectSummary, error) {
	s := &entity.ProjectSummary{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, prefix, "desc", total
		FROM projects
		WHERE prefix = $1
	`, prefix)
	if err := row.Scan(&s.ID, &s.Name, &s.Prefix, &s.Desc, &s.Total); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *ProjectRepository) UpdateIconSet(ctx context.Context, id int64, blob []byte, total int) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE projects
		SET icon_set_json = $1, total = $2, updated_at = now()
		WHERE id = $3
	`, blob, total, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProjectRepository) UpdateLogo(ctx context.Context, id int64, logo string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE projects
		SET logo = $1, updated_at = now()
		WHERE id = $2
	`, logo, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProjectRepository) ListByUser(ctx context.Context, userID int64) ([]entity.ProjectSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.name, p.prefix, p."desc", p.total
		FROM projects p
		JOIN project_members m ON m.project_id = p.id
		WHERE m.user_id = $1
		GROUP BY p.id
		ORDER BY p.id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.ProjectSummary, 0)
	for rows.Next() {
		var s entity.ProjectSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Prefix, &s.Desc, &s.Total); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *ProjectRepository) All(ctx context.Context) ([]entity.Project, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, prefix, name, "desc", logo, total, icon_set_json, created_at, updated_at
		FROM projects
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.Project, 0)
	for rows.Next() {
		var p entity.Project
		if err := rows.Scan(&p.ID, &p.Prefix, &p.Name, &p.Desc, &p.Logo, &p.Total,
			&p.IconSetJSON, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// AddMember is idempotent per (project, user) pair.
func (r *ProjectRepository) AddMember(ctx context.Context, projectID, userID int64, role int) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO project_members (project_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (project_id, user_id) DO NOTHING
	`, projectID, userID, role)
	return err
}

// RemoveMember deletes every membership row matching the pair.
func (r *ProjectRepository) RemoveMember(ctx context.Context, projectID, userID int64) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM project_members
		WHERE project_id = $1 AND user_id = $2
	`, projectID, userID)
	return err
}

func (r *ProjectRepository) ListMembers(ctx context.Context, projectID int64) ([]entity.ProjectMember, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.project_id, m.user_id, m.role, u.name, m.created_at
		FROM project_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.project_id = $1
		ORDER BY m.id
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMembers(rows)
}

func (r *ProjectRepository) MemberInfo(ctx context.Context, projectID, userID int64) ([]entity.ProjectMember, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.project_id, m.user_id, m.role, u.name, m.created_at
		FROM project_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.project_id = $1 AND m.user_id = $2
		ORDER BY m.id
	`, projectID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMembers(rows)
}

func scanMembers(rows pgx.Rows) ([]entity.ProjectMember, error) {
	out := make([]entity.ProjectMember, 0)
	for rows.Next() {
		var m entity.ProjectMember
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.UserID, &m.Role, &m.UserName, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

var _ repository.ProjectRepository = (*ProjectRepository)(nil)
