package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"papersorter/internal/domain/entity"
	"papersorter/internal/repository"
)

// ModelRepo implements repository.ModelRepository for PostgreSQL.
type ModelRepo struct{ db *sql.DB }

func NewModelRepo(db *sql.DB) repository.ModelRepository {
	return &ModelRepo{db: db}
}

const modelColumns = `id, name, created_at, is_active, notes, score_name`

func scanModel(scan func(dest ...any) error) (*entity.Model, error) {
	var m entity.Model
	if err := scan(&m.ID, &m.Name, &m.CreatedAt, &m.IsActive, &m.Notes, &m.ScoreName); err != nil {
		return nil, err
	}
	return &m, nil
}

func (repo *ModelRepo) Get(ctx context.Context, id int64) (*entity.Model, error) {
	const query = `SELECT ` + modelColumns + ` FROM models WHERE id = $1`
	m, err := scanModel(repo.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return m, nil
}

func (repo *ModelRepo) ListActive(ctx context.Context) ([]*entity.Model, error) {
	return repo.list(ctx, `SELECT `+modelColumns+` FROM models WHERE is_active = TRUE ORDER BY id ASC`)
}

func (repo *ModelRepo) List(ctx context.Context) ([]*entity.Model, error) {
	return repo.list(ctx, `SELECT `+modelColumns+` FROM models ORDER BY id ASC`)
}

func (repo *ModelRepo) list(ctx context.Context, query string) ([]*entity.Model, error) {
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	models := make([]*entity.Model, 0, 8)
	for rows.Next() {
		m, err := scanModel(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list: Scan: %w", err)
		}
		models = append(models, m)
	}
	return models, rows.Err()
}

func (repo *ModelRepo) Create(ctx context.Context, model *entity.Model) error {
	if err := model.Validate(); err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	const query = `
INSERT INTO models (name, is_active, notes, score_name)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at`
	return repo.db.QueryRowContext(ctx, query, model.Name, model.IsActive, model.Notes, model.ScoreName).
		Scan(&model.ID, &model.CreatedAt)
}

func (repo *ModelRepo) SetActive(ctx context.Context, id int64, active bool) error {
	const query = `UPDATE models SET is_active = $1 WHERE id = $2`
	res, err := repo.db.ExecContext(ctx, query, active, id)
	if err != nil {
		return fmt.Errorf("SetActive: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("SetActive: no rows affected")
	}
	return nil
}

func (repo *ModelRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM models WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: no rows affected")
	}
	return nil
}
