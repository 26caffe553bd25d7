package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jinbei222125-wq/wojp-corporate/internal/model"
)

const jobPositionColumns = `id, position_name, description, requirements, location, salary, is_active, created_at, updated_at`

// PostgresJobPositionRepo はPostgreSQLを使用した採用ポジションリポジトリ。
// dbがnilの場合は縮退モードとして動作する。
type PostgresJobPositionRepo struct {
	db *sql.DB
}

// NewPostgresJobPositionRepo はPostgresJobPositionRepoを生成する。
func NewPostgresJobPositionRepo(db *sql.DB) *PostgresJobPositionRepo {
	return &PostgresJobPositionRepo{db: db}
}

// ListActive はアクティブなポジションをcreated_at降順で返す。
func (r *PostgresJobPositionRepo) ListActive(ctx context.Context) ([]*model.JobPosition, error) {
	return r.list(ctx,
		`SELECT `+jobPositionColumns+` FROM job_positions WHERE is_active = 1 ORDER BY created_at DESC`)
}

// ListAll は全ポジションをcreated_at降順で返す。
func (r *PostgresJobPositionRepo) ListAll(ctx context.Context) ([]*model.JobPosition, error) {
	return r.list(ctx,
		`SELECT `+jobPositionColumns+` FROM job_positions ORDER BY created_at DESC`)
}

func (r *PostgresJobPositionRepo) list(ctx context.Context, query string) ([]*model.JobPosition, error) {
	if r.db == nil {
		return []*model.JobPosition{}, nil
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list job positions: %w", err)
	}
	defer rows.Close()

	items := []*model.JobPosition{}
	for rows.Next() {
		p := &model.JobPosition{}
		if err := scanJobPosition(rows, p); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate job position rows: %w", err)
	}

	return items, nil
}

// FindByID は指定IDのポジションを取得する。アクティブフラグでは絞らない。
// 見つからない場合・DB未接続の場合はnilを返す。
func (r *PostgresJobPositionRepo) FindByID(ctx context.Context, id int64) (*model.JobPosition, error) {
	if r.db == nil {
		return nil, nil
	}

	p := &model.JobPosition{}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+jobPositionColumns+` FROM job_positions WHERE id = $1`, id)

	err := scanJobPosition(row, p)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find job position by id: %w", err)
	}

	return p, nil
}

// Create はポジションを作成し、採番されたIDを返す。
func (r *PostgresJobPositionRepo) Create(ctx context.Context, in model.JobPositionInput) (int64, error) {
	if r.db == nil {
		return 0, model.NewDatabaseUnavailableError()
	}

	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO job_positions (position_name, description, requirements, location, salary, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		in.PositionName, in.Description, in.Requirements, in.Location, in.Salary, in.IsActive,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create job position: %w", err)
	}

	return id, nil
}

// Update は指定フィールドのみを更新する。対象行がなくてもエラーにしない。
func (r *PostgresJobPositionRepo) Update(ctx context.Context, id int64, patch model.JobPositionPatch) error {
	if patch.Empty() {
		return nil
	}
	if r.db == nil {
		return model.NewDatabaseUnavailableError()
	}

	query, args := buildJobPositionUpdate(id, patch)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update job position: %w", err)
	}

	return nil
}

// buildJobPositionUpdate はUPDATE文と引数を構築する純関数。
// patchで指定されたフィールドのみをSET句に含める。
func buildJobPositionUpdate(id int64, patch model.JobPositionPatch) (string, []any) {
	var sets []string
	var args []any

	add := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.PositionName != nil {
		add("position_name", *patch.PositionName)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Requirements != nil {
		add("requirements", *patch.Requirements)
	}
	if patch.Location != nil {
		add("location", *patch.Location)
	}
	if patch.Salary != nil {
		add("salary", *patch.Salary)
	}
	if patch.IsActive != nil {
		add("is_active", *patch.IsActive)
	}

	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE job_positions SET %s WHERE id = $%d`,
		strings.Join(sets, ", "), len(args))

	return query, args
}

// Delete はポジションを削除する。存在しないIDの削除はエラーにしない（冪等）。
func (r *PostgresJobPositionRepo) Delete(ctx context.Context, id int64) error {
	if r.db == nil {
		return model.NewDatabaseUnavailableError()
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM job_positions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete job position: %w", err)
	}

	return nil
}

func scanJobPosition(row rowScanner, p *model.JobPosition) error {
	return row.Scan(&p.ID, &p.PositionName, &p.Description, &p.Requirements,
		&p.Location, &p.Salary, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
}

// compile-time interface check
var _ JobPositionRepository = (*PostgresJobPositionRepo)(nil)
