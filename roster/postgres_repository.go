package roster

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const memberColumns = "id, username, active, birthday, htb_id, rm_id, rm_name, thm_id"

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Member, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+memberColumns+`
		FROM members
		WHERE id = $1
	`, id)
	return scanMember(row)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*Member, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+memberColumns+`
		FROM members
		WHERE username = $1
	`, username)
	return scanMember(row)
}

func (r *PostgresRepository) Insert(ctx context.Context, member *Member) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO members (id, username, active, birthday, htb_id, rm_id, rm_name, thm_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, member.ID, member.Username, member.Active, member.Birthday,
		member.HTBID, member.RMID, member.RMName, member.THMID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert member %d: %w", member.ID, err)
	}
	return nil
}

// Update merges the non-nil fields of update into the member row and returns
// the updated member. Username collisions surface as ErrConflict via the
// unique constraint even when two updates race.
func (r *PostgresRepository) Update(ctx context.Context, id int64, update ProfileUpdate) (*Member, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE members SET
			username = COALESCE($2, username),
			birthday = COALESCE($3, birthday),
			htb_id   = COALESCE($4, htb_id),
			rm_id    = COALESCE($5, rm_id),
			rm_name  = COALESCE($6, rm_name),
			thm_id   = COALESCE($7, thm_id)
		WHERE id = $1
		RETURNING `+memberColumns+`
	`, id, update.Username, update.Birthday, update.HTBID,
		update.RMID, update.RMName, update.THMID)

	member, err := scanMember(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrConflict
		}
		return nil, err
	}
	return member, nil
}

func (r *PostgresRepository) ListActive(ctx context.Context) ([]Member, error) {
	return r.list(ctx, true)
}

func (r *PostgresRepository) ListDeactivated(ctx context.Context) ([]Member, error) {
	return r.list(ctx, false)
}

func (r *PostgresRepository) list(ctx context.Context, active bool) ([]Member, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+memberColumns+`
		FROM members
		WHERE active = $1
		ORDER BY id
	`, active)
	if err != nil {
		return nil, fmt.Errorf("list members active=%t: %w", active, err)
	}
	defer rows.Close()

	members := make([]Member, 0)
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.Username, &m.Active, &m.Birthday,
			&m.HTBID, &m.RMID, &m.RMName, &m.THMID); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *PostgresRepository) SetActive(ctx context.Context, id int64, active bool) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE members SET active = $2 WHERE id = $1
	`, id, active)
	if err != nil {
		return fmt.Errorf("set member %d active=%t: %w", id, active, err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM members WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete member %d: %w", id, err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanMember(row *sql.Row) (*Member, error) {
	var m Member
	err := row.Scan(&m.ID, &m.Username, &m.Active, &m.Birthday,
		&m.HTBID, &m.RMID, &m.RMName, &m.THMID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan member: %w", err)
	}
	return &m, nil
}

var _ Repository = (*PostgresRepository)(nil)
