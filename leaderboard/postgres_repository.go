package leaderboard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

const snapshotColumns = "date, member_id, htb_rank, htb_score, rm_rank, rm_score, thm_rank, thm_rooms"

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, memberID int64, date time.Time) (*Snapshot, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM daily_snapshots
		WHERE member_id = $1 AND date = $2::date
	`, memberID, date.Format("2006-01-02"))

	snapshot, err := scanSnapshotRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot member=%d: %w", memberID, err)
	}
	return snapshot, nil
}

func (r *PostgresRepository) ListForDate(ctx context.Context, date time.Time, memberIDs []int64, p Platform) ([]Snapshot, error) {
	cols, ok := platformTable[p]
	if !ok {
		return nil, fmt.Errorf("unknown platform %q", p)
	}

	// The score column name comes from the static platform table, never from
	// caller input.
	query := `
		SELECT ` + snapshotColumns + `
		FROM daily_snapshots
		WHERE date = $1::date AND ` + cols.score + ` > 0`
	args := []any{date.Format("2006-01-02")}

	if memberIDs != nil {
		query += ` AND member_id = ANY($2::bigint[])`
		args = append(args, pq.Array(memberIDs))
	}
	query += ` ORDER BY ` + cols.score + ` DESC, member_id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list snapshots for %s: %w", date.Format("2006-01-02"), err)
	}
	defer rows.Close()

	snapshots := make([]Snapshot, 0)
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.Date, &s.MemberID, &s.HTBRank, &s.HTBScore,
			&s.RMRank, &s.RMScore, &s.THMRank, &s.THMRooms); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

// Upsert relies on the (date, member_id) primary key: the COALESCE on the
// conflict branch keeps stored values wherever the update carries nil, which
// makes re-running the same day a per-field merge instead of an overwrite.
func (r *PostgresRepository) Upsert(ctx context.Context, memberID int64, date time.Time, update SnapshotUpdate) (*Snapshot, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO daily_snapshots (date, member_id, htb_rank, htb_score, rm_rank, rm_score, thm_rank, thm_rooms)
		VALUES ($1::date, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (date, member_id) DO UPDATE SET
			htb_rank  = COALESCE(EXCLUDED.htb_rank, daily_snapshots.htb_rank),
			htb_score = COALESCE(EXCLUDED.htb_score, daily_snapshots.htb_score),
			rm_rank   = COALESCE(EXCLUDED.rm_rank, daily_snapshots.rm_rank),
			rm_score  = COALESCE(EXCLUDED.rm_score, daily_snapshots.rm_score),
			thm_rank  = COALESCE(EXCLUDED.thm_rank, daily_snapshots.thm_rank),
			thm_rooms = COALESCE(EXCLUDED.thm_rooms, daily_snapshots.thm_rooms)
		RETURNING `+snapshotColumns+`
	`, date.Format("2006-01-02"), memberID, update.HTBRank, update.HTBScore,
		update.RMRank, update.RMScore, update.THMRank, update.THMRooms)

	snapshot, err := scanSnapshotRow(row)
	if err != nil {
		return nil, fmt.Errorf("upsert snapshot member=%d: %w", memberID, err)
	}
	return snapshot, nil
}

func (r *PostgresRepository) EarliestPositive(ctx context.Context, memberID int64, p Platform) (*Snapshot, error) {
	cols, ok := platformTable[p]
	if !ok {
		return nil, fmt.Errorf("unknown platform %q", p)
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+snapshotColumns+`
		FROM daily_snapshots
		WHERE member_id = $1 AND `+cols.score+` > 0
		ORDER BY date ASC
		LIMIT 1
	`, memberID)

	snapshot, err := scanSnapshotRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("earliest snapshot member=%d: %w", memberID, err)
	}
	return snapshot, nil
}

func scanSnapshotRow(row *sql.Row) (*Snapshot, error) {
	var s Snapshot
	err := row.Scan(&s.Date, &s.MemberID, &s.HTBRank, &s.HTBScore,
		&s.RMRank, &s.RMScore, &s.THMRank, &s.THMRooms)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

var _ SnapshotRepository = (*PostgresRepository)(nil)
