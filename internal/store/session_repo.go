package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/coderush/internal/problem"
	"github.com/abhisek/coderush/internal/session"
)

// ErrNoSessionID is returned when a summary without a session id is recorded.
var ErrNoSessionID = errors.New("summary has no session id")

var sqlite = entsql.Dialect(dialect.SQLite)

var sessionColumns = []string{
	"sequence", "session_id", "user_id", "nickname",
	"total", "answered", "correct", "started_at", "finished_at",
}

type sessionRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

func (r *sessionRepo) AppendSession(ctx context.Context, s *session.Summary) error {
	if s.SessionID == "" {
		return ErrNoSessionID
	}

	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	seqNum, err := r.seq.NextIn(ctx, tx)
	if err != nil {
		return err
	}

	for _, table := range []string{missedTable, sessionsTable} {
		query, args := sqlite.Delete(table).Where(entsql.EQ("session_id", s.SessionID)).Query()
		if err := tx.Exec(ctx, query, args, nil); err != nil {
			return fmt.Errorf("replace %s: %w", table, err)
		}
	}

	query, args := sqlite.Insert(sessionsTable).
		Columns(append([]string{"timestamp"}, sessionColumns...)...).
		Values(time.Now().UTC(), seqNum, s.SessionID, string(s.User), s.Nickname,
			s.Total, s.Answered, s.Correct, s.StartedAt.UTC(), s.FinishedAt.UTC()).
		Query()
	if err := tx.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	for i, p := range s.Missed {
		query, args := sqlite.Insert(missedTable).
			Columns("session_id", "position", "problem_id", "category", "title", "payload").
			Values(s.SessionID, i, p.ID, p.Category, p.Title, string(p.Raw())).
			Query()
		if err := tx.Exec(ctx, query, args, nil); err != nil {
			return fmt.Errorf("save missed problem %d: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *sessionRepo) RecentSessions(ctx context.Context, limit int) ([]SessionRecord, error) {
	sel := sqlite.Select(sessionColumns...).
		From(entsql.Table(sessionsTable)).
		OrderBy(entsql.Desc("sequence"))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		if err := rows.Scan(&rec.Sequence, &rec.SessionID, &rec.UserID, &rec.Nickname,
			&rec.Total, &rec.Answered, &rec.Correct, &rec.StartedAt, &rec.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		rec.StartedAt = rec.StartedAt.UTC()
		rec.FinishedAt = rec.FinishedAt.UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	rows.Close()

	for i := range records {
		missed, err := r.missed(ctx, records[i].SessionID)
		if err != nil {
			return nil, err
		}
		records[i].Missed = missed
	}
	return records, nil
}

func (r *sessionRepo) missed(ctx context.Context, sessionID string) ([]problem.Problem, error) {
	query, args := sqlite.Select("payload").
		From(entsql.Table(missedTable)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy("position").
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query missed problems: %w", err)
	}
	defer rows.Close()

	var out []problem.Problem
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan missed problem: %w", err)
		}
		p, err := problem.Normalize([]byte(payload))
		if err != nil {
			return nil, fmt.Errorf("decode missed problem: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *sessionRepo) Clear(ctx context.Context) (int64, error) {
	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	query, args := sqlite.Delete(missedTable).Query()
	if err := tx.Exec(ctx, query, args, nil); err != nil {
		return 0, fmt.Errorf("clear missed problems: %w", err)
	}

	var res entsql.Result
	query, args = sqlite.Delete(sessionsTable).Query()
	if err := tx.Exec(ctx, query, args, &res); err != nil {
		return 0, fmt.Errorf("clear sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}
