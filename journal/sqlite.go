package journal

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rustyeddy/fxplan/pkg/id"
)

// SQLiteStore keeps the journal in a SQLite table. Each Save replaces the
// table contents inside one transaction.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, pair, direction, entry, exit, stop_loss, take_profit,
		       lot_size, pl_pips, pl_usd, outcome, reason, review
		FROM journal ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r                  Record
			date, dir, outcome string
		)
		if err := rows.Scan(&r.ID, &date, &r.Pair, &dir, &r.Entry, &r.Exit, &r.StopLoss,
			&r.TakeProfit, &r.LotSize, &r.PLPips, &r.PLUSD, &outcome, &r.Reason, &r.Review); err != nil {
			return nil, err
		}
		if !id.Valid(r.ID) {
			return nil, fmt.Errorf("record %q: malformed id", r.ID)
		}
		if r.Date, err = parseDate(date); err != nil {
			return nil, fmt.Errorf("record %s: %w", r.ID, err)
		}
		if err := r.Direction.UnmarshalText([]byte(dir)); err != nil {
			return nil, fmt.Errorf("record %s: %w", r.ID, err)
		}
		if r.Outcome, err = ParseOutcome(outcome); err != nil {
			return nil, fmt.Errorf("record %s: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Save(ctx context.Context, records []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM journal`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO journal
		(id, seq, date, pair, direction, entry, exit, stop_loss, take_profit,
		 lot_size, pl_pips, pl_usd, outcome, reason, review)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range records {
		date := ""
		if !r.Date.IsZero() {
			date = r.Date.Format(DateLayout)
		}
		if _, err := stmt.ExecContext(ctx,
			r.ID, i, date, r.Pair, r.Direction.String(), r.Entry, r.Exit, r.StopLoss,
			r.TakeProfit, r.LotSize, r.PLPips, r.PLUSD, r.Outcome.String(), r.Reason, r.Review,
		); err != nil {
			return fmt.Errorf("insert %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// Count returns the number of stored records.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM journal`).Scan(&n)
	return n, err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
