package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/calvinwijaya/casino-night/internal/game"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

const queryTimeout = 3 * time.Second

// Database is the round-history ledger. It lives in process memory and is
// gone when the process exits.
type Database struct {
	db  *sql.DB
	log zerolog.Logger
}

// RoundResult is one settled round.
type RoundResult struct {
	SessionID    string       `json:"sessionId"`
	RoundID      string       `json:"roundId"`
	Wager        int          `json:"wager"`
	Outcome      game.Outcome `json:"outcome"`
	Result       game.Result  `json:"result"`
	Winnings     int          `json:"winnings"`
	PlayerPoints int          `json:"playerPoints"`
	DealerPoints int          `json:"dealerPoints"`
	BalanceAfter int          `json:"balanceAfter"`
	CreatedAt    time.Time    `json:"createdAt"`
}

type SessionStats struct {
	SessionID     string     `json:"sessionId"`
	RoundsPlayed  int        `json:"roundsPlayed"`
	RoundsWon     int        `json:"roundsWon"`
	Blackjacks    int        `json:"blackjacks"`
	RoundsPushed  int        `json:"roundsPushed"`
	RoundsLost    int        `json:"roundsLost"`
	TotalWagered  int        `json:"totalWagered"`
	TotalWinnings int        `json:"totalWinnings"`
	Net           int        `json:"net"`
	LastPlayed    *time.Time `json:"lastPlayed,omitempty"`
}

// NewDatabase opens an in-memory SQLite database and creates its tables
func NewDatabase(log zerolog.Logger) (*Database, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Every connection to :memory: is a separate database, so keep exactly one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	if err := initTables(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Database{db: db, log: log.With().Str("component", "history").Logger()}, nil
}

// initTables creates the necessary tables if they don't exist
func initTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS round_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			round_id TEXT NOT NULL UNIQUE,
			wager INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			result TEXT NOT NULL,
			winnings INTEGER NOT NULL,
			player_points INTEGER NOT NULL,
			dealer_points INTEGER NOT NULL,
			balance_after INTEGER NOT NULL,
			created_at_ms INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("error creating round_results table: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_round_results_session
		ON round_results (session_id, created_at_ms)
	`)
	if err != nil {
		return fmt.Errorf("error creating round_results index: %w", err)
	}

	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// SaveRoundResult records a settled round
func (d *Database) SaveRoundResult(ctx context.Context, r RoundResult) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO round_results (
			session_id, round_id, wager, outcome, result, winnings,
			player_points, dealer_points, balance_after, created_at_ms
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.SessionID, r.RoundID, r.Wager, string(r.Outcome), string(r.Result), r.Winnings,
		r.PlayerPoints, r.DealerPoints, r.BalanceAfter, r.CreatedAt.UnixMilli())
	if err != nil {
		d.log.Error().Err(err).Str("session_id", r.SessionID).Str("round_id", r.RoundID).Msg("save round result failed")
		return fmt.Errorf("error saving round result: %w", err)
	}

	d.log.Debug().Str("session_id", r.SessionID).Str("round_id", r.RoundID).Str("result", string(r.Result)).Msg("round result saved")
	return nil
}

// GetSessionHistory returns up to limit rounds of a session, newest first
func (d *Database) GetSessionHistory(ctx context.Context, sessionID string, limit int) ([]RoundResult, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT session_id, round_id, wager, outcome, result, winnings,
		       player_points, dealer_points, balance_after, created_at_ms
		FROM round_results
		WHERE session_id = ?
		ORDER BY created_at_ms DESC, id DESC
		LIMIT ?
	`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying round history: %w", err)
	}
	defer rows.Close()

	results := []RoundResult{}
	for rows.Next() {
		var (
			r         RoundResult
			outcome   string
			result    string
			createdAt int64
		)
		if err := rows.Scan(
			&r.SessionID, &r.RoundID, &r.Wager, &outcome, &result, &r.Winnings,
			&r.PlayerPoints, &r.DealerPoints, &r.BalanceAfter, &createdAt,
		); err != nil {
			return nil, err
		}
		r.Outcome = game.Outcome(outcome)
		r.Result = game.Result(result)
		r.CreatedAt = time.UnixMilli(createdAt)
		results = append(results, r)
	}

	return results, rows.Err()
}

// GetSessionStats aggregates a session's recorded rounds
func (d *Database) GetSessionStats(ctx context.Context, sessionID string) (*SessionStats, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	stats := SessionStats{SessionID: sessionID}
	var lastPlayed sql.NullInt64

	err := d.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN result IN (?, ?) THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN result = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN result = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN result = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(wager), 0),
			COALESCE(SUM(winnings), 0),
			MAX(created_at_ms)
		FROM round_results
		WHERE session_id = ?
	`,
		string(game.ResultWin), string(game.ResultBlackjack),
		string(game.ResultBlackjack),
		string(game.ResultPush),
		string(game.ResultLose),
		sessionID,
	).Scan(
		&stats.RoundsPlayed,
		&stats.RoundsWon,
		&stats.Blackjacks,
		&stats.RoundsPushed,
		&stats.RoundsLost,
		&stats.TotalWagered,
		&stats.TotalWinnings,
		&lastPlayed,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying session stats: %w", err)
	}

	stats.Net = stats.TotalWinnings - stats.TotalWagered
	if lastPlayed.Valid {
		t := time.UnixMilli(lastPlayed.Int64)
		stats.LastPlayed = &t
	}

	return &stats, nil
}
