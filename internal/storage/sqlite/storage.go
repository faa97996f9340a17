package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Jirawatp058/random-buddy/internal/model"
	"github.com/Jirawatp058/random-buddy/internal/storage"
)

// Values stored under system_config.state
const (
	stateRegistration = "REGISTRATION"
	stateMatched      = "MATCHED"
)

// timeLayout matches JavaScript's Date.toISOString, which earlier deployments wrote
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS system_config (key TEXT PRIMARY KEY, value TEXT)`,
	`CREATE TABLE IF NOT EXISTS users (name TEXT PRIMARY KEY, password TEXT, size TEXT, buddy TEXT, checked INTEGER DEFAULT 0)`,
	`CREATE TABLE IF NOT EXISTS exclusions (user1 TEXT, user2 TEXT, PRIMARY KEY (user1, user2))`,
	`INSERT OR IGNORE INTO system_config (key, value) VALUES ('state', 'REGISTRATION')`,
}

// migration adds a column to a table created by an older version
type migration struct {
	Table  string
	Column string
	Def    string
}

var migrations = []migration{
	{Table: "users", Column: "registered_at", Def: "TEXT NOT NULL DEFAULT ''"},
}

// Storage is a SQLite implementation of the storage interface. The tables
// (system_config, users, exclusions) match databases written by the first
// Node release, so such a file opens as-is. Exclusions are stored in both
// directions.
type Storage struct {
	db *sql.DB
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// New opens (or creates) the database at path and applies the schema
func New(ctx context.Context, path string) (*Storage, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serializes writers, which makes each transaction
	// below atomic against the others.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Storage{db: db}
	if err := s.initialize(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) initialize(ctx context.Context) error {
	for _, pragma := range []string{"PRAGMA busy_timeout = 5000", "PRAGMA journal_mode = WAL"} {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	for _, m := range migrations {
		exists, err := s.columnExists(ctx, m.Table, m.Column)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", m.Table, m.Column, m.Def)
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate %s.%s: %w", m.Table, m.Column, err)
		}
	}
	return nil
}

// columnExists checks if a column exists in a table using PRAGMA table_info
func (s *Storage) columnExists(ctx context.Context, table, column string) (bool, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notnull   int
			dfltValue any
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// inTx runs fn in a transaction, committing only if fn succeeds
func (s *Storage) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Storage) GetExchange(ctx context.Context) (*model.Exchange, error) {
	ex, err := readExchange(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return &ex, nil
}

// Participant operations

func (s *Storage) CreateParticipant(ctx context.Context, p *model.Participant) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		ex, err := readExchange(ctx, tx)
		if err != nil {
			return err
		}
		if !ex.IsOpen() {
			return model.ErrRegistrationClosed
		}

		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO users (name, password, size, buddy, checked, registered_at) VALUES (?, ?, ?, NULL, 0, ?)`,
			p.Name, p.Credential, p.Size, formatTime(p.RegisteredAt))
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return model.ErrDuplicateName
		}
		return nil
	})
}

func (s *Storage) GetParticipant(ctx context.Context, name string) (*model.Participant, error) {
	return readParticipant(ctx, s.db, name)
}

func (s *Storage) ListParticipants(ctx context.Context) ([]*model.Participant, error) {
	return readParticipants(ctx, s.db)
}

func (s *Storage) DeleteParticipant(ctx context.Context, name string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		ex, err := readExchange(ctx, tx)
		if err != nil {
			return err
		}
		if !ex.IsOpen() {
			return model.ErrAlreadyMatched
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE name = ?`, name)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return model.ErrParticipantNotFound
		}

		_, err = tx.ExecContext(ctx, `DELETE FROM exclusions WHERE user1 = ? OR user2 = ?`, name, name)
		return err
	})
}

func (s *Storage) MarkViewed(ctx context.Context, name string) (bool, error) {
	var first bool
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE users SET checked = 1 WHERE name = ? AND COALESCE(checked, 0) = 0`, name)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n > 0 {
			first = true
			return nil
		}
		var exists int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM users WHERE name = ?`, name).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return model.ErrParticipantNotFound
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return first, nil
}

// Exclusion operations

func (s *Storage) AddExclusion(ctx context.Context, pair model.ExclusionPair) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var n int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM users WHERE name IN (?, ?)`, pair.A, pair.B).Scan(&n)
		if err != nil {
			return err
		}
		want := 2
		if pair.A == pair.B {
			want = 1
		}
		if n < want {
			return model.ErrParticipantNotFound
		}
		if pair.A == pair.B {
			return nil
		}

		for _, args := range [][2]string{{pair.A, pair.B}, {pair.B, pair.A}} {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO exclusions (user1, user2) VALUES (?, ?)`, args[0], args[1]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Storage) RemoveExclusion(ctx context.Context, pair model.ExclusionPair) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM exclusions WHERE (user1 = ? AND user2 = ?) OR (user1 = ? AND user2 = ?)`,
		pair.A, pair.B, pair.B, pair.A)
	return err
}

func (s *Storage) ListExclusions(ctx context.Context) ([]model.ExclusionPair, error) {
	set, err := readExclusions(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return set.Pairs(), nil
}

// Lifecycle

func (s *Storage) CommitMatch(ctx context.Context, a model.Assignment, at time.Time) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		ex, err := readExchange(ctx, tx)
		if err != nil {
			return err
		}
		participants, err := readParticipants(ctx, tx)
		if err != nil {
			return err
		}
		exclusions, err := readExclusions(ctx, tx)
		if err != nil {
			return err
		}
		if err := model.CheckCommit(ex, a, model.ParticipantNames(participants), exclusions); err != nil {
			return err
		}

		for _, pair := range a.Pairs() {
			if _, err := tx.ExecContext(ctx,
				`UPDATE users SET buddy = ?, checked = 0 WHERE name = ?`, pair.Recipient, pair.Giver); err != nil {
				return err
			}
		}
		return writeState(ctx, tx, stateMatched, &at)
	})
}

func (s *Storage) Reset(ctx context.Context, policy model.ResetPolicy) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var stmts []string
		if policy == model.ResetPolicyKeepRoster {
			stmts = []string{`UPDATE users SET buddy = NULL, checked = 0`}
		} else {
			stmts = []string{`DELETE FROM users`, `DELETE FROM exclusions`}
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return writeState(ctx, tx, stateRegistration, nil)
	})
}

// Helpers

func writeState(ctx context.Context, tx *sql.Tx, state string, matchedAt *time.Time) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO system_config (key, value) VALUES ('state', ?)`, state); err != nil {
		return err
	}
	if matchedAt == nil {
		_, err := tx.ExecContext(ctx, `DELETE FROM system_config WHERE key = 'matched_at'`)
		return err
	}
	_, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO system_config (key, value) VALUES ('matched_at', ?)`, formatTime(*matchedAt))
	return err
}

func readExchange(ctx context.Context, q queryer) (model.Exchange, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT key, value FROM system_config WHERE key IN ('state', 'matched_at')`)
	if err != nil {
		return model.Exchange{}, err
	}
	defer rows.Close()

	ex := model.NewExchange()
	for rows.Next() {
		var key string
		var value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return model.Exchange{}, err
		}
		switch key {
		case "state":
			if value.String == stateMatched {
				ex.State = model.ExchangeStateClosed
			}
		case "matched_at":
			if t, err := parseTime(value.String); err == nil && !t.IsZero() {
				ex.MatchedAt = &t
			}
		}
	}
	if err := rows.Err(); err != nil {
		return model.Exchange{}, err
	}
	if ex.IsOpen() {
		ex.MatchedAt = nil
	}
	return ex, nil
}

const participantColumns = `name, password, size, buddy, checked, registered_at`

func scanParticipant(scan func(dest ...any) error) (*model.Participant, error) {
	var (
		p            model.Participant
		credential   sql.NullString
		size         sql.NullString
		buddy        sql.NullString
		checked      sql.NullInt64
		registeredAt sql.NullString
	)
	if err := scan(&p.Name, &credential, &size, &buddy, &checked, &registeredAt); err != nil {
		return nil, err
	}
	p.Credential = credential.String
	p.Size = size.String
	p.Recipient = buddy.String
	p.Viewed = checked.Int64 != 0
	t, err := parseTime(registeredAt.String)
	if err != nil {
		return nil, fmt.Errorf("participant %q: %w", p.Name, err)
	}
	p.RegisteredAt = t
	return &p, nil
}

func readParticipant(ctx context.Context, q queryer, name string) (*model.Participant, error) {
	row := q.QueryRowContext(ctx, `SELECT `+participantColumns+` FROM users WHERE name = ?`, name)
	p, err := scanParticipant(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrParticipantNotFound
	}
	return p, err
}

func readParticipants(ctx context.Context, q queryer) ([]*model.Participant, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+participantColumns+` FROM users`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := []*model.Participant{}
	for rows.Next() {
		p, err := scanParticipant(rows.Scan)
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	model.SortParticipants(participants)
	return participants, nil
}

// readExclusions returns exclusions between registered participants only
func readExclusions(ctx context.Context, q queryer) (model.ExclusionSet, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT e.user1, e.user2 FROM exclusions e
		JOIN users a ON a.name = e.user1
		JOIN users b ON b.name = e.user2`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := model.NewExclusionSet()
	for rows.Next() {
		var a, b string
		if err := rows.Scan(&a, &b); err != nil {
			return nil, err
		}
		set.Add(a, b)
	}
	return set, rows.Err()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
