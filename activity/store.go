package activity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/gommon/log"
	_ "modernc.org/sqlite"
)

// latestLimit is how many recent entries a Summary carries.
const latestLimit = 10

// Store persists activity entries in SQLite.
type Store struct {
	db  *sql.DB
	log *log.Logger
}

// NewStore opens (or creates) the activity database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open activity db: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	s := &Store{db: db, log: log.New("activity")}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS activity (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			action TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			actor_hash TEXT NOT NULL DEFAULT '',
			at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_activity_at ON activity(at);
		CREATE INDEX IF NOT EXISTS idx_activity_kind ON activity(kind);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

// currentSchemaVersion is the latest schema version. Increment when adding migrations.
const currentSchemaVersion = 1

func (s *Store) migrate() error {
	verStr, err := s.GetSetting("schema_version")
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	version := 0
	if verStr != "" {
		version, err = strconv.Atoi(verStr)
		if err != nil {
			return fmt.Errorf("parse schema version %q: %w", verStr, err)
		}
	}
	if version < currentSchemaVersion {
		version = currentSchemaVersion
	}
	return s.SetSetting("schema_version", strconv.Itoa(version))
}

// GetSetting returns a setting value, or "" if it is not set.
func (s *Store) GetSetting(key string) (string, error) {
	var val string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return val, err
}

// SetSetting upserts a setting value.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// Record stores one entry. A zero At is stamped with the current time.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO activity (kind, entity_id, action, name, actor_hash, at) VALUES (?, ?, ?, ?, ?, ?)`,
		string(e.Kind), e.EntityID, string(e.Action), e.Name, e.ActorHash, e.At.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

// Latest returns up to limit of the newest entries.
func (s *Store) Latest(ctx context.Context, limit int) ([]Entry, error) {
	return s.latest(ctx, time.Unix(0, 0), time.Now().Add(time.Hour), limit)
}

func (s *Store) latest(ctx context.Context, from, to time.Time, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, entity_id, action, name, actor_hash, at FROM activity
		 WHERE at >= ? AND at < ? ORDER BY at DESC, id DESC LIMIT ?`,
		from.UTC().UnixMilli(), to.UTC().UnixMilli(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var (
			e            Entry
			kind, action string
			at           int64
		)
		if err := rows.Scan(&e.ID, &kind, &e.EntityID, &action, &e.Name, &e.ActorHash, &at); err != nil {
			return nil, err
		}
		e.Kind = Kind(kind)
		e.Action = Action(action)
		e.At = time.UnixMilli(at).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) counts(ctx context.Context, query string, from, to time.Time) ([]CountStat, error) {
	rows, err := s.db.QueryContext(ctx, query, from.UTC().UnixMilli(), to.UTC().UnixMilli())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []CountStat{}
	for rows.Next() {
		var c CountStat
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Summary aggregates the entries in [from, to). The queries run
// concurrently; the first failure is returned.
func (s *Store) Summary(ctx context.Context, from, to time.Time) (*Summary, error) {
	sum := &Summary{
		Period:   from.Format("2006-01-02") + " to " + to.Format("2006-01-02"),
		ByKind:   []CountStat{},
		ByAction: []CountStat{},
		Daily:    []CountStat{},
		Latest:   []Entry{},
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	var firstErr error

	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	// Total
	wg.Add(1)
	go func() {
		defer wg.Done()
		var n int
		err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM activity WHERE at >= ? AND at < ?`,
			from.UTC().UnixMilli(), to.UTC().UnixMilli()).Scan(&n)
		if err != nil {
			setErr(fmt.Errorf("count activity: %w", err))
			return
		}
		mu.Lock()
		sum.Total = n
		mu.Unlock()
	}()

	// Per kind
	wg.Add(1)
	go func() {
		defer wg.Done()
		rows, err := s.counts(ctx, `SELECT kind, COUNT(*) AS n FROM activity
			WHERE at >= ? AND at < ? GROUP BY kind ORDER BY n DESC, kind`, from, to)
		if err != nil {
			setErr(fmt.Errorf("count by kind: %w", err))
			return
		}
		mu.Lock()
		sum.ByKind = rows
		mu.Unlock()
	}()

	// Per action
	wg.Add(1)
	go func() {
		defer wg.Done()
		rows, err := s.counts(ctx, `SELECT action, COUNT(*) AS n FROM activity
			WHERE at >= ? AND at < ? GROUP BY action ORDER BY n DESC, action`, from, to)
		if err != nil {
			setErr(fmt.Errorf("count by action: %w", err))
			return
		}
		mu.Lock()
		sum.ByAction = rows
		mu.Unlock()
	}()

	// Per day
	wg.Add(1)
	go func() {
		defer wg.Done()
		rows, err := s.counts(ctx, `SELECT strftime('%Y-%m-%d', at / 1000, 'unixepoch') AS day, COUNT(*)
			FROM activity WHERE at >= ? AND at < ? GROUP BY day ORDER BY day`, from, to)
		if err != nil {
			setErr(fmt.Errorf("daily activity: %w", err))
			return
		}
		mu.Lock()
		sum.Daily = rows
		mu.Unlock()
	}()

	// Latest entries
	wg.Add(1)
	go func() {
		defer wg.Done()
		rows, err := s.latest(ctx, from, to, latestLimit)
		if err != nil {
			setErr(fmt.Errorf("latest activity: %w", err))
			return
		}
		mu.Lock()
		sum.Latest = rows
		mu.Unlock()
	}()

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return sum, nil
}

// CleanupOld removes entries older than the retention period.
func (s *Store) CleanupOld(retentionDays int) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	if _, err := s.db.Exec(`DELETE FROM activity WHERE at < ?`, cutoff.UnixMilli()); err != nil {
		return fmt.Errorf("cleanup activity: %w", err)
	}
	return nil
}

// StartCleanupScheduler runs CleanupOld every interval. Returns a stop function.
func (s *Store) StartCleanupScheduler(retentionDays int, interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := s.CleanupOld(retentionDays); err != nil {
					s.log.Errorf("cleanup error: %v", err)
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { close(done) }
}
