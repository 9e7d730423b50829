package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/devpolicy/internal/settings"
)

// ErrUnknownSetting is returned for keys that are not policy settings.
var ErrUnknownSetting = errors.New("unknown setting")

// ErrNotSet is returned by GetSetting for a known key that has never been
// written.
var ErrNotSet = errors.New("setting not set")

// Sources recorded in settings_history.
const (
	SourceDefault = "default"
	SourceCLI     = "cli"
	SourceHTTP    = "http"
)

// Setting is the stored value of one key.
type Setting struct {
	Key   settings.Key `json:"key"`
	Value bool         `json:"value"`
	Seq   int64        `json:"seq"`
}

// HistoryEntry is one row of settings_history.
type HistoryEntry struct {
	Seq    int64        `json:"seq"`
	Key    settings.Key `json:"key"`
	Value  bool         `json:"value"`
	Source string       `json:"source"`
}

// SetSetting writes value under key and appends a history row, both in one
// transaction. The cache is updated only after commit, and writes are
// serialized so it always ends up holding the last committed value.
//
// Returns ErrUnknownSetting if key is not a policy setting.
func (s *Store) SetSetting(ctx context.Context, key settings.Key, value bool, source string) (int64, error) {
	if _, ok := settings.ParseKey(string(key)); !ok {
		return 0, fmt.Errorf("set setting %q: %w", key, ErrUnknownSetting)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("set setting: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	seq, err := nextSeq(ctx, tx)
	if err != nil {
		return 0, fmt.Errorf("set setting: %w", err)
	}

	if err := writeSetting(ctx, tx, key, value, source, seq); err != nil {
		return 0, fmt.Errorf("set setting: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("set setting: commit: %w", err)
	}

	s.cache.Set(key, value)
	if s.onWrite != nil {
		s.onWrite(key, value)
	}
	return seq, nil
}

// SeedDefaults writes each value whose key has no stored row yet. Keys that
// were already written are left alone. Returns the keys that were seeded.
func (s *Store) SeedDefaults(ctx context.Context, values settings.Values) ([]settings.Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("seed defaults: begin tx: %w", err)
	}
	defer tx.Rollback()

	var seeded []settings.Key
	for _, key := range values.SortedKeys() {
		if _, ok := settings.ParseKey(string(key)); !ok {
			return nil, fmt.Errorf("seed defaults %q: %w", key, ErrUnknownSetting)
		}

		var exists int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM settings WHERE key = ?`, string(key)).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("seed defaults: %w", err)
		}
		if exists > 0 {
			continue
		}

		seq, err := nextSeq(ctx, tx)
		if err != nil {
			return nil, fmt.Errorf("seed defaults: %w", err)
		}
		if err := writeSetting(ctx, tx, key, values[key], SourceDefault, seq); err != nil {
			return nil, fmt.Errorf("seed defaults: %w", err)
		}
		seeded = append(seeded, key)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("seed defaults: commit: %w", err)
	}

	for _, key := range seeded {
		s.cache.Set(key, values[key])
	}
	return seeded, nil
}

// GetSetting reads the stored row for key.
func (s *Store) GetSetting(ctx context.Context, key settings.Key) (Setting, error) {
	if _, ok := settings.ParseKey(string(key)); !ok {
		return Setting{}, fmt.Errorf("get setting %q: %w", key, ErrUnknownSetting)
	}

	var (
		value int
		seq   int64
	)
	err := s.db.QueryRowContext(ctx, `SELECT value, seq FROM settings WHERE key = ?`, string(key)).Scan(&value, &seq)
	if errors.Is(err, sql.ErrNoRows) {
		return Setting{}, fmt.Errorf("get setting %q: %w", key, ErrNotSet)
	}
	if err != nil {
		return Setting{}, fmt.Errorf("get setting %q: %w", key, err)
	}
	return Setting{Key: key, Value: value == 1, Seq: seq}, nil
}

// ListSettings returns every stored setting ordered by key.
func (s *Store) ListSettings(ctx context.Context) ([]Setting, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, value, seq FROM settings
		ORDER BY key ASC COLLATE BINARY
	`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var out []Setting
	for rows.Next() {
		var (
			key   string
			value int
			seq   int64
		)
		if err := rows.Scan(&key, &value, &seq); err != nil {
			return nil, fmt.Errorf("list settings: scan: %w", err)
		}
		out = append(out, Setting{Key: settings.Key(key), Value: value == 1, Seq: seq})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return out, nil
}

// History returns up to limit history rows ordered by seq ascending.
// A limit <= 0 returns every row.
func (s *Store) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	query := `SELECT seq, key, value, source FROM settings_history ORDER BY seq ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var (
			e     HistoryEntry
			key   string
			value int
		)
		if err := rows.Scan(&e.Seq, &key, &value, &e.Source); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		e.Key = settings.Key(key)
		e.Value = value == 1
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return out, nil
}

// loadCache copies every stored setting into the cache.
func (s *Store) loadCache(ctx context.Context) error {
	stored, err := s.ListSettings(ctx)
	if err != nil {
		return err
	}
	for _, st := range stored {
		s.cache.Set(st.Key, st.Value)
	}
	return nil
}

// nextSeq returns the next logical sequence number for a write.
func nextSeq(ctx context.Context, tx *sql.Tx) (int64, error) {
	var seq int64
	err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM settings_history`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next seq: %w", err)
	}
	return seq, nil
}

func writeSetting(ctx context.Context, tx *sql.Tx, key settings.Key, value bool, source string, seq int64) error {
	v := boolToInt(value)

	_, err := tx.ExecContext(ctx, `
		INSERT INTO settings (key, value, seq) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, seq = excluded.seq
	`, string(key), v, seq)
	if err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO settings_history (seq, key, value, source) VALUES (?, ?, ?, ?)
	`, seq, string(key), v, source)
	if err != nil {
		return fmt.Errorf("write history %q: %w", key, err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
