package catalog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS cards (
    card_key      TEXT PRIMARY KEY,
    file_path     TEXT NOT NULL,
    name          TEXT NOT NULL DEFAULT '',
    summary       TEXT NOT NULL DEFAULT '',
    has_meta      INTEGER NOT NULL DEFAULT 0,
    mtime         INTEGER NOT NULL DEFAULT 0,
    size          INTEGER NOT NULL DEFAULT 0,
    converted_at  TEXT NOT NULL DEFAULT '',
    lorebook_path TEXT NOT NULL DEFAULT '',
    profile_path  TEXT NOT NULL DEFAULT '',
    trigger_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);
`

type DB struct {
	db *sql.DB
}

func OpenDB(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	d := &DB{db: db}
	d.migrateSchemaVersion()
	return d, nil
}

// schemaVersion should be bumped whenever card inspection logic changes
// to force a full rescan.
const schemaVersion = "1"

func (d *DB) migrateSchemaVersion() {
	var ver string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&ver)
	if err != nil || ver != schemaVersion {
		// force a rescan by resetting all card mtime/size to 0
		d.db.Exec("UPDATE cards SET mtime = 0, size = 0")
		d.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion)
	}
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

type CardInfo struct {
	Mtime int64
	Size  int64
}

func (d *DB) GetCardInfo(cardKey string) (*CardInfo, error) {
	var info CardInfo
	err := d.db.QueryRow(
		"SELECT mtime, size FROM cards WHERE card_key = ?",
		cardKey,
	).Scan(&info.Mtime, &info.Size)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (d *DB) AllCardKeys() (map[string]struct{}, error) {
	rows, err := d.db.Query("SELECT card_key FROM cards")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys[k] = struct{}{}
	}
	return keys, rows.Err()
}

func (d *DB) DeleteCard(cardKey string) error {
	_, err := d.db.Exec("DELETE FROM cards WHERE card_key = ?", cardKey)
	return err
}

func (d *DB) CardCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM cards").Scan(&n)
	return n, err
}

func (d *DB) ConvertedCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM cards WHERE converted_at != ''").Scan(&n)
	return n, err
}

type CardRow struct {
	CardKey      string
	FilePath     string
	Name         string
	Summary      string
	HasMeta      bool
	Mtime        int64
	Size         int64
	ConvertedAt  string
	LorebookPath string
	ProfilePath  string
	TriggerCount int
}

const cardColumns = `card_key, file_path, name, summary, has_meta, mtime, size,
	converted_at, lorebook_path, profile_path, trigger_count`

func scanCard(row interface{ Scan(...any) error }) (CardRow, error) {
	var c CardRow
	err := row.Scan(
		&c.CardKey, &c.FilePath, &c.Name, &c.Summary, &c.HasMeta,
		&c.Mtime, &c.Size, &c.ConvertedAt, &c.LorebookPath,
		&c.ProfilePath, &c.TriggerCount,
	)
	return c, err
}

func (d *DB) GetCardByKey(cardKey string) (*CardRow, error) {
	c, err := scanCard(d.db.QueryRow(
		"SELECT "+cardColumns+" FROM cards WHERE card_key = ?", cardKey,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCards returns cards sorted by name then key, optionally filtered by a
// case-insensitive substring match on name, key or summary.
func (d *DB) ListCards(filter string, limit int) ([]CardRow, error) {
	query := "SELECT " + cardColumns + " FROM cards"
	var args []any
	if filter != "" {
		query += " WHERE card_key LIKE ? OR name LIKE ? OR summary LIKE ?"
		pat := "%" + filter + "%"
		args = append(args, pat, pat, pat)
	}
	query += " ORDER BY name, card_key"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []CardRow
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// UpsertCard records a card's scan state, preserving conversion artifacts
// recorded earlier for the same key.
func (d *DB) UpsertCard(c CardRow) error {
	_, err := d.db.Exec(`
		INSERT INTO cards (card_key, file_path, name, summary, has_meta, mtime, size)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(card_key) DO UPDATE SET
			file_path = excluded.file_path,
			name = excluded.name,
			summary = excluded.summary,
			has_meta = excluded.has_meta,
			mtime = excluded.mtime,
			size = excluded.size`,
		c.CardKey, c.FilePath, c.Name, c.Summary, c.HasMeta, c.Mtime, c.Size,
	)
	return err
}

// MarkConverted records the artifacts produced by a conversion.
func (d *DB) MarkConverted(cardKey, lorebookPath, profilePath string, triggerCount int, at string) error {
	_, err := d.db.Exec(`
		UPDATE cards SET converted_at = ?, lorebook_path = ?, profile_path = ?, trigger_count = ?
		WHERE card_key = ?`,
		at, lorebookPath, profilePath, triggerCount, cardKey,
	)
	return err
}
