package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"vademecum/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS code_articles (
  rowId INTEGER PRIMARY KEY AUTOINCREMENT,
  id TEXT NOT NULL,
  tipo TEXT NOT NULL,
  nomeCodigo TEXT NOT NULL,
  cabecalho TEXT NOT NULL,
  hierarchyJson TEXT NOT NULL,
  numArtigo TEXT NOT NULL,
  normativo TEXT NOT NULL,
  ordem TEXT NOT NULL,
  updatedAt TEXT NOT NULL,
  createdAt TEXT NOT NULL,
  position INTEGER NOT NULL,
  raw_json TEXT NOT NULL,
  lastSeenAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_code_articles_nomeCodigo ON code_articles(nomeCodigo);
CREATE INDEX IF NOT EXISTS idx_code_articles_id ON code_articles(id);

CREATE TABLE IF NOT EXISTS sync_runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  kind TEXT NOT NULL,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// ReplaceAll swaps the whole snapshot for records, keeping their order.
func (d *DB) ReplaceAll(records []internal.CodeArticleRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM code_articles`); err != nil {
		return err
	}
	if err := insertArticles(tx, records); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceCode swaps the rows of one code (by nomeCodigo) for records.
func (d *DB) ReplaceCode(nomeCodigo string, records []internal.CodeArticleRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM code_articles WHERE nomeCodigo = ?`, nomeCodigo); err != nil {
		return err
	}
	if err := insertArticles(tx, records); err != nil {
		return err
	}
	return tx.Commit()
}

func insertArticles(tx *sql.Tx, records []internal.CodeArticleRecord) error {
	stmt, err := tx.Prepare(`
INSERT INTO code_articles (
  id, tipo, nomeCodigo, cabecalho, hierarchyJson,
  numArtigo, normativo, ordem, updatedAt, createdAt, position, raw_json
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		hierarchyJSON, _ := json.Marshal(r.Hierarchy)
		if _, err := stmt.Exec(
			r.ID, r.Tipo, r.NomeCodigo, r.Cabecalho, string(hierarchyJSON),
			r.NumArtigo, r.Normativo, r.Ordem, r.UpdatedAt, r.CreatedAt, r.Position, r.RawJSON,
		); err != nil {
			return err
		}
	}
	return nil
}

// ListArticles returns the snapshot in the order it was stored.
func (d *DB) ListArticles() ([]internal.CodeArticleRecord, error) {
	return d.queryArticles(`
SELECT id, tipo, nomeCodigo, cabecalho, hierarchyJson,
       numArtigo, normativo, ordem, updatedAt, createdAt, position, raw_json
FROM code_articles ORDER BY rowId ASC`)
}

func (d *DB) ListArticlesByCode(nomeCodigo string) ([]internal.CodeArticleRecord, error) {
	return d.queryArticles(`
SELECT id, tipo, nomeCodigo, cabecalho, hierarchyJson,
       numArtigo, normativo, ordem, updatedAt, createdAt, position, raw_json
FROM code_articles WHERE nomeCodigo = ? ORDER BY rowId ASC`, nomeCodigo)
}

func (d *DB) queryArticles(query string, args ...any) ([]internal.CodeArticleRecord, error) {
	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]internal.CodeArticleRecord, 0)
	for rows.Next() {
		var r internal.CodeArticleRecord
		var hierarchyJSON string
		if err := rows.Scan(
			&r.ID, &r.Tipo, &r.NomeCodigo, &r.Cabecalho, &hierarchyJSON,
			&r.NumArtigo, &r.Normativo, &r.Ordem, &r.UpdatedAt, &r.CreatedAt, &r.Position, &r.RawJSON,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(hierarchyJSON), &r.Hierarchy)
		out = append(out, r)
	}

	return out, rows.Err()
}

func (d *DB) InsertRun(run internal.SyncRun) error {
	timingsJSON, _ := json.Marshal(run.Timings)
	countsJSON, _ := json.Marshal(run.Counts)
	_, err := d.conn.Exec(`INSERT INTO sync_runs (traceId, kind, timingsJson, countsJson) VALUES (?, ?, ?, ?)`, run.TraceID, run.Kind, string(timingsJSON), string(countsJSON))
	return err
}

// LastRun returns the most recent run of kind, or nil when none was recorded.
func (d *DB) LastRun(kind string) (*internal.SyncRun, error) {
	var run internal.SyncRun
	var timingsJSON, countsJSON string
	err := d.conn.QueryRow(`
SELECT traceId, kind, timingsJson, countsJson FROM sync_runs
WHERE kind = ? ORDER BY id DESC LIMIT 1
`, kind).Scan(&run.TraceID, &run.Kind, &timingsJSON, &countsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(timingsJSON), &run.Timings)
	_ = json.Unmarshal([]byte(countsJSON), &run.Counts)
	return &run, nil
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
