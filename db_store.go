package main

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationFS embed.FS

type DBDialect string

const (
	dialectSQLite   DBDialect = "sqlite"
	dialectPostgres DBDialect = "postgres"
)

// SQLRepository persists games as a setup header plus an ordered action log.
// States are never stored; a game is rebuilt by replaying its log, so the
// database can never disagree with the engine.
type SQLRepository struct {
	dialect DBDialect
	db      *sql.DB
}

func newConfiguredStore() (*Store, error) {
	store := newStore()
	repo, err := openRepositoryFromEnv()
	if err != nil {
		return nil, err
	}
	if repo == nil {
		return store, nil
	}
	store.repo = repo
	if err := repo.LoadInto(context.Background(), store); err != nil {
		return nil, err
	}
	return store, nil
}

func openRepositoryFromEnv() (*SQLRepository, error) {
	dialectRaw := strings.TrimSpace(strings.ToLower(os.Getenv("DB_DIALECT")))
	if dialectRaw == "" {
		dialectRaw = string(dialectSQLite)
	}
	dialect := DBDialect(dialectRaw)

	var driverName string
	var dsn string
	switch dialect {
	case dialectSQLite:
		driverName = "sqlite"
		path := strings.TrimSpace(os.Getenv("DB_SQLITE_PATH"))
		if path == "" {
			path = filepath.Join("tmp", "bazaar.sqlite")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
		dsn = path
	case dialectPostgres:
		driverName = "pgx"
		dsn = strings.TrimSpace(os.Getenv("DB_POSTGRES_DSN"))
		if dsn == "" {
			dsn = strings.TrimSpace(os.Getenv("DATABASE_URL"))
		}
		if dsn == "" {
			return nil, errors.New("DB_DIALECT=postgres requires DB_POSTGRES_DSN or DATABASE_URL")
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DIALECT %q", dialectRaw)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", dialect, err)
	}

	repo := &SQLRepository{dialect: dialect, db: db}
	if err := repo.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Printf("database: dialect=%s", dialect)
	return repo, nil
}

func (r *SQLRepository) bind(pos int) string {
	if r.dialect == dialectPostgres {
		return fmt.Sprintf("$%d", pos)
	}
	return "?"
}

func (r *SQLRepository) insertQuery(table string, cols []string) string {
	ph := make([]string, len(cols))
	for i := range cols {
		ph[i] = r.bind(i + 1)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(cols, ", "),
		strings.Join(ph, ", "),
	)
}

func (r *SQLRepository) applyMigrations(ctx context.Context) error {
	create := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL
		)
	`
	if _, err := r.db.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied := map[string]bool{}
	rows, err := r.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("read schema_migrations: %w", err)
	}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return fmt.Errorf("scan schema migration: %w", err)
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate schema migrations: %w", err)
	}
	rows.Close()

	pattern := fmt.Sprintf("migrations/%s/*.sql", r.dialect)
	files, err := fs.Glob(migrationFS, pattern)
	if err != nil {
		return fmt.Errorf("glob migrations: %w", err)
	}
	sort.Strings(files)
	for _, file := range files {
		base := filepath.Base(file)
		if applied[base] {
			continue
		}
		sqlBytes, err := migrationFS.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration tx %s: %w", file, err)
		}
		if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
		q := r.insertQuery("schema_migrations", []string{"version", "applied_at"})
		if _, err := tx.ExecContext(ctx, q, base, time.Now().UTC()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", file, err)
		}
	}
	return nil
}

// persistGameLocked saves one game's header and log. Caller holds store.mu.
func (store *Store) persistGameLocked(entry *gameEntry) {
	if store.repo == nil {
		return
	}
	if err := store.repo.SaveGame(context.Background(), entry); err != nil {
		log.Printf("persist game %s failed: %v", entry.ID, err)
	}
}

func (r *SQLRepository) SaveGame(ctx context.Context, entry *gameEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	if err := r.saveGameWithTx(ctx, tx, entry); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save tx: %w", err)
	}
	return nil
}

func (r *SQLRepository) saveGameWithTx(ctx context.Context, tx *sql.Tx, entry *gameEntry) error {
	for _, tbl := range []string{"game_actions", "games"} {
		q := fmt.Sprintf("DELETE FROM %s WHERE game_id = %s", tbl, r.bind(1))
		if _, err := tx.ExecContext(ctx, q, entry.ID); err != nil {
			return fmt.Errorf("clear %s: %w", tbl, err)
		}
	}

	now := time.Now().UTC()
	if err := r.insertRow(ctx, tx, "games",
		[]string{"game_id", "completed", "setup", "created_at", "updated_at"},
		[]any{entry.ID, entry.Game.Completed, asJSON(entry.Setup), entry.CreatedAt, now},
	); err != nil {
		return err
	}
	for i, a := range entry.Actions {
		if err := r.insertRow(ctx, tx, "game_actions",
			[]string{"game_id", "idx", "payload", "created_at"},
			[]any{entry.ID, i, asJSON(a), now},
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLRepository) insertRow(ctx context.Context, tx *sql.Tx, table string, cols []string, vals []any) error {
	q := r.insertQuery(table, cols)
	if _, err := tx.ExecContext(ctx, q, vals...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

func asJSON(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

// LoadInto rebuilds every stored game by replaying its action log.
func (r *SQLRepository) LoadInto(ctx context.Context, store *Store) error {
	type header struct {
		id        string
		setupJSON string
		createdAt time.Time
	}
	var headers []header
	rows, err := r.db.QueryContext(ctx, "SELECT game_id, setup, created_at FROM games")
	if err != nil {
		return fmt.Errorf("load games: %w", err)
	}
	for rows.Next() {
		var h header
		if err := rows.Scan(&h.id, &h.setupJSON, &h.createdAt); err != nil {
			rows.Close()
			return fmt.Errorf("scan game: %w", err)
		}
		headers = append(headers, h)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate games: %w", err)
	}
	rows.Close()

	for _, h := range headers {
		var setup setupFile
		if err := json.Unmarshal([]byte(h.setupJSON), &setup); err != nil {
			return fmt.Errorf("decode setup for game %s: %w", h.id, err)
		}
		actions, err := r.loadActions(ctx, h.id)
		if err != nil {
			return err
		}
		game, err := RunReplay(Replay{Setup: setup, Actions: actions})
		if err != nil {
			return fmt.Errorf("rebuild game %s: %w", h.id, err)
		}
		store.games[h.id] = &gameEntry{
			ID:        h.id,
			CreatedAt: h.createdAt,
			Setup:     setup,
			Actions:   actions,
			Game:      game,
			feeds:     map[*websocket.Conn]bool{},
		}
	}
	return nil
}

func (r *SQLRepository) loadActions(ctx context.Context, gameID string) ([]Action, error) {
	q := fmt.Sprintf("SELECT payload FROM game_actions WHERE game_id = %s ORDER BY idx", r.bind(1))
	rows, err := r.db.QueryContext(ctx, q, gameID)
	if err != nil {
		return nil, fmt.Errorf("load actions for game %s: %w", gameID, err)
	}
	defer rows.Close()
	var actions []Action
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan action for game %s: %w", gameID, err)
		}
		var a Action
		if err := json.Unmarshal([]byte(payload), &a); err != nil {
			return nil, fmt.Errorf("decode action for game %s: %w", gameID, err)
		}
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actions for game %s: %w", gameID, err)
	}
	return actions, nil
}
