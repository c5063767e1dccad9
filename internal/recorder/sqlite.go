package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"CoinPilot/internal/model"
)

// SQLiteRecorder persists the order and cycle journal to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboard reads don't block the bot's writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			ref            TEXT,
			pair           TEXT,
			side           TEXT,
			volume         REAL,
			rounded_volume REAL,
			status         TEXT,
			txid           TEXT,
			reason         TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_ts ON orders(timestamp)`,

		`CREATE TABLE IF NOT EXISTS cycles (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			total_value    REAL,
			orders_placed  INTEGER,
			assets_skipped INTEGER,
			duration_ms    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_ts ON cycles(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordOrder(order *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO orders
		(timestamp, ref, pair, side, volume, rounded_volume, status, txid, reason)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), order.Ref, order.Pair, string(order.Side),
		order.Volume, order.RoundedVolume, string(order.Status),
		order.TxID, order.Reason,
	)
	return err
}

func (r *SQLiteRecorder) RecordCycle(evt *CycleEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO cycles
		(timestamp, total_value, orders_placed, assets_skipped, duration_ms)
		VALUES (?,?,?,?,?)`,
		time.Now().Unix(), evt.TotalValue, evt.OrdersPlaced,
		evt.AssetsSkipped, evt.Duration.Milliseconds(),
	)
	return err
}

// PurgeBefore removes journal rows older than the cutoff. Run daily by the
// engine's maintenance job.
func (r *SQLiteRecorder) PurgeBefore(cutoff time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := cutoff.Unix()
	if _, err := r.db.Exec(`DELETE FROM orders WHERE timestamp < ?`, ts); err != nil {
		return err
	}
	_, err := r.db.Exec(`DELETE FROM cycles WHERE timestamp < ?`, ts)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
