package repos

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	applog "servicehub/internal/log"
)

//go:embed seed.yaml
var seedYAML []byte

// HashCost is the bcrypt cost used for every stored password.
var HashCost = bcrypt.DefaultCost

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection: sqlite serialises writers anyway and ":memory:" is
	// per-connection.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	if err := seedIfEmpty(db); err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Users & Sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  full_name TEXT NOT NULL,
  phone TEXT,
  avatar_url TEXT,
  role TEXT NOT NULL CHECK (role IN ('admin','provider','client')),
  is_approved INTEGER NOT NULL DEFAULT 0,
  bio TEXT,
  location TEXT,
  website TEXT,
  password_hash TEXT NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));
CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id TEXT NULL REFERENCES users(id) ON DELETE CASCADE,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Catalog
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  icon TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_nocase ON categories(LOWER(name));

CREATE TABLE IF NOT EXISTS services(
  id TEXT PRIMARY KEY,
  provider_id TEXT NOT NULL,
  category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price REAL NOT NULL CHECK (price > 0),
  duration INTEGER NOT NULL CHECK (duration > 0),
  image_url TEXT NOT NULL DEFAULT '/static/service.svg',
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_services_provider ON services(provider_id);
CREATE INDEX IF NOT EXISTS idx_services_category ON services(category_id);

-- Appointments (kept when users or services go away)
CREATE TABLE IF NOT EXISTS appointments(
  id TEXT PRIMARY KEY,
  client_id TEXT NOT NULL,
  provider_id TEXT NOT NULL,
  service_id TEXT NOT NULL,
  appointment_date TEXT NOT NULL,
  status TEXT NOT NULL CHECK (status IN ('pending','confirmed','completed','cancelled')),
  notes TEXT NOT NULL DEFAULT '',
  total_amount REAL NOT NULL,
  commission_amount REAL NOT NULL,
  promo_code TEXT NOT NULL DEFAULT '',
  payment_status TEXT NOT NULL DEFAULT 'unpaid' CHECK (payment_status IN ('unpaid','paid','refunded')),
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_appointments_client   ON appointments(client_id);
CREATE INDEX IF NOT EXISTS idx_appointments_provider ON appointments(provider_id);
CREATE INDEX IF NOT EXISTS idx_appointments_date     ON appointments(appointment_date);

CREATE TABLE IF NOT EXISTS reviews(
  id TEXT PRIMARY KEY,
  client_id TEXT NOT NULL,
  provider_id TEXT NOT NULL,
  service_id TEXT NOT NULL,
  appointment_id TEXT NOT NULL UNIQUE,
  rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
  comment TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reviews_provider ON reviews(provider_id);

CREATE TABLE IF NOT EXISTS refunds(
  id TEXT PRIMARY KEY,
  appointment_id TEXT NOT NULL UNIQUE,
  client_id TEXT NOT NULL,
  provider_id TEXT NOT NULL,
  amount REAL NOT NULL CHECK (amount > 0),
  reason TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','approved','rejected')),
  requested_at TEXT NOT NULL,
  processed_at TEXT NOT NULL DEFAULT '',
  admin_notes TEXT NOT NULL DEFAULT '',
  refund_method TEXT NOT NULL DEFAULT 'original_payment'
);

CREATE TABLE IF NOT EXISTS promotions(
  id TEXT PRIMARY KEY,
  provider_id TEXT NOT NULL,
  code TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  discount_type TEXT NOT NULL CHECK (discount_type IN ('percentage','fixed')),
  discount_value REAL NOT NULL,
  min_amount REAL NOT NULL DEFAULT 0,
  max_uses INTEGER NOT NULL DEFAULT 0,
  used_count INTEGER NOT NULL DEFAULT 0,
  start_date TEXT NOT NULL,
  end_date TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_promotions_code ON promotions(UPPER(code));

CREATE TABLE IF NOT EXISTS notifications(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  type TEXT NOT NULL,
  is_read INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id);

CREATE TABLE IF NOT EXISTS favorites(
  id TEXT PRIMARY KEY,
  client_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  service_id TEXT NOT NULL REFERENCES services(id) ON DELETE CASCADE,
  created_at TEXT NOT NULL,
  UNIQUE (client_id, service_id)
);

CREATE TABLE IF NOT EXISTS messages(
  id TEXT PRIMARY KEY,
  sender_id TEXT NOT NULL,
  receiver_id TEXT NOT NULL,
  body TEXT NOT NULL,
  is_read INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages(sender_id, receiver_id);
`
	_, err := db.Exec(schema)
	return err
}

// seedTables lists fixture sections in foreign-key order.
var seedTables = []string{
	"users", "categories", "services", "appointments", "reviews",
	"notifications", "favorites", "promotions", "refunds", "messages",
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM users`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var fixture map[string][]map[string]any
	if err := yaml.Unmarshal(seedYAML, &fixture); err != nil {
		return err
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range seedTables {
		for _, row := range fixture[table] {
			if err := prepareSeedRow(table, row); err != nil {
				return err
			}
			if err := insertRow(tx, table, row); err != nil {
				return fmt.Errorf("%s %v: %w", table, row["id"], err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	applog.L().Info("seed.done", zap.String("action", "seed.done"), zap.Int("users", len(fixture["users"])))
	return nil
}

func prepareSeedRow(table string, row map[string]any) error {
	switch table {
	case "users":
		raw, _ := row["password"].(string)
		delete(row, "password")
		h, err := bcrypt.GenerateFromPassword([]byte(raw), HashCost)
		if err != nil {
			return err
		}
		row["password_hash"] = string(h)
		fallthrough
	case "services":
		if _, ok := row["updated_at"]; !ok {
			row["updated_at"] = row["created_at"]
		}
	}
	return nil
}

func insertRow(tx *sqlx.Tx, table string, row map[string]any) error {
	cols := make([]string, 0, len(row))
	for k := range row {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	args := make([]any, len(cols))
	for i, k := range cols {
		args[i] = row[k]
	}
	q := `INSERT INTO ` + table + `(` + strings.Join(cols, ",") + `) VALUES (` +
		strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",") + `)`
	_, err := tx.Exec(q, args...)
	return err
}
