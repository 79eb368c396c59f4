// Package mysql owns the single MySQL connection of the process and the
// scoped transactional cursor used for all statement execution.
package mysql

import (
	"context"
	"fmt"
	"strconv"

	driver "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/tgutil/dbkit/internal/config"
)

// Manager holds at most one live connection at a time. It is not safe for
// concurrent use; each Manager belongs to one caller.
type Manager struct {
	cfg *config.Database
	log *zap.Logger
	db  *sqlx.DB
}

// NewManager loads the database section from the given configuration file
// and returns a disconnected Manager. Configuration errors are fatal here,
// before any connection is attempted.
func NewManager(configFile string, lg *zap.Logger) (*Manager, error) {
	cfg, err := config.NewLoader(configFile).Load()
	if err != nil {
		return nil, err
	}
	return NewManagerWithConfig(cfg, lg), nil
}

// NewManagerWithConfig returns a disconnected Manager for an already
// loaded database configuration.
func NewManagerWithConfig(cfg *config.Database, lg *zap.Logger) *Manager {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Manager{cfg: cfg, log: lg}
}

// Connect opens the connection and verifies it with a ping. Calling
// Connect on an already connected Manager is a no-op; the existing handle
// is kept. On failure the Manager stays disconnected.
func (m *Manager) Connect(ctx context.Context) error {
	if m.db != nil {
		return nil
	}

	db, err := sqlx.ConnectContext(ctx, "mysql", dsn(m.cfg))
	if err != nil {
		return connErr("connect", err)
	}
	// One connection per Manager: the pool below is pinned so the manager
	// really owns a single handle.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	m.db = db
	m.log.Info("connected to database",
		zap.String("host", m.cfg.Host),
		zap.String("database", m.cfg.Name),
	)
	return nil
}

// Connected reports whether the Manager currently holds a connection.
func (m *Manager) Connected() bool {
	return m.db != nil
}

// Close closes the connection if one is open. Calling Close on a
// disconnected Manager is a no-op.
func (m *Manager) Close() error {
	if m.db == nil {
		return nil
	}
	err := m.db.Close()
	m.db = nil
	if err != nil {
		return connErr("close", err)
	}
	m.log.Info("database connection closed")
	return nil
}

// WithCursor runs fn inside one transaction, connecting first if needed.
// When fn returns nil the transaction is committed; when fn returns an
// error the transaction is rolled back, the error is logged and then
// returned unchanged. The transaction is released on every exit path,
// including a panic inside fn.
func (m *Manager) WithCursor(ctx context.Context, fn func(cur *Cursor) error) error {
	if m.db == nil {
		if err := m.Connect(ctx); err != nil {
			return err
		}
	}

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return connErr("begin", err)
	}

	settled := false
	defer func() {
		if !settled {
			_ = tx.Rollback()
		}
	}()

	if err := fn(&Cursor{tx: tx}); err != nil {
		settled = true
		if rbErr := tx.Rollback(); rbErr != nil {
			m.log.Error("rollback failed", zap.Error(rbErr))
		}
		m.log.Error("database operation failed", zap.Error(err))
		return err
	}

	settled = true
	if err := tx.Commit(); err != nil {
		return connErr("commit", err)
	}
	return nil
}

// TestConnection probes the server: connect, SELECT VERSION(), disconnect.
// It never returns an error; failures are logged and reported as false.
// The connection is closed before returning regardless of outcome.
func (m *Manager) TestConnection(ctx context.Context) bool {
	defer func() {
		if err := m.Close(); err != nil {
			m.log.Warn("close after connection test", zap.Error(err))
		}
	}()

	if err := m.Connect(ctx); err != nil {
		m.log.Error("connection test failed", zap.Error(err))
		return false
	}
	err := m.WithCursor(ctx, func(cur *Cursor) error {
		rows, err := cur.QueryValues(ctx, "SELECT VERSION()")
		if err != nil {
			return err
		}
		m.log.Info("server version", zap.String("version", firstValue(rows)))
		return nil
	})
	if err != nil {
		m.log.Error("connection test failed", zap.Error(err))
		return false
	}
	return true
}

// Open is a convenience constructor: load configuration and connect in one
// call.
func Open(ctx context.Context, configFile string, lg *zap.Logger) (*Manager, error) {
	m, err := NewManager(configFile, lg)
	if err != nil {
		return nil, err
	}
	if err := m.Connect(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// WithCursor runs a single transactional block against a short-lived
// Manager built from the given configuration file. The connection is
// always closed afterwards.
func WithCursor(ctx context.Context, configFile string, lg *zap.Logger, fn func(cur *Cursor) error) error {
	m, err := Open(ctx, configFile, lg)
	if err != nil {
		return err
	}
	defer func() {
		_ = m.Close()
	}()
	return m.WithCursor(ctx, fn)
}

func dsn(cfg *config.Database) string {
	c := driver.NewConfig()
	c.Net = "tcp"
	c.Addr = cfg.Host + ":" + strconv.Itoa(cfg.Port)
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.DBName = cfg.Name
	c.Params = map[string]string{"charset": cfg.Charset}
	return c.FormatDSN()
}

// firstValue renders the first column of the first row for logging. MySQL
// reports strings as []byte.
func firstValue(rows [][]any) string {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return ""
	}
	switch v := rows[0][0].(type) {
	case []byte:
		return string(v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
