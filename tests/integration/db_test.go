//go:build integration

// Black-box test against a real MySQL server. Run with:
//
//	go test -tags integration ./tests/integration
package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"
	"go.uber.org/zap"

	"github.com/tgutil/dbkit/internal/storage/mysql"
)

func startMySQL(t *testing.T) (host string, port int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	ctr, err := tcmysql.Run(ctx, "mysql:8.0",
		tcmysql.WithDatabase("tgutil"),
		tcmysql.WithUsername("tg"),
		tcmysql.WithPassword("secret"),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(ctr)
	})

	host, err = ctr.Host(ctx)
	require.NoError(t, err)
	mapped, err := ctr.MappedPort(ctx, "3306/tcp")
	require.NoError(t, err)
	return host, mapped.Int()
}

func writeConfigFile(t *testing.T, host string, port int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "my.json")
	contents := fmt.Sprintf(`{
		"database": {
			"host": %q,
			"port": %d,
			"user": "tg",
			"password": "secret",
			"database": "tgutil"
		}
	}`, host, port)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestManagerAgainstLiveServer(t *testing.T) {
	host, port := startMySQL(t)
	configFile := writeConfigFile(t, host, port)
	ctx := context.Background()
	lg := zap.NewNop()

	m, err := mysql.NewManager(configFile, lg)
	require.NoError(t, err)

	assert.True(t, m.TestConnection(ctx))
	assert.False(t, m.Connected(), "probe must disconnect")

	schema := filepath.Join(t.TempDir(), "database_schema.sql")
	require.NoError(t, os.WriteFile(schema, []byte(
		"CREATE TABLE a(id INT);  ;CREATE TABLE b(id INT);",
	), 0o600))
	require.NoError(t, m.ExecSchema(ctx, schema))

	err = m.WithCursor(ctx, func(cur *mysql.Cursor) error {
		if _, err := cur.Exec(ctx, "INSERT INTO a (id) VALUES (?)", 1); err != nil {
			return err
		}
		rows, err := cur.QueryMaps(ctx, "SELECT id FROM a")
		if err != nil {
			return err
		}
		require.Len(t, rows, 1)
		assert.Equal(t, "1", asString(rows[0]["id"]))
		return nil
	})
	require.NoError(t, err)

	// A failing block must roll back.
	err = m.WithCursor(ctx, func(cur *mysql.Cursor) error {
		if _, err := cur.Exec(ctx, "INSERT INTO a (id) VALUES (?)", 2); err != nil {
			return err
		}
		_, err := cur.Exec(ctx, "INSERT INTO missing (id) VALUES (?)", 2)
		return err
	})
	require.Error(t, err)

	err = m.WithCursor(ctx, func(cur *mysql.Cursor) error {
		rows, err := cur.QueryValues(ctx, "SELECT COUNT(*) FROM a")
		if err != nil {
			return err
		}
		require.Len(t, rows, 1)
		assert.Equal(t, "1", asString(rows[0][0]), "rolled back insert must not persist")
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, m.Close())
}

// asString normalizes driver values: the MySQL text protocol reports
// numbers as []byte.
func asString(v any) string {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
