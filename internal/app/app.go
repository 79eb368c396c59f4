package app

import (
	"context"
	"os"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/tgutil/dbkit/db"
	"github.com/tgutil/dbkit/internal/storage/mysql"
)

// Run is the dbprobe flow: test connectivity, then initialize the schema.
// It is the single wiring point for the binary.
func Run(ctx context.Context, lg *zap.Logger, cfg *Config) error {
	if cfg.Init {
		return writeStarterFiles(lg, cfg)
	}

	m, err := mysql.NewManager(cfg.ConfigFile, lg)
	if err != nil {
		return err
	}

	lg.Info("testing database connection")
	if !m.TestConnection(ctx) {
		lg.Error("database connection failed, check the configuration",
			zap.String("config", cfg.ConfigFile))
		return errors.New("connection test failed")
	}
	lg.Info("database connection successful")

	if err := m.Connect(ctx); err != nil {
		return err
	}
	defer func() {
		_ = m.Close()
	}()

	if err := m.ExecSchema(ctx, cfg.SchemaFile); err != nil {
		return errors.Wrap(err, "initialize schema")
	}
	lg.Info("database schema initialized")
	return nil
}

// writeStarterFiles drops the embedded my.json template and starter schema
// next to the operator. Existing files are never overwritten.
func writeStarterFiles(lg *zap.Logger, cfg *Config) error {
	for _, f := range []struct {
		path    string
		content string
	}{
		{cfg.ConfigFile, db.ExampleConfig},
		{cfg.SchemaFile, db.StarterSchema},
	} {
		if _, err := os.Stat(f.path); err == nil {
			lg.Warn("file already exists, skipping", zap.String("path", f.path))
			continue
		}
		if err := os.WriteFile(f.path, []byte(f.content), 0o600); err != nil {
			return errors.Wrapf(err, "write %s", f.path)
		}
		lg.Info("starter file written", zap.String("path", f.path))
	}
	return nil
}
