package app

import (
	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the process configuration for dbprobe, loadable from
// environment variables (TGDB_ prefix), flags, or YAML config files.
type Config struct {
	ConfigFile string `default:"my.json" usage:"path to the JSON credentials file" flag:"config-file"`
	SchemaFile string `default:"database_schema.sql" usage:"path to the SQL schema file" flag:"schema-file"`
	Init       bool   `default:"false" usage:"write starter my.json and schema files, then exit" flag:"init"`
}

// LoadConfig loads configuration from environment variables, flags, and
// optional YAML config files.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "TGDB",
		Files:     []string{"config.yaml", "/etc/tgdb/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	return &cfg, nil
}
