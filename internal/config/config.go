// Package config loads database credentials from the shared JSON
// configuration file (my.json by convention). The file holds a required
// "database" section and any number of sibling sections for other
// components; only the database section is validated here.
package config

import (
	"io/fs"
	"os"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// Sentinel errors reported by Loader.
var (
	// ErrNotFound means the configuration file does not exist.
	ErrNotFound = errors.New("configuration file not found")
	// ErrInvalid means the file exists but is not a usable configuration.
	ErrInvalid = errors.New("invalid configuration")
)

// Defaults applied when the database section omits optional keys.
const (
	DefaultPort    = 3306
	DefaultCharset = "utf8mb4"
)

// Database holds the connection settings from the "database" section.
type Database struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	Charset  string
}

// Loader reads one JSON configuration file. The path is explicit; the
// conventional default (my.json) is applied by the caller.
type Loader struct {
	path string
}

// NewLoader returns a Loader for the given configuration file path.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load parses the configuration file and returns its database section.
// A missing file is ErrNotFound, a missing or incomplete "database"
// section is ErrInvalid.
func (l *Loader) Load() (*Database, error) {
	raw, err := l.read()
	if err != nil {
		return nil, err
	}

	var (
		db    Database
		found bool
	)
	d := jx.DecodeBytes(raw)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "database" {
			return d.Skip()
		}
		found = true
		return decodeDatabase(d, &db)
	}); err != nil {
		return nil, errors.Wrapf(ErrInvalid, "parse %s: %s", l.path, err)
	}
	if !found {
		return nil, errors.Wrapf(ErrInvalid, `%s has no "database" section`, l.path)
	}

	for key, val := range map[string]string{
		"host":     db.Host,
		"user":     db.User,
		"password": db.Password,
		"database": db.Name,
	} {
		if val == "" {
			return nil, errors.Wrapf(ErrInvalid, "database.%s is required", key)
		}
	}
	if db.Port == 0 {
		db.Port = DefaultPort
	}
	if db.Charset == "" {
		db.Charset = DefaultCharset
	}
	return &db, nil
}

// Section re-reads the file and returns the named top-level section as a
// generic mapping. An absent section yields an empty map, not an error;
// the content is opaque and never validated. Used for auxiliary settings
// (e.g. "telegram") co-located in the same file.
func (l *Loader) Section(name string) (map[string]any, error) {
	raw, err := l.read()
	if err != nil {
		return nil, err
	}

	section := map[string]any{}
	d := jx.DecodeBytes(raw)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != name {
			return d.Skip()
		}
		v, err := decodeValue(d)
		if err != nil {
			return err
		}
		m, ok := v.(map[string]any)
		if !ok {
			return errors.Errorf("section %q is not an object", name)
		}
		section = m
		return nil
	}); err != nil {
		return nil, errors.Wrapf(ErrInvalid, "parse %s: %s", l.path, err)
	}
	return section, nil
}

func (l *Loader) read() ([]byte, error) {
	raw, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrapf(ErrNotFound, "%s does not exist, create it from my.json.example", l.path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", l.path)
	}
	return raw, nil
}

func decodeDatabase(d *jx.Decoder, db *Database) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "host":
			db.Host, err = d.Str()
		case "port":
			db.Port, err = d.Int()
		case "user":
			db.User, err = d.Str()
		case "password":
			db.Password, err = d.Str()
		case "database":
			db.Name, err = d.Str()
		case "charset":
			db.Charset, err = d.Str()
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "database.%s", key)
		}
		return nil
	})
}

// decodeValue materializes an arbitrary JSON value. Integers stay int64
// so numeric settings round-trip without float conversion.
func decodeValue(d *jx.Decoder) (any, error) {
	switch d.Next() {
	case jx.String:
		return d.Str()
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return nil, err
		}
		if n.IsInt() {
			return n.Int64()
		}
		return n.Float64()
	case jx.Bool:
		return d.Bool()
	case jx.Null:
		return nil, d.Null()
	case jx.Array:
		var arr []any
		err := d.Arr(func(d *jx.Decoder) error {
			v, err := decodeValue(d)
			if err != nil {
				return err
			}
			arr = append(arr, v)
			return nil
		})
		return arr, err
	case jx.Object:
		obj := map[string]any{}
		err := d.Obj(func(d *jx.Decoder, key string) error {
			v, err := decodeValue(d)
			if err != nil {
				return err
			}
			obj[key] = v
			return nil
		})
		return obj, err
	default:
		return nil, errors.Errorf("unexpected JSON token %v", d.Next())
	}
}
