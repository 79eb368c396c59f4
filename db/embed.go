// Package db provides the starter artifacts shipped with the module.
package db

import _ "embed"

// ExampleConfig is the my.json template operators copy and fill in.
//
//go:embed my.json.example
var ExampleConfig string

// StarterSchema contains the DDL for a fresh installation.
//
//go:embed database_schema.sql
var StarterSchema string
