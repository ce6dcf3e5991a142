// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `internal/config/loader.go` calls `validateStruct` immediately after it
// unmarshals the merged Koanf tree.  Any error aborts startup, so the
// binary never runs with partial or malformed configuration.
//
// Beyond the built-in tags, one cross-field rule applies: a mysql DSN must
// end up with a password, either inline or through `database.password`.
//
// Notes
// -----
//   • Oxford commas, two spaces after periods.

package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

//
// validator instance (package-level singleton)
//

var v = validator.New()

func init() {
	v.RegisterStructValidation(databaseRules, Database{})
}

// databaseRules rejects a mysql DSN that carries no credentials at all.
func databaseRules(sl validator.StructLevel) {
	db := sl.Current().Interface().(Database)
	if db.Driver != "mysql" || db.Password != "" {
		return
	}
	user, _, _ := strings.Cut(db.DSN, "@")
	if !strings.Contains(user, ":") {
		sl.ReportError(db.Password, "Password", "password", "required_for_mysql", "")
	}
}

//
// public API
//

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}
