// Package config holds the shared configuration for the API server and the
// admin CLI. Values are loaded from defaults, an optional YAML file,
// NEXTGEN_-prefixed environment variables, and command-line flags, in that
// order of precedence (lowest to highest).
package config

// Defaults applied before any other source.
const (
	DefaultDatabase   = "nextgenfitness.db"
	DefaultAddr       = ":8080"
	DefaultExportsDir = "exports"
	DefaultBackupsDir = "backups"
	DefaultBcryptCost = 10
	DefaultOutput     = "auto"
)

// Config is the merged configuration.
type Config struct {
	// Database is the path of the SQLite file. ":memory:" is accepted.
	Database string `koanf:"database"`

	// Addr is the listen address of the API server.
	Addr string `koanf:"addr"`

	// ExportsDir receives CSV/JSON exports from the admin CLI.
	ExportsDir string `koanf:"exports_dir"`

	// BackupsDir receives database backups.
	BackupsDir string `koanf:"backups_dir"`

	// CORSOrigins lists the origins allowed to call the API.
	CORSOrigins []string `koanf:"cors_origins"`

	// BcryptCost is the bcrypt work factor for password hashing.
	BcryptCost int `koanf:"bcrypt_cost"`

	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`

	// Output selects the CLI rendering mode: auto, text, or json.
	Output string `koanf:"output"`
}
