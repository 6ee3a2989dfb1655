package config

import (
	"os"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(name, []byte(content), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Cleanup(Reset)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultDatabase, cfg.Database)
	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, DefaultExportsDir, cfg.ExportsDir)
	assert.Equal(t, DefaultBackupsDir, cfg.BackupsDir)
	assert.Equal(t, DefaultBcryptCost, cfg.BcryptCost)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, FileUsed())
}

func TestLoadConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Cleanup(Reset)

	writeConfigFile(t, "nextgen.yaml",
		"database: custom.db\nbcrypt_cost: 12\ncors_origins:\n  - https://app.example.com\n")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "custom.db", cfg.Database)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, "nextgen.yaml", FileUsed())

	// Untouched keys keep their defaults.
	assert.Equal(t, DefaultAddr, cfg.Addr)
}

func TestLoadExplicitConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Cleanup(Reset)

	writeConfigFile(t, "other.yaml", "addr: \":9090\"\n")

	cfg, err := Load("other.yaml", nil)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "other.yaml", FileUsed())
}

func TestLoadMissingExplicitConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Cleanup(Reset)

	_, err := Load("missing.yaml", nil)
	assert.Error(t, err)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Cleanup(Reset)

	writeConfigFile(t, "nextgen.yaml", "database: file.db\n")
	t.Setenv("NEXTGEN_DATABASE", "env.db")
	t.Setenv("NEXTGEN_BCRYPT_COST", "6")
	t.Setenv("NEXTGEN_CORS_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "env.db", cfg.Database)
	assert.Equal(t, 6, cfg.BcryptCost)
	assert.Equal(t,
		[]string{"https://a.example.com", "https://b.example.com"},
		cfg.CORSOrigins)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Cleanup(Reset)

	t.Setenv("NEXTGEN_DATABASE", "env.db")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("db", "", "")
	fs.String("output", DefaultOutput, "")
	require.NoError(t, fs.Parse([]string{"--db", "flag.db"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)

	// --db maps onto the database key and beats the environment.
	assert.Equal(t, "flag.db", cfg.Database)
	// The untouched output flag does not clobber anything.
	assert.Equal(t, DefaultOutput, cfg.Output)
}

func TestLoadUnchangedFlagIgnored(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Cleanup(Reset)

	t.Setenv("NEXTGEN_OUTPUT", "json")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("output", DefaultOutput, "")
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output)
}

func TestLoadMalformedConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Cleanup(Reset)

	writeConfigFile(t, "nextgen.yaml", "database: [unclosed\n")

	_, err := Load("", nil)
	assert.Error(t, err)
}
