package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/Redacta/internal/config"
)

func TestBootstrapScript(t *testing.T) {
	script, err := bootstrapSQL()
	require.NoError(t, err)

	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS resume",
		"CREATE TABLE IF NOT EXISTS text_coordinates",
		"tsvector_update_trigger(tsv, 'pg_catalog.english', text)",
		"tsvector_update_trigger(redacted_tsv, 'pg_catalog.english', redacted_text)",
		"CREATE TABLE IF NOT EXISTS redacta_meta",
		"INSERT INTO redacta_meta (version) VALUES (1)",
	} {
		assert.Contains(t, script, want)
	}
}

func TestDataSourceName(t *testing.T) {
	_, err := dataSourceName(&config.Config{})
	require.Error(t, err)

	dsn, err := dataSourceName(&config.Config{DatabaseURL: "postgres://u:p@localhost:5432/redacta"})
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@localhost:5432/redacta", dsn)

	_, err = dataSourceName(&config.Config{
		DatabaseURL: "postgres://u:p@localhost:5432/redacta",
		SslCertPath: filepath.Join(t.TempDir(), "missing.pem"),
	})
	require.Error(t, err)

	cert := filepath.Join(t.TempDir(), "root.pem")
	require.NoError(t, os.WriteFile(cert, []byte("cert"), 0o600))
	dsn, err = dataSourceName(&config.Config{
		DatabaseURL: "postgres://u:p@localhost:5432/redacta",
		SslCertPath: cert,
	})
	require.NoError(t, err)
	assert.Contains(t, dsn, "sslmode=verify-ca")
	assert.Contains(t, dsn, "sslrootcert=")
}
