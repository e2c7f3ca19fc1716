package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(FS, "sql")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected file %s", name)
		}
	}
	assert.Equal(t, ups, downs)
}

func TestInitCreatesCoreTables(t *testing.T) {
	data, err := fs.ReadFile(FS, "sql/000001_init.up.sql")
	require.NoError(t, err)
	for _, table := range []string{"pipelines", "deal_stages", "deals", "deal_history", "clients", "requests", "properties", "client_documents"} {
		assert.Contains(t, string(data), "CREATE TABLE IF NOT EXISTS "+table+" ", table)
	}
}
