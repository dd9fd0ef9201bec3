package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/cellar/internal/domain/models"
)

type cliEnv struct {
	base string
}

func setupCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	base := t.TempDir()
	t.Setenv("CELLAR_STORE", "sqlite")
	t.Setenv("CELLAR_SQLITE_PATH", filepath.Join(base, "cellar.db"))
	t.Setenv("EXPORT_DIR", filepath.Join(base, "exports"))
	t.Setenv("EXPORT_CRON_SCHEDULE", "")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS_PATH", "")
	t.Setenv("GOOGLE_SHEET_DATABASE_ID", "")
	return &cliEnv{base: base}
}

func (e *cliEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--env", filepath.Join(e.base, "absent.env")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (e *cliEnv) writeBackup(t *testing.T) string {
	t.Helper()
	wines := []models.Wine{
		{ID: "alma-2018", Name: "Almaviva", Producer: "Viña Almaviva", Vintage: "2018", Country: "Chile",
			GrapeVariety: "Cabernet Sauvignon", AcquisitionPrice: "250000", Stock: 2},
		{ID: "catena-2020", Name: "Catena Malbec", Producer: "Catena Zapata", Vintage: "2020", Country: "Argentina",
			GrapeVariety: "Malbec", AcquisitionPrice: "17000", Stock: 1},
	}
	raw, err := json.Marshal(wines)
	require.NoError(t, err)
	path := filepath.Join(e.base, "backup.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	return path
}

func TestCLI_EmptyCellar(t *testing.T) {
	env := setupCLIEnv(t)

	out, err := env.run(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Your cellar is empty")
}

func TestCLI_RestoreListAndStats(t *testing.T) {
	env := setupCLIEnv(t)
	backup := env.writeBackup(t)

	out, err := env.run(t, "", "restore", backup)
	require.NoError(t, err)
	assert.Contains(t, out, "Restored 2 wines")

	_, err = env.run(t, "", "restore", backup)
	assert.ErrorContains(t, err, "--yes")

	out, err = env.run(t, "", "list", "--sort", "stock", "--dir", "desc")
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "Almaviva"), strings.Index(out, "Catena Malbec"))
	assert.Contains(t, out, "$250.000")

	out, err = env.run(t, "", "list", "--country", "Peru")
	require.NoError(t, err)
	assert.Contains(t, out, "No wines match")

	_, err = env.run(t, "", "list", "--sort", "rating")
	assert.Error(t, err)

	out, err = env.run(t, "", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "$517.000")
}

func TestCLI_StockEdits(t *testing.T) {
	env := setupCLIEnv(t)
	_, err := env.run(t, "", "restore", env.writeBackup(t))
	require.NoError(t, err)

	out, err := env.run(t, "", "inc", "catena")
	require.NoError(t, err)
	assert.Contains(t, out, "Catena Malbec: 2 bottles")

	_, err = env.run(t, "", "dec", "catena")
	require.NoError(t, err)
	out, err = env.run(t, "", "dec", "catena")
	require.NoError(t, err)
	assert.Contains(t, out, "removed from cellar")

	_, err = env.run(t, "", "inc", "catena")
	assert.Error(t, err)

	out, err = env.run(t, "", "price", "alma", "19990")
	require.NoError(t, err)
	assert.Contains(t, out, "$19.990")

	out, err = env.run(t, "n\n", "rm", "alma")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled.")

	out, err = env.run(t, "y\n", "rm", "alma")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed Almaviva")

	out, err = env.run(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Your cellar is empty")
}

func TestCLI_Export(t *testing.T) {
	env := setupCLIEnv(t)
	_, err := env.run(t, "", "restore", env.writeBackup(t))
	require.NoError(t, err)

	out, err := env.run(t, "", "export", "--stdout", "--country", "Chile")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Name,Producer,"))
	assert.Contains(t, out, `"Almaviva"`)
	assert.NotContains(t, out, "Catena")

	out, err = env.run(t, "", "export")
	require.NoError(t, err)
	assert.Contains(t, out, "cellar_export_")

	matches, err := filepath.Glob(filepath.Join(env.base, "exports", "cellar_export_*.csv"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	_, err = env.run(t, "", "export", "--sheets")
	assert.Error(t, err)
}

func TestCLI_ScanWithoutKey(t *testing.T) {
	env := setupCLIEnv(t)
	photo := filepath.Join(env.base, "label.jpg")
	require.NoError(t, os.WriteFile(photo, []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10}, 0o600))

	_, err := env.run(t, "", "scan", photo)
	assert.ErrorContains(t, err, "missing API key")
}
