package extract

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symbols.json")
	content := `{"symbols":[{"symbol":"BTCUSDT"},{"symbol":"ETHUSDT"}]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	type payload struct {
		Symbols []struct {
			Symbol string `json:"symbol"`
		} `json:"symbols"`
	}

	data, err := ReadJSON[payload](path)
	require.NoError(t, err)
	require.Len(t, data.Symbols, 2)
	assert.Equal(t, "BTCUSDT", data.Symbols[0].Symbol)
	assert.Equal(t, "ETHUSDT", data.Symbols[1].Symbol)
}

func TestReadJSONMissingFile(t *testing.T) {
	_, err := ReadJSON[map[string]any](filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestReadJSONMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"truncated":`), 0644))

	_, err := ReadJSON[map[string]any](path)
	require.Error(t, err)
}

func TestUnzip(t *testing.T) {
	tmp := t.TempDir()
	archivePath := filepath.Join(tmp, "data.zip")
	writeZip(t, archivePath, map[string]string{
		"prices.csv":       "date,close\n2024-01-02,42.5\n",
		"nested/meta.json": `{"source":"test"}`,
	})

	outDir := filepath.Join(tmp, "out", "deep")
	require.NoError(t, Unzip(archivePath, outDir))

	prices, err := os.ReadFile(filepath.Join(outDir, "prices.csv"))
	require.NoError(t, err)
	assert.Equal(t, "date,close\n2024-01-02,42.5\n", string(prices))

	meta, err := os.ReadFile(filepath.Join(outDir, "nested", "meta.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"source":"test"}`, string(meta))
}

func TestUnzipMissingArchive(t *testing.T) {
	err := Unzip(filepath.Join(t.TempDir(), "missing.zip"), t.TempDir())
	require.Error(t, err)
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}
