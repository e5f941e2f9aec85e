package ifrs17

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const samplePath = "testdata/ifrs17_sample_data.json"

func loadSample(t *testing.T) *Snapshot {
	t.Helper()
	data, err := os.ReadFile(samplePath)
	require.NoError(t, err)
	snap, err := ParseSnapshot(data)
	require.NoError(t, err)
	return snap
}

func parse(t *testing.T, doc string) *Snapshot {
	t.Helper()
	snap, err := ParseSnapshot([]byte(doc))
	require.NoError(t, err)
	return snap
}

func writeDoc(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ifrs17.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func intPtr(v int) *int {
	return &v
}
