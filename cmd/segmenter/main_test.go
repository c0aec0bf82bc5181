package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeDataset(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "MOCK_DATA.txt")
	data := "19 15000 39 3\n21 16000 41 4\n20 15500 40 3\n61 90000 10 20\n63 91000 12 22\n62 90500 11 21\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func TestClusterCmd_Text(t *testing.T) {
	path := writeDataset(t)

	out, err := execute(t, "cluster", path, "-k", "2", "--seed", "1", "--schema", "demographic", "--log-level", "error")
	require.NoError(t, err)

	assert.Contains(t, out, "6 points, k=2")
	assert.Contains(t, out, "income")
	assert.Contains(t, out, "Execution time:")
}

func TestClusterCmd_Directory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "part-1.txt"), []byte("19 15000 39 3\n21 16000 41 4\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "part-2.csv"), []byte("age,income,spendingScore,frequency\n61,90000,10,20\n63,91000,12,22\n"), 0o600))

	out, err := execute(t, "cluster", dir, "-k", "2", "--seed", "1", "--schema", "demographic", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "4 points, k=2")
}

func TestClusterCmd_JSON(t *testing.T) {
	path := writeDataset(t)

	out, err := execute(t, "cluster", "--input", path, "-k", "2", "--seed", "3", "-o", "json", "--log-level", "error")
	require.NoError(t, err)

	var rep struct {
		K         int  `json:"k"`
		Points    int  `json:"points"`
		Converged bool `json:"converged"`
		Clusters  []struct {
			Size int `json:"size"`
		} `json:"clusters"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 2, rep.K)
	assert.Equal(t, 6, rep.Points)
	assert.True(t, rep.Converged)
	require.Len(t, rep.Clusters, 2)
	assert.Equal(t, 6, rep.Clusters[0].Size+rep.Clusters[1].Size)
}

func TestClusterCmd_ConfigFile(t *testing.T) {
	path := writeDataset(t)
	cfgPath := filepath.Join(t.TempDir(), "segmenter.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
k: 2
seed: 9
input:
  path: `+path+`
output:
  format: json
log:
  level: error
`), 0o600))

	out, err := execute(t, "cluster", "--config", cfgPath, "-k", "3")
	require.NoError(t, err)
	assert.Contains(t, out, `"k": 3`, "flags override the file")
}

func TestClusterCmd_Errors(t *testing.T) {
	path := writeDataset(t)

	_, err := execute(t, "cluster", path, "-k", "7", "--log-level", "error")
	assert.Error(t, err, "k exceeds number of points")

	_, err = execute(t, "cluster", filepath.Join(t.TempDir(), "missing.txt"), "--log-level", "error")
	assert.Error(t, err)

	_, err = execute(t, "cluster", path, "--init", "farthest")
	assert.Error(t, err)
}

func TestClusterCmd_FailOnNonConvergence(t *testing.T) {
	path := writeDataset(t)

	_, err := execute(t, "cluster", path, "-k", "2", "--seed", "1", "--max-iterations", "1",
		"--epsilon", "0", "--log-level", "error", "--fail-on-nonconvergence", "--init", "random-distinct")
	require.Error(t, err)
	assert.ErrorContains(t, err, "did not converge")
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "segmenter dev")
	assert.Contains(t, out, "Go version:")
}
