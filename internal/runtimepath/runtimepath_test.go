package runtimepath

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEnv swaps the lookups for the duration of a test.
func fakeEnv(t *testing.T, env map[string]string, runUserDir string) {
	t.Helper()
	origEnv, origUID, origRun := getenv, getuid, runUser
	t.Cleanup(func() { getenv, getuid, runUser = origEnv, origUID, origRun })
	getenv = func(k string) string { return env[k] }
	getuid = func() int { return 4242 }
	runUser = runUserDir
}

func TestDir(t *testing.T) {
	xdg := t.TempDir()
	runDir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(runDir, "4242"), 0o700))

	tests := []struct {
		name    string
		env     map[string]string
		runUser string
		want    string
	}{
		{"xdg runtime dir", map[string]string{"XDG_RUNTIME_DIR": xdg}, runDir, xdg},
		{"run user dir", nil, runDir, filepath.Join(runDir, "4242")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakeEnv(t, tt.env, tt.runUser)
			got, err := Dir()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDir_TempFallback(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)
	fakeEnv(t, nil, filepath.Join(tmp, "missing"))

	got, err := Dir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmp, "cardwm-4242"), got)

	info, err := os.Stat(got)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())

	require.NoError(t, os.Chmod(got, 0o755))
	_, err = Dir()
	assert.ErrorContains(t, err, "want 0700")
}

func TestSocketPath(t *testing.T) {
	xdg := t.TempDir()
	fakeEnv(t, map[string]string{"XDG_RUNTIME_DIR": xdg}, "")
	got, err := SocketPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(xdg, "cardwm.sock"), got)

	fakeEnv(t, map[string]string{SocketEnv: "/srv/cardwm/ctl.sock"}, "")
	got, err = SocketPath()
	require.NoError(t, err)
	assert.Equal(t, "/srv/cardwm/ctl.sock", got)
}
