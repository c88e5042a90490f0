package sourceenv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestNew_ProcessEnvironment(t *testing.T) {
	t.Setenv("SOURCEENV_TEST_HOST", "from-process")

	env, err := New(Options{})
	require.NoError(t, err)

	v, ok := env("SOURCEENV_TEST_HOST")
	assert.True(t, ok)
	assert.Equal(t, "from-process", v)

	_, ok = env("SOURCEENV_TEST_UNSET")
	assert.False(t, ok)
}

func TestNew_EnvFiles(t *testing.T) {
	first := writeEnvFile(t, "A=1\nB=first\n# comment\nQUOTED=\"with spaces\"\n")
	second := writeEnvFile(t, "B=second\n")

	env, err := New(Options{Files: []string{first, second, filepath.Join(t.TempDir(), "missing.env")}})
	require.NoError(t, err)

	tests := []struct {
		name string
		want string
	}{
		{"A", "1"},
		{"B", "second"},
		{"QUOTED", "with spaces"},
	}
	for _, tt := range tests {
		v, ok := env(tt.name)
		if !ok || v != tt.want {
			t.Errorf("env(%q) = %q, %v; want %q, true", tt.name, v, ok, tt.want)
		}
	}
}

func TestNew_ProcessWinsByDefault(t *testing.T) {
	t.Setenv("SOURCEENV_TEST_PORT", "9000")
	file := writeEnvFile(t, "SOURCEENV_TEST_PORT=8080\n")

	env, err := New(Options{Files: []string{file}})
	require.NoError(t, err)
	v, _ := env("SOURCEENV_TEST_PORT")
	assert.Equal(t, "9000", v)

	env, err = New(Options{Files: []string{file}, Override: true})
	require.NoError(t, err)
	v, _ = env("SOURCEENV_TEST_PORT")
	assert.Equal(t, "8080", v)
}

func TestNew_Prefix(t *testing.T) {
	t.Setenv("MYAPP_PORT", "8080")
	t.Setenv("PORT", "1")

	env, err := New(Options{Prefix: "MYAPP_"})
	require.NoError(t, err)

	v, ok := env("PORT")
	assert.True(t, ok)
	assert.Equal(t, "8080", v)
}

func TestNew_UnreadableFile(t *testing.T) {
	// A directory cannot be parsed as an env file.
	_, err := New(Options{Files: []string{t.TempDir()}})
	assert.Error(t, err)
}
