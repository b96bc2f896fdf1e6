package confkit_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"coinwatch-api/pkg/confkit"
)

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		file     string
		expected string
	}{
		{
			name:     "absolute path",
			base:     "/base/dir",
			file:     "/absolute/path/file.yaml",
			expected: "/absolute/path/file.yaml",
		},
		{
			name:     "relative path",
			base:     "/base/dir",
			file:     "etc/file.yaml",
			expected: "/base/dir/etc/file.yaml",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, confkit.ResolvePath(tt.base, tt.file))
		})
	}
}

func TestResolvePathExpandsEnv(t *testing.T) {
	t.Setenv("CONFKIT_TEST_DIR", "/expanded")
	got := confkit.ResolvePath("/base", "${CONFKIT_TEST_DIR}/file.yaml")
	require.Equal(t, "/expanded/file.yaml", got)
}

func TestSectionHydrate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "section.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Name: test\n"), 0o644))

	type payload struct {
		Name string
	}
	section := confkit.Section[payload]{File: "section.yaml"}
	err := section.Hydrate(dir, func(p string) (*payload, error) {
		return confkit.LoadFile[payload](p, false)
	})
	require.NoError(t, err)
	require.NotNil(t, section.Value)
	require.Equal(t, "test", section.Value.Name)
	require.Equal(t, path, section.File)
}

func TestSectionHydrateEmptyFile(t *testing.T) {
	type payload struct{ Name string }
	section := confkit.Section[payload]{}
	require.NoError(t, section.Hydrate("/anywhere", func(string) (*payload, error) {
		t.Fatal("loader should not run for empty section")
		return nil, nil
	}))
	require.Nil(t, section.Value)
}
