package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseNormalizesColors(t *testing.T) {
	t.Parallel()

	themes, err := Parse([]byte(`
[[theme]]
name = "custom"
background = "#ABCDEF"
text = "not-a-color"
`))
	require.NoError(t, err)
	require.Len(t, themes, 1)

	th := themes[0]
	require.Equal(t, "custom", th.Name)
	require.Equal(t, "#abcdef", th.Background)
	// malformed and missing colors fall back to the defaults
	require.Equal(t, Default().Text, th.Text)
	require.Equal(t, Default().Accent, th.Accent)
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("not toml ["))
	require.Error(t, err)

	_, err = Parse([]byte("# empty file"))
	require.ErrorContains(t, err, "no themes")

	_, err = Parse([]byte("[[theme]]\nbackground = \"#000000\"\n"))
	require.ErrorContains(t, err, "name is required")
}

func TestBuiltinAndFind(t *testing.T) {
	t.Parallel()

	themes := Builtin()
	require.Len(t, themes, 2)

	require.NotNil(t, Find(themes, "hagate-dark"))
	require.NotNil(t, Find(themes, "HAGATE-LIGHT"))
	require.Nil(t, Find(themes, "solarized"))
}

func TestLoadCatalogCreatesDefaultFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	themes, err := LoadCatalog(dir)
	require.NoError(t, err)
	require.Len(t, themes, 2)

	data, err := os.ReadFile(filepath.Join(dir, "themes.toml"))
	require.NoError(t, err)
	require.Contains(t, string(data), "hagate-dark")

	// a user-edited catalog wins over the builtins
	custom := `
[[theme]]
name = "mono"
background = "#000000"
text = "#ffffff"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "themes.toml"), []byte(custom), 0o644))
	themes, err = LoadCatalog(dir)
	require.NoError(t, err)
	require.Len(t, themes, 1)
	require.Equal(t, "mono", themes[0].Name)
}
