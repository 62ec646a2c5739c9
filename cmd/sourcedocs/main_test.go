package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const payload = `[
  {
    "/proj/Sources/Foo.swift": {
      "key.substructure": [
        {
          "key.kind": "source.lang.swift.decl.class",
          "key.name": "Foo",
          "key.accessibility": "source.lang.swift.accessibility.public",
          "key.doc.comment": "A foo."
        },
        {
          "key.kind": "source.lang.swift.decl.function.free",
          "key.name": "drive(_:)",
          "key.accessibility": "source.lang.swift.accessibility.public"
        }
      ]
    }
  }
]`

func TestVersion(t *testing.T) {
	var stdout bytes.Buffer
	require.NoError(t, run([]string{"version"}, &stdout, &bytes.Buffer{}))
	assert.Equal(t, "sourcedocs dev\n", stdout.String())
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.WriteFile("docs.json", []byte(payload), 0o644))

	var stdout bytes.Buffer
	err := run([]string{
		"generate",
		"--payload", "docs.json",
		"--output", "site",
		"--docset", filepath.Join("build", "docSet.dsidx"),
		"--title", "Kit",
		"--log-level", "error",
	}, &stdout, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "2 entities, 3 pages")
	for _, p := range []string{"index.md", "classes/Foo.md", "global-functions/drive-_.md"} {
		assert.FileExists(t, filepath.Join(dir, "site", filepath.FromSlash(p)))
	}
	assert.FileExists(t, filepath.Join(dir, "build", "docSet.dsidx"))

	index, err := os.ReadFile(filepath.Join(dir, "site", "index.md"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "# Kit\n")
}

func TestGenerate_SinglePageHTML(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile("docs.json", []byte(payload), 0o644))

	err := run([]string{"generate", "-p", "docs.json", "-o", "out", "--layout", "single-page", "--format", "html", "--log-level", "error"},
		&bytes.Buffer{}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "out", "index.html"))
	assert.NoDirExists(t, filepath.Join(dir, "out", "classes"))
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no payload", []string{"generate"}},
		{"missing payload", []string{"generate", "--payload", "missing.json"}},
		{"bad layout", []string{"generate", "--payload", "docs.json", "--layout", "book"}},
		{"bad access", []string{"generate", "--payload", "docs.json", "--min-access", "secret"}},
		{"bad log level", []string{"generate", "--log-level", "loud"}},
		{"missing config", []string{"generate", "--config", "nope.yaml"}},
		{"unknown command", []string{"publish"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			require.NoError(t, os.WriteFile("docs.json", []byte(payload), 0o644))

			err := run(tt.args, &bytes.Buffer{}, &bytes.Buffer{})
			assert.Error(t, err)
		})
	}
}
