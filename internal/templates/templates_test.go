package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemplate(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadBuiltins(t *testing.T) {
	repo, err := Load("")
	require.NoError(t, err)

	list := repo.List()
	ids := make([]string, len(list))
	for i, info := range list {
		ids[i] = info.ID
		assert.NotEmpty(t, info.Name)
		assert.NotEmpty(t, info.Description)
	}
	assert.Equal(t, []string{"basic-doc", "table-doc", "api-doc", "meeting-note"}, ids)
	assert.Equal(t, 4, repo.Len())
}

func TestGet(t *testing.T) {
	repo, err := Load("")
	require.NoError(t, err)

	tpl, err := repo.Get("api-doc")
	require.NoError(t, err)
	assert.Equal(t, "API document", tpl.Name)
	assert.Contains(t, tpl.Content, "# API Reference")
	assert.NotContains(t, tpl.Content, "order:")
}

func TestGetUnknown(t *testing.T) {
	repo, err := Load("")
	require.NoError(t, err)

	_, err = repo.Get("no-such-template")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.EqualError(t, err, "template not found: no-such-template")

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "no-such-template", nf.ID)
}

func TestLoadDirAppendsInOrder(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "b.md", "---\nid: release-note\nname: Release note\ndescription: Release notes\norder: 2\n---\n# Release\n")
	writeTemplate(t, dir, "a.md", "---\nid: runbook\nname: Runbook\ndescription: Operational runbook\norder: 1\n---\n# Runbook\n")
	writeTemplate(t, dir, "ignored.txt", "not a template")

	repo, err := Load(dir)
	require.NoError(t, err)

	list := repo.List()
	require.Len(t, list, 6)
	assert.Equal(t, "runbook", list[4].ID)
	assert.Equal(t, "release-note", list[5].ID)

	tpl, err := repo.Get("runbook")
	require.NoError(t, err)
	assert.Equal(t, "# Runbook\n", tpl.Content)
}

func TestLoadDirRejectsDuplicateID(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "dup.md", "---\nid: basic-doc\nname: Dup\ndescription: Duplicate\n---\nbody\n")

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate template id")
}

func TestLoadDirRejectsInvalidFrontMatter(t *testing.T) {
	cases := map[string]string{
		"missing name": "---\nid: x\ndescription: d\n---\nbody\n",
		"bad id":       "---\nid: Not Valid\nname: n\ndescription: d\n---\nbody\n",
		"no metadata":  "# just markdown\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeTemplate(t, dir, "t.md", content)

			_, err := Load(dir)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingDir(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestNewRepositoryKeepsOrder(t *testing.T) {
	repo, err := NewRepository(
		Template{ID: "z", Name: "Z"},
		Template{ID: "a", Name: "A"},
	)
	require.NoError(t, err)

	list := repo.List()
	assert.Equal(t, "z", list[0].ID)
	assert.Equal(t, "a", list[1].ID)
}
