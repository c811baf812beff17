package notes

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FrontmatterAndBody(t *testing.T) {
	fm, body, err := Parse([]byte("---\ntitle: Open Break\ntags:\n  - basic\n---\nBody text.\n"))
	require.NoError(t, err)
	assert.Equal(t, "Open Break", fm["title"])
	assert.Equal(t, []any{"basic"}, fm["tags"])
	assert.Equal(t, "Body text.\n", body)
}

func TestParse_NoFrontmatter(t *testing.T) {
	fm, body, err := Parse([]byte("Just a body.\n"))
	require.NoError(t, err)
	assert.Empty(t, fm)
	assert.Equal(t, "Just a body.\n", body)
}

func TestParse_NormalizesNestedMapKeys(t *testing.T) {
	fm, _, err := Parse([]byte("---\nmeta:\n  author: ana\n  level:\n    name: basics\n---\nBody.\n"))
	require.NoError(t, err)

	want := map[string]any{
		"author": "ana",
		"level":  map[string]any{"name": "basics"},
	}
	if diff := cmp.Diff(want, fm["meta"]); diff != "" {
		t.Errorf("nested map mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_NestedSequences(t *testing.T) {
	fm, _, err := Parse([]byte("---\nrelated_moves:\n  - - \"[[Cross Body Lead]]\"\n  - Open Break\n---\nBody.\n"))
	require.NoError(t, err)
	assert.Equal(t, []any{[]any{"[[Cross Body Lead]]"}, "Open Break"}, fm["related_moves"])
}
