package plan

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePlan() *Plan {
	p := New()
	p.AddPage(
		PageToGenerate{Route: "blog/test", OutputPath: "blog/test.html", Metadata: map[string]any{"author": "ada"}},
		PageToGenerate{Route: "tags/go", OutputPath: "tags/go.html"},
	)
	p.AddCopy(ContentToCopy{Source: "Content/Blog/media", Destination: "Content/Blog/media"})
	return p
}

func TestManifest_WriteAndRead(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := samplePlan().Snapshot("run-1", 1, 1, now)

	path := filepath.Join(t.TempDir(), "out", "plan.yaml")
	require.NoError(t, m.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "route: blog/test")
	assert.Contains(t, string(data), "output_path: blog/test.html")

	restored, err := FromYAML(data)
	require.NoError(t, err)
	assert.Equal(t, "run-1", restored.RunID)
	assert.True(t, now.Equal(restored.Timestamp))
	require.Len(t, restored.Pages, 2)
	assert.Equal(t, "tags/go.html", restored.Pages[1].OutputPath)
	assert.Equal(t, map[string]any{"author": "ada"}, restored.Pages[0].Metadata)
	assert.Equal(t, m.Copies, restored.Copies)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must not be left behind")
}

func TestManifest_HashIgnoresRunIdentity(t *testing.T) {
	a := samplePlan().Snapshot("run-1", 1, 1, time.Now())
	b := samplePlan().Snapshot("run-2", 1, 1, time.Now().Add(time.Hour))

	ha, err := a.Hash()
	require.NoError(t, err)
	hb, err := b.Hash()
	require.NoError(t, err)
	assert.Equal(t, ha, hb)

	b.Pages = b.Pages[:1]
	hc, err := b.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, ha, hc)
}

func TestFromYAML_Invalid(t *testing.T) {
	_, err := FromYAML([]byte("pages: [unclosed"))
	assert.Error(t, err)
}
