package goals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alantheprice/goalview/pkg/pp"
)

func TestDiff_LineLevel(t *testing.T) {
	changes := Diff("n : nat\n====\nn + 0 = n", "n : nat\n====\nn = n")

	added, removed := DiffStats(changes)
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, removed)

	require.NotEmpty(t, changes)
	assert.Equal(t, OpEqual, changes[0].Op)
	assert.Equal(t, []string{"n : nat", "===="}, changes[0].Lines)

	out, err := pp.Render(DiffLayout(changes), 80)
	require.NoError(t, err)
	assert.Contains(t, out.Text, "  n : nat\n")
	assert.Contains(t, out.Text, "- n + 0 = n")
	assert.Contains(t, out.Text, "+ n = n")

	var tags []string
	for _, s := range out.Spans {
		tags = append(tags, s.Tag)
	}
	assert.ElementsMatch(t, []string{"diff.added", "diff.removed"}, tags)
}

func TestDiff_IdenticalAndAppended(t *testing.T) {
	changes := Diff("a\nb", "a\nb\n")
	added, removed := DiffStats(changes)
	assert.Zero(t, added)
	assert.Zero(t, removed)

	changes = Diff("a\nb", "a\nb\nc")
	added, removed = DiffStats(changes)
	assert.Equal(t, 1, added)
	assert.Zero(t, removed)

	assert.Empty(t, Diff("", ""))
}
