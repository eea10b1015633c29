package goals

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alantheprice/goalview/pkg/pp"
	"github.com/alantheprice/goalview/pkg/protocol"
)

func TestMessages_BothShapesDecode(t *testing.T) {
	var plain Messages[pp.Str]
	require.NoError(t, json.Unmarshal([]byte(`["hello","world"]`), &plain))
	assert.False(t, plain.IsLeveled())
	assert.Equal(t, 2, plain.Len())
	lv := plain.Leveled()
	assert.Equal(t, LevelInfo, lv[0].Level)
	assert.Equal(t, pp.Str("world"), lv[1].Text)
	assert.Nil(t, lv[0].Range)

	var leveled Messages[pp.Str]
	require.NoError(t, json.Unmarshal([]byte(`[{"range":{"start":{"line":1,"character":0},"end":{"line":1,"character":4}},"level":1,"text":"bad"}]`), &leveled))
	assert.True(t, leveled.IsLeveled())
	lv = leveled.Leveled()
	assert.Equal(t, LevelError, lv[0].Level)
	assert.Equal(t, protocol.Position{Line: 1, Character: 4}, lv[0].Range.End)
}

func TestMessages_ReencodeInOriginalForm(t *testing.T) {
	for _, in := range []string{
		`["hello"]`,
		`[{"level":2,"text":"careful"}]`,
		`[]`,
	} {
		var m Messages[pp.Str]
		require.NoError(t, json.Unmarshal([]byte(in), &m))
		out, err := json.Marshal(m)
		require.NoError(t, err)
		assert.JSONEq(t, in, string(out))
	}
}

func TestMessages_RejectsMixedShapes(t *testing.T) {
	var m Messages[pp.Str]
	assert.Error(t, json.Unmarshal([]byte(`["a",{"level":1,"text":"b"}]`), &m))
}

func TestMessages_TreeText(t *testing.T) {
	var m Messages[pp.Any]
	require.NoError(t, json.Unmarshal([]byte(`[{"level":3,"text":["Pp_string","done"]},{"level":4,"text":"plain"}]`), &m))
	lv := m.Leveled()
	assert.False(t, lv[0].Text.IsString())
	assert.Equal(t, "done", lv[0].Text.String())
	assert.True(t, lv[1].Text.IsString())
	assert.NoError(t, m.Validate())
}
