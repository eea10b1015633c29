package goals

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alantheprice/goalview/pkg/pp"
	"github.com/alantheprice/goalview/pkg/protocol"
	"github.com/alantheprice/goalview/pkg/utils"
)

const sampleAnswer = `{
	"textDocument": {"uri": "file:///t.v", "version": 3},
	"position": {"line": 4, "character": 2},
	"goals": {
		"goals": [{"ty": ["Pp_string", "True"], "hyps": [{"names": [["Pp_string", "H"]], "ty": "False"}]}],
		"stack": [], "shelf": [], "given_up": []
	},
	"program": [[["Id", "p"], {"opaque": false, "remaining": 0, "obligations": []}]],
	"messages": []
}`

func TestGoalRequest_OptionalFieldsForwarded(t *testing.T) {
	in := `{"textDocument":{"uri":"file:///a.v","version":1},"position":{"line":2,"character":5},"pp_format":"Str","pretac":"idtac."}`
	var req GoalRequest
	require.NoError(t, json.Unmarshal([]byte(in), &req))
	assert.Equal(t, FormatStr, req.PpFormat)
	assert.Equal(t, Mode(""), req.Mode)
	assert.Equal(t, ModeAfter, req.EffectiveMode())

	out, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestGoalRequest_RejectsUnknownEnums(t *testing.T) {
	var req GoalRequest
	err := json.Unmarshal([]byte(`{"textDocument":{"uri":"u","version":1},"position":{"line":0,"character":0},"mode":"Later"}`), &req)
	assert.ErrorIs(t, err, utils.ErrInvalidRequest)

	err = json.Unmarshal([]byte(`{"textDocument":{"uri":"u","version":1},"position":{"line":0,"character":0},"pp_format":"Html"}`), &req)
	assert.ErrorIs(t, err, utils.ErrInvalidRequest)
}

func TestDecodeAnswer(t *testing.T) {
	a, err := DecodeAnswer[pp.Any]([]byte(sampleAnswer))
	require.NoError(t, err)
	require.NotNil(t, a.Goals)
	assert.Equal(t, "True", a.Goals.Goals[0].Ty.String())
	assert.True(t, a.Goals.Goals[0].Hyps[0].Ty.IsString())
	assert.Nil(t, a.Error)

	req := GoalRequest{
		TextDocument: protocol.VersionedTextDocumentIdentifier{URI: "file:///t.v", Version: 3},
		Position:     protocol.Position{Line: 4, Character: 2},
	}
	assert.True(t, a.Answers(req))
	req.TextDocument.Version = 4
	assert.False(t, a.Answers(req))
}

func TestDecodeAnswer_RejectsInvalidGoals(t *testing.T) {
	data := `{"textDocument":{"uri":"u","version":1},"position":{"line":0,"character":0},
		"goals":{"goals":[{"ty":"A","hyps":[{"names":[],"ty":"B"}]}],"stack":[],"shelf":[],"given_up":[]},
		"messages":[]}`
	_, err := DecodeAnswer[pp.Str]([]byte(data))
	assert.ErrorIs(t, err, utils.ErrInvalidGoalConfig)
}

func TestGoalAnswer_RoundTripOmitsAbsentFields(t *testing.T) {
	a := GoalAnswer[pp.Str]{
		TextDocument: protocol.VersionedTextDocumentIdentifier{URI: "u", Version: 1},
		Messages:     PlainMessages[pp.Str]("hi"),
	}
	out, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, `{"textDocument":{"uri":"u","version":1},"position":{"line":0,"character":0},"messages":["hi"]}`, string(out))
}
