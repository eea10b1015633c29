package goals

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alantheprice/goalview/pkg/pp"
	"github.com/alantheprice/goalview/pkg/utils"
)

func goal(ty string) Goal[pp.Str] { return Goal[pp.Str]{Ty: pp.Str(ty)} }

func ptr[T any](v T) *T { return &v }

func types(entries []Entry[pp.Str]) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = string(e.Goal.Ty)
	}
	return out
}

func TestOrdered_SkipsClosedGoals(t *testing.T) {
	cfg := GoalConfig[pp.Str]{
		Goals: []Goal[pp.Str]{goal("A"), goal("B")},
		Stack: []Frame[pp.Str]{
			{Closed: []Goal[pp.Str]{goal("closed-1")}, Pending: []Goal[pp.Str]{goal("P1")}},
			{Closed: []Goal[pp.Str]{goal("closed-2")}, Pending: []Goal[pp.Str]{goal("P2"), goal("P3")}},
		},
		Shelf:   []Goal[pp.Str]{goal("S")},
		GivenUp: []Goal[pp.Str]{goal("G")},
	}

	entries := cfg.Ordered()
	assert.Equal(t, []string{"A", "B", "P1", "P2", "P3", "S", "G"}, types(entries))

	assert.True(t, entries[0].Active)
	assert.False(t, entries[1].Active)
	assert.Equal(t, SectionStack, entries[3].Section)
	assert.Equal(t, 1, entries[3].Depth)
	assert.Equal(t, 0, entries[3].Index)
	assert.Equal(t, 1, entries[4].Index)
	assert.Equal(t, SectionGivenUp, entries[6].Section)
}

func TestCompleted(t *testing.T) {
	assert.True(t, GoalConfig[pp.Str]{}.Completed())

	onlyClosed := GoalConfig[pp.Str]{Stack: []Frame[pp.Str]{{Closed: []Goal[pp.Str]{goal("x")}}}}
	assert.True(t, onlyClosed.Completed())

	pending := GoalConfig[pp.Str]{Stack: []Frame[pp.Str]{{Pending: []Goal[pp.Str]{goal("x")}}}}
	assert.False(t, pending.Completed())

	focused := GoalConfig[pp.Str]{Goals: []Goal[pp.Str]{goal("x")}}
	assert.False(t, focused.Completed())
}

func TestValidate_StructuralRules(t *testing.T) {
	ok := GoalConfig[pp.Str]{
		Goals: []Goal[pp.Str]{{Ty: "P", Hyps: []Hyp[pp.Str]{{Names: []pp.Str{"H"}, Ty: "Q"}}}},
		Stack: []Frame[pp.Str]{{Pending: []Goal[pp.Str]{goal("R")}}},
		Bullet: ptr(pp.Str("-")),
	}
	require.NoError(t, ok.Validate())

	nameless := GoalConfig[pp.Str]{Goals: []Goal[pp.Str]{{Ty: "P", Hyps: []Hyp[pp.Str]{{Ty: "Q"}}}}}
	assert.ErrorIs(t, nameless.Validate(), utils.ErrInvalidGoalConfig)

	strayBullet := GoalConfig[pp.Str]{Bullet: ptr(pp.Str("-"))}
	assert.ErrorIs(t, strayBullet.Validate(), utils.ErrInvalidGoalConfig)
}

func TestGoalConfig_WireShape(t *testing.T) {
	data := `{
		"goals": [{"ty": "A", "hyps": [{"names": ["x", "y"], "ty": "nat"}]}],
		"stack": [[[{"ty": "done", "hyps": []}], [{"ty": "todo", "hyps": []}]]],
		"shelf": [],
		"given_up": []
	}`
	var cfg GoalConfig[pp.Str]
	require.NoError(t, json.Unmarshal([]byte(data), &cfg))
	require.Len(t, cfg.Stack, 1)
	assert.Equal(t, pp.Str("done"), cfg.Stack[0].Closed[0].Ty)
	assert.Equal(t, pp.Str("todo"), cfg.Stack[0].Pending[0].Ty)
	assert.Equal(t, []pp.Str{"x", "y"}, cfg.Goals[0].Hyps[0].Names)
	assert.Nil(t, cfg.Bullet)

	out, err := json.Marshal(GoalConfig[pp.Str]{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"goals":[],"stack":[],"shelf":[],"given_up":[]}`, string(out))

	var bad GoalConfig[pp.Str]
	err = json.Unmarshal([]byte(`{"goals":[],"stack":[[[]]],"shelf":[],"given_up":[]}`), &bad)
	assert.ErrorIs(t, err, utils.ErrInvalidGoalConfig)
}

func TestGoalConfig_TreeElements(t *testing.T) {
	data := `{"goals":[{"ty":["Pp_box",["Pp_hovbox",2],["Pp_glue",[["Pp_string","a"],["Pp_print_break",1,0],["Pp_string","b"]]]],"hyps":[]}],"stack":[],"shelf":[],"given_up":[]}`
	var cfg GoalConfig[pp.Tree]
	require.NoError(t, json.Unmarshal([]byte(data), &cfg))
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "ab", pp.Flatten(cfg.Goals[0].Ty.Layout()))
	assert.Equal(t, "a b", pp.RenderString(cfg.Goals[0].Ty.Layout(), 80))
}
