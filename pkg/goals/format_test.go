package goals

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alantheprice/goalview/pkg/pp"
)

func render(t *testing.T, a GoalAnswer[pp.Str], opts Options) string {
	t.Helper()
	out, err := Format(a, 80, opts)
	require.NoError(t, err)
	return out.Text
}

func TestFormat_ActiveGoal(t *testing.T) {
	a := GoalAnswer[pp.Str]{Goals: &GoalConfig[pp.Str]{
		Goals: []Goal[pp.Str]{{
			Ty: "n + 0 = n",
			Hyps: []Hyp[pp.Str]{
				{Names: []pp.Str{"n", "m"}, Ty: "nat"},
				{Names: []pp.Str{"x"}, Def: ptr(pp.Str("3")), Ty: "nat"},
			},
		}},
	}}
	want := strings.Join([]string{
		"1 goal",
		"",
		"Goal 1/1",
		"n, m : nat",
		"x := 3 : nat",
		DefaultSeparator,
		"n + 0 = n",
	}, "\n")
	assert.Equal(t, want, render(t, a, Options{}))
}

func TestFormat_SecondaryGoalsShowTypeOnly(t *testing.T) {
	a := GoalAnswer[pp.Str]{Goals: &GoalConfig[pp.Str]{
		Goals: []Goal[pp.Str]{
			{Ty: "A", Hyps: []Hyp[pp.Str]{{Names: []pp.Str{"h"}, Ty: "B"}}},
			{Ty: "C", Hyps: []Hyp[pp.Str]{{Names: []pp.Str{"h"}, Ty: "B"}}},
		},
	}}
	want := strings.Join([]string{
		"2 goals",
		"",
		"Goal 1/2",
		"h : B",
		"--",
		"A",
		"",
		"Goal 2/2",
		"  C",
	}, "\n")
	assert.Equal(t, want, render(t, a, Options{Separator: "--"}))

	all := render(t, a, Options{Separator: "--", AllHyps: true})
	assert.True(t, strings.HasSuffix(all, "Goal 2/2\nh : B\n--\nC"))
}

func TestFormat_StackAndBullet(t *testing.T) {
	a := GoalAnswer[pp.Str]{Goals: &GoalConfig[pp.Str]{
		Stack: []Frame[pp.Str]{{
			Closed:  []Goal[pp.Str]{goal("done")},
			Pending: []Goal[pp.Str]{goal("B")},
		}},
		Bullet: ptr(pp.Str("Focus next goal with bullet -.")),
	}}
	want := strings.Join([]string{
		"1 remaining goal at depth 1",
		"Focus next goal with bullet -.",
		"  B",
	}, "\n")
	assert.Equal(t, want, render(t, a, Options{}))
}

func TestFormat_BulletStaysWithInnermostFrame(t *testing.T) {
	a := GoalAnswer[pp.Str]{Goals: &GoalConfig[pp.Str]{
		Stack: []Frame[pp.Str]{
			{Closed: []Goal[pp.Str]{goal("done")}},
			{Pending: []Goal[pp.Str]{goal("outer")}},
		},
		Bullet: ptr(pp.Str("-")),
	}}
	want := strings.Join([]string{
		"0 remaining goals at depth 1",
		"-",
		"",
		"1 remaining goal at depth 2",
		"  outer",
	}, "\n")
	assert.Equal(t, want, render(t, a, Options{}))

	a.Goals.Stack = a.Goals.Stack[:1]
	assert.Equal(t, "No more goals.\n\n0 remaining goals at depth 1\n-", render(t, a, Options{}))
}

func TestFormat_CompletedWithShelf(t *testing.T) {
	a := GoalAnswer[pp.Str]{Goals: &GoalConfig[pp.Str]{}}
	assert.Equal(t, "No more goals.", render(t, a, Options{}))

	a.Goals.Shelf = []Goal[pp.Str]{goal("S")}
	assert.Equal(t, "All focused goals solved.\n\n1 shelved goal\n  S", render(t, a, Options{}))
	assert.Equal(t, "All focused goals solved.", render(t, a, Options{HideShelved: true}))
}

func TestFormat_ProgramMessagesAndError(t *testing.T) {
	a := GoalAnswer[pp.Str]{
		Program: ProgramInfo{{ID: "f", View: OblsView{Remaining: 1, Obligations: []Obl{
			{Name: "f_obligation_1"},
			{Name: "f_obligation_2", Solved: true},
		}}}},
		Messages: LeveledMessages(Message[pp.Str]{Level: LevelWarning, Text: "deprecated"}),
		Error:    ptr(pp.Str("boom")),
	}
	want := strings.Join([]string{
		"Program f: 1 obligation remaining",
		"  - f_obligation_1",
		"",
		"1 message",
		"[warning] deprecated",
		"",
		"Error: boom",
	}, "\n")
	out, err := Format(a, 80, Options{})
	require.NoError(t, err)
	assert.Equal(t, want, out.Text)

	var tags []string
	for _, s := range out.Spans {
		tags = append(tags, s.Tag)
	}
	assert.Contains(t, tags, "message.warning")
	assert.Contains(t, tags, "message.error")
}

func TestFormat_DecodedAnswer(t *testing.T) {
	a, err := DecodeAnswer[pp.Any]([]byte(sampleAnswer))
	require.NoError(t, err)
	out, err := Format(a, 80, Options{})
	require.NoError(t, err)
	want := strings.Join([]string{
		"1 goal",
		"",
		"Goal 1/1",
		"H : False",
		DefaultSeparator,
		"True",
		"",
		"Program p: 0 obligations remaining",
	}, "\n")
	assert.Equal(t, want, out.Text)
}

func TestFormat_LongHypothesisWraps(t *testing.T) {
	ty := pp.Tree{Doc: pp.HoVBox(0, pp.Glue(
		pp.Text("forall"), pp.Space(), pp.Text("a"), pp.Space(), pp.Text("b,"), pp.Space(),
		pp.Text("a"), pp.Space(), pp.Text("="), pp.Space(), pp.Text("b"),
	))}
	a := GoalAnswer[pp.Tree]{Goals: &GoalConfig[pp.Tree]{
		Goals: []Goal[pp.Tree]{{
			Ty:   pp.Tree{Doc: pp.Text("True")},
			Hyps: []Hyp[pp.Tree]{{Names: []pp.Tree{{Doc: pp.Text("H")}}, Ty: ty}},
		}},
	}}
	out, err := Format(a, 12, Options{Separator: "=="})
	require.NoError(t, err)
	for _, line := range strings.Split(out.Text, "\n") {
		assert.LessOrEqual(t, pp.TextWidth(line), 12, "line %q", line)
	}
	assert.Equal(t, "H :\n  forall a\n  b, a = b", strings.Split(out.Text, "\n==")[0][len("1 goal\n\nGoal 1/1\n"):])
}
