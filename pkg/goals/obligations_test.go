package goals

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alantheprice/goalview/pkg/utils"
)

func TestNewOblsView_RejectsMismatch(t *testing.T) {
	obls := []Obl{
		{Name: "f_obligation_1", Solved: false},
		{Name: "f_obligation_2", Solved: true},
	}
	v, err := NewOblsView(false, 1, obls)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Unsolved())

	_, err = NewOblsView(false, 2, obls)
	assert.ErrorIs(t, err, utils.ErrInconsistentObligations)
}

func TestOblsView_DecodeValidates(t *testing.T) {
	data := `{"opaque":false,"remaining":2,"obligations":[{"name":["Id","o1"],"status":[true,["Define",false]],"solved":false}]}`
	var v OblsView
	err := json.Unmarshal([]byte(data), &v)
	assert.ErrorIs(t, err, utils.ErrInconsistentObligations)
}

func TestProgramInfo_WireShapeAndLookup(t *testing.T) {
	data := `[
		[["Id","plus_comm"], {"opaque":true,"remaining":1,"obligations":[
			{"name":["Id","plus_comm_obligation_1"],
			 "loc":{"fname":["InFile",{"dirpath":null,"file":"a.v"}],"line_nb":3,"bol_pos":10,"line_nb_last":3,"bol_pos_last":10,"bp":12,"ep":20},
			 "status":[false,"Expand"],"solved":false}]}],
		[["Id","other"], {"opaque":false,"remaining":0,"obligations":[]}]
	]`
	var info ProgramInfo
	require.NoError(t, json.Unmarshal([]byte(data), &info))
	require.NoError(t, info.Validate())
	require.Len(t, info, 2)

	v, ok := info.Lookup("plus_comm")
	require.True(t, ok)
	assert.True(t, v.Opaque)
	obl := v.Obligations[0]
	assert.Equal(t, Id("plus_comm_obligation_1"), obl.Name)
	assert.Equal(t, 3, obl.Loc.LineNb)
	assert.JSONEq(t, `["InFile",{"dirpath":null,"file":"a.v"}]`, string(obl.Loc.Fname))
	assert.JSONEq(t, `"Expand"`, string(obl.Status.Detail))
	assert.Equal(t, 1, info.Remaining())

	_, ok = info.Lookup("missing")
	assert.False(t, ok)

	out, err := json.Marshal(info)
	require.NoError(t, err)
	assert.JSONEq(t, data, string(out))
}

func TestProgramInfo_DuplicateKeys(t *testing.T) {
	info := ProgramInfo{
		{ID: "p", View: OblsView{}},
		{ID: "p", View: OblsView{}},
	}
	assert.ErrorIs(t, info.Validate(), utils.ErrInconsistentObligations)
}

func TestProgramInfo_InconsistentEntryNamesProgram(t *testing.T) {
	info := ProgramInfo{{ID: "p", View: OblsView{Remaining: 3}}}
	err := info.Validate()
	require.ErrorIs(t, err, utils.ErrInconsistentObligations)
	assert.Contains(t, utils.FormatError(err), "Resource: p")
}

func TestId_RejectsWrongTag(t *testing.T) {
	var id Id
	assert.Error(t, json.Unmarshal([]byte(`["Name","x"]`), &id))
	assert.Error(t, json.Unmarshal([]byte(`"x"`), &id))
	require.NoError(t, json.Unmarshal([]byte(`["Id","x"]`), &id))
	assert.Equal(t, Id("x"), id)
}
