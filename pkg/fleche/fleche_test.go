package fleche

import (
	"encoding/json"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alantheprice/goalview/pkg/protocol"
	"github.com/alantheprice/goalview/pkg/utils"
)

func doc(version int) protocol.VersionedTextDocumentIdentifier {
	return protocol.VersionedTextDocumentIdentifier{URI: "file:///a.v", Version: version}
}

func upTo(status Status, line int) CompletionStatus {
	return CompletionStatus{
		Status: status,
		Range:  protocol.Range{End: protocol.Position{Line: line}},
	}
}

func TestStatus_WireForms(t *testing.T) {
	var c CompletionStatus
	require.NoError(t, json.Unmarshal([]byte(`{"status":["Failed"],"range":{"start":{"line":0,"character":0},"end":{"line":7,"character":3}}}`), &c))
	assert.Equal(t, StatusFailed, c.Status)
	assert.Equal(t, 7, c.Range.End.Line)

	var s Status
	require.NoError(t, json.Unmarshal([]byte(`"Yes"`), &s))
	assert.Equal(t, StatusYes, s)

	assert.Error(t, json.Unmarshal([]byte(`["Maybe"]`), &s))
	assert.Error(t, json.Unmarshal([]byte(`["Yes","No"]`), &s))

	out, err := json.Marshal(StatusStopped)
	require.NoError(t, err)
	assert.Equal(t, `["Stopped"]`, string(out))
}

func TestTransition(t *testing.T) {
	assert.NoError(t, Initial().Transition(upTo(StatusStopped, 3)))
	assert.NoError(t, Initial().Transition(upTo(StatusFailed, 3)))
	assert.NoError(t, Initial().Transition(upTo(StatusYes, 3)))

	for _, final := range []Status{StatusYes, StatusFailed} {
		for _, next := range []Status{StatusYes, StatusStopped, StatusFailed} {
			err := upTo(final, 1).Transition(upTo(next, 2))
			assert.ErrorIs(t, err, utils.ErrStatusFinal, "%s -> %s", final, next)
		}
	}
}

func TestTracker_MonotonicPerVersion(t *testing.T) {
	tr := NewTracker()
	require.NoError(t, tr.Apply(doc(1), upTo(StatusStopped, 2)))
	require.NoError(t, tr.Apply(doc(1), upTo(StatusStopped, 5)))
	require.NoError(t, tr.Apply(doc(1), upTo(StatusYes, 9)))

	err := tr.Apply(doc(1), upTo(StatusStopped, 9))
	assert.ErrorIs(t, err, utils.ErrStatusFinal)
	assert.Contains(t, utils.FormatError(err), "file:///a.v")

	_, st, ok := tr.Status("file:///a.v")
	require.True(t, ok)
	assert.Equal(t, StatusYes, st.Status)

	// A new version starts over.
	require.NoError(t, tr.Apply(doc(2), upTo(StatusStopped, 1)))
	v, st, _ := tr.Status("file:///a.v")
	assert.Equal(t, 2, v)
	assert.Equal(t, StatusStopped, st.Status)

	// Late updates for the old version are stale.
	assert.ErrorIs(t, tr.Apply(doc(1), upTo(StatusFailed, 1)), utils.ErrStaleRequest)
	v, _, _ = tr.Status("file:///a.v")
	assert.Equal(t, 2, v)
}

func TestTracker_Forget(t *testing.T) {
	tr := NewTracker()
	require.NoError(t, tr.Apply(doc(4), upTo(StatusYes, 1)))
	require.NoError(t, tr.Apply(protocol.VersionedTextDocumentIdentifier{URI: "file:///b.v", Version: 1}, Initial()))
	assert.Equal(t, []string{"file:///a.v", "file:///b.v"}, tr.Documents())

	tr.Forget("file:///a.v")
	_, _, ok := tr.Status("file:///a.v")
	assert.False(t, ok)
	// After forgetting, any version is accepted again.
	assert.NoError(t, tr.Apply(doc(1), upTo(StatusStopped, 1)))
}

func TestTracker_Concurrent(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(line int) {
			defer wg.Done()
			_ = tr.Apply(doc(1), upTo(StatusStopped, line))
		}(i)
	}
	wg.Wait()
	_, st, ok := tr.Status("file:///a.v")
	require.True(t, ok)
	assert.Equal(t, StatusStopped, st.Status)
}

func TestFlecheDocument_Wire(t *testing.T) {
	data := `{"spans":[
		{"range":{"start":{"line":0,"character":0},"end":{"line":0,"character":10}},"span":{"v":["VernacDefinition"]}},
		{"range":{"start":{"line":1,"character":0},"end":{"line":3,"character":4}}}
	],"completed":{"status":["Yes"],"range":{"start":{"line":0,"character":0},"end":{"line":3,"character":4}}}}`
	var d FlecheDocument
	require.NoError(t, json.Unmarshal([]byte(data), &d))
	require.Len(t, d.Spans, 2)
	assert.JSONEq(t, `{"v":["VernacDefinition"]}`, string(d.Spans[0].Span))
	assert.True(t, d.Spans[1].Span.IsNull())
	assert.True(t, d.Completed.Done())

	s, ok := d.SpanAt(protocol.Position{Line: 2, Character: 0})
	require.True(t, ok)
	assert.Equal(t, 1, s.Range.Start.Line)
	_, ok = d.SpanAt(protocol.Position{Line: 5})
	assert.False(t, ok)

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, data, string(out))
}

func TestPerf_ValidateAndAggregate(t *testing.T) {
	data := `{"textDocument":{"uri":"file:///a.v","version":2},"summary":"3 sentences","timings":[
		{"range":{"start":{"line":0,"character":0},"end":{"line":0,"character":5}},"info":{"time":0.5,"memory":1.2e6,"cache_hit":false,"time_hash":0.01}},
		{"range":{"start":{"line":1,"character":0},"end":{"line":1,"character":5}},"info":{"time":2,"memory":10,"cache_hit":true,"time_hash":0.02}},
		{"range":{"start":{"line":2,"character":0},"end":{"line":2,"character":5}},"info":{"time":0.5,"memory":0,"cache_hit":false,"time_hash":0}}
	]}`
	var p DocumentPerfParams[protocol.Range]
	require.NoError(t, json.Unmarshal([]byte(data), &p))
	require.NoError(t, p.Validate())

	slow := p.Slowest(2)
	require.Len(t, slow, 2)
	assert.Equal(t, 1, slow[0].Range.Start.Line)
	assert.Equal(t, 0, slow[1].Range.Start.Line)
	// Input order is untouched.
	assert.Equal(t, 0, p.Timings[0].Range.Start.Line)
	assert.Len(t, p.Slowest(-1), 3)

	tot := p.Totals()
	assert.Equal(t, 3, tot.Sentences)
	assert.InDelta(t, 3.0, tot.Time, 1e-9)
	assert.InDelta(t, 0.03, tot.TimeHash, 1e-9)
	assert.Equal(t, 1, tot.CacheHits)
	assert.InDelta(t, 1.0/3, tot.HitRate(), 1e-9)

	p.Timings[2].Info.TimeHash = -1
	assert.ErrorIs(t, p.Validate(), utils.ErrInvalidTelemetry)
}

func TestPerfInfo_RejectsNonFinite(t *testing.T) {
	assert.NoError(t, PerfInfo{Time: 1, Memory: 2, TimeHash: 0.1}.Validate())

	for name, info := range map[string]PerfInfo{
		"nan time":      {Time: math.NaN()},
		"inf memory":    {Memory: math.Inf(1)},
		"-inf hash":     {TimeHash: math.Inf(-1)},
		"negative time": {Time: -1},
	} {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, info.Validate(), utils.ErrInvalidTelemetry)
		})
	}
}
