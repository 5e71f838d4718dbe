package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revloop/internal/manifest"
)

func testAnchors() Anchors {
	return Anchors{
		Terminal:       "done",
		Final:          "c",
		Fallback:       "c",
		CompleteAction: "FINISH",
	}
}

func testSpecs() []StageSpec {
	return []StageSpec{
		{Stage: "a", Action: "DO_A", Next: "b"},
		{Stage: "b", Action: "DO_B", Next: "c", MaxRevisions: 2},
		{Stage: "c", Action: "DO_C", Next: "done"},
	}
}

func TestNewDefinition_Valid(t *testing.T) {
	def, err := NewDefinition("test", testAnchors(), testSpecs())

	require.NoError(t, err)
	assert.Equal(t, Stage("a"), def.Initial)
	assert.Equal(t, []Stage{"a", "b", "c"}, def.Stages())

	next, ok := def.NextInOrder("b")
	require.True(t, ok)
	assert.Equal(t, Stage("c"), next)

	_, ok = def.NextInOrder("done")
	assert.False(t, ok)
}

func TestNewDefinition_ActionMapping(t *testing.T) {
	def, err := NewDefinition("test", testAnchors(), testSpecs())
	require.NoError(t, err)

	stage, ok := def.ActionStage("DO_B")
	require.True(t, ok)
	assert.Equal(t, Stage("b"), stage)

	// The complete action maps to the terminal stage even though the
	// terminal stage has no spec.
	stage, ok = def.ActionStage("FINISH")
	require.True(t, ok)
	assert.Equal(t, Stage("done"), stage)

	_, ok = def.ActionStage("UNKNOWN")
	assert.False(t, ok)
}

func TestNewDefinition_ActionsOrdered(t *testing.T) {
	def, err := NewDefinition("test", testAnchors(), testSpecs())
	require.NoError(t, err)

	assert.Equal(t, []string{"DO_A", "DO_B", "DO_C", "FINISH"}, def.Actions())
}

func TestNewDefinition_Maxima(t *testing.T) {
	def, err := NewDefinition("test", testAnchors(), testSpecs())
	require.NoError(t, err)

	assert.Equal(t, map[Stage]int{"b": 2}, def.Maxima())
}

func TestNewDefinition_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		anchors Anchors
		specs   []StageSpec
		wantErr string
	}{
		{
			name:    "no stages",
			anchors: testAnchors(),
			specs:   nil,
			wantErr: "no stages defined",
		},
		{
			name:    "terminal with spec",
			anchors: testAnchors(),
			specs: append(testSpecs(),
				StageSpec{Stage: "done", Next: "a"}),
			wantErr: "terminal stage done must not carry a spec",
		},
		{
			name:    "duplicate stage",
			anchors: testAnchors(),
			specs: append(testSpecs(),
				StageSpec{Stage: "a", Next: "b"}),
			wantErr: "duplicate stage a",
		},
		{
			name: "undefined final",
			anchors: Anchors{
				Terminal: "done", Final: "missing", Fallback: "c", CompleteAction: "FINISH",
			},
			specs:   testSpecs(),
			wantErr: "final stage missing is not defined",
		},
		{
			name: "undefined fallback",
			anchors: Anchors{
				Terminal: "done", Final: "c", Fallback: "missing", CompleteAction: "FINISH",
			},
			specs:   testSpecs(),
			wantErr: "fallback stage missing is not defined",
		},
		{
			name:    "dangling successor",
			anchors: testAnchors(),
			specs: []StageSpec{
				{Stage: "a", Next: "b"},
				{Stage: "b", Next: "nowhere"},
				{Stage: "c", Next: "done"},
			},
			wantErr: "undefined successor nowhere",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := NewDefinition("test", tt.anchors, tt.specs)
			require.Error(t, err)
			assert.Nil(t, def)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefinitionFromManifest(t *testing.T) {
	m, err := manifest.ReadFromString(`stage,action,next_stage,max_revisions
a,DO_A,b,0
b,DO_B,c,2
c,DO_C,done,0
`)
	require.NoError(t, err)

	def, err := DefinitionFromManifest("test", testAnchors(), m)
	require.NoError(t, err)
	assert.Equal(t, Stage("a"), def.Initial)
	assert.Equal(t, map[Stage]int{"b": 2}, def.Maxima())
}

func TestStore_RoundTrip(t *testing.T) {
	s := NewStore()
	assert.False(t, s.Visited("a"))
	assert.Equal(t, 0, s.Len())

	first := s.Put("a", "v1", map[string]string{"score": "8"})
	second := s.Put("a", "v2", nil)

	assert.Equal(t, 0, first.Iteration)
	assert.Equal(t, 1, second.Iteration)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "8", first.Field("score"))
	assert.Equal(t, "", second.Field("score"))

	latest, err := s.Latest("a")
	require.NoError(t, err)
	assert.Equal(t, "v2", latest.Content)

	v0, err := s.Version("a", 0)
	require.NoError(t, err)
	assert.Equal(t, "v1", v0.Content)

	history := s.History("a")
	require.Len(t, history, 2)
	assert.Equal(t, "v1", history[0].Content)
	assert.Equal(t, "v2", history[1].Content)

	assert.True(t, s.Visited("a"))
	assert.Equal(t, 2, s.Len())
}

func TestStore_NotFound(t *testing.T) {
	s := NewStore()
	s.Put("a", "v1", nil)

	_, err := s.Latest("missing")
	assert.ErrorIs(t, err, ErrArtifactNotFound)

	_, err = s.Version("a", 5)
	assert.ErrorIs(t, err, ErrArtifactNotFound)
}

func TestStore_StagesFirstWriteOrder(t *testing.T) {
	s := NewStore()
	s.Put("b", "1", nil)
	s.Put("a", "1", nil)
	s.Put("b", "2", nil)

	assert.Equal(t, []Stage{"b", "a"}, s.Stages())
}

func TestCounter(t *testing.T) {
	c := NewCounter(map[Stage]int{"b": 2})

	assert.Equal(t, 0, c.Count("b"))
	assert.False(t, c.Exceeded("b"))

	c.Increment("b")
	c.Increment("b")
	assert.Equal(t, 2, c.Count("b"))
	assert.False(t, c.Exceeded("b"), "count at maximum is not exceeded")

	c.Increment("b")
	assert.True(t, c.Exceeded("b"), "count past maximum is exceeded")

	// The counter never rises past max+1 in normal routing; its raw value
	// is still just a tally here.
	max, ok := c.Maximum("b")
	require.True(t, ok)
	assert.Equal(t, 2, max)
}

func TestCounter_Unbounded(t *testing.T) {
	c := NewCounter(nil)
	for i := 0; i < 10; i++ {
		c.Increment("a")
	}
	assert.False(t, c.Exceeded("a"))
	_, ok := c.Maximum("a")
	assert.False(t, ok)
}

func TestCounter_Snapshot(t *testing.T) {
	c := NewCounter(map[Stage]int{"b": 2})
	c.Increment("b")

	snap := c.Snapshot()
	assert.Equal(t, map[Stage]int{"b": 1}, snap)

	// The snapshot is detached from the counter.
	snap["b"] = 99
	assert.Equal(t, 1, c.Count("b"))
}

func TestJournal_AppendOnly(t *testing.T) {
	j := NewJournal()
	j.Append(TransitionRecord{From: "a", To: "b", Reason: "forward"})
	j.Append(TransitionRecord{From: "b", To: "c", Reason: "forward", Overridden: true})

	require.Equal(t, 2, j.Len())
	records := j.Records()
	assert.Equal(t, Stage("a"), records[0].From)
	assert.True(t, records[1].Overridden)

	// Mutating the returned slice must not affect the journal.
	records[0].From = "x"
	assert.Equal(t, Stage("a"), j.Records()[0].From)
}
