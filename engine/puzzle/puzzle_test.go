package puzzle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/witchlight/engine/state"
	"github.com/nathoo/witchlight/types"
)

func testDefs() *state.Defs {
	return &state.Defs{
		Puzzles: map[string]types.PuzzleDef{
			"clock": {
				ID: "clock", Hour: 15, Minute: 45,
				Reward: []types.Effect{{Type: "spawn_item", Params: map[string]any{"item": "drawer_key"}}},
			},
		},
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in        string
		hour, min int
		wantErr   bool
	}{
		{"15:45", 15, 45, false},
		{"3 45", 3, 45, false},
		{"03.45", 3, 45, false},
		{"  7:05 ", 7, 5, false},
		{"24:00", 0, 0, true},
		{"12:60", 0, 0, true},
		{"noon", 0, 0, true},
		{"1:2:3", 0, 0, true},
		{"", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			h, m, err := ParseTime(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.hour, h)
			assert.Equal(t, tt.min, m)
		})
	}
}

func TestAttempt(t *testing.T) {
	defs := testDefs()
	s := state.NewState(defs)

	ok, effs, err := Attempt(s, defs, "clock", "12:00")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, effs)
	assert.False(t, IsSolved(s, "clock"))

	ok, _, err = Attempt(s, defs, "clock", "3:45")
	require.NoError(t, err)
	assert.False(t, ok, "3:45 is not 15:45")
	assert.False(t, IsSolved(s, "clock"))

	ok, effs, err = Attempt(s, defs, "clock", "15:45")
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, effs, 1)
	assert.Equal(t, "spawn_item", effs[0].Type)
	assert.True(t, IsSolved(s, "clock"))

	_, _, err = Attempt(s, defs, "clock", "15:45")
	assert.ErrorIs(t, err, ErrSolved)
}

func TestMatches(t *testing.T) {
	def := types.PuzzleDef{ID: "clock", Hour: 15, Minute: 45}
	tests := []struct {
		hour, min int
		want      bool
	}{
		{15, 45, true},
		{3, 45, false},
		{15, 46, false},
		{3, 15, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Matches(def, tt.hour, tt.min), "%d:%02d", tt.hour, tt.min)
	}

	midnight := types.PuzzleDef{ID: "clock", Hour: 0, Minute: 0}
	assert.True(t, Matches(midnight, 0, 0))
	assert.False(t, Matches(midnight, 12, 0))
}

func TestAttempt_Errors(t *testing.T) {
	defs := testDefs()
	s := state.NewState(defs)

	_, _, err := Attempt(s, defs, "safe", "1:00")
	assert.ErrorIs(t, err, ErrUnknownPuzzle)

	_, _, err = Attempt(s, defs, "clock", "quarter to four")
	assert.ErrorIs(t, err, ErrBadInput)
	assert.False(t, IsSolved(s, "clock"))
}
