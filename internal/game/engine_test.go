package game

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(secret Code, opts ...Option) *Engine {
	e := NewEngine(opts...)
	e.start(secret)
	return e
}

func TestEngine_NotStarted(t *testing.T) {
	e := NewEngine()

	assert.False(t, e.IsRunning())
	assert.Equal(t, 0, e.AttemptCount())
	assert.Equal(t, StateNotStarted, e.State())

	_, err := e.SubmitGuess([]Color{Red, Green, Blue, Orange})
	require.ErrorIs(t, err, ErrInactiveGame)
	assert.Equal(t, 0, e.AttemptCount())
}

func TestEngine_NewGame_SecretIsFourDistinctPaletteColors(t *testing.T) {
	e := NewEngine(WithDebug(true), WithRand(rand.New(rand.NewPCG(7, 11))))
	for i := 0; i < 500; i++ {
		e.NewGame()
		secret, ok := e.PeekSecret()
		require.True(t, ok)
		require.True(t, secret.Distinct(), "secret %v", secret)

		assert.True(t, e.IsRunning())
		assert.Equal(t, 0, e.AttemptCount())
	}
}

// Все 360 упорядоченных четвёрок должны выпадать равновероятно.
func TestEngine_NewGame_Uniform(t *testing.T) {
	const (
		tuples = 6 * 5 * 4 * 3
		trials = tuples * 200
		// chi-square, 359 степеней свободы; критическое значение при p=0.001 около 448
		threshold = 460.0
	)

	e := NewEngine(WithDebug(true), WithRand(rand.New(rand.NewPCG(1, 2))))
	counts := make(map[Code]int, tuples)
	for i := 0; i < trials; i++ {
		e.NewGame()
		secret, _ := e.PeekSecret()
		counts[secret]++
	}
	require.Len(t, counts, tuples)

	expected := float64(trials) / tuples
	var chi2 float64
	for _, n := range counts {
		d := float64(n) - expected
		chi2 += d * d / expected
	}
	assert.Less(t, chi2, threshold)
}

func TestEngine_SubmitGuess_Feedback(t *testing.T) {
	e := newTestEngine(Code{Red, Green, Blue, Orange})

	res, err := e.SubmitGuess([]Color{Green, Red, Blue, Magenta})
	require.NoError(t, err)
	assert.Equal(t, ScoreResult{Exact: 1, Misplaced: 2, Attempts: 1}, res)
	assert.True(t, e.IsRunning())
	assert.Equal(t, StateRunning, e.State())
}

func TestEngine_SolveOnThirdAttempt(t *testing.T) {
	e := newTestEngine(Code{Red, Green, Blue, Orange})

	_, err := e.SubmitGuess([]Color{Cyan, Magenta, Red, Green})
	require.NoError(t, err)
	_, err = e.SubmitGuess([]Color{Orange, Blue, Green, Red})
	require.NoError(t, err)

	res, err := e.SubmitGuess([]Color{Red, Green, Blue, Orange})
	require.NoError(t, err)
	assert.Equal(t, ScoreResult{Exact: 4, Solved: true, Attempts: 3, Tier: TierBrilliant}, res)

	assert.False(t, e.IsRunning())
	assert.Equal(t, StateSolved, e.State())
}

func TestEngine_AfterSolve_Inactive(t *testing.T) {
	e := newTestEngine(Code{Red, Green, Blue, Orange})
	_, err := e.SubmitGuess([]Color{Red, Green, Blue, Orange})
	require.NoError(t, err)

	_, err = e.SubmitGuess([]Color{Red, Green, Blue, Orange})
	require.ErrorIs(t, err, ErrInactiveGame)
	assert.Equal(t, 1, e.AttemptCount())
}

func TestEngine_TierByAttempts(t *testing.T) {
	cases := []struct {
		attempts int
		want     Tier
	}{
		{6, TierBrilliant},
		{7, TierGood},
		{10, TierImprovable},
		{15, TierLow},
	}
	miss := []Color{Magenta, Cyan, Red, Green}
	for _, tc := range cases {
		e := newTestEngine(Code{Red, Green, Blue, Orange})
		for i := 1; i < tc.attempts; i++ {
			res, err := e.SubmitGuess(miss)
			require.NoError(t, err)
			require.False(t, res.Solved)
			require.Equal(t, TierNone, res.Tier)
		}
		res, err := e.SubmitGuess([]Color{Red, Green, Blue, Orange})
		require.NoError(t, err)
		assert.True(t, res.Solved)
		assert.Equal(t, tc.attempts, res.Attempts)
		assert.Equal(t, tc.want, res.Tier)
	}
}

func TestEngine_RejectedGuessLeavesStateAlone(t *testing.T) {
	cases := []struct {
		name  string
		guess []Color
		err   error
	}{
		{name: "empty", guess: nil, err: ErrInvalidGuess},
		{name: "three", guess: []Color{Red, Green, Blue}, err: ErrInvalidGuess},
		{name: "five", guess: []Color{Red, Green, Blue, Orange, Cyan}, err: ErrInvalidGuess},
		{name: "zero color", guess: []Color{Red, Green, Blue, 0}, err: ErrUnknownColor},
		{name: "out of palette", guess: []Color{Red, 12, Blue, Orange}, err: ErrUnknownColor},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(Code{Red, Green, Blue, Orange})
			_, err := e.SubmitGuess(tc.guess)
			require.ErrorIs(t, err, tc.err)
			require.ErrorIs(t, err, ErrInvalidGuess)

			assert.Equal(t, 0, e.AttemptCount())
			assert.True(t, e.IsRunning())
		})
	}
}

func TestEngine_NewGameMidGameResets(t *testing.T) {
	e := NewEngine(WithRand(rand.New(rand.NewPCG(3, 4))))
	e.NewGame()
	_, err := e.SubmitGuess([]Color{Red, Green, Blue, Orange})
	require.NoError(t, err)

	e.NewGame()
	assert.True(t, e.IsRunning())
	assert.Equal(t, 0, e.AttemptCount())
}

func TestEngine_NewGameAfterSolve(t *testing.T) {
	e := newTestEngine(Code{Red, Green, Blue, Orange})
	_, err := e.SubmitGuess([]Color{Red, Green, Blue, Orange})
	require.NoError(t, err)
	require.Equal(t, StateSolved, e.State())

	e.NewGame()
	assert.Equal(t, StateRunning, e.State())
	assert.Equal(t, 0, e.AttemptCount())
}

func TestEngine_PeekSecret(t *testing.T) {
	secret := Code{Cyan, Blue, Red, Orange}

	_, ok := NewEngine(WithDebug(true)).PeekSecret()
	assert.False(t, ok, "no game yet")

	_, ok = newTestEngine(secret).PeekSecret()
	assert.False(t, ok, "debug off")

	got, ok := newTestEngine(secret, WithDebug(true)).PeekSecret()
	require.True(t, ok)
	assert.Equal(t, secret, got)
}

func TestEngine_SnapshotRestore(t *testing.T) {
	e := newTestEngine(Code{Red, Green, Blue, Orange}, WithDebug(true))
	_, err := e.SubmitGuess([]Color{Green, Red, Blue, Magenta})
	require.NoError(t, err)

	snap := e.Snapshot()
	assert.Equal(t, EngineSnapshot{Secret: []Color{Red, Green, Blue, Orange}, Running: true, Attempts: 1}, snap)

	back, err := RestoreEngine(snap, WithDebug(true))
	require.NoError(t, err)
	assert.Equal(t, 1, back.AttemptCount())
	assert.True(t, back.IsRunning())

	res, err := back.SubmitGuess([]Color{Red, Green, Blue, Orange})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Attempts)
	assert.True(t, res.Solved)
}

func TestRestoreEngine_Rejects(t *testing.T) {
	_, err := RestoreEngine(EngineSnapshot{Secret: []Color{Red, Red, Blue, Orange}, Running: true})
	require.Error(t, err)

	_, err = RestoreEngine(EngineSnapshot{Secret: []Color{Red, Green}, Running: true})
	require.ErrorIs(t, err, ErrInvalidGuess)

	e, err := RestoreEngine(EngineSnapshot{})
	require.NoError(t, err)
	assert.Equal(t, StateNotStarted, e.State())
}
