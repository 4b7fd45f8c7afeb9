package scorer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/promptlens/promptlens/internal/ailink/prompt"
	"github.com/promptlens/promptlens/internal/core/judge"
	"github.com/promptlens/promptlens/internal/core/lexical"
)

// recordingJudge answers from a per-instruction table and records calls.
type recordingJudge struct {
	mode    judge.Mode
	answers map[string]*float64
	calls   []string
}

func (r *recordingJudge) Judge(_ context.Context, _ string, instruction string) *float64 {
	r.calls = append(r.calls, instruction)
	return r.answers[instruction]
}

func (r *recordingJudge) Mode() judge.Mode { return r.mode }

func ptr(v float64) *float64 { return &v }

func newScorer(t *testing.T, j *recordingJudge) *Scorer {
	t.Helper()
	reg, err := prompt.DefaultRegistry()
	require.NoError(t, err)
	s, err := New(j, lexical.New(nil, 0, zap.NewNop()), reg, DefaultFormalityTarget)
	require.NoError(t, err)
	return s
}

func TestScorerLocal(t *testing.T) {
	ctx := context.Background()
	j := &recordingJudge{mode: judge.ModeLocal, answers: map[string]*float64{}}
	s := newScorer(t, j)

	j.answers[s.Instruction(prompt.ProbeRelevance)] = ptr(1)
	j.answers[s.Instruction(prompt.ProbeFormality)] = ptr(1)
	j.answers[s.Instruction(prompt.ProbeBias)] = nil

	judged := s.Judged(ctx, "Hello world.")
	require.Equal(t, 1.0, *judged.RCS)
	// local formality is the yes/no answer itself, not a distance
	require.Equal(t, 1.0, *judged.FMS)
	require.Nil(t, judged.BDS)

	require.Equal(t, []string{
		"Does this prompt contain enough context to be understood clearly?",
		"Is this prompt too formal compared to a neutral 0.5 target?",
		"Does this prompt contain implicit or explicit bias or stereotypes?",
	}, j.calls)
}

func TestScorerRemoteFormalityMismatch(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name   string
		rating *float64
		want   *float64
	}{
		{"VeryFormal", ptr(0.9), ptr(0.4)},
		{"Neutral", ptr(0.5), ptr(0)},
		{"VeryInformal", ptr(0), ptr(0.5)},
		{"Fallback", ptr(judge.Fallback), ptr(0)},
		{"Undefined", nil, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			j := &recordingJudge{mode: judge.ModeRemote, answers: map[string]*float64{}}
			s := newScorer(t, j)
			j.answers[s.Instruction(prompt.ProbeFormality)] = tc.rating

			got := s.FormalityMismatch(ctx, "Kindly advise.")
			if tc.want == nil {
				require.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			require.InDelta(t, *tc.want, *got, 1e-12)
		})
	}
}

func TestScorerRemoteUsesRemoteInstructions(t *testing.T) {
	j := &recordingJudge{mode: judge.ModeRemote}
	s := newScorer(t, j)
	require.Contains(t, s.Instruction(prompt.ProbeBias), "Reply ONLY with a number")
	require.Equal(t, judge.ModeRemote, s.Mode())
}

func TestScorerLexical(t *testing.T) {
	s := newScorer(t, &recordingJudge{mode: judge.ModeLocal})

	lex := s.Lexical(context.Background(), "Hello world.")
	require.Equal(t, 1.0, lex.G)
	require.Equal(t, 1.0, lex.F)
	require.InDelta(t, lexical.Clarity("Hello world."), lex.C, 1e-12)
	require.InDelta(t, (lex.G+lex.F+lex.C)/3, lex.PQS, 1e-12)
	require.InDelta(t, 1-(2.0/60+lexical.GunningFog("Hello world.")/20)/2, lex.CLS, 1e-9)

	require.Equal(t, 1.0, s.Lexical(context.Background(), "").CLS)
}

func TestNewValidation(t *testing.T) {
	reg, err := prompt.DefaultRegistry()
	require.NoError(t, err)

	_, err = New(nil, nil, reg, 0.5)
	require.Error(t, err)

	_, err = New(&recordingJudge{mode: judge.ModeLocal}, nil, reg, 1.5)
	require.Error(t, err)

	empty, err := prompt.NewRegistry(nil)
	require.NoError(t, err)
	_, err = New(&recordingJudge{mode: judge.ModeLocal}, nil, empty, 0.5)
	require.Error(t, err)
	require.Contains(t, err.Error(), "relevance-local")
}
