package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractPrompts(t *testing.T) {
	t.Run("BareArrayOfStrings", func(t *testing.T) {
		got, err := ExtractPrompts([]byte(`["Hello world.", "Second prompt"]`))
		require.NoError(t, err)
		require.Equal(t, []string{"Hello world.", "Second prompt"}, got.Prompts)
		require.Zero(t, got.Skipped)
	})

	t.Run("ObjectWithPromptsField", func(t *testing.T) {
		got, err := ExtractPrompts([]byte(`{"prompts": ["a b c", {"prompt": "d e f"}]}`))
		require.NoError(t, err)
		require.Equal(t, []string{"a b c", "d e f"}, got.Prompts)
	})

	t.Run("EmptyStringIsSkipped", func(t *testing.T) {
		got, err := ExtractPrompts([]byte(`{"prompts": [""]}`))
		require.NoError(t, err)
		require.Empty(t, got.Prompts)
		require.Equal(t, 1, got.Skipped)
	})

	t.Run("NonStringElementsAreSkipped", func(t *testing.T) {
		got, err := ExtractPrompts([]byte(`[42, null, true, {"prompt": 7}, {"text": "x"}, "kept"]`))
		require.NoError(t, err)
		require.Equal(t, []string{"kept"}, got.Prompts)
		require.Equal(t, 5, got.Skipped)
	})

	t.Run("WhitespaceOnlyIsKept", func(t *testing.T) {
		got, err := ExtractPrompts([]byte(`["   ", {"prompt": "\n\t"}, ""]`))
		require.NoError(t, err)
		require.Equal(t, []string{"   ", "\n\t"}, got.Prompts)
		require.Equal(t, 1, got.Skipped)
	})

	t.Run("PromptTextIsNotTrimmed", func(t *testing.T) {
		got, err := ExtractPrompts([]byte(`["  padded  "]`))
		require.NoError(t, err)
		require.Equal(t, []string{"  padded  "}, got.Prompts)
	})

	t.Run("OrderIsPreserved", func(t *testing.T) {
		got, err := ExtractPrompts([]byte(`["c", "", "a", {"prompt": "b"}]`))
		require.NoError(t, err)
		require.Equal(t, []string{"c", "a", "b"}, got.Prompts)
	})
}

func TestExtractPromptsMalformed(t *testing.T) {
	cases := map[string]string{
		"Number":             `42`,
		"String":             `"just text"`,
		"Null":               `null`,
		"ObjectWithoutField": `{"items": ["a"]}`,
		"PromptsNotArray":    `{"prompts": "a"}`,
		"InvalidJSON":        `[1, 2`,
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := ExtractPrompts([]byte(input))
			require.Nil(t, got)
			require.Error(t, err)

			var inputErr *InputError
			require.True(t, errors.As(err, &inputErr))
			require.NotEmpty(t, inputErr.Reason)
		})
	}
}

func TestRound3(t *testing.T) {
	require.Equal(t, 0.333, Round3(1.0/3.0))
	require.Equal(t, 0.667, Round3(2.0/3.0))
	require.Equal(t, 1.0, Round3(0.9996))
	require.Nil(t, Round3Ptr(nil))
	require.Equal(t, 0.5, *Round3Ptr(Float(0.50049)))
}

func TestReportCounters(t *testing.T) {
	tooLong := true
	fits := false
	report := &Report{Records: []ScoreRecord{
		{Prompt: "a", TooLong: &tooLong},
		{Prompt: "b", TooLong: &fits, RCS: Float(1), FMS: Float(0), BDS: Float(0)},
		{Prompt: "c", RCS: Float(0.5), FMS: Float(0.5), BDS: Float(0.5)},
	}}

	require.Equal(t, 1, report.TooLong())
	require.Equal(t, 1, report.Undefined())

	var empty *Report
	require.Zero(t, empty.TooLong())
	require.Zero(t, empty.Undefined())
}
