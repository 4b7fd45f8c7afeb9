package ailink

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPreview(t *testing.T) {
	require.Equal(t, "Yes", Preview(" Yes\n", 10))
	require.Equal(t, "abc...", Preview("abcdef", 3))
	require.Equal(t, "abcdef", Preview("abcdef", 0))
	// never splits a multi-byte rune
	require.Equal(t, "é...", Preview("ééé", 3))
}
