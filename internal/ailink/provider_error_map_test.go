package ailink

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/promptlens/promptlens/internal/ailink/driver"
)

func TestMapProviderErrorStatusCodes(t *testing.T) {
	cases := []struct {
		name       string
		statusCode int
		wantCode   string
	}{
		{"Auth", 401, CodeAuth},
		{"Forbidden", 403, CodeAuth},
		{"RateLimit", 429, CodeRateLimit},
		{"BadRequest", 400, CodeBadRequest},
		{"Unavailable", 503, CodeUnavailable},
		{"Unknown", 0, CodeError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := &driver.ProviderError{Provider: "openai", StatusCode: tc.statusCode, Message: "boom\nline two"}
			mapped := MapProviderError(fmt.Errorf("wrapped: %w", err))
			require.NotNil(t, mapped)
			require.Equal(t, tc.wantCode, mapped.Code)
			require.Equal(t, "boom line two", mapped.Details)
		})
	}
}

func TestMapProviderErrorContext(t *testing.T) {
	require.Equal(t, CodeTimeout, MapProviderError(fmt.Errorf("call: %w", context.DeadlineExceeded)).Code)
	require.Equal(t, CodeCanceled, MapProviderError(context.Canceled).Code)
}

func TestMapProviderErrorGeneric(t *testing.T) {
	require.Nil(t, MapProviderError(nil))

	mapped := MapProviderError(errors.New("dial tcp: connection refused"))
	require.Equal(t, CodeError, mapped.Code)
	require.Contains(t, mapped.Error(), "connection refused")
}
