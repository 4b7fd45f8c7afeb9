package ailink

import (
	"context"
	"errors"
	"strings"

	"github.com/promptlens/promptlens/internal/ailink/driver"
)

// MapProviderError classifies a driver error into a JudgeError.
func MapProviderError(err error) *JudgeError {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &JudgeError{Code: CodeTimeout, Message: "provider request timed out"}
	}
	if errors.Is(err, context.Canceled) {
		return &JudgeError{Code: CodeCanceled, Message: "provider request canceled"}
	}

	var perr *driver.ProviderError
	if errors.As(err, &perr) && perr != nil {
		status := perr.StatusCode
		details := safeOneLine(perr.Message)
		switch {
		case status == 401 || status == 403:
			return &JudgeError{Code: CodeAuth, Message: "provider authentication failed", Details: details}
		case status == 429:
			return &JudgeError{Code: CodeRateLimit, Message: "provider rate limited", Details: details}
		case status >= 500 && status <= 599:
			return &JudgeError{Code: CodeUnavailable, Message: "provider unavailable", Details: details}
		case status >= 400 && status <= 499:
			return &JudgeError{Code: CodeBadRequest, Message: "provider rejected request", Details: details}
		default:
			return &JudgeError{Code: CodeError, Message: "provider request failed", Details: details}
		}
	}

	return &JudgeError{Code: CodeError, Message: "provider request failed", Details: safeOneLine(err.Error())}
}

func safeOneLine(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
}
