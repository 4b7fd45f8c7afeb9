package ailink

import "fmt"

// Classified judge failure codes.
const (
	CodeTimeout     = "JUDGE_PROVIDER_TIMEOUT"
	CodeAuth        = "JUDGE_PROVIDER_AUTH"
	CodeRateLimit   = "JUDGE_PROVIDER_RATE_LIMIT"
	CodeUnavailable = "JUDGE_PROVIDER_UNAVAILABLE"
	CodeBadRequest  = "JUDGE_PROVIDER_BAD_REQUEST"
	CodeCanceled    = "JUDGE_PROVIDER_CANCELED"
	CodeError       = "JUDGE_PROVIDER_ERROR"
)

// JudgeError captures a classified judge failure without breaking the batch.
type JudgeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *JudgeError) Error() string {
	if e == nil {
		return "judge error"
	}
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
