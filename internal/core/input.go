package core

import (
	"encoding/json"
	"fmt"
)

const (
	promptsField = "prompts"
	promptField  = "prompt"
)

// InputError reports a top-level input shape that cannot be analyzed.
type InputError struct {
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	if e == nil {
		return "invalid input"
	}
	if e.Err != nil {
		return fmt.Sprintf("invalid input: %s: %v", e.Reason, e.Err)
	}
	return "invalid input: " + e.Reason
}

func (e *InputError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Extraction holds the prompts resolved from an input document.
type Extraction struct {
	Prompts []string
	Skipped int
}

// ExtractPrompts resolves prompt strings from raw JSON.
//
// The document must be an array or an object with a "prompts" array. Each
// element is either a string or an object with a string "prompt" field;
// anything else, including the empty string, is skipped and counted.
// Whitespace-only strings are kept.
func ExtractPrompts(data []byte) (*Extraction, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &InputError{Reason: "not valid JSON", Err: err}
	}

	var elements []any
	switch typed := doc.(type) {
	case []any:
		elements = typed
	case map[string]any:
		raw, ok := typed[promptsField]
		if !ok {
			return nil, &InputError{Reason: fmt.Sprintf("object has no %q field", promptsField)}
		}
		list, ok := raw.([]any)
		if !ok {
			return nil, &InputError{Reason: fmt.Sprintf("%q field is not an array", promptsField)}
		}
		elements = list
	default:
		return nil, &InputError{Reason: fmt.Sprintf("expected an array or an object with %q, got %s", promptsField, jsonKind(doc))}
	}

	result := &Extraction{Prompts: make([]string, 0, len(elements))}
	for _, element := range elements {
		prompt, ok := extractPrompt(element)
		if !ok {
			result.Skipped++
			continue
		}
		result.Prompts = append(result.Prompts, prompt)
	}
	return result, nil
}

func extractPrompt(element any) (string, bool) {
	var value any = element
	if obj, ok := element.(map[string]any); ok {
		value = obj[promptField]
	}
	text, ok := value.(string)
	if !ok || text == "" {
		return "", false
	}
	return text, true
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	default:
		return fmt.Sprintf("%T", v)
	}
}
