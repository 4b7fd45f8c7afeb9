package grammar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultLanguageToolURL = "http://localhost:8081"
	defaultLanguage        = "en-US"
)

// LanguageTool checks text against a LanguageTool server via its HTTP API.
type LanguageTool struct {
	BaseURL    string
	Language   string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// NewLanguageTool returns a client with defaults applied.
func NewLanguageTool(baseURL, language string) *LanguageTool {
	u := strings.TrimSpace(baseURL)
	if u == "" {
		u = defaultLanguageToolURL
	}
	lang := strings.TrimSpace(language)
	if lang == "" {
		lang = defaultLanguage
	}
	return &LanguageTool{BaseURL: u, Language: lang}
}

// Name returns the checker identifier.
func (c *LanguageTool) Name() string {
	return "languagetool"
}

type checkResponse struct {
	Matches []checkMatch `json:"matches"`
}

type checkMatch struct {
	Message string `json:"message"`
	Offset  int    `json:"offset"`
	Length  int    `json:"length"`
	Rule    struct {
		ID string `json:"id"`
	} `json:"rule"`
}

// Check posts text to /v2/check and returns the flagged matches.
func (c *LanguageTool) Check(ctx context.Context, text string) ([]Match, error) {
	if c == nil {
		return nil, fmt.Errorf("languagetool client not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	form := url.Values{}
	form.Set("text", text)
	form.Set("language", c.Language)

	endpoint := strings.TrimRight(c.BaseURL, "/") + "/v2/check"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("languagetool request failed: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("languagetool returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed checkResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	matches := make([]Match, 0, len(parsed.Matches))
	for _, m := range parsed.Matches {
		matches = append(matches, Match{
			Message: m.Message,
			RuleID:  m.Rule.ID,
			Offset:  m.Offset,
			Length:  m.Length,
		})
	}
	return matches, nil
}
