// Package llm turns free-form input into task titles with Gemini.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"
)

// ErrNoAPIKey is returned by NewSplitter when no key is configured.
var ErrNoAPIKey = errors.New("no Gemini API key configured")

const (
	splitRule = `3. Split the input into individual tasks. Do NOT group related items. For example, "Buy apples, potatoes and milk" should be THREE tasks: "Buy apples", "Buy potatoes", "Buy milk".`
	groupRule = `3. Group related items together into a single task. For example, "Buy apples, potatoes and milk" should be ONE task like "Grocery shopping: apples, potatoes, milk".`

	promptTemplate = `You are a helpful assistant. Take the following user input and split it into a list of distinct tasks.

Rules:
1. Return ONLY a valid JSON array of strings.
2. Do not include markdown formatting.
%s
4. Keep unrelated tasks separate. For example, "Buy milk and wash the car" should be TWO tasks: "Buy milk" and "Wash the car".

Input: %q`
)

// Splitter asks a Gemini model to break input into tasks.
type Splitter struct {
	svc    *generativelanguage.Service
	model  string
	logger *slog.Logger
}

func NewSplitter(ctx context.Context, apiKey, model string, logger *slog.Logger, opts ...option.ClientOption) (*Splitter, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := generativelanguage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Gemini service: %w", err)
	}
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}
	return &Splitter{svc: svc, model: model, logger: logger}, nil
}

func buildPrompt(input string, split bool) string {
	rule := groupRule
	if split {
		rule = splitRule
	}
	return fmt.Sprintf(promptTemplate, rule, input)
}

// ParseTasks returns the task titles found in text. split selects one task
// per item over grouping related items.
func (s *Splitter) ParseTasks(ctx context.Context, text string, split bool) ([]string, error) {
	req := &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{{
			Role:  "user",
			Parts: []*generativelanguage.Part{{Text: buildPrompt(text, split)}},
		}},
		GenerationConfig: &generativelanguage.GenerationConfig{
			ResponseMimeType: "application/json",
		},
	}
	resp, err := s.svc.Models.GenerateContent(s.model, req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	var sb strings.Builder
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			sb.WriteString(p.Text)
		}
		break
	}
	tasks, err := parseTaskList(sb.String())
	if err != nil {
		return nil, err
	}
	s.logger.Debug("input split into tasks", slog.Int("count", len(tasks)))
	return tasks, nil
}

// parseTaskList decodes a JSON string array, tolerating a markdown fence.
func parseTaskList(raw string) ([]string, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return nil, nil
	}

	var items []string
	if err := json.Unmarshal([]byte(clean), &items); err != nil {
		return nil, fmt.Errorf("unexpected model output %q: %w", raw, err)
	}
	out := items[:0]
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out, nil
}

// Lines is the offline splitter: one task per non-empty line, or the whole
// input as one task when grouping.
type Lines struct{}

func (Lines) ParseTasks(_ context.Context, text string, split bool) ([]string, error) {
	if !split {
		if t := strings.TrimSpace(text); t != "" {
			return []string{t}, nil
		}
		return nil, nil
	}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out, nil
}
