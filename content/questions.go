package content

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"skillsprint/core"
)

const (
	minQuestions = 3
	maxQuestions = 5
)

// Pre-compiled patterns for JSON extraction from model responses.
var (
	// jsonArrayBlockPattern matches JSON arrays inside markdown code blocks.
	jsonArrayBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\[.*\\])\\s*```")
	// jsonArrayPattern matches any JSON array (greedy fallback).
	jsonArrayPattern = regexp.MustCompile(`(?s)\[[\s\S]*\]`)
	// trailingCommaPattern matches trailing commas before ] or }.
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// ExtractJSONArray extracts a JSON array from a model response string.
// Models commonly wrap output in markdown fences or add trailing commas.
func ExtractJSONArray(content string) string {
	if matches := jsonArrayBlockPattern.FindStringSubmatch(content); len(matches) > 1 {
		return trailingCommaPattern.ReplaceAllString(matches[1], "$1")
	}
	if match := jsonArrayPattern.FindString(content); match != "" {
		return trailingCommaPattern.ReplaceAllString(match, "$1")
	}
	return ""
}

// ParseQuestions decodes a model response into validated quiz questions.
// Invalid entries are dropped, the list is padded up to 3 and trimmed to 5.
func ParseQuestions(response string) ([]core.Question, error) {
	raw := ExtractJSONArray(response)
	if raw == "" {
		return nil, fmt.Errorf("no JSON array found in response")
	}

	var candidates []core.Question
	if err := json.Unmarshal([]byte(raw), &candidates); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}

	valid := make([]core.Question, 0, len(candidates))
	for i, q := range candidates {
		if !q.Valid() {
			continue
		}
		if q.ID == "" {
			q.ID = strconv.Itoa(i + 1)
		}
		if q.Explanation == "" {
			q.Explanation = "No explanation provided."
		}
		valid = append(valid, q)
	}

	for len(valid) < minQuestions {
		valid = append(valid, padQuestion(len(valid)+1))
	}
	if len(valid) > maxQuestions {
		valid = valid[:maxQuestions]
	}
	return valid, nil
}
