// File: services/intelligence/parser.go
package intelligence

import (
	"encoding/json"
	"strings"

	"concierge/models"
)

var knownIntents = map[string]bool{
	models.IntentQuery:  true,
	models.IntentBook:   true,
	models.IntentModify: true,
	models.IntentCancel: true,
	models.IntentInfo:   true,
	models.IntentChat:   true,
}

// ParseIntent extracts the structured action proposal from a collaborator
// completion. Plain text with no JSON object is treated as a chat reply;
// malformed JSON or an action outside the closed set comes back as
// IntentUnknown so the caller asks for clarification instead of acting.
func ParseIntent(raw string) models.Intent {
	payload, ok := extractJSON(raw)
	if !ok {
		text := strings.TrimSpace(raw)
		if text == "" {
			return models.Intent{Kind: models.IntentUnknown}
		}
		return models.Intent{Kind: models.IntentChat, Reply: text}
	}

	var intent models.Intent
	if err := json.Unmarshal([]byte(payload), &intent); err != nil {
		return models.Intent{Kind: models.IntentUnknown}
	}
	if !knownIntents[intent.Kind] {
		return models.Intent{Kind: models.IntentUnknown}
	}
	return intent
}

// extractJSON returns the first balanced top-level JSON object in s. Models
// routinely wrap their JSON in code fences or a lead-in sentence.
func extractJSON(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
