package rating

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ratingPayload is the JSON object the prompt asks for. Fields stay raw so a
// present-but-mistyped value falls back to the defaults instead of failing
// the whole parse.
type ratingPayload struct {
	Rating json.RawMessage `json:"rating"`
	Reason json.RawMessage `json:"reason"`
}

// Normalize converts raw provider text into a Result. It never fails: text
// that is not a JSON object becomes an Error result carrying the raw text.
func Normalize(raw string, includeReason bool) Result {
	payload, ok := decodePayload(raw)
	if !ok {
		return errorResult(invalidResponsePrefix + raw)
	}

	result := Result{
		Rating: RatingUnknown,
		Reason: ReasonNotRequested,
	}
	if value, ok := rawString(payload.Rating); ok {
		result.Rating = canonicalRating(value)
	}
	if includeReason {
		if reason, ok := rawString(payload.Reason); ok && strings.TrimSpace(reason) != "" {
			result.Reason = strings.TrimSpace(reason)
		}
	}
	return result
}

func decodePayload(raw string) (ratingPayload, bool) {
	body := stripCodeFence(strings.TrimSpace(raw))
	if payload, ok := decodeObject(body); ok {
		return payload, true
	}
	// Chat providers sometimes wrap the object in prose.
	if start := strings.Index(body, "{"); start >= 0 {
		if end := strings.LastIndex(body, "}"); end > start {
			return decodeObject(body[start : end+1])
		}
	}
	return ratingPayload{}, false
}

func decodeObject(text string) (ratingPayload, bool) {
	var payload ratingPayload
	trimmed := bytes.TrimSpace([]byte(text))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return payload, false
	}
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return payload, false
	}
	return payload, true
}

// stripCodeFence removes a leading ``` (with optional language tag) and the
// trailing ``` when both are present.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") || len(text) < 6 || !strings.HasSuffix(text, "```") {
		return text
	}
	body := text[3 : len(text)-3]
	if newline := strings.IndexByte(body, '\n'); newline >= 0 {
		tag := strings.TrimSpace(body[:newline])
		if tag == "" || isFenceTag(tag) {
			body = body[newline+1:]
		}
	} else if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = body[4:]
	}
	return strings.TrimSpace(body)
}

func isFenceTag(tag string) bool {
	for _, r := range tag {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return false
		}
	}
	return true
}

func rawString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", false
	}
	return value, true
}

// canonicalRating maps a provider label onto the closed category set.
// Decorations used by the prompt itself, such as "SU (semua umur)", are
// accepted; anything unrecognised is reported as unknown.
func canonicalRating(value string) Rating {
	label := value
	if idx := strings.IndexByte(label, '('); idx >= 0 {
		label = label[:idx]
	}
	label = strings.ToUpper(strings.Join(strings.Fields(label), ""))
	switch label {
	case "SU", "SEMUAUMUR":
		return RatingSU
	case "13+":
		return Rating13
	case "17+":
		return Rating17
	case "21+":
		return Rating21
	default:
		return RatingUnknown
	}
}
