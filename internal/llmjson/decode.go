// Package llmjson decodes structured replies from language models.
//
// Models are asked to answer with a JSON object but frequently wrap it in a
// markdown code fence. Decoding is done in two explicit steps: strip any
// recognized fence, then unmarshal. A failure at either step is reported as
// ErrMalformed.
package llmjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is returned when a reply cannot be decoded as the expected JSON.
var ErrMalformed = errors.New("malformed model reply")

// StripFences removes markdown code fence markers from a reply.
// Handles ```json ... ``` and ``` ... ```; unfenced input is only trimmed.
func StripFences(reply string) string {
	trimmed := strings.TrimSpace(reply)

	switch {
	case strings.HasPrefix(trimmed, "```json"):
		trimmed = strings.TrimPrefix(trimmed, "```json")
	case strings.HasPrefix(trimmed, "```JSON"):
		trimmed = strings.TrimPrefix(trimmed, "```JSON")
	case strings.HasPrefix(trimmed, "```"):
		trimmed = strings.TrimPrefix(trimmed, "```")
	default:
		return trimmed
	}

	trimmed = strings.TrimSpace(trimmed)
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}

// Decode strips fences from reply and unmarshals the result into v.
func Decode(reply string, v any) error {
	body := StripFences(reply)
	if body == "" {
		return fmt.Errorf("%w: empty reply", ErrMalformed)
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, preview(body), err)
	}
	return nil
}

// DecodeAs is the generic form of Decode.
func DecodeAs[T any](reply string) (T, error) {
	var result T
	err := Decode(reply, &result)
	return result, err
}

func preview(s string) string {
	if len(s) > 100 {
		return fmt.Sprintf("%q...", s[:100])
	}
	return fmt.Sprintf("%q", s)
}
