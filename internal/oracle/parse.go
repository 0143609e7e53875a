package oracle

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/JonMunkholm/stockmatch/internal/matching"
)

var errNoJSON = errors.New("oracle: no JSON object in answer")

// rawVerdict tolerates the shapes models actually return: ids as numbers
// or strings, confidence as a float.
type rawVerdict struct {
	BestMatchID json.RawMessage `json:"bestMatchId"`
	Confidence  float64         `json:"confidence"`
	Reasoning   string          `json:"reasoning"`
}

// parseVerdict extracts the verdict object from a model answer. Code fences
// and prose around the object are ignored.
func parseVerdict(content string) (*matching.Verdict, error) {
	obj, err := extractObject(content)
	if err != nil {
		return nil, err
	}

	var raw rawVerdict
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return nil, fmt.Errorf("oracle: decode verdict: %w", err)
	}

	id, err := parseID(raw.BestMatchID)
	if err != nil {
		return nil, err
	}

	return &matching.Verdict{
		BestMatchID: id,
		Confidence:  clampConfidence(raw.Confidence),
		Reasoning:   strings.TrimSpace(raw.Reasoning),
	}, nil
}

func extractObject(content string) (string, error) {
	s := strings.TrimSpace(content)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", errNoJSON
	}
	return s[start : end+1], nil
}

func parseID(raw json.RawMessage) (*int64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil, nil
	}

	s = strings.Trim(s, `"`)
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "none") {
		return nil, nil
	}

	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &id, nil
	}
	// some models answer 12.0
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) {
		id := int64(f)
		return &id, nil
	}
	return nil, fmt.Errorf("oracle: bestMatchId %q is not an id", s)
}

func clampConfidence(c float64) int {
	if math.IsNaN(c) {
		return 0
	}
	return int(math.Round(min(max(c, 0), 100)))
}
