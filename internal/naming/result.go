package naming

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Result is the planned filename for one item. Final carries the full
// filename including any collision suffix or sequence number plus the
// extension; Base is the joined attribute slug before either is applied.
type Result struct {
	Base            string `json:"base"`
	Final           string `json:"final"`
	Ext             string `json:"ext"`
	CollisionSuffix int    `json:"collision_suffix,omitempty"`
	Number          int    `json:"number,omitempty"`
}

// IsZero reports whether the result carries no planned name.
func (r Result) IsZero() bool {
	return r.Final == ""
}

// PosterName derives the poster filename that sits next to a video
// output: the final name with its extension swapped for "-poster.webp".
func (r Result) PosterName() string {
	if r.Final == "" {
		return ""
	}
	stem := strings.TrimSuffix(r.Final, "."+r.Ext)
	return stem + "-poster.webp"
}

// ResultFromJSON decodes the planned name stored on a queue item. An
// empty payload yields a zero result, meaning the item has no plan yet.
func ResultFromJSON(payload string) (Result, error) {
	var res Result
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return res, nil
	}
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return Result{}, fmt.Errorf("decode naming result: %w", err)
	}
	return res, nil
}

// ToJSON encodes the result for storage on a queue item.
func (r Result) ToJSON() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encode naming result: %w", err)
	}
	return string(data), nil
}
