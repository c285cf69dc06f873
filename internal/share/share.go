// Package share converts a peer's progress card to and from the short code
// users paste to each other.
package share

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sadopc/studyplan/internal/study"
)

// ErrInvalidShareCode is returned for codes that do not decode to a card
// with both an id and a name.
var ErrInvalidShareCode = errors.New("invalid share code")

// Encode returns the share code for fs.
func Encode(fs study.FriendStats) (string, error) {
	data, err := json.Marshal(fs)
	if err != nil {
		return "", fmt.Errorf("marshal friend stats: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Decode parses a share code. Surrounding whitespace is ignored.
func Decode(code string) (study.FriendStats, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return study.FriendStats{}, ErrInvalidShareCode
	}
	data, err := base64.StdEncoding.DecodeString(code)
	if err != nil {
		return study.FriendStats{}, fmt.Errorf("%w: %v", ErrInvalidShareCode, err)
	}
	var fs study.FriendStats
	if err := json.Unmarshal(data, &fs); err != nil {
		return study.FriendStats{}, fmt.Errorf("%w: %v", ErrInvalidShareCode, err)
	}
	if fs.ID == "" || fs.Name == "" {
		return study.FriendStats{}, fmt.Errorf("%w: missing id or name", ErrInvalidShareCode)
	}
	return fs, nil
}
