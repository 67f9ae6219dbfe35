package domain

import (
	"regexp"
	"strings"
)

var validUsername = regexp.MustCompile(`^[A-Za-z0-9_.-]{2,40}$`)

// ExtractUsername accepts either a bare username or a kick.com URL and
// returns the username. Query strings and fragments are dropped.
func ExtractUsername(input string) (string, error) {
	s := strings.TrimSpace(input)
	if i := strings.Index(s, "kick.com/"); i >= 0 {
		s = s[i+len("kick.com/"):]
		if j := strings.IndexAny(s, "?#"); j >= 0 {
			s = s[:j]
		}
		s, _, _ = strings.Cut(strings.Trim(s, "/"), "/")
	}
	s = strings.TrimPrefix(s, "@")
	if !validUsername.MatchString(s) {
		return "", ErrInvalidUsername
	}
	return s, nil
}
