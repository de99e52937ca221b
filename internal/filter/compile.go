// Package filter turns free-text search input into safe matchers and builds
// filtered, sorted views of the transaction list.
package filter

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidPattern wraps every user pattern that fails to compile. Nothing
// in this package lets a pattern error escape as a panic.
var ErrInvalidPattern = errors.New("invalid search pattern")

var envelopeRe = regexp.MustCompile(`^/(.+)/([a-zA-Z]*)$`)

// Matcher is a compiled search pattern applied against transaction fields.
// A nil Matcher means "no filter": it matches everything.
type Matcher struct {
	re *regexp.Regexp
}

// Compile builds a Matcher from search-box input. Blank input returns
// (nil, nil). Input in /pattern/flags form compiles pattern under those
// flags; anything else compiles the whole input case-insensitively.
func Compile(input string) (*Matcher, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}
	body, flags := input, "i"
	if m := envelopeRe.FindStringSubmatch(input); m != nil {
		body, flags = m[1], m[2]
	}
	prefix, err := flagPrefix(flags)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(prefix + body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return &Matcher{re: re}, nil
}

// flagPrefix maps JS-style flags onto a Go inline flag group. g, u and y are
// accepted no-ops: Go matching is stateless and UTF-8 native, so they have
// nothing to switch on.
func flagPrefix(flags string) (string, error) {
	var inline strings.Builder
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's':
			if !strings.ContainsRune(inline.String(), f) {
				inline.WriteRune(f)
			}
		case 'g', 'u', 'y':
		default:
			return "", fmt.Errorf("%w: unknown flag %q", ErrInvalidPattern, string(f))
		}
	}
	if inline.Len() == 0 {
		return "", nil
	}
	return "(?" + inline.String() + ")", nil
}
