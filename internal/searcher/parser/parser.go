// Package parser decodes query lines of the form "<queryID> <k> <text>".
package parser

import (
	"fmt"
	"strings"

	"github.com/quaero-search/quaero/internal/indexer/tokenizer"
	qerrors "github.com/quaero-search/quaero/pkg/errors"
)

// Query is a parsed query line.
type Query struct {
	ID int
	// K is the requested number of results.
	K    int
	Text string
	// Normalized is the full line with the header digits blanked and the
	// remainder folded; it is what the output block echoes back.
	Normalized string
	Tokens     []tokenizer.Token
}

// Parse splits a query line into its ID, requested result count, and
// tokenized free text. The two header fields must be decimal digit runs,
// each terminated by a single space.
func Parse(line string) (*Query, error) {
	id, rest, err := readField(line)
	if err != nil {
		return nil, fmt.Errorf("%w: query id in %q", qerrors.ErrMalformedQueryHeader, line)
	}
	k, text, err := readField(rest)
	if err != nil {
		return nil, fmt.Errorf("%w: result count in %q", qerrors.ErrMalformedQueryHeader, line)
	}
	blanked := strings.Repeat(" ", len(line)-len(text)) + text
	return &Query{
		ID:         id,
		K:          k,
		Text:       text,
		Normalized: tokenizer.Fold(blanked),
		Tokens:     tokenizer.Tokenize(text),
	}, nil
}

// readField parses a leading run of ASCII digits terminated by a space and
// returns the value and the remainder after the space.
func readField(s string) (int, string, error) {
	i := 0
	val := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		val = val*10 + int(s[i]-'0')
		i++
	}
	if i == 0 || i >= len(s) || s[i] != ' ' {
		return 0, "", qerrors.ErrMalformedQueryHeader
	}
	return val, s[i+1:], nil
}
