package blueprint

import (
	"strings"

	"github.com/pkg/errors"
)

// ParseOptions configures [Parse].
type ParseOptions struct {
	// AllowHyphens strips a leading "-" or "--" from each key before
	// emission.
	AllowHyphens bool
}

// ParsedPair is one (key, value) emitted by [Parse].
type ParsedPair struct {
	Key   string
	Value ArgValue
}

// ParseWarning records a non-fatal problem found while parsing, such as a
// key rebound within the same layer.
type ParseWarning struct {
	Key     string
	Message string
}

// ParseResult is the output of [Parse]: the ordered pairs found, whether
// a help token was seen, and any non-fatal warnings.
type ParseResult struct {
	Pairs    []ParsedPair
	Help     bool
	Warnings []ParseWarning
}

// Parse reads an ordered sequence of CLI-style tokens into a flat
// mapping and a distinguished help flag, per the grammar in spec §6.1:
//
//	key=value   -> Castable(value)
//	key@=target -> Reference(target); target must be a wildcard-free Path
//	--help, -h  -> sets the help flag; no pair emitted
//
// With AllowHyphens, a leading "-" or "--" on key is stripped before
// emission. A duplicate key within the tokens passed to a single Parse
// call is last-wins, recorded as a [ParseWarning] rather than an error.
func Parse(tokens []string, opts ParseOptions) (ParseResult, error) {
	var result ParseResult

	seen := make(map[string]int) // key -> index into result.Pairs

	for _, tok := range tokens {
		if tok == "--help" || tok == "-h" {
			result.Help = true

			continue
		}

		key, value, err := parseToken(tok, opts)
		if err != nil {
			return ParseResult{}, &ParseError{Token: tok, Cause: err}
		}

		if idx, dup := seen[key]; dup {
			result.Warnings = append(result.Warnings, ParseWarning{
				Key:     key,
				Message: "key rebound within the same layer, last value wins",
			})
			result.Pairs[idx].Value = value

			continue
		}

		seen[key] = len(result.Pairs)
		result.Pairs = append(result.Pairs, ParsedPair{Key: key, Value: value})
	}

	return result, nil
}

// parseToken parses a single non-help token into a key and an ArgValue.
func parseToken(tok string, opts ParseOptions) (string, ArgValue, error) {
	if refKey, target, ok := strings.Cut(tok, "@="); ok {
		if !ValidPath(target) {
			return "", nil, errors.Wrapf(ErrInvalidReferenceTarget, "target %q", target)
		}

		return applyHyphens(refKey, opts), Reference{Target: Path(target)}, nil
	}

	key, value, ok := strings.Cut(tok, "=")
	if !ok {
		return "", nil, ErrMalformedToken
	}

	return applyHyphens(key, opts), Castable{Raw: value}, nil
}

// applyHyphens strips a leading "-" or "--" from key when enabled.
func applyHyphens(key string, opts ParseOptions) string {
	if !opts.AllowHyphens {
		return key
	}

	key = strings.TrimPrefix(key, "--")

	return strings.TrimPrefix(key, "-")
}
