package generator

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidIdentifier is returned when an identifier fails the quoting
// policy. Compilation fails before any text is emitted.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// Quoter is the identifier-quoting policy injected into the compiler.
type Quoter interface {
	// Quote validates and quotes a single identifier.
	Quote(name string) (string, error)
}

// BacktickQuoter quotes identifiers the MySQL-family way.
type BacktickQuoter struct{}

// Quote wraps name in backticks, doubling any embedded backtick.
func (BacktickQuoter) Quote(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrInvalidIdentifier)
	}
	if strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: %q contains a NUL byte", ErrInvalidIdentifier, name)
	}
	return "`" + strings.ReplaceAll(name, "`", "``") + "`", nil
}
