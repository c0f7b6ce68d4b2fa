package model

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Quarter identifies a fiscal quarter.
type Quarter string

const (
	Q1 Quarter = "Q1"
	Q2 Quarter = "Q2"
	Q3 Quarter = "Q3"
	Q4 Quarter = "Q4"
)

// Ordinal returns the quarter number (1-4), or 0 for an invalid quarter.
func (q Quarter) Ordinal() int {
	switch q {
	case Q1:
		return 1
	case Q2:
		return 2
	case Q3:
		return 3
	case Q4:
		return 4
	}
	return 0
}

// Valid reports whether q is one of Q1-Q4.
func (q Quarter) Valid() bool {
	return q.Ordinal() != 0
}

// QuarterFromOrdinal returns the quarter for a 1-4 ordinal.
func QuarterFromOrdinal(n int) (Quarter, error) {
	if n < 1 || n > 4 {
		return "", eris.Errorf("model: quarter ordinal out of range: %d", n)
	}
	return Quarter(fmt.Sprintf("Q%d", n)), nil
}

// ParseQuarter accepts "Q1".."Q4" (case-insensitive) or a bare digit "1".."4".
func ParseQuarter(s string) (Quarter, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) == 1 && s[0] >= '1' && s[0] <= '4' {
		s = "Q" + s
	}
	q := Quarter(s)
	if !q.Valid() {
		return "", eris.Errorf("model: invalid quarter %q", s)
	}
	return q, nil
}
