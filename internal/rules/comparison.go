package rules

import (
	"fmt"
	"strconv"
	"strings"
)

// Operator is a numeric comparison operator.
type Operator string

const (
	OpGreaterThan    Operator = ">"
	OpGreaterOrEqual Operator = ">="
	OpLessThan       Operator = "<"
	OpLessOrEqual    Operator = "<="
)

// Comparison is an operator paired with a threshold, e.g. ">= 10080".
type Comparison struct {
	Op        Operator
	Threshold float64
}

// ParseComparison parses a condition value of the form "[op]number",
// e.g. ">10080" or "<=1.5". The operator prefix is mandatory: a bare
// number is rejected so that the intended comparison is always spelled
// out in the configuration.
func ParseComparison(s string) (Comparison, error) {
	trimmed := strings.TrimSpace(s)

	i := 0
	for i < len(trimmed) && (trimmed[i] == '>' || trimmed[i] == '<' || trimmed[i] == '=') {
		i++
	}
	prefix := trimmed[:i]
	rest := strings.TrimSpace(trimmed[i:])

	if prefix == "" {
		return Comparison{}, fmt.Errorf("%q: missing comparison operator, expected a number prefixed with '>', '>=', '<' or '<='", s)
	}

	var op Operator
	switch prefix {
	case ">":
		op = OpGreaterThan
	case ">=":
		op = OpGreaterOrEqual
	case "<":
		op = OpLessThan
	case "<=":
		op = OpLessOrEqual
	default:
		return Comparison{}, fmt.Errorf("%q: unknown comparison operator %q", s, prefix)
	}

	if rest == "" {
		return Comparison{}, fmt.Errorf("%q: missing threshold value", s)
	}
	threshold, err := strconv.ParseFloat(rest, 64)
	if err != nil {
		return Comparison{}, fmt.Errorf("%q: threshold %q is not a number", s, rest)
	}

	return Comparison{Op: op, Threshold: threshold}, nil
}

// Compare applies the comparison to v. Ties at the threshold only
// satisfy the "or equal" operators.
func (c Comparison) Compare(v float64) bool {
	switch c.Op {
	case OpGreaterThan:
		return v > c.Threshold
	case OpGreaterOrEqual:
		return v >= c.Threshold
	case OpLessThan:
		return v < c.Threshold
	case OpLessOrEqual:
		return v <= c.Threshold
	}
	return false
}

func (c Comparison) String() string {
	return string(c.Op) + " " + strconv.FormatFloat(c.Threshold, 'f', -1, 64)
}
