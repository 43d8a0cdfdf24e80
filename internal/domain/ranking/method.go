package ranking

import "fmt"

// Method selects the tie-handling rules used when computing a ranking.
type Method string

const (
	// MethodSpearman ranks each judge's scores with the fractional
	// (mid-rank) tie rule and assigns final placements with competition
	// (skip-rank) numbering over the rank sums. This is the default.
	MethodSpearman Method = "spearman"

	// MethodGeneral ranks each judge's scores with the competition
	// (skip-rank) tie rule and assigns final placements densely: tied
	// groups share a rank and the next group gets the next integer.
	MethodGeneral Method = "general"
)

// String returns the string representation of the method.
func (m Method) String() string { return string(m) }

// ParseMethod validates s and returns the corresponding Method.
// An empty string selects MethodSpearman.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case "":
		return MethodSpearman, nil
	case MethodSpearman:
		return MethodSpearman, nil
	case MethodGeneral:
		return MethodGeneral, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
}
