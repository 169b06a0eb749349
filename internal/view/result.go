package view

import "github.com/spacesedan/reviewsense/internal/models"

// Result is the outcome of the most recent submission.
type Result int

const (
	ResultUnset Result = iota
	ResultPositive
	ResultNegative
	ResultError
	// ResultUnrecognized is a label the predictor returned that the page has no badge for.
	ResultUnrecognized
)

func (r Result) String() string {
	switch r {
	case ResultUnset:
		return "unset"
	case ResultPositive:
		return "positive"
	case ResultNegative:
		return "negative"
	case ResultError:
		return "error"
	case ResultUnrecognized:
		return "unrecognized"
	default:
		return "unknown"
	}
}

// ParseResult maps a predictor label onto a Result. Matching is exact, as the
// predictor contract only ever produces the capitalized labels.
func ParseResult(label string) Result {
	switch label {
	case models.SentimentPositive:
		return ResultPositive
	case models.SentimentNegative:
		return ResultNegative
	default:
		return ResultUnrecognized
	}
}
