package view

type BadgeKind string

const (
	BadgeAffirmative BadgeKind = "affirmative"
	BadgeNegative    BadgeKind = "negative"
	BadgeWarning     BadgeKind = "warning"
)

type Badge struct {
	Kind BadgeKind
	Icon string
	Text string
}

// RenderBadge returns the badge for r. Unset and unrecognized results render nothing.
func RenderBadge(r Result) (Badge, bool) {
	switch r {
	case ResultPositive:
		return Badge{Kind: BadgeAffirmative, Icon: "👍", Text: "Positive Review"}, true
	case ResultNegative:
		return Badge{Kind: BadgeNegative, Icon: "👎", Text: "Negative Review"}, true
	case ResultError:
		return Badge{Kind: BadgeWarning, Icon: "⚠️", Text: "Error analyzing review"}, true
	case ResultUnset, ResultUnrecognized:
		return Badge{}, false
	default:
		return Badge{}, false
	}
}
