package server

import "github.com/spacesedan/reviewsense/internal/view"

type pageData struct {
	Review      string
	Characters  int
	Pending     bool
	CanSubmit   bool
	SubmitLabel string
	Badge       *view.Badge
}

func newPageData(s view.State) pageData {
	data := pageData{
		Review:      s.Review,
		Characters:  s.CharCount(),
		Pending:     s.Pending,
		CanSubmit:   s.CanSubmit(),
		SubmitLabel: s.SubmitLabel(),
	}
	if badge, ok := s.Badge(); ok {
		data.Badge = &badge
	}
	return data
}

type badgeResponse struct {
	Kind string `json:"kind"`
	Icon string `json:"icon"`
	Text string `json:"text"`
}

type stateResponse struct {
	Review      string         `json:"review"`
	Characters  int            `json:"characters"`
	Pending     bool           `json:"pending"`
	CanSubmit   bool           `json:"can_submit"`
	SubmitLabel string         `json:"submit_label"`
	Result      string         `json:"result"`
	Label       string         `json:"label,omitempty"`
	Badge       *badgeResponse `json:"badge"`
}

func newStateResponse(s view.State) stateResponse {
	resp := stateResponse{
		Review:      s.Review,
		Characters:  s.CharCount(),
		Pending:     s.Pending,
		CanSubmit:   s.CanSubmit(),
		SubmitLabel: s.SubmitLabel(),
		Result:      s.Result.String(),
		Label:       s.Label,
	}
	if badge, ok := s.Badge(); ok {
		resp.Badge = &badgeResponse{Kind: string(badge.Kind), Icon: badge.Icon, Text: badge.Text}
	}
	return resp
}
