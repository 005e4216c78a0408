package api

import (
	"github.com/starford/mannaz/internal/detail"
	"github.com/starford/mannaz/internal/directory"
	"github.com/starford/mannaz/internal/search"
)

// QueryRequest is the body for query and filter updates.
type QueryRequest struct {
	Text string `json:"text"`
}

// SearchState is the search controller snapshot as served to the UI.
type SearchState struct {
	Query      string                     `json:"query"`
	Loading    bool                       `json:"loading"`
	Error      string                     `json:"error,omitempty"`
	Page       int                        `json:"page"`
	TotalPages int                        `json:"totalPages"`
	Total      int                        `json:"total"`
	Results    []directory.ProfileSummary `json:"results"`
}

func toSearchState(s search.Snapshot) SearchState {
	results := s.Visible
	if results == nil {
		results = []directory.ProfileSummary{}
	}
	return SearchState{
		Query:      s.Query,
		Loading:    s.Loading,
		Error:      s.Message,
		Page:       s.Page,
		TotalPages: s.TotalPages,
		Total:      s.Total,
		Results:    results,
	}
}

// StrengthRow is one two-column row of the strengths grid. Right is
// absent on an odd final row.
type StrengthRow struct {
	Left  directory.Strength  `json:"left"`
	Right *directory.Strength `json:"right,omitempty"`
}

// ExperienceView is an experience with its months already formatted per
// the date contract ("January 2, 2006" or "Present").
type ExperienceView struct {
	Name         string `json:"name"`
	Organization string `json:"organization,omitempty"`
	Location     string `json:"location,omitempty"`
	Remote       bool   `json:"remote,omitempty"`
	Start        string `json:"start"`
	End          string `json:"end"`
}

// ProfileView is the selected profile as served to the UI.
type ProfileView struct {
	Username    string           `json:"username"`
	Name        string           `json:"name"`
	Headline    string           `json:"headline,omitempty"`
	Picture     string           `json:"picture,omitempty"`
	Email       string           `json:"email,omitempty"`
	LinkedIn    string           `json:"linkedIn,omitempty"`
	Experiences []ExperienceView `json:"experiences"`
}

// ProfileState is the detail controller snapshot as served to the UI.
type ProfileState struct {
	Selected           *ProfileView    `json:"selected,omitempty"`
	Loading            map[string]bool `json:"loading"`
	Error              string          `json:"error,omitempty"`
	FilterText         string          `json:"filterText"`
	StrengthPage       int             `json:"strengthPage"`
	StrengthTotalPages int             `json:"strengthTotalPages"`
	StrengthTotal      int             `json:"strengthTotal"`
	Strengths          []StrengthRow   `json:"strengths"`
}

func toProfileState(s detail.Snapshot) ProfileState {
	st := ProfileState{
		Loading:            s.Loading,
		Error:              s.Message,
		FilterText:         s.FilterText,
		StrengthPage:       s.StrengthPage,
		StrengthTotalPages: s.StrengthTotalPages,
		StrengthTotal:      s.StrengthTotal,
		Strengths:          []StrengthRow{},
	}
	for _, pair := range s.VisibleStrengths {
		st.Strengths = append(st.Strengths, StrengthRow{Left: pair.First, Right: pair.Second})
	}
	if s.Selected != nil {
		st.Selected = toProfileView(s.Selected, s.LinkedIn)
	}
	return st
}

func toProfileView(p *directory.ProfileDetail, linkedIn string) *ProfileView {
	v := &ProfileView{
		Username:    p.Username,
		Name:        p.Name,
		Headline:    p.Headline,
		Picture:     p.Picture,
		Email:       p.Contact.Email,
		LinkedIn:    linkedIn,
		Experiences: []ExperienceView{},
	}
	for _, e := range p.Experiences {
		v.Experiences = append(v.Experiences, ExperienceView{
			Name:         e.Name,
			Organization: e.Organization,
			Location:     e.Location,
			Remote:       e.Remote,
			Start:        directory.FormatMonth(e.StartMonth),
			End:          directory.FormatMonth(e.EndMonth),
		})
	}
	return v
}
