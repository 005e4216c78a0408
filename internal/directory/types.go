package directory

import "time"

// ProfileSummary is the minimal profile record returned by a search,
// enough to render a result list. Username is the identity within a
// result set.
type ProfileSummary struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Headline string `json:"headline,omitempty"`
	Picture  string `json:"picture,omitempty"`
}

// ContactInfo holds optional contact details on a full profile.
type ContactInfo struct {
	Email string `json:"email,omitempty"`
}

// Link is a named external address attached to a profile.
type Link struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Strength is a named skill with a proficiency level.
type Strength struct {
	Name        string `json:"name"`
	Proficiency string `json:"proficiency,omitempty"`
}

// Experience is one position on a profile. StartMonth and EndMonth are
// nil when the directory reports no date; see FormatMonth for how absent
// months render.
type Experience struct {
	Name         string     `json:"name"`
	Organization string     `json:"organization,omitempty"`
	Location     string     `json:"location,omitempty"`
	Remote       bool       `json:"remote,omitempty"`
	StartMonth   *time.Time `json:"fromMonth,omitempty"`
	EndMonth     *time.Time `json:"toMonth,omitempty"`
}

// ProfileDetail is the full profile record fetched on demand.
type ProfileDetail struct {
	Username    string       `json:"username"`
	Name        string       `json:"name"`
	Headline    string       `json:"headline,omitempty"`
	Picture     string       `json:"picture,omitempty"`
	Contact     ContactInfo  `json:"contact"`
	Links       []Link       `json:"links,omitempty"`
	Strengths   []Strength   `json:"strengths,omitempty"`
	Experiences []Experience `json:"experiences,omitempty"`
}

// LinkedInURL returns the address of the first link named exactly
// "linkedin". The match is case-sensitive; the second value is false
// when no such link exists.
func (p *ProfileDetail) LinkedInURL() (string, bool) {
	for _, l := range p.Links {
		if l.Name == "linkedin" {
			return l.Address, true
		}
	}
	return "", false
}
