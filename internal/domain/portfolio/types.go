package portfolio

import "time"

// DefaultTitle is the title of the portfolio provisioned at signup.
const DefaultTitle = "My Portfolio"

// ThemeSettings are opaque presentation hints for the frontend.
type ThemeSettings struct {
	PrimaryColor string `json:"primaryColor,omitempty"`
	FontFamily   string `json:"fontFamily,omitempty"`
	Layout       string `json:"layout,omitempty"`
}

// CaseStudy is a project write-up embedded in a portfolio.
type CaseStudy struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Challenge   string   `json:"challenge"`
	Solution    string   `json:"solution"`
	Outcome     string   `json:"outcome"`
	Image       string   `json:"image"`
	Images      []string `json:"images"`
	Tools       []string `json:"tools"`
	Timeline    []string `json:"timeline"`
	VideoLinks  []string `json:"videoLinks"`
}

// Portfolio is the owner-scoped document the builder edits.
type Portfolio struct {
	ID            string        `json:"id"`
	UserID        string        `json:"userId"`
	Name          string        `json:"name"`
	Title         string        `json:"title"`
	Bio           string        `json:"bio"`
	ProfileImage  string        `json:"profileImage"`
	Email         string        `json:"email"`
	LinkedIn      string        `json:"linkedin"`
	GitHub        string        `json:"github"`
	Website       string        `json:"website"`
	Twitter       string        `json:"twitter"`
	ThemeSettings ThemeSettings `json:"themeSettings"`
	CaseStudies   []CaseStudy   `json:"caseStudies"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// CreateRequest captures a new portfolio payload.
type CreateRequest struct {
	Name          string         `json:"name"`
	Title         string         `json:"title"`
	Bio           string         `json:"bio"`
	ProfileImage  string         `json:"profileImage"`
	Email         string         `json:"email"`
	LinkedIn      string         `json:"linkedin"`
	GitHub        string         `json:"github"`
	Website       string         `json:"website"`
	Twitter       string         `json:"twitter"`
	ThemeSettings *ThemeSettings `json:"themeSettings"`
}

// UpdateRequest carries only the fields the caller wants to change.
// CaseStudies, when present, replaces the whole list.
type UpdateRequest struct {
	Name          *string        `json:"name"`
	Title         *string        `json:"title"`
	Bio           *string        `json:"bio"`
	ProfileImage  *string        `json:"profileImage"`
	Email         *string        `json:"email"`
	LinkedIn      *string        `json:"linkedin"`
	GitHub        *string        `json:"github"`
	Website       *string        `json:"website"`
	Twitter       *string        `json:"twitter"`
	ThemeSettings *ThemeSettings `json:"themeSettings"`
	CaseStudies   *[]CaseStudy   `json:"caseStudies"`
}
