package client

import "time"

// User mirrors the public user view returned by the API.
type User struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"isActive"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SignupRequest creates an account.
type SignupRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// LoginResult is the body of a successful login.
type LoginResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
}

type ThemeSettings struct {
	PrimaryColor string `json:"primaryColor,omitempty"`
	FontFamily   string `json:"fontFamily,omitempty"`
	Layout       string `json:"layout,omitempty"`
}

type CaseStudy struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle,omitempty"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Challenge   string   `json:"challenge,omitempty"`
	Solution    string   `json:"solution,omitempty"`
	Outcome     string   `json:"outcome,omitempty"`
	Image       string   `json:"image,omitempty"`
	Images      []string `json:"images,omitempty"`
	Tools       []string `json:"tools,omitempty"`
	Timeline    []string `json:"timeline,omitempty"`
	VideoLinks  []string `json:"videoLinks,omitempty"`
}

// Portfolio mirrors the portfolio document returned by the API.
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

// PortfolioInput is the payload for creating a portfolio.
type PortfolioInput struct {
	Name          string         `json:"name"`
	Title         string         `json:"title"`
	Bio           string         `json:"bio,omitempty"`
	ProfileImage  string         `json:"profileImage,omitempty"`
	Email         string         `json:"email,omitempty"`
	LinkedIn      string         `json:"linkedin,omitempty"`
	GitHub        string         `json:"github,omitempty"`
	Website       string         `json:"website,omitempty"`
	Twitter       string         `json:"twitter,omitempty"`
	ThemeSettings *ThemeSettings `json:"themeSettings,omitempty"`
}

// PortfolioPatch sends only the non-nil fields.
type PortfolioPatch struct {
	Name          *string        `json:"name,omitempty"`
	Title         *string        `json:"title,omitempty"`
	Bio           *string        `json:"bio,omitempty"`
	ProfileImage  *string        `json:"profileImage,omitempty"`
	Email         *string        `json:"email,omitempty"`
	LinkedIn      *string        `json:"linkedin,omitempty"`
	GitHub        *string        `json:"github,omitempty"`
	Website       *string        `json:"website,omitempty"`
	Twitter       *string        `json:"twitter,omitempty"`
	ThemeSettings *ThemeSettings `json:"themeSettings,omitempty"`
	CaseStudies   *[]CaseStudy   `json:"caseStudies,omitempty"`
}
