package portfolio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/yanqian/projectshelf/internal/domain/user"
	apperrors "github.com/yanqian/projectshelf/pkg/errors"
)

// Service exposes owner-scoped portfolio and case-study workflows.
type Service interface {
	Create(ctx context.Context, ownerID string, req CreateRequest) (Portfolio, error)
	List(ctx context.Context, ownerID string) ([]Portfolio, error)
	Get(ctx context.Context, ownerID, id string) (Portfolio, error)
	Update(ctx context.Context, ownerID, id string, req UpdateRequest) (Portfolio, error)
	Delete(ctx context.Context, ownerID, id string) error

	ListCaseStudies(ctx context.Context, ownerID, portfolioID string) ([]CaseStudy, error)
	GetCaseStudy(ctx context.Context, ownerID, portfolioID, caseStudyID string) (CaseStudy, error)
	AddCaseStudy(ctx context.Context, ownerID, portfolioID string, input CaseStudy) (CaseStudy, error)
	ReplaceCaseStudy(ctx context.Context, ownerID, portfolioID, caseStudyID string, input CaseStudy) (CaseStudy, error)
	RemoveCaseStudy(ctx context.Context, ownerID, portfolioID, caseStudyID string) error

	CreateDefault(ctx context.Context, owner user.User) error
	DeleteAllForOwner(ctx context.Context, ownerID string) error
}

type service struct {
	repo      Repository
	sanitizer *Sanitizer
	logger    *slog.Logger
}

// NewService constructs a Service instance.
func NewService(repo Repository, sanitizer *Sanitizer, logger *slog.Logger) Service {
	return &service{
		repo:      repo,
		sanitizer: sanitizer,
		logger:    logger.With("component", "portfolio.service"),
	}
}

func (s *service) Create(ctx context.Context, ownerID string, req CreateRequest) (Portfolio, error) {
	p := Portfolio{
		UserID:       ownerID,
		Name:         s.sanitizer.Line(req.Name),
		Title:        s.sanitizer.Line(req.Title),
		Bio:          s.sanitizer.Rich(req.Bio),
		ProfileImage: strings.TrimSpace(req.ProfileImage),
		Email:        strings.TrimSpace(req.Email),
		LinkedIn:     strings.TrimSpace(req.LinkedIn),
		GitHub:       strings.TrimSpace(req.GitHub),
		Website:      strings.TrimSpace(req.Website),
		Twitter:      strings.TrimSpace(req.Twitter),
		CaseStudies:  []CaseStudy{},
	}
	if req.ThemeSettings != nil {
		p.ThemeSettings = s.cleanTheme(*req.ThemeSettings)
	}
	if err := validatePortfolio(p); err != nil {
		return Portfolio{}, err
	}
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return Portfolio{}, apperrors.Wrap(apperrors.CodeInternal, "failed to create portfolio", err)
	}
	return created, nil
}

func (s *service) List(ctx context.Context, ownerID string) ([]Portfolio, error) {
	items, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to list portfolios", err)
	}
	if items == nil {
		items = []Portfolio{}
	}
	return items, nil
}

func (s *service) Get(ctx context.Context, ownerID, id string) (Portfolio, error) {
	p, found, err := s.repo.GetForOwner(ctx, id, ownerID)
	if err != nil {
		return Portfolio{}, apperrors.Wrap(apperrors.CodeInternal, "failed to load portfolio", err)
	}
	if !found {
		return Portfolio{}, portfolioNotFound(id)
	}
	return p, nil
}

func (s *service) Update(ctx context.Context, ownerID, id string, req UpdateRequest) (Portfolio, error) {
	p, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return Portfolio{}, err
	}
	if req.Name != nil {
		p.Name = s.sanitizer.Line(*req.Name)
	}
	if req.Title != nil {
		p.Title = s.sanitizer.Line(*req.Title)
	}
	if req.Bio != nil {
		p.Bio = s.sanitizer.Rich(*req.Bio)
	}
	if req.ProfileImage != nil {
		p.ProfileImage = strings.TrimSpace(*req.ProfileImage)
	}
	if req.Email != nil {
		p.Email = strings.TrimSpace(*req.Email)
	}
	if req.LinkedIn != nil {
		p.LinkedIn = strings.TrimSpace(*req.LinkedIn)
	}
	if req.GitHub != nil {
		p.GitHub = strings.TrimSpace(*req.GitHub)
	}
	if req.Website != nil {
		p.Website = strings.TrimSpace(*req.Website)
	}
	if req.Twitter != nil {
		p.Twitter = strings.TrimSpace(*req.Twitter)
	}
	if req.ThemeSettings != nil {
		p.ThemeSettings = s.cleanTheme(*req.ThemeSettings)
	}
	if req.CaseStudies != nil {
		studies := make([]CaseStudy, 0, len(*req.CaseStudies))
		for _, input := range *req.CaseStudies {
			cs, err := s.cleanCaseStudy(input)
			if err != nil {
				return Portfolio{}, err
			}
			studies = append(studies, cs)
		}
		if err := uniqueCaseStudyIDs(studies); err != nil {
			return Portfolio{}, err
		}
		p.CaseStudies = studies
	}
	if err := validatePortfolio(p); err != nil {
		return Portfolio{}, err
	}
	return s.save(ctx, p)
}

func (s *service) Delete(ctx context.Context, ownerID, id string) error {
	deleted, err := s.repo.Delete(ctx, id, ownerID)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "failed to delete portfolio", err)
	}
	if !deleted {
		return portfolioNotFound(id)
	}
	return nil
}

func (s *service) ListCaseStudies(ctx context.Context, ownerID, portfolioID string) ([]CaseStudy, error) {
	p, err := s.Get(ctx, ownerID, portfolioID)
	if err != nil {
		return nil, err
	}
	if p.CaseStudies == nil {
		return []CaseStudy{}, nil
	}
	return p.CaseStudies, nil
}

func (s *service) GetCaseStudy(ctx context.Context, ownerID, portfolioID, caseStudyID string) (CaseStudy, error) {
	p, err := s.Get(ctx, ownerID, portfolioID)
	if err != nil {
		return CaseStudy{}, err
	}
	idx := indexOfCaseStudy(p.CaseStudies, caseStudyID)
	if idx < 0 {
		return CaseStudy{}, caseStudyNotFound(caseStudyID)
	}
	return p.CaseStudies[idx], nil
}

func (s *service) AddCaseStudy(ctx context.Context, ownerID, portfolioID string, input CaseStudy) (CaseStudy, error) {
	p, err := s.Get(ctx, ownerID, portfolioID)
	if err != nil {
		return CaseStudy{}, err
	}
	cs, err := s.cleanCaseStudy(input)
	if err != nil {
		return CaseStudy{}, err
	}
	if indexOfCaseStudy(p.CaseStudies, cs.ID) >= 0 {
		return CaseStudy{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("case study %s already exists", cs.ID), nil)
	}
	p.CaseStudies = append(p.CaseStudies, cs)
	if _, err := s.save(ctx, p); err != nil {
		return CaseStudy{}, err
	}
	return cs, nil
}

func (s *service) ReplaceCaseStudy(ctx context.Context, ownerID, portfolioID, caseStudyID string, input CaseStudy) (CaseStudy, error) {
	p, err := s.Get(ctx, ownerID, portfolioID)
	if err != nil {
		return CaseStudy{}, err
	}
	idx := indexOfCaseStudy(p.CaseStudies, caseStudyID)
	if idx < 0 {
		return CaseStudy{}, caseStudyNotFound(caseStudyID)
	}
	input.ID = caseStudyID
	cs, err := s.cleanCaseStudy(input)
	if err != nil {
		return CaseStudy{}, err
	}
	p.CaseStudies[idx] = cs
	if _, err := s.save(ctx, p); err != nil {
		return CaseStudy{}, err
	}
	return cs, nil
}

func (s *service) RemoveCaseStudy(ctx context.Context, ownerID, portfolioID, caseStudyID string) error {
	p, err := s.Get(ctx, ownerID, portfolioID)
	if err != nil {
		return err
	}
	idx := indexOfCaseStudy(p.CaseStudies, caseStudyID)
	if idx < 0 {
		return caseStudyNotFound(caseStudyID)
	}
	p.CaseStudies = append(p.CaseStudies[:idx], p.CaseStudies[idx+1:]...)
	_, err = s.save(ctx, p)
	return err
}

// CreateDefault provisions the starter portfolio for a freshly created account.
func (s *service) CreateDefault(ctx context.Context, owner user.User) error {
	name := strings.TrimSpace(owner.FirstName + " " + owner.LastName)
	if name == "" {
		name = strings.Split(owner.Email, "@")[0]
	}
	_, err := s.Create(ctx, owner.ID, CreateRequest{
		Name:  name,
		Title: DefaultTitle,
		Email: owner.Email,
	})
	return err
}

// DeleteAllForOwner removes every portfolio owned by the account.
func (s *service) DeleteAllForOwner(ctx context.Context, ownerID string) error {
	removed, err := s.repo.DeleteByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("delete portfolios for owner %s: %w", ownerID, err)
	}
	s.logger.Info("owner portfolios removed", "user_id", ownerID, "count", removed)
	return nil
}

func (s *service) save(ctx context.Context, p Portfolio) (Portfolio, error) {
	updated, found, err := s.repo.Update(ctx, p)
	if err != nil {
		return Portfolio{}, apperrors.Wrap(apperrors.CodeInternal, "failed to update portfolio", err)
	}
	if !found {
		return Portfolio{}, portfolioNotFound(p.ID)
	}
	return updated, nil
}

func (s *service) cleanTheme(theme ThemeSettings) ThemeSettings {
	return ThemeSettings{
		PrimaryColor: s.sanitizer.Line(theme.PrimaryColor),
		FontFamily:   s.sanitizer.Line(theme.FontFamily),
		Layout:       s.sanitizer.Line(theme.Layout),
	}
}

func (s *service) cleanCaseStudy(input CaseStudy) (CaseStudy, error) {
	cs := CaseStudy{
		ID:          strings.TrimSpace(input.ID),
		Title:       s.sanitizer.Line(input.Title),
		Subtitle:    s.sanitizer.Line(input.Subtitle),
		Description: s.sanitizer.Rich(input.Description),
		Category:    s.sanitizer.Line(input.Category),
		Challenge:   s.sanitizer.Rich(input.Challenge),
		Solution:    s.sanitizer.Rich(input.Solution),
		Outcome:     s.sanitizer.Rich(input.Outcome),
		Image:       strings.TrimSpace(input.Image),
		Images:      s.sanitizer.Lines(input.Images),
		Tools:       s.sanitizer.Lines(input.Tools),
		Timeline:    s.sanitizer.Lines(input.Timeline),
		VideoLinks:  s.sanitizer.Lines(input.VideoLinks),
	}
	if cs.ID == "" {
		cs.ID = uuid.NewString()
	}
	if cs.Title == "" {
		return CaseStudy{}, apperrors.Wrap(apperrors.CodeInvalidInput, "case study title cannot be empty", nil)
	}
	return cs, nil
}

func validatePortfolio(p Portfolio) error {
	if p.Name == "" {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "name cannot be empty", nil)
	}
	if p.Title == "" {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "title cannot be empty", nil)
	}
	links := []struct {
		field string
		value string
	}{
		{"linkedin", p.LinkedIn},
		{"github", p.GitHub},
		{"website", p.Website},
		{"twitter", p.Twitter},
	}
	for _, link := range links {
		if err := validateURL(link.value); err != nil {
			return apperrors.Wrap(apperrors.CodeInvalidInput, link.field+" must be a valid URL", err)
		}
	}
	return nil
}

func validateURL(raw string) error {
	if raw == "" {
		return nil
	}
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("unsupported scheme")
	}
	if parsed.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

func uniqueCaseStudyIDs(studies []CaseStudy) error {
	seen := make(map[string]struct{}, len(studies))
	for _, cs := range studies {
		if _, dup := seen[cs.ID]; dup {
			return apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("duplicate case study id %s", cs.ID), nil)
		}
		seen[cs.ID] = struct{}{}
	}
	return nil
}

func indexOfCaseStudy(studies []CaseStudy, id string) int {
	for i, cs := range studies {
		if cs.ID == id {
			return i
		}
	}
	return -1
}

func portfolioNotFound(id string) error {
	return apperrors.Wrap(apperrors.CodeNotFound, fmt.Sprintf("portfolio with ID %s not found", id), nil)
}

func caseStudyNotFound(id string) error {
	return apperrors.Wrap(apperrors.CodeNotFound, fmt.Sprintf("case study with ID %s not found", id), nil)
}
