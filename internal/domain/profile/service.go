package profile

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Service handles the coordinator profile.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new profile service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{repo: repo, logger: logger}
}

// Get returns the stored profile, or empty defaults on first use.
func (s *Service) Get(ctx context.Context) Profile {
	return s.repo.Load(ctx)
}

// Save overwrites the profile wholesale.
func (s *Service) Save(ctx context.Context, p Profile) (Profile, error) {
	p = Profile{
		FullName:      strings.TrimSpace(p.FullName),
		Position:      strings.TrimSpace(p.Position),
		Municipality:  strings.TrimSpace(p.Municipality),
		ContactNumber: strings.TrimSpace(p.ContactNumber),
		AvatarURL:     strings.TrimSpace(p.AvatarURL),
		CoverURL:      strings.TrimSpace(p.CoverURL),
	}
	if err := validateImage(p.AvatarURL); err != nil {
		return Profile{}, fmt.Errorf("avatar: %w", err)
	}
	if err := validateImage(p.CoverURL); err != nil {
		return Profile{}, fmt.Errorf("cover: %w", err)
	}

	s.repo.Save(ctx, p)
	s.logger.Info("profile saved", "name", p.FullName)
	return p, nil
}

// Clear resets the profile to empty defaults.
func (s *Service) Clear(ctx context.Context) {
	s.repo.Save(ctx, Profile{})
}

// image fields hold an external URL or an embedded data URI
func validateImage(ref string) error {
	if ref == "" {
		return nil
	}
	if strings.HasPrefix(ref, "data:image/") && strings.Contains(ref, ";base64,") {
		return nil
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidInput
	}
	return nil
}

// Initials returns up to two upper-case initials of a name, using "User"
// when the name is blank.
func Initials(fullName string) string {
	if strings.TrimSpace(fullName) == "" {
		fullName = "User"
	}
	var b strings.Builder
	for i, word := range strings.Fields(fullName) {
		if i == 2 {
			break
		}
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
