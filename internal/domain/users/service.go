package users

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"pawpals/internal/platform/apperr"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = apperr.NotFound("user not found")
	ErrMissingLogin  = apperr.Validation("phone and code are required")
	ErrInvalidPhone  = apperr.Validation("phone must contain 5 to 20 digits")
	ErrInvalidCode   = apperr.Validation("invalid verification code")
	ErrNicknameEmpty = apperr.Validation("nickname is required")
	ErrNicknameLong  = apperr.Validation("nickname must be at most 50 characters")
	ErrInactive      = apperr.Auth("account is disabled")
)

const (
	defaultNicknamePrefix = "PawPal"
	maxNicknameRunes      = 50
	maxListLimit          = 200
)

type Service struct {
	repo      Repository
	tokens    TokenIssuer
	loginCode string
	now       func() time.Time
}

func NewService(repo Repository, tokens TokenIssuer, loginCode string) *Service {
	return &Service{
		repo:      repo,
		tokens:    tokens,
		loginCode: loginCode,
		now:       time.Now,
	}
}

type LoginInput struct {
	Phone    string
	Code     string
	Nickname string
	Avatar   string
}

type LoginResult struct {
	Token Token
	User  User
}

// Login valida el código, busca o crea el usuario por teléfono y emite un token.
func (s *Service) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	phone := strings.TrimSpace(in.Phone)
	code := strings.TrimSpace(in.Code)
	if phone == "" || code == "" {
		return LoginResult{}, ErrMissingLogin
	}
	if !validPhone(phone) {
		return LoginResult{}, ErrInvalidPhone
	}
	if code != s.loginCode {
		return LoginResult{}, ErrInvalidCode
	}

	now := s.now().UTC()
	u, err := s.repo.GetByPhone(ctx, phone)
	switch {
	case err == nil:
		if !u.Active {
			return LoginResult{}, ErrInactive
		}
	case errors.Is(err, ErrNotFound):
		nick := strings.TrimSpace(in.Nickname)
		if nick == "" {
			nick = defaultNicknamePrefix + lastDigits(phone, 4)
		}
		if utf8.RuneCountInString(nick) > maxNicknameRunes {
			return LoginResult{}, ErrNicknameLong
		}
		u = User{
			ID:        uuid.NewString(),
			Nickname:  nick,
			Phone:     phone,
			Avatar:    strings.TrimSpace(in.Avatar),
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.Create(ctx, u); err != nil {
			return LoginResult{}, err
		}
	default:
		return LoginResult{}, err
	}

	u.LastLoginAt = &now
	u.UpdatedAt = now
	if err := s.repo.Update(ctx, u); err != nil {
		return LoginResult{}, err
	}

	tok, err := s.tokens.Issue(ctx, u.ID)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: tok, User: u}, nil
}

// Logout revoca la sesión actual. Sin sessionID (modo dev) no hace nada.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	return s.tokens.Revoke(ctx, sessionID)
}

type CreateInput struct {
	Nickname string
	Avatar   string
	Phone    string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (User, error) {
	nick := strings.TrimSpace(in.Nickname)
	if nick == "" {
		return User{}, ErrNicknameEmpty
	}
	if utf8.RuneCountInString(nick) > maxNicknameRunes {
		return User{}, ErrNicknameLong
	}
	phone := strings.TrimSpace(in.Phone)
	if phone != "" && !validPhone(phone) {
		return User{}, ErrInvalidPhone
	}

	now := s.now().UTC()
	u := User{
		ID:        uuid.NewString(),
		Nickname:  nick,
		Phone:     phone,
		Avatar:    strings.TrimSpace(in.Avatar),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	if strings.TrimSpace(id) == "" {
		return User{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetMany(ctx context.Context, ids []string) (map[string]User, error) {
	if len(ids) == 0 {
		return map[string]User{}, nil
	}
	return s.repo.GetMany(ctx, ids)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]User, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

// IsActive se usa al verificar tokens.
func (s *Service) IsActive(ctx context.Context, id string) (bool, error) {
	u, err := s.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.Active, nil
}

// UpdateProfileInput: nil = no tocar.
type UpdateProfileInput struct {
	Nickname *string
	Avatar   *string
}

func (s *Service) UpdateProfile(ctx context.Context, id string, in UpdateProfileInput) (User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	if in.Nickname != nil {
		nick := strings.TrimSpace(*in.Nickname)
		if nick == "" {
			return User{}, ErrNicknameEmpty
		}
		if utf8.RuneCountInString(nick) > maxNicknameRunes {
			return User{}, ErrNicknameLong
		}
		u.Nickname = nick
	}
	if in.Avatar != nil {
		u.Avatar = strings.TrimSpace(*in.Avatar)
	}

	u.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func validPhone(p string) bool {
	digits := 0
	for i, r := range p {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' && i == 0:
		case r == '-' || r == ' ':
		default:
			return false
		}
	}
	return digits >= 5 && digits <= 20
}

func lastDigits(p string, n int) string {
	ds := make([]rune, 0, len(p))
	for _, r := range p {
		if unicode.IsDigit(r) {
			ds = append(ds, r)
		}
	}
	if len(ds) <= n {
		return string(ds)
	}
	return string(ds[len(ds)-n:])
}
