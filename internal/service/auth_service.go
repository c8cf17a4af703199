package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/campusmarket/campusmarket-backend/internal/common"
	"github.com/campusmarket/campusmarket-backend/internal/config"
	"github.com/campusmarket/campusmarket-backend/internal/domain"
	"github.com/campusmarket/campusmarket-backend/internal/repository"
	"github.com/campusmarket/campusmarket-backend/pkg/jwt"
	"gorm.io/gorm"
)

const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token" //nolint:gosec // endpoint URL, not a credential
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// GoogleUserInfo is the subset of the Google profile we use
type GoogleUserInfo struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// LoginResult carries the issued token and the signed-in user
type LoginResult struct {
	Token string               `json:"token"`
	User  *domain.UserResponse `json:"user"`
}

// AuthService handles the Google sign-in flow and user lookups
type AuthService interface {
	LoginURL(state string) string
	HandleGoogleCallback(ctx context.Context, code string) (*LoginResult, error)
	GetUser(id string) (*domain.UserResponse, error)
	ListUsers() ([]*domain.UserResponse, error)
}

type authService struct {
	users      repository.UserRepository
	jwtManager *jwt.Manager
	oauth      config.OAuthConfig
	httpClient *http.Client
}

// NewAuthService creates a new AuthService
func NewAuthService(users repository.UserRepository, jwtManager *jwt.Manager, oauth config.OAuthConfig) AuthService {
	return &authService{
		users:      users,
		jwtManager: jwtManager,
		oauth:      oauth,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// LoginURL returns the Google authorization URL to redirect the browser to
func (s *authService) LoginURL(state string) string {
	params := url.Values{
		"response_type": {"code"},
		"client_id":     {s.oauth.GoogleClientID},
		"redirect_uri":  {s.oauth.GoogleRedirectURL},
		"scope":         {"openid email profile"},
		"state":         {state},
	}
	return googleAuthURL + "?" + params.Encode()
}

// HandleGoogleCallback exchanges the authorization code, verifies the campus
// email domain and signs the user in, creating the account on first login.
func (s *authService) HandleGoogleCallback(ctx context.Context, code string) (*LoginResult, error) {
	accessToken, err := s.exchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	info, err := s.getUserInfo(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("get user info failed: %w", err)
	}
	if info.Email == "" {
		return nil, common.ErrUnauthorized
	}
	if s.oauth.AllowedDomain != "" && !strings.HasSuffix(strings.ToLower(info.Email), "@"+strings.ToLower(s.oauth.AllowedDomain)) {
		return nil, common.ErrForbidden
	}

	user, err := s.users.FindByEmail(info.Email)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = &domain.User{
			Name:     info.Name,
			Email:    info.Email,
			PhotoURL: info.Picture,
		}
		if err := s.users.Create(user); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
		}
	case err != nil:
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	default:
		if err := s.users.TouchLastLogin(user.ID); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
		}
	}

	token, err := s.jwtManager.GenerateToken(user.ID, user.Name, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("generate token failed: %w", err)
	}

	return &LoginResult{Token: token, User: user.ToResponse()}, nil
}

func (s *authService) GetUser(id string) (*domain.UserResponse, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	return user.ToResponse(), nil
}

func (s *authService) ListUsers() ([]*domain.UserResponse, error) {
	users, err := s.users.ListAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	responses := make([]*domain.UserResponse, len(users))
	for i, u := range users {
		responses[i] = u.ToResponse()
	}
	return responses, nil
}

func (s *authService) exchangeCode(ctx context.Context, code string) (string, error) {
	params := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {s.oauth.GoogleRedirectURL},
		"client_id":     {s.oauth.GoogleClientID},
		"client_secret": {s.oauth.GoogleClientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, googleTokenURL, strings.NewReader(params.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response body failed: %w", err)
	}
	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("parse token response failed: %w", err)
	}
	if errMsg, ok := result["error"]; ok {
		return "", fmt.Errorf("oauth error: %v", errMsg)
	}
	accessToken, ok := result["access_token"].(string)
	if !ok {
		return "", fmt.Errorf("access_token not found in token response")
	}
	return accessToken, nil
}

func (s *authService) getUserInfo(ctx context.Context, accessToken string) (*GoogleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info request returned %d", resp.StatusCode)
	}

	var info GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("parse user info failed: %w", err)
	}
	return &info, nil
}
