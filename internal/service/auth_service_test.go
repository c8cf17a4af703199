package service

import (
	"testing"

	"github.com/campusmarket/campusmarket-backend/internal/common"
	"github.com/campusmarket/campusmarket-backend/internal/config"
	"github.com/campusmarket/campusmarket-backend/internal/domain"
	"github.com/campusmarket/campusmarket-backend/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func newAuthFixture() (*MockUserRepository, AuthService) {
	users := new(MockUserRepository)
	manager := jwt.NewManager("test-secret", 0)
	svc := NewAuthService(users, manager, config.OAuthConfig{
		GoogleClientID:    "client-id",
		GoogleRedirectURL: "http://localhost:8080/api/v1/auth/google/callback",
		AllowedDomain:     "bc.edu",
	})
	return users, svc
}

func TestLoginURL_ContainsOAuthParams(t *testing.T) {
	_, svc := newAuthFixture()

	url := svc.LoginURL("xyz-state")

	assert.Contains(t, url, "accounts.google.com")
	assert.Contains(t, url, "client_id=client-id")
	assert.Contains(t, url, "state=xyz-state")
	assert.Contains(t, url, "response_type=code")
}

func TestGetUser_Found(t *testing.T) {
	users, svc := newAuthFixture()

	users.On("FindByID", "user-1").
		Return(&domain.User{ID: "user-1", Name: "Blake", Email: "blake@bc.edu"}, nil)

	resp, err := svc.GetUser("user-1")

	assert.NoError(t, err)
	assert.Equal(t, "Blake", resp.Name)
}

func TestGetUser_NotFound(t *testing.T) {
	users, svc := newAuthFixture()

	users.On("FindByID", "missing").Return(nil, gorm.ErrRecordNotFound)

	resp, err := svc.GetUser("missing")

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, common.ErrUserNotFound)
}

func TestListUsers(t *testing.T) {
	users, svc := newAuthFixture()

	users.On("ListAll").Return([]*domain.User{
		{ID: "user-1", Name: "Blake"},
		{ID: "user-2", Name: "Sam"},
	}, nil)

	resps, err := svc.ListUsers()

	assert.NoError(t, err)
	assert.Len(t, resps, 2)
}
