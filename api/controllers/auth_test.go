package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/delish-app/tiffin-backend/internal/auth"
	"github.com/delish-app/tiffin-backend/internal/users"
	"github.com/delish-app/tiffin-backend/pkg/enums"
	pkgerrors "github.com/delish-app/tiffin-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthService struct {
	resp         *auth.LoginResponse
	pair         *auth.TokenPair
	err          error
	gotAccess    string
	gotRefresh   string
	loggedOutTok string
}

func (s *stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.LoginResponse, error) {
	return s.resp, s.err
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return s.resp, s.err
}

func (s *stubAuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (*auth.TokenPair, error) {
	s.gotAccess, s.gotRefresh = accessToken, refreshToken
	return s.pair, s.err
}

func (s *stubAuthService) Logout(ctx context.Context, accessToken string) error {
	s.loggedOutTok = accessToken
	return s.err
}

func loginResponse() *auth.LoginResponse {
	return &auth.LoginResponse{
		TokenPair: auth.TokenPair{AccessToken: "access-token", RefreshToken: "refresh-token"},
		User:      &users.UserDTO{ID: uuid.New(), Name: "Asha", Email: "asha@example.com", Role: enums.RoleCustomer},
	}
}

func TestAuthRegisterCreated(t *testing.T) {
	svc := &stubAuthService{resp: loginResponse()}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
		bytes.NewBufferString(`{"name":"Asha","email":"asha@example.com","password":"secret1","role":"customer"}`))
	rec := httptest.NewRecorder()

	AuthRegister(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "access-token", rec.Header().Get("X-Tiffin-Token"))

	var env struct {
		Data struct {
			AccessToken  string         `json:"access_token"`
			RefreshToken string         `json:"refresh_token"`
			User         *users.UserDTO `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, "refresh-token", env.Data.RefreshToken)
	require.NotNil(t, env.Data.User)
	assert.Equal(t, "asha@example.com", env.Data.User.Email)
}

func TestAuthLoginInvalidCredentials(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		bytes.NewBufferString(`{"email":"asha@example.com","password":"wrong"}`))
	rec := httptest.NewRecorder()

	AuthLogin(svc, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Tiffin-Token"))
}

func TestAuthRefreshPassesBothTokens(t *testing.T) {
	svc := &stubAuthService{pair: &auth.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewBufferString(`{"refresh_token":"old-refresh"}`))
	req.Header.Set("Authorization", "Bearer old-access")
	rec := httptest.NewRecorder()

	AuthRefresh(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "old-access", svc.gotAccess)
	assert.Equal(t, "old-refresh", svc.gotRefresh)
	assert.Equal(t, "new-access", rec.Header().Get("X-Tiffin-Token"))
}

func TestAuthRefreshRequiresBearer(t *testing.T) {
	svc := &stubAuthService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewBufferString(`{"refresh_token":"r"}`))
	rec := httptest.NewRecorder()

	AuthRefresh(svc, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthLogout(t *testing.T) {
	svc := &stubAuthService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer some-access")
	rec := httptest.NewRecorder()

	AuthLogout(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "some-access", svc.loggedOutTok)
}
