package api

import (
	"context"
	"net/http"

	"github.com/vowhq/vowctl/internal/logger"
	"github.com/vowhq/vowctl/internal/session"
	"go.uber.org/zap"
)

// AuthService covers the /auth endpoints: sign-in, registration, sign-out and
// profile access. Successful sign-in and registration persist the token pair
// and cached profile through the session store.
type AuthService struct {
	client *Client
	store  session.Store
}

func NewAuthService(client *Client, store session.Store) *AuthService {
	return &AuthService{client: client, store: store}
}

type authPayload struct {
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	User         *session.User `json:"user,omitempty"`
}

// RegisterInput is the sign-up form for both customers and providers.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*session.User, error) {
	return s.authenticate(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*session.User, error) {
	return s.authenticate(ctx, "/auth/register", in)
}

func (s *AuthService) authenticate(ctx context.Context, path string, body any) (*session.User, error) {
	var payload authPayload
	err := s.client.JSON(ctx, Request{
		Method:    http.MethodPost,
		Path:      path,
		Body:      body,
		NoRefresh: true,
	}, &payload)
	if err != nil {
		return nil, err
	}
	if payload.AccessToken == "" || payload.RefreshToken == "" {
		return nil, &Error{Message: "the server returned an unexpected response"}
	}
	if err := s.store.SetCredentials(session.Credentials{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
	}); err != nil {
		return nil, err
	}
	if payload.User != nil {
		if err := s.store.SetUser(*payload.User); err != nil {
			return nil, err
		}
	}
	return payload.User, nil
}

// Logout tells the backend to revoke the session, then clears local state.
// Local state is cleared even when the revocation call fails.
func (s *AuthService) Logout(ctx context.Context) error {
	_, err := s.client.Do(ctx, Request{
		Method:    http.MethodPost,
		Path:      "/auth/logout",
		NoRefresh: true,
	})
	if err != nil {
		logger.Warn("logout request failed, clearing local session anyway", zap.Error(err))
	}
	return s.store.Clear()
}

func (s *AuthService) Me(ctx context.Context) (*session.User, error) {
	var user session.User
	if err := s.client.JSON(ctx, Request{Method: http.MethodGet, Path: "/auth/me"}, &user); err != nil {
		return nil, err
	}
	if err := s.store.SetUser(user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Profile is the editable account profile.
type Profile struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	District string `json:"district,omitempty"`
	Bio      string `json:"bio,omitempty"`
}

func (s *AuthService) Profile(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := s.client.JSON(ctx, Request{Method: http.MethodGet, Path: "/auth/profile"}, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, p Profile) (*Profile, error) {
	var updated Profile
	err := s.client.JSON(ctx, Request{
		Method: http.MethodPut,
		Path:   "/auth/profile",
		Body:   p,
	}, &updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
