package api

import (
	"context"
	"net/http"
)

// VerificationResult is the face-match verdict for an identity submission.
// Detail carries the backend's rejection reason verbatim when the match
// fails.
type VerificationResult struct {
	FaceMatch bool   `json:"face_match"`
	Detail    string `json:"detail,omitempty"`
}

// ProviderProfileInput is the payload registered when onboarding completes.
type ProviderProfileInput struct {
	BusinessName string   `json:"businessName"`
	Category     string   `json:"category"`
	District     string   `json:"district"`
	Services     []string `json:"services"`
	PriceRange   string   `json:"priceRange"`
}

type ProviderProfile struct {
	ID           string   `json:"id"`
	BusinessName string   `json:"businessName"`
	Category     string   `json:"category"`
	District     string   `json:"district"`
	Services     []string `json:"services"`
	PriceRange   string   `json:"priceRange"`
	Verified     bool     `json:"verified"`
	Status       string   `json:"status"`
}

// ProviderService covers provider onboarding: identity verification and
// profile registration.
type ProviderService struct {
	client *Client
}

func NewProviderService(client *Client) *ProviderService {
	return &ProviderService{client: client}
}

// VerifyIdentity submits the national ID document, a selfie frame and the
// business registration document as named multipart file parts. The caller
// decides what a FaceMatch=false verdict means; Detail is passed through
// untouched.
func (s *ProviderService) VerifyIdentity(ctx context.Context, nidPath, facePath, rdbPath string) (*VerificationResult, error) {
	files := map[string]string{
		"nid_file":  nidPath,
		"face_file": facePath,
	}
	if rdbPath != "" {
		files["rdb_file"] = rdbPath
	}

	var result VerificationResult
	err := s.client.JSON(ctx, Request{
		Method: http.MethodPost,
		Path:   "/provider/verify-identity",
		Files:  files,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *ProviderService) Profile(ctx context.Context) (*ProviderProfile, error) {
	var profile ProviderProfile
	if err := s.client.JSON(ctx, Request{Method: http.MethodGet, Path: "/provider/profile"}, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *ProviderService) CreateProfile(ctx context.Context, in ProviderProfileInput) (*ProviderProfile, error) {
	var profile ProviderProfile
	err := s.client.JSON(ctx, Request{
		Method: http.MethodPost,
		Path:   "/provider/profile",
		Body:   in,
	}, &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
