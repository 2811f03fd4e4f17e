// Package flows defines the concrete wizards: provider onboarding and
// customer booking.
package flows

import (
	"context"
	"errors"
	"fmt"

	"github.com/vowhq/vowctl/internal/api"
	"github.com/vowhq/vowctl/internal/capture"
	"github.com/vowhq/vowctl/internal/config"
	"github.com/vowhq/vowctl/internal/wizard"
)

// Categories a provider can list under.
var Categories = []string{
	"photography", "catering", "venue", "music", "decor", "beauty", "transport",
}

var PriceRanges = []string{"budget", "standard", "premium"}

// IdentityVerifier is the slice of the API the identity step needs.
type IdentityVerifier interface {
	VerifyIdentity(ctx context.Context, nidPath, facePath, rdbPath string) (*api.VerificationResult, error)
}

// ProviderRegistrar registers the finished provider profile.
type ProviderRegistrar interface {
	CreateProfile(ctx context.Context, in api.ProviderProfileInput) (*api.ProviderProfile, error)
}

// OnboardingDeps wires the onboarding wizard to the backend and the camera.
type OnboardingDeps struct {
	Verifier  IdentityVerifier
	Registrar ProviderRegistrar
	Capture   *config.CaptureConfig
}

// NewOnboarding builds the five-step provider onboarding wizard. Step 4 is
// the async identity gate: it captures a selfie, submits it with the ID
// document, and blocks advancement until the face match passes.
func NewOnboarding(deps OnboardingDeps) (*wizard.Machine, error) {
	steps := []wizard.Step{
		{
			Name:  "account",
			Title: "Your account",
			Fields: []wizard.Field{
				{Name: "full_name", Label: "Full name"},
				{Name: "phone", Label: "Phone", Placeholder: "+250..."},
			},
			Validate: wizard.All(
				wizard.Required("full_name", "full name"),
				wizard.Required("phone", "phone"),
			),
		},
		{
			Name:  "business",
			Title: "Your business",
			Fields: []wizard.Field{
				{Name: "business_name", Label: "Business name"},
				{Name: "category", Label: "Category", Placeholder: "photography, catering, ..."},
				{Name: "district", Label: "District"},
			},
			Validate: wizard.All(
				wizard.Required("business_name", "business name"),
				wizard.Required("category", "category"),
				wizard.OneOf("category", "category", Categories...),
				wizard.Required("district", "district"),
			),
		},
		{
			Name:  "offerings",
			Title: "What you offer",
			Fields: []wizard.Field{
				{Name: "services", Label: "Services (comma separated)"},
				{Name: "price_range", Label: "Price range", Placeholder: "budget, standard or premium"},
			},
			Validate: wizard.All(
				wizard.MinItems("services", "service", 1),
				wizard.Required("price_range", "price range"),
				wizard.OneOf("price_range", "price range", PriceRanges...),
			),
		},
		{
			Name:  "identity",
			Title: "Identity verification",
			Fields: []wizard.Field{
				{Name: "nid_file", Label: "National ID document (path)"},
				{Name: "rdb_file", Label: "Business registration document (path, optional)"},
			},
			Validate: wizard.Required("nid_file", "national ID document"),
			Gate:     identityGate(deps),
		},
		{
			Name:  "review",
			Title: "Review & submit",
			Fields: []wizard.Field{
				{Name: "agree_terms", Label: "Type yes to accept the provider terms"},
			},
			Validate: wizard.MustBeTrue("agree_terms", "you must accept the provider terms"),
		},
	}

	return wizard.New(steps, submitOnboarding(deps.Registrar))
}

// identityGate captures the selfie with the scoped camera session and runs
// the server-side face match. The camera is released on every path.
func identityGate(deps OnboardingDeps) wizard.Gate {
	return func(ctx context.Context, v wizard.Values) error {
		cam, err := capture.Open(ctx, deps.Capture)
		if err != nil {
			return fmt.Errorf("could not capture selfie: %w", err)
		}
		defer cam.Close()

		result, err := deps.Verifier.VerifyIdentity(ctx,
			wizard.Str(v, "nid_file"),
			cam.File(),
			wizard.Str(v, "rdb_file"),
		)
		if err != nil {
			return err
		}
		if !result.FaceMatch {
			if result.Detail != "" {
				return errors.New(result.Detail)
			}
			return errors.New("identity verification failed")
		}
		return nil
	}
}

func submitOnboarding(registrar ProviderRegistrar) wizard.SubmitFunc {
	return func(ctx context.Context, v wizard.Values) error {
		_, err := registrar.CreateProfile(ctx, api.ProviderProfileInput{
			BusinessName: wizard.Str(v, "business_name"),
			Category:     wizard.Str(v, "category"),
			District:     wizard.Str(v, "district"),
			Services:     wizard.Items(v, "services"),
			PriceRange:   wizard.Str(v, "price_range"),
		})
		return err
	}
}
