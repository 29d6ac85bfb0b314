package merchant

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	content "google.golang.org/api/content/v2.1"
	"google.golang.org/api/option"

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
)

// clientOptions builds the API client options for the settings.
// Without a credentials file an endpoint override is required and
// requests go out unauthenticated, which is how emulators are reached.
func clientOptions(ctx context.Context, s domain.MerchantSettings) ([]option.ClientOption, error) {
	var opts []option.ClientOption
	if s.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(s.Endpoint))
	}

	if s.CredentialsFile == "" {
		if s.Endpoint == "" {
			return nil, fmt.Errorf("%w: service account file is required", domain.ErrInvalidInput)
		}
		return append(opts, option.WithoutAuthentication()), nil
	}

	data, err := os.ReadFile(s.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading service account file: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, content.ContentScope)
	if err != nil {
		return nil, fmt.Errorf("parsing service account file %s: %w", s.CredentialsFile, err)
	}
	return append(opts, option.WithTokenSource(creds.TokenSource)), nil
}
