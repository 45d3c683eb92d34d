package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// BearerPath is the token exchange endpoint, relative to the platform host.
const BearerPath = "/partners/publisher/auth"

// FetchBearer exchanges the account's refresh token and secret key for a
// temporary bearer token. The endpoint answers with the JWT as a quoted JSON
// string.
func FetchBearer(ctx context.Context, client *resty.Client, baseURL, secret, refreshToken string) (string, error) {
	if secret == "" || refreshToken == "" {
		return "", fmt.Errorf("fetch bearer token: credentials are not set")
	}

	res, err := client.R().
		SetContext(ctx).
		SetHeader("secretkey", secret).
		SetHeader("refreshToken", refreshToken).
		Get(baseURL + BearerPath)
	if err != nil {
		return "", fmt.Errorf("fetch bearer token: %w", err)
	}
	if res.IsError() {
		return "", fmt.Errorf("fetch bearer token: status %d: %s", res.StatusCode(), strings.TrimSpace(res.String()))
	}

	token := strings.Trim(strings.TrimSpace(res.String()), `"`)
	if token == "" {
		return "", fmt.Errorf("fetch bearer token: empty response")
	}
	log.Debug().Msg("fetched new bearer token")
	return token, nil
}
