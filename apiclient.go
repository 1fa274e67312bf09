// Package apiclient exposes the client builders.
package apiclient

import (
	"fmt"

	"github.com/adamwoolhether/apiclient/client"
	"github.com/adamwoolhether/apiclient/config"
)

// New instantiates a *client.Client for baseURL. token is sent verbatim as
// the Authorization header and newErr builds the error for non-2xx responses.
// If not specified, a dedicated http.Client and http.Transport are used.
func New[E error](baseURL, token string, newErr client.ErrorFactory[E], opts ...client.Option) (*client.Client[E], error) {
	return client.Build(baseURL, token, newErr, opts...)
}

// NewFromConfig instantiates a *client.Client from a loaded [config.Config].
// opts are applied after the options derived from cfg, so they take precedence.
func NewFromConfig[E error](cfg config.Config, newErr client.ErrorFactory[E], opts ...client.Option) (*client.Client[E], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c, err := client.Build(cfg.BaseURL, cfg.Token, newErr, append(cfg.Options(), opts...)...)
	if err != nil {
		return nil, fmt.Errorf("building client from config: %w", err)
	}

	return c, nil
}
