// Package ironsource is the entry point to the ironSource Monetize and
// Promote APIs. Both façades share one api.Client, so credentials and the
// cached bearer token are shared too.
package ironsource

import (
	"github.com/raine/ironsource-go/api"
	"github.com/raine/ironsource-go/config"
	"github.com/raine/ironsource-go/monetize"
	"github.com/raine/ironsource-go/promote"
)

type IronSource struct {
	client   *api.Client
	monetize *monetize.API
	promote  *promote.API
}

func New(opts api.ClientOpts) *IronSource {
	return NewWithClient(api.NewClient(opts))
}

func NewWithClient(client *api.Client) *IronSource {
	return &IronSource{
		client:   client,
		monetize: monetize.New(client),
		promote:  promote.New(client),
	}
}

// NewFromConfig validates cfg and builds a client from it.
func NewFromConfig(cfg *config.Config) (*IronSource, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return New(cfg.ClientOpts()), nil
}

// SetCredentials replaces the account credentials used by both façades.
// user is only needed for the audience API.
func (s *IronSource) SetCredentials(user, token, secret string) {
	s.client.SetCredentials(user, token, secret)
}

func (s *IronSource) Monetize() *monetize.API {
	return s.monetize
}

func (s *IronSource) Promote() *promote.API {
	return s.promote
}

func (s *IronSource) Client() *api.Client {
	return s.client
}
