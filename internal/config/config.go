package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`
	DatabaseURL string `env:"DATABASE_URL"`

	Paypal       Paypal       `envPrefix:"PAYPAL_"`
	ExchangeRate ExchangeRate `envPrefix:"EXCHANGE_RATE_"`
}

type Paypal struct {
	Active bool   `env:"ACTIVE" envDefault:"true"`
	Mode   string `env:"MODE" envDefault:"sandbox" validate:"oneof=sandbox live"`

	ClientIDSandbox     string `env:"CLIENT_ID_SANDBOX"`
	ClientSecretSandbox string `env:"CLIENT_SECRET_SANDBOX"`
	IPNSecretSandbox    string `env:"IPN_SECRET_SANDBOX"`

	ClientIDLive     string `env:"CLIENT_ID_LIVE"`
	ClientSecretLive string `env:"CLIENT_SECRET_LIVE"`
	IPNSecretLive    string `env:"IPN_SECRET_LIVE"`

	// Short string prepended to the numeric order id to form the
	// provider-facing invoice number, e.g. "sjl1" + 42 -> "sjl142".
	InvoicePrefix string `env:"INV_PREFIX" envDefault:"sjl1" validate:"min=1,max=6"`

	SandboxApiURL string `env:"SANDBOX_API_URL" envDefault:"https://api-m.sandbox.paypal.com/v1"`
	LiveApiURL    string `env:"LIVE_API_URL" envDefault:"https://api-m.paypal.com/v1"`
}

type ExchangeRate struct {
	BaseURL string `env:"BASE_URL" envDefault:"https://api.exchangerate-api.com"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

// BaseApiURL returns the PayPal REST base for the configured mode.
func (p *Paypal) BaseApiURL() string {
	if p.Mode == "live" {
		return p.LiveApiURL
	}
	return p.SandboxApiURL
}

// Credentials returns the client id/secret pair for the configured mode.
func (p *Paypal) Credentials() (id string, secret string) {
	if p.Mode == "live" {
		return p.ClientIDLive, p.ClientSecretLive
	}
	return p.ClientIDSandbox, p.ClientSecretSandbox
}

// IPNSecret returns the HMAC secret for the configured mode.
func (p *Paypal) IPNSecret() string {
	if p.Mode == "live" {
		return p.IPNSecretLive
	}
	return p.IPNSecretSandbox
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	// an active gateway must never sign or verify against empty secrets
	if c.Paypal.Active {
		if id, secret := c.Paypal.Credentials(); id == "" || secret == "" {
			return fmt.Errorf("paypal %s client credentials are not set", c.Paypal.Mode)
		}
		if c.Paypal.IPNSecret() == "" {
			return fmt.Errorf("paypal %s ipn secret is not set", c.Paypal.Mode)
		}
	}

	return nil
}
