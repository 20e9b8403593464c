package qbo

import "fmt"

// Environment selects the QuickBooks Online deployment a client talks to.
// It is immutable after selection and determines the four fixed URLs used by
// the client: discovery, API base, user info, and token migration.
type Environment string

const (
	// Sandbox targets the developer sandbox deployment.
	Sandbox Environment = "sandbox"

	// Production targets the live deployment.
	Production Environment = "production"
)

// ParseEnvironment maps a configuration string to an Environment.
func ParseEnvironment(value string) (Environment, error) {
	switch value {
	case "", string(Sandbox):
		return Sandbox, nil
	case string(Production):
		return Production, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEnvironment, value)
	}
}

// DiscoveryURL returns the OpenID discovery document URL.
func (e Environment) DiscoveryURL() string {
	if e == Production {
		return "https://developer.intuit.com/.well-known/openid_configuration/"
	}

	return "https://developer.intuit.com/.well-known/openid_sandbox_configuration/"
}

// EndpointURL returns the API base URL requests are built against.
func (e Environment) EndpointURL() string {
	if e == Production {
		return "https://quickbooks.api.intuit.com/v3/"
	}

	return "https://sandbox-quickbooks.api.intuit.com/v3/"
}

// UserInfoURL returns the OpenID Connect user-info endpoint.
func (e Environment) UserInfoURL() string {
	if e == Production {
		return "https://accounts.platform.intuit.com/v1/openid_connect/userinfo"
	}

	return "https://sandbox-accounts.platform.intuit.com/v1/openid_connect/userinfo"
}

// MigrationURL returns the OAuth token migration endpoint.
func (e Environment) MigrationURL() string {
	if e == Production {
		return "https://developer-sandbox.api.intuit.com/v2/oauth2/tokens/migrate"
	}

	return "https://developer.api.intuit.com/v2/oauth2/tokens/migrate"
}

// DiscoveryDoc is the provider metadata fetched once at startup and held
// immutably for the client's lifetime. Only token_endpoint is used by the
// client itself; the remaining fields are exposed for callers running their
// own OAuth flows.
type DiscoveryDoc struct {
	Issuer                string   `json:"issuer"                 yaml:"issuer"`
	AuthorizationEndpoint string   `json:"authorization_endpoint" yaml:"authorization_endpoint"`
	TokenEndpoint         string   `json:"token_endpoint"         yaml:"token_endpoint"`
	UserinfoEndpoint      string   `json:"userinfo_endpoint"      yaml:"userinfo_endpoint"`
	RevocationEndpoint    string   `json:"revocation_endpoint"    yaml:"revocation_endpoint"`
	JWKSURI               string   `json:"jwks_uri"               yaml:"jwks_uri"`
	ScopesSupported       []string `json:"scopes_supported"       yaml:"scopes_supported"`
}
