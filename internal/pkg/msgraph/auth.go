package msgraph

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	// DefaultAuthorityURL is the Microsoft identity platform host.
	DefaultAuthorityURL = "https://login.microsoftonline.com"
	// DefaultScope requests every application permission granted to the app.
	DefaultScope = "https://graph.microsoft.com/.default"
)

// ErrTokenRequest is wrapped by every token acquisition failure.
var ErrTokenRequest = errors.New("token request failed")

// TokenProvider returns a bearer token for Graph calls.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// AuthError carries the identity platform error code and description
// (for example invalid_client / AADSTS7000215).
type AuthError struct {
	Code        string
	Description string
	Err         error
}

func (e *AuthError) Error() string {
	switch {
	case e.Code == "" && e.Description == "":
		return fmt.Sprintf("%s: %v", ErrTokenRequest, e.Err)
	case e.Description == "":
		return fmt.Sprintf("%s: %s", ErrTokenRequest, e.Code)
	default:
		return fmt.Sprintf("%s: %s\n%s", ErrTokenRequest, e.Code, e.Description)
	}
}

func (e *AuthError) Unwrap() []error {
	return []error{ErrTokenRequest, e.Err}
}

// Credentials identify an app registration.
type Credentials struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	// AuthorityURL overrides DefaultAuthorityURL.
	AuthorityURL string
	// Cache keeps the token until shortly before expiry instead of acquiring
	// a fresh one on every call.
	Cache bool
	// HTTPClient is used for token requests. Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// ClientCredentials is a TokenProvider for the OAuth2 client-credentials grant.
type ClientCredentials struct {
	cfg        clientcredentials.Config
	httpClient *http.Client
	cache      bool

	mu   sync.Mutex
	last *oauth2.Token
}

// NewClientCredentials builds a provider for the given app registration.
func NewClientCredentials(c Credentials) *ClientCredentials {
	authority := strings.TrimRight(c.AuthorityURL, "/")
	if authority == "" {
		authority = DefaultAuthorityURL
	}

	cc := &ClientCredentials{
		cfg: clientcredentials.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			TokenURL:     fmt.Sprintf("%s/%s/oauth2/v2.0/token", authority, c.TenantID),
			Scopes:       []string{DefaultScope},
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		httpClient: c.HTTPClient,
		cache:      c.Cache,
	}

	return cc
}

// TokenURL returns the token endpoint in use.
func (c *ClientCredentials) TokenURL() string {
	return c.cfg.TokenURL
}

// Token acquires (or reuses, when caching) an access token.
func (c *ClientCredentials) Token(ctx context.Context) (string, error) {
	var (
		tok *oauth2.Token
		err error
	)
	if c.cache {
		tok, err = c.reuse(ctx)
	} else {
		tok, err = c.cfg.Token(c.withClient(ctx))
	}
	if err != nil {
		return "", toAuthError(err)
	}

	if tok.AccessToken == "" {
		return "", &AuthError{Description: "response has no access token", Err: errors.New("empty access token")}
	}

	return tok.AccessToken, nil
}

// reuse returns the last token while it is valid. A refresh is bound to ctx.
func (c *ClientCredentials) reuse(ctx context.Context) (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tok, err := oauth2.ReuseTokenSource(c.last, c.cfg.TokenSource(c.withClient(ctx))).Token()
	if err != nil {
		return nil, err
	}
	c.last = tok

	return tok, nil
}

func (c *ClientCredentials) withClient(ctx context.Context) context.Context {
	if c.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

func toAuthError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		return &AuthError{Code: re.ErrorCode, Description: re.ErrorDescription, Err: err}
	}
	return &AuthError{Err: err}
}

// StaticToken is a TokenProvider returning a fixed token.
type StaticToken string

// Token returns the fixed token.
func (s StaticToken) Token(context.Context) (string, error) {
	return string(s), nil
}
