package interceptor

import (
	"strings"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/dispatchkit/dispatchkit/internal/observability"
	"github.com/dispatchkit/dispatchkit/internal/request"
)

// AttrAuthToken exposes the validated JWT to the handler and later
// interceptors.
const AttrAuthToken = "dispatchkit.interceptor.auth.token"

// Auth rejects requests without a valid bearer token by
// short-circuiting the chain. An invalid token is an authorization
// outcome, not an internal error.
type Auth struct {
	keySet   jwk.Set
	key      any
	alg      jwa.SignatureAlgorithm
	issuer   string
	audience string
	logger   observability.Logger
}

// AuthOption is a functional option for configuring the auth
// interceptor.
type AuthOption func(*Auth)

// WithAuthKeySet validates tokens against a JWK set; key algorithms are
// inferred from the keys.
func WithAuthKeySet(keySet jwk.Set) AuthOption {
	return func(a *Auth) {
		a.keySet = keySet
	}
}

// WithAuthKey validates tokens with a single key and algorithm.
func WithAuthKey(alg jwa.SignatureAlgorithm, key any) AuthOption {
	return func(a *Auth) {
		a.alg = alg
		a.key = key
	}
}

// WithAuthIssuer requires the iss claim to match.
func WithAuthIssuer(issuer string) AuthOption {
	return func(a *Auth) {
		a.issuer = issuer
	}
}

// WithAuthAudience requires the aud claim to contain the value.
func WithAuthAudience(audience string) AuthOption {
	return func(a *Auth) {
		a.audience = audience
	}
}

// WithAuthLogger sets the logger.
func WithAuthLogger(logger observability.Logger) AuthOption {
	return func(a *Auth) {
		a.logger = logger
	}
}

// NewAuth creates an auth interceptor. At least one of WithAuthKeySet
// or WithAuthKey must be provided.
func NewAuth(opts ...AuthOption) *Auth {
	a := &Auth{
		logger: observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// PreHandle validates the bearer token and short-circuits on failure.
func (a *Auth) PreHandle(rc *request.Context, handler any) (bool, error) {
	raw, ok := bearerToken(rc)
	if !ok {
		a.logger.Debug("missing bearer token",
			observability.String("request_id", rc.ID()),
			observability.String("path", rc.Path()),
		)
		return false, nil
	}

	token, err := jwt.Parse([]byte(raw), a.parseOptions()...)
	if err != nil {
		a.logger.Warn("token validation failed",
			observability.String("request_id", rc.ID()),
			observability.String("path", rc.Path()),
			observability.Error(err),
		)
		return false, nil
	}

	rc.Set(AttrAuthToken, token)
	return true, nil
}

// PostHandle is a no-op.
func (a *Auth) PostHandle(rc *request.Context, handler any, result any) error {
	return nil
}

// AfterCompletion is a no-op.
func (a *Auth) AfterCompletion(rc *request.Context, handler any, cause error) error {
	return nil
}

// parseOptions assembles the jwt.Parse options from the configuration.
func (a *Auth) parseOptions() []jwt.ParseOption {
	opts := []jwt.ParseOption{jwt.WithValidate(true)}

	if a.keySet != nil {
		opts = append(opts, jwt.WithKeySet(a.keySet, jws.WithInferAlgorithmFromKey(true)))
	}
	if a.key != nil {
		opts = append(opts, jwt.WithKey(a.alg, a.key))
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	if a.audience != "" {
		opts = append(opts, jwt.WithAudience(a.audience))
	}

	return opts
}

// bearerToken extracts the bearer token from the Authorization header.
func bearerToken(rc *request.Context) (string, bool) {
	header := rc.Header().Get("Authorization")
	if header == "" {
		return "", false
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}
