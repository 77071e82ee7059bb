package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/pkg/errors"
)

// Token types carried in the "token_type" claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Default lifetimes for issued tokens.
const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 24 * time.Hour
)

// Pair is an access and refresh token issued together.
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Issuer mints token pairs for the development backend.
type Issuer struct {
	signer     Signer
	accessTTL  time.Duration
	refreshTTL time.Duration
	nowTime    func() time.Time
}

// IssuerOption defines a function type to modify the Issuer instance.
type IssuerOption func(*Issuer)

// WithTTLs overrides the access and refresh lifetimes.
func WithTTLs(access, refresh time.Duration) IssuerOption {
	return func(i *Issuer) {
		i.accessTTL = access
		i.refreshTTL = refresh
	}
}

// WithIssuerNowTime sets the now time function (primarily for testing)
func WithIssuerNowTime(nowFunc func() time.Time) IssuerOption {
	return func(i *Issuer) {
		i.nowTime = nowFunc
	}
}

func NewIssuer(signer Signer, opts ...IssuerOption) *Issuer {
	i := &Issuer{
		signer:     signer,
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		nowTime:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue signs a pair for account. Both tokens carry the username and role
// claims the client routes on.
func (i *Issuer) Issue(account *users.Account) (Pair, error) {
	now := i.nowTime()

	access, err := i.signer.Sign(i.claims(account, TypeAccess, now, i.accessTTL))
	if err != nil {
		return Pair{}, errors.Wrap(err, "[Issuer.Issue] access")
	}
	refresh, err := i.signer.Sign(i.claims(account, TypeRefresh, now, i.refreshTTL))
	if err != nil {
		return Pair{}, errors.Wrap(err, "[Issuer.Issue] refresh")
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

func (i *Issuer) claims(account *users.Account, tokenType string, now time.Time, ttl time.Duration) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":        account.ID,
		"username":   account.Username,
		"role":       string(account.Role),
		"token_type": tokenType,
		"jti":        uuid.New().String(),
		"iat":        now.Unix(),
		"exp":        now.Add(ttl).Unix(),
	}
}
