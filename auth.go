package main

import (
	"errors"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// claimsKey is where the verify stage parks decoded claims on the gin context
// for downstream auditing. Only the JWT policy produces claims.
const claimsKey = "authClaims"

// ErrInvalidToken is returned by Verify for malformed, unknown, or expired
// tokens.
var ErrInvalidToken = errors.New("invalid token")

// Claims carried by a signed token: a subject plus the registered expiry.
type Claims struct {
	jwt.RegisteredClaims
}

// Credential is an issued token. ExpiresIn is zero for the opaque policy,
// which has no expiry at all.
type Credential struct {
	Token     string
	ExpiresIn time.Duration
}

// TokenIssuer issues credentials on login and verifies them on protected
// operations. The two policies are interchangeable; the pipeline never cares
// which one it holds.
type TokenIssuer interface {
	// Issue creates a credential for the given subject.
	Issue(username string) (Credential, error)

	// Verify checks a presented token. It returns the decoded claims for
	// self-contained tokens, nil claims for opaque ones, and ErrInvalidToken
	// when the token is not acceptable.
	Verify(token string) (*Claims, error)
}

// opaqueIssuer hands out random tokens and remembers them for the lifetime of
// the process. There is no expiry and no revocation; a restart invalidates
// everything. The set is append-only, so the RWMutex only has to make
// insertion safe under concurrent membership tests.
type opaqueIssuer struct {
	mu     sync.RWMutex
	issued map[string]struct{}
}

// NewOpaqueIssuer creates the in-memory token-set policy.
func NewOpaqueIssuer() TokenIssuer {
	return &opaqueIssuer{issued: make(map[string]struct{})}
}

func (o *opaqueIssuer) Issue(string) (Credential, error) {
	token := uuid.NewString()
	o.mu.Lock()
	o.issued[token] = struct{}{}
	o.mu.Unlock()
	return Credential{Token: token}, nil
}

func (o *opaqueIssuer) Verify(token string) (*Claims, error) {
	o.mu.RLock()
	_, ok := o.issued[token]
	o.mu.RUnlock()
	if !ok {
		return nil, ErrInvalidToken
	}
	return nil, nil
}

// jwtIssuer signs self-contained HS256 tokens carrying the subject and an
// absolute expiry. Verification is stateless. The clock is injected so tests
// can move time.
type jwtIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTIssuer creates the signed/expiring token policy.
func NewJWTIssuer(secret string, ttl time.Duration) TokenIssuer {
	return &jwtIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (j *jwtIssuer) Issue(username string) (Credential, error) {
	now := j.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return Credential{}, err
	}
	return Credential{Token: token, ExpiresIn: j.ttl}, nil
}

func (j *jwtIssuer) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(j.now))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login godoc
// @Summary Issue an API token
// @Description Issues a bearer token for write access to /posts. Credentials are required but not checked against any identity store.
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} main.errorResponse
// @Router /login [post]
func handleLogin(issuer TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
			return
		}
		cred, err := issuer.Issue(req.Username)
		if err != nil {
			log.Errorf("token issuance failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
			return
		}
		resp := gin.H{"token": cred.Token}
		if cred.ExpiresIn > 0 {
			resp["expiresIn"] = int64(cred.ExpiresIn / time.Second)
		}
		log.Infof("issued token for %s", req.Username)
		c.JSON(http.StatusOK, resp)
	}
}

var bearerPattern = regexp.MustCompile(`(?i)^Bearer\s+(.+)$`)

// requireToken gates write operations behind a bearer token. Reads pass
// through untouched. Decoded claims, when the policy produces any, end up on
// the gin context under claimsKey.
func (p *pipeline) requireToken(c *gin.Context, st *requestState) *apiError {
	switch st.method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return nil
	}

	m := bearerPattern.FindStringSubmatch(c.GetHeader("Authorization"))
	if m == nil {
		return errMissingToken
	}
	claims, err := p.tokens.Verify(m[1])
	if err != nil {
		return errInvalidToken
	}
	if claims != nil {
		st.claims = claims
		c.Set(claimsKey, claims)
	}
	return nil
}
