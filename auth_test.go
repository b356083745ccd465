package main

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpaqueIssuer(t *testing.T) {
	issuer := NewOpaqueIssuer()

	cred, err := issuer.Issue("alice")
	require.NoError(t, err)
	require.NotEmpty(t, cred.Token)
	assert.Zero(t, cred.ExpiresIn)

	claims, err := issuer.Verify(cred.Token)
	require.NoError(t, err)
	assert.Nil(t, claims, "opaque tokens carry no claims")

	// Same decision on repeat verification.
	_, err = issuer.Verify(cred.Token)
	require.NoError(t, err)

	_, err = issuer.Verify("never-issued")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := issuer.Issue("bob")
	require.NoError(t, err)
	assert.NotEqual(t, cred.Token, other.Token)
}

func TestJWTIssuer(t *testing.T) {
	base := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	issue := &jwtIssuer{secret: []byte("s3cret"), ttl: 30 * time.Minute, now: func() time.Time { return base }}

	cred, err := issue.Issue("alice")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cred.ExpiresIn)

	t.Run("valid within the ttl", func(t *testing.T) {
		verify := &jwtIssuer{secret: []byte("s3cret"), ttl: 30 * time.Minute, now: func() time.Time { return base.Add(29 * time.Minute) }}
		claims, err := verify.Verify(cred.Token)
		require.NoError(t, err)
		require.NotNil(t, claims)
		assert.Equal(t, "alice", claims.Subject)

		// Idempotent: verifying again yields the same decision.
		again, err := verify.Verify(cred.Token)
		require.NoError(t, err)
		assert.Equal(t, claims.Subject, again.Subject)
	})

	t.Run("expired after the ttl", func(t *testing.T) {
		verify := &jwtIssuer{secret: []byte("s3cret"), ttl: 30 * time.Minute, now: func() time.Time { return base.Add(31 * time.Minute) }}
		_, err := verify.Verify(cred.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		verify := &jwtIssuer{secret: []byte("other"), ttl: 30 * time.Minute, now: func() time.Time { return base }}
		_, err := verify.Verify(cred.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := issue.Verify("definitely.not.a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestBearerHeaderMatching(t *testing.T) {
	cfg := testConfig()
	router := newRouter(cfg, NewMemoryStore(), NewJWTIssuer(cfg.JWTSecret, cfg.TokenTTL))
	token := loginToken(t, router)

	t.Run("scheme is case-insensitive", func(t *testing.T) {
		w := performRequest(router, http.MethodPost, "/posts", `{"title":"a","userId":1}`,
			map[string]string{"Authorization": "bearer " + token})
		require.Equal(t, http.StatusCreated, w.Code)
	})

	for name, header := range map[string]string{
		"wrong scheme": "Basic " + token,
		"no scheme":    token,
		"empty":        "",
	} {
		t.Run(name, func(t *testing.T) {
			headers := map[string]string{}
			if header != "" {
				headers["Authorization"] = header
			}
			w := performRequest(router, http.MethodDelete, "/posts/1", "", headers)
			require.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "missing bearer token", decodeBody(t, w)["error"])
		})
	}
}
