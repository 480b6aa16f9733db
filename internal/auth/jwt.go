// AngelaMos | 2026
// jwt.go

package auth

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/science-ai/backend/internal/config"
	"github.com/science-ai/backend/internal/core"
	"github.com/science-ai/backend/internal/middleware"
)

// ErrSigningUnavailable is returned when a token is requested from a manager
// that was loaded without a private key.
var ErrSigningUnavailable = errors.New("jwt: no private key loaded")

const (
	claimRole = "role"
	claimPlan = "plan"
	claimType = "type"

	tokenTypeAccess = "access"
	defaultRole     = "user"
)

// JWTManager verifies ES256 access tokens minted by the identity service.
// When the private key is also present it can mint tokens itself, which the
// operator CLI and tests rely on.
type JWTManager struct {
	privateKey jwk.Key
	publicKey  jwk.Key
	publicJWKS jwk.Set
	keyID      string
	config     config.JWTConfig
}

func NewJWTManager(cfg config.JWTConfig) (*JWTManager, error) {
	m := &JWTManager{config: cfg}

	privatePEM, err := os.ReadFile(cfg.PrivateKeyPath)
	switch {
	case err == nil:
		if loadErr := m.loadPrivate(privatePEM); loadErr != nil {
			return nil, loadErr
		}
	case errors.Is(err, fs.ErrNotExist) || cfg.PrivateKeyPath == "":
		publicPEM, readErr := os.ReadFile(cfg.PublicKeyPath)
		if readErr != nil {
			return nil, fmt.Errorf("read public key: %w", readErr)
		}
		if loadErr := m.loadPublic(publicPEM); loadErr != nil {
			return nil, loadErr
		}
	default:
		return nil, fmt.Errorf("read private key: %w", err)
	}

	if setErr := m.publicKey.Set(jwk.KeyUsageKey, "sig"); setErr != nil {
		return nil, fmt.Errorf("set key usage: %w", setErr)
	}

	m.publicJWKS = jwk.NewSet()
	if addErr := m.publicJWKS.AddKey(m.publicKey); addErr != nil {
		return nil, fmt.Errorf("add key to set: %w", addErr)
	}

	return m, nil
}

func (m *JWTManager) loadPrivate(pem []byte) error {
	privateKey, err := jwk.ParseKey(pem, jwk.WithPEM(true))
	if err != nil {
		return fmt.Errorf("parse private key: %w", err)
	}

	publicKey, err := privateKey.PublicKey()
	if err != nil {
		return fmt.Errorf("derive public key: %w", err)
	}

	if err := m.setIdentity(publicKey); err != nil {
		return err
	}
	if err := m.setIdentity(privateKey); err != nil {
		return err
	}

	m.privateKey = privateKey
	m.publicKey = publicKey
	return nil
}

func (m *JWTManager) loadPublic(pem []byte) error {
	publicKey, err := jwk.ParseKey(pem, jwk.WithPEM(true))
	if err != nil {
		return fmt.Errorf("parse public key: %w", err)
	}

	if err := m.setIdentity(publicKey); err != nil {
		return err
	}

	m.publicKey = publicKey
	return nil
}

// setIdentity stamps the algorithm and a key id derived from the public key
// thumbprint, so issuer and verifier agree on kid without coordination.
func (m *JWTManager) setIdentity(key jwk.Key) error {
	if m.keyID == "" {
		pub, err := key.PublicKey()
		if err != nil {
			return fmt.Errorf("derive public key: %w", err)
		}
		thumb, err := pub.Thumbprint(crypto.SHA256)
		if err != nil {
			return fmt.Errorf("thumbprint key: %w", err)
		}
		m.keyID = base64.RawURLEncoding.EncodeToString(thumb)[:16]
	}

	if err := key.Set(jwk.AlgorithmKey, jwa.ES256()); err != nil {
		return fmt.Errorf("set algorithm: %w", err)
	}
	if err := key.Set(jwk.KeyIDKey, m.keyID); err != nil {
		return fmt.Errorf("set key id: %w", err)
	}
	return nil
}

func GenerateKeyPair(privateKeyPath, publicKeyPath string) error {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}

	jwkPrivate, err := jwk.Import(privateKey)
	if err != nil {
		return fmt.Errorf("import private key: %w", err)
	}

	privatePEM, err := jwk.Pem(jwkPrivate)
	if err != nil {
		return fmt.Errorf("encode private key: %w", err)
	}

	if writeErr := os.WriteFile(privateKeyPath, privatePEM, 0o600); writeErr != nil {
		return fmt.Errorf("write private key: %w", writeErr)
	}

	jwkPublic, err := jwkPrivate.PublicKey()
	if err != nil {
		return fmt.Errorf("derive public key: %w", err)
	}

	publicPEM, err := jwk.Pem(jwkPublic)
	if err != nil {
		return fmt.Errorf("encode public key: %w", err)
	}

	//nolint:gosec // G306: public key is intentionally world-readable
	if writeErr := os.WriteFile(publicKeyPath, publicPEM, 0o644); writeErr != nil {
		return fmt.Errorf("write public key: %w", writeErr)
	}

	return nil
}

type AccessTokenClaims struct {
	UserID string `json:"sub"`
	Role   string `json:"role"`
	Plan   string `json:"plan"`
}

func (m *JWTManager) CanSign() bool {
	return m.privateKey != nil
}

func (m *JWTManager) CreateAccessToken(claims AccessTokenClaims) (string, error) {
	if m.privateKey == nil {
		return "", ErrSigningUnavailable
	}

	now := time.Now()

	token, err := jwt.NewBuilder().
		JwtID(uuid.NewString()).
		Issuer(m.config.Issuer).
		Audience([]string{m.config.Audience}).
		Subject(claims.UserID).
		IssuedAt(now).
		Expiration(now.Add(m.config.AccessTokenExpire)).
		NotBefore(now).
		Claim(claimRole, claims.Role).
		Claim(claimPlan, claims.Plan).
		Claim(claimType, tokenTypeAccess).
		Build()
	if err != nil {
		return "", fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.ES256(), m.privateKey))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return string(signed), nil
}

// VerifyAccessToken checks signature, issuer, audience and lifetime. A token
// without a role claim is treated as a regular user; a missing plan is left
// empty and resolved downstream.
func (m *JWTManager) VerifyAccessToken(
	_ context.Context,
	tokenString string,
) (*middleware.AccessTokenClaims, error) {
	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(jwa.ES256(), m.publicKey),
		jwt.WithValidate(true),
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithAudience(m.config.Audience),
	)
	if err != nil {
		if isTokenExpiredError(err) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	var tokenType string
	if err := token.Get(claimType, &tokenType); err != nil ||
		tokenType != tokenTypeAccess {
		return nil, fmt.Errorf(
			"verify token: invalid token type: %w",
			core.ErrTokenInvalid,
		)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf(
			"verify token: missing subject: %w",
			core.ErrTokenInvalid,
		)
	}

	role := defaultRole
	var roleStr string
	if err := token.Get(claimRole, &roleStr); err == nil && roleStr != "" {
		role = roleStr
	}

	var plan string
	//nolint:errcheck // plan is optional
	_ = token.Get(claimPlan, &plan)

	jti, _ := token.JwtID()
	expiresAt, _ := token.Expiration()

	return &middleware.AccessTokenClaims{
		UserID:    subject,
		Role:      role,
		Plan:      plan,
		TokenID:   jti,
		ExpiresAt: expiresAt,
	}, nil
}

func isTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "exp") &&
		strings.Contains(errStr, "not satisfied")
}

func (m *JWTManager) GetJWKSHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "public, max-age=3600")

		if err := json.NewEncoder(w).Encode(m.publicJWKS); err != nil {
			http.Error(
				w,
				"Internal Server Error",
				http.StatusInternalServerError,
			)
			return
		}
	}
}

func (m *JWTManager) GetKeyID() string {
	return m.keyID
}
