// AngelaMos | 2026
// revocation.go

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/science-ai/backend/internal/core"
	"github.com/science-ai/backend/internal/middleware"
)

const revokedKeyPrefix = "auth:revoked:"

// RevocationList remembers access tokens that were logged out before they
// expired.
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type redisRevocations struct {
	rdb *redis.Client
}

func NewRedisRevocations(rdb *redis.Client) RevocationList {
	return &redisRevocations{rdb: rdb}
}

// Revoke keeps the entry only as long as the token itself would be valid.
func (r *redisRevocations) Revoke(
	ctx context.Context,
	tokenID string,
	expiresAt time.Time,
) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	if err := r.rdb.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	return nil
}

func (r *redisRevocations) IsRevoked(
	ctx context.Context,
	tokenID string,
) (bool, error) {
	exists, err := r.rdb.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}

	return exists > 0, nil
}

// RevokingVerifier rejects tokens present in the revocation list. A lookup
// failure lets the token through and is logged, since access tokens are
// short-lived.
type RevokingVerifier struct {
	next        middleware.TokenVerifier
	revocations RevocationList
	logger      *slog.Logger
}

func NewRevokingVerifier(
	next middleware.TokenVerifier,
	revocations RevocationList,
	logger *slog.Logger,
) *RevokingVerifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &RevokingVerifier{next: next, revocations: revocations, logger: logger}
}

func (v *RevokingVerifier) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := v.next.VerifyAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if claims.TokenID == "" {
		return claims, nil
	}

	revoked, err := v.revocations.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		v.logger.WarnContext(ctx, "revocation check failed, accepting token",
			"error", err,
			"user_id", claims.UserID,
		)
		return claims, nil
	}
	if revoked {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	return claims, nil
}
