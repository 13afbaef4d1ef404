package jwt

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("jwt")

// Repository tracks revoked session ids (jti) until their natural expiry.
type Repository interface {
	Revoke(ctx context.Context, jti string, expiration time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type repository struct {
	rdb *redis.Client
}

func NewRepository(rdb *redis.Client) Repository {
	return &repository{rdb}
}

func (r *repository) Revoke(ctx context.Context, jti string, expiration time.Duration) error {
	ctx, span := tracer.Start(ctx, "Jwt.Repository.Revoke")
	defer span.End()

	err := r.rdb.Set(ctx, "jti:"+jti, "revoked", expiration).Err()
	if err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (r *repository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	ctx, span := tracer.Start(ctx, "Jwt.Repository.IsRevoked")
	defer span.End()

	_, err := r.rdb.Get(ctx, "jti:"+jti).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		span.RecordError(err)
		return false, err
	}
	return true, nil
}
