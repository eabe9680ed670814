package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/totegamma/engaja/internal/domain"
	"github.com/totegamma/engaja/jwt"
)

var tracer = otel.Tracer("auth")

const DefaultSessionTTL = 7 * 24 * time.Hour

type AuthService struct {
	secret string
	ttl    time.Duration
}

func NewAuthService(secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &AuthService{
		secret: secret,
		ttl:    ttl,
	}
}

type AuthResult struct {
	UserID string
	Role   domain.Role
}

func (s *AuthService) IssueToken(ctx context.Context, user domain.User) (string, error) {
	_, span := tracer.Start(ctx, "Auth.Service.IssueToken")
	defer span.End()

	token, err := jwt.Create(user.ID, string(user.Role), s.secret, s.ttl)
	if err != nil {
		span.RecordError(err)
		return "", errors.Wrap(err, "jwt creation failed")
	}
	return token, nil
}

func (s *AuthService) AuthJwt(ctx context.Context, token string) (*AuthResult, error) {
	_, span := tracer.Start(ctx, "Auth.Service.AuthJwt")
	defer span.End()

	claims, err := jwt.Validate(token, s.secret)
	if err != nil {
		span.RecordError(errors.Wrap(err, "jwt validation failed"))
		return nil, err
	}

	role, ok := domain.ParseRole(claims.Role)
	if !ok {
		err := fmt.Errorf("invalid role claim: %s", claims.Role)
		span.RecordError(err)
		return nil, err
	}

	return &AuthResult{UserID: claims.Subject, Role: role}, nil
}
