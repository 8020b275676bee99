package auth

import (
	"context"

	"github.com/magabrotheeeer/tourbooking/internal/models"
	authservice "github.com/magabrotheeeer/tourbooking/internal/services/auth"
)

// Service описывает бизнес-логику аутентификации, нужную обработчикам.
type Service interface {
	Signup(ctx context.Context, in models.SignupInput) (*authservice.Session, error)
	Login(ctx context.Context, email, password string) (*authservice.Session, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, rawToken string, in models.ResetPasswordInput) (*authservice.Session, error)
	UpdatePassword(ctx context.Context, userID string, in models.UpdatePasswordInput) (*authservice.Session, error)
}
