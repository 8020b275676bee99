// Package user содержит операции над профилями пользователей:
// административное управление и работу с собственным профилем.
package user

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/magabrotheeeer/tourbooking/internal/apperr"
	"github.com/magabrotheeeer/tourbooking/internal/models"
	"github.com/magabrotheeeer/tourbooking/internal/query"
)

// MsgNotForPassword возвращается при попытке сменить пароль через профиль.
const MsgNotForPassword = "This route is not for updating password please use /update-password"

// Repository определяет методы хранилища пользователей.
type Repository interface {
	ListUsers(ctx context.Context, values url.Values) ([]query.Document, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error)
	DeactivateUser(ctx context.Context, id string) error
	DeleteUser(ctx context.Context, id string) error
}

// Service реализует операции над пользователями.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// NewService создаёт Service.
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) List(ctx context.Context, values url.Values) ([]query.Document, error) {
	return s.repo.ListUsers(ctx, values)
}

func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// Update применяет административный патч. Роль проверяется на допустимость.
func (s *Service) Update(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	if patch.Role != nil && !patch.Role.Valid() {
		return nil, apperr.Validation("invalid input data. invalid role", map[string]string{"role": "invalid role"})
	}
	return s.repo.UpdateUser(ctx, id, patch)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	const op = "user.Delete"
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.log.Info("user deleted", slog.String("op", op), slog.String("id", id))
	return nil
}

// Me возвращает актуальное состояние профиля текущего пользователя.
func (s *Service) Me(ctx context.Context, actor *models.User) (*models.User, error) {
	return s.repo.GetUserByID(ctx, actor.ID)
}

// UpdateMe меняет имя и почту текущего пользователя. Остальные поля игнорируются.
func (s *Service) UpdateMe(ctx context.Context, actor *models.User, in models.UpdateMeInput) (*models.User, error) {
	if in.Password != "" || in.PasswordConfirm != "" {
		return nil, apperr.Validation(MsgNotForPassword, nil)
	}
	patch := models.UserPatch{Name: in.Name, Email: in.Email}
	if patch.Empty() {
		return s.repo.GetUserByID(ctx, actor.ID)
	}
	return s.repo.UpdateUser(ctx, actor.ID, patch)
}

// DeleteMe деактивирует учётную запись текущего пользователя.
func (s *Service) DeleteMe(ctx context.Context, actor *models.User) error {
	const op = "user.DeleteMe"
	if err := s.repo.DeactivateUser(ctx, actor.ID); err != nil {
		return err
	}
	s.log.Info("user deactivated", slog.String("op", op), slog.String("id", actor.ID))
	return nil
}
