package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/billmaster-api/internal/application/dto"
	"github.com/jhoicas/billmaster-api/internal/domain"
	"github.com/jhoicas/billmaster-api/internal/domain/entity"
	"github.com/jhoicas/billmaster-api/internal/domain/repository"
	"github.com/jhoicas/billmaster-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase login: verifica credenciales y emite el token que identifica al caller.
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg}
}

// Login verifica username/password, genera JWT y retorna token + usuario.
// Usuario inexistente y password incorrecto devuelven el mismo error.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, domain.NewValidationError("", "username and password are required")
	}
	user, err := uc.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("login: buscar usuario: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.Active {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Username, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	log.Info().Int64("user_id", user.ID).Str("role", user.Role).Msg("auth: login")
	return &dto.LoginResponse{
		Token:     token,
		ExpiresIn: int64(uc.jwtCfg.ExpMinutes) * 60,
		User:      toUserResponse(user),
	}, nil
}

// Me relee al usuario del token. Un usuario borrado o desactivado después del login
// deja de ser válido aunque el JWT no haya vencido.
func (uc *AuthUseCase) Me(ctx context.Context, caller entity.Caller) (*dto.UserResponse, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthorized
	}
	user, err := uc.userRepo.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("me: buscar usuario: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.Active {
		return nil, domain.ErrForbidden
	}
	out := toUserResponse(user)
	return &out, nil
}

// HashPassword genera el hash bcrypt (semillas y tests).
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func toUserResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Role:     u.Role,
	}
}
