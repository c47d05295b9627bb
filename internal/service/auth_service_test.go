package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/verdantlab/ecoquest-api/internal/dto"
	"github.com/verdantlab/ecoquest-api/internal/models"
	"github.com/verdantlab/ecoquest-api/internal/repository"
)

const testSecret = "unit-test-secret"

func newAuthService(t *testing.T) AuthService {
	t.Helper()
	db := openTestDB(t)
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewAuthService(repository.NewUserRepository(db), validate, testSecret, time.Hour, testLogger())
}

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	svc := newAuthService(t)

	registered, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "supersecret1",
		Role:     models.RoleStudent,
	})
	require.NoError(t, err)
	require.NotEmpty(t, registered.Token)
	require.Equal(t, models.RoleStudent, registered.User.Role)

	token, err := jwt.Parse(registered.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	require.Equal(t, models.RoleStudent, claims["role"])

	login, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "asha@example.com",
		Password: "supersecret1",
	})
	require.NoError(t, err)
	require.Equal(t, registered.User.ID, login.User.ID)
}

func TestAuthServiceDuplicateEmail(t *testing.T) {
	svc := newAuthService(t)

	payload := dto.RegisterRequest{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "supersecret1",
		Role:     models.RoleStudent,
	}

	_, err := svc.Register(context.Background(), payload)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), payload)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthServiceWrongPassword(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "supersecret1",
		Role:     models.RoleStudent,
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{
		Email:    "asha@example.com",
		Password: "wrong-password",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever1",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
