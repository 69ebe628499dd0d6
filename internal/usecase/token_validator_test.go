//go:build unit

package usecase_test

import (
	"testing"
	"time"

	"bakery-flashsale/internal/domain/user"
	"bakery-flashsale/internal/pkg/jwt"
	"bakery-flashsale/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenValidator_ValidateToken(t *testing.T) {
	svc := jwt.NewService("test-secret", "storefront")
	validator := usecase.NewTokenValidator(svc)
	userID := uuid.New()

	t.Run("有効なトークンからActorを得る", func(t *testing.T) {
		token, err := svc.GenerateToken(userID, user.RoleCustomer, time.Minute)
		require.NoError(t, err)

		actor, err := validator.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, user.Actor{UserID: userID, Role: user.RoleCustomer}, actor)
	})

	t.Run("未知のロールは拒否", func(t *testing.T) {
		token, err := svc.GenerateToken(userID, user.Role("admin"), time.Minute)
		require.NoError(t, err)

		_, err = validator.ValidateToken(token)
		assert.ErrorIs(t, err, user.ErrInvalidRole)
	})

	t.Run("別の鍵で署名されたトークンは拒否", func(t *testing.T) {
		token, err := jwt.NewService("other-secret", "storefront").GenerateToken(userID, user.RoleCustomer, time.Minute)
		require.NoError(t, err)

		_, err = validator.ValidateToken(token)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})
}
