package main

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"book-catalog/internal/domains/user"
	"book-catalog/pkg/jwt"
)

type userMap map[uuid.UUID]*user.User

func (m userMap) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, user.ErrUserNotFound
}

func TestIssue(t *testing.T) {
	tokens := jwt.NewManager("cli-secret", time.Hour, time.Hour)
	known := &user.User{ID: uuid.New(), Username: "test_user1"}
	users := userMap{known.ID: known}

	token, err := issue(context.Background(), users, tokens, known.ID)
	require.NoError(t, err)

	claims, err := tokens.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, known.ID.String(), claims.UserID)
	assert.Equal(t, "test_user1", claims.Username)

	_, err = issue(context.Background(), users, tokens, uuid.New())
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}
