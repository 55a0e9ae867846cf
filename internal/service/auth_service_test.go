package service

import (
	"testing"
	"time"

	"interview_backend/internal/config"
	"interview_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-32"

func TestLogin(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	svc := NewAuthService(&config.AuthConfig{
		JWTSecret:               testSecret,
		ExpireTime:              time.Hour,
		InterviewerPasswordHash: hash,
	})

	token, err := svc.Login("s3cret")
	require.NoError(t, err)
	claims, err := util.ParseJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, util.RoleInterviewer, claims.Role)

	_, err = svc.Login("wrong")
	assert.ErrorIs(t, err, util.ErrInvalidPassword)

	_, err = util.ParseJWT(token, "another-secret-that-is-long-enough")
	assert.Error(t, err)
}

func TestLoginWithoutConfiguredPassword(t *testing.T) {
	svc := NewAuthService(&config.AuthConfig{JWTSecret: testSecret, ExpireTime: time.Hour})
	_, err := svc.Login("")
	assert.ErrorIs(t, err, util.ErrInvalidPassword)
}
