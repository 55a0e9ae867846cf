package service

import (
	"interview_backend/internal/config"
	"interview_backend/internal/util"
	"interview_backend/pkg/logger"

	"golang.org/x/crypto/bcrypt"
)

// AuthService 面试官登录：单一共享密码（bcrypt 哈希写在配置里）换取 JWT
type AuthService struct {
	Cfg *config.AuthConfig
}

func NewAuthService(cfg *config.AuthConfig) *AuthService {
	return &AuthService{Cfg: cfg}
}

func (s *AuthService) Login(password string) (string, error) {
	if s.Cfg.InterviewerPasswordHash == "" {
		logger.Log.Warn("Interviewer login attempted but no password hash is configured")
		return "", util.ErrInvalidPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.Cfg.InterviewerPasswordHash), []byte(password)); err != nil {
		return "", util.ErrInvalidPassword
	}
	return util.GenerateJWT(util.RoleInterviewer, s.Cfg.JWTSecret, s.Cfg.ExpireTime)
}

// HashPassword 生成写入配置用的哈希
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
