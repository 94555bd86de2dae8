package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"snap2cook/internal/infrastructure/config"
	"snap2cook/internal/infrastructure/database"
	"snap2cook/internal/pkg/common"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// bcrypt 只使用前 72 個位元組
const maxPasswordBytes = 72

// TokenType 回傳給前端的 token 類型
const TokenType = "bearer"

// Profile 對外公開的使用者資料
type Profile struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	DietPreference string `json:"diet_preference"`
}

// Token 登入成功後回傳的存取權杖
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Service 身分驗證服務
type Service struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService 創建新的身分驗證服務
func NewService(db *gorm.DB, cfg config.AuthConfig) *Service {
	return &Service{
		db:     db,
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTL,
		now:    time.Now,
	}
}

// Signup 註冊新使用者
func (s *Service) Signup(ctx context.Context, username, password, diet string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return common.NewFieldError("username", "is required")
	}
	if password == "" {
		return common.NewFieldError("password", "is required")
	}

	// 快速檢查；並行註冊由唯一索引把關
	var count int64
	if err := s.db.WithContext(ctx).Model(&database.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if count > 0 {
		return common.ErrUsernameTaken
	}

	hashed, err := bcrypt.GenerateFromPassword(truncatePassword(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := database.User{
		Username:       username,
		HashedPassword: string(hashed),
		DietPreference: strings.TrimSpace(diet),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return common.ErrUsernameTaken.WithError(err)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	common.LogInfo("使用者註冊成功", zap.String("username", username), zap.Uint("user_id", user.ID))
	return nil
}

// Login 驗證帳密並簽發權杖
func (s *Service) Login(ctx context.Context, username, password string) (*Token, error) {
	user, err := s.findUser(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), truncatePassword(password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.IssueToken(user.Username)
	if err != nil {
		return nil, err
	}
	return &Token{AccessToken: token, TokenType: TokenType}, nil
}

// Me 取得使用者資料
func (s *Service) Me(ctx context.Context, username string) (*Profile, error) {
	user, err := s.findUser(ctx, username)
	if err != nil {
		return nil, err
	}
	return toProfile(user), nil
}

// UpdateDiet 更新使用者的飲食偏好
func (s *Service) UpdateDiet(ctx context.Context, username, diet string) (*Profile, error) {
	user, err := s.findUser(ctx, username)
	if err != nil {
		return nil, err
	}

	user.DietPreference = strings.TrimSpace(diet)
	if err := s.db.WithContext(ctx).Model(user).Update("diet_preference", user.DietPreference).Error; err != nil {
		return nil, fmt.Errorf("failed to update diet preference: %w", err)
	}
	return toProfile(user), nil
}

// IssueToken 以使用者名稱為 subject 簽發 HS256 權杖
func (s *Service) IssueToken(username string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken 驗證權杖並回傳使用者名稱
func (s *Service) ValidateToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return "", common.ErrInvalidToken.WithError(err)
	}
	if !token.Valid || strings.TrimSpace(claims.Subject) == "" {
		return "", common.ErrInvalidToken
	}
	return claims.Subject, nil
}

// DietPreference 取得使用者儲存的飲食偏好，找不到使用者時回傳空字串
func (s *Service) DietPreference(ctx context.Context, username string) string {
	user, err := s.findUser(ctx, username)
	if err != nil {
		return ""
	}
	return user.DietPreference
}

func (s *Service) findUser(ctx context.Context, username string) (*database.User, error) {
	if username == "" {
		return nil, common.ErrUserNotFound
	}

	var user database.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return &user, nil
}

func toProfile(u *database.User) *Profile {
	return &Profile{ID: u.ID, Username: u.Username, DietPreference: u.DietPreference}
}

func truncatePassword(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}
