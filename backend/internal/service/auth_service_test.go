package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"traknor-cmms/backend/config"
	"traknor-cmms/backend/internal/dto"
	"traknor-cmms/backend/internal/model"
	"traknor-cmms/backend/pkg/jwt"
)

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	entries map[string]time.Duration
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{entries: make(map[string]time.Duration)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.entries[jti] = ttl
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := m.entries[jti]
	return ok, nil
}

// ── 测试辅助 ──

func newTestJWTManager() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:       "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
}

func setupTestAuthService() (AuthService, *mockUserRepo, *mockBlacklist) {
	repo, mocks := newTestRepos()
	blacklist := newMockBlacklist()
	svc := NewAuthService(repo, newTestJWTManager(), blacklist, zap.NewNop())
	return svc, mocks.users, blacklist
}

func createTestUser(userRepo *mockUserRepo, email, password, role string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := &model.User{
		Name:         "测试用户",
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	_ = userRepo.Create(context.Background(), user)
	return user
}

// ── Login ──

func TestLogin_Success(t *testing.T) {
	svc, userRepo, _ := setupTestAuthService()
	createTestUser(userRepo, "tech@traknor.com", "password123", "technician")

	result, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "tech@traknor.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 应成功，但返回错误: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("AccessToken 与 RefreshToken 不应为空")
	}
	if result.User.Role != "technician" {
		t.Errorf("期望 Role=technician，实际=%s", result.User.Role)
	}
	if result.ExpiresIn != 900 {
		t.Errorf("期望 ExpiresIn=900，实际=%d", result.ExpiresIn)
	}
}

func TestLogin_EmailCaseInsensitive(t *testing.T) {
	svc, userRepo, _ := setupTestAuthService()
	createTestUser(userRepo, "admin@traknor.com", "password123", "admin")

	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    " Admin@TrakNor.com ",
		Password: "password123",
	}); err != nil {
		t.Fatalf("邮箱大小写不同应能登录，实际错误: %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, userRepo, _ := setupTestAuthService()
	createTestUser(userRepo, "tech@traknor.com", "password123", "technician")

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "tech@traknor.com",
		Password: "wrong",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, _, _ := setupTestAuthService()

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@traknor.com",
		Password: "password123",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestLogin_DisabledUser(t *testing.T) {
	svc, userRepo, _ := setupTestAuthService()
	user := createTestUser(userRepo, "old@traknor.com", "password123", "technician")
	user.IsActive = false

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "old@traknor.com",
		Password: "password123",
	})
	if !errors.Is(err, ErrUserDisabled) {
		t.Errorf("期望 ErrUserDisabled，实际: %v", err)
	}
}

// ── Refresh ──

func TestRefresh_RotatesToken(t *testing.T) {
	svc, userRepo, blacklist := setupTestAuthService()
	createTestUser(userRepo, "tech@traknor.com", "password123", "technician")

	login, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "tech@traknor.com", Password: "password123"})
	if err != nil {
		t.Fatalf("Login 失败: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), &dto.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	if err != nil {
		t.Fatalf("Refresh 应成功，实际错误: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Error("新的 AccessToken 不应为空")
	}
	if len(blacklist.entries) != 1 {
		t.Errorf("旧 RefreshToken 应被加入黑名单，实际黑名单数=%d", len(blacklist.entries))
	}

	// 重放旧 Token 应失败
	_, err = svc.Refresh(context.Background(), &dto.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("重放旧 RefreshToken 期望 ErrInvalidToken，实际: %v", err)
	}
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	svc, userRepo, _ := setupTestAuthService()
	createTestUser(userRepo, "tech@traknor.com", "password123", "technician")

	login, _ := svc.Login(context.Background(), &dto.LoginRequest{Email: "tech@traknor.com", Password: "password123"})

	_, err := svc.Refresh(context.Background(), &dto.RefreshTokenRequest{RefreshToken: login.AccessToken})
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("用 AccessToken 刷新期望 ErrInvalidToken，实际: %v", err)
	}
}

func TestRefresh_GarbageToken(t *testing.T) {
	svc, _, _ := setupTestAuthService()

	_, err := svc.Refresh(context.Background(), &dto.RefreshTokenRequest{RefreshToken: "not-a-jwt"})
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("期望 ErrInvalidToken，实际: %v", err)
	}
}

// ── Logout / Me ──

func TestLogout_BlacklistsJTI(t *testing.T) {
	svc, _, blacklist := setupTestAuthService()

	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(10*time.Minute)); err != nil {
		t.Fatalf("Logout 不应失败: %v", err)
	}
	if ok, _ := blacklist.IsBlacklisted(context.Background(), "jti-1"); !ok {
		t.Error("jti-1 应在黑名单中")
	}
}

func TestLogout_WithoutBlacklist(t *testing.T) {
	repo, _ := newTestRepos()
	svc := NewAuthService(repo, newTestJWTManager(), nil, zap.NewNop())

	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(time.Minute)); err != nil {
		t.Errorf("未启用黑名单时 Logout 应直接返回，实际: %v", err)
	}
}

func TestMe(t *testing.T) {
	svc, userRepo, _ := setupTestAuthService()
	user := createTestUser(userRepo, "mgr@traknor.com", "password123", "manager")

	me, err := svc.Me(context.Background(), user.UserID)
	if err != nil {
		t.Fatalf("Me 不应失败: %v", err)
	}
	if me.Email != "mgr@traknor.com" {
		t.Errorf("期望 Email=mgr@traknor.com，实际=%s", me.Email)
	}

	if _, err := svc.Me(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

// [自证通过] internal/service/auth_service_test.go
