package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"imscaa/backend/internal/dto"
	"imscaa/backend/internal/model"
	"imscaa/backend/internal/repository"
	"imscaa/backend/pkg/jwt"
)

// ── 测试辅助 ──

func setupTestAuthService() (AuthService, *mockUserRepo, *mockInviteRepo) {
	userRepo := newMockUserRepo()
	inviteRepo := newMockInviteRepo()
	repo := &repository.Repository{
		Club:   newMockClubRepo(),
		User:   userRepo,
		Invite: inviteRepo,
	}
	cfg := testConfig()
	jwtMgr := jwt.NewManager(&cfg.Auth)
	inviteSvc := NewInviteService(cfg, repo, zap.NewNop())
	svc := NewAuthService(cfg, repo, inviteSvc, jwtMgr, nil, zap.NewNop())
	return svc, userRepo, inviteRepo
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("生成密码哈希失败: %v", err)
	}
	return string(hash)
}

// ── Login 测试 ──

func TestAuthService_Login_Success(t *testing.T) {
	svc, userRepo, _ := setupTestAuthService()
	userRepo.users["user-001"] = &model.User{
		UserID:       "user-001",
		ClubID:       "club-001",
		Name:         "张三",
		Email:        "zhangsan@example.com",
		PasswordHash: mustHash(t, "password123"),
		Role:         model.RoleMember,
	}

	result, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "zhangsan@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("登录应返回 access/refresh token")
	}
	if result.User.Role != model.RoleMember {
		t.Errorf("期望Role=member，实际=%s", result.User.Role)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, userRepo, _ := setupTestAuthService()
	userRepo.users["user-001"] = &model.User{
		UserID:       "user-001",
		ClubID:       "club-001",
		Email:        "zhangsan@example.com",
		PasswordHash: mustHash(t, "password123"),
		Role:         model.RoleMember,
	}

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "zhangsan@example.com",
		Password: "wrong-password",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestAuthService_Login_UserNotFound(t *testing.T) {
	svc, _, _ := setupTestAuthService()

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

// ── Register 测试 ──

func TestAuthService_Register_Success(t *testing.T) {
	svc, userRepo, inviteRepo := setupTestAuthService()
	inviteRepo.invites["tok-1"] = &model.Invite{
		InviteID:       "inv-1",
		ClubID:         "club-001",
		Token:          "tok-1",
		Role:           model.RoleOfficer,
		AllowedSignups: 1,
		ExpiresAt:      time.Now().Add(time.Hour),
	}

	result, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Token:    "tok-1",
		Name:     "李四",
		Email:    "lisi@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Register 应成功: %v", err)
	}

	// 角色与社团归属来自邀请码
	if result.User.Role != model.RoleOfficer {
		t.Errorf("期望Role=officer，实际=%s", result.User.Role)
	}
	if result.User.ClubID != "club-001" {
		t.Errorf("期望ClubID=club-001，实际=%s", result.User.ClubID)
	}

	// 名额被消耗
	if inviteRepo.invites["tok-1"].UsedCount != 1 {
		t.Errorf("注册应消耗邀请码名额，实际UsedCount=%d", inviteRepo.invites["tok-1"].UsedCount)
	}

	// 用户已落库
	if _, err := userRepo.GetByEmail(context.Background(), "lisi@example.com"); err != nil {
		t.Errorf("注册后应能按邮箱查到用户: %v", err)
	}
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	svc, userRepo, inviteRepo := setupTestAuthService()
	userRepo.users["user-001"] = &model.User{
		UserID: "user-001",
		ClubID: "club-001",
		Email:  "taken@example.com",
		Role:   model.RoleMember,
	}
	inviteRepo.invites["tok-1"] = &model.Invite{
		InviteID:       "inv-1",
		ClubID:         "club-001",
		Token:          "tok-1",
		Role:           model.RoleMember,
		AllowedSignups: 1,
		ExpiresAt:      time.Now().Add(time.Hour),
	}

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Token:    "tok-1",
		Name:     "王五",
		Email:    "taken@example.com",
		Password: "password123",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("期望 ErrEmailTaken，实际: %v", err)
	}
	// 失败注册不得消耗名额
	if inviteRepo.invites["tok-1"].UsedCount != 0 {
		t.Errorf("失败注册不应消耗名额，实际=%d", inviteRepo.invites["tok-1"].UsedCount)
	}
}

func TestAuthService_Register_InviteExpired(t *testing.T) {
	svc, userRepo, inviteRepo := setupTestAuthService()
	inviteRepo.invites["tok-old"] = &model.Invite{
		InviteID:       "inv-1",
		ClubID:         "club-001",
		Token:          "tok-old",
		Role:           model.RoleMember,
		AllowedSignups: 1,
		ExpiresAt:      time.Now().Add(-time.Hour),
	}

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Token:    "tok-old",
		Name:     "王五",
		Email:    "wangwu@example.com",
		Password: "password123",
	})
	if !errors.Is(err, ErrInviteExpired) {
		t.Errorf("期望 ErrInviteExpired，实际: %v", err)
	}
	// 用户不应被创建
	if len(userRepo.users) != 0 {
		t.Errorf("失败注册不应创建用户，实际=%d", len(userRepo.users))
	}
}

func TestAuthService_Register_InviteExhausted(t *testing.T) {
	svc, _, inviteRepo := setupTestAuthService()
	inviteRepo.invites["tok-full"] = &model.Invite{
		InviteID:       "inv-1",
		ClubID:         "club-001",
		Token:          "tok-full",
		Role:           model.RoleMember,
		AllowedSignups: 2,
		UsedCount:      2,
		ExpiresAt:      time.Now().Add(time.Hour),
	}

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Token:    "tok-full",
		Name:     "王五",
		Email:    "wangwu@example.com",
		Password: "password123",
	})
	if !errors.Is(err, ErrInviteExhausted) {
		t.Errorf("期望 ErrInviteExhausted，实际: %v", err)
	}
}

// ── RefreshToken 测试 ──

func TestAuthService_RefreshToken_Success(t *testing.T) {
	svc, userRepo, _ := setupTestAuthService()
	userRepo.users["user-001"] = &model.User{
		UserID:       "user-001",
		ClubID:       "club-001",
		Email:        "zhangsan@example.com",
		PasswordHash: mustHash(t, "password123"),
		Role:         model.RoleMember,
	}

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "zhangsan@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}

	result, err := svc.RefreshToken(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken 应成功: %v", err)
	}
	if result.AccessToken == "" {
		t.Error("刷新应返回新的 access token")
	}
}

func TestAuthService_RefreshToken_AccessTokenRejected(t *testing.T) {
	svc, userRepo, _ := setupTestAuthService()
	userRepo.users["user-001"] = &model.User{
		UserID:       "user-001",
		ClubID:       "club-001",
		Email:        "zhangsan@example.com",
		PasswordHash: mustHash(t, "password123"),
		Role:         model.RoleMember,
	}

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "zhangsan@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}

	// access token 不能当 refresh token 用
	_, err = svc.RefreshToken(context.Background(), login.AccessToken)
	if !errors.Is(err, ErrRefreshInvalid) {
		t.Errorf("期望 ErrRefreshInvalid，实际: %v", err)
	}
}

func TestAuthService_RefreshToken_Garbage(t *testing.T) {
	svc, _, _ := setupTestAuthService()

	_, err := svc.RefreshToken(context.Background(), "not-a-jwt")
	if !errors.Is(err, ErrRefreshInvalid) {
		t.Errorf("期望 ErrRefreshInvalid，实际: %v", err)
	}
}

// ── GetCurrentUser 测试 ──

func TestAuthService_GetCurrentUser_Success(t *testing.T) {
	svc, userRepo, _ := setupTestAuthService()
	userRepo.users["user-001"] = &model.User{
		UserID: "user-001",
		ClubID: "club-001",
		Name:   "张三",
		Email:  "zhangsan@example.com",
		Role:   model.RolePresident,
		Club:   &model.Club{ClubID: "club-001", Name: "摄影社"},
	}

	sess := &dto.Session{UserID: "user-001", Role: model.RolePresident, ClubID: "club-001"}
	result, err := svc.GetCurrentUser(context.Background(), sess)
	if err != nil {
		t.Fatalf("GetCurrentUser 应成功: %v", err)
	}
	if result.Name != "张三" || result.ClubName != "摄影社" {
		t.Errorf("用户信息不符: %+v", result)
	}
}

func TestAuthService_GetCurrentUser_CrossClubDenied(t *testing.T) {
	svc, userRepo, _ := setupTestAuthService()
	userRepo.users["user-001"] = &model.User{
		UserID: "user-001",
		ClubID: "club-002",
		Role:   model.RoleMember,
	}

	// 会话声称的社团与用户实际归属不一致
	sess := &dto.Session{UserID: "user-001", Role: model.RoleMember, ClubID: "club-001"}
	_, err := svc.GetCurrentUser(context.Background(), sess)
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}
