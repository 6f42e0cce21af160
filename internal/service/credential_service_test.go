package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"imscaa/backend/internal/dto"
	"imscaa/backend/internal/model"
	"imscaa/backend/internal/repository"
)

// ── 测试辅助 ──

func setupTestCredentialService() (CredentialService, *mockCredentialRepo, *mockUserRepo) {
	credRepo := newMockCredentialRepo()
	userRepo := newMockUserRepo()
	repo := &repository.Repository{
		User:       userRepo,
		Credential: credRepo,
	}
	svc := NewCredentialService(repo, zap.NewNop())
	return svc, credRepo, userRepo
}

func seedMember(userRepo *mockUserRepo, id string) {
	userRepo.users[id] = &model.User{
		UserID: id, ClubID: "club-001", Name: "成员", Role: model.RoleMember,
	}
}

// ── Generate 测试 ──

func TestCredentialService_Generate_Success(t *testing.T) {
	svc, credRepo, userRepo := setupTestCredentialService()
	seedMember(userRepo, "user-001")

	sess := &dto.Session{UserID: "user-001", Role: model.RoleMember, ClubID: "club-001"}
	result, err := svc.Generate(context.Background(), sess, "user-001")
	if err != nil {
		t.Fatalf("Generate 应成功: %v", err)
	}
	if !result.IsActive {
		t.Error("新凭证应处于启用状态")
	}
	if !strings.HasPrefix(result.OpaqueData, "IMSCAA-") {
		t.Errorf("凭证数据前缀不符: %s", result.OpaqueData)
	}
	if len(credRepo.credentials) != 1 {
		t.Errorf("应存入1张凭证，实际=%d", len(credRepo.credentials))
	}
}

func TestCredentialService_Generate_RetryExhausted(t *testing.T) {
	svc, credRepo, userRepo := setupTestCredentialService()
	seedMember(userRepo, "user-001")
	// 模拟熵源故障：所有生成结果都"已存在"
	credRepo.existsAlways = true

	sess := &dto.Session{UserID: "user-001", Role: model.RoleMember, ClubID: "club-001"}
	_, err := svc.Generate(context.Background(), sess, "user-001")
	if !errors.Is(err, ErrCredentialExhausted) {
		t.Errorf("期望 ErrCredentialExhausted，实际: %v", err)
	}
	if len(credRepo.credentials) != 0 {
		t.Error("重试耗尽时不应落库任何凭证")
	}
}

func TestCredentialService_Generate_RaceReturnsWinner(t *testing.T) {
	svc, credRepo, userRepo := setupTestCredentialService()
	seedMember(userRepo, "user-001")

	// 并发生成撞上活跃凭证唯一索引：落败方应读回赢家的凭证返回，而非报错
	credRepo.createErr = &pgconn.PgError{Code: "23505", ConstraintName: "idx_credentials_active_user"}
	credRepo.raceCredential = &model.Credential{
		QRID: "qr-winner", UserID: "user-001", ClubID: "club-001",
		OpaqueData: "IMSCAA-winner", IsActive: true, GeneratedAt: time.Now(),
	}

	sess := &dto.Session{UserID: "user-001", Role: model.RoleMember, ClubID: "club-001"}
	result, err := svc.Generate(context.Background(), sess, "user-001")
	if err != nil {
		t.Fatalf("唯一约束冲突不应外传错误: %v", err)
	}
	if result.QRID != "qr-winner" {
		t.Errorf("应返回先提交方的凭证，实际=%s", result.QRID)
	}
	if len(credRepo.credentials) != 1 {
		t.Errorf("应只有赢家的1张凭证，实际=%d", len(credRepo.credentials))
	}
}

func TestCredentialService_Generate_OtherMemberDenied(t *testing.T) {
	svc, _, userRepo := setupTestCredentialService()
	seedMember(userRepo, "user-001")
	seedMember(userRepo, "user-002")

	// 普通成员不能为他人生成凭证
	sess := &dto.Session{UserID: "user-001", Role: model.RoleMember, ClubID: "club-001"}
	_, err := svc.Generate(context.Background(), sess, "user-002")
	if !errors.Is(err, ErrCredentialPermissionDenied) {
		t.Errorf("期望 ErrCredentialPermissionDenied，实际: %v", err)
	}

	// 干部可以
	officer := &dto.Session{UserID: "user-officer", Role: model.RoleOfficer, ClubID: "club-001"}
	if _, err := svc.Generate(context.Background(), officer, "user-002"); err != nil {
		t.Errorf("干部为成员生成凭证应成功: %v", err)
	}
}

func TestCredentialService_Generate_UserNotFound(t *testing.T) {
	svc, _, _ := setupTestCredentialService()

	sess := &dto.Session{UserID: "user-officer", Role: model.RoleOfficer, ClubID: "club-001"}
	_, err := svc.Generate(context.Background(), sess, "nonexistent")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

// ── Regenerate 测试 ──

func TestCredentialService_Regenerate_DeactivatesOld(t *testing.T) {
	svc, credRepo, userRepo := setupTestCredentialService()
	seedMember(userRepo, "user-001")
	credRepo.credentials["old-data"] = &model.Credential{
		QRID: "qr-old", UserID: "user-001", ClubID: "club-001",
		OpaqueData: "old-data", IsActive: true, GeneratedAt: time.Now().Add(-time.Hour),
	}

	sess := &dto.Session{UserID: "user-001", Role: model.RoleMember, ClubID: "club-001"}
	result, err := svc.Regenerate(context.Background(), sess, "user-001")
	if err != nil {
		t.Fatalf("Regenerate 应成功: %v", err)
	}

	// 旧凭证软停用，历史保留
	old := credRepo.credentials["old-data"]
	if old == nil {
		t.Fatal("旧凭证应保留为历史记录")
	}
	if old.IsActive {
		t.Error("旧凭证应被停用")
	}

	// 新凭证启用且数据不同
	if !result.IsActive {
		t.Error("新凭证应处于启用状态")
	}
	if result.OpaqueData == "old-data" {
		t.Error("新凭证数据应不同于旧凭证")
	}
	if len(credRepo.credentials) != 2 {
		t.Errorf("新旧凭证应共存，实际=%d", len(credRepo.credentials))
	}
}

// ── GetActive 测试 ──

func TestCredentialService_GetActive_Success(t *testing.T) {
	svc, credRepo, userRepo := setupTestCredentialService()
	seedMember(userRepo, "user-001")
	credRepo.credentials["data-1"] = &model.Credential{
		QRID: "qr-1", UserID: "user-001", ClubID: "club-001",
		OpaqueData: "data-1", IsActive: true, GeneratedAt: time.Now(),
	}

	sess := &dto.Session{UserID: "user-001", Role: model.RoleMember, ClubID: "club-001"}
	result, err := svc.GetActive(context.Background(), sess, "user-001")
	if err != nil {
		t.Fatalf("GetActive 应成功: %v", err)
	}
	if result.QRID != "qr-1" {
		t.Errorf("期望qr-1，实际=%s", result.QRID)
	}
}

func TestCredentialService_GetActive_NotFound(t *testing.T) {
	svc, credRepo, userRepo := setupTestCredentialService()
	seedMember(userRepo, "user-001")
	// 只有停用凭证
	credRepo.credentials["data-1"] = &model.Credential{
		QRID: "qr-1", UserID: "user-001", ClubID: "club-001",
		OpaqueData: "data-1", IsActive: false,
	}

	sess := &dto.Session{UserID: "user-001", Role: model.RoleMember, ClubID: "club-001"}
	_, err := svc.GetActive(context.Background(), sess, "user-001")
	if !errors.Is(err, ErrCredentialNotFound) {
		t.Errorf("期望 ErrCredentialNotFound，实际: %v", err)
	}
}
