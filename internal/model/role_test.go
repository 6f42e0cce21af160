package model

import "testing"

// 权限表全矩阵：adviser 可签发全部角色，president → {officer, member}，
// officer → {member}，member 无任何签发权限，表外组合一律拒绝
func TestCanIssueRole_Matrix(t *testing.T) {
	cases := []struct {
		issuer string
		target string
		want   bool
	}{
		{RoleAdviser, RoleAdviser, true},
		{RoleAdviser, RolePresident, true},
		{RoleAdviser, RoleOfficer, true},
		{RoleAdviser, RoleMember, true},

		{RolePresident, RoleAdviser, false},
		{RolePresident, RolePresident, false},
		{RolePresident, RoleOfficer, true},
		{RolePresident, RoleMember, true},

		{RoleOfficer, RoleAdviser, false},
		{RoleOfficer, RolePresident, false},
		{RoleOfficer, RoleOfficer, false},
		{RoleOfficer, RoleMember, true},

		{RoleMember, RoleAdviser, false},
		{RoleMember, RolePresident, false},
		{RoleMember, RoleOfficer, false},
		{RoleMember, RoleMember, false},
	}

	for _, tc := range cases {
		if got := CanIssueRole(tc.issuer, tc.target); got != tc.want {
			t.Errorf("CanIssueRole(%s, %s) = %v，期望 %v", tc.issuer, tc.target, got, tc.want)
		}
	}
}

func TestCanIssueRole_UnknownRoles(t *testing.T) {
	if CanIssueRole("superadmin", RoleMember) {
		t.Error("未知签发者角色应被拒绝")
	}
	if CanIssueRole(RoleAdviser, "superadmin") {
		t.Error("未知目标角色应被拒绝")
	}
	if CanIssueRole("", "") {
		t.Error("空角色应被拒绝")
	}
}

func TestCanVerifyAttendance(t *testing.T) {
	allowed := []string{RoleAdviser, RolePresident, RoleOfficer}
	for _, r := range allowed {
		if !CanVerifyAttendance(r) {
			t.Errorf("%s 应允许核验签到", r)
		}
	}
	if CanVerifyAttendance(RoleMember) {
		t.Error("member 不应允许核验签到")
	}
	if CanVerifyAttendance("unknown") {
		t.Error("未知角色不应允许核验签到")
	}
}

func TestValidDeletionType(t *testing.T) {
	for _, typ := range []string{DeletionTypeMember, DeletionTypeRequirement, DeletionTypeClub, DeletionTypeTransaction} {
		if !ValidDeletionType(typ) {
			t.Errorf("%s 应为合法目标类型", typ)
		}
	}
	if ValidDeletionType("invoice") {
		t.Error("枚举外类型应非法")
	}
}
