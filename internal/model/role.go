package model

// ── 角色常量 ──

const (
	RoleAdviser   = "adviser"
	RolePresident = "president"
	RoleOfficer   = "officer"
	RoleMember    = "member"
)

// ValidRole 判断角色是否在封闭枚举内
func ValidRole(role string) bool {
	switch role {
	case RoleAdviser, RolePresident, RoleOfficer, RoleMember:
		return true
	}
	return false
}

// 邀请权限表：签发者角色 → 可签发的目标角色集合
// 纯数据结构，严格层级，表外一律拒绝
var roleIssueTable = map[string]map[string]bool{
	RoleAdviser: {
		RoleAdviser:   true,
		RolePresident: true,
		RoleOfficer:   true,
		RoleMember:    true,
	},
	RolePresident: {
		RoleOfficer: true,
		RoleMember:  true,
	},
	RoleOfficer: {
		RoleMember: true,
	},
	// member 无任何签发权限
}

// CanIssueRole 判断 issuer 角色是否允许签发 target 角色的邀请码
func CanIssueRole(issuer, target string) bool {
	return roleIssueTable[issuer][target]
}

// CanVerifyAttendance 判断角色是否允许核验并录入签到
func CanVerifyAttendance(role string) bool {
	switch role {
	case RoleAdviser, RolePresident, RoleOfficer:
		return true
	}
	return false
}
