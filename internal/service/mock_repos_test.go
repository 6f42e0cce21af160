package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"imscaa/backend/internal/model"
)

// ── Mock ClubRepository ──

type mockClubRepo struct {
	clubs map[string]*model.Club
}

func newMockClubRepo() *mockClubRepo {
	return &mockClubRepo{clubs: make(map[string]*model.Club)}
}

func (m *mockClubRepo) Create(_ context.Context, club *model.Club) error {
	if club.ClubID == "" {
		club.ClubID = "club-" + club.Name
	}
	m.clubs[club.ClubID] = club
	return nil
}

func (m *mockClubRepo) GetByID(_ context.Context, id string) (*model.Club, error) {
	if c, ok := m.clubs[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockClubRepo) Delete(_ context.Context, id string) error {
	delete(m.clubs, id)
	return nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users     map[string]*model.User
	idCounter int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		m.idCounter++
		user.UserID = fmt.Sprintf("user-%d", m.idCounter)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, clubID, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok && u.ClubID == clubID {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context, clubID string, offset, limit int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if u.ClubID == clubID {
			result = append(result, *u)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockUserRepo) Delete(_ context.Context, clubID, id string) error {
	if u, ok := m.users[id]; ok && u.ClubID == clubID {
		delete(m.users, id)
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (m *mockUserRepo) DeleteByClub(_ context.Context, clubID string) error {
	for id, u := range m.users {
		if u.ClubID == clubID {
			delete(m.users, id)
		}
	}
	return nil
}

// ── Mock InviteRepository ──

type mockInviteRepo struct {
	invites map[string]*model.Invite // token → invite
}

func newMockInviteRepo() *mockInviteRepo {
	return &mockInviteRepo{invites: make(map[string]*model.Invite)}
}

func (m *mockInviteRepo) Create(_ context.Context, invite *model.Invite) error {
	if invite.InviteID == "" {
		invite.InviteID = fmt.Sprintf("inv-%d", len(m.invites)+1)
	}
	m.invites[invite.Token] = invite
	return nil
}

func (m *mockInviteRepo) GetByToken(_ context.Context, token string) (*model.Invite, error) {
	if inv, ok := m.invites[token]; ok {
		return inv, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInviteRepo) GetByTokenForUpdate(ctx context.Context, token string) (*model.Invite, error) {
	return m.GetByToken(ctx, token)
}

func (m *mockInviteRepo) IncrementUsedCount(_ context.Context, inviteID, userID string) error {
	for _, inv := range m.invites {
		if inv.InviteID == inviteID {
			inv.UsedCount++
			inv.UpdatedBy = &userID
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockInviteRepo) ListByClub(_ context.Context, clubID string) ([]model.Invite, error) {
	var result []model.Invite
	for _, inv := range m.invites {
		if inv.ClubID == clubID {
			result = append(result, *inv)
		}
	}
	return result, nil
}

// ── Mock DeletionRequestRepository ──

type mockDeletionRequestRepo struct {
	requests  map[string]*model.DeletionRequest
	idCounter int
}

func newMockDeletionRequestRepo() *mockDeletionRequestRepo {
	return &mockDeletionRequestRepo{requests: make(map[string]*model.DeletionRequest)}
}

func (m *mockDeletionRequestRepo) Create(_ context.Context, req *model.DeletionRequest) error {
	if req.RequestID == "" {
		m.idCounter++
		req.RequestID = fmt.Sprintf("dr-%d", m.idCounter)
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	m.requests[req.RequestID] = req
	return nil
}

func (m *mockDeletionRequestRepo) GetByID(_ context.Context, clubID, id string) (*model.DeletionRequest, error) {
	if r, ok := m.requests[id]; ok && r.ClubID == clubID {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeletionRequestRepo) GetByIDForUpdate(ctx context.Context, clubID, id string) (*model.DeletionRequest, error) {
	return m.GetByID(ctx, clubID, id)
}

func (m *mockDeletionRequestRepo) UpdateStatus(_ context.Context, id, status string, approvedBy *string, approvedAt *time.Time) error {
	r, ok := m.requests[id]
	if !ok {
		return nil
	}
	r.Status = status
	if approvedBy != nil {
		r.ApprovedBy = approvedBy
	}
	if approvedAt != nil {
		r.ApprovedAt = approvedAt
	}
	return nil
}

func (m *mockDeletionRequestRepo) List(_ context.Context, clubID, status string) ([]model.DeletionRequest, error) {
	var result []model.DeletionRequest
	for _, r := range m.requests {
		if r.ClubID != clubID {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		result = append(result, *r)
	}
	return result, nil
}

// ── Mock RequirementRepository ──

type mockRequirementRepo struct {
	requirements   map[string]*model.Requirement
	forUpdateCalls int
}

func newMockRequirementRepo() *mockRequirementRepo {
	return &mockRequirementRepo{requirements: make(map[string]*model.Requirement)}
}

func (m *mockRequirementRepo) Create(_ context.Context, req *model.Requirement) error {
	if req.RequirementID == "" {
		req.RequirementID = "req-" + req.Name
	}
	m.requirements[req.RequirementID] = req
	return nil
}

func (m *mockRequirementRepo) GetByID(_ context.Context, clubID, id string) (*model.Requirement, error) {
	if r, ok := m.requirements[id]; ok && r.ClubID == clubID {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRequirementRepo) GetByIDForUpdate(ctx context.Context, clubID, id string) (*model.Requirement, error) {
	m.forUpdateCalls++
	return m.GetByID(ctx, clubID, id)
}

func (m *mockRequirementRepo) ListActiveEvents(_ context.Context, clubID string, date time.Time) ([]model.Requirement, error) {
	var result []model.Requirement
	for _, r := range m.requirements {
		if r.ClubID == clubID && r.Kind == model.RequirementKindEvent && r.ActiveOn(date) {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockRequirementRepo) Delete(_ context.Context, clubID, id string) error {
	if r, ok := m.requirements[id]; ok && r.ClubID == clubID {
		delete(m.requirements, id)
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (m *mockRequirementRepo) DeleteByClub(_ context.Context, clubID string) error {
	for id, r := range m.requirements {
		if r.ClubID == clubID {
			delete(m.requirements, id)
		}
	}
	return nil
}

// ── Mock TimeSlotRepository ──

type mockTimeSlotRepo struct {
	slots        map[string]*model.TimeSlot
	requirements map[string]*model.Requirement // 社团归属判定用
	idCounter    int
}

func newMockTimeSlotRepo() *mockTimeSlotRepo {
	return &mockTimeSlotRepo{
		slots:        make(map[string]*model.TimeSlot),
		requirements: make(map[string]*model.Requirement),
	}
}

func (m *mockTimeSlotRepo) Create(_ context.Context, slot *model.TimeSlot) error {
	if slot.SlotID == "" {
		m.idCounter++
		slot.SlotID = fmt.Sprintf("slot-%d", m.idCounter)
	}
	m.slots[slot.SlotID] = slot
	return nil
}

func (m *mockTimeSlotRepo) GetByID(_ context.Context, id string) (*model.TimeSlot, error) {
	if s, ok := m.slots[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimeSlotRepo) List(_ context.Context, clubID, requirementID string, activeOnly bool) ([]model.TimeSlot, error) {
	var result []model.TimeSlot
	for _, s := range m.slots {
		if requirementID != "" && s.RequirementID != requirementID {
			continue
		}
		if r, ok := m.requirements[s.RequirementID]; ok && r.ClubID != clubID {
			continue
		}
		if activeOnly && !s.IsActive {
			continue
		}
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockTimeSlotRepo) ListActiveByRequirementAndDateForUpdate(ctx context.Context, requirementID string, date time.Time) ([]model.TimeSlot, error) {
	return m.ListActiveByRequirementAndDate(ctx, requirementID, date)
}

func (m *mockTimeSlotRepo) ListActiveByRequirementAndDate(_ context.Context, requirementID string, date time.Time) ([]model.TimeSlot, error) {
	var result []model.TimeSlot
	day := date.Format(model.DateLayout)
	for _, s := range m.slots {
		if s.RequirementID == requirementID && s.IsActive && s.Date.Format(model.DateLayout) == day {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockTimeSlotRepo) Deactivate(_ context.Context, id, updatedBy string) error {
	if s, ok := m.slots[id]; ok {
		s.IsActive = false
		s.UpdatedBy = &updatedBy
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (m *mockTimeSlotRepo) DeleteByRequirement(_ context.Context, requirementID string) error {
	for id, s := range m.slots {
		if s.RequirementID == requirementID {
			delete(m.slots, id)
		}
	}
	return nil
}

func (m *mockTimeSlotRepo) DeleteByClub(_ context.Context, clubID string) error {
	for id, s := range m.slots {
		if r, ok := m.requirements[s.RequirementID]; ok && r.ClubID == clubID {
			delete(m.slots, id)
		}
	}
	return nil
}

// ── Mock CredentialRepository ──

type mockCredentialRepo struct {
	credentials map[string]*model.Credential // opaque_data → credential
	idCounter   int
	// existsAlways 置真时所有数据都视为已存在（碰撞重试测试用）
	existsAlways bool

	// 模拟并发落败：Create 返回 createErr，
	// 随错误把 raceCredential 落库（赢家先一步提交）
	createErr      error
	raceCredential *model.Credential
}

func newMockCredentialRepo() *mockCredentialRepo {
	return &mockCredentialRepo{credentials: make(map[string]*model.Credential)}
}

func (m *mockCredentialRepo) Create(_ context.Context, cred *model.Credential) error {
	if m.createErr != nil {
		if m.raceCredential != nil {
			m.credentials[m.raceCredential.OpaqueData] = m.raceCredential
			m.raceCredential = nil
		}
		return m.createErr
	}
	if cred.QRID == "" {
		m.idCounter++
		cred.QRID = fmt.Sprintf("qr-%d", m.idCounter)
	}
	m.credentials[cred.OpaqueData] = cred
	return nil
}

func (m *mockCredentialRepo) GetActiveByUser(_ context.Context, userID string) (*model.Credential, error) {
	for _, c := range m.credentials {
		if c.UserID == userID && c.IsActive {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCredentialRepo) GetActiveByData(_ context.Context, clubID, opaqueData string) (*model.Credential, error) {
	if c, ok := m.credentials[opaqueData]; ok && c.ClubID == clubID && c.IsActive {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCredentialRepo) ExistsByData(_ context.Context, opaqueData string) (bool, error) {
	if m.existsAlways {
		return true, nil
	}
	_, ok := m.credentials[opaqueData]
	return ok, nil
}

func (m *mockCredentialRepo) DeactivateAllByUser(_ context.Context, userID string) error {
	for _, c := range m.credentials {
		if c.UserID == userID {
			c.IsActive = false
		}
	}
	return nil
}

func (m *mockCredentialRepo) DeleteByUser(_ context.Context, userID string) error {
	for data, c := range m.credentials {
		if c.UserID == userID {
			delete(m.credentials, data)
		}
	}
	return nil
}

func (m *mockCredentialRepo) DeleteByClub(_ context.Context, clubID string) error {
	for data, c := range m.credentials {
		if c.ClubID == clubID {
			delete(m.credentials, data)
		}
	}
	return nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	records   []model.AttendanceRecord
	idCounter int

	// 模拟并发落败：Create 返回 createErr，
	// 随错误把 raceRecord 追加进存储（赢家在落败方锁查之后落库）
	createErr  error
	raceRecord *model.AttendanceRecord
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{}
}

func (m *mockAttendanceRepo) Create(_ context.Context, record *model.AttendanceRecord) error {
	if m.createErr != nil {
		if m.raceRecord != nil {
			m.records = append(m.records, *m.raceRecord)
			m.raceRecord = nil
		}
		return m.createErr
	}
	if record.AttendanceID == "" {
		m.idCounter++
		record.AttendanceID = fmt.Sprintf("att-%d", m.idCounter)
	}
	m.records = append(m.records, *record)
	return nil
}

func (m *mockAttendanceRepo) GetByKeyForUpdate(ctx context.Context, userID, requirementID string, slotID *string) (*model.AttendanceRecord, error) {
	return m.GetByKey(ctx, userID, requirementID, slotID)
}

func (m *mockAttendanceRepo) GetByKey(_ context.Context, userID, requirementID string, slotID *string) (*model.AttendanceRecord, error) {
	for i := range m.records {
		r := &m.records[i]
		if r.UserID != userID || r.RequirementID != requirementID {
			continue
		}
		// NULL 与 NULL 视为同键冲突
		if slotID == nil && r.TimeSlotID == nil {
			return r, nil
		}
		if slotID != nil && r.TimeSlotID != nil && *slotID == *r.TimeSlotID {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) ListByUserAndDate(_ context.Context, userID string, date time.Time) ([]model.AttendanceRecord, error) {
	var result []model.AttendanceRecord
	day := date.Format(model.DateLayout)
	for _, r := range m.records {
		if r.UserID == userID && r.ScanDatetime.Format(model.DateLayout) == day {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockAttendanceRepo) ListByRequirement(_ context.Context, clubID, requirementID string) ([]model.AttendanceRecord, error) {
	var result []model.AttendanceRecord
	for _, r := range m.records {
		if r.ClubID == clubID && r.RequirementID == requirementID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockAttendanceRepo) DeleteByUser(_ context.Context, userID string) error {
	var remaining []model.AttendanceRecord
	for _, r := range m.records {
		if r.UserID != userID {
			remaining = append(remaining, r)
		}
	}
	m.records = remaining
	return nil
}

func (m *mockAttendanceRepo) DeleteByRequirement(_ context.Context, requirementID string) error {
	var remaining []model.AttendanceRecord
	for _, r := range m.records {
		if r.RequirementID != requirementID {
			remaining = append(remaining, r)
		}
	}
	m.records = remaining
	return nil
}

func (m *mockAttendanceRepo) DeleteByClub(_ context.Context, clubID string) error {
	var remaining []model.AttendanceRecord
	for _, r := range m.records {
		if r.ClubID != clubID {
			remaining = append(remaining, r)
		}
	}
	m.records = remaining
	return nil
}

// ── Mock TransactionRepository ──

type mockTransactionRepo struct {
	transactions map[string]*model.Transaction
}

func newMockTransactionRepo() *mockTransactionRepo {
	return &mockTransactionRepo{transactions: make(map[string]*model.Transaction)}
}

func (m *mockTransactionRepo) GetByID(_ context.Context, clubID, id string) (*model.Transaction, error) {
	if t, ok := m.transactions[id]; ok && t.ClubID == clubID {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTransactionRepo) Delete(_ context.Context, clubID, id string) error {
	if t, ok := m.transactions[id]; ok && t.ClubID == clubID {
		delete(m.transactions, id)
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (m *mockTransactionRepo) DeleteByUser(_ context.Context, userID string) error {
	for id, t := range m.transactions {
		if t.UserID == userID {
			delete(m.transactions, id)
		}
	}
	return nil
}

func (m *mockTransactionRepo) DeleteByClub(_ context.Context, clubID string) error {
	for id, t := range m.transactions {
		if t.ClubID == clubID {
			delete(m.transactions, id)
		}
	}
	return nil
}
