package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"staff-attendance/internal/model"
	"staff-attendance/internal/repository"
	"staff-attendance/internal/storage"
	pkgerrors "staff-attendance/pkg/errors"
	"staff-attendance/pkg/redis"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // key: user_id
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.UniqueID
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUniqueID(_ context.Context, uniqueID string) (*model.User, error) {
	for _, u := range m.users {
		if u.UniqueID == uniqueID {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByAccount(ctx context.Context, account string) (*model.User, error) {
	if u, err := m.GetByEmail(ctx, account); err == nil {
		return u, nil
	}
	return m.GetByUniqueID(ctx, account)
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, filter repository.UserFilter, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Department != "" && u.DepartmentName() != filter.Department {
			continue
		}
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(u.Name, filter.Keyword) && !strings.Contains(u.UniqueID, filter.Keyword) {
			continue
		}
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UserID < all[j].UserID })
	total := int64(len(all))
	if offset >= len(all) {
		return []model.User{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockUserRepo) ListActive(_ context.Context, role, department string) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if !u.IsActive() {
			continue
		}
		if role != "" && u.Role != role {
			continue
		}
		if department != "" && u.DepartmentName() != department {
			continue
		}
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	records map[string]*model.AttendanceRecord // key: user_id|date
	seq     int
	err     error
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{records: make(map[string]*model.AttendanceRecord)}
}

func attendanceKey(userID string, date time.Time) string {
	return userID + "|" + date.Format("2006-01-02")
}

// Upsert 模拟 ON CONFLICT (user_id, date) DO UPDATE
func (m *mockAttendanceRepo) Upsert(_ context.Context, record *model.AttendanceRecord) error {
	if m.err != nil {
		return m.err
	}
	key := attendanceKey(record.UserID, record.Date)
	if existing, ok := m.records[key]; ok {
		existing.Status = record.Status
		existing.MarkedAt = record.MarkedAt
		existing.MarkedBy = record.MarkedBy
		existing.MarkedByRole = record.MarkedByRole
		record.AttendanceID = existing.AttendanceID
		return nil
	}
	m.seq++
	record.AttendanceID = fmt.Sprintf("att-%d", m.seq)
	cp := *record
	cp.User = nil
	m.records[key] = &cp
	return nil
}

func (m *mockAttendanceRepo) GetByUserAndDate(_ context.Context, userID string, date time.Time) (*model.AttendanceRecord, error) {
	if r, ok := m.records[attendanceKey(userID, date)]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) ListByDate(_ context.Context, date time.Time) ([]model.AttendanceRecord, error) {
	var result []model.AttendanceRecord
	for _, r := range m.records {
		if r.Date.Equal(date) {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockAttendanceRepo) match(r *model.AttendanceRecord, f repository.AttendanceFilter) bool {
	if f.UserID != "" && r.UserID != f.UserID {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.From != nil && r.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && r.Date.After(*f.To) {
		return false
	}
	return true
}

func (m *mockAttendanceRepo) List(_ context.Context, filter repository.AttendanceFilter, offset, limit int) ([]model.AttendanceRecord, int64, error) {
	var all []model.AttendanceRecord
	for _, r := range m.records {
		if m.match(r, filter) {
			all = append(all, *r)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Date.After(all[j].Date) })
	total := int64(len(all))
	if offset >= len(all) {
		return []model.AttendanceRecord{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockAttendanceRepo) ListByUserAndRange(_ context.Context, userID string, from, to time.Time) ([]model.AttendanceRecord, error) {
	records, _, _ := m.List(context.Background(), repository.AttendanceFilter{UserID: userID, From: &from, To: &to}, 0, 1000)
	sort.Slice(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })
	return records, nil
}

func (m *mockAttendanceRepo) ListForExport(_ context.Context, filter repository.AttendanceFilter) ([]model.AttendanceRecord, error) {
	records, _, _ := m.List(context.Background(), filter, 0, 100000)
	sort.Slice(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })
	return records, nil
}

// count 某用户的记录总数
func (m *mockAttendanceRepo) count(userID string) int {
	n := 0
	for _, r := range m.records {
		if r.UserID == userID {
			n++
		}
	}
	return n
}

// ── Mock LeaveRepository ──

type mockLeaveRepo struct {
	reqs       map[string]*model.LeaveRequest
	seq        int
	readCalls  int
	writeCalls int
}

func newMockLeaveRepo() *mockLeaveRepo {
	return &mockLeaveRepo{reqs: make(map[string]*model.LeaveRequest)}
}

func (m *mockLeaveRepo) Create(_ context.Context, req *model.LeaveRequest) error {
	m.writeCalls++
	if req.LeaveRequestID == "" {
		m.seq++
		req.LeaveRequestID = fmt.Sprintf("leave-%d", m.seq)
	}
	cp := *req
	m.reqs[req.LeaveRequestID] = &cp
	return nil
}

func (m *mockLeaveRepo) GetByID(_ context.Context, id string) (*model.LeaveRequest, error) {
	m.readCalls++
	if r, ok := m.reqs[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLeaveRepo) ListByUser(_ context.Context, userID, status string) ([]model.LeaveRequest, error) {
	var result []model.LeaveRequest
	for _, r := range m.reqs {
		if r.UserID == userID && (status == "" || r.Status == status) {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockLeaveRepo) List(_ context.Context, filter repository.LeaveFilter, offset, limit int) ([]model.LeaveRequest, int64, error) {
	var result []model.LeaveRequest
	for _, r := range m.reqs {
		if filter.Status == "" || r.Status == filter.Status {
			result = append(result, *r)
		}
	}
	return result, int64(len(result)), nil
}

// Resolve 模拟 WHERE status = 'pending' 的条件更新
func (m *mockLeaveRepo) Resolve(_ context.Context, id, status, responderID string, rejectionReason *string, at time.Time) error {
	m.writeCalls++
	r, ok := m.reqs[id]
	if !ok || r.Status != model.LeaveStatusPending {
		return pkgerrors.ErrOptimisticLock
	}
	r.Status = status
	r.RespondedBy = &responderID
	r.RespondedAt = &at
	r.RejectionReason = rejectionReason
	return nil
}

// ── Mock ScheduleRepository ──

type mockScheduleRepo struct {
	items map[string]*model.Schedule
	seq   int
}

func newMockScheduleRepo() *mockScheduleRepo {
	return &mockScheduleRepo{items: make(map[string]*model.Schedule)}
}

func (m *mockScheduleRepo) Create(_ context.Context, s *model.Schedule) error {
	m.seq++
	s.ScheduleID = fmt.Sprintf("sch-%d", m.seq)
	cp := *s
	m.items[s.ScheduleID] = &cp
	return nil
}

func (m *mockScheduleRepo) GetByID(_ context.Context, id string) (*model.Schedule, error) {
	if s, ok := m.items[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleRepo) List(_ context.Context, day, teacherID string) ([]model.Schedule, error) {
	var result []model.Schedule
	for _, s := range m.items {
		if day != "" && s.Day != day {
			continue
		}
		if teacherID != "" && s.TeacherID != teacherID {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ScheduleID < result[j].ScheduleID })
	return result, nil
}

func (m *mockScheduleRepo) Update(_ context.Context, s *model.Schedule) error {
	cp := *s
	m.items[s.ScheduleID] = &cp
	return nil
}

func (m *mockScheduleRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.items, id)
	return nil
}

// ── Mock CvFileRepository ──

type mockCvRepo struct {
	files map[string]*model.CvFile // key: user_id
	seq   int
	err   error
}

func newMockCvRepo() *mockCvRepo {
	return &mockCvRepo{files: make(map[string]*model.CvFile)}
}

func (m *mockCvRepo) GetByID(_ context.Context, id string) (*model.CvFile, error) {
	for _, f := range m.files {
		if f.CvFileID == id {
			cp := *f
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCvRepo) GetByUserID(_ context.Context, userID string) (*model.CvFile, error) {
	if f, ok := m.files[userID]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCvRepo) GetByUserIDForUpdate(ctx context.Context, userID string) (*model.CvFile, error) {
	return m.GetByUserID(ctx, userID)
}

// Upsert 模拟 ON CONFLICT (user_id) DO UPDATE
func (m *mockCvRepo) Upsert(_ context.Context, cv *model.CvFile) error {
	if m.err != nil {
		return m.err
	}
	if cv.CvFileID == "" {
		m.seq++
		cv.CvFileID = fmt.Sprintf("cv-%d", m.seq)
	}
	cp := *cv
	m.files[cv.UserID] = &cp
	return nil
}

func (m *mockCvRepo) Delete(_ context.Context, id string) error {
	for uid, f := range m.files {
		if f.CvFileID == id {
			delete(m.files, uid)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── Mock StatsRepository ──

type mockStatsRepo struct {
	totals *repository.StatsTotals
	rows   []repository.DepartmentRow
	calls  int
}

func (m *mockStatsRepo) Totals(_ context.Context, _ time.Time) (*repository.StatsTotals, error) {
	m.calls++
	cp := *m.totals
	return &cp, nil
}

func (m *mockStatsRepo) DepartmentSummary(_ context.Context, _ time.Time) ([]repository.DepartmentRow, error) {
	return m.rows, nil
}

// ── Mock Cache / Blacklist / BlobStore ──

type mockCache struct {
	data map[string][]byte
	err  error
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) GetJSON(_ context.Context, key string, dest interface{}) error {
	if m.err != nil {
		return m.err
	}
	raw, ok := m.data[key]
	if !ok {
		return redis.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if m.err != nil {
		return m.err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *mockCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

type mockBlacklist struct {
	jtis map[string]bool
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{jtis: make(map[string]bool)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, _ time.Duration) error {
	m.jtis[jti] = true
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return m.jtis[jti], nil
}

type memBlobStore struct {
	blobs     map[string][]byte
	deleteErr error
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{blobs: make(map[string][]byte)}
}

func (m *memBlobStore) Save(_ context.Context, key string, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	m.blobs[key] = data
	return int64(len(data)), nil
}

func (m *memBlobStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memBlobStore) Delete(_ context.Context, key string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.blobs, key)
	return nil
}

// ── 测试夹具 ──

type testRepos struct {
	user       *mockUserRepo
	attendance *mockAttendanceRepo
	leave      *mockLeaveRepo
	schedule   *mockScheduleRepo
	cv         *mockCvRepo
	stats      *mockStatsRepo
}

func newTestRepos() (*repository.Repository, *testRepos) {
	m := &testRepos{
		user:       newMockUserRepo(),
		attendance: newMockAttendanceRepo(),
		leave:      newMockLeaveRepo(),
		schedule:   newMockScheduleRepo(),
		cv:         newMockCvRepo(),
		stats:      &mockStatsRepo{totals: &repository.StatsTotals{}},
	}
	repo := &repository.Repository{
		User:       m.user,
		Attendance: m.attendance,
		Leave:      m.leave,
		Schedule:   m.schedule,
		CvFile:     m.cv,
		Stats:      m.stats,
	}
	return repo, m
}

func seedUser(m *mockUserRepo, id, role string) *model.User {
	dept := "Computer Science"
	u := &model.User{
		UserID:     id,
		UniqueID:   "U-" + id,
		Name:       "User " + id,
		Email:      id + "@univ.test",
		Role:       role,
		Department: &dept,
		Status:     model.UserStatusActive,
	}
	m.users[id] = u
	return u
}
