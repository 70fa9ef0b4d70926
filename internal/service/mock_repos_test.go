package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"assignment-tracker/backend/config"
	"assignment-tracker/backend/internal/chat"
	"assignment-tracker/backend/internal/model"
	"assignment-tracker/backend/internal/policy"
	"assignment-tracker/backend/internal/repository"
	"assignment-tracker/backend/pkg/jwt"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // user_id → user
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		user.UserID = fmt.Sprintf("user-%d", len(m.users)+1)
	}
	user.CreatedAt = time.Now()
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) lookup(id string) *model.User {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp
	}
	return nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	users   *mockUserRepo
	courses map[string]*model.Course
	members map[string][]string // course_id → user_ids（加入顺序）
	seq     int
}

func newMockCourseRepo(users *mockUserRepo) *mockCourseRepo {
	return &mockCourseRepo{
		users:   users,
		courses: make(map[string]*model.Course),
		members: make(map[string][]string),
	}
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	for _, c := range m.courses {
		if c.Code == course.Code {
			return gorm.ErrDuplicatedKey
		}
	}
	m.seq++
	if course.CourseID == "" {
		course.CourseID = uuid.NewString()
	}
	course.CreatedAt = time.Now().Add(time.Duration(m.seq) * time.Millisecond)
	cp := *course
	cp.Owner, cp.Members = nil, nil
	m.courses[course.CourseID] = &cp
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	c, ok := m.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m.resolve(c), nil
}

func (m *mockCourseRepo) resolve(c *model.Course) *model.Course {
	cp := *c
	cp.Owner = m.users.lookup(c.OwnerID)
	cp.Members = nil
	for _, uid := range m.members[c.CourseID] {
		if u := m.users.lookup(uid); u != nil {
			cp.Members = append(cp.Members, *u)
		} else {
			cp.Members = append(cp.Members, model.User{UserID: uid})
		}
	}
	return &cp
}

func (m *mockCourseRepo) canAccess(courseID, userID string) bool {
	c, ok := m.courses[courseID]
	if !ok {
		return false
	}
	if c.OwnerID == userID {
		return true
	}
	for _, uid := range m.members[courseID] {
		if uid == userID {
			return true
		}
	}
	return false
}

func (m *mockCourseRepo) ListAccessible(_ context.Context, userID string) ([]model.Course, error) {
	var result []model.Course
	for id, c := range m.courses {
		if m.canAccess(id, userID) {
			result = append(result, *m.resolve(c))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockCourseRepo) Update(_ context.Context, course *model.Course) error {
	c, ok := m.courses[course.CourseID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Title = course.Title
	c.Description = course.Description
	return nil
}

func (m *mockCourseRepo) Delete(_ context.Context, id string) error {
	delete(m.courses, id)
	delete(m.members, id)
	return nil
}

func (m *mockCourseRepo) AddMember(_ context.Context, courseID, userID string) (bool, error) {
	for _, uid := range m.members[courseID] {
		if uid == userID {
			return false, nil
		}
	}
	m.members[courseID] = append(m.members[courseID], userID)
	return true, nil
}

func (m *mockCourseRepo) RemoveMember(_ context.Context, courseID, userID string) (bool, error) {
	list := m.members[courseID]
	for i, uid := range list {
		if uid == userID {
			m.members[courseID] = append(list[:i:i], list[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// ── Mock AssignmentRepository ──

type mockAssignmentRepo struct {
	courses     *mockCourseRepo
	users       *mockUserRepo
	assignments map[string]*model.Assignment
	seq         int
	failErr     error // 非 nil 时所有写操作返回该错误
}

func newMockAssignmentRepo(courses *mockCourseRepo, users *mockUserRepo) *mockAssignmentRepo {
	return &mockAssignmentRepo{courses: courses, users: users, assignments: make(map[string]*model.Assignment)}
}

func (m *mockAssignmentRepo) Create(_ context.Context, a *model.Assignment) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.seq++
	if a.AssignmentID == "" {
		a.AssignmentID = fmt.Sprintf("assignment-%d", m.seq)
	}
	cp := *a
	cp.Course, cp.Submissions = nil, nil
	m.assignments[a.AssignmentID] = &cp
	return nil
}

// resolve 返回深拷贝，调用方修改不影响已存数据
func (m *mockAssignmentRepo) resolve(a *model.Assignment) model.Assignment {
	cp := *a
	if c, ok := m.courses.courses[a.CourseID]; ok {
		cp.Course = m.courses.resolve(c)
	}
	cp.Submissions = make([]model.Submission, len(a.Submissions))
	for i, s := range a.Submissions {
		s.User = m.users.lookup(s.UserID)
		cp.Submissions[i] = s
	}
	return cp
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, id string) (*model.Assignment, error) {
	a, ok := m.assignments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := m.resolve(a)
	return &cp, nil
}

func (m *mockAssignmentRepo) LockByID(_ context.Context, id string) error {
	if _, ok := m.assignments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (m *mockAssignmentRepo) List(_ context.Context, f repository.AssignmentFilter) ([]model.Assignment, error) {
	var result []model.Assignment
	for _, a := range m.assignments {
		if f.UserID != "" && !m.courses.canAccess(a.CourseID, f.UserID) {
			continue
		}
		if f.CourseID != "" && a.CourseID != f.CourseID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.DueFrom != nil && a.DueDate.Before(*f.DueFrom) {
			continue
		}
		if f.DueTo != nil && !a.DueDate.Before(*f.DueTo) {
			continue
		}
		result = append(result, m.resolve(a))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DueDate.Before(result[j].DueDate) })
	return result, nil
}

func (m *mockAssignmentRepo) ListByCourse(ctx context.Context, courseID string) ([]model.Assignment, error) {
	return m.List(ctx, repository.AssignmentFilter{CourseID: courseID})
}

func (m *mockAssignmentRepo) Update(_ context.Context, a *model.Assignment) error {
	if m.failErr != nil {
		return m.failErr
	}
	stored, ok := m.assignments[a.AssignmentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Title = a.Title
	stored.Description = a.Description
	stored.DueDate = a.DueDate
	stored.Priority = a.Priority
	stored.Status = a.Status
	return nil
}

func (m *mockAssignmentRepo) UpdateStatus(_ context.Context, id, status string) error {
	if m.failErr != nil {
		return m.failErr
	}
	stored, ok := m.assignments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Status = status
	return nil
}

func (m *mockAssignmentRepo) UpsertSubmission(_ context.Context, sub *model.Submission) error {
	if m.failErr != nil {
		return m.failErr
	}
	stored, ok := m.assignments[sub.AssignmentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range stored.Submissions {
		if stored.Submissions[i].UserID == sub.UserID {
			stored.Submissions[i].FileURL = sub.FileURL
			stored.Submissions[i].Comment = sub.Comment
			stored.Submissions[i].SubmittedAt = sub.SubmittedAt
			sub.SubmissionID = stored.Submissions[i].SubmissionID
			return nil
		}
	}
	m.seq++
	sub.SubmissionID = fmt.Sprintf("submission-%d", m.seq)
	cp := *sub
	cp.User = nil
	stored.Submissions = append(stored.Submissions, cp)
	return nil
}

func (m *mockAssignmentRepo) Delete(_ context.Context, id string) error {
	delete(m.assignments, id)
	return nil
}

func (m *mockAssignmentRepo) DeleteByCourse(_ context.Context, courseID string) error {
	for id, a := range m.assignments {
		if a.CourseID == courseID {
			delete(m.assignments, id)
		}
	}
	return nil
}

// ── Mock ResourceRepository ──

type mockResourceRepo struct {
	resources []model.Resource
}

func (m *mockResourceRepo) Create(_ context.Context, r *model.Resource) error {
	r.ResourceID = fmt.Sprintf("resource-%d", len(m.resources)+1)
	r.CreatedAt = time.Now().Add(time.Duration(len(m.resources)) * time.Millisecond)
	m.resources = append(m.resources, *r)
	return nil
}

func (m *mockResourceRepo) ListByCourse(_ context.Context, courseID string) ([]model.Resource, error) {
	var result []model.Resource
	for _, r := range m.resources {
		if r.CourseID == courseID {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockResourceRepo) DeleteByCourse(_ context.Context, courseID string) error {
	kept := m.resources[:0]
	for _, r := range m.resources {
		if r.CourseID != courseID {
			kept = append(kept, r)
		}
	}
	m.resources = kept
	return nil
}

// ── Mock MessageRepository（同时作为聊天室的 MessageStore） ──

type mockMessageRepo struct {
	users    *mockUserRepo
	messages []model.Message
	failErr  error
}

func (m *mockMessageRepo) Create(_ context.Context, msg *model.Message) error {
	if m.failErr != nil {
		return m.failErr
	}
	msg.MessageID = fmt.Sprintf("message-%d", len(m.messages)+1)
	cp := *msg
	cp.Sender = nil
	m.messages = append(m.messages, cp)
	return nil
}

func (m *mockMessageRepo) ListByCourse(_ context.Context, courseID string) ([]model.Message, error) {
	var result []model.Message
	for _, msg := range m.messages {
		if msg.CourseID == courseID {
			msg.Sender = m.users.lookup(msg.SenderID)
			result = append(result, msg)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (m *mockMessageRepo) DeleteByCourse(_ context.Context, courseID string) error {
	kept := m.messages[:0]
	for _, msg := range m.messages {
		if msg.CourseID != courseID {
			kept = append(kept, msg)
		}
	}
	m.messages = kept
	return nil
}

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	jtis map[string]time.Duration
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if m.jtis == nil {
		m.jtis = make(map[string]time.Duration)
	}
	m.jtis[jti] = ttl
	return nil
}

// ═══════════════════════════════════════════════════════════
// 测试环境
// ═══════════════════════════════════════════════════════════

type testEnv struct {
	users       *mockUserRepo
	courses     *mockCourseRepo
	assignments *mockAssignmentRepo
	resources   *mockResourceRepo
	messages    *mockMessageRepo
	blacklist   *mockBlacklist
	hub         *chat.Hub
	jwtMgr      *jwt.Manager
	svc         *Service
}

func newTestEnv() *testEnv {
	users := newMockUserRepo()
	courses := newMockCourseRepo(users)
	env := &testEnv{
		users:       users,
		courses:     courses,
		assignments: newMockAssignmentRepo(courses, users),
		resources:   &mockResourceRepo{},
		messages:    &mockMessageRepo{users: users},
		blacklist:   &mockBlacklist{},
	}

	repo := &repository.Repository{
		User:       env.users,
		Course:     env.courses,
		Assignment: env.assignments,
		Resource:   env.resources,
		Message:    env.messages,
	}

	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:      "test-secret-key-for-unit-testing-2026",
			AccessTokenTTL: 15 * time.Minute,
			BcryptCost:     4, // bcrypt.MinCost
		},
	}
	logger := zap.NewNop()
	env.hub = chat.NewHub(env.messages, 2000, logger)
	env.jwtMgr = jwt.NewManager(&cfg.Auth)

	rules := policy.Default
	env.svc = &Service{
		Auth:       NewAuthService(cfg, repo, env.jwtMgr, env.blacklist, logger),
		Course:     NewCourseService(repo, rules, env.hub, logger),
		Assignment: NewAssignmentService(repo, rules, logger),
		Resource:   NewResourceService(repo, rules, logger),
		Chat:       NewChatService(repo, rules, env.hub, logger),
		Export:     NewExportService(repo, rules, logger),
	}
	return env
}

// addUser 直接写入用户（跳过注册流程）
func (e *testEnv) addUser(id, name, role string) *model.User {
	u := &model.User{UserID: id, Name: name, Email: id + "@test.com", Role: role}
	e.users.users[id] = u
	return &model.User{UserID: id, Name: name, Role: role}
}
