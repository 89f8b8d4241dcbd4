package service

import (
	"edu_consult_backend/internal/model"
	"edu_consult_backend/internal/util"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeAssignmentStore struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*model.Assignment
}

func newFakeAssignmentStore() *fakeAssignmentStore {
	return &fakeAssignmentStore{nextID: 1, rows: make(map[uint]*model.Assignment)}
}

func (f *fakeAssignmentStore) CreateIfNoOpen(a *model.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.StudentID == a.StudentID && row.CounselorID == a.CounselorID && row.Status.IsOpen() {
			return util.ErrConflict
		}
	}
	a.ID = f.nextID
	a.CreatedAt = time.Now()
	f.nextID++
	copied := *a
	f.rows[a.ID] = &copied
	return nil
}

func (f *fakeAssignmentStore) FindByID(id uint) (*model.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	return &copied, nil
}

func (f *fakeAssignmentStore) UpdateStatusCAS(id uint, from, to model.AssignmentStatus, fields map[string]interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok || row.Status != from {
		return false, nil
	}
	row.Status = to
	if ts, ok := fields["approved_at"].(time.Time); ok {
		row.ApprovedAt = &ts
	}
	if ts, ok := fields["completed_at"].(time.Time); ok {
		row.CompletedAt = &ts
	}
	return true, nil
}

func (f *fakeAssignmentStore) ListByStudent(studentID uint) ([]model.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Assignment
	for _, row := range f.rows {
		if row.StudentID == studentID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeAssignmentStore) ListByCounselor(counselorID uint) ([]model.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Assignment
	for _, row := range f.rows {
		if row.CounselorID == counselorID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeAssignmentStore) ListStalePending(before time.Time) ([]model.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Assignment
	for _, row := range f.rows {
		if row.Status == model.AssignmentPending && row.CreatedAt.Before(before) {
			out = append(out, *row)
		}
	}
	return out, nil
}

type fakeCounselorDirectory struct {
	byID     map[uint]*model.Counselor
	byUserID map[uint]*model.Counselor
}

func newFakeCounselorDirectory(counselors ...*model.Counselor) *fakeCounselorDirectory {
	d := &fakeCounselorDirectory{
		byID:     make(map[uint]*model.Counselor),
		byUserID: make(map[uint]*model.Counselor),
	}
	for _, c := range counselors {
		d.byID[c.ID] = c
		d.byUserID[c.UserID] = c
	}
	return d
}

func (d *fakeCounselorDirectory) FindByID(id uint) (*model.Counselor, error) {
	c, ok := d.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (d *fakeCounselorDirectory) FindByUserID(userID uint) (*model.Counselor, error) {
	c, ok := d.byUserID[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (n *fakeNotifier) Notify(recipientType string, recipientID uint, notifyType, title, message, actionURL string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("notification backend down")
	}
	n.sent = append(n.sent, notifyType)
	return nil
}

type fakeActivityWriter struct {
	entries []model.ActivityLog
}

func (w *fakeActivityWriter) Create(entry *model.ActivityLog) error {
	w.entries = append(w.entries, *entry)
	return nil
}

func newTestAssignmentService(t *testing.T) (*AssignmentService, *fakeAssignmentStore, *fakeNotifier) {
	t.Helper()
	store := newFakeAssignmentStore()
	counselors := newFakeCounselorDirectory(
		&model.Counselor{
			BaseModel: model.BaseModel{ID: 10},
			UserID:    100,
			FullName:  "Sarah Chen",
			Status:    model.CounselorActive,
		},
		&model.Counselor{
			BaseModel: model.BaseModel{ID: 11},
			UserID:    101,
			FullName:  "Inactive Counselor",
			Status:    model.CounselorInactive,
		},
	)
	notifier := &fakeNotifier{}
	svc := NewAssignmentService(store, counselors, notifier, &fakeActivityWriter{}, zap.NewNop())
	return svc, store, notifier
}

func TestRequestCreatesPending(t *testing.T) {
	svc, _, notifier := newTestAssignmentService(t)

	a, err := svc.Request(1, ConnectionRequest{CounselorID: 10, Description: "Need help with law school applications"})
	require.NoError(t, err)

	assert.Equal(t, model.AssignmentPending, a.Status)
	assert.Equal(t, uint(1), a.StudentID)
	assert.Equal(t, uint(10), a.CounselorID)
	assert.Equal(t, 3, a.Priority)
	assert.Equal(t, model.AssignmentGeneral, a.Type)
	assert.Nil(t, a.ApprovedAt)
	assert.Contains(t, notifier.sent, model.NotifyNewAssignment)
}

func TestRequestDuplicateOpenPairConflicts(t *testing.T) {
	svc, _, _ := newTestAssignmentService(t)

	_, err := svc.Request(1, ConnectionRequest{CounselorID: 10})
	require.NoError(t, err)

	_, err = svc.Request(1, ConnectionRequest{CounselorID: 10})
	assert.ErrorIs(t, err, util.ErrConflict)

	// 对方被拒后可以再次请求
	a, err := svc.Request(2, ConnectionRequest{CounselorID: 10})
	require.NoError(t, err)
	_, err = svc.Reject(a.ID, 10)
	require.NoError(t, err)
	_, err = svc.Request(2, ConnectionRequest{CounselorID: 10})
	assert.NoError(t, err)
}

func TestRequestValidation(t *testing.T) {
	svc, _, _ := newTestAssignmentService(t)

	_, err := svc.Request(1, ConnectionRequest{CounselorID: 999})
	assert.ErrorIs(t, err, util.ErrNotFound)

	_, err = svc.Request(1, ConnectionRequest{CounselorID: 11})
	assert.ErrorIs(t, err, util.ErrNotFound, "inactive counselors are not requestable")

	_, err = svc.Request(1, ConnectionRequest{CounselorID: 10, Priority: 9})
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestApproveSetsTimestampAndNotifies(t *testing.T) {
	svc, store, notifier := newTestAssignmentService(t)

	a, err := svc.Request(1, ConnectionRequest{CounselorID: 10})
	require.NoError(t, err)

	approved, err := svc.Approve(a.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, model.AssignmentApproved, approved.Status)
	require.NotNil(t, approved.ApprovedAt)

	stored, err := store.FindByID(a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AssignmentApproved, stored.Status)
	assert.NotNil(t, stored.ApprovedAt)
	assert.Contains(t, notifier.sent, model.NotifyAssignmentApproved)
}

func TestApproveWrongCounselorDenied(t *testing.T) {
	svc, _, _ := newTestAssignmentService(t)

	a, err := svc.Request(1, ConnectionRequest{CounselorID: 10})
	require.NoError(t, err)

	_, err = svc.Approve(a.ID, 11)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, err = svc.Reject(a.ID, 11)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestRejectLeavesNoTimestamps(t *testing.T) {
	svc, store, notifier := newTestAssignmentService(t)

	a, err := svc.Request(1, ConnectionRequest{CounselorID: 10})
	require.NoError(t, err)

	rejected, err := svc.Reject(a.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, model.AssignmentRejected, rejected.Status)

	stored, err := store.FindByID(a.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ApprovedAt)
	assert.Nil(t, stored.CompletedAt)
	assert.Contains(t, notifier.sent, model.NotifyAssignmentRejected)
}

func TestCompleteRequiresApproved(t *testing.T) {
	svc, store, _ := newTestAssignmentService(t)

	a, err := svc.Request(1, ConnectionRequest{CounselorID: 10})
	require.NoError(t, err)

	_, err = svc.Complete(a.ID, 10)
	assert.ErrorIs(t, err, util.ErrInvalidTransition, "pending cannot jump straight to completed")

	_, err = svc.Approve(a.ID, 10)
	require.NoError(t, err)

	completed, err := svc.Complete(a.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, model.AssignmentCompleted, completed.Status)

	stored, err := store.FindByID(a.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.ApprovedAt)
	assert.NotNil(t, stored.CompletedAt)
}

func TestTerminalStatesAreFrozen(t *testing.T) {
	svc, _, _ := newTestAssignmentService(t)

	a, err := svc.Request(1, ConnectionRequest{CounselorID: 10})
	require.NoError(t, err)
	_, err = svc.Reject(a.ID, 10)
	require.NoError(t, err)

	_, err = svc.Approve(a.ID, 10)
	assert.ErrorIs(t, err, util.ErrInvalidTransition)
	_, err = svc.Complete(a.ID, 10)
	assert.ErrorIs(t, err, util.ErrInvalidTransition)
	_, err = svc.Cancel(a.ID, 1, model.Student)
	assert.ErrorIs(t, err, util.ErrInvalidTransition)

	b, err := svc.Request(1, ConnectionRequest{CounselorID: 10})
	require.NoError(t, err)
	_, err = svc.Approve(b.ID, 10)
	require.NoError(t, err)
	_, err = svc.Complete(b.ID, 10)
	require.NoError(t, err)

	_, err = svc.Cancel(b.ID, 1, model.Student)
	assert.ErrorIs(t, err, util.ErrInvalidTransition)
	_, err = svc.Complete(b.ID, 10)
	assert.ErrorIs(t, err, util.ErrInvalidTransition)
}

func TestCancelActors(t *testing.T) {
	svc, _, _ := newTestAssignmentService(t)

	a, err := svc.Request(1, ConnectionRequest{CounselorID: 10})
	require.NoError(t, err)

	// pending 不能取消，先拒绝它才是正道
	_, err = svc.Cancel(a.ID, 1, model.Student)
	assert.ErrorIs(t, err, util.ErrInvalidTransition)

	_, err = svc.Approve(a.ID, 10)
	require.NoError(t, err)

	// 陌生学生不能取消别人的 engagement
	_, err = svc.Cancel(a.ID, 42, model.Student)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	// 顾问本人（按 user id 100 定位到 counselor 10）可以取消
	cancelled, err := svc.Cancel(a.ID, 100, model.RoleCounselor)
	require.NoError(t, err)
	assert.Equal(t, model.AssignmentCancelled, cancelled.Status)

	b, err := svc.Request(2, ConnectionRequest{CounselorID: 10})
	require.NoError(t, err)
	_, err = svc.Approve(b.ID, 10)
	require.NoError(t, err)

	// 学生本人取消
	_, err = svc.Cancel(b.ID, 2, model.Student)
	assert.NoError(t, err)

	c, err := svc.Request(3, ConnectionRequest{CounselorID: 10})
	require.NoError(t, err)
	_, err = svc.Approve(c.ID, 10)
	require.NoError(t, err)

	// 管理员代为取消
	_, err = svc.Cancel(c.ID, 999, model.Admin)
	assert.NoError(t, err)
}

func TestNotifierFailureDoesNotBlockTransition(t *testing.T) {
	svc, store, notifier := newTestAssignmentService(t)
	notifier.fail = true

	a, err := svc.Request(1, ConnectionRequest{CounselorID: 10})
	require.NoError(t, err)

	_, err = svc.Approve(a.ID, 10)
	require.NoError(t, err)

	stored, err := store.FindByID(a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AssignmentApproved, stored.Status)
}

func TestSweepStalePending(t *testing.T) {
	svc, store, notifier := newTestAssignmentService(t)

	a, err := svc.Request(1, ConnectionRequest{CounselorID: 10})
	require.NoError(t, err)
	fresh, err := svc.Request(2, ConnectionRequest{CounselorID: 10})
	require.NoError(t, err)

	// 把第一条请求的创建时间拨回过期线以前
	store.mu.Lock()
	store.rows[a.ID].CreatedAt = time.Now().Add(-72 * time.Hour)
	store.mu.Unlock()

	swept, err := svc.SweepStalePending(48 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	expired, err := store.FindByID(a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AssignmentRejected, expired.Status)

	untouched, err := store.FindByID(fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AssignmentPending, untouched.Status)
	assert.Contains(t, notifier.sent, model.NotifyAssignmentExpired)
}
