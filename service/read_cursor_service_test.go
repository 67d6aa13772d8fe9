package service

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pelaocl/secplan-project-manager-sub000/models"
)

func msgAt(senderID uint64, sentAt time.Time) models.TaskChatMessage {
	return models.TaskChatMessage{SenderID: senderID, SentAt: sentAt}
}

func TestIsUnreadFor(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	viewer := uint64(1)

	// 自己发的永远已读，游标有没有都一样
	own := msgAt(viewer, base.Add(time.Hour))
	if IsUnreadFor(&own, viewer, nil) {
		t.Fatalf("own message must never be unread")
	}
	if IsUnreadFor(&own, viewer, &base) {
		t.Fatalf("own message must never be unread (with cursor)")
	}

	// 从未读过：他人消息一律未读
	other := msgAt(2, base)
	if !IsUnreadFor(&other, viewer, nil) {
		t.Fatalf("nil cursor must treat others' messages as unread")
	}

	// 游标之前/等于：已读；之后：未读
	before := msgAt(2, base.Add(-time.Minute))
	if IsUnreadFor(&before, viewer, &base) {
		t.Fatalf("message before cursor must be read")
	}
	exact := msgAt(2, base)
	if IsUnreadFor(&exact, viewer, &base) {
		t.Fatalf("message at cursor must be read")
	}
	after := msgAt(2, base.Add(time.Second))
	if !IsUnreadFor(&after, viewer, &base) {
		t.Fatalf("message after cursor must be unread")
	}
}

func TestFirstUnreadIndex(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	viewer := uint64(1)

	msgs := []models.TaskChatMessage{
		msgAt(2, base.Add(-2*time.Minute)),
		msgAt(viewer, base.Add(30*time.Minute)), // 自己发的，跳过
		msgAt(2, base.Add(time.Hour)),
		msgAt(3, base.Add(2*time.Hour)),
	}

	if got := FirstUnreadIndex(msgs, viewer, &base); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}

	// 游标在最后：全读完
	end := base.Add(3 * time.Hour)
	if got := FirstUnreadIndex(msgs, viewer, &end); got != -1 {
		t.Fatalf("expected -1, got %d", got)
	}

	// 从未读过：第一条他人消息
	if got := FirstUnreadIndex(msgs, viewer, nil); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}

	if got := FirstUnreadIndex(nil, viewer, nil); got != -1 {
		t.Fatalf("expected -1 for empty list, got %d", got)
	}
}

func TestReadCursorService_RecordView_AdvancesMonotonic(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	base := newTestBase(gormDB, nil)

	prev := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "user_id", "task_id", "last_read_at", "created_at", "updated_at"}).
		AddRow(uint64(7), uint64(1), uint64(2), prev, prev, prev)

	// FirstOrCreate：已有行，无 INSERT
	mock.ExpectQuery("SELECT \\* FROM `sp_task_read_cursor`").
		WillReturnRows(rows)
	// 推进用 CASE WHEN 取大，较小的 at 不回退
	mock.ExpectExec("UPDATE `sp_task_read_cursor` SET `last_read_at`=CASE WHEN last_read_at IS NULL OR last_read_at < \\? THEN \\? ELSE last_read_at END").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := base.ReadCursor.RecordView(1, 2, prev.Add(time.Minute)); err != nil {
		t.Fatalf("RecordView: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestReadCursorService_GetCursor_NeverViewed(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	base := newTestBase(gormDB, nil)

	mock.ExpectQuery("SELECT \\* FROM `sp_task_read_cursor`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "task_id", "last_read_at", "created_at", "updated_at"}))

	cursor, err := base.ReadCursor.GetCursor(1, 2)
	if err != nil {
		t.Fatalf("GetCursor: %v", err)
	}
	if cursor != nil {
		t.Fatalf("expected nil cursor, got %v", cursor)
	}
}
