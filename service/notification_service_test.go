package service

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func notificationRow(id, recipientID uint64, category string, isRead bool) *sqlmock.Rows {
	var readAt *time.Time
	if isRead {
		now := time.Now()
		readAt = &now
	}
	return sqlmock.NewRows([]string{"id", "recipient_id", "category", "kind", "message", "target_url", "resource_kind", "resource_id", "payload", "is_read", "read_at", "created_at", "deleted_at"}).
		AddRow(id, recipientID, category, "new-chat-message", "Nuevo mensaje", "/proyectos/1/tareas/2/chat", "MESSAGE", uint64(9), nil, isRead, readAt, time.Now(), nil)
}

func TestNotificationService_MarkRead_Transitions(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	var pushed [][]byte
	base := newTestBase(gormDB, &pushed)

	mock.ExpectQuery("SELECT \\* FROM `sp_notification`").
		WillReturnRows(notificationRow(5, 1, "CHAT", false))
	mock.ExpectExec("UPDATE `sp_notification` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// 置已读后现算未读数
	mock.ExpectQuery("SELECT category, count\\(\\*\\) as cnt FROM `sp_notification`").
		WillReturnRows(sqlmock.NewRows([]string{"category", "cnt"}).AddRow("CHAT", 2))

	n, err := base.Notify.MarkRead(5, 1)
	if err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if !n.IsRead || n.ReadAt == nil {
		t.Fatalf("expected read notification, got %+v", n)
	}

	// 转为已读必须触发一次 unread_count_updated 推送
	if len(pushed) != 1 {
		t.Fatalf("expected 1 push, got %d", len(pushed))
	}
	var got map[string]any
	if err := json.Unmarshal(pushed[0], &got); err != nil {
		t.Fatalf("unmarshal push: %v", err)
	}
	if got["type"] != "unread_count_updated" {
		t.Fatalf("expected unread_count_updated, got %v", got["type"])
	}
	if got["chat_count"] != float64(2) {
		t.Fatalf("expected chat_count 2, got %v", got["chat_count"])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestNotificationService_MarkRead_AlreadyReadIsNoop(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	var pushed [][]byte
	base := newTestBase(gormDB, &pushed)

	// 已读的通知：只有 SELECT，没有 UPDATE，也不推送
	mock.ExpectQuery("SELECT \\* FROM `sp_notification`").
		WillReturnRows(notificationRow(5, 1, "CHAT", true))

	n, err := base.Notify.MarkRead(5, 1)
	if err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if !n.IsRead {
		t.Fatalf("expected read notification")
	}
	if len(pushed) != 0 {
		t.Fatalf("expected no push, got %d", len(pushed))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestNotificationService_MarkRead_OtherUsersNotification(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	base := newTestBase(gormDB, nil)

	mock.ExpectQuery("SELECT \\* FROM `sp_notification`").
		WillReturnRows(notificationRow(5, 2, "CHAT", false))

	if _, err := base.Notify.MarkRead(5, 1); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestNotificationService_MarkAllRead_ReturnsCount(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	var pushed [][]byte
	base := newTestBase(gormDB, &pushed)

	mock.ExpectExec("UPDATE `sp_notification` SET").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectQuery("SELECT category, count\\(\\*\\) as cnt FROM `sp_notification`").
		WillReturnRows(sqlmock.NewRows([]string{"category", "cnt"}))

	count, err := base.Notify.MarkAllRead(1, "SYSTEM")
	if err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3, got %d", count)
	}
	if len(pushed) != 1 {
		t.Fatalf("expected 1 push, got %d", len(pushed))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestNotificationService_MarkAllRead_NothingUnread(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	var pushed [][]byte
	base := newTestBase(gormDB, &pushed)

	// 没有未读行：0 行受影响，不重算不推送
	mock.ExpectExec("UPDATE `sp_notification` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	count, err := base.Notify.MarkAllRead(1, "")
	if err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0, got %d", count)
	}
	if len(pushed) != 0 {
		t.Fatalf("expected no push, got %d", len(pushed))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestNotificationService_Create_RecipientMissing(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	base := newTestBase(gormDB, nil)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `sp_user`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))

	_, err := base.Notify.Create(CreateInput{
		RecipientID: 99,
		Category:    "SYSTEM",
		Kind:        "new-task-assigned",
		Message:     "Te asignaron la tarea «X»",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestNotificationService_Create_InvalidCategory(t *testing.T) {
	gormDB, _, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	base := newTestBase(gormDB, nil)

	_, err := base.Notify.Create(CreateInput{RecipientID: 1, Category: "OTRA", Kind: "x"})
	if err == nil {
		t.Fatalf("expected error for invalid category")
	}
}
