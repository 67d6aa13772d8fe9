package service

import (
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestUnreadService_ComputeCounts(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	base := newTestBase(gormDB, nil)

	mock.ExpectQuery("SELECT category, count\\(\\*\\) as cnt FROM `sp_notification`").
		WithArgs(uint64(1), false).
		WillReturnRows(sqlmock.NewRows([]string{"category", "cnt"}).
			AddRow("SYSTEM", 2).
			AddRow("CHAT", 5))

	counts, err := base.Unread.ComputeCounts(1)
	if err != nil {
		t.Fatalf("ComputeCounts: %v", err)
	}
	if counts.SystemCount != 2 || counts.ChatCount != 5 {
		t.Fatalf("expected 2/5, got %+v", counts)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestUnreadService_ComputeCounts_NoUnread(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	base := newTestBase(gormDB, nil)

	// 没有未读：分类不出现在结果里，计数归零
	mock.ExpectQuery("SELECT category, count\\(\\*\\) as cnt FROM `sp_notification`").
		WillReturnRows(sqlmock.NewRows([]string{"category", "cnt"}))

	counts, err := base.Unread.ComputeCounts(1)
	if err != nil {
		t.Fatalf("ComputeCounts: %v", err)
	}
	if counts.SystemCount != 0 || counts.ChatCount != 0 {
		t.Fatalf("expected 0/0, got %+v", counts)
	}
}

func TestUnreadService_PushCounts_WireFormat(t *testing.T) {
	var pushed [][]byte
	base := &Service{WsNotifier: func(userID uint64, msg []byte) {
		pushed = append(pushed, msg)
	}}
	svc := NewUnreadService(base)

	svc.PushCounts(1, Counts{SystemCount: 1, ChatCount: 4})

	if len(pushed) != 1 {
		t.Fatalf("expected 1 push, got %d", len(pushed))
	}
	var got struct {
		Type        string `json:"type"`
		SystemCount int64  `json:"system_count"`
		ChatCount   int64  `json:"chat_count"`
	}
	if err := json.Unmarshal(pushed[0], &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != "unread_count_updated" {
		t.Fatalf("expected unread_count_updated, got %q", got.Type)
	}
	if got.SystemCount != 1 || got.ChatCount != 4 {
		t.Fatalf("expected 1/4, got %+v", got)
	}
}

func TestUnreadService_PushCounts_NoNotifier(t *testing.T) {
	svc := NewUnreadService(&Service{})
	// WsNotifier 未注入时不得 panic
	svc.PushCounts(1, Counts{SystemCount: 1})
}
