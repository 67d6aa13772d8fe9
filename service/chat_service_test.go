package service

import (
	"reflect"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pelaocl/secplan-project-manager-sub000/models"
)

func TestParseMentions(t *testing.T) {
	cases := []struct {
		content string
		want    []string
	}{
		{"sin menciones", nil},
		{"hola @maria revisa esto", []string{"maria"}},
		{"@maria @pedro.soto y de nuevo @maria", []string{"maria", "pedro.soto"}},
		{"correo a@b no cuenta, @jp_2 sí", []string{"jp_2"}},
		{"@x muy corto", nil},
	}

	for _, c := range cases {
		got := ParseMentions(c.content)
		if !reflect.DeepEqual(got, c.want) {
			t.Fatalf("ParseMentions(%q) = %v, want %v", c.content, got, c.want)
		}
	}
}

func TestTaskParticipants(t *testing.T) {
	assignee := uint64(2)

	task := &models.Task{CreatorID: 1, AssigneeID: &assignee}
	if got := taskParticipants(task); !reflect.DeepEqual(got, []uint64{2, 1}) {
		t.Fatalf("expected [2 1], got %v", got)
	}

	// 负责人就是创建者：去重
	self := uint64(1)
	task = &models.Task{CreatorID: 1, AssigneeID: &self}
	if got := taskParticipants(task); !reflect.DeepEqual(got, []uint64{1}) {
		t.Fatalf("expected [1], got %v", got)
	}

	// 没有负责人
	task = &models.Task{CreatorID: 3}
	if got := taskParticipants(task); !reflect.DeepEqual(got, []uint64{3}) {
		t.Fatalf("expected [3], got %v", got)
	}
}

func TestChatService_ListMessages_Order(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	base := newTestBase(gormDB, nil)
	svc := NewChatService(base)

	// 展示顺序必须是 sent_at 升序、平局按 id
	mock.ExpectQuery("SELECT \\* FROM `sp_task_chat_message` WHERE task_id = \\? AND `sp_task_chat_message`.`deleted_at` IS NULL ORDER BY sent_at asc, id asc").
		WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "task_id", "sender_id", "content", "sent_at"}))

	msgs, err := svc.ListMessages(2, 0)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected empty, got %d", len(msgs))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestChatService_SaveMessage_TaskMissing(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	base := newTestBase(gormDB, nil)
	svc := NewChatService(base)

	mock.ExpectQuery("SELECT \\* FROM `sp_task`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := svc.SaveMessage(99, 1, "hola", nil); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestChatService_SaveMessage_EmptyContent(t *testing.T) {
	svc := NewChatService(&Service{})
	if _, err := svc.SaveMessage(1, 1, "", nil); err == nil {
		t.Fatalf("expected error for empty content")
	}
}
