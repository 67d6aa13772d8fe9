package service

import (
	"errors"
	"time"

	"github.com/pelaocl/secplan-project-manager-sub000/models"
	"github.com/pelaocl/secplan-project-manager-sub000/repository"
)

// ReadCursorService 任务聊天已读游标
// 每个 (user, task) 一条水位线：不给每条消息打已读标记，
// 而是记“读到了哪个时刻”，未读 = sent_at 晚于水位线的他人消息。
type ReadCursorService struct {
	*Service
}

func NewReadCursorService(s *Service) *ReadCursorService {
	return &ReadCursorService{Service: s}
}

// RecordView 记录用户查看了任务聊天，推进游标到 at。
// 单调取大：多端并发/乱序到达时较小的 at 不会回退游标。
// at 为零值时取当前时间。
func (s *ReadCursorService) RecordView(userID, taskID uint64, at time.Time) error {
	if userID == 0 || taskID == 0 {
		return errors.New("user_id and task_id are required")
	}
	if at.IsZero() {
		at = time.Now()
	}
	return repository.NewReadCursorDAO(s.DB).AdvanceMonotonic(userID, taskID, at)
}

// GetCursor 取游标；从未读过（无记录或 NULL）返回 nil。
func (s *ReadCursorService) GetCursor(userID, taskID uint64) (*time.Time, error) {
	if userID == 0 || taskID == 0 {
		return nil, errors.New("user_id and task_id are required")
	}

	c, err := repository.NewReadCursorDAO(s.DB).Get(userID, taskID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, nil
	}
	return c.LastReadAt, nil
}

// IsUnreadFor 判断一条消息对 viewer 是否未读：
// - 自己发的消息永远已读；
// - 游标为 nil（从未读过）时，他人消息一律未读；
// - 否则 sent_at 晚于游标才算未读。
func IsUnreadFor(msg *models.TaskChatMessage, viewerID uint64, cursor *time.Time) bool {
	if msg == nil || msg.SenderID == viewerID {
		return false
	}
	if cursor == nil {
		return true
	}
	return msg.SentAt.After(*cursor)
}

// FirstUnreadIndex 在按展示顺序排好的消息列表里找未读分隔线位置。
// 返回第一条未读消息的下标；全部已读返回 -1。
func FirstUnreadIndex(msgs []models.TaskChatMessage, viewerID uint64, cursor *time.Time) int {
	for i := range msgs {
		if IsUnreadFor(&msgs[i], viewerID, cursor) {
			return i
		}
	}
	return -1
}
