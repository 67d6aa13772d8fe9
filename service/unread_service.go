package service

import (
	"encoding/json"
	"log"

	"github.com/pelaocl/secplan-project-manager-sub000/cons"
	"github.com/pelaocl/secplan-project-manager-sub000/message"
	"github.com/pelaocl/secplan-project-manager-sub000/models"
	"github.com/pelaocl/secplan-project-manager-sub000/repository"
)

// UnreadService 未读数聚合
// 每次从通知表现算，不做缓存：计数永远可由落库记录重算，推送层只是加速，
// 不是第二份真相。这里的数据量很小，正确性优先于性能。
type UnreadService struct {
	*Service
}

func NewUnreadService(s *Service) *UnreadService {
	return &UnreadService{Service: s}
}

// Counts 按分类的未读数
type Counts struct {
	SystemCount int64 `json:"system_count"`
	ChatCount   int64 `json:"chat_count"`
}

// ComputeCounts 现算用户各分类未读数（纯读，无副作用）。
func (s *UnreadService) ComputeCounts(userID uint64) (Counts, error) {
	m, err := repository.NewNotificationDAO(s.DB).CountUnreadByCategory(userID)
	if err != nil {
		return Counts{}, err
	}
	return Counts{
		SystemCount: m[models.NotificationCategorySystem],
		ChatCount:   m[models.NotificationCategoryChat],
	}, nil
}

// RecomputeAndPush 现算后推送到用户全部在线连接。
// 通知表每次变更（create/markRead/markAllRead）后同步调用。
// 计算失败只记日志：推送是尽力而为，下次建连/拉取会补齐。
func (s *UnreadService) RecomputeAndPush(userID uint64) {
	if userID == 0 {
		return
	}

	counts, err := s.ComputeCounts(userID)
	if err != nil {
		log.Printf("unread recompute failed user=%d: %v", userID, err)
		return
	}
	s.PushCounts(userID, counts)
}

// PushCounts 推送 unread_count_updated 到个人通道。
func (s *UnreadService) PushCounts(userID uint64, counts Counts) {
	if s.WsNotifier == nil {
		return
	}

	b, err := json.Marshal(message.UnreadCountPush{
		Type:        cons.EventUnreadCountUpdated,
		SystemCount: counts.SystemCount,
		ChatCount:   counts.ChatCount,
	})
	if err != nil {
		return
	}
	s.WsNotifier(userID, b)
}
