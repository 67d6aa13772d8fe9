package service

import (
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Service 基础服务，包含数据库和配置
type Service struct {
	DB          *gorm.DB
	RDB         *redis.Client
	TablePrefix string

	// WsNotifier 向某用户全部在线连接推送（个人通道）。
	// 通过函数注入，避免 service 层反向依赖 ws hub。
	WsNotifier func(userID uint64, message []byte)

	// RoomBroadcaster 向某任务聊天室广播（只发给已 join 的连接）。
	RoomBroadcaster func(taskID uint64, message []byte)

	// Notify 通知服务（落库 + 未读数重算 + WS 推送）
	Notify *NotificationService

	// Unread 未读数聚合
	Unread *UnreadService

	// ReadCursor 任务聊天已读游标
	ReadCursor *ReadCursorService
}

// Table 获取带前缀的表名
func (s *Service) Table(name string) *gorm.DB {
	return s.DB.Table(name)
}
