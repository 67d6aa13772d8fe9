package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 通知分类（对应铃铛：系统铃铛 / 聊天铃铛）
const (
	NotificationCategorySystem = "SYSTEM"
	NotificationCategoryChat   = "CHAT"
)

// 通知关联资源类型
const (
	ResourceKindTask    = "TASK"
	ResourceKindMessage = "MESSAGE"
	ResourceKindProject = "PROJECT"
)

// Notification 通知记录表
// 用于：
// - WS 即时推送的消息体来源
// - 离线/新设备通过 HTTP 拉取
// - 未读数聚合（COUNT is_read=false），计数永远可由本表重算
//
// is_read 只允许 false -> true，不会自动回退；正常运营下不删除。
type Notification struct {
	ID           uint64         `gorm:"primarykey"`
	RecipientID  uint64         `gorm:"index:idx_recipient_read,priority:1;not null"` // 接收者
	Category     string         `gorm:"size:16;index:idx_recipient_read,priority:2;not null"`
	Kind         string         `gorm:"size:64;index;not null"` // cons.Kind*
	Message      string         `gorm:"size:500;not null"`      // 展示文案
	TargetURL    string         `gorm:"size:255"`               // 前端跳转链接（可空）
	ResourceKind string         `gorm:"size:16;index"`          // TASK/MESSAGE/PROJECT（可空）
	ResourceID   *uint64        `gorm:"index"`                  // 关联资源 ID（可空）
	Payload      datatypes.JSON `gorm:"type:json"`              // 附加数据（可空）
	IsRead       bool           `gorm:"index:idx_recipient_read,priority:3;default:false"`
	ReadAt       *time.Time
	CreatedAt    time.Time      `gorm:"index"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`

	Recipient User `gorm:"foreignKey:RecipientID"`
}

func (Notification) TableName() string { return prefix + "notification" }
