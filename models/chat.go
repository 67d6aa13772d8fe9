package models

import (
	"time"

	"gorm.io/gorm"
)

// TaskChatMessage 任务聊天消息表
// 展示顺序：sent_at 升序，平局按 id 升序（插入顺序不保证 sent_at 全局递增）。
type TaskChatMessage struct {
	ID              uint64    `gorm:"primarykey"`
	TaskID          uint64    `gorm:"index:idx_task_sent,priority:1;not null"` // 任务 ID
	SenderID        uint64    `gorm:"index;not null"`                          // 发送者
	ParentMessageID *uint64   `gorm:"index"`                                   // 回复的消息 ID（线程）
	Content         string    `gorm:"type:text;not null"`
	SentAt          time.Time `gorm:"index:idx_task_sent,priority:2;not null"`
	CreatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`

	Task   Task             `gorm:"foreignKey:TaskID"`
	Sender User             `gorm:"foreignKey:SenderID"`
	Parent *TaskChatMessage `gorm:"foreignKey:ParentMessageID"`
}

func (TaskChatMessage) TableName() string {
	return prefix + "task_chat_message"
}

// TaskReadCursor 任务聊天已读游标（user, task 维度各一条）
// last_read_at 只能单调向前（乱序到达的回执不得回退游标）。
type TaskReadCursor struct {
	ID         uint64     `gorm:"primarykey"`
	UserID     uint64     `gorm:"index:idx_user_task,unique;not null"`
	TaskID     uint64     `gorm:"index:idx_user_task,unique;not null"`
	LastReadAt *time.Time `gorm:"index"` // NULL 表示从未读过
	CreatedAt  time.Time
	UpdatedAt  time.Time

	User User `gorm:"foreignKey:UserID"`
	Task Task `gorm:"foreignKey:TaskID"`
}

func (TaskReadCursor) TableName() string {
	return prefix + "task_read_cursor"
}
