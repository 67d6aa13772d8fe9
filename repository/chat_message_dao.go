package repository

import (
	"time"

	"github.com/pelaocl/secplan-project-manager-sub000/models"
	"gorm.io/gorm"
)

// ChatMessageDAO 封装任务聊天消息的数据库操作
type ChatMessageDAO struct {
	db *gorm.DB
}

func NewChatMessageDAO(db *gorm.DB) *ChatMessageDAO {
	return &ChatMessageDAO{db: db}
}

func (dao *ChatMessageDAO) WithDB(db *gorm.DB) *ChatMessageDAO {
	if db == nil {
		return dao
	}
	return &ChatMessageDAO{db: db}
}

// Create 写入一条消息
func (dao *ChatMessageDAO) Create(m *models.TaskChatMessage) error {
	return dao.db.Create(m).Error
}

// GetByID 按 ID 取消息
func (dao *ChatMessageDAO) GetByID(id uint64) (*models.TaskChatMessage, error) {
	var m models.TaskChatMessage
	if err := dao.db.First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByTask 取任务全部消息。
// 展示顺序约定：sent_at 升序，平局按 id 升序。limit<=0 不限制。
func (dao *ChatMessageDAO) ListByTask(taskID uint64, limit int) ([]models.TaskChatMessage, error) {
	q := dao.db.Model(&models.TaskChatMessage{}).
		Where("task_id = ?", taskID).
		Preload("Sender").
		Order("sent_at asc, id asc")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []models.TaskChatMessage
	err := q.Find(&rows).Error
	return rows, err
}

// CountUnreadForViewer 统计某任务里 viewer 的未读消息数：
// sent_at 晚于游标，且发送者不是 viewer 本人（自己的消息永远不算未读）。
// after 为 nil 表示从未读过，全部他人消息都算未读。
func (dao *ChatMessageDAO) CountUnreadForViewer(taskID, viewerID uint64, after *time.Time) (int64, error) {
	q := dao.db.Model(&models.TaskChatMessage{}).
		Where("task_id = ? AND sender_id <> ?", taskID, viewerID)
	if after != nil {
		q = q.Where("sent_at > ?", *after)
	}

	var cnt int64
	err := q.Count(&cnt).Error
	return cnt, err
}
