package repository

import (
	"time"

	"github.com/pelaocl/secplan-project-manager-sub000/models"
	"gorm.io/gorm"
)

// NotificationDAO 封装通知记录的数据库操作
//
// 约定：
// - 只做数据访问（CRUD/查询封装），不做业务编排（权限、推送等）。
// - 事务边界由 service 控制；如需在事务中执行，用 WithDB(tx)。
type NotificationDAO struct {
	db *gorm.DB
}

func NewNotificationDAO(db *gorm.DB) *NotificationDAO {
	return &NotificationDAO{db: db}
}

// WithDB 用于在事务（tx）中复用 DAO
func (dao *NotificationDAO) WithDB(db *gorm.DB) *NotificationDAO {
	if db == nil {
		return dao
	}
	return &NotificationDAO{db: db}
}

// Create 写入一条通知记录
func (dao *NotificationDAO) Create(n *models.Notification) error {
	return dao.db.Create(n).Error
}

// GetByID 按 ID 取通知
func (dao *NotificationDAO) GetByID(id uint64) (*models.Notification, error) {
	var n models.Notification
	if err := dao.db.First(&n, id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

// ListByRecipient 拉取用户通知，id 倒序（最新在前）。
// category 为空表示不过滤分类；limit<=0 不限制。
func (dao *NotificationDAO) ListByRecipient(userID uint64, onlyUnread bool, category string, limit int) ([]models.Notification, error) {
	q := dao.db.Model(&models.Notification{}).
		Where("recipient_id = ?", userID)
	if onlyUnread {
		q = q.Where("is_read = ?", false)
	}
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []models.Notification
	err := q.Order("id desc").Find(&rows).Error
	return rows, err
}

// MarkRead 将单条通知置为已读，返回影响行数。
// 只更新 is_read=false 的行，重复调用天然幂等（0 行）。
func (dao *NotificationDAO) MarkRead(id uint64, now time.Time) (int64, error) {
	res := dao.db.Model(&models.Notification{}).
		Where("id = ? AND is_read = ?", id, false).
		Updates(map[string]any{"is_read": true, "read_at": &now})
	return res.RowsAffected, res.Error
}

// MarkAllRead 批量置已读，category 为空表示全分类。返回转为已读的行数。
func (dao *NotificationDAO) MarkAllRead(userID uint64, category string, now time.Time) (int64, error) {
	q := dao.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	res := q.Updates(map[string]any{"is_read": true, "read_at": &now})
	return res.RowsAffected, res.Error
}

// MarkAllReadForTaskChat 将某任务聊天产生的 CHAT 通知全部置已读。
// 通过子查询圈定该任务的消息 ID（resource_kind=MESSAGE）。
func (dao *NotificationDAO) MarkAllReadForTaskChat(userID, taskID uint64, now time.Time) (int64, error) {
	sub := dao.db.Model(&models.TaskChatMessage{}).
		Select("id").
		Where("task_id = ?", taskID)

	res := dao.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND category = ? AND is_read = ?", userID, models.NotificationCategoryChat, false).
		Where("resource_kind = ? AND resource_id IN (?)", models.ResourceKindMessage, sub).
		Updates(map[string]any{"is_read": true, "read_at": &now})
	return res.RowsAffected, res.Error
}

// CountUnreadByCategory 按分类统计未读数。
// 返回：category -> count（没有未读的分类不出现在 map 里）。
func (dao *NotificationDAO) CountUnreadByCategory(userID uint64) (map[string]int64, error) {
	type row struct {
		Category string
		Cnt      int64
	}
	var rows []row
	if err := dao.db.Model(&models.Notification{}).
		Select("category, count(*) as cnt").
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Group("category").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Category] = r.Cnt
	}
	return out, nil
}
