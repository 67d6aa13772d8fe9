package repository

import (
	"errors"
	"time"

	"github.com/pelaocl/secplan-project-manager-sub000/models"
	"gorm.io/gorm"
)

// ReadCursorDAO 封装任务聊天已读游标的数据库操作
type ReadCursorDAO struct {
	db *gorm.DB
}

func NewReadCursorDAO(db *gorm.DB) *ReadCursorDAO {
	return &ReadCursorDAO{db: db}
}

func (dao *ReadCursorDAO) WithDB(db *gorm.DB) *ReadCursorDAO {
	if db == nil {
		return dao
	}
	return &ReadCursorDAO{db: db}
}

// Get 取 (user, task) 的游标；不存在返回 (nil, nil)。
func (dao *ReadCursorDAO) Get(userID, taskID uint64) (*models.TaskReadCursor, error) {
	var c models.TaskReadCursor
	err := dao.db.Where("user_id = ? AND task_id = ?", userID, taskID).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// AdvanceMonotonic 推进游标，取更大值（乱序到达不得回退）。
// 行不存在时惰性创建（首次打开任务聊天）。
//
// last_read_at = GREATEST(last_read_at, at)，NULL 视为最小。
func (dao *ReadCursorDAO) AdvanceMonotonic(userID, taskID uint64, at time.Time) error {
	cursor := &models.TaskReadCursor{UserID: userID, TaskID: taskID}
	if err := dao.db.FirstOrCreate(cursor, map[string]any{"user_id": userID, "task_id": taskID}).Error; err != nil {
		return err
	}

	return dao.db.Model(&models.TaskReadCursor{}).
		Where("user_id = ? AND task_id = ?", userID, taskID).
		Updates(map[string]any{
			"last_read_at": gorm.Expr("CASE WHEN last_read_at IS NULL OR last_read_at < ? THEN ? ELSE last_read_at END", at, at),
			"updated_at":   time.Now(),
		}).Error
}

// ListByUser 取用户全部游标快照（task_id -> last_read_at）。
// 建连时预加载用；NULL 游标不出现在结果里。
func (dao *ReadCursorDAO) ListByUser(userID uint64) (map[uint64]time.Time, error) {
	var rows []models.TaskReadCursor
	if err := dao.db.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[uint64]time.Time, len(rows))
	for _, r := range rows {
		if r.LastReadAt == nil {
			continue
		}
		out[r.TaskID] = *r.LastReadAt
	}
	return out, nil
}
