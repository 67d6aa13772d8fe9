package service

import (
	"fmt"
	"log"
	"time"

	"github.com/pelaocl/secplan-project-manager-sub000/cons"
	"github.com/pelaocl/secplan-project-manager-sub000/models"
)

// DueSoonService 临近截止扫描
// 由 engine 的 cron 每日触发：给 N 天内到期且未完成的任务负责人落
// due-soon 通知。同一任务同一负责人每天最多提醒一次。
type DueSoonService struct {
	*Service

	// WithinDays 提前几天提醒，默认 3
	WithinDays int
}

func NewDueSoonService(s *Service) *DueSoonService {
	return &DueSoonService{Service: s, WithinDays: 3}
}

// ScanAndNotify 执行一轮扫描，返回新落的通知条数。
func (s *DueSoonService) ScanAndNotify() (int, error) {
	days := s.WithinDays
	if days <= 0 {
		days = 3
	}

	now := time.Now()
	deadline := now.AddDate(0, 0, days)

	var tasks []models.Task
	err := s.DB.Where("due_date IS NOT NULL AND due_date BETWEEN ? AND ?", now, deadline).
		Where("completed_at IS NULL AND assignee_id IS NOT NULL").
		Find(&tasks).Error
	if err != nil {
		return 0, err
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	created := 0
	for i := range tasks {
		task := &tasks[i]
		recipient := *task.AssigneeID

		// 当天已提醒过就跳过
		var cnt int64
		err := s.DB.Model(&models.Notification{}).
			Where("recipient_id = ? AND kind = ? AND resource_kind = ? AND resource_id = ?",
				recipient, cons.KindDueSoon, models.ResourceKindTask, task.ID).
			Where("created_at >= ?", dayStart).
			Count(&cnt).Error
		if err != nil {
			return created, err
		}
		if cnt > 0 {
			continue
		}

		taskID := task.ID
		_, err = s.Notify.Create(CreateInput{
			RecipientID:  recipient,
			Category:     models.NotificationCategorySystem,
			Kind:         cons.KindDueSoon,
			Message:      fmt.Sprintf("La tarea «%s» vence el %s", task.Title, task.DueDate.Format("2006-01-02")),
			TargetURL:    fmt.Sprintf("/proyectos/%d/tareas/%d", task.ProjectID, task.ID),
			ResourceKind: models.ResourceKindTask,
			ResourceID:   &taskID,
		})
		if err != nil {
			log.Printf("due-soon notification failed task=%d recipient=%d: %v", task.ID, recipient, err)
			continue
		}
		created++
	}

	return created, nil
}
