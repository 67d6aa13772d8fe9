package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/pelaocl/secplan-project-manager-sub000/cons"
	"github.com/pelaocl/secplan-project-manager-sub000/models"
	"gorm.io/gorm"
)

// TaskService 任务 CRUD + 业务事件触发的通知扇出
// 通知是辅助效果：落库失败只记日志，任务写入本身照常成功。
type TaskService struct {
	*Service
}

func NewTaskService(s *Service) *TaskService {
	return &TaskService{Service: s}
}

type CreateTaskReq struct {
	ProjectID   uint64     `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StatusID    uint64     `json:"status_id"`
	AssigneeID  *uint64    `json:"assignee_id"`
	DueDate     *time.Time `json:"due_date"`
}

type UpdateTaskReq struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	StatusID    *uint64    `json:"status_id"`
	AssigneeID  *uint64    `json:"assignee_id"`
	DueDate     *time.Time `json:"due_date"`
}

// CreateTask 创建任务。项目不存在返回 ErrNotFound。
// 有负责人且不是创建者本人时，落一条 new-task-assigned。
func (s *TaskService) CreateTask(actorID uint64, req CreateTaskReq) (*models.Task, error) {
	if req.ProjectID == 0 || req.Title == "" {
		return nil, errors.New("project_id and title are required")
	}

	var project models.Project
	if err := s.DB.First(&project, req.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	statusID := req.StatusID
	if statusID == 0 {
		// 默认取排序最靠前的状态（通常为 PENDIENTE）
		var st models.TaskStatus
		if err := s.DB.Order("sort_order asc").First(&st).Error; err != nil {
			return nil, err
		}
		statusID = st.ID
	}

	task := &models.Task{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		StatusID:    statusID,
		AssigneeID:  req.AssigneeID,
		CreatorID:   actorID,
		DueDate:     req.DueDate,
	}
	if err := s.DB.Create(task).Error; err != nil {
		return nil, err
	}

	if task.AssigneeID != nil && *task.AssigneeID != actorID {
		s.notifyTask(*task.AssigneeID, task, cons.KindNewTaskAssigned,
			fmt.Sprintf("Te asignaron la tarea «%s»", task.Title))
	}

	return task, nil
}

// UpdateTask 更新任务，按变更字段落对应通知（排除操作者本人）：
// - 状态变更：task-status-changed；新状态为终态时改发 task-completed 并记录完成时间
// - 负责人变更：new-task-assigned（发给新负责人）
// - 其余字段变更：task-info-changed
func (s *TaskService) UpdateTask(actorID, taskID uint64, req UpdateTaskReq) (*models.Task, error) {
	var task models.Task
	if err := s.DB.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	updates := map[string]any{}
	infoChanged := false

	if req.Title != nil && *req.Title != task.Title {
		updates["title"] = *req.Title
		infoChanged = true
	}
	if req.Description != nil && *req.Description != task.Description {
		updates["description"] = *req.Description
		infoChanged = true
	}
	if req.DueDate != nil {
		updates["due_date"] = req.DueDate
		infoChanged = true
	}

	statusChanged := req.StatusID != nil && *req.StatusID != task.StatusID
	completed := false
	if statusChanged {
		var st models.TaskStatus
		if err := s.DB.First(&st, *req.StatusID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		updates["status_id"] = *req.StatusID
		if st.IsTerminal {
			completed = true
			now := time.Now()
			updates["completed_at"] = &now
		}
	}

	assigneeChanged := req.AssigneeID != nil &&
		(task.AssigneeID == nil || *req.AssigneeID != *task.AssigneeID)
	if assigneeChanged {
		updates["assignee_id"] = req.AssigneeID
	}

	if len(updates) == 0 {
		return &task, nil
	}
	if err := s.DB.Model(&task).Updates(updates).Error; err != nil {
		return nil, err
	}
	if err := s.DB.First(&task, taskID).Error; err != nil {
		return nil, err
	}

	// 通知扇出：负责人 + 创建者，排除操作者
	recipients := func() []uint64 {
		out := make([]uint64, 0, 2)
		for _, uid := range taskParticipants(&task) {
			if uid != actorID {
				out = append(out, uid)
			}
		}
		return out
	}

	switch {
	case completed:
		for _, uid := range recipients() {
			s.notifyTask(uid, &task, cons.KindTaskCompleted,
				fmt.Sprintf("La tarea «%s» fue completada", task.Title))
		}
	case statusChanged:
		for _, uid := range recipients() {
			s.notifyTask(uid, &task, cons.KindTaskStatusChanged,
				fmt.Sprintf("Cambió el estado de la tarea «%s»", task.Title))
		}
	}

	if assigneeChanged && task.AssigneeID != nil && *task.AssigneeID != actorID {
		s.notifyTask(*task.AssigneeID, &task, cons.KindNewTaskAssigned,
			fmt.Sprintf("Te asignaron la tarea «%s»", task.Title))
	}

	if infoChanged && !statusChanged && !assigneeChanged {
		for _, uid := range recipients() {
			s.notifyTask(uid, &task, cons.KindTaskInfoChanged,
				fmt.Sprintf("Se modificó la tarea «%s»", task.Title))
		}
	}

	return &task, nil
}

// GetTask 按 ID 取任务（带状态/负责人）。
// 访客只能看公开项目的任务。
func (s *TaskService) GetTask(viewer *UserDTO, taskID uint64) (*models.Task, error) {
	var task models.Task
	err := s.DB.Preload("Status").Preload("Assignee").Preload("Project").
		First(&task, taskID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if viewer != nil && viewer.Role == models.RoleVisita && !task.Project.IsPublic {
		return nil, ErrForbidden
	}
	return &task, nil
}

// ListTasksByProject 项目下任务列表
func (s *TaskService) ListTasksByProject(viewer *UserDTO, projectID uint64) ([]models.Task, error) {
	if projectID == 0 {
		return nil, errors.New("project_id is required")
	}

	var project models.Project
	if err := s.DB.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if viewer != nil && viewer.Role == models.RoleVisita && !project.IsPublic {
		return nil, ErrForbidden
	}

	var rows []models.Task
	err := s.DB.Where("project_id = ?", projectID).
		Preload("Status").Preload("Assignee").
		Order("id asc").Find(&rows).Error
	return rows, err
}

func (s *TaskService) notifyTask(recipientID uint64, task *models.Task, kind, text string) {
	if s.Notify == nil {
		return
	}
	taskID := task.ID
	_, err := s.Notify.Create(CreateInput{
		RecipientID:  recipientID,
		Category:     models.NotificationCategorySystem,
		Kind:         kind,
		Message:      text,
		TargetURL:    fmt.Sprintf("/proyectos/%d/tareas/%d", task.ProjectID, task.ID),
		ResourceKind: models.ResourceKindTask,
		ResourceID:   &taskID,
	})
	if err != nil {
		log.Printf("task notification failed recipient=%d task=%d kind=%s: %v", recipientID, task.ID, kind, err)
	}
}
