package service

import (
	"time"

	"github.com/pelaocl/secplan-project-manager-sub000/models"
	"gorm.io/gorm"
)

// StatsService 仪表盘聚合统计
// 全部现算（cardinality 小），不做缓存。
type StatsService struct {
	*Service
}

func NewStatsService(s *Service) *StatsService {
	return &StatsService{Service: s}
}

type CountByLabel struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// DashboardStats 仪表盘数据
type DashboardStats struct {
	ProjectTotal    int64          `json:"project_total"`
	TaskTotal       int64          `json:"task_total"`
	TasksByStatus   []CountByLabel `json:"tasks_by_status"`
	ProjectsByStage []CountByLabel `json:"projects_by_stage"`
	ProjectsByUnit  []CountByLabel `json:"projects_by_unit"`
	OverdueTasks    int64          `json:"overdue_tasks"`
}

// taskScope 任务查询基底；访客只统计公开项目下的任务。
func (s *StatsService) taskScope(publicOnly bool) *gorm.DB {
	q := s.DB.Model(&models.Task{})
	if publicOnly {
		q = q.Joins("JOIN sp_project p ON p.id = sp_task.project_id AND p.is_public = ? AND p.deleted_at IS NULL", true)
	}
	return q
}

// projectScope 项目查询基底
func (s *StatsService) projectScope(publicOnly bool) *gorm.DB {
	q := s.DB.Model(&models.Project{})
	if publicOnly {
		q = q.Where("is_public = ?", true)
	}
	return q
}

// GetDashboard 聚合仪表盘统计。访客视角只看公开项目及其任务。
func (s *StatsService) GetDashboard(viewer *UserDTO) (*DashboardStats, error) {
	out := &DashboardStats{}
	publicOnly := viewer == nil || viewer.Role == models.RoleVisita

	if err := s.projectScope(publicOnly).Count(&out.ProjectTotal).Error; err != nil {
		return nil, err
	}
	if err := s.taskScope(publicOnly).Count(&out.TaskTotal).Error; err != nil {
		return nil, err
	}

	// 任务按状态
	if err := s.taskScope(publicOnly).
		Select("s.label as label, count(*) as count").
		Joins("JOIN sp_task_status s ON s.id = sp_task.status_id").
		Group("s.label").
		Scan(&out.TasksByStatus).Error; err != nil {
		return nil, err
	}

	// 项目按阶段
	if err := s.projectScope(publicOnly).
		Select("st.label as label, count(*) as count").
		Joins("JOIN sp_project_stage st ON st.id = sp_project.stage_id").
		Group("st.label").
		Scan(&out.ProjectsByStage).Error; err != nil {
		return nil, err
	}

	// 项目按单位
	if err := s.projectScope(publicOnly).
		Select("u.label as label, count(*) as count").
		Joins("JOIN sp_unit u ON u.id = sp_project.unit_id").
		Group("u.label").
		Scan(&out.ProjectsByUnit).Error; err != nil {
		return nil, err
	}

	// 逾期：过了截止日期且未完成
	if err := s.taskScope(publicOnly).
		Where("sp_task.due_date < ? AND sp_task.completed_at IS NULL", time.Now()).
		Count(&out.OverdueTasks).Error; err != nil {
		return nil, err
	}

	return out, nil
}
