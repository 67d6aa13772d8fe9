package service

import (
	"github.com/pelaocl/secplan-project-manager-sub000/models"
)

// LookupService 字典表只读查询（任务状态/项目阶段/项目类型/单位）
type LookupService struct {
	*Service
}

func NewLookupService(s *Service) *LookupService {
	return &LookupService{Service: s}
}

// Lookups 全部字典，一次拉齐（前端表单初始化用）
type Lookups struct {
	TaskStatuses  []models.TaskStatus   `json:"task_statuses"`
	ProjectStages []models.ProjectStage `json:"project_stages"`
	ProjectTypes  []models.ProjectType  `json:"project_types"`
	Units         []models.Unit         `json:"units"`
}

func (s *LookupService) ListAll() (*Lookups, error) {
	out := &Lookups{}
	if err := s.DB.Order("sort_order asc, id asc").Find(&out.TaskStatuses).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Order("sort_order asc, id asc").Find(&out.ProjectStages).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Order("id asc").Find(&out.ProjectTypes).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Order("id asc").Find(&out.Units).Error; err != nil {
		return nil, err
	}
	return out, nil
}
