package service

import (
	"errors"
	"strings"

	"github.com/pelaocl/secplan-project-manager-sub000/models"
	"gorm.io/gorm"
)

// ProjectService 项目 CRUD
// 可见性规则：ADMIN/URBANISTA 全量；VISITA 只读且仅公开项目。
type ProjectService struct {
	*Service
}

func NewProjectService(s *Service) *ProjectService {
	return &ProjectService{Service: s}
}

type CreateProjectReq struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	StageID     *uint64 `json:"stage_id"`
	TypeID      *uint64 `json:"type_id"`
	UnitID      *uint64 `json:"unit_id"`
	Budget      int64   `json:"budget"`
	IsPublic    bool    `json:"is_public"`
}

type UpdateProjectReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	StageID     *uint64 `json:"stage_id"`
	TypeID      *uint64 `json:"type_id"`
	UnitID      *uint64 `json:"unit_id"`
	Budget      *int64  `json:"budget"`
	IsPublic    *bool   `json:"is_public"`
}

// CreateProject 创建项目，code 唯一。
func (s *ProjectService) CreateProject(actorID uint64, req CreateProjectReq) (*models.Project, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" || strings.TrimSpace(req.Name) == "" {
		return nil, errors.New("code and name are required")
	}

	var cnt int64
	if err := s.DB.Model(&models.Project{}).Where("code = ?", code).Count(&cnt).Error; err != nil {
		return nil, err
	}
	if cnt > 0 {
		return nil, errors.New("project code already exists")
	}

	p := &models.Project{
		Code:        code,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		StageID:     req.StageID,
		TypeID:      req.TypeID,
		UnitID:      req.UnitID,
		CreatorID:   actorID,
		Budget:      req.Budget,
		IsPublic:    req.IsPublic,
	}
	if err := s.DB.Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProject 部分更新
func (s *ProjectService) UpdateProject(projectID uint64, req UpdateProjectReq) (*models.Project, error) {
	var p models.Project
	if err := s.DB.First(&p, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.StageID != nil {
		updates["stage_id"] = req.StageID
	}
	if req.TypeID != nil {
		updates["type_id"] = req.TypeID
	}
	if req.UnitID != nil {
		updates["unit_id"] = req.UnitID
	}
	if req.Budget != nil {
		updates["budget"] = *req.Budget
	}
	if req.IsPublic != nil {
		updates["is_public"] = *req.IsPublic
	}
	if len(updates) == 0 {
		return &p, nil
	}

	if err := s.DB.Model(&p).Updates(updates).Error; err != nil {
		return nil, err
	}
	if err := s.DB.First(&p, projectID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProject 按 ID 取项目（带字典关联）
func (s *ProjectService) GetProject(viewer *UserDTO, projectID uint64) (*models.Project, error) {
	var p models.Project
	err := s.DB.Preload("Stage").Preload("Type").Preload("Unit").
		First(&p, projectID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if viewer != nil && viewer.Role == models.RoleVisita && !p.IsPublic {
		return nil, ErrForbidden
	}
	return &p, nil
}

// ListProjects 项目列表，按角色过滤可见性。
func (s *ProjectService) ListProjects(viewer *UserDTO) ([]models.Project, error) {
	q := s.DB.Model(&models.Project{}).
		Preload("Stage").Preload("Type").Preload("Unit").
		Order("id desc")
	if viewer == nil || viewer.Role == models.RoleVisita {
		q = q.Where("is_public = ?", true)
	}

	var rows []models.Project
	err := q.Find(&rows).Error
	return rows, err
}

// DeleteProject 软删除
func (s *ProjectService) DeleteProject(projectID uint64) error {
	res := s.DB.Delete(&models.Project{}, projectID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
