package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	prefix = "sp_"
)

// 用户角色
const (
	RoleAdmin     = "ADMIN"     // 管理员：全部项目可见可改
	RoleUrbanista = "URBANISTA" // 规划师：负责项目/任务的日常编辑
	RoleVisita    = "VISITA"    // 访客：只读，仅公开项目可见
)

// User 用户表
type User struct {
	ID          uint64     `gorm:"primarykey"`
	UID         string     `gorm:"size:36;uniqueIndex;not null"`      // 对外用户 ID
	Username    string     `gorm:"size:50;uniqueIndex;not null"`      // 用户名（@提及用）
	Name        string     `gorm:"size:100;not null"`                 // 姓名
	Password    string     `gorm:"size:255;not null"`                 // 密码(bcrypt)
	Email       string     `gorm:"size:100;uniqueIndex;default:null"` // 邮箱
	Role        string     `gorm:"size:20;index;default:'VISITA'"`    // 角色: ADMIN/URBANISTA/VISITA
	UnitID      *uint64    `gorm:"index"`                             // 所属单位
	IsActive    bool       `gorm:"default:true"`                      // 是否启用
	LastLoginAt *time.Time // 最后登录时间
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`

	Unit *Unit `gorm:"foreignKey:UnitID"`
}

func (User) TableName() string {
	return prefix + "user"
}

// Project 项目表（市政项目）
type Project struct {
	ID          uint64  `gorm:"primarykey"`
	Code        string  `gorm:"size:32;uniqueIndex;not null"` // 项目编号
	Name        string  `gorm:"size:200;not null"`            // 项目名称
	Description string  `gorm:"type:text"`                    // 描述
	StageID     *uint64 `gorm:"index"`                        // 阶段
	TypeID      *uint64 `gorm:"index"`                        // 类型
	UnitID      *uint64 `gorm:"index"`                        // 主责单位
	CreatorID   uint64  `gorm:"index;not null"`               // 创建者
	Budget      int64   `gorm:"default:0"`                    // 预算（整数，本位币）
	IsPublic    bool    `gorm:"default:false"`                // 是否对访客公开
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`

	Stage   *ProjectStage `gorm:"foreignKey:StageID"`
	Type    *ProjectType  `gorm:"foreignKey:TypeID"`
	Unit    *Unit         `gorm:"foreignKey:UnitID"`
	Creator User          `gorm:"foreignKey:CreatorID"`
	Tasks   []Task        `gorm:"foreignKey:ProjectID"`
}

func (Project) TableName() string {
	return prefix + "project"
}

// Task 任务表
type Task struct {
	ID          uint64     `gorm:"primarykey"`
	ProjectID   uint64     `gorm:"index;not null"` // 所属项目
	Title       string     `gorm:"size:200;not null"`
	Description string     `gorm:"type:text"`
	StatusID    uint64     `gorm:"index;not null"` // 状态（查 TaskStatus）
	AssigneeID  *uint64    `gorm:"index"`          // 负责人
	CreatorID   uint64     `gorm:"index;not null"` // 创建者
	DueDate     *time.Time `gorm:"index"`          // 截止日期
	CompletedAt *time.Time // 完成时间
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`

	Project  Project    `gorm:"foreignKey:ProjectID"`
	Status   TaskStatus `gorm:"foreignKey:StatusID"`
	Assignee *User      `gorm:"foreignKey:AssigneeID"`
	Creator  User       `gorm:"foreignKey:CreatorID"`
}

func (Task) TableName() string {
	return prefix + "task"
}

// TaskStatus 任务状态字典表
type TaskStatus struct {
	ID         uint64 `gorm:"primarykey"`
	Name       string `gorm:"size:50;uniqueIndex;not null"` // 如 PENDIENTE/EN_PROCESO/COMPLETADA
	Label      string `gorm:"size:100"`                     // 展示名
	SortOrder  int    `gorm:"default:0"`
	IsTerminal bool   `gorm:"default:false"` // 是否终态（完成）
}

func (TaskStatus) TableName() string {
	return prefix + "task_status"
}

// ProjectStage 项目阶段字典表
type ProjectStage struct {
	ID        uint64 `gorm:"primarykey"`
	Name      string `gorm:"size:50;uniqueIndex;not null"`
	Label     string `gorm:"size:100"`
	SortOrder int    `gorm:"default:0"`
}

func (ProjectStage) TableName() string {
	return prefix + "project_stage"
}

// ProjectType 项目类型字典表
type ProjectType struct {
	ID    uint64 `gorm:"primarykey"`
	Name  string `gorm:"size:50;uniqueIndex;not null"`
	Label string `gorm:"size:100"`
}

func (ProjectType) TableName() string {
	return prefix + "project_type"
}

// Unit 单位（部门）字典表
type Unit struct {
	ID    uint64 `gorm:"primarykey"`
	Name  string `gorm:"size:100;uniqueIndex;not null"`
	Label string `gorm:"size:100"`
}

func (Unit) TableName() string {
	return prefix + "unit"
}
