package secplan

import (
	"log"

	model "github.com/pelaocl/secplan-project-manager-sub000/models"
)

func (e *Engine) AutoMigrate() error {
	db := e.config.DB
	if db == nil {
		return nil
	}
	log.Println("AutoMigrate...")
	return db.AutoMigrate(
		&model.Unit{},
		&model.ProjectStage{},
		&model.ProjectType{},
		&model.TaskStatus{},
		&model.User{},
		&model.Project{},
		&model.Task{},
		&model.TaskChatMessage{},
		&model.TaskReadCursor{},
		&model.Notification{},
	)
}

// SeedLookups 初始化字典表（空表才写，幂等）。
func (e *Engine) SeedLookups() error {
	db := e.config.DB
	if db == nil {
		return nil
	}

	var cnt int64
	if err := db.Model(&model.TaskStatus{}).Count(&cnt).Error; err != nil {
		return err
	}
	if cnt > 0 {
		return nil
	}

	statuses := []model.TaskStatus{
		{Name: "PENDIENTE", Label: "Pendiente", SortOrder: 1},
		{Name: "EN_PROCESO", Label: "En proceso", SortOrder: 2},
		{Name: "EN_REVISION", Label: "En revisión", SortOrder: 3},
		{Name: "COMPLETADA", Label: "Completada", SortOrder: 4, IsTerminal: true},
	}
	if err := db.Create(&statuses).Error; err != nil {
		return err
	}

	stages := []model.ProjectStage{
		{Name: "IDEA", Label: "Idea", SortOrder: 1},
		{Name: "DISENO", Label: "Diseño", SortOrder: 2},
		{Name: "LICITACION", Label: "Licitación", SortOrder: 3},
		{Name: "EJECUCION", Label: "Ejecución", SortOrder: 4},
		{Name: "TERMINADO", Label: "Terminado", SortOrder: 5},
	}
	if err := db.Create(&stages).Error; err != nil {
		return err
	}

	types := []model.ProjectType{
		{Name: "INFRAESTRUCTURA", Label: "Infraestructura"},
		{Name: "ESPACIO_PUBLICO", Label: "Espacio público"},
		{Name: "VIVIENDA", Label: "Vivienda"},
		{Name: "ESTUDIO", Label: "Estudio"},
	}
	if err := db.Create(&types).Error; err != nil {
		return err
	}

	units := []model.Unit{
		{Name: "SECPLAN", Label: "Secretaría de Planificación"},
		{Name: "DOM", Label: "Dirección de Obras"},
		{Name: "DIDECO", Label: "Desarrollo Comunitario"},
	}
	return db.Create(&units).Error
}
