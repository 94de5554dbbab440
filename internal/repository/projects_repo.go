package repository

import (
	"context"

	"renova-rooms/internal/domain"
)

// ProjectsRepository 项目存储网关
type ProjectsRepository interface {
	// FindProject 按 project_id 查询，未命中返回 (nil, nil)
	FindProject(ctx context.Context, projectID string) (*domain.Project, error)
	// CreateProject 创建项目，project_id 由存储侧分配并返回
	CreateProject(ctx context.Context, project *domain.Project) (string, error)
	// SaveProject 整体覆盖保存（含 rooms 引用列表）
	SaveProject(ctx context.Context, project *domain.Project) error
}
