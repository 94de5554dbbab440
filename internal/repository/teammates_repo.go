package repository

import (
	"context"

	"renova-rooms/internal/domain"
)

// TeammatesRepository 队友存储网关
type TeammatesRepository interface {
	// FindTeammate 按 teammate_id 查询，未命中返回 (nil, nil)
	FindTeammate(ctx context.Context, teammateID string) (*domain.Teammate, error)
	// ListTeammates 列出全部队友（修复扫描用）
	ListTeammates(ctx context.Context) ([]*domain.Teammate, error)
	// CreateTeammate 创建队友，teammate_id 由存储侧分配并返回
	CreateTeammate(ctx context.Context, teammate *domain.Teammate) (string, error)
	// SaveTeammate 整体覆盖保存（含 items 镜像列表）
	SaveTeammate(ctx context.Context, teammate *domain.Teammate) error
}
