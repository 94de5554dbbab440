package repository

import (
	"context"

	"renova-rooms/internal/domain"
)

// ArtisansRepository 工匠存储网关
// Artisan 侧不维护 item 列表，仅做存在性校验与目录导入
type ArtisansRepository interface {
	// FindArtisan 按 artisan_id 查询，未命中返回 (nil, nil)
	FindArtisan(ctx context.Context, artisanID string) (*domain.Artisan, error)
	// ListArtisans 列出全部工匠（按名称排序）
	ListArtisans(ctx context.Context) ([]*domain.Artisan, error)
	// CreateArtisan 创建工匠，artisan_id 由存储侧分配并返回
	CreateArtisan(ctx context.Context, artisan *domain.Artisan) (string, error)
	// SaveArtisan 整体覆盖保存
	SaveArtisan(ctx context.Context, artisan *domain.Artisan) error
}
