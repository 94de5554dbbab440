package repository

import (
	"context"

	"renova-rooms/internal/domain"
)

// RoomsRepository 房间存储网关
// 未命中一律返回 (nil, nil)，由 service 层映射为 NotFoundError；
// 不提供跨实体事务，多写操作的部分失败语义由 service 层负责说明
type RoomsRepository interface {
	// FindRoom 按 room_id 查询，未命中返回 (nil, nil)
	FindRoom(ctx context.Context, roomID string) (*domain.Room, error)
	// FindRoomsByProject 查询项目下全部房间（创建顺序）
	FindRoomsByProject(ctx context.Context, projectID string) ([]*domain.Room, error)
	// CreateRoom 创建房间，room_id 由存储侧分配并返回
	CreateRoom(ctx context.Context, room *domain.Room) (string, error)
	// SaveRoom 整体覆盖保存（含 items）
	SaveRoom(ctx context.Context, room *domain.Room) error
	// DeleteRoom 删除并返回被删实体，未命中返回 (nil, nil)
	DeleteRoom(ctx context.Context, roomID string) (*domain.Room, error)
}
