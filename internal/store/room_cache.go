package store

import (
	"context"
	"encoding/json"
	"time"

	"renova-rooms/internal/domain"

	"go.uber.org/zap"
)

const (
	roomListKeyPrefix = "renova:project:"
	roomListKeySuffix = ":rooms"
)

// RoomListCache 按项目缓存房间列表
// 只作读加速：任何写路径都先落库再失效缓存，缓存不参与一致性保证
type RoomListCache struct {
	kv     KV
	ttl    time.Duration
	logger *zap.Logger
}

func NewRoomListCache(kv KV, ttl time.Duration, logger *zap.Logger) *RoomListCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RoomListCache{kv: kv, ttl: ttl, logger: logger}
}

func roomListKey(projectID string) string {
	return roomListKeyPrefix + projectID + roomListKeySuffix
}

// Get 读取缓存，未命中返回 ErrMiss
func (c *RoomListCache) Get(ctx context.Context, projectID string) ([]*domain.Room, error) {
	raw, err := c.kv.Get(ctx, roomListKey(projectID))
	if err != nil {
		return nil, err
	}
	var rooms []*domain.Room
	if err := json.Unmarshal([]byte(raw), &rooms); err != nil {
		// 脏数据当未命中处理，同时清掉
		_ = c.kv.Del(ctx, roomListKey(projectID))
		return nil, ErrMiss
	}
	return rooms, nil
}

// Set 写入缓存，失败只记日志（缓存失败不影响主流程）
func (c *RoomListCache) Set(ctx context.Context, projectID string, rooms []*domain.Room) {
	b, err := json.Marshal(rooms)
	if err != nil {
		return
	}
	if err := c.kv.Set(ctx, roomListKey(projectID), string(b), c.ttl); err != nil {
		c.logger.Warn("room list cache set failed", zap.String("project_id", projectID), zap.Error(err))
	}
}

// Invalidate 失效某项目的缓存
func (c *RoomListCache) Invalidate(ctx context.Context, projectID string) {
	if projectID == "" {
		return
	}
	if err := c.kv.Del(ctx, roomListKey(projectID)); err != nil {
		c.logger.Warn("room list cache invalidate failed", zap.String("project_id", projectID), zap.Error(err))
	}
}
