package idgen

import "github.com/google/uuid"

// Generator item 标识符生成器
// 作为能力注入 service 层，唯一契约是全局无碰撞
type Generator interface {
	NewID() string
}

// UUIDGenerator 基于 uuid v4 的默认实现
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator { return &UUIDGenerator{} }

func (g *UUIDGenerator) NewID() string { return uuid.NewString() }
