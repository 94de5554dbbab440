package domain

// Artisan 工匠（外部承包商）领域模型（对应 artisans 表）
// 单向关系：Item 持有 artisan_id，Artisan 侧不维护 item 列表
type Artisan struct {
	ArtisanID   string `json:"artisan_id" db:"artisan_id"`
	ArtisanName string `json:"artisan_name" db:"artisan_name"`
	Trade       string `json:"trade" db:"trade"` // 工种，如 "plumbing"
	Phone       string `json:"phone" db:"phone"`
	Email       string `json:"email" db:"email"`
}
