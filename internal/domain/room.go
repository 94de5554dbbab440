package domain

// 房间类型常量
const (
	// AtticRoomType 阁楼类型（每个项目最多 1 间）
	AtticRoomType = "Grenier/Combles"
	// MaxRoomsPerProject 每个项目房间总数上限
	MaxRoomsPerProject = 18
)

// Room 房间领域模型（对应 rooms 表）
// items 以 JSONB 内嵌存储，不单独建表
type Room struct {
	RoomID    string  `json:"room_id" db:"room_id"`
	RoomType  string  `json:"room_type" db:"room_type"`
	RoomName  string  `json:"room_name" db:"room_name"`
	Surface   float64 `json:"surface" db:"surface"`
	Comment   string  `json:"comment" db:"comment"`
	ProjectID string  `json:"project_id" db:"project_id"` // 可为空：Reconciler 创建时填入
	Items     []Item  `json:"items" db:"items"`           // JSONB
}

// Item 房间内的工作项（内嵌于 Room，无独立表）
// field 在同一房间内唯一；item_id 全局唯一（由 idgen 生成）
type Item struct {
	ItemID     string   `json:"item_id"`
	Field      string   `json:"field"`
	Difficulty int      `json:"difficulty"`
	DIY        bool     `json:"diy"` // 创建时恒为 true，指派 artisan 后不翻转（沿用既有行为）
	ArtisanID  *string  `json:"artisan_id"`
	Teammates  []string `json:"teammates"`
}

// ItemIndexByID 按 item_id 查找下标，未找到返回 -1
func (r *Room) ItemIndexByID(itemID string) int {
	for i := range r.Items {
		if r.Items[i].ItemID == itemID {
			return i
		}
	}
	return -1
}

// ItemIndexByField 按 field 查找下标，未找到返回 -1
func (r *Room) ItemIndexByField(field string) int {
	for i := range r.Items {
		if r.Items[i].Field == field {
			return i
		}
	}
	return -1
}
