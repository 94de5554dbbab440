package domain

// Teammate 队友领域模型（对应 teammates 表）
// items 是 Item.Teammates 的反规范化镜像，两边必须保持对称
type Teammate struct {
	TeammateID   string   `json:"teammate_id" db:"teammate_id"`
	TeammateName string   `json:"teammate_name" db:"teammate_name"`
	Items        []string `json:"items" db:"items"` // JSONB, item_id 列表
}

// HasItem 判断 items 中是否包含 itemID
func (t *Teammate) HasItem(itemID string) bool {
	for _, id := range t.Items {
		if id == itemID {
			return true
		}
	}
	return false
}

// RemoveItemRef 从 items 列表移除一个 item_id
func (t *Teammate) RemoveItemRef(itemID string) {
	out := t.Items[:0]
	for _, id := range t.Items {
		if id != itemID {
			out = append(out, id)
		}
	}
	t.Items = out
}
