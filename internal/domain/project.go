package domain

// Project 项目领域模型（对应 projects 表）
// rooms 保存房间引用列表（JSONB，有序），与 Room.ProjectID 互为反向引用
type Project struct {
	ProjectID   string   `json:"project_id" db:"project_id"`
	ProjectName string   `json:"project_name" db:"project_name"`
	Rooms       []string `json:"rooms" db:"rooms"` // JSONB, room_id 列表
}

// RemoveRoomRef 从 rooms 列表移除一个 room_id（保持顺序）
func (p *Project) RemoveRoomRef(roomID string) {
	out := p.Rooms[:0]
	for _, id := range p.Rooms {
		if id != roomID {
			out = append(out, id)
		}
	}
	p.Rooms = out
}
