package repository

import (
	"context"
	"sort"
	"sync"

	"renova-rooms/internal/domain"

	"github.com/google/uuid"
)

// MemoryRepo 内存实现：用于 DB 未就绪时的联测与单元测试
// - IDs 使用 uuid
// - 读写均做深拷贝，避免调用方与仓库内部状态互相污染
// - 与 Postgres 实现一样不提供跨实体事务
type MemoryRepo struct {
	mu sync.RWMutex

	projects  map[string]*domain.Project
	rooms     map[string]*domain.Room
	teammates map[string]*domain.Teammate
	artisans  map[string]*domain.Artisan

	// roomOrder 记录创建顺序，FindRoomsByProject 按此排序
	roomOrder []string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		projects:  map[string]*domain.Project{},
		rooms:     map[string]*domain.Room{},
		teammates: map[string]*domain.Teammate{},
		artisans:  map[string]*domain.Artisan{},
	}
}

// ---- rooms ----

func (r *MemoryRepo) FindRoom(_ context.Context, roomID string) (*domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return nil, nil
	}
	return cloneRoom(room), nil
}

func (r *MemoryRepo) FindRoomsByProject(_ context.Context, projectID string) ([]*domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*domain.Room{}
	for _, id := range r.roomOrder {
		room, ok := r.rooms[id]
		if ok && room.ProjectID == projectID {
			out = append(out, cloneRoom(room))
		}
	}
	return out, nil
}

func (r *MemoryRepo) CreateRoom(_ context.Context, room *domain.Room) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := cloneRoom(room)
	c.RoomID = uuid.NewString()
	r.rooms[c.RoomID] = c
	r.roomOrder = append(r.roomOrder, c.RoomID)
	return c.RoomID, nil
}

func (r *MemoryRepo) SaveRoom(_ context.Context, room *domain.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[room.RoomID]; !ok {
		r.roomOrder = append(r.roomOrder, room.RoomID)
	}
	r.rooms[room.RoomID] = cloneRoom(room)
	return nil
}

func (r *MemoryRepo) DeleteRoom(_ context.Context, roomID string) (*domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return nil, nil
	}
	delete(r.rooms, roomID)
	order := r.roomOrder[:0]
	for _, id := range r.roomOrder {
		if id != roomID {
			order = append(order, id)
		}
	}
	r.roomOrder = order
	return room, nil
}

// ---- projects ----

func (r *MemoryRepo) FindProject(_ context.Context, projectID string) (*domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.projects[projectID]
	if !ok {
		return nil, nil
	}
	return cloneProject(p), nil
}

func (r *MemoryRepo) CreateProject(_ context.Context, project *domain.Project) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := cloneProject(project)
	c.ProjectID = uuid.NewString()
	r.projects[c.ProjectID] = c
	return c.ProjectID, nil
}

func (r *MemoryRepo) SaveProject(_ context.Context, project *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.projects[project.ProjectID] = cloneProject(project)
	return nil
}

// ---- teammates ----

func (r *MemoryRepo) FindTeammate(_ context.Context, teammateID string) (*domain.Teammate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.teammates[teammateID]
	if !ok {
		return nil, nil
	}
	return cloneTeammate(t), nil
}

func (r *MemoryRepo) ListTeammates(_ context.Context) ([]*domain.Teammate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*domain.Teammate{}
	for _, t := range r.teammates {
		out = append(out, cloneTeammate(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeammateID < out[j].TeammateID })
	return out, nil
}

func (r *MemoryRepo) CreateTeammate(_ context.Context, teammate *domain.Teammate) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := cloneTeammate(teammate)
	c.TeammateID = uuid.NewString()
	r.teammates[c.TeammateID] = c
	return c.TeammateID, nil
}

func (r *MemoryRepo) SaveTeammate(_ context.Context, teammate *domain.Teammate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teammates[teammate.TeammateID] = cloneTeammate(teammate)
	return nil
}

// ---- artisans ----

func (r *MemoryRepo) FindArtisan(_ context.Context, artisanID string) (*domain.Artisan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.artisans[artisanID]
	if !ok {
		return nil, nil
	}
	c := *a
	return &c, nil
}

func (r *MemoryRepo) ListArtisans(_ context.Context) ([]*domain.Artisan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*domain.Artisan{}
	for _, a := range r.artisans {
		c := *a
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ArtisanName < out[j].ArtisanName })
	return out, nil
}

func (r *MemoryRepo) CreateArtisan(_ context.Context, artisan *domain.Artisan) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *artisan
	c.ArtisanID = uuid.NewString()
	r.artisans[c.ArtisanID] = &c
	return c.ArtisanID, nil
}

func (r *MemoryRepo) SaveArtisan(_ context.Context, artisan *domain.Artisan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *artisan
	r.artisans[c.ArtisanID] = &c
	return nil
}

// ---- clone helpers ----

func cloneRoom(room *domain.Room) *domain.Room {
	c := *room
	c.Items = make([]domain.Item, len(room.Items))
	for i, it := range room.Items {
		ci := it
		if it.ArtisanID != nil {
			v := *it.ArtisanID
			ci.ArtisanID = &v
		}
		ci.Teammates = append([]string{}, it.Teammates...)
		c.Items[i] = ci
	}
	return &c
}

func cloneProject(p *domain.Project) *domain.Project {
	c := *p
	c.Rooms = append([]string{}, p.Rooms...)
	return &c
}

func cloneTeammate(t *domain.Teammate) *domain.Teammate {
	c := *t
	c.Items = append([]string{}, t.Items...)
	return &c
}
