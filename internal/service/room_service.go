package service

import (
	"context"
	"sort"

	"renova-rooms/internal/domain"
	"renova-rooms/internal/idgen"
	"renova-rooms/internal/repository"
	"renova-rooms/internal/store"

	"go.uber.org/zap"
)

// RoomService 房间管理服务接口
// Reconcile 与 EditRoom 是一致性引擎的核心（见各方法注释的部分失败语义）
type RoomService interface {
	CreateRoom(ctx context.Context, req CreateRoomRequest) (*RoomResponse, error)
	GetRoom(ctx context.Context, req GetRoomRequest) (*RoomResponse, error)
	ListRoomsByProject(ctx context.Context, req ListRoomsByProjectRequest) (*ListRoomsResponse, error)
	RenameRoom(ctx context.Context, req RenameRoomRequest) (*RoomResponse, error)
	SetRoomSurface(ctx context.Context, req SetRoomSurfaceRequest) (*RoomResponse, error)
	SetRoomComment(ctx context.Context, req SetRoomCommentRequest) (*RoomResponse, error)
	DeleteRoom(ctx context.Context, req DeleteRoomRequest) (*RoomResponse, error)

	// ReconcileRooms 按 desired per-type 数量对齐项目的房间集合
	ReconcileRooms(ctx context.Context, req ReconcileRoomsRequest) (*ListRoomsResponse, error)
	// EditRoom 对单个房间应用批量补丁（基础字段 + items 增/删/改）
	EditRoom(ctx context.Context, req EditRoomRequest) (*RoomResponse, error)
}

type roomService struct {
	rooms    repository.RoomsRepository
	projects repository.ProjectsRepository
	ids      idgen.Generator
	cache    *store.RoomListCache // 可为 nil（禁用缓存）
	logger   *zap.Logger
}

// NewRoomService 创建 RoomService 实例
func NewRoomService(
	rooms repository.RoomsRepository,
	projects repository.ProjectsRepository,
	ids idgen.Generator,
	cache *store.RoomListCache,
	logger *zap.Logger,
) RoomService {
	return &roomService{
		rooms:    rooms,
		projects: projects,
		ids:      ids,
		cache:    cache,
		logger:   logger,
	}
}

// ============================================
// 请求/响应结构
// ============================================

type CreateRoomRequest struct {
	RoomType string // 必填
}

type GetRoomRequest struct {
	RoomID string
}

type ListRoomsByProjectRequest struct {
	ProjectID string
}

type RenameRoomRequest struct {
	RoomID string
	Name   string
}

type SetRoomSurfaceRequest struct {
	RoomID  string
	Surface float64
}

type SetRoomCommentRequest struct {
	RoomID  string
	Comment string
}

type DeleteRoomRequest struct {
	RoomID string
}

type ReconcileRoomsRequest struct {
	ProjectID string
	Counts    map[string]int // room_type -> desired count；未出现的类型保持不动
}

// ItemInput itemsToAdd / itemsToModify 的条目
type ItemInput struct {
	Field      string `json:"field"`
	Difficulty int    `json:"difficulty"`
}

type EditRoomRequest struct {
	RoomID string
	// 基础字段：零值视为"不更新"（沿用既有语义，surface=0 无法显式写入）
	Name    string
	Surface float64
	Comment string

	ItemsToAdd    []ItemInput
	ItemsToRemove []string // field 列表
	ItemsToModify []ItemInput
}

type RoomResponse struct {
	Room *domain.Room `json:"room"`
}

type ListRoomsResponse struct {
	Rooms []*domain.Room `json:"rooms"`
}

// ============================================
// 基础 CRUD（原 newRoom / getRoom / getRoomsByProject / deleteRoom 等路由）
// ============================================

func (s *roomService) CreateRoom(ctx context.Context, req CreateRoomRequest) (*RoomResponse, error) {
	if req.RoomType == "" {
		return nil, domain.NewValidationError("room_type is required")
	}
	room := &domain.Room{RoomType: req.RoomType, Items: []domain.Item{}}
	id, err := s.rooms.CreateRoom(ctx, room)
	if err != nil {
		return nil, &domain.StorageError{Op: "create room", Err: err}
	}
	room.RoomID = id
	s.logger.Info("room created", zap.String("room_id", id), zap.String("room_type", req.RoomType))
	return &RoomResponse{Room: room}, nil
}

func (s *roomService) GetRoom(ctx context.Context, req GetRoomRequest) (*RoomResponse, error) {
	room, err := s.findRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	return &RoomResponse{Room: room}, nil
}

func (s *roomService) ListRoomsByProject(ctx context.Context, req ListRoomsByProjectRequest) (*ListRoomsResponse, error) {
	if req.ProjectID == "" {
		return nil, domain.NewValidationError("project_id is required")
	}
	if s.cache != nil {
		if rooms, err := s.cache.Get(ctx, req.ProjectID); err == nil {
			return &ListRoomsResponse{Rooms: rooms}, nil
		}
	}
	rooms, err := s.rooms.FindRoomsByProject(ctx, req.ProjectID)
	if err != nil {
		return nil, &domain.StorageError{Op: "list rooms", Err: err}
	}
	if s.cache != nil {
		s.cache.Set(ctx, req.ProjectID, rooms)
	}
	return &ListRoomsResponse{Rooms: rooms}, nil
}

func (s *roomService) RenameRoom(ctx context.Context, req RenameRoomRequest) (*RoomResponse, error) {
	if req.Name == "" {
		return nil, domain.NewValidationError("name is required")
	}
	return s.updateRoom(ctx, req.RoomID, func(room *domain.Room) {
		room.RoomName = req.Name
	})
}

func (s *roomService) SetRoomSurface(ctx context.Context, req SetRoomSurfaceRequest) (*RoomResponse, error) {
	return s.updateRoom(ctx, req.RoomID, func(room *domain.Room) {
		room.Surface = req.Surface
	})
}

func (s *roomService) SetRoomComment(ctx context.Context, req SetRoomCommentRequest) (*RoomResponse, error) {
	return s.updateRoom(ctx, req.RoomID, func(room *domain.Room) {
		room.Comment = req.Comment
	})
}

// DeleteRoom 删除房间并同步从所属项目的 rooms 列表摘除引用
// 两次独立写（先删房间、再存项目），中间失败会留下悬挂引用（与整体无事务模型一致）
func (s *roomService) DeleteRoom(ctx context.Context, req DeleteRoomRequest) (*RoomResponse, error) {
	if req.RoomID == "" {
		return nil, domain.NewValidationError("room_id is required")
	}
	room, err := s.rooms.DeleteRoom(ctx, req.RoomID)
	if err != nil {
		return nil, &domain.StorageError{Op: "delete room", Err: err}
	}
	if room == nil {
		return nil, &domain.NotFoundError{Entity: "room", ID: req.RoomID}
	}
	if room.ProjectID != "" {
		project, err := s.projects.FindProject(ctx, room.ProjectID)
		if err != nil {
			return nil, &domain.StorageError{Op: "find project", Err: err}
		}
		if project != nil {
			project.RemoveRoomRef(room.RoomID)
			if err := s.projects.SaveProject(ctx, project); err != nil {
				return nil, &domain.StorageError{Op: "save project", Err: err}
			}
		}
		s.invalidate(ctx, room.ProjectID)
	}
	s.logger.Info("room deleted", zap.String("room_id", req.RoomID))
	return &RoomResponse{Room: room}, nil
}

// ============================================
// Reconciler
// ============================================

// ReconcileRooms 对齐项目房间数量：
// - 先对整个 desired map 做校验（负数 / 阁楼上限 / 总数上限），校验不过不做任何变更
// - 每个类型独立加减：desired > current 新建差额，desired < current 从该类型现有列表
//   头部起删除差额（固定策略，不挑"最优"房间）
// - desired map 未提及的类型保持不动
// - 项目只在循环结束后保存一次；循环中途存储失败直接中止，已完成的建删不回滚
func (s *roomService) ReconcileRooms(ctx context.Context, req ReconcileRoomsRequest) (*ListRoomsResponse, error) {
	if req.ProjectID == "" {
		return nil, domain.NewValidationError("project_id is required")
	}

	total := 0
	for roomType, count := range req.Counts {
		if count < 0 {
			return nil, domain.NewValidationError("negative count for %s", roomType)
		}
		if roomType == domain.AtticRoomType && count > 1 {
			return nil, domain.NewValidationError("only one %s is allowed", domain.AtticRoomType)
		}
		total += count
	}
	if total > domain.MaxRoomsPerProject {
		return nil, domain.NewValidationError("a maximum of %d rooms is allowed", domain.MaxRoomsPerProject)
	}

	project, err := s.projects.FindProject(ctx, req.ProjectID)
	if err != nil {
		return nil, &domain.StorageError{Op: "find project", Err: err}
	}
	if project == nil {
		return nil, &domain.NotFoundError{Entity: "project", ID: req.ProjectID}
	}

	existing, err := s.rooms.FindRoomsByProject(ctx, req.ProjectID)
	if err != nil {
		return nil, &domain.StorageError{Op: "list rooms", Err: err}
	}
	byType := map[string][]*domain.Room{}
	for _, room := range existing {
		byType[room.RoomType] = append(byType[room.RoomType], room)
	}

	// 按类型名排序遍历，保证日志与失败点可复现（map 随机序）
	types := make([]string, 0, len(req.Counts))
	for roomType := range req.Counts {
		types = append(types, roomType)
	}
	sort.Strings(types)

	for _, roomType := range types {
		desired := req.Counts[roomType]
		current := byType[roomType]

		switch {
		case desired > len(current):
			for i := 0; i < desired-len(current); i++ {
				room := &domain.Room{
					RoomType:  roomType,
					ProjectID: req.ProjectID,
					Items:     []domain.Item{},
				}
				id, err := s.rooms.CreateRoom(ctx, room)
				if err != nil {
					return nil, &domain.StorageError{Op: "create room", Err: err}
				}
				project.Rooms = append(project.Rooms, id)
			}
		case desired < len(current):
			// 从头部删（既有策略，保持稳定）
			for i := 0; i < len(current)-desired; i++ {
				toRemove := current[i]
				if _, err := s.rooms.DeleteRoom(ctx, toRemove.RoomID); err != nil {
					return nil, &domain.StorageError{Op: "delete room", Err: err}
				}
				project.RemoveRoomRef(toRemove.RoomID)
			}
		}
	}

	if err := s.projects.SaveProject(ctx, project); err != nil {
		return nil, &domain.StorageError{Op: "save project", Err: err}
	}
	s.invalidate(ctx, req.ProjectID)

	// 重新从存储读取，避免循环里的内存态走样
	updated, err := s.rooms.FindRoomsByProject(ctx, req.ProjectID)
	if err != nil {
		return nil, &domain.StorageError{Op: "list rooms", Err: err}
	}
	s.logger.Info("rooms reconciled",
		zap.String("project_id", req.ProjectID),
		zap.Int("room_count", len(updated)))
	return &ListRoomsResponse{Rooms: updated}, nil
}

// ============================================
// Item Editor
// ============================================

// EditRoom 应用顺序：基础字段 -> 新增 -> 删除 -> 修改，最后统一保存一次
// - 新增：field 已存在则静默跳过；新 item diy=true、无 artisan、无 teammates
// - 删除：按 field 删第一个匹配；不存在静默忽略
// - 修改：按 field 覆盖 difficulty；不存在静默忽略
func (s *roomService) EditRoom(ctx context.Context, req EditRoomRequest) (*RoomResponse, error) {
	room, err := s.findRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		room.RoomName = req.Name
	}
	if req.Surface != 0 {
		room.Surface = req.Surface
	}
	if req.Comment != "" {
		room.Comment = req.Comment
	}

	for _, in := range req.ItemsToAdd {
		if room.ItemIndexByField(in.Field) >= 0 {
			s.logger.Debug("item field already exists, skipped",
				zap.String("room_id", room.RoomID), zap.String("field", in.Field))
			continue
		}
		room.Items = append(room.Items, domain.Item{
			ItemID:     s.ids.NewID(),
			Field:      in.Field,
			Difficulty: in.Difficulty,
			DIY:        true,
			ArtisanID:  nil,
			Teammates:  []string{},
		})
	}

	for _, field := range req.ItemsToRemove {
		if idx := room.ItemIndexByField(field); idx >= 0 {
			room.Items = append(room.Items[:idx], room.Items[idx+1:]...)
		}
	}

	for _, in := range req.ItemsToModify {
		if idx := room.ItemIndexByField(in.Field); idx >= 0 {
			room.Items[idx].Difficulty = in.Difficulty
		}
	}

	if err := s.rooms.SaveRoom(ctx, room); err != nil {
		return nil, &domain.StorageError{Op: "save room", Err: err}
	}
	s.invalidate(ctx, room.ProjectID)
	return &RoomResponse{Room: room}, nil
}

// ============================================
// 内部辅助
// ============================================

func (s *roomService) findRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	if roomID == "" {
		return nil, domain.NewValidationError("room_id is required")
	}
	room, err := s.rooms.FindRoom(ctx, roomID)
	if err != nil {
		return nil, &domain.StorageError{Op: "find room", Err: err}
	}
	if room == nil {
		return nil, &domain.NotFoundError{Entity: "room", ID: roomID}
	}
	return room, nil
}

func (s *roomService) updateRoom(ctx context.Context, roomID string, mutate func(*domain.Room)) (*RoomResponse, error) {
	room, err := s.findRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	mutate(room)
	if err := s.rooms.SaveRoom(ctx, room); err != nil {
		return nil, &domain.StorageError{Op: "save room", Err: err}
	}
	s.invalidate(ctx, room.ProjectID)
	return &RoomResponse{Room: room}, nil
}

func (s *roomService) invalidate(ctx context.Context, projectID string) {
	if s.cache != nil && projectID != "" {
		s.cache.Invalidate(ctx, projectID)
	}
}
