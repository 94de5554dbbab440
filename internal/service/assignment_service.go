package service

import (
	"context"

	"renova-rooms/internal/domain"
	"renova-rooms/internal/repository"
	"renova-rooms/internal/store"

	"go.uber.org/zap"
)

// AssignmentService item 与 teammate / artisan 的指派协调器
//
// teammate 关系是反规范化的双向引用（item.teammates <-> teammate.items），
// 存储层没有跨实体事务：每次成功路径固定先写房间（owner of truth）再写队友，
// 两写之间崩溃会留下单边引用。RepairTeammateRefs 提供以房间为准的修复扫描。
type AssignmentService interface {
	AssignTeammate(ctx context.Context, req AssignTeammateRequest) (*RoomResponse, error)
	UnassignTeammate(ctx context.Context, req UnassignTeammateRequest) (*RoomResponse, error)
	// RemoveItem 删除 item 前先逐个解除所有队友镜像引用，避免悬挂
	RemoveItem(ctx context.Context, req RemoveItemRequest) (*RoomResponse, error)

	AssignArtisan(ctx context.Context, req AssignArtisanRequest) (*RoomResponse, error)
	UnassignArtisan(ctx context.Context, req UnassignArtisanRequest) (*RoomResponse, error)

	// RepairTeammateRefs 以房间 items 为准修复对称关系
	RepairTeammateRefs(ctx context.Context, req RepairTeammateRefsRequest) (*RepairTeammateRefsResponse, error)
}

type assignmentService struct {
	rooms     repository.RoomsRepository
	teammates repository.TeammatesRepository
	artisans  repository.ArtisansRepository
	cache     *store.RoomListCache // 可为 nil
	logger    *zap.Logger
}

// NewAssignmentService 创建 AssignmentService 实例
func NewAssignmentService(
	rooms repository.RoomsRepository,
	teammates repository.TeammatesRepository,
	artisans repository.ArtisansRepository,
	cache *store.RoomListCache,
	logger *zap.Logger,
) AssignmentService {
	return &assignmentService{
		rooms:     rooms,
		teammates: teammates,
		artisans:  artisans,
		cache:     cache,
		logger:    logger,
	}
}

type AssignTeammateRequest struct {
	RoomID     string
	ItemID     string
	TeammateID string
}

type UnassignTeammateRequest struct {
	RoomID     string
	ItemID     string
	TeammateID string
}

type RemoveItemRequest struct {
	RoomID string
	ItemID string
}

type AssignArtisanRequest struct {
	RoomID    string
	ItemID    string
	ArtisanID string
}

type UnassignArtisanRequest struct {
	RoomID string
	ItemID string
}

type RepairTeammateRefsRequest struct {
	RoomID string
}

type RepairTeammateRefsResponse struct {
	// Repaired 本次被修复（补齐或摘除镜像引用）的 teammate_id 列表
	Repaired []string `json:"repaired"`
}

// ============================================
// teammate 对称指派
// ============================================

// AssignTeammate 两侧各自独立查重（OR）：任何一侧已有引用即拒绝。
// 单边脏状态也会挡住重复指派——这里只是防御性检查，不代表两侧一定一致。
// 成功路径：两侧追加引用，先存房间再存队友；两写非原子，中间失败留下单边引用（已知缺口）。
func (s *assignmentService) AssignTeammate(ctx context.Context, req AssignTeammateRequest) (*RoomResponse, error) {
	room, idx, err := s.findRoomItem(ctx, req.RoomID, req.ItemID)
	if err != nil {
		return nil, err
	}
	teammate, err := s.findTeammate(ctx, req.TeammateID)
	if err != nil {
		return nil, err
	}

	item := &room.Items[idx]
	if containsRef(item.Teammates, req.TeammateID) || teammate.HasItem(req.ItemID) {
		return nil, &domain.ConflictError{Message: "item already assigned to teammate"}
	}

	item.Teammates = append(item.Teammates, req.TeammateID)
	teammate.Items = append(teammate.Items, req.ItemID)

	if err := s.rooms.SaveRoom(ctx, room); err != nil {
		return nil, &domain.StorageError{Op: "save room", Err: err}
	}
	if err := s.teammates.SaveTeammate(ctx, teammate); err != nil {
		// 房间已落库：此时 item 侧有引用而队友侧没有，交由 RepairTeammateRefs 收敛
		return nil, &domain.StorageError{Op: "save teammate", Err: err}
	}
	s.invalidate(ctx, room.ProjectID)
	s.logger.Info("teammate assigned",
		zap.String("room_id", req.RoomID),
		zap.String("item_id", req.ItemID),
		zap.String("teammate_id", req.TeammateID))
	return &RoomResponse{Room: room}, nil
}

// UnassignTeammate 镜像操作：任何一侧缺引用（OR）都按"未指派"拒绝，
// 单边脏状态因此无法经由本操作清理，需走 RepairTeammateRefs。
func (s *assignmentService) UnassignTeammate(ctx context.Context, req UnassignTeammateRequest) (*RoomResponse, error) {
	room, idx, err := s.findRoomItem(ctx, req.RoomID, req.ItemID)
	if err != nil {
		return nil, err
	}
	teammate, err := s.findTeammate(ctx, req.TeammateID)
	if err != nil {
		return nil, err
	}

	item := &room.Items[idx]
	if !containsRef(item.Teammates, req.TeammateID) || !teammate.HasItem(req.ItemID) {
		return nil, &domain.ConflictError{Message: "item is not assigned to teammate"}
	}

	item.Teammates = removeRef(item.Teammates, req.TeammateID)
	teammate.RemoveItemRef(req.ItemID)

	if err := s.rooms.SaveRoom(ctx, room); err != nil {
		return nil, &domain.StorageError{Op: "save room", Err: err}
	}
	if err := s.teammates.SaveTeammate(ctx, teammate); err != nil {
		return nil, &domain.StorageError{Op: "save teammate", Err: err}
	}
	s.invalidate(ctx, room.ProjectID)
	return &RoomResponse{Room: room}, nil
}

// RemoveItem 先把 item 从每个被引用队友的 items 里摘掉并逐个落库，
// 全部成功后才从房间里删 item 并保存房间。
// 中途某个队友加载/保存失败即中止：item 仍留在房间里，已处理过的队友
// 已经摘除引用（部分失败不回滚，已知缺口）。
func (s *assignmentService) RemoveItem(ctx context.Context, req RemoveItemRequest) (*RoomResponse, error) {
	room, idx, err := s.findRoomItem(ctx, req.RoomID, req.ItemID)
	if err != nil {
		return nil, err
	}
	item := room.Items[idx]

	for _, teammateID := range item.Teammates {
		teammate, err := s.teammates.FindTeammate(ctx, teammateID)
		if err != nil {
			return nil, &domain.StorageError{Op: "find teammate", Err: err}
		}
		if teammate == nil {
			return nil, &domain.NotFoundError{Entity: "teammate", ID: teammateID}
		}
		teammate.RemoveItemRef(req.ItemID)
		if err := s.teammates.SaveTeammate(ctx, teammate); err != nil {
			return nil, &domain.StorageError{Op: "save teammate", Err: err}
		}
	}

	room.Items = append(room.Items[:idx], room.Items[idx+1:]...)
	if err := s.rooms.SaveRoom(ctx, room); err != nil {
		return nil, &domain.StorageError{Op: "save room", Err: err}
	}
	s.invalidate(ctx, room.ProjectID)
	s.logger.Info("item removed",
		zap.String("room_id", req.RoomID), zap.String("item_id", req.ItemID))
	return &RoomResponse{Room: room}, nil
}

// ============================================
// artisan 单主指派
// ============================================

// AssignArtisan 冲突检查只拦截"重复指派同一个 artisan"；
// 不经 Unassign 直接换成另一个 artisan 是放行的（沿用既有行为，测试里有显式覆盖）。
func (s *assignmentService) AssignArtisan(ctx context.Context, req AssignArtisanRequest) (*RoomResponse, error) {
	room, idx, err := s.findRoomItem(ctx, req.RoomID, req.ItemID)
	if err != nil {
		return nil, err
	}
	artisan, err := s.artisans.FindArtisan(ctx, req.ArtisanID)
	if err != nil {
		return nil, &domain.StorageError{Op: "find artisan", Err: err}
	}
	if artisan == nil {
		return nil, &domain.NotFoundError{Entity: "artisan", ID: req.ArtisanID}
	}

	item := &room.Items[idx]
	if item.ArtisanID != nil && *item.ArtisanID == req.ArtisanID {
		return nil, &domain.ConflictError{Message: "item already assigned to artisan"}
	}

	item.ArtisanID = &req.ArtisanID
	if err := s.rooms.SaveRoom(ctx, room); err != nil {
		return nil, &domain.StorageError{Op: "save room", Err: err}
	}
	s.invalidate(ctx, room.ProjectID)
	return &RoomResponse{Room: room}, nil
}

func (s *assignmentService) UnassignArtisan(ctx context.Context, req UnassignArtisanRequest) (*RoomResponse, error) {
	room, idx, err := s.findRoomItem(ctx, req.RoomID, req.ItemID)
	if err != nil {
		return nil, err
	}

	item := &room.Items[idx]
	if item.ArtisanID == nil {
		return nil, &domain.ConflictError{Message: "item already not assigned to any artisan"}
	}

	item.ArtisanID = nil
	if err := s.rooms.SaveRoom(ctx, room); err != nil {
		return nil, &domain.StorageError{Op: "save room", Err: err}
	}
	s.invalidate(ctx, room.ProjectID)
	return &RoomResponse{Room: room}, nil
}

// ============================================
// 修复扫描
// ============================================

// RepairTeammateRefs 以房间为准收敛对称关系：
// - item 引用了队友而队友侧缺镜像 -> 补齐
// - 队友引用了本房间的 item 而 item 侧无引用 -> 摘除
// 其他房间的 item 引用不动。修复本身也是逐实体落库，非原子。
func (s *assignmentService) RepairTeammateRefs(ctx context.Context, req RepairTeammateRefsRequest) (*RepairTeammateRefsResponse, error) {
	room, err := s.findRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}

	// item_id -> 该 item 声明的队友集合
	claims := map[string]map[string]bool{}
	for _, item := range room.Items {
		set := map[string]bool{}
		for _, id := range item.Teammates {
			set[id] = true
		}
		claims[item.ItemID] = set
	}

	all, err := s.teammates.ListTeammates(ctx)
	if err != nil {
		return nil, &domain.StorageError{Op: "list teammates", Err: err}
	}

	repaired := []string{}
	for _, teammate := range all {
		changed := false

		// 摘除：队友引用了本房间的 item，但 item 侧没有这个队友
		kept := teammate.Items[:0]
		for _, itemID := range teammate.Items {
			set, ours := claims[itemID]
			if ours && !set[teammate.TeammateID] {
				changed = true
				continue
			}
			kept = append(kept, itemID)
		}
		teammate.Items = kept

		// 补齐：item 声明了该队友，但队友侧缺镜像
		for itemID, set := range claims {
			if set[teammate.TeammateID] && !teammate.HasItem(itemID) {
				teammate.Items = append(teammate.Items, itemID)
				changed = true
			}
		}

		if changed {
			if err := s.teammates.SaveTeammate(ctx, teammate); err != nil {
				return nil, &domain.StorageError{Op: "save teammate", Err: err}
			}
			repaired = append(repaired, teammate.TeammateID)
		}
	}

	if len(repaired) > 0 {
		s.logger.Info("teammate refs repaired",
			zap.String("room_id", req.RoomID), zap.Strings("teammates", repaired))
	}
	return &RepairTeammateRefsResponse{Repaired: repaired}, nil
}

// ============================================
// 内部辅助
// ============================================

func (s *assignmentService) findRoom(ctx context.Context, roomID string) (*domain.Room, error) {
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

func (s *assignmentService) findRoomItem(ctx context.Context, roomID, itemID string) (*domain.Room, int, error) {
	room, err := s.findRoom(ctx, roomID)
	if err != nil {
		return nil, -1, err
	}
	if itemID == "" {
		return nil, -1, domain.NewValidationError("item_id is required")
	}
	idx := room.ItemIndexByID(itemID)
	if idx < 0 {
		return nil, -1, &domain.NotFoundError{Entity: "item", ID: itemID}
	}
	return room, idx, nil
}

func (s *assignmentService) findTeammate(ctx context.Context, teammateID string) (*domain.Teammate, error) {
	if teammateID == "" {
		return nil, domain.NewValidationError("teammate_id is required")
	}
	teammate, err := s.teammates.FindTeammate(ctx, teammateID)
	if err != nil {
		return nil, &domain.StorageError{Op: "find teammate", Err: err}
	}
	if teammate == nil {
		return nil, &domain.NotFoundError{Entity: "teammate", ID: teammateID}
	}
	return teammate, nil
}

func (s *assignmentService) invalidate(ctx context.Context, projectID string) {
	if s.cache != nil && projectID != "" {
		s.cache.Invalidate(ctx, projectID)
	}
}

func containsRef(refs []string, id string) bool {
	for _, r := range refs {
		if r == id {
			return true
		}
	}
	return false
}

func removeRef(refs []string, id string) []string {
	out := refs[:0]
	for _, r := range refs {
		if r != id {
			out = append(out, r)
		}
	}
	return out
}
