package service

import (
	"context"
	"errors"
	"testing"

	"renova-rooms/internal/domain"
	"renova-rooms/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type assignmentFixture struct {
	svc        AssignmentService
	mem        *repository.MemoryRepo
	roomID     string
	itemID     string
	teammateID string
	artisanID  string
}

func setupAssignment(t *testing.T) *assignmentFixture {
	t.Helper()
	mem := repository.NewMemoryRepo()
	return setupAssignmentWith(t, mem, mem)
}

// setupAssignmentWith 允许替换 teammates 仓库以注入故障
func setupAssignmentWith(t *testing.T, mem *repository.MemoryRepo, teammates repository.TeammatesRepository) *assignmentFixture {
	t.Helper()
	ctx := context.Background()

	roomID, err := mem.CreateRoom(ctx, &domain.Room{
		RoomType: "Kitchen",
		Items: []domain.Item{
			{ItemID: "item-1", Field: "plumbing", Difficulty: 3, DIY: true, Teammates: []string{}},
		},
	})
	require.NoError(t, err)

	teammateID, err := mem.CreateTeammate(ctx, &domain.Teammate{TeammateName: "Luc", Items: []string{}})
	require.NoError(t, err)

	artisanID, err := mem.CreateArtisan(ctx, &domain.Artisan{ArtisanName: "Plomberie Dupont", Trade: "plumbing"})
	require.NoError(t, err)

	svc := NewAssignmentService(mem, teammates, mem, nil, zap.NewNop())
	return &assignmentFixture{
		svc: svc, mem: mem,
		roomID: roomID, itemID: "item-1",
		teammateID: teammateID, artisanID: artisanID,
	}
}

// ============================================
// teammate 指派
// ============================================

func TestAssignTeammate_Symmetric(t *testing.T) {
	f := setupAssignment(t)
	ctx := context.Background()

	resp, err := f.svc.AssignTeammate(ctx, AssignTeammateRequest{
		RoomID: f.roomID, ItemID: f.itemID, TeammateID: f.teammateID,
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Room.Items[0].Teammates, f.teammateID)

	// 两侧镜像均落库
	room, err := f.mem.FindRoom(ctx, f.roomID)
	require.NoError(t, err)
	assert.Contains(t, room.Items[0].Teammates, f.teammateID)

	teammate, err := f.mem.FindTeammate(ctx, f.teammateID)
	require.NoError(t, err)
	assert.Contains(t, teammate.Items, f.itemID)
}

func TestAssignTeammate_DuplicateConflict(t *testing.T) {
	f := setupAssignment(t)
	ctx := context.Background()

	_, err := f.svc.AssignTeammate(ctx, AssignTeammateRequest{
		RoomID: f.roomID, ItemID: f.itemID, TeammateID: f.teammateID,
	})
	require.NoError(t, err)

	_, err = f.svc.AssignTeammate(ctx, AssignTeammateRequest{
		RoomID: f.roomID, ItemID: f.itemID, TeammateID: f.teammateID,
	})
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
}

func TestAssignTeammate_OneSidedDirtyStateRejected(t *testing.T) {
	f := setupAssignment(t)
	ctx := context.Background()

	// 人为制造单边状态：只有队友侧有引用
	teammate, err := f.mem.FindTeammate(ctx, f.teammateID)
	require.NoError(t, err)
	teammate.Items = append(teammate.Items, f.itemID)
	require.NoError(t, f.mem.SaveTeammate(ctx, teammate))

	// OR 检查：任一侧已有引用即冲突
	_, err = f.svc.AssignTeammate(ctx, AssignTeammateRequest{
		RoomID: f.roomID, ItemID: f.itemID, TeammateID: f.teammateID,
	})
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))

	// 同样的单边状态也无法走 Unassign 清理
	_, err = f.svc.UnassignTeammate(ctx, UnassignTeammateRequest{
		RoomID: f.roomID, ItemID: f.itemID, TeammateID: f.teammateID,
	})
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
}

func TestUnassignTeammate_Symmetric(t *testing.T) {
	f := setupAssignment(t)
	ctx := context.Background()

	_, err := f.svc.AssignTeammate(ctx, AssignTeammateRequest{
		RoomID: f.roomID, ItemID: f.itemID, TeammateID: f.teammateID,
	})
	require.NoError(t, err)

	resp, err := f.svc.UnassignTeammate(ctx, UnassignTeammateRequest{
		RoomID: f.roomID, ItemID: f.itemID, TeammateID: f.teammateID,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Room.Items[0].Teammates)

	teammate, err := f.mem.FindTeammate(ctx, f.teammateID)
	require.NoError(t, err)
	assert.Empty(t, teammate.Items)
}

func TestUnassignTeammate_NotAssigned(t *testing.T) {
	f := setupAssignment(t)

	_, err := f.svc.UnassignTeammate(context.Background(), UnassignTeammateRequest{
		RoomID: f.roomID, ItemID: f.itemID, TeammateID: f.teammateID,
	})
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
}

func TestAssignTeammate_MissingEntities(t *testing.T) {
	f := setupAssignment(t)
	ctx := context.Background()

	_, err := f.svc.AssignTeammate(ctx, AssignTeammateRequest{
		RoomID: "missing", ItemID: f.itemID, TeammateID: f.teammateID,
	})
	assert.True(t, domain.IsNotFound(err))

	_, err = f.svc.AssignTeammate(ctx, AssignTeammateRequest{
		RoomID: f.roomID, ItemID: "missing", TeammateID: f.teammateID,
	})
	assert.True(t, domain.IsNotFound(err))

	_, err = f.svc.AssignTeammate(ctx, AssignTeammateRequest{
		RoomID: f.roomID, ItemID: f.itemID, TeammateID: "missing",
	})
	assert.True(t, domain.IsNotFound(err))
}

// failingTeammates 指定 SaveTeammate 次数后开始报错
type failingTeammates struct {
	repository.TeammatesRepository
	failAfter int
	saves     int
}

func (f *failingTeammates) SaveTeammate(ctx context.Context, teammate *domain.Teammate) error {
	f.saves++
	if f.saves > f.failAfter {
		return errors.New("connection reset")
	}
	return f.TeammatesRepository.SaveTeammate(ctx, teammate)
}

func TestAssignTeammate_TeammateSaveFailureLeavesOneSidedRef(t *testing.T) {
	mem := repository.NewMemoryRepo()
	f := setupAssignmentWith(t, mem, &failingTeammates{TeammatesRepository: mem, failAfter: 0})
	ctx := context.Background()

	_, err := f.svc.AssignTeammate(ctx, AssignTeammateRequest{
		RoomID: f.roomID, ItemID: f.itemID, TeammateID: f.teammateID,
	})
	require.Error(t, err)
	assert.True(t, domain.IsStorage(err))

	// 房间先写已成功：item 侧引用留下，队友侧没有（无回滚）
	room, err := mem.FindRoom(ctx, f.roomID)
	require.NoError(t, err)
	assert.Contains(t, room.Items[0].Teammates, f.teammateID)

	teammate, err := mem.FindTeammate(ctx, f.teammateID)
	require.NoError(t, err)
	assert.Empty(t, teammate.Items)
}

// ============================================
// RemoveItem
// ============================================

func TestRemoveItem_CleansAllTeammateRefs(t *testing.T) {
	f := setupAssignment(t)
	ctx := context.Background()

	secondID, err := f.mem.CreateTeammate(ctx, &domain.Teammate{TeammateName: "Emma", Items: []string{}})
	require.NoError(t, err)

	for _, id := range []string{f.teammateID, secondID} {
		_, err := f.svc.AssignTeammate(ctx, AssignTeammateRequest{
			RoomID: f.roomID, ItemID: f.itemID, TeammateID: id,
		})
		require.NoError(t, err)
	}

	resp, err := f.svc.RemoveItem(ctx, RemoveItemRequest{RoomID: f.roomID, ItemID: f.itemID})
	require.NoError(t, err)
	assert.Empty(t, resp.Room.Items)

	// 没有悬挂引用
	for _, id := range []string{f.teammateID, secondID} {
		teammate, err := f.mem.FindTeammate(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, teammate.Items)
	}
}

func TestRemoveItem_MidLoopFailureLeavesItemInRoom(t *testing.T) {
	mem := repository.NewMemoryRepo()
	failing := &failingTeammates{TeammatesRepository: mem, failAfter: 3}
	f := setupAssignmentWith(t, mem, failing)
	ctx := context.Background()

	secondID, err := mem.CreateTeammate(ctx, &domain.Teammate{TeammateName: "Emma", Items: []string{}})
	require.NoError(t, err)

	// 两次指派各写一次队友，RemoveItem 循环里第一个队友成功、第二个保存失败
	for _, id := range []string{f.teammateID, secondID} {
		_, err := f.svc.AssignTeammate(ctx, AssignTeammateRequest{
			RoomID: f.roomID, ItemID: f.itemID, TeammateID: id,
		})
		require.NoError(t, err)
	}

	_, err = f.svc.RemoveItem(ctx, RemoveItemRequest{RoomID: f.roomID, ItemID: f.itemID})
	require.Error(t, err)
	assert.True(t, domain.IsStorage(err))

	// item 还在房间里；先处理的队友已摘除引用，后面的保持原状
	room, err := mem.FindRoom(ctx, f.roomID)
	require.NoError(t, err)
	require.Len(t, room.Items, 1)

	first, err := mem.FindTeammate(ctx, f.teammateID)
	require.NoError(t, err)
	second, err := mem.FindTeammate(ctx, secondID)
	require.NoError(t, err)
	// MemoryRepo 的 ListTeammates/循环顺序由 item.Teammates 决定：teammateID 先处理
	assert.Empty(t, first.Items)
	assert.Contains(t, second.Items, f.itemID)
}

// brokenFindTeammates FindTeammate 直接报错（模拟读路径故障）
type brokenFindTeammates struct {
	repository.TeammatesRepository
}

func (f *brokenFindTeammates) FindTeammate(_ context.Context, _ string) (*domain.Teammate, error) {
	return nil, errors.New("connection refused")
}

func TestRemoveItem_TeammateLoadFailureAborts(t *testing.T) {
	mem := repository.NewMemoryRepo()
	f := setupAssignmentWith(t, mem, mem)
	ctx := context.Background()

	_, err := f.svc.AssignTeammate(ctx, AssignTeammateRequest{
		RoomID: f.roomID, ItemID: f.itemID, TeammateID: f.teammateID,
	})
	require.NoError(t, err)

	// 读路径坏掉后再删：直接中止，item 原样留在房间里
	broken := NewAssignmentService(mem, &brokenFindTeammates{TeammatesRepository: mem}, mem, nil, zap.NewNop())
	_, err = broken.RemoveItem(ctx, RemoveItemRequest{RoomID: f.roomID, ItemID: f.itemID})
	require.Error(t, err)
	assert.True(t, domain.IsStorage(err))

	room, err := mem.FindRoom(ctx, f.roomID)
	require.NoError(t, err)
	require.Len(t, room.Items, 1)
	assert.Contains(t, room.Items[0].Teammates, f.teammateID)
}

// ============================================
// artisan 指派
// ============================================

func TestAssignArtisan(t *testing.T) {
	f := setupAssignment(t)
	ctx := context.Background()

	resp, err := f.svc.AssignArtisan(ctx, AssignArtisanRequest{
		RoomID: f.roomID, ItemID: f.itemID, ArtisanID: f.artisanID,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Room.Items[0].ArtisanID)
	assert.Equal(t, f.artisanID, *resp.Room.Items[0].ArtisanID)
}

func TestAssignArtisan_SameArtisanConflict(t *testing.T) {
	f := setupAssignment(t)
	ctx := context.Background()

	_, err := f.svc.AssignArtisan(ctx, AssignArtisanRequest{
		RoomID: f.roomID, ItemID: f.itemID, ArtisanID: f.artisanID,
	})
	require.NoError(t, err)

	_, err = f.svc.AssignArtisan(ctx, AssignArtisanRequest{
		RoomID: f.roomID, ItemID: f.itemID, ArtisanID: f.artisanID,
	})
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
}

func TestAssignArtisan_SwitchWithoutUnassignAllowed(t *testing.T) {
	f := setupAssignment(t)
	ctx := context.Background()

	otherID, err := f.mem.CreateArtisan(ctx, &domain.Artisan{ArtisanName: "Elec Martin", Trade: "wiring"})
	require.NoError(t, err)

	_, err = f.svc.AssignArtisan(ctx, AssignArtisanRequest{
		RoomID: f.roomID, ItemID: f.itemID, ArtisanID: f.artisanID,
	})
	require.NoError(t, err)

	// 换人不需要先 Unassign（既有行为）
	resp, err := f.svc.AssignArtisan(ctx, AssignArtisanRequest{
		RoomID: f.roomID, ItemID: f.itemID, ArtisanID: otherID,
	})
	require.NoError(t, err)
	assert.Equal(t, otherID, *resp.Room.Items[0].ArtisanID)
}

func TestUnassignArtisan(t *testing.T) {
	f := setupAssignment(t)
	ctx := context.Background()

	_, err := f.svc.AssignArtisan(ctx, AssignArtisanRequest{
		RoomID: f.roomID, ItemID: f.itemID, ArtisanID: f.artisanID,
	})
	require.NoError(t, err)

	resp, err := f.svc.UnassignArtisan(ctx, UnassignArtisanRequest{RoomID: f.roomID, ItemID: f.itemID})
	require.NoError(t, err)
	assert.Nil(t, resp.Room.Items[0].ArtisanID)

	// 重复解绑报冲突
	_, err = f.svc.UnassignArtisan(ctx, UnassignArtisanRequest{RoomID: f.roomID, ItemID: f.itemID})
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
}

// ============================================
// RepairTeammateRefs
// ============================================

func TestRepairTeammateRefs_AddsMissingMirror(t *testing.T) {
	f := setupAssignment(t)
	ctx := context.Background()

	// item 侧有引用，队友侧缺镜像（模拟两写之间崩溃）
	room, err := f.mem.FindRoom(ctx, f.roomID)
	require.NoError(t, err)
	room.Items[0].Teammates = []string{f.teammateID}
	require.NoError(t, f.mem.SaveRoom(ctx, room))

	resp, err := f.svc.RepairTeammateRefs(ctx, RepairTeammateRefsRequest{RoomID: f.roomID})
	require.NoError(t, err)
	assert.Equal(t, []string{f.teammateID}, resp.Repaired)

	teammate, err := f.mem.FindTeammate(ctx, f.teammateID)
	require.NoError(t, err)
	assert.Contains(t, teammate.Items, f.itemID)
}

func TestRepairTeammateRefs_RemovesStaleMirror(t *testing.T) {
	f := setupAssignment(t)
	ctx := context.Background()

	// 队友侧有引用，item 侧没有
	teammate, err := f.mem.FindTeammate(ctx, f.teammateID)
	require.NoError(t, err)
	teammate.Items = []string{f.itemID}
	require.NoError(t, f.mem.SaveTeammate(ctx, teammate))

	resp, err := f.svc.RepairTeammateRefs(ctx, RepairTeammateRefsRequest{RoomID: f.roomID})
	require.NoError(t, err)
	assert.Equal(t, []string{f.teammateID}, resp.Repaired)

	teammate, err = f.mem.FindTeammate(ctx, f.teammateID)
	require.NoError(t, err)
	assert.Empty(t, teammate.Items)
}

func TestRepairTeammateRefs_OtherRoomsUntouched(t *testing.T) {
	f := setupAssignment(t)
	ctx := context.Background()

	// 队友引用了另一个房间的 item：不属于本房间，修复不应碰它
	teammate, err := f.mem.FindTeammate(ctx, f.teammateID)
	require.NoError(t, err)
	teammate.Items = []string{"item-of-other-room"}
	require.NoError(t, f.mem.SaveTeammate(ctx, teammate))

	resp, err := f.svc.RepairTeammateRefs(ctx, RepairTeammateRefsRequest{RoomID: f.roomID})
	require.NoError(t, err)
	assert.Empty(t, resp.Repaired)

	teammate, err = f.mem.FindTeammate(ctx, f.teammateID)
	require.NoError(t, err)
	assert.Equal(t, []string{"item-of-other-room"}, teammate.Items)
}

func TestRepairTeammateRefs_ConsistentStateNoop(t *testing.T) {
	f := setupAssignment(t)
	ctx := context.Background()

	_, err := f.svc.AssignTeammate(ctx, AssignTeammateRequest{
		RoomID: f.roomID, ItemID: f.itemID, TeammateID: f.teammateID,
	})
	require.NoError(t, err)

	resp, err := f.svc.RepairTeammateRefs(ctx, RepairTeammateRefsRequest{RoomID: f.roomID})
	require.NoError(t, err)
	assert.Empty(t, resp.Repaired)
}
