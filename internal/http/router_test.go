package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"renova-rooms/internal/idgen"
	"renova-rooms/internal/repository"
	"renova-rooms/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupAPI 用内存仓库拼出完整路由，返回测试服务器
func setupAPI(t *testing.T) *httptest.Server {
	t.Helper()
	logger := zap.NewNop()
	mem := repository.NewMemoryRepo()
	ids := idgen.NewUUIDGenerator()

	roomSvc := service.NewRoomService(mem, mem, ids, nil, logger)
	projectSvc := service.NewProjectService(mem, logger)
	teammateSvc := service.NewTeammateService(mem, logger)
	assignmentSvc := service.NewAssignmentService(mem, mem, mem, nil, logger)
	artisanSvc := service.NewArtisanService(mem, nil, logger)
	reportSvc := service.NewReportService(mem, mem, logger)

	router := NewRouter(logger)
	router.RegisterRenovationRoutes(
		NewRoomHandler(roomSvc, logger),
		NewProjectHandler(projectSvc, roomSvc, reportSvc, logger),
		NewAssignmentHandler(assignmentSvc, teammateSvc, logger),
		NewArtisanHandler(artisanSvc, logger),
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope map[string]json.RawMessage
	_ = json.NewDecoder(resp.Body).Decode(&envelope)
	return resp, envelope
}

func resultOf[T any](t *testing.T, envelope map[string]json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(envelope["result"], &out))
	return out
}

func TestAPI_ProjectRoomFlow(t *testing.T) {
	srv := setupAPI(t)
	base := srv.URL + "/reno/api/v1"

	// 建项目
	resp, env := doJSON(t, http.MethodPost, base+"/projects", map[string]string{"project_name": "Maison Lyon"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := resultOf[service.ProjectResponse](t, env)
	projectID := created.Project.ProjectID
	require.NotEmpty(t, projectID)

	// 按数量对齐房间
	resp, env = doJSON(t, http.MethodPut, fmt.Sprintf("%s/projects/%s/rooms", base, projectID),
		map[string]any{"rooms": map[string]int{"Bedroom": 2, "Kitchen": 1}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := resultOf[service.ListRoomsResponse](t, env)
	require.Len(t, list.Rooms, 3)
	roomID := list.Rooms[0].RoomID

	// 列房间
	resp, env = doJSON(t, http.MethodGet, fmt.Sprintf("%s/projects/%s/rooms", base, projectID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list = resultOf[service.ListRoomsResponse](t, env)
	assert.Len(t, list.Rooms, 3)

	// 编辑房间：加 item + 更名
	resp, env = doJSON(t, http.MethodPut, fmt.Sprintf("%s/rooms/%s", base, roomID), map[string]any{
		"name":       "Chambre parentale",
		"itemsToAdd": []map[string]any{{"field": "painting", "difficulty": 2}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	room := resultOf[service.RoomResponse](t, env)
	assert.Equal(t, "Chambre parentale", room.Room.RoomName)
	require.Len(t, room.Room.Items, 1)
	itemID := room.Room.Items[0].ItemID

	// 指派队友
	resp, env = doJSON(t, http.MethodPost, base+"/teammates", map[string]string{"teammate_name": "Luc"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	teammate := resultOf[service.TeammateResponse](t, env)
	teammateID := teammate.Teammate.TeammateID

	resp, env = doJSON(t, http.MethodPut,
		fmt.Sprintf("%s/rooms/%s/items/%s/teammates/%s", base, roomID, itemID, teammateID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	room = resultOf[service.RoomResponse](t, env)
	assert.Contains(t, room.Room.Items[0].Teammates, teammateID)

	// 重复指派 -> 409
	resp, _ = doJSON(t, http.MethodPut,
		fmt.Sprintf("%s/rooms/%s/items/%s/teammates/%s", base, roomID, itemID, teammateID), nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// 删 item：队友引用一并清理
	resp, env = doJSON(t, http.MethodDelete,
		fmt.Sprintf("%s/rooms/%s/items/%s", base, roomID, itemID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	room = resultOf[service.RoomResponse](t, env)
	assert.Empty(t, room.Room.Items)

	resp, env = doJSON(t, http.MethodGet, base+"/teammates/"+teammateID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	teammate = resultOf[service.TeammateResponse](t, env)
	assert.Empty(t, teammate.Teammate.Items)
}

func TestAPI_ReconcileValidationErrors(t *testing.T) {
	srv := setupAPI(t)
	base := srv.URL + "/reno/api/v1"

	resp, env := doJSON(t, http.MethodPost, base+"/projects", map[string]string{"project_name": "Maison"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	projectID := resultOf[service.ProjectResponse](t, env).Project.ProjectID

	// 两间阁楼 -> 400
	resp, env = doJSON(t, http.MethodPut, fmt.Sprintf("%s/projects/%s/rooms", base, projectID),
		map[string]any{"rooms": map[string]int{"Grenier/Combles": 2}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var msg string
	require.NoError(t, json.Unmarshal(env["message"], &msg))
	assert.Contains(t, msg, "Grenier/Combles")

	// 超出 18 间 -> 400
	resp, _ = doJSON(t, http.MethodPut, fmt.Sprintf("%s/projects/%s/rooms", base, projectID),
		map[string]any{"rooms": map[string]int{"Bedroom": 19}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// 项目不存在 -> 404
	resp, _ = doJSON(t, http.MethodPut, base+"/projects/does-not-exist/rooms",
		map[string]any{"rooms": map[string]int{"Bedroom": 1}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_RepairTeammates(t *testing.T) {
	srv := setupAPI(t)
	base := srv.URL + "/reno/api/v1"

	resp, env := doJSON(t, http.MethodPost, base+"/projects", map[string]string{"project_name": "Maison"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	projectID := resultOf[service.ProjectResponse](t, env).Project.ProjectID

	resp, env = doJSON(t, http.MethodPut, fmt.Sprintf("%s/projects/%s/rooms", base, projectID),
		map[string]any{"rooms": map[string]int{"Kitchen": 1}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	roomID := resultOf[service.ListRoomsResponse](t, env).Rooms[0].RoomID

	resp, env = doJSON(t, http.MethodPost, fmt.Sprintf("%s/rooms/%s/repair-teammates", base, roomID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	repair := resultOf[service.RepairTeammateRefsResponse](t, env)
	assert.Empty(t, repair.Repaired)
}

func TestAPI_ResultEnvelope(t *testing.T) {
	srv := setupAPI(t)
	base := srv.URL + "/reno/api/v1"

	resp, env := doJSON(t, http.MethodPost, base+"/rooms", map[string]string{"room_type": "Kitchen"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var code int
	require.NoError(t, json.Unmarshal(env["code"], &code))
	assert.Equal(t, ResultSuccess, code)
	var typ string
	require.NoError(t, json.Unmarshal(env["type"], &typ))
	assert.Equal(t, "success", typ)

	// 校验失败走统一错误包络
	resp, env = doJSON(t, http.MethodPost, base+"/rooms", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NoError(t, json.Unmarshal(env["code"], &code))
	assert.Equal(t, ResultError, code)
}

func TestAPI_ProjectReportDownload(t *testing.T) {
	srv := setupAPI(t)
	base := srv.URL + "/reno/api/v1"

	resp, env := doJSON(t, http.MethodPost, base+"/projects", map[string]string{"project_name": "Maison"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	projectID := resultOf[service.ProjectResponse](t, env).Project.ProjectID

	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/projects/%s/report", base, projectID), nil)
	require.NoError(t, err)
	raw, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer raw.Body.Close()

	require.Equal(t, http.StatusOK, raw.StatusCode)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		raw.Header.Get("Content-Type"))
	assert.Contains(t, raw.Header.Get("Content-Disposition"), "renovation-Maison.xlsx")
}
