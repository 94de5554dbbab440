package httpapi

import (
	"encoding/json"
	"net/http"

	"renova-rooms/internal/service"

	"go.uber.org/zap"
)

// ProjectHandler 项目相关路由（建档、房间清单、数量对齐、报表导出）
type ProjectHandler struct {
	projects service.ProjectService
	rooms    service.RoomService
	reports  service.ReportService
	logger   *zap.Logger
}

func NewProjectHandler(
	projects service.ProjectService,
	rooms service.RoomService,
	reports service.ReportService,
	logger *zap.Logger,
) *ProjectHandler {
	return &ProjectHandler{projects: projects, rooms: rooms, reports: reports, logger: logger}
}

type createProjectBody struct {
	ProjectName string `json:"project_name"`
}

type reconcileBody struct {
	Rooms map[string]int `json:"rooms"` // room_type -> desired count
}

// Collection POST /reno/api/v1/projects
func (h *ProjectHandler) Collection(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var body createProjectBody
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid json body"))
		return
	}
	resp, err := h.projects.CreateProject(req.Context(), service.CreateProjectRequest{ProjectName: body.ProjectName})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(resp))
}

// ProjectTree /reno/api/v1/projects/{projectId}[/rooms|/report]
func (h *ProjectHandler) ProjectTree(w http.ResponseWriter, req *http.Request, segments []string) {
	if len(segments) == 0 {
		writeJSON(w, http.StatusNotFound, Fail("not found"))
		return
	}
	projectID := segments[0]

	switch {
	case len(segments) == 1 && req.Method == http.MethodGet:
		resp, err := h.projects.GetProject(req.Context(), service.GetProjectRequest{ProjectID: projectID})
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(resp))

	case len(segments) == 2 && segments[1] == "rooms" && req.Method == http.MethodGet:
		resp, err := h.rooms.ListRoomsByProject(req.Context(), service.ListRoomsByProjectRequest{ProjectID: projectID})
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(resp))

	case len(segments) == 2 && segments[1] == "rooms" && req.Method == http.MethodPut:
		var body reconcileBody
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid json body"))
			return
		}
		resp, err := h.rooms.ReconcileRooms(req.Context(), service.ReconcileRoomsRequest{
			ProjectID: projectID,
			Counts:    body.Rooms,
		})
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(resp))

	case len(segments) == 2 && segments[1] == "report" && req.Method == http.MethodGet:
		resp, err := h.reports.ExportProjectReport(req.Context(), service.ExportProjectReportRequest{ProjectID: projectID})
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="`+resp.FileName+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(resp.Data)

	default:
		if req.Method != http.MethodGet && req.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusNotFound, Fail("not found"))
	}
}
