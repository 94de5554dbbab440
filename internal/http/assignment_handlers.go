package httpapi

import (
	"encoding/json"
	"net/http"

	"renova-rooms/internal/service"

	"go.uber.org/zap"
)

// AssignmentHandler 工作项指派相关路由 + 队友建档查询
type AssignmentHandler struct {
	assignments service.AssignmentService
	teammates   service.TeammateService
	logger      *zap.Logger
}

func NewAssignmentHandler(
	assignments service.AssignmentService,
	teammates service.TeammateService,
	logger *zap.Logger,
) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments, teammates: teammates, logger: logger}
}

type assignArtisanBody struct {
	ArtisanID string `json:"artisan_id"`
}

// ItemTree /reno/api/v1/rooms/{roomId}/items/{itemId}[/teammates/{teammateId}|/artisan]
// 以及 /reno/api/v1/rooms/{roomId}/repair-teammates
func (h *AssignmentHandler) ItemTree(w http.ResponseWriter, req *http.Request, segments []string) {
	roomID := segments[0]

	// POST /rooms/{roomId}/repair-teammates
	if len(segments) == 2 && segments[1] == "repair-teammates" {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		resp, err := h.assignments.RepairTeammateRefs(req.Context(), service.RepairTeammateRefsRequest{RoomID: roomID})
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(resp))
		return
	}

	if len(segments) < 3 || segments[1] != "items" {
		writeJSON(w, http.StatusNotFound, Fail("not found"))
		return
	}
	itemID := segments[2]

	switch {
	// DELETE /rooms/{roomId}/items/{itemId}
	case len(segments) == 3 && req.Method == http.MethodDelete:
		resp, err := h.assignments.RemoveItem(req.Context(), service.RemoveItemRequest{RoomID: roomID, ItemID: itemID})
		if err != nil {
			writeServiceError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(resp))

	// PUT|DELETE /rooms/{roomId}/items/{itemId}/teammates/{teammateId}
	case len(segments) == 5 && segments[3] == "teammates":
		teammateID := segments[4]
		switch req.Method {
		case http.MethodPut:
			resp, err := h.assignments.AssignTeammate(req.Context(), service.AssignTeammateRequest{
				RoomID: roomID, ItemID: itemID, TeammateID: teammateID,
			})
			if err != nil {
				writeServiceError(w, h.logger, err)
				return
			}
			writeJSON(w, http.StatusOK, Ok(resp))
		case http.MethodDelete:
			resp, err := h.assignments.UnassignTeammate(req.Context(), service.UnassignTeammateRequest{
				RoomID: roomID, ItemID: itemID, TeammateID: teammateID,
			})
			if err != nil {
				writeServiceError(w, h.logger, err)
				return
			}
			writeJSON(w, http.StatusOK, Ok(resp))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}

	// PUT|DELETE /rooms/{roomId}/items/{itemId}/artisan
	case len(segments) == 4 && segments[3] == "artisan":
		switch req.Method {
		case http.MethodPut:
			var body assignArtisanBody
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, Fail("invalid json body"))
				return
			}
			resp, err := h.assignments.AssignArtisan(req.Context(), service.AssignArtisanRequest{
				RoomID: roomID, ItemID: itemID, ArtisanID: body.ArtisanID,
			})
			if err != nil {
				writeServiceError(w, h.logger, err)
				return
			}
			writeJSON(w, http.StatusOK, Ok(resp))
		case http.MethodDelete:
			resp, err := h.assignments.UnassignArtisan(req.Context(), service.UnassignArtisanRequest{
				RoomID: roomID, ItemID: itemID,
			})
			if err != nil {
				writeServiceError(w, h.logger, err)
				return
			}
			writeJSON(w, http.StatusOK, Ok(resp))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}

	default:
		writeJSON(w, http.StatusNotFound, Fail("not found"))
	}
}

type createTeammateBody struct {
	TeammateName string `json:"teammate_name"`
}

// TeammateCollection POST /reno/api/v1/teammates
func (h *AssignmentHandler) TeammateCollection(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var body createTeammateBody
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid json body"))
		return
	}
	resp, err := h.teammates.CreateTeammate(req.Context(), service.CreateTeammateRequest{TeammateName: body.TeammateName})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(resp))
}

// TeammateTree GET /reno/api/v1/teammates/{teammateId}
func (h *AssignmentHandler) TeammateTree(w http.ResponseWriter, req *http.Request, segments []string) {
	if len(segments) != 1 {
		writeJSON(w, http.StatusNotFound, Fail("not found"))
		return
	}
	if req.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	resp, err := h.teammates.GetTeammate(req.Context(), service.GetTeammateRequest{TeammateID: segments[0]})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}
