package httpapi

import (
	"encoding/json"
	"net/http"

	"renova-rooms/internal/service"

	"go.uber.org/zap"
)

// RoomHandler 房间相关路由
type RoomHandler struct {
	rooms  service.RoomService
	logger *zap.Logger
}

func NewRoomHandler(rooms service.RoomService, logger *zap.Logger) *RoomHandler {
	return &RoomHandler{rooms: rooms, logger: logger}
}

type createRoomBody struct {
	RoomType string `json:"room_type"`
}

type editRoomBody struct {
	Name          string              `json:"name"`
	Surface       float64             `json:"surface"`
	Comment       string              `json:"comment"`
	ItemsToAdd    []service.ItemInput `json:"itemsToAdd"`
	ItemsToRemove []string            `json:"itemsToRemove"`
	ItemsToModify []service.ItemInput `json:"itemsToModify"`
}

// Collection POST /reno/api/v1/rooms
func (h *RoomHandler) Collection(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var body createRoomBody
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid json body"))
		return
	}
	resp, err := h.rooms.CreateRoom(req.Context(), service.CreateRoomRequest{RoomType: body.RoomType})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(resp))
}

// RoomTree /reno/api/v1/rooms/{roomId}[/name|/surface|/comment]
func (h *RoomHandler) RoomTree(w http.ResponseWriter, req *http.Request, segments []string) {
	roomID := segments[0]

	switch len(segments) {
	case 1:
		switch req.Method {
		case http.MethodGet:
			h.getRoom(w, req, roomID)
		case http.MethodPut:
			h.editRoom(w, req, roomID)
		case http.MethodDelete:
			h.deleteRoom(w, req, roomID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case 2:
		if req.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.updateField(w, req, roomID, segments[1])
	default:
		writeJSON(w, http.StatusNotFound, Fail("not found"))
	}
}

func (h *RoomHandler) getRoom(w http.ResponseWriter, req *http.Request, roomID string) {
	resp, err := h.rooms.GetRoom(req.Context(), service.GetRoomRequest{RoomID: roomID})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

func (h *RoomHandler) editRoom(w http.ResponseWriter, req *http.Request, roomID string) {
	var body editRoomBody
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid json body"))
		return
	}
	resp, err := h.rooms.EditRoom(req.Context(), service.EditRoomRequest{
		RoomID:        roomID,
		Name:          body.Name,
		Surface:       body.Surface,
		Comment:       body.Comment,
		ItemsToAdd:    body.ItemsToAdd,
		ItemsToRemove: body.ItemsToRemove,
		ItemsToModify: body.ItemsToModify,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

func (h *RoomHandler) deleteRoom(w http.ResponseWriter, req *http.Request, roomID string) {
	resp, err := h.rooms.DeleteRoom(req.Context(), service.DeleteRoomRequest{RoomID: roomID})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

type updateFieldBody struct {
	Name    string  `json:"name"`
	Surface float64 `json:"surface"`
	Comment string  `json:"comment"`
}

func (h *RoomHandler) updateField(w http.ResponseWriter, req *http.Request, roomID, field string) {
	var body updateFieldBody
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid json body"))
		return
	}

	var (
		resp *service.RoomResponse
		err  error
	)
	switch field {
	case "name":
		resp, err = h.rooms.RenameRoom(req.Context(), service.RenameRoomRequest{RoomID: roomID, Name: body.Name})
	case "surface":
		resp, err = h.rooms.SetRoomSurface(req.Context(), service.SetRoomSurfaceRequest{RoomID: roomID, Surface: body.Surface})
	case "comment":
		resp, err = h.rooms.SetRoomComment(req.Context(), service.SetRoomCommentRequest{RoomID: roomID, Comment: body.Comment})
	default:
		writeJSON(w, http.StatusNotFound, Fail("not found"))
		return
	}
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}
