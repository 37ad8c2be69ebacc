package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/meeting-planner/internal/application"
)

type registryService interface {
	CreateRoom(ctx context.Context, principal application.Principal, input application.RoomInput) (application.Room, error)
	UpdateRoom(ctx context.Context, principal application.Principal, roomID string, input application.RoomInput) (application.Room, error)
	GetRoom(ctx context.Context, id string) (application.Room, error)
	ListRooms(ctx context.Context) ([]application.Room, error)
	DeleteRoom(ctx context.Context, principal application.Principal, id string) error
	RoomStatus(ctx context.Context, roomID string, at time.Time) (application.RoomStatus, error)

	CreateEquipment(ctx context.Context, principal application.Principal, input application.EquipmentInput) (application.Equipment, error)
	UpdateEquipment(ctx context.Context, principal application.Principal, id string, input application.EquipmentInput) (application.Equipment, error)
	ListEquipment(ctx context.Context) ([]application.Equipment, error)
	EquipmentStatus(ctx context.Context, equipmentID string, at time.Time) (application.RoomStatus, error)

	CreateLocation(ctx context.Context, principal application.Principal, input application.LocationInput) (application.Location, error)
	ListLocations(ctx context.Context) ([]application.Location, error)

	CreateRole(ctx context.Context, principal application.Principal, name, description string) (application.Role, error)
	UpdateRole(ctx context.Context, principal application.Principal, roleID, name, description string) (application.Role, error)
	DeleteRole(ctx context.Context, principal application.Principal, roleID string) error
	ListRoles(ctx context.Context) ([]application.Role, error)
}

// RegistryHandler exposes the resource catalog: rooms, equipment, locations,
// and participant roles.
type RegistryHandler struct {
	service   registryService
	responder responder
	logger    *slog.Logger
}

func NewRegistryHandler(service registryService, logger *slog.Logger) *RegistryHandler {
	base := defaultLogger(logger)
	return &RegistryHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *RegistryHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RegistryHandler", operation, attrs...)
}

func (h *RegistryHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, h.responder)
	if !ok {
		return
	}

	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "CreateRoom", "principal_id", principal.UserID)
	room, err := h.service.CreateRoom(r.Context(), principal, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "room creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("room_id", room.ID).InfoContext(r.Context(), "room created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, roomResponse{Room: toRoomDTO(room)})
}

func (h *RegistryHandler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, h.responder)
	if !ok {
		return
	}
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "UpdateRoom", "principal_id", principal.UserID, "room_id", id)
	room, err := h.service.UpdateRoom(r.Context(), principal, id, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "room update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "room updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, roomResponse{Room: toRoomDTO(room)})
}

func (h *RegistryHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	room, err := h.service.GetRoom(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, roomResponse{Room: toRoomDTO(room)})
}

func (h *RegistryHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.service.ListRooms(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	dtos := make([]roomDTO, 0, len(rooms))
	for _, room := range rooms {
		dtos = append(dtos, toRoomDTO(room))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listRoomsResponse{Rooms: dtos})
}

func (h *RegistryHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, h.responder)
	if !ok {
		return
	}
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	logger := h.log(r.Context(), "DeleteRoom", "principal_id", principal.UserID, "room_id", id)
	if err := h.service.DeleteRoom(r.Context(), principal, id); err != nil {
		logger.ErrorContext(r.Context(), "room delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "room deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// RoomStatus reports whether the room is free, reserved, occupied by a live
// meeting, or under maintenance at the requested instant (default now).
func (h *RegistryHandler) RoomStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	at, err := statusInstant(r)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	status, err := h.service.RoomStatus(r.Context(), id, at)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, statusResponse{
		Status: string(status),
		At:     at.UTC().Format(time.RFC3339),
	})
}

func (h *RegistryHandler) CreateEquipment(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, h.responder)
	if !ok {
		return
	}

	var req equipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "CreateEquipment", "principal_id", principal.UserID)
	eq, err := h.service.CreateEquipment(r.Context(), principal, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "equipment creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("equipment_id", eq.ID).InfoContext(r.Context(), "equipment created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, equipmentResponse{Equipment: toEquipmentDTO(eq)})
}

func (h *RegistryHandler) UpdateEquipment(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, h.responder)
	if !ok {
		return
	}
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	var req equipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "UpdateEquipment", "principal_id", principal.UserID, "equipment_id", id)
	eq, err := h.service.UpdateEquipment(r.Context(), principal, id, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "equipment update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "equipment updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, equipmentResponse{Equipment: toEquipmentDTO(eq)})
}

func (h *RegistryHandler) ListEquipment(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListEquipment(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	dtos := make([]equipmentDTO, 0, len(items))
	for _, eq := range items {
		dtos = append(dtos, toEquipmentDTO(eq))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listEquipmentResponse{Equipment: dtos})
}

func (h *RegistryHandler) EquipmentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	at, err := statusInstant(r)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	status, err := h.service.EquipmentStatus(r.Context(), id, at)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, statusResponse{
		Status: string(status),
		At:     at.UTC().Format(time.RFC3339),
	})
}

func (h *RegistryHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, h.responder)
	if !ok {
		return
	}

	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "CreateLocation", "principal_id", principal.UserID)
	loc, err := h.service.CreateLocation(r.Context(), principal, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "location creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("location_id", loc.ID).InfoContext(r.Context(), "location created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, locationResponse{Location: toLocationDTO(loc)})
}

func (h *RegistryHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.service.ListLocations(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	dtos := make([]locationDTO, 0, len(locations))
	for _, loc := range locations {
		dtos = append(dtos, toLocationDTO(loc))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listLocationsResponse{Locations: dtos})
}

func (h *RegistryHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, h.responder)
	if !ok {
		return
	}

	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "CreateRole", "principal_id", principal.UserID)
	role, err := h.service.CreateRole(r.Context(), principal, strings.TrimSpace(req.Name), strings.TrimSpace(req.Description))
	if err != nil {
		logger.ErrorContext(r.Context(), "role creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("role_id", role.ID).InfoContext(r.Context(), "role created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, roleResponse{Role: toRoleDTO(role)})
}

func (h *RegistryHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, h.responder)
	if !ok {
		return
	}
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "UpdateRole", "principal_id", principal.UserID, "role_id", id)
	role, err := h.service.UpdateRole(r.Context(), principal, id, strings.TrimSpace(req.Name), strings.TrimSpace(req.Description))
	if err != nil {
		logger.ErrorContext(r.Context(), "role update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "role updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, roleResponse{Role: toRoleDTO(role)})
}

func (h *RegistryHandler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, h.responder)
	if !ok {
		return
	}
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	logger := h.log(r.Context(), "DeleteRole", "principal_id", principal.UserID, "role_id", id)
	if err := h.service.DeleteRole(r.Context(), principal, id); err != nil {
		logger.ErrorContext(r.Context(), "role delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "role deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *RegistryHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	dtos := make([]roleDTO, 0, len(roles))
	for _, role := range roles {
		dtos = append(dtos, toRoleDTO(role))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listRolesResponse{Roles: dtos})
}

func statusInstant(r *http.Request) (time.Time, error) {
	if value := r.URL.Query().Get("at"); value != "" {
		return time.Parse(time.RFC3339, value)
	}
	return time.Now(), nil
}

type roomRequest struct {
	Name        string  `json:"name"`
	Floor       int     `json:"floor"`
	Capacity    int     `json:"capacity"`
	LocationID  *string `json:"location_id"`
	Maintenance bool    `json:"maintenance"`
}

func (r roomRequest) toInput() application.RoomInput {
	return application.RoomInput{
		Name:        strings.TrimSpace(r.Name),
		Floor:       r.Floor,
		Capacity:    r.Capacity,
		LocationID:  r.LocationID,
		Maintenance: r.Maintenance,
	}
}

type roomResponse struct {
	Room roomDTO `json:"room"`
}

type listRoomsResponse struct {
	Rooms []roomDTO `json:"rooms"`
}

type statusResponse struct {
	Status string `json:"status"`
	At     string `json:"at"`
}

type roomDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Floor       int     `json:"floor"`
	Capacity    int     `json:"capacity"`
	LocationID  *string `json:"location_id,omitempty"`
	Maintenance bool    `json:"maintenance"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func toRoomDTO(room application.Room) roomDTO {
	return roomDTO{
		ID:          room.ID,
		Name:        room.Name,
		Floor:       room.Floor,
		Capacity:    room.Capacity,
		LocationID:  room.LocationID,
		Maintenance: room.Maintenance,
		CreatedAt:   room.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   room.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type equipmentRequest struct {
	Name         string  `json:"name"`
	SerialNumber string  `json:"serial_number"`
	TypeID       *string `json:"type_id"`
	Maintenance  bool    `json:"maintenance"`
}

func (r equipmentRequest) toInput() application.EquipmentInput {
	return application.EquipmentInput{
		Name:         strings.TrimSpace(r.Name),
		SerialNumber: strings.TrimSpace(r.SerialNumber),
		TypeID:       r.TypeID,
		Maintenance:  r.Maintenance,
	}
}

type equipmentResponse struct {
	Equipment equipmentDTO `json:"equipment"`
}

type listEquipmentResponse struct {
	Equipment []equipmentDTO `json:"equipment"`
}

type equipmentDTO struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	SerialNumber string  `json:"serial_number,omitempty"`
	TypeID       *string `json:"type_id,omitempty"`
	Maintenance  bool    `json:"maintenance"`
}

func toEquipmentDTO(eq application.Equipment) equipmentDTO {
	return equipmentDTO{
		ID:           eq.ID,
		Name:         eq.Name,
		SerialNumber: eq.SerialNumber,
		TypeID:       eq.TypeID,
		Maintenance:  eq.Maintenance,
	}
}

type locationRequest struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Description string `json:"description"`
	OnSite      bool   `json:"on_site"`
}

func (r locationRequest) toInput() application.LocationInput {
	return application.LocationInput{
		Name:        strings.TrimSpace(r.Name),
		Address:     strings.TrimSpace(r.Address),
		Description: strings.TrimSpace(r.Description),
		OnSite:      r.OnSite,
	}
}

type locationResponse struct {
	Location locationDTO `json:"location"`
}

type listLocationsResponse struct {
	Locations []locationDTO `json:"locations"`
}

type locationDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Address     string `json:"address,omitempty"`
	Description string `json:"description,omitempty"`
	OnSite      bool   `json:"on_site"`
}

func toLocationDTO(loc application.Location) locationDTO {
	return locationDTO{
		ID:          loc.ID,
		Name:        loc.Name,
		Address:     loc.Address,
		Description: loc.Description,
		OnSite:      loc.OnSite,
	}
}

type roleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type roleResponse struct {
	Role roleDTO `json:"role"`
}

type listRolesResponse struct {
	Roles []roleDTO `json:"roles"`
}

type roleDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	System      bool   `json:"system"`
}

func toRoleDTO(role application.Role) roleDTO {
	return roleDTO{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		System:      role.System,
	}
}
