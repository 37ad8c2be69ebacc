package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/meeting-planner/internal/persistence"
)

// RoomRepository captures the persistence operations needed for rooms.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) (Room, error)
	UpdateRoom(ctx context.Context, room Room) (Room, error)
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	DeleteRoom(ctx context.Context, id string) error
}

// EquipmentRepository captures the persistence operations needed for equipment.
type EquipmentRepository interface {
	CreateEquipment(ctx context.Context, eq Equipment) (Equipment, error)
	UpdateEquipment(ctx context.Context, eq Equipment) (Equipment, error)
	GetEquipment(ctx context.Context, id string) (Equipment, error)
	ListEquipment(ctx context.Context) ([]Equipment, error)
	DeleteEquipment(ctx context.Context, id string) error
}

// LocationRepository captures the persistence operations needed for locations.
type LocationRepository interface {
	CreateLocation(ctx context.Context, loc Location) (Location, error)
	UpdateLocation(ctx context.Context, loc Location) (Location, error)
	GetLocation(ctx context.Context, id string) (Location, error)
	ListLocations(ctx context.Context) ([]Location, error)
	DeleteLocation(ctx context.Context, id string) error
}

// RoleDirectory captures the persistence operations needed for roles.
type RoleDirectory interface {
	CreateRole(ctx context.Context, role Role) (Role, error)
	UpdateRole(ctx context.Context, role Role) (Role, error)
	GetRole(ctx context.Context, id string) (Role, error)
	GetRoleByName(ctx context.Context, name string) (Role, error)
	ListRoles(ctx context.Context) ([]Role, error)
	DeleteRole(ctx context.Context, id string) error
	CountParticipantsWithRole(ctx context.Context, roleID string) (int, error)
}

// OccupancyLedger answers "what claims this resource at a given instant".
type OccupancyLedger interface {
	// CoveringReservation returns the active reservation covering the instant
	// for the room or equipment item, or ErrNotFound.
	CoveringReservation(ctx context.Context, roomID, equipmentID *string, at time.Time) (Reservation, error)
	// InProgressMeetingForRoom returns the in-progress meeting occupying the
	// room at the instant, or ErrNotFound.
	InProgressMeetingForRoom(ctx context.Context, roomID string, at time.Time) (Meeting, error)
}

// RegistryService manages the static resource catalog: rooms, equipment,
// locations, and the participant role directory.
type RegistryService struct {
	rooms       RoomRepository
	equipment   EquipmentRepository
	locations   LocationRepository
	roles       RoleDirectory
	occupancy   OccupancyLedger
	notifier    Notifier
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRegistryService wires dependencies for catalog operations.
func NewRegistryService(rooms RoomRepository, equipment EquipmentRepository, locations LocationRepository, roles RoleDirectory, occupancy OccupancyLedger, notifier Notifier, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RegistryService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RegistryService{
		rooms:       rooms,
		equipment:   equipment,
		locations:   locations,
		roles:       roles,
		occupancy:   occupancy,
		notifier:    notifier,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *RegistryService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RegistryService", operation, attrs...)
}

// CreateRoom validates input and persists a new room for administrators.
func (s *RegistryService) CreateRoom(ctx context.Context, principal Principal, input RoomInput) (room Room, err error) {
	logger := s.loggerWith(ctx, "CreateRoom", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_id", room.ID).InfoContext(ctx, "room created")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.Capacity <= 0 {
		vErr.add("capacity", "capacity must be positive")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	room = Room{
		ID:          s.idGenerator(),
		Name:        strings.TrimSpace(input.Name),
		Floor:       input.Floor,
		Capacity:    input.Capacity,
		LocationID:  input.LocationID,
		Maintenance: input.Maintenance,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	room, err = s.rooms.CreateRoom(ctx, room)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	if s.notifier != nil {
		if nErr := s.notifier.Notify(ctx, principal.UserID, "Room created", fmt.Sprintf("Room %q is now available for booking.", room.Name)); nErr != nil {
			logger.WarnContext(ctx, "room-created notification failed", "error", nErr)
		}
	}
	return
}

// UpdateRoom validates input and updates an existing room for administrators.
func (s *RegistryService) UpdateRoom(ctx context.Context, principal Principal, roomID string, input RoomInput) (room Room, err error) {
	logger := s.loggerWith(ctx, "UpdateRoom", "principal_id", principal.UserID, "room_id", roomID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update room", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	var existing Room
	existing, err = s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.Capacity <= 0 {
		vErr.add("capacity", "capacity must be positive")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.Name = strings.TrimSpace(input.Name)
	updated.Floor = input.Floor
	updated.Capacity = input.Capacity
	updated.LocationID = input.LocationID
	updated.Maintenance = input.Maintenance
	updated.UpdatedAt = s.now()

	room, err = s.rooms.UpdateRoom(ctx, updated)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// GetRoom returns a single room.
func (s *RegistryService) GetRoom(ctx context.Context, id string) (Room, error) {
	room, err := s.rooms.GetRoom(ctx, id)
	if err != nil {
		return Room{}, mapRepoError(err)
	}
	return room, nil
}

// ListRooms enumerates the room catalog.
func (s *RegistryService) ListRooms(ctx context.Context) ([]Room, error) {
	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return rooms, nil
}

// DeleteRoom removes a room for administrators.
func (s *RegistryService) DeleteRoom(ctx context.Context, principal Principal, id string) error {
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if err := s.rooms.DeleteRoom(ctx, id); err != nil {
		return mapRepoError(err)
	}
	return nil
}

// RoomStatus derives the availability of a room at the given instant. A
// manual maintenance flag short-circuits the computation; otherwise an
// in-progress meeting occupying the room wins over a planned reservation,
// and either yields reserved.
func (s *RegistryService) RoomStatus(ctx context.Context, roomID string, at time.Time) (RoomStatus, error) {
	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return "", mapRepoError(err)
	}
	if room.Maintenance {
		return RoomMaintenance, nil
	}
	if s.occupancy == nil {
		return RoomFree, nil
	}

	if _, err := s.occupancy.InProgressMeetingForRoom(ctx, roomID, at); err == nil {
		return RoomReserved, nil
	} else if !errors.Is(err, ErrNotFound) && !errors.Is(err, persistence.ErrNotFound) {
		return "", err
	}

	if _, err := s.occupancy.CoveringReservation(ctx, &roomID, nil, at); err == nil {
		return RoomReserved, nil
	} else if !errors.Is(err, ErrNotFound) && !errors.Is(err, persistence.ErrNotFound) {
		return "", err
	}

	return RoomFree, nil
}

// CreateEquipment validates input and persists a new equipment item.
func (s *RegistryService) CreateEquipment(ctx context.Context, principal Principal, input EquipmentInput) (Equipment, error) {
	if !principal.IsAdmin {
		return Equipment{}, ErrUnauthorized
	}
	if strings.TrimSpace(input.Name) == "" {
		vErr := &ValidationError{}
		vErr.add("name", "name is required")
		return Equipment{}, vErr
	}
	now := s.now()
	eq := Equipment{
		ID:           s.idGenerator(),
		Name:         strings.TrimSpace(input.Name),
		SerialNumber: strings.TrimSpace(input.SerialNumber),
		TypeID:       input.TypeID,
		Maintenance:  input.Maintenance,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	eq, err := s.equipment.CreateEquipment(ctx, eq)
	if err != nil {
		return Equipment{}, mapRepoError(err)
	}
	return eq, nil
}

// UpdateEquipment updates an existing equipment item.
func (s *RegistryService) UpdateEquipment(ctx context.Context, principal Principal, id string, input EquipmentInput) (Equipment, error) {
	if !principal.IsAdmin {
		return Equipment{}, ErrUnauthorized
	}
	existing, err := s.equipment.GetEquipment(ctx, id)
	if err != nil {
		return Equipment{}, mapRepoError(err)
	}
	if strings.TrimSpace(input.Name) == "" {
		vErr := &ValidationError{}
		vErr.add("name", "name is required")
		return Equipment{}, vErr
	}
	existing.Name = strings.TrimSpace(input.Name)
	existing.SerialNumber = strings.TrimSpace(input.SerialNumber)
	existing.TypeID = input.TypeID
	existing.Maintenance = input.Maintenance
	existing.UpdatedAt = s.now()

	eq, err := s.equipment.UpdateEquipment(ctx, existing)
	if err != nil {
		return Equipment{}, mapRepoError(err)
	}
	return eq, nil
}

// ListEquipment enumerates the equipment catalog.
func (s *RegistryService) ListEquipment(ctx context.Context) ([]Equipment, error) {
	items, err := s.equipment.ListEquipment(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return items, nil
}

// EquipmentStatus derives the availability of an equipment item at the
// instant, mirroring RoomStatus without the meeting precedence rule.
func (s *RegistryService) EquipmentStatus(ctx context.Context, equipmentID string, at time.Time) (RoomStatus, error) {
	eq, err := s.equipment.GetEquipment(ctx, equipmentID)
	if err != nil {
		return "", mapRepoError(err)
	}
	if eq.Maintenance {
		return RoomMaintenance, nil
	}
	if s.occupancy == nil {
		return RoomFree, nil
	}
	if _, err := s.occupancy.CoveringReservation(ctx, nil, &equipmentID, at); err == nil {
		return RoomReserved, nil
	} else if !errors.Is(err, ErrNotFound) && !errors.Is(err, persistence.ErrNotFound) {
		return "", err
	}
	return RoomFree, nil
}

// CreateLocation persists a new location for administrators.
func (s *RegistryService) CreateLocation(ctx context.Context, principal Principal, input LocationInput) (Location, error) {
	if !principal.IsAdmin {
		return Location{}, ErrUnauthorized
	}
	if strings.TrimSpace(input.Name) == "" {
		vErr := &ValidationError{}
		vErr.add("name", "name is required")
		return Location{}, vErr
	}
	now := s.now()
	loc := Location{
		ID:          s.idGenerator(),
		Name:        strings.TrimSpace(input.Name),
		Address:     strings.TrimSpace(input.Address),
		Description: input.Description,
		OnSite:      input.OnSite,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	loc, err := s.locations.CreateLocation(ctx, loc)
	if err != nil {
		return Location{}, mapRepoError(err)
	}
	return loc, nil
}

// ListLocations enumerates the location catalog.
func (s *RegistryService) ListLocations(ctx context.Context) ([]Location, error) {
	locs, err := s.locations.ListLocations(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return locs, nil
}

// CreateRole adds a role to the directory. Role names are unique, which
// keeps "host" a global singleton.
func (s *RegistryService) CreateRole(ctx context.Context, principal Principal, name, description string) (Role, error) {
	if !principal.IsAdmin {
		return Role{}, ErrUnauthorized
	}
	name = strings.TrimSpace(name)
	if name == "" {
		vErr := &ValidationError{}
		vErr.add("name", "name is required")
		return Role{}, vErr
	}
	role := Role{
		ID:          s.idGenerator(),
		Name:        name,
		Description: description,
	}
	role, err := s.roles.CreateRole(ctx, role)
	if err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return Role{}, &DuplicateError{Field: "role", Value: name}
		}
		return Role{}, mapRepoError(err)
	}
	return role, nil
}

// UpdateRole renames a role. System-defined roles cannot be edited while
// participants reference them.
func (s *RegistryService) UpdateRole(ctx context.Context, principal Principal, roleID, name, description string) (Role, error) {
	if !principal.IsAdmin {
		return Role{}, ErrUnauthorized
	}
	role, err := s.roles.GetRole(ctx, roleID)
	if err != nil {
		return Role{}, mapRepoError(err)
	}
	if role.System {
		inUse, err := s.roleInUse(ctx, roleID)
		if err != nil {
			return Role{}, err
		}
		if inUse {
			return Role{}, &PreconditionError{Reason: fmt.Sprintf("system role %q is in use and cannot be edited", role.Name)}
		}
	}
	role.Name = strings.TrimSpace(name)
	role.Description = description
	role, err = s.roles.UpdateRole(ctx, role)
	if err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			return Role{}, &DuplicateError{Field: "role", Value: role.Name}
		}
		return Role{}, mapRepoError(err)
	}
	return role, nil
}

// DeleteRole removes a role. System-defined roles cannot be deleted while
// participants reference them.
func (s *RegistryService) DeleteRole(ctx context.Context, principal Principal, roleID string) error {
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	role, err := s.roles.GetRole(ctx, roleID)
	if err != nil {
		return mapRepoError(err)
	}
	inUse, err := s.roleInUse(ctx, roleID)
	if err != nil {
		return err
	}
	if inUse {
		return &PreconditionError{Reason: fmt.Sprintf("role %q is in use and cannot be deleted", role.Name)}
	}
	return mapRepoError(s.roles.DeleteRole(ctx, roleID))
}

// ListRoles enumerates the role directory.
func (s *RegistryService) ListRoles(ctx context.Context) ([]Role, error) {
	roles, err := s.roles.ListRoles(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return roles, nil
}

func (s *RegistryService) roleInUse(ctx context.Context, roleID string) (bool, error) {
	count, err := s.roles.CountParticipantsWithRole(ctx, roleID)
	if err != nil {
		return false, mapRepoError(err)
	}
	return count > 0, nil
}

func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("reference", "related record does not exist")
		return vErr
	}
	return err
}
