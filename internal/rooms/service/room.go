package service

import (
	"context"
	"errors"

	roomserrors "roombook/internal/rooms/errors"
	"roombook/internal/rooms/repository"
	"roombook/internal/rooms/validator"
	"roombook/pkg/config"
	mongodb "roombook/pkg/db/mongo"
	apperrors "roombook/pkg/errors"
	"roombook/pkg/identity"
	"roombook/pkg/model"
	"roombook/pkg/sanitizer"
)

type RoomService interface {
	List(ctx context.Context, filter repository.Filter) ([]*model.Room, error)
	GetByID(ctx context.Context, id int64) (*model.Room, error)
	Create(ctx context.Context, req *model.RoomRequest) (*model.Room, error)
	Update(ctx context.Context, id int64, updates *model.RoomUpdate) (*model.Room, error)
	Delete(ctx context.Context, id int64) error
	ToggleActive(ctx context.Context, id int64) (*model.Room, error)
}

type roomService struct {
	repo      repository.RoomRepository
	validator *validator.RoomValidator
	cfg       *config.Config
}

func NewRoomService(
	repo repository.RoomRepository,
	validator *validator.RoomValidator,
	cfg *config.Config,
) RoomService {
	return &roomService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *roomService) List(ctx context.Context, filter repository.Filter) ([]*model.Room, error) {
	filter.Query = sanitizer.TrimAndNormalize(filter.Query)

	switch filter.Capacity {
	case "", model.CapacitySmall, model.CapacityMedium, model.CapacityLarge:
	default:
		return nil, apperrors.InvalidInput("capacity must be one of: small, medium, large")
	}

	rooms, err := s.repo.List(ctx, filter)
	if err != nil {
		s.cfg.Log.Error("Failed to list rooms", "error", err)
		return nil, s.storeError("Failed to retrieve rooms", err)
	}
	return rooms, nil
}

func (s *roomService) GetByID(ctx context.Context, id int64) (*model.Room, error) {
	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(id, "Failed to retrieve room", err)
	}
	return room, nil
}

func (s *roomService) Create(ctx context.Context, req *model.RoomRequest) (*model.Room, error) {
	caller, err := identity.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	room := &model.Room{
		Title:       req.Title,
		Capacity:    req.Capacity,
		Location:    req.Location,
		Equipment:   req.Equipment,
		Description: req.Description,
		IsActive:    true,
		ColorTag:    req.ColorTag,
	}
	if req.IsActive != nil {
		room.IsActive = *req.IsActive
	}
	s.sanitize(room)

	if err := s.validate(room); err != nil {
		return nil, err
	}
	if err := s.verifyUniqueTitle(ctx, room.Title, 0); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, room); err != nil {
		if errors.Is(err, roomserrors.ErrDuplicateTitle) {
			return nil, apperrors.Conflict(roomserrors.ErrDuplicateTitle.Error())
		}
		s.cfg.Log.Error("Failed to create room", "error", err)
		return nil, s.storeError("Failed to create room", err)
	}

	s.cfg.Log.Info("Room created successfully",
		"id", room.ID,
		"title", room.Title,
		"by", caller.Email(),
	)
	return room, nil
}

func (s *roomService) Update(ctx context.Context, id int64, updates *model.RoomUpdate) (*model.Room, error) {
	caller, err := identity.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(id, "Failed to check room existence", err)
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Room update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeRoomUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return nil, err
	}
	if updates.Title != nil {
		if err := s.verifyUniqueTitle(ctx, merged.Title, id); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		return nil, s.mapError(id, "Failed to update room", err)
	}

	s.cfg.Log.Info("Room updated successfully", "id", id, "by", caller.Email())
	return merged, nil
}

func (s *roomService) Delete(ctx context.Context, id int64) error {
	caller, err := identity.RequireAdmin(ctx)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapError(id, "Failed to delete room", err)
	}

	s.cfg.Log.Info("Room deleted successfully", "id", id, "by", caller.Email())
	return nil
}

func (s *roomService) ToggleActive(ctx context.Context, id int64) (*model.Room, error) {
	caller, err := identity.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(id, "Failed to check room existence", err)
	}

	room.IsActive = !room.IsActive
	if err := s.repo.SetActive(ctx, id, room.IsActive); err != nil {
		return nil, s.mapError(id, "Failed to update room status", err)
	}

	s.cfg.Log.Info("Room status toggled",
		"id", id,
		"is_active", room.IsActive,
		"by", caller.Email(),
	)
	return room, nil
}

func (s *roomService) verifyUniqueTitle(ctx context.Context, title string, excludeID int64) error {
	exists, err := s.repo.ExistsByTitle(ctx, title, excludeID)
	if err != nil {
		s.cfg.Log.Error("Failed to check room title", "title", title, "error", err)
		return s.storeError("Failed to check room title", err)
	}
	if exists {
		return apperrors.Conflict(roomserrors.ErrDuplicateTitle.Error())
	}
	return nil
}

func (s *roomService) mapError(id int64, message string, err error) error {
	switch {
	case errors.Is(err, roomserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Room", id)
	case errors.Is(err, roomserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid room ID")
	case errors.Is(err, roomserrors.ErrDuplicateTitle):
		return apperrors.Conflict(roomserrors.ErrDuplicateTitle.Error())
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return s.storeError(message, err)
}

func (s *roomService) storeError(message string, err error) error {
	if mongodb.IsUnavailable(err) {
		return apperrors.Unavailable("Room store", err)
	}
	return apperrors.Internal(message, err)
}

func (s *roomService) validate(room *model.Room) error {
	if err := s.validator.Validate(room); err != nil {
		s.cfg.Log.Warn("Room validation failed", "title", room.Title, "error", err)
		return apperrors.Validation("Invalid room input", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *roomService) sanitize(room *model.Room) {
	room.Title = sanitizer.NormalizeTitle(room.Title)
	room.Location = sanitizer.TrimAndNormalize(room.Location)
	room.Equipment = sanitizer.NormalizeEquipment(room.Equipment)
	room.Description = sanitizer.NormalizeDescription(room.Description)
	room.ColorTag = sanitizer.NormalizeColorTag(room.ColorTag)
}

func (s *roomService) mergeRoomUpdates(existing *model.Room, updates *model.RoomUpdate) *model.Room {
	merged := *existing

	if updates.Title != nil {
		merged.Title = *updates.Title
	}
	if updates.Capacity != nil {
		merged.Capacity = *updates.Capacity
	}
	if updates.Location != nil {
		merged.Location = *updates.Location
	}
	if updates.Equipment != nil {
		merged.Equipment = *updates.Equipment
	}
	if updates.Description != nil {
		merged.Description = *updates.Description
	}
	if updates.IsActive != nil {
		merged.IsActive = *updates.IsActive
	}
	if updates.ColorTag != nil {
		merged.ColorTag = *updates.ColorTag
	}

	return &merged
}
