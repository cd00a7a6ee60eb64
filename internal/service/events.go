package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/wb-go/wbf/ginext"

	"eventnest/internal/dto"
	"eventnest/internal/model"
	"eventnest/internal/policy"
	"eventnest/internal/repo"
	"eventnest/pkg/validator"
)

func (s *service) ListEvents(ctx *ginext.Context) {
	events, err := s.repo.GetUpcomingEvents(ctx, ctx.Query("category"), ctx.Query("search"))
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list events")
		dto.InternalServerError(ctx)
		return
	}

	dto.SuccessResponse(ctx, events)
}

func (s *service) GetEvent(ctx *ginext.Context) {
	eventID, ok := pathID(ctx, "id")
	if !ok {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repo.ErrEventNotFound) {
			dto.EventNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Int64("event_id", eventID).Msg("failed to load event")
		dto.InternalServerError(ctx)
		return
	}

	dto.SuccessResponse(ctx, event)
}

func (s *service) CreateEvent(ctx *ginext.Context) {
	uc := currentUser(ctx)

	var req dto.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldBadFormat, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	event := &model.Event{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		OrganizerID: uc.ID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	id, err := s.repo.CreateEvent(ctx, event)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create event in DB")
		dto.InternalServerError(ctx)
		return
	}
	event.ID = id

	s.log.Info().Int64("event_id", id).Int64("organizer_id", uc.ID).Msg("event created")
	dto.SuccessCreatedResponse(ctx, event)
}

func (s *service) UpdateEvent(ctx *ginext.Context) {
	uc := currentUser(ctx)

	eventID, ok := pathID(ctx, "id")
	if !ok {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	var req dto.UpdateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldBadFormat, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repo.ErrEventNotFound) {
			dto.EventNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Int64("event_id", eventID).Msg("failed to load event")
		dto.InternalServerError(ctx)
		return
	}

	if !policy.CanManageEvent(uc.ID, uc.Role, event.OrganizerID) {
		dto.ForbiddenError(ctx, "You can only manage your own events")
		return
	}

	event.Title = req.Title
	event.Description = req.Description
	event.Date = req.Date
	event.Location = req.Location
	event.Category = req.Category
	event.ImageURL = req.ImageURL
	event.UpdatedAt = time.Now()

	if err := s.repo.UpdateEvent(ctx, event); err != nil {
		s.log.Error().Err(err).Int64("event_id", eventID).Msg("failed to update event")
		dto.InternalServerError(ctx)
		return
	}

	dto.SuccessResponse(ctx, event)
}

func (s *service) DeleteEvent(ctx *ginext.Context) {
	uc := currentUser(ctx)

	eventID, ok := pathID(ctx, "id")
	if !ok {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repo.ErrEventNotFound) {
			dto.EventNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Int64("event_id", eventID).Msg("failed to load event")
		dto.InternalServerError(ctx)
		return
	}

	if !policy.CanManageEvent(uc.ID, uc.Role, event.OrganizerID) {
		dto.ForbiddenError(ctx, "You can only manage your own events")
		return
	}

	if err := s.repo.DeleteEventCascadeTx(ctx, eventID); err != nil {
		s.log.Error().Err(err).Int64("event_id", eventID).Msg("failed to delete event")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Int64("event_id", eventID).Msg("event deleted")
	dto.SuccessResponse(ctx, map[string]string{"message": "Event deleted successfully"})
}

func (s *service) MyEvents(ctx *ginext.Context) {
	uc := currentUser(ctx)

	events, err := s.repo.GetEventsByOrganizer(ctx, uc.ID)
	if err != nil {
		s.log.Error().Err(err).Int64("organizer_id", uc.ID).Msg("failed to list organizer events")
		dto.InternalServerError(ctx)
		return
	}

	dto.SuccessResponse(ctx, events)
}
