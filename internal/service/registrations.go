package service

import (
	"errors"
	"fmt"

	"github.com/wb-go/wbf/ginext"

	"eventnest/internal/dto"
	"eventnest/internal/policy"
	"eventnest/internal/registration"
	"eventnest/internal/repo"
	"eventnest/internal/token"
	"eventnest/pkg/validator"
)

func (s *service) RegisterForEvent(ctx *ginext.Context) {
	uc := currentUser(ctx)

	eventID, ok := pathID(ctx, "id")
	if !ok {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	reg, err := s.registrations.Register(ctx, uc.ID, eventID)
	if err != nil {
		switch {
		case errors.Is(err, registration.ErrEventNotFound):
			dto.EventNotFoundError(ctx)
		case errors.Is(err, registration.ErrAlreadyRegistered):
			dto.RegistrationDuplicateError(ctx)
		default:
			s.log.Error().Err(err).Int64("event_id", eventID).Msg("failed to register for event")
			dto.InternalServerError(ctx)
		}
		return
	}

	dto.SuccessCreatedResponse(ctx, reg)
}

func (s *service) UnregisterFromEvent(ctx *ginext.Context) {
	uc := currentUser(ctx)

	eventID, ok := pathID(ctx, "id")
	if !ok {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	if err := s.registrations.Unregister(ctx, uc.ID, eventID); err != nil {
		switch {
		case errors.Is(err, registration.ErrRegistrationNotFound):
			dto.RegistrationNotFoundError(ctx)
		case errors.Is(err, registration.ErrAlreadyCheckedIn):
			dto.BadResponseError(ctx, dto.AlreadyCheckedIn, "Cannot unregister after checking in")
		default:
			s.log.Error().Err(err).Int64("event_id", eventID).Msg("failed to unregister")
			dto.InternalServerError(ctx)
		}
		return
	}

	dto.SuccessResponse(ctx, map[string]string{"message": "Unregistered successfully"})
}

func (s *service) MyRegistrations(ctx *ginext.Context) {
	uc := currentUser(ctx)

	regs, err := s.repo.GetRegistrationsByUserID(ctx, uc.ID)
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", uc.ID).Msg("failed to list registrations")
		dto.InternalServerError(ctx)
		return
	}

	dto.SuccessResponse(ctx, regs)
}

// GetTicket returns one registration with its event details, for the ticket
// view. The owner, the event's organizer and admins may read it.
func (s *service) GetTicket(ctx *ginext.Context) {
	uc := currentUser(ctx)

	regID, ok := pathID(ctx, "id")
	if !ok {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid registration ID")
		return
	}

	reg, err := s.repo.GetRegistrationByID(ctx, regID)
	if err != nil {
		if errors.Is(err, repo.ErrRegistrationNotFound) {
			dto.RegistrationNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Int64("registration_id", regID).Msg("failed to load registration")
		dto.InternalServerError(ctx)
		return
	}

	if reg.UserID != uc.ID {
		event, err := s.repo.GetEventByID(ctx, reg.EventID)
		if err != nil {
			s.log.Error().Err(err).Int64("event_id", reg.EventID).Msg("failed to load event for ticket")
			dto.InternalServerError(ctx)
			return
		}
		if !policy.CanManageEvent(uc.ID, uc.Role, event.OrganizerID) {
			dto.ForbiddenError(ctx, "You cannot view this ticket")
			return
		}
	}

	dto.SuccessResponse(ctx, reg)
}

func (s *service) EventRegistrations(ctx *ginext.Context) {
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
		dto.ForbiddenError(ctx, "You can only view registrations for your own events")
		return
	}

	regs, err := s.repo.GetRegistrationsByEventID(ctx, eventID)
	if err != nil {
		s.log.Error().Err(err).Int64("event_id", eventID).Msg("failed to list event registrations")
		dto.InternalServerError(ctx)
		return
	}

	dto.SuccessResponse(ctx, regs)
}

func (s *service) AttendanceStats(ctx *ginext.Context) {
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
		dto.ForbiddenError(ctx, "You can only view stats for your own events")
		return
	}

	total, err := s.repo.CountRegistrations(ctx, eventID)
	if err != nil {
		s.log.Error().Err(err).Int64("event_id", eventID).Msg("failed to count registrations")
		dto.InternalServerError(ctx)
		return
	}

	checkedIn, err := s.repo.CountCheckedIn(ctx, eventID)
	if err != nil {
		s.log.Error().Err(err).Int64("event_id", eventID).Msg("failed to count check-ins")
		dto.InternalServerError(ctx)
		return
	}

	stats := dto.AttendanceStatsResponse{
		TotalRegistrations: total,
		CheckedIn:          checkedIn,
		Pending:            total - checkedIn,
	}
	if total > 0 {
		stats.AttendanceRate = float64(checkedIn) / float64(total) * 100
	}

	dto.SuccessResponse(ctx, stats)
}

// VerifyQR resolves a scanned ticket without checking it in, so staff can see
// who the ticket belongs to before committing.
func (s *service) VerifyQR(ctx *ginext.Context) {
	uc := currentUser(ctx)

	eventID, ok := pathID(ctx, "id")
	if !ok {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	if !s.authorizeEventStaff(ctx, uc, eventID) {
		return
	}

	var req dto.TicketCodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldBadFormat, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	reg, alreadyCheckedIn, err := s.registrations.VerifyTicket(ctx, eventID, req.TicketCode)
	if err != nil {
		if errors.Is(err, registration.ErrRegistrationNotFound) {
			dto.NotFoundError(ctx, dto.TicketNotFound, "Ticket not found for this event")
			return
		}
		s.log.Error().Err(err).Int64("event_id", eventID).Msg("failed to verify ticket")
		dto.InternalServerError(ctx)
		return
	}

	dto.SuccessResponse(ctx, dto.VerifyTicketResponse{
		Valid:            true,
		Registration:     reg,
		AlreadyCheckedIn: alreadyCheckedIn,
		CheckedInAt:      reg.CheckedInAt,
	})
}

func (s *service) CheckInQR(ctx *ginext.Context) {
	uc := currentUser(ctx)

	eventID, ok := pathID(ctx, "id")
	if !ok {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid event ID")
		return
	}

	if !s.authorizeEventStaff(ctx, uc, eventID) {
		return
	}

	var req dto.TicketCodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldBadFormat, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	reg, err := s.registrations.CheckIn(ctx, eventID, req.TicketCode)
	if err != nil {
		switch {
		case errors.Is(err, registration.ErrRegistrationNotFound):
			dto.NotFoundError(ctx, dto.TicketNotFound, "Ticket not found for this event")
		case errors.Is(err, registration.ErrAlreadyCheckedIn):
			ctx.JSON(400, dto.Response{
				Status: "error",
				Error: &dto.Error{
					Code: dto.AlreadyCheckedIn,
					Desc: "This ticket has already been used to check in",
				},
				Data: dto.CheckInResponse{
					Message:      "Already checked in",
					Registration: reg,
					CheckedInAt:  reg.CheckedInAt,
				},
			})
		default:
			s.log.Error().Err(err).Int64("event_id", eventID).Msg("failed to check in")
			dto.InternalServerError(ctx)
		}
		return
	}

	dto.SuccessResponse(ctx, dto.CheckInResponse{
		Success:      true,
		Message:      "Checked in successfully",
		Registration: reg,
		CheckedInAt:  reg.CheckedInAt,
	})
}

// MarkAttended is the manual check-in by registration id, used from the
// organizer's attendee list.
func (s *service) MarkAttended(ctx *ginext.Context) {
	uc := currentUser(ctx)

	regID, ok := pathID(ctx, "id")
	if !ok {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid registration ID")
		return
	}

	reg, err := s.repo.GetRegistrationByID(ctx, regID)
	if err != nil {
		if errors.Is(err, repo.ErrRegistrationNotFound) {
			dto.RegistrationNotFoundError(ctx)
			return
		}
		s.log.Error().Err(err).Int64("registration_id", regID).Msg("failed to load registration")
		dto.InternalServerError(ctx)
		return
	}

	if !s.authorizeEventStaff(ctx, uc, reg.EventID) {
		return
	}

	updated, err := s.registrations.MarkAttended(ctx, regID)
	if err != nil {
		if errors.Is(err, registration.ErrAlreadyCheckedIn) {
			ctx.JSON(400, dto.Response{
				Status: "error",
				Error: &dto.Error{
					Code: dto.AlreadyCheckedIn,
					Desc: "Registration is already marked as attended",
				},
				Data: map[string]any{"checked_in_at": updated.CheckedInAt},
			})
			return
		}
		s.log.Error().Err(err).Int64("registration_id", regID).Msg("failed to mark attended")
		dto.InternalServerError(ctx)
		return
	}

	dto.SuccessResponse(ctx, updated)
}

// authorizeEventStaff loads the event and verifies the caller may run
// check-in for it. It writes the error response itself and reports whether
// the handler may continue.
func (s *service) authorizeEventStaff(ctx *ginext.Context, uc *token.UserContext, eventID int64) bool {
	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repo.ErrEventNotFound) {
			dto.EventNotFoundError(ctx)
			return false
		}
		s.log.Error().Err(err).Int64("event_id", eventID).Msg("failed to load event")
		dto.InternalServerError(ctx)
		return false
	}

	if !policy.CanManageEvent(uc.ID, uc.Role, event.OrganizerID) {
		dto.ForbiddenError(ctx, "You can only run check-in for your own events")
		return false
	}
	return true
}
