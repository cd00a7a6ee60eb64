package service

import (
	"errors"
	"fmt"

	"github.com/wb-go/wbf/ginext"

	"eventnest/internal/dto"
	"eventnest/internal/repo"
	"eventnest/pkg/validator"
)

func (s *service) ListUsers(ctx *ginext.Context) {
	users, err := s.repo.GetAllUsers(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list users")
		dto.InternalServerError(ctx)
		return
	}

	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}

	dto.SuccessResponse(ctx, out)
}

func (s *service) UpdateUserRole(ctx *ginext.Context) {
	userID, ok := pathID(ctx, "id")
	if !ok {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid user ID")
		return
	}

	var req dto.UpdateRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldBadFormat, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	user, err := s.repo.UpdateUserRole(ctx, userID, req.Role)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			dto.NotFoundError(ctx, dto.UserNotFound, "User not found")
			return
		}
		s.log.Error().Err(err).Int64("user_id", userID).Msg("failed to update user role")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Int64("user_id", userID).Str("role", req.Role).Msg("user role updated")
	dto.SuccessResponse(ctx, toUserResponse(user))
}

func (s *service) ListAllEvents(ctx *ginext.Context) {
	events, err := s.repo.GetAllEvents(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list all events")
		dto.InternalServerError(ctx)
		return
	}

	dto.SuccessResponse(ctx, events)
}
