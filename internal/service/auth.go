package service

import (
	"errors"
	"fmt"

	"github.com/wb-go/wbf/ginext"
	"golang.org/x/crypto/bcrypt"

	"eventnest/internal/dto"
	"eventnest/internal/model"
	"eventnest/internal/repo"
	"eventnest/internal/token"
	"eventnest/pkg/validator"
)

func (s *service) Register(ctx *ginext.Context) {
	var req dto.RegisterUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldBadFormat, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to hash password")
		dto.InternalServerError(ctx)
		return
	}

	id, err := s.repo.CreateUser(ctx, req.Name, req.Email, string(hash), string(model.RoleStudent))
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			dto.BadResponseError(ctx, dto.EmailDuplicate, "Email is already registered")
			return
		}
		s.log.Error().Err(err).Msg("failed to create user")
		dto.InternalServerError(ctx)
		return
	}

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", id).Msg("failed to load created user")
		dto.InternalServerError(ctx)
		return
	}

	tok, err := token.Issue(user, s.jwtSecret)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to sign token")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Int64("user_id", id).Str("email", user.Email).Msg("user registered")

	dto.SuccessCreatedResponse(ctx, dto.AuthResponse{
		Token: tok,
		User:  toUserResponse(user),
	})
}

func (s *service) Login(ctx *ginext.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldBadFormat, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}

	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			dto.UnauthorizedError(ctx, "Invalid email or password")
			return
		}
		s.log.Error().Err(err).Msg("failed to load user by email")
		dto.InternalServerError(ctx)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		dto.UnauthorizedError(ctx, "Invalid email or password")
		return
	}

	tok, err := token.Issue(user, s.jwtSecret)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to sign token")
		dto.InternalServerError(ctx)
		return
	}

	dto.SuccessResponse(ctx, dto.AuthResponse{
		Token: tok,
		User:  toUserResponse(user),
	})
}

func (s *service) Me(ctx *ginext.Context) {
	uc := currentUser(ctx)
	if uc == nil {
		dto.UnauthorizedError(ctx, "Authentication required")
		return
	}

	user, err := s.repo.GetUserByID(ctx, uc.ID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			dto.NotFoundError(ctx, dto.UserNotFound, "User not found")
			return
		}
		s.log.Error().Err(err).Int64("user_id", uc.ID).Msg("failed to load user")
		dto.InternalServerError(ctx)
		return
	}

	dto.SuccessResponse(ctx, toUserResponse(user))
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
