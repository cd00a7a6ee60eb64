package service

import (
	"errors"
	"fmt"

	"github.com/wb-go/wbf/ginext"

	"eventnest/internal/certificate"
	"eventnest/internal/dto"
	"eventnest/internal/model"
	"eventnest/internal/policy"
	"eventnest/internal/repo"
)

func (s *service) GenerateCertificates(ctx *ginext.Context) {
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
		dto.ForbiddenError(ctx, "You can only generate certificates for your own events")
		return
	}

	res, err := s.certificates.Generate(ctx, eventID)
	if err != nil {
		s.log.Error().Err(err).Int64("event_id", eventID).Msg("certificate generation failed")
		dto.InternalServerError(ctx)
		return
	}

	dto.SuccessCreatedResponse(ctx, dto.GenerateCertificatesResponse{
		Message:       res.Message,
		Generated:     res.Generated,
		Failed:        res.Failed,
		TotalEligible: res.TotalEligible,
	})
}

func (s *service) MyCertificates(ctx *ginext.Context) {
	uc := currentUser(ctx)

	certs, err := s.repo.GetCertificatesByUserID(ctx, uc.ID)
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", uc.ID).Msg("failed to list certificates")
		dto.InternalServerError(ctx)
		return
	}

	dto.SuccessResponse(ctx, certs)
}

func (s *service) DownloadCertificate(ctx *ginext.Context) {
	uc := currentUser(ctx)

	certID, ok := pathID(ctx, "id")
	if !ok {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid certificate ID")
		return
	}

	detail, path, err := s.certificates.Download(ctx, certID, uc)
	if err != nil {
		switch {
		case errors.Is(err, certificate.ErrCertificateNotFound):
			dto.NotFoundError(ctx, dto.CertificateNotFound, "Certificate not found")
		case errors.Is(err, certificate.ErrForbidden):
			dto.ForbiddenError(ctx, "You cannot download this certificate")
		case errors.Is(err, certificate.ErrArtifactMissing):
			dto.InternalServerError(ctx)
		default:
			s.log.Error().Err(err).Int64("certificate_id", certID).Msg("failed to resolve certificate download")
			dto.InternalServerError(ctx)
		}
		return
	}

	filename := fmt.Sprintf("Certificate-%d.pdf", detail.ID)
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.File(path)
}

// VerifyCertificate is the public verification endpoint. It never errors,
// it answers valid or not.
func (s *service) VerifyCertificate(ctx *ginext.Context) {
	certID, ok := pathID(ctx, "id")
	if !ok {
		dto.SuccessResponse(ctx, dto.VerifyCertificateResponse{
			Valid:   false,
			Message: "Certificate not found",
		})
		return
	}

	detail, err := s.certificates.Verify(ctx, certID)
	if err != nil {
		if !errors.Is(err, certificate.ErrCertificateNotFound) {
			s.log.Error().Err(err).Int64("certificate_id", certID).Msg("failed to verify certificate")
		}
		dto.SuccessResponse(ctx, dto.VerifyCertificateResponse{
			Valid:   false,
			Message: "Certificate not found",
		})
		return
	}

	dto.SuccessResponse(ctx, dto.VerifyCertificateResponse{
		Valid:       true,
		Certificate: toPublicCertificate(detail),
	})
}

func toPublicCertificate(d *model.CertificateDetail) *dto.PublicCertificateResponse {
	return &dto.PublicCertificateResponse{
		ID:            d.ID,
		RecipientName: d.RecipientName,
		EventTitle:    d.EventTitle,
		EventDate:     d.EventDate,
		EventLocation: d.EventLocation,
		Organizer:     d.OrganizerName,
		IssuedAt:      d.IssuedAt,
	}
}
