package grpc

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mvaleed/innkeep/internal/booking"
	"github.com/mvaleed/innkeep/internal/domain"
)

// mapDomainError converts domain errors to gRPC status errors
func mapDomainError(err error) error {
	if err == nil {
		return nil
	}

	if v, ok := booking.AsViolation(err); ok {
		return status.Errorf(codes.InvalidArgument, "%s: %s", v.Rule, v.Message)
	}

	var validationErrs domain.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		return status.Error(codes.InvalidArgument, validationErrs[0].Field+": "+validationErrs[0].Message)
	}

	var validationErr domain.ValidationError
	if errors.As(err, &validationErr) {
		return status.Error(codes.InvalidArgument, validationErr.Field+": "+validationErr.Message)
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, domain.ErrInvalidCredential),
		errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenRevoked):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrRoomsUnavailable):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrVersionMismatch):
		return status.Error(codes.Aborted, err.Error())
	}

	return status.Error(codes.Internal, "internal server error")
}
