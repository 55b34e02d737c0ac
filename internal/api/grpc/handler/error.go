package handler

import (
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/academia-moderation/internal/model"
)

// ToStatus converts err into a gRPC status error. Validation failures carry
// their field violations as BadRequest details.
func ToStatus(err error) error {
	var e *model.Error
	if !errors.As(err, &e) {
		return status.Error(codes.Internal, "internal server error")
	}

	code := codeOf(e.Kind)
	switch code {
	case codes.Internal:
		return status.Error(code, "internal server error")
	case codes.Unavailable:
		return status.Error(code, "moderation store unavailable")
	}

	st := status.New(code, e.Message)
	if len(e.Fields) == 0 {
		return st.Err()
	}

	violations := make([]*errdetails.BadRequest_FieldViolation, 0, len(e.Fields))
	for _, f := range e.Fields {
		violations = append(violations, &errdetails.BadRequest_FieldViolation{
			Field:       f.Field,
			Description: f.Message,
		})
	}
	detailed, detailErr := st.WithDetails(&errdetails.BadRequest{FieldViolations: violations})
	if detailErr != nil {
		return st.Err()
	}
	return detailed.Err()
}

func codeOf(kind model.ErrorKind) codes.Code {
	switch kind {
	case model.KindValidation:
		return codes.InvalidArgument
	case model.KindInvalidOperation:
		return codes.FailedPrecondition
	case model.KindUnauthenticated:
		return codes.Unauthenticated
	case model.KindForbidden:
		return codes.PermissionDenied
	case model.KindNotFound:
		return codes.NotFound
	case model.KindConflict:
		return codes.AlreadyExists
	case model.KindUnavailable:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}
