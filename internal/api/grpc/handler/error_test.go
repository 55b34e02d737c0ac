package handler

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/academia-moderation/internal/model"
)

func TestToStatus(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	tests := []struct {
		name     string
		in       error
		wantCode codes.Code
		wantMsg  string
	}{
		{
			name:     "validation",
			in:       model.NewErrValidation("limit must be 100 or less"),
			wantCode: codes.InvalidArgument,
			wantMsg:  "limit must be 100 or less",
		},
		{
			name:     "last admin",
			in:       model.NewErrLastAdmin(),
			wantCode: codes.FailedPrecondition,
			wantMsg:  "cannot demote the last admin",
		},
		{
			name:     "unauthenticated",
			in:       model.NewErrUnauthenticated("missing access token"),
			wantCode: codes.Unauthenticated,
			wantMsg:  "missing access token",
		},
		{
			name:     "forbidden",
			in:       model.NewErrForbidden(),
			wantCode: codes.PermissionDenied,
			wantMsg:  "admin access required",
		},
		{
			name:     "not found",
			in:       model.NewErrMaterialNotFound(id),
			wantCode: codes.NotFound,
			wantMsg:  "material " + id.String() + " not found",
		},
		{
			name:     "conflict",
			in:       model.NewErrAlreadyVerified(id),
			wantCode: codes.AlreadyExists,
			wantMsg:  "material " + id.String() + " is already approved",
		},
		{
			name:     "unavailable hides cause",
			in:       model.NewErrUnavailable(errors.New("dial tcp 10.0.0.5:5432")),
			wantCode: codes.Unavailable,
			wantMsg:  "moderation store unavailable",
		},
		{
			name:     "other -> Internal",
			in:       errors.New("boom"),
			wantCode: codes.Internal,
			wantMsg:  "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			st, ok := status.FromError(ToStatus(tt.in))
			assert.True(t, ok)
			assert.Equal(t, tt.wantCode, st.Code())
			assert.Equal(t, tt.wantMsg, st.Message())
		})
	}
}

func TestToStatus_FieldViolations(t *testing.T) {
	t.Parallel()

	err := ToStatus(model.NewErrValidation("", model.FieldError{Field: "reason", Message: "reason must be at least 10 characters in length"}))

	st, ok := status.FromError(err)
	require.True(t, ok)
	require.Len(t, st.Details(), 1)

	badRequest, ok := st.Details()[0].(*errdetails.BadRequest)
	require.True(t, ok)
	require.Len(t, badRequest.GetFieldViolations(), 1)
	assert.Equal(t, "reason", badRequest.GetFieldViolations()[0].GetField())
}
