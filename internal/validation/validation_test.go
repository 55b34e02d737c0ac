package validation

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/academia-moderation/internal/model"
)

func intPtr(v int) *int {
	return &v
}

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()

	var e *model.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, model.KindValidation, e.Kind)

	fields := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		fields = append(fields, f.Field)
	}
	return fields
}

func TestValidator_Struct(t *testing.T) {
	v := New()
	id := uuid.New()
	longNotes := strings.Repeat("n", 1001)
	okNotes := "Scanned cleanly"

	tests := []struct {
		name       string
		input      any
		wantFields []string
	}{
		{
			name:  "approve",
			input: model.ApproveMaterialCommand{MaterialID: id, AdminNotes: &okNotes},
		},
		{
			name:       "approve without id",
			input:      model.ApproveMaterialCommand{},
			wantFields: []string{"materialId"},
		},
		{
			name:       "approve notes too long",
			input:      model.ApproveMaterialCommand{MaterialID: id, AdminNotes: &longNotes},
			wantFields: []string{"adminNotes"},
		},
		{
			name:  "reject",
			input: model.RejectMaterialCommand{MaterialID: id, Reason: "Duplicate upload"},
		},
		{
			name:       "reject reason too short",
			input:      model.RejectMaterialCommand{MaterialID: id, Reason: "dup"},
			wantFields: []string{"reason"},
		},
		{
			name:       "reject reason too long",
			input:      model.RejectMaterialCommand{MaterialID: id, Reason: strings.Repeat("r", 501)},
			wantFields: []string{"reason"},
		},
		{
			name:  "bulk approve without reason",
			input: model.BulkUpdateCommand{MaterialIDs: []uuid.UUID{id}, Action: model.BulkActionApprove},
		},
		{
			name:       "bulk reject without reason",
			input:      model.BulkUpdateCommand{MaterialIDs: []uuid.UUID{id}, Action: model.BulkActionReject},
			wantFields: []string{"reason"},
		},
		{
			name:       "bulk empty",
			input:      model.BulkUpdateCommand{MaterialIDs: []uuid.UUID{}, Action: model.BulkActionApprove},
			wantFields: []string{"materialIds"},
		},
		{
			name:       "bulk duplicates",
			input:      model.BulkUpdateCommand{MaterialIDs: []uuid.UUID{id, id}, Action: model.BulkActionApprove},
			wantFields: []string{"materialIds"},
		},
		{
			name:       "bulk unknown action",
			input:      model.BulkUpdateCommand{MaterialIDs: []uuid.UUID{id}, Action: "archive"},
			wantFields: []string{"action"},
		},
		{
			name:  "listing",
			input: model.ListMaterialsCommand{Status: "all", Page: intPtr(1), Limit: intPtr(100), SortBy: "year", SortOrder: "desc"},
		},
		{
			name:       "listing bounds",
			input:      model.ListMaterialsCommand{Page: intPtr(0), Limit: intPtr(101)},
			wantFields: []string{"page", "limit"},
		},
		{
			name:  "listing defaults",
			input: model.ListMaterialsCommand{},
		},
		{
			name:       "user listing role",
			input:      model.ListUsersCommand{Role: "owner"},
			wantFields: []string{"role"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantFields, fieldsOf(t, err))
		})
	}
}

func TestValidator_Messages(t *testing.T) {
	err := New().Struct(model.RejectMaterialCommand{MaterialID: uuid.New()})
	require.Error(t, err)

	var e *model.Error
	require.ErrorAs(t, err, &e)
	require.Len(t, e.Fields, 1)
	assert.Equal(t, "reason is a required field", e.Fields[0].Message)
	assert.EqualError(t, err, "reason is a required field")
}

func TestValidator_BulkTooLarge(t *testing.T) {
	ids := make([]uuid.UUID, model.MaxBulkMaterials+1)
	for i := range ids {
		ids[i] = uuid.New()
	}

	err := New().Struct(model.BulkUpdateCommand{MaterialIDs: ids, Action: model.BulkActionApprove})
	require.Error(t, err)
	assert.Equal(t, []string{"materialIds"}, fieldsOf(t, err))
}
