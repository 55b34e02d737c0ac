package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dtroode/academia-moderation/internal/model"
)

func TestRegisterDescriptor(t *testing.T) {
	require.NoError(t, registerDescriptor())

	d, err := protoregistry.GlobalFiles.FindDescriptorByName(ServiceName)
	require.NoError(t, err)

	service, ok := d.(protoreflect.ServiceDescriptor)
	require.True(t, ok)
	assert.Equal(t, len(methods), service.Methods().Len())

	approve := service.Methods().ByName(MethodApproveMaterial)
	require.NotNil(t, approve)
	assert.Equal(t, protoreflect.FullName("google.protobuf.Struct"), approve.Input().FullName())
}

func TestServiceDesc(t *testing.T) {
	desc := serviceDesc()
	assert.Equal(t, ServiceName, desc.ServiceName)
	require.Len(t, desc.Methods, len(methods))
	assert.Equal(t, MethodGetDashboard, desc.Methods[0].MethodName)
	assert.Equal(t, "/academia.moderation.v1.Moderation/DemoteUser", FullMethod(MethodDemoteUser))
}

func TestDecode_WrongShape(t *testing.T) {
	in, err := structpb.NewStruct(map[string]any{"page": "first"})
	require.NoError(t, err)

	var cmd model.ListMaterialsCommand
	err = decode(in, &cmd)
	require.Error(t, err)
	assert.Equal(t, model.KindValidation, model.KindOf(err))

	in, err = structpb.NewStruct(map[string]any{"page": 2, "status": "pending"})
	require.NoError(t, err)
	require.NoError(t, decode(in, &cmd))
	require.NotNil(t, cmd.Page)
	assert.Equal(t, 2, *cmd.Page)
	assert.Nil(t, cmd.Limit)
	assert.Equal(t, "pending", cmd.Status)
}
