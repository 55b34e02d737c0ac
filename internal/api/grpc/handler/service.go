package handler

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// ServiceName is the fully qualified name of the moderation service.
	ServiceName = "academia.moderation.v1.Moderation"

	protoFile    = "academia/moderation/v1/moderation.proto"
	protoPackage = "academia.moderation.v1"
	structType   = ".google.protobuf.Struct"
)

// Method names of the moderation service.
const (
	MethodGetDashboard        = "GetDashboard"
	MethodGetStatistics       = "GetStatistics"
	MethodListMaterials       = "ListMaterials"
	MethodGetMaterial         = "GetMaterial"
	MethodGetMaterialPreview  = "GetMaterialPreview"
	MethodApproveMaterial     = "ApproveMaterial"
	MethodRejectMaterial      = "RejectMaterial"
	MethodBulkUpdateMaterials = "BulkUpdateMaterials"
	MethodSetMaterialFeatured = "SetMaterialFeatured"
	MethodDeleteMaterial      = "DeleteMaterial"
	MethodListUsers           = "ListUsers"
	MethodPromoteUser         = "PromoteUser"
	MethodDemoteUser          = "DemoteUser"
)

// FullMethod returns the gRPC path of a moderation method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// ModerationServer is the server API of the moderation service. Requests and
// responses are JSON objects carried as google.protobuf.Struct.
type ModerationServer interface {
	GetDashboard(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetStatistics(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListMaterials(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetMaterial(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetMaterialPreview(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ApproveMaterial(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RejectMaterial(context.Context, *structpb.Struct) (*structpb.Struct, error)
	BulkUpdateMaterials(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetMaterialFeatured(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteMaterial(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListUsers(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PromoteUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DemoteUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(ModerationServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

var methods = []struct {
	name string
	call unaryMethod
}{
	{MethodGetDashboard, ModerationServer.GetDashboard},
	{MethodGetStatistics, ModerationServer.GetStatistics},
	{MethodListMaterials, ModerationServer.ListMaterials},
	{MethodGetMaterial, ModerationServer.GetMaterial},
	{MethodGetMaterialPreview, ModerationServer.GetMaterialPreview},
	{MethodApproveMaterial, ModerationServer.ApproveMaterial},
	{MethodRejectMaterial, ModerationServer.RejectMaterial},
	{MethodBulkUpdateMaterials, ModerationServer.BulkUpdateMaterials},
	{MethodSetMaterialFeatured, ModerationServer.SetMaterialFeatured},
	{MethodDeleteMaterial, ModerationServer.DeleteMaterial},
	{MethodListUsers, ModerationServer.ListUsers},
	{MethodPromoteUser, ModerationServer.PromoteUser},
	{MethodDemoteUser, ModerationServer.DemoteUser},
}

func unaryHandler(method string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ModerationServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ModerationServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func serviceDesc() *grpc.ServiceDesc {
	desc := &grpc.ServiceDesc{
		ServiceName: ServiceName,
		HandlerType: (*ModerationServer)(nil),
		Streams:     []grpc.StreamDesc{},
		Metadata:    protoFile,
	}
	for _, m := range methods {
		desc.Methods = append(desc.Methods, unaryHandler(m.name, m.call))
	}
	return desc
}

var registerDescriptor = sync.OnceValue(func() error {
	if _, err := protoregistry.GlobalFiles.FindFileByPath(protoFile); err == nil {
		return nil
	}

	fdp := &descriptorpb.FileDescriptorProto{
		Name:       proto.String(protoFile),
		Package:    proto.String(protoPackage),
		Dependency: []string{"google/protobuf/struct.proto"},
		Syntax:     proto.String("proto3"),
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("Moderation"),
		}},
	}
	for _, m := range methods {
		fdp.Service[0].Method = append(fdp.Service[0].Method, &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(m.name),
			InputType:  proto.String(structType),
			OutputType: proto.String(structType),
		})
	}

	fd, err := protodesc.NewFile(fdp, protoregistry.GlobalFiles)
	if err != nil {
		return fmt.Errorf("failed to build moderation descriptor: %w", err)
	}
	return protoregistry.GlobalFiles.RegisterFile(fd)
})

// RegisterModerationServer registers srv and publishes the service
// descriptor for reflection clients.
func RegisterModerationServer(s grpc.ServiceRegistrar, srv ModerationServer) error {
	if err := registerDescriptor(); err != nil {
		return err
	}
	s.RegisterService(serviceDesc(), srv)
	return nil
}
