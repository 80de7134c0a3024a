package lookup

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	// ServiceName is the fully-qualified gRPC service name.
	ServiceName = "relayrouter.v1.Lookup"

	getDestinationsFullMethod = "/relayrouter.v1.Lookup/GetDestinations"
)

// LookupServer is the server API for the Lookup service.
type LookupServer interface {
	GetDestinations(context.Context, *wrapperspb.StringValue) (*structpb.ListValue, error)
}

// RegisterLookupServer registers srv on s.
func RegisterLookupServer(s grpc.ServiceRegistrar, srv LookupServer) {
	s.RegisterService(&lookupServiceDesc, srv)
}

func lookupGetDestinationsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LookupServer).GetDestinations(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: getDestinationsFullMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LookupServer).GetDestinations(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

var lookupServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LookupServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetDestinations",
			Handler:    lookupGetDestinationsHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: lookupProtoPath,
}
