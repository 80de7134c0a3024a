package lookup

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

const lookupProtoPath = "relayrouter/v1/lookup.proto"

// File is the descriptor of relayrouter/v1/lookup.proto. It is registered in
// protoregistry.GlobalFiles so reflection clients can resolve the service.
var File protoreflect.FileDescriptor

func init() {
	fd, err := protodesc.NewFile(lookupFileProto(), protoregistry.GlobalFiles)
	if err != nil {
		panic(fmt.Sprintf("lookup: invalid descriptor for %s: %v", lookupProtoPath, err))
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic(fmt.Sprintf("lookup: failed to register %s: %v", lookupProtoPath, err))
	}
	File = fd
}

// lookupFileProto mirrors:
//
//	syntax = "proto3";
//	package relayrouter.v1;
//	import "google/protobuf/struct.proto";
//	import "google/protobuf/wrappers.proto";
//	service Lookup {
//	  rpc GetDestinations(google.protobuf.StringValue) returns (google.protobuf.ListValue);
//	}
func lookupFileProto() *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String(lookupProtoPath),
		Package: proto.String("relayrouter.v1"),
		Dependency: []string{
			"google/protobuf/struct.proto",
			"google/protobuf/wrappers.proto",
		},
		Syntax: proto.String("proto3"),
		Options: &descriptorpb.FileOptions{
			GoPackage: proto.String("relayrouter/internal/lookup"),
		},
		Service: []*descriptorpb.ServiceDescriptorProto{
			{
				Name: proto.String("Lookup"),
				Method: []*descriptorpb.MethodDescriptorProto{
					{
						Name:       proto.String("GetDestinations"),
						InputType:  proto.String(".google.protobuf.StringValue"),
						OutputType: proto.String(".google.protobuf.ListValue"),
					},
				},
			},
		},
	}
}
