package grpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"project-chat/domain/event"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// The relay exposes one bidirectional stream. Each message is a
// google.protobuf.Struct with two fields, "event" and "data", mirroring the
// JSON envelope used over websockets.
//
// Struct numbers are doubles. ToStruct carries an integer that a double
// cannot hold exactly, such as a numeric project id above 2^53, as a string,
// which domain.ProjectID accepts. A number a peer already sent as a double
// arrives rounded; ids are always emitted as strings by this module.
const (
	ServiceName   = "projectchat.relay.v1.Relay"
	ConnectMethod = "/" + ServiceName + "/Connect"
)

type RelayServer interface {
	Connect(stream grpc.ServerStream) error
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RelayServer)(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Connect",
			Handler:       connectHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "relay.proto",
}

func connectHandler(srv any, stream grpc.ServerStream) error {
	return srv.(RelayServer).Connect(stream)
}

func RegisterRelayServer(s grpc.ServiceRegistrar, srv RelayServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func ToStruct(env event.Envelope) (*structpb.Struct, error) {
	var data any
	if len(env.Data) > 0 {
		decoder := json.NewDecoder(bytes.NewReader(env.Data))
		decoder.UseNumber()
		if err := decoder.Decode(&data); err != nil {
			return nil, fmt.Errorf("decoding %s data: %w", env.Event, err)
		}
	}
	return structpb.NewStruct(map[string]any{
		"event": string(env.Event),
		"data":  exactNumbers(data),
	})
}

const maxExactInteger = 1 << 53

// exactNumbers turns json.Number values into float64, except integers a
// float64 would round, which stay strings.
func exactNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil && i <= maxExactInteger && i >= -maxExactInteger {
			return float64(i)
		}
		if !strings.ContainsAny(t.String(), ".eE") {
			return t.String()
		}
		f, err := t.Float64()
		if err != nil {
			return t.String()
		}
		return f
	case map[string]any:
		for k, item := range t {
			t[k] = exactNumbers(item)
		}
		return t
	case []any:
		for i, item := range t {
			t[i] = exactNumbers(item)
		}
		return t
	default:
		return v
	}
}

func FromStruct(s *structpb.Struct) (event.Envelope, error) {
	fields := s.GetFields()
	name := fields["event"].GetStringValue()
	if name == "" {
		return event.Envelope{}, fmt.Errorf("envelope without event name")
	}
	data, err := json.Marshal(fields["data"].AsInterface())
	if err != nil {
		return event.Envelope{}, err
	}
	return event.Envelope{Event: event.Name(name), Data: data}, nil
}
