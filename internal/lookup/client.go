package lookup

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"relayrouter/internal/destination"
)

// Client queries a remote lookup service.
type Client struct {
	conn *grpc.ClientConn
}

// Dial creates a client for target. Connections are insecure unless opts
// override the transport credentials.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client for %s: %w", target, err)
	}
	return &Client{conn: conn}, nil
}

// GetDestinations asks the service where metric is routed.
func (c *Client) GetDestinations(ctx context.Context, metric string) ([]destination.Address, error) {
	out := new(structpb.ListValue)
	if err := c.conn.Invoke(ctx, getDestinationsFullMethod, wrapperspb.String(metric), out); err != nil {
		return nil, err
	}

	addrs := make([]destination.Address, 0, len(out.GetValues()))
	for _, v := range out.GetValues() {
		host, portStr, err := net.SplitHostPort(v.GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("invalid address in response %q: %w", v.GetStringValue(), err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid port in response %q: %w", v.GetStringValue(), err)
		}
		addrs = append(addrs, destination.Address{Host: host, Port: port})
	}
	return addrs, nil
}

// Conn returns the underlying connection.
func (c *Client) Conn() *grpc.ClientConn {
	return c.conn
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
