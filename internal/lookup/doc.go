// Package lookup exposes a router over gRPC so relay processes and tooling
// can ask which destinations a metric is forwarded to. The service carries
// well-known protobuf types: the request is a StringValue holding the metric
// and the response a ListValue of "host:port" strings.
package lookup
