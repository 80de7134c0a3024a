package destination

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Destination is a (server, port, instance) triple.
type Destination struct {
	Server   string
	Port     int
	Instance string
}

// Instance identifies one process on a server. It is unique across the
// destinations registered with a hash router and is the ring node id.
type Instance struct {
	Server   string
	Instance string
}

// Address is the (host, port) pair a data point is forwarded to.
type Address struct {
	Host string
	Port int
}

// New builds a Destination.
func New(server string, port int, instance string) Destination {
	return Destination{Server: server, Port: port, Instance: instance}
}

// ID returns the (server, instance) pair of the destination.
func (d Destination) ID() Instance {
	return Instance{Server: d.Server, Instance: d.Instance}
}

// Address returns the (server, port) pair of the destination.
func (d Destination) Address() Address {
	return Address{Host: d.Server, Port: d.Port}
}

// String renders the destination as "server:port[:instance]".
func (d Destination) String() string {
	base := net.JoinHostPort(d.Server, strconv.Itoa(d.Port))
	if d.Instance == "" {
		return base
	}
	return base + ":" + d.Instance
}

// String renders the instance as "server:instance".
func (i Instance) String() string {
	if i.Instance == "" {
		return i.Server
	}
	return i.Server + ":" + i.Instance
}

// String renders the address as "host:port".
func (a Address) String() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// Parse parses "server:port[:instance]". IPv6 servers must be bracketed,
// e.g. "[::1]:2004:a".
func Parse(s string) (Destination, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Destination{}, fmt.Errorf("empty destination")
	}

	var server, rest string
	if strings.HasPrefix(s, "[") {
		end := strings.Index(s, "]")
		if end < 0 {
			return Destination{}, fmt.Errorf("invalid destination format: %s (unterminated [)", s)
		}
		server = s[1:end]
		rest = strings.TrimPrefix(s[end+1:], ":")
	} else {
		parts := strings.SplitN(s, ":", 2)
		if len(parts) != 2 {
			return Destination{}, fmt.Errorf("invalid destination format: %s (expected server:port[:instance])", s)
		}
		server, rest = parts[0], parts[1]
	}

	portStr, instance, _ := strings.Cut(rest, ":")
	server = strings.TrimSpace(server)
	if server == "" {
		return Destination{}, fmt.Errorf("destination server cannot be empty: %s", s)
	}

	port, err := strconv.Atoi(strings.TrimSpace(portStr))
	if err != nil || port <= 0 || port > 65535 {
		return Destination{}, fmt.Errorf("invalid destination port in %s", s)
	}

	return New(server, port, strings.TrimSpace(instance)), nil
}

// ParseList parses a comma-separated list of destinations. Empty entries are
// skipped.
func ParseList(s string) ([]Destination, error) {
	if strings.TrimSpace(s) == "" {
		return []Destination{}, nil
	}

	parts := strings.Split(s, ",")
	dests := make([]Destination, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		d, err := Parse(part)
		if err != nil {
			return nil, err
		}
		dests = append(dests, d)
	}
	return dests, nil
}
