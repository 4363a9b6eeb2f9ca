package pmux

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"golang.org/x/net/proxy"
)

// Descriptor identifies a SOCKS5 proxy server by address and credentials.
// It is a plain value: copies never share state.
type Descriptor struct {
	Host     string
	Port     uint16
	Username string
	Password string
}

func NewDescriptor(host string, port uint16, username, password string) Descriptor {
	return Descriptor{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
	}
}

func (d Descriptor) Address() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(int(d.Port)))
}

func (d Descriptor) Valid() bool {
	return d.Host != "" && d.Port != 0
}

func (d Descriptor) URL() *url.URL {
	u := &url.URL{
		Scheme: "socks5",
		Host:   d.Address(),
	}
	if d.Username != "" {
		u.User = url.UserPassword(d.Username, d.Password)
	}
	return u
}

// String never includes the password, so descriptors are safe to log
func (d Descriptor) String() string {
	if d.Username == "" {
		return fmt.Sprintf("socks5://%s", d.Address())
	}
	return fmt.Sprintf("socks5://%s@%s", d.Username, d.Address())
}

func (d Descriptor) MarshalJSON() ([]byte, error) {
	type plain Descriptor
	return json.Marshal(plain(d))
}

// Dialer wraps forward with SOCKS5 negotiation through this descriptor.
// Nothing is dialed until the returned dialer is used.
func (d Descriptor) Dialer(forward proxy.Dialer) (proxy.Dialer, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid descriptor: %q", d.Address())
	}
	if forward == nil {
		forward = proxy.Direct
	}
	var auth *proxy.Auth
	if d.Username != "" {
		auth = &proxy.Auth{
			User:     d.Username,
			Password: d.Password,
		}
	}
	return proxy.SOCKS5("tcp", d.Address(), auth, forward)
}

type ckey int

const descriptorKey ckey = iota

func (d Descriptor) InContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, descriptorKey, d)
}

func FromContext(ctx context.Context) (Descriptor, bool) {
	d, ok := ctx.Value(descriptorKey).(Descriptor)
	return d, ok
}
