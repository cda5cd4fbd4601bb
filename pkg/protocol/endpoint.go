package protocol

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/glorpus-work/multifetch/pkg/errors"
)

// Default ports and credentials.
const (
	DefaultHTTPPort  = 80
	DefaultHTTPSPort = 443
	DefaultFTPPort   = 21
	DefaultSFTPPort  = 22

	AnonymousUser     = "anonymous"
	AnonymousPassword = "anonymous"
)

// Endpoint is the connection target derived from a URI.
type Endpoint struct {
	Scheme     string
	Host       string
	Port       int
	Username   string
	Password   string
	RemotePath string

	// PasswordSet is true when the URI carried a password, as opposed to the anonymous default.
	PasswordSet bool
}

// ParseEndpoint parses uri, filling in defaultPort and anonymous credentials
// where the URI has none.
func ParseEndpoint(uri string, defaultPort int) (Endpoint, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w: %w", errors.ErrInvalidURI, err)
	}
	if u.Hostname() == "" {
		return Endpoint{}, fmt.Errorf("%w: missing host in %q", errors.ErrInvalidURI, uri)
	}

	ep := Endpoint{
		Scheme:     strings.ToLower(u.Scheme),
		Host:       u.Hostname(),
		Port:       defaultPort,
		Username:   AnonymousUser,
		Password:   AnonymousPassword,
		RemotePath: u.Path,
	}

	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port <= 0 || port > 65535 {
			return Endpoint{}, fmt.Errorf("%w: bad port %q", errors.ErrInvalidURI, p)
		}
		ep.Port = port
	}

	if u.User != nil {
		if name := u.User.Username(); name != "" {
			ep.Username = name
		}
		if password, ok := u.User.Password(); ok && password != "" {
			ep.Password = password
			ep.PasswordSet = true
		}
	}

	return ep, nil
}

// Address returns host:port suitable for net.Dial.
func (e Endpoint) Address() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}
