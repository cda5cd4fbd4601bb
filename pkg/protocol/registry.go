package protocol

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/glorpus-work/multifetch/pkg/errors"
)

// Registry maps URI schemes to strategies.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry creates a registry from scheme → strategy. Schemes are case-insensitive.
func NewRegistry(strategies map[string]Strategy) *Registry {
	r := &Registry{strategies: make(map[string]Strategy, len(strategies))}
	for scheme, s := range strategies {
		r.strategies[strings.ToLower(scheme)] = s
	}
	return r
}

// NewDefaultRegistry registers http, https, ftp and sftp.
func NewDefaultRegistry(httpOpts HTTPOptions, ftpOpts FTPOptions, sftpOpts SFTPOptions) *Registry {
	httpStrategy := NewHTTPStrategy(httpOpts)
	return NewRegistry(map[string]Strategy{
		"http":  httpStrategy,
		"https": httpStrategy,
		"ftp":   NewFTPStrategy(ftpOpts),
		"sftp":  NewSFTPStrategy(sftpOpts),
	})
}

// Lookup returns the strategy for uri's scheme.
func (r *Registry) Lookup(uri string) (Strategy, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidURI, err)
	}
	scheme := strings.ToLower(u.Scheme)
	s, ok := r.strategies[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errors.ErrUnsupportedProtocol, scheme)
	}
	return s, nil
}

// Schemes lists the registered schemes in sorted order.
func (r *Registry) Schemes() []string {
	schemes := make([]string, 0, len(r.strategies))
	for scheme := range r.strategies {
		schemes = append(schemes, scheme)
	}
	sort.Strings(schemes)
	return schemes
}
