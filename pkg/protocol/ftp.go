package protocol

import (
	"context"
	"io"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/glorpus-work/multifetch/internal/logger"
)

// FTPOptions configures the FTP strategy.
type FTPOptions struct {
	Timeout   time.Duration
	ChunkSize int
}

// ftpSession is the subset of an FTP control connection the strategy uses.
type ftpSession interface {
	Login(user, password string) error
	Retrieve(path string) (io.ReadCloser, error)
	Quit() error
}

type ftpDialer func(ctx context.Context, addr string, timeout time.Duration) (ftpSession, error)

// FTPStrategy downloads ftp URIs in binary mode over a fresh control connection.
type FTPStrategy struct {
	timeout   time.Duration
	chunkSize int
	dial      ftpDialer
}

// NewFTPStrategy creates an FTP strategy. Zero options fall back to defaults.
func NewFTPStrategy(opts FTPOptions) *FTPStrategy {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	return &FTPStrategy{
		timeout:   opts.Timeout,
		chunkSize: opts.ChunkSize,
		dial:      dialFTP,
	}
}

// Fetch logs in (anonymously unless the URI carries credentials) and retrieves the path.
func (s *FTPStrategy) Fetch(ctx context.Context, uri string, dst io.Writer, cancelled CancelCheck) (int64, error) {
	ep, err := ParseEndpoint(uri, DefaultFTPPort)
	if err != nil {
		return 0, err
	}

	session, err := s.dial(ctx, ep.Address(), s.timeout)
	if err != nil {
		return 0, recoverable("connect", err)
	}
	defer func() {
		if err := session.Quit(); err != nil {
			logger.Debug("FTP quit failed", logger.Fields{"host": ep.Host, "error": err})
		}
	}()

	if err := session.Login(ep.Username, ep.Password); err != nil {
		return 0, recoverable("login", err)
	}
	logger.Debug("Connected to FTP server", logger.Fields{"host": ep.Host, "user": ep.Username})

	body, err := session.Retrieve(ep.RemotePath)
	if err != nil {
		return 0, recoverable("retrieve", err)
	}

	n, err := copyChunks(dst, body, s.chunkSize, cancelled)
	closeErr := body.Close()
	if err != nil {
		return n, err
	}
	if closeErr != nil {
		return n, recoverable("retrieve", closeErr)
	}
	return n, nil
}

// ftpConn adapts *ftp.ServerConn to ftpSession.
type ftpConn struct {
	conn *ftp.ServerConn
}

func dialFTP(ctx context.Context, addr string, timeout time.Duration) (ftpSession, error) {
	conn, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(timeout))
	if err != nil {
		return nil, err
	}
	return &ftpConn{conn: conn}, nil
}

func (c *ftpConn) Login(user, password string) error {
	return c.conn.Login(user, password)
}

func (c *ftpConn) Retrieve(path string) (io.ReadCloser, error) {
	resp, err := c.conn.Retr(path)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *ftpConn) Quit() error {
	return c.conn.Quit()
}
