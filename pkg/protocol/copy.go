package protocol

import "io"

// copyChunks streams src into dst chunkSize bytes at a time. Before each chunk
// is written the cancel check is consulted; once it reports true nothing more
// is written and ErrCancelled is returned.
func copyChunks(dst io.Writer, src io.Reader, chunkSize int, cancelled CancelCheck) (int64, error) {
	buf := make([]byte, chunkSize)
	var written int64

	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if cancelled != nil && cancelled() {
				return written, ErrCancelled
			}
			nw, writeErr := dst.Write(buf[:n])
			written += int64(nw)
			if writeErr != nil {
				return written, recoverable("write", writeErr)
			}
			if nw != n {
				return written, recoverable("write", io.ErrShortWrite)
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, recoverable("read", readErr)
		}
	}
}
