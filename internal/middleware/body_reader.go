package middleware

import (
	"bytes"
	"io"
)

// BodyReader implements io.ReadCloser to allow re-reading a request body,
// needed because webhook signature verification must read the raw bytes
// before gin's JSON binder (or anything else) consumes the stream.
type BodyReader struct {
	*bytes.Reader
}

func NewBodyReader(body []byte) io.ReadCloser {
	return &BodyReader{Reader: bytes.NewReader(body)}
}

func (r *BodyReader) Close() error {
	return nil
}
