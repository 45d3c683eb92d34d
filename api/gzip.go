package api

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
)

// gzipBody closes the decompressor and the underlying response body together.
type gzipBody struct {
	*gzip.Reader
	raw io.ReadCloser
}

func (b *gzipBody) Close() error {
	zerr := b.Reader.Close()
	rerr := b.raw.Close()
	if zerr != nil {
		return zerr
	}
	return rerr
}

// OpenGzip downloads a gzipped report file and returns a reader over the
// decompressed content. Report URLs are pre-signed so no Authorization
// header is sent. The caller must close the reader.
func (c *Client) OpenGzip(ctx context.Context, fileURL string) (io.ReadCloser, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(fileURL)
	if err != nil {
		return nil, &TransportError{Op: "open report file", StatusCode: 500, Body: err.Error(), Err: err}
	}

	raw := res.RawBody()
	if res.IsError() {
		body, _ := io.ReadAll(raw)
		raw.Close()
		return nil, &TransportError{Op: "open report file", StatusCode: res.StatusCode(), Body: string(body)}
	}

	zr, err := gzip.NewReader(raw)
	if err != nil {
		raw.Close()
		return nil, fmt.Errorf("open report file: %w", err)
	}
	log.Debug().Str("url", fileURL).Msg("opened gzip report stream")
	return &gzipBody{Reader: zr, raw: raw}, nil
}

// FetchGzip downloads and fully decompresses a gzipped report file.
func (c *Client) FetchGzip(ctx context.Context, fileURL string) ([]byte, error) {
	rc, err := c.OpenGzip(ctx, fileURL)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read report file: %w", err)
	}
	return data, nil
}
