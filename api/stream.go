package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Format of the pages returned by a paginated endpoint.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// PageRequest describes the first page of a paginated resource.
type PageRequest struct {
	// Op prefixes errors raised while fetching, e.g. "get bids for campaign".
	Op    string
	URL   string
	Auth  AuthScheme
	Query url.Values
	// DataKey is the JSON key holding the page's records. Ignored for CSV.
	DataKey string
}

func (r PageRequest) format() Format {
	if f := r.Query.Get("format"); f != "" {
		return Format(strings.ToLower(f))
	}
	return FormatJSON
}

// PageStream is the read end of a paginated fetch. Every page is written as
// one newline terminated chunk: a JSON array for JSON endpoints or the raw
// CSV block for CSV endpoints. A failed fetch surfaces on Read as a
// *StreamAbortError; a clean end of pages surfaces as io.EOF.
//
// The producer runs in its own goroutine and writes through an unbuffered
// pipe, so at most one page is held in memory ahead of the reader.
type PageStream struct {
	ID string

	pr     *io.PipeReader
	cancel context.CancelFunc
	done   chan struct{}

	mu    sync.Mutex
	err   error
	pages int

	br *bufio.Reader
}

// Read implements io.Reader. It may be mixed with ReadChunk; bytes buffered
// by ReadChunk are returned first.
func (s *PageStream) Read(p []byte) (int, error) {
	if s.br != nil {
		return s.br.Read(p)
	}
	return s.pr.Read(p)
}

// Close stops the producer. Any page write in flight fails and the loop
// exits without fetching further pages. Cancelling the context passed to
// Paginate has the same effect.
func (s *PageStream) Close() error {
	s.cancel()
	return s.pr.Close()
}

// ReadChunk returns the next newline delimited chunk without its trailing
// newline. It returns io.EOF after the last page. For CSV streams a chunk is
// a single CSV line.
func (s *PageStream) ReadChunk() ([]byte, error) {
	if s.br == nil {
		s.br = bufio.NewReader(s.pr)
	}
	line, err := s.br.ReadBytes('\n')
	if len(line) > 0 && err == nil {
		return bytes.TrimSuffix(line, []byte("\n")), nil
	}
	if len(line) > 0 && err == io.EOF {
		return line, nil
	}
	return nil, err
}

// Wait blocks until the producer has finished and returns the error that
// ended it, if any. A stream closed by its reader reports that abort.
func (s *PageStream) Wait() error {
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Pages returns the number of pages written so far.
func (s *PageStream) Pages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages
}

func (s *PageStream) finish(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *PageStream) wrote() {
	s.mu.Lock()
	s.pages++
	s.mu.Unlock()
}

// Paginate starts fetching req in the background and returns the read end
// immediately. Pages are followed through paging.next (JSON) or the Link
// rel="next" header (CSV) until a page has no successor.
func (c *Client) Paginate(ctx context.Context, req PageRequest) *PageStream {
	ctx, cancel := context.WithCancel(ctx)
	pr, pw := io.Pipe()

	s := &PageStream{
		ID:     uuid.NewString(),
		pr:     pr,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(s.done)
		defer cancel()

		// unblocks a page write nobody is reading
		stop := context.AfterFunc(ctx, func() {
			pw.CloseWithError(&StreamAbortError{Op: req.Op, Page: s.Pages() + 1, Err: ctx.Err()})
		})
		defer stop()

		err := c.fetchPages(ctx, s, req, pw)
		s.finish(err)
		if err != nil {
			log.Warn().Str("stream", s.ID).Err(err).Msg("paginated fetch aborted")
			pw.CloseWithError(err)
			return
		}
		log.Debug().Str("stream", s.ID).Int("pages", s.Pages()).Msg("paginated fetch complete")
		pw.Close()
	}()

	return s
}

func (c *Client) fetchPages(ctx context.Context, s *PageStream, req PageRequest, w io.Writer) error {
	format := req.format()
	pageURL := req.URL
	query := cloneValues(req.Query)

	for page := 1; ; page++ {
		abort := func(err error) error {
			return &StreamAbortError{Op: req.Op, Page: page, Err: err}
		}

		res := c.Execute(ctx, Request{
			Method: http.MethodGet,
			URL:    pageURL,
			Auth:   req.Auth,
			Query:  query,
		})
		if err := res.Err(req.Op); err != nil {
			if ctx.Err() != nil {
				return abort(ctx.Err())
			}
			return abort(err)
		}

		var (
			chunk []byte
			next  string
		)
		switch format {
		case FormatCSV:
			if len(res.Body) == 0 {
				return nil
			}
			chunk = res.Body
			next = nextFromLink(res.Header.Get("Link"))
		default:
			if len(bytes.TrimSpace(res.Body)) == 0 {
				return nil
			}
			var err error
			chunk, next, err = jsonPage(res.Body, req.DataKey)
			if err != nil {
				return abort(err)
			}
		}

		if !bytes.HasSuffix(chunk, []byte("\n")) {
			chunk = append(chunk, '\n')
		}
		if _, err := w.Write(chunk); err != nil {
			if ctx.Err() != nil {
				return abort(ctx.Err())
			}
			return abort(err)
		}
		s.wrote()

		log.Debug().
			Str("stream", s.ID).
			Int("page", page).
			Int("bytes", len(chunk)).
			Msg("wrote page")

		if next == "" {
			return nil
		}

		var err error
		pageURL, query, err = splitNext(pageURL, next)
		if err != nil {
			return abort(err)
		}
	}
}

// jsonPage extracts the records under key and the next page link.
func jsonPage(body []byte, key string) ([]byte, string, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, "", fmt.Errorf("failed to decode page: %w", err)
	}

	data, ok := doc[key]
	if !ok {
		return nil, "", fmt.Errorf("page has no %q key", key)
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return nil, "", fmt.Errorf("failed to compact page data: %w", err)
	}

	var next string
	if raw, ok := doc["paging"]; ok {
		var paging struct {
			Next string `json:"next"`
		}
		if err := json.Unmarshal(raw, &paging); err == nil {
			next = paging.Next
		}
	}
	return buf.Bytes(), next, nil
}

// nextFromLink parses a Link header of the form `<url>; rel="next"`.
func nextFromLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		segs := strings.Split(part, ";")
		if len(segs) < 2 {
			continue
		}
		target := strings.Trim(strings.TrimSpace(segs[0]), "<>")
		for _, param := range segs[1:] {
			if strings.ReplaceAll(strings.TrimSpace(param), " ", "") == `rel="next"` {
				return target
			}
		}
	}
	return ""
}

// splitNext resolves next against the current page URL and separates its
// query, which replaces the previous page's parameters.
func splitNext(current, next string) (string, url.Values, error) {
	base, err := url.Parse(current)
	if err != nil {
		return "", nil, fmt.Errorf("parse page url: %w", err)
	}
	ref, err := url.Parse(next)
	if err != nil {
		return "", nil, fmt.Errorf("parse next page url %q: %w", next, err)
	}

	u := base.ResolveReference(ref)
	query := u.Query()
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), query, nil
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
