package api

import (
	"net/http"
	"strings"
)

// successCode marks a Response that carries a usable body.
const successCode = -1

// Response is the uniform result of every call made through Client.Execute.
// ErrorCode is -1 on success, otherwise the HTTP status (or 500 when the
// request never got an answer) and Body holds the error text.
type Response struct {
	Body      []byte
	ErrorCode int
	Header    http.Header

	cause error
}

// OK reports whether the call succeeded.
func (r Response) OK() bool {
	return r.ErrorCode == successCode
}

// Text returns the body as a string.
func (r Response) Text() string {
	return string(r.Body)
}

// Err converts a failed response into a *TransportError tagged with op.
// It returns nil for successful responses.
func (r Response) Err(op string) error {
	if r.OK() {
		return nil
	}
	return &TransportError{
		Op:         op,
		StatusCode: r.ErrorCode,
		Body:       strings.TrimSpace(string(r.Body)),
		Err:        r.cause,
	}
}

func failed(code int, body []byte, header http.Header) Response {
	return Response{Body: body, ErrorCode: code, Header: header}
}

func succeeded(body []byte, header http.Header) Response {
	return Response{Body: body, ErrorCode: successCode, Header: header}
}
