package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/raine/ironsource-go/api/apitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteBearerAuth(t *testing.T) {
	ts := apitest.NewServer(t, func(w http.ResponseWriter, r *http.Request) {
		apitest.JSON(w, 200, `{"ok":true}`)
	})
	client := NewClientWithBaseURL("user", "refresh", "secret", ts.URL)

	res := client.Execute(context.Background(), Request{
		Method: http.MethodGet,
		URL:    client.PlatformURL("/partners/publisher/applications/v6"),
		Auth:   AuthBearer,
	})
	require.True(t, res.OK())
	assert.Equal(t, -1, res.ErrorCode)
	assert.Equal(t, `{"ok":true}`, res.Text())

	req := ts.Last()
	assert.Equal(t, "/partners/publisher/applications/v6", req.Path)
	assert.Equal(t, "Bearer "+ts.Token, req.Header.Get("Authorization"))
	assert.Equal(t, UserAgent, req.Header.Get("User-Agent"))
}

func TestBearerTokenIsCached(t *testing.T) {
	ts := apitest.NewServer(t, nil)
	client := NewClientWithBaseURL("user", "refresh", "secret", ts.URL)

	for i := 0; i < 3; i++ {
		res := client.Execute(context.Background(), Request{Method: http.MethodGet, URL: ts.URL + "/x", Auth: AuthBearer})
		require.True(t, res.OK())
	}
	assert.Equal(t, 1, ts.AuthCalls())

	client.SetCredentials("user", "refresh", "secret")
	client.Execute(context.Background(), Request{Method: http.MethodGet, URL: ts.URL + "/x", Auth: AuthBearer})
	assert.Equal(t, 1, ts.AuthCalls())

	client.SetCredentials("user", "other-refresh", "secret")
	client.Execute(context.Background(), Request{Method: http.MethodGet, URL: ts.URL + "/x", Auth: AuthBearer})
	assert.Equal(t, 2, ts.AuthCalls())
}

func TestBearerTokenSentHeaders(t *testing.T) {
	var got http.Header
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`"` + apitest.JWT(time.Now().Add(time.Hour)) + `"`))
	}))
	defer ts.Close()
	client := NewClientWithBaseURL("user", "refresh", "secret", ts.URL)

	_, err := client.BearerToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "secret", got.Get("secretkey"))
	assert.Equal(t, "refresh", got.Get("refreshToken"))
}

func TestExecuteBasicAuth(t *testing.T) {
	ts := apitest.NewServer(t, nil)
	client := NewClientWithBaseURL("user", "refresh", "secret", ts.URL)

	res := client.Execute(context.Background(), Request{Method: http.MethodGet, URL: client.AudienceURL("/audience/api/show"), Auth: AuthBasic})
	require.True(t, res.OK())
	assert.Equal(t, "Basic dXNlcjpzZWNyZXQ=", ts.Last().Header.Get("Authorization"))
	assert.Equal(t, 0, ts.AuthCalls())
}

func TestExecuteErrorStatus(t *testing.T) {
	ts := apitest.NewServer(t, func(w http.ResponseWriter, r *http.Request) {
		apitest.JSON(w, 400, `{"errorMessage":"bad appKey"}`)
	})
	client := NewClientWithBaseURL("user", "refresh", "secret", ts.URL)

	res := client.Execute(context.Background(), Request{Method: http.MethodGet, URL: ts.URL + "/x", Auth: AuthNone})
	assert.False(t, res.OK())
	assert.Equal(t, 400, res.ErrorCode)
	assert.Equal(t, `{"errorMessage":"bad appKey"}`, res.Text())

	err := res.Err("get apps")
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 400, te.StatusCode)
	assert.Equal(t, "get apps: error code 400: {\"errorMessage\":\"bad appKey\"}", err.Error())
}

func TestExecuteNetworkErrorIs500(t *testing.T) {
	client := NewClientWithBaseURL("user", "refresh", "secret", "http://127.0.0.1:1")

	res := client.Execute(context.Background(), Request{Method: http.MethodGet, URL: "http://127.0.0.1:1/x"})
	assert.False(t, res.OK())
	assert.Equal(t, 500, res.ErrorCode)
	assert.NotEmpty(t, res.Body)
}

func TestExecuteAuthFailureIs500(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()
	client := NewClientWithBaseURL("user", "refresh", "secret", ts.URL)

	res := client.Execute(context.Background(), Request{Method: http.MethodGet, URL: ts.URL + "/x", Auth: AuthBearer})
	assert.Equal(t, 500, res.ErrorCode)
	assert.Contains(t, res.Text(), "fetch bearer token")
}

func TestDoJSON(t *testing.T) {
	ts := apitest.NewServer(t, func(w http.ResponseWriter, r *http.Request) {
		apitest.JSON(w, 200, `[{"appKey":"abc"}]`)
	})
	client := NewClientWithBaseURL("user", "refresh", "secret", ts.URL)

	var apps []struct {
		AppKey string `json:"appKey"`
	}
	err := client.DoJSON(context.Background(), "get apps", Request{
		Method: http.MethodPost,
		URL:    ts.URL + "/apps",
		JSON:   map[string]string{"appName": "game"},
	}, &apps)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "abc", apps[0].AppKey)
	assert.JSONEq(t, `{"appName":"game"}`, string(ts.Last().Body))
	assert.Equal(t, "application/json", ts.Last().Header.Get("Content-Type"))
}

func TestRateLimiterCancelled(t *testing.T) {
	ts := apitest.NewServer(t, nil)
	client := NewClient(ClientOpts{PlatformURL: ts.URL, RequestsPerSecond: 0.001, Burst: 1})

	ok := client.Execute(context.Background(), Request{Method: http.MethodGet, URL: ts.URL + "/x"})
	require.True(t, ok.OK())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	res := client.Execute(ctx, Request{Method: http.MethodGet, URL: ts.URL + "/x"})
	assert.Equal(t, 500, res.ErrorCode)
	assert.Len(t, ts.Requests(), 1)
}
