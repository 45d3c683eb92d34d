package api

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/raine/ironsource-go/api/apitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginateJSONFollowsNext(t *testing.T) {
	var ts *apitest.Server
	ts = apitest.NewServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "":
			apitest.JSON(w, 200, fmt.Sprintf(`{"bids":[{"bid":1}, {"bid":2}],"paging":{"next":"%s/bids?page=2&campaignId=7"}}`, ts.URL))
		case "2":
			apitest.JSON(w, 200, `{"bids":[{"bid":3}],"paging":{"next":"/bids?page=3"}}`)
		case "3":
			apitest.JSON(w, 200, `{"bids":[{"bid":4}]}`)
		}
	})
	client := NewClientWithBaseURL("user", "refresh", "secret", ts.URL)

	stream := client.Paginate(context.Background(), PageRequest{
		Op:      "get bids",
		URL:     ts.URL + "/bids",
		Auth:    AuthBearer,
		Query:   map[string][]string{"campaignId": {"7"}, "count": {"2"}},
		DataKey: "bids",
	})
	defer stream.Close()
	assert.NotEmpty(t, stream.ID)

	var chunks []string
	for {
		chunk, err := stream.ReadChunk()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		chunks = append(chunks, string(chunk))
	}

	assert.Equal(t, []string{`[{"bid":1},{"bid":2}]`, `[{"bid":3}]`, `[{"bid":4}]`}, chunks)
	require.NoError(t, stream.Wait())
	assert.Equal(t, 3, stream.Pages())

	reqs := ts.Requests()
	require.Len(t, reqs, 3)
	assert.Equal(t, "2", reqs[0].Query.Get("count"))
	// the next link's query replaces the first page's parameters
	assert.Equal(t, "", reqs[1].Query.Get("count"))
	assert.Equal(t, "7", reqs[1].Query.Get("campaignId"))
	assert.Equal(t, "3", reqs[2].Query.Get("page"))
	assert.Equal(t, 1, ts.AuthCalls())
}

func TestPaginateCSVFollowsLinkHeader(t *testing.T) {
	ts := apitest.NewServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("cursor") {
		case "":
			w.Header().Set("Link", `</report?format=csv&cursor=b>; rel="next"`)
			w.Write([]byte("day,spend\n2024-01-01,1.5"))
		case "b":
			w.Header().Set("Link", `</report?format=csv&cursor=c>; rel="next"`)
			w.Write([]byte("2024-01-02,2.5\n"))
		case "c":
			w.WriteHeader(http.StatusNoContent)
		}
	})
	client := NewClientWithBaseURL("user", "refresh", "secret", ts.URL)

	stream := client.Paginate(context.Background(), PageRequest{
		Op:    "get advertiser statistics",
		URL:   ts.URL + "/report",
		Auth:  AuthBearer,
		Query: map[string][]string{"format": {"csv"}},
	})
	data, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, "day,spend\n2024-01-01,1.5\n2024-01-02,2.5\n", string(data))
	assert.Len(t, ts.Requests(), 3)
}

func TestPaginateErrorReachesReader(t *testing.T) {
	ts := apitest.NewServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			apitest.JSON(w, 500, `{"error":"internal"}`)
			return
		}
		apitest.JSON(w, 200, `{"data":[1,2],"paging":{"next":"/data?page=2"}}`)
	})
	client := NewClientWithBaseURL("user", "refresh", "secret", ts.URL)

	stream := client.Paginate(context.Background(), PageRequest{
		Op:      "get report",
		URL:     ts.URL + "/data",
		Auth:    AuthBearer,
		DataKey: "data",
	})

	chunk, err := stream.ReadChunk()
	require.NoError(t, err)
	assert.Equal(t, "[1,2]", string(chunk))

	_, err = stream.ReadChunk()
	var abort *StreamAbortError
	require.True(t, errors.As(err, &abort))
	assert.Equal(t, 2, abort.Page)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 500, te.StatusCode)

	assert.Error(t, stream.Wait())
}

func TestPaginateMissingDataKey(t *testing.T) {
	ts := apitest.NewServer(t, func(w http.ResponseWriter, r *http.Request) {
		apitest.JSON(w, 200, `{"other":[]}`)
	})
	client := NewClientWithBaseURL("user", "refresh", "secret", ts.URL)

	stream := client.Paginate(context.Background(), PageRequest{Op: "get", URL: ts.URL + "/x", DataKey: "data"})
	_, err := io.ReadAll(stream)
	var abort *StreamAbortError
	assert.True(t, errors.As(err, &abort))
}

func TestPaginateReaderCloseStopsProducer(t *testing.T) {
	ts := apitest.NewServer(t, func(w http.ResponseWriter, r *http.Request) {
		apitest.JSON(w, 200, `{"data":[1],"paging":{"next":"/x?again=1"}}`)
	})
	client := NewClientWithBaseURL("user", "refresh", "secret", ts.URL)

	stream := client.Paginate(context.Background(), PageRequest{Op: "get", URL: ts.URL + "/x", DataKey: "data"})
	_, err := stream.ReadChunk()
	require.NoError(t, err)
	require.NoError(t, stream.Close())

	err = stream.Wait()
	var abort *StreamAbortError
	assert.True(t, errors.As(err, &abort))
}

func TestPaginateContextCancel(t *testing.T) {
	ts := apitest.NewServer(t, func(w http.ResponseWriter, r *http.Request) {
		apitest.JSON(w, 200, `{"data":[1],"paging":{"next":"/x?again=1"}}`)
	})
	client := NewClientWithBaseURL("user", "refresh", "secret", ts.URL)

	ctx, cancel := context.WithCancel(context.Background())
	stream := client.Paginate(ctx, PageRequest{Op: "get", URL: ts.URL + "/x", DataKey: "data"})
	_, err := stream.ReadChunk()
	require.NoError(t, err)
	cancel()

	_, err = io.ReadAll(stream)
	assert.Error(t, err)
	assert.Error(t, stream.Wait())
}

func TestPaginateContextCancelWithoutReading(t *testing.T) {
	ts := apitest.NewServer(t, func(w http.ResponseWriter, r *http.Request) {
		apitest.JSON(w, 200, `{"data":[1],"paging":{"next":"/x?again=1"}}`)
	})
	client := NewClientWithBaseURL("user", "refresh", "secret", ts.URL)

	ctx, cancel := context.WithCancel(context.Background())
	stream := client.Paginate(ctx, PageRequest{Op: "get", URL: ts.URL + "/x", DataKey: "data"})
	time.Sleep(100 * time.Millisecond)
	cancel()

	done := make(chan error, 1)
	go func() { done <- stream.Wait() }()

	select {
	case err := <-done:
		var abort *StreamAbortError
		require.True(t, errors.As(err, &abort))
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after cancel")
	}

	_, err := io.ReadAll(stream)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPaginateReadAfterReadChunk(t *testing.T) {
	ts := apitest.NewServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			apitest.JSON(w, 200, `{"data":[3,4]}`)
			return
		}
		apitest.JSON(w, 200, `{"data":[1,2],"paging":{"next":"/x?page=2"}}`)
	})
	client := NewClientWithBaseURL("user", "refresh", "secret", ts.URL)

	stream := client.Paginate(context.Background(), PageRequest{Op: "get", URL: ts.URL + "/x", DataKey: "data"})
	chunk, err := stream.ReadChunk()
	require.NoError(t, err)
	assert.Equal(t, "[1,2]", string(chunk))

	rest, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, "[3,4]\n", string(rest))
	require.NoError(t, stream.Wait())
}

func TestNextFromLink(t *testing.T) {
	assert.Equal(t, "https://a/b?c=1", nextFromLink(`<https://a/b?c=1>; rel="next"`))
	assert.Equal(t, "/n", nextFromLink(`</p>; rel="prev", </n>; rel="next"`))
	assert.Equal(t, "", nextFromLink(`</p>; rel="prev"`))
	assert.Equal(t, "", nextFromLink(""))
}

func TestFetchGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte("appKey,revenue\nabc,1.2\n"))
	zw.Close()

	ts := apitest.NewServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(buf.Bytes())
	})
	client := NewClientWithBaseURL("user", "refresh", "secret", ts.URL)

	data, err := client.FetchGzip(context.Background(), ts.URL+"/report.csv.gz")
	require.NoError(t, err)
	assert.Equal(t, "appKey,revenue\nabc,1.2\n", string(data))
	assert.Empty(t, ts.Last().Header.Get("Authorization"))

	_, err = client.FetchGzip(context.Background(), ts.URL+"/missing")
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 404, te.StatusCode)
}
