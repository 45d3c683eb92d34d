package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"

	ironsource "github.com/raine/ironsource-go"
	"github.com/raine/ironsource-go/api"
	"github.com/raine/ironsource-go/api/apitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(t *testing.T, h http.HandlerFunc) (*runner, *bytes.Buffer, *apitest.Server) {
	t.Helper()
	ts := apitest.NewServer(t, h)
	var out bytes.Buffer
	is := ironsource.NewWithClient(api.NewClientWithBaseURL("user", "refresh", "secret", ts.URL))
	return &runner{is: is, out: &out, format: "json"}, &out, ts
}

func TestRunAppsPrintsIndentedJSON(t *testing.T) {
	r, out, _ := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {
		apitest.JSON(w, 200, `[{"appKey":"a1"}]`)
	})

	require.NoError(t, r.run(context.Background(), "apps", nil))
	assert.Equal(t, "[\n  {\n    \"appKey\": \"a1\"\n  }\n]\n", out.String())
}

func TestRunStatsDrainsStream(t *testing.T) {
	r, out, ts := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {
		apitest.JSON(w, 200, `{"data":[{"installs":2}]}`)
	})

	require.NoError(t, r.run(context.Background(), "stats", []string{"2024-05-01", "2024-05-02"}))
	assert.Equal(t, "[{\"installs\":2}]\n", out.String())
	assert.Equal(t, "impressions,spend,installs", ts.Last().Query.Get("metrics"))
}

func TestRunUsageErrors(t *testing.T) {
	r, _, ts := newTestRunner(t, nil)
	ctx := context.Background()

	tests := []struct {
		cmd  string
		args []string
		msg  string
	}{
		{"nope", nil, `unknown command "nope"`},
		{"instances", nil, "missing app key"},
		{"report", []string{"2024-05-01", "yesterday"}, `invalid date "yesterday"`},
		{"bids", []string{"abc"}, `campaign id must be a number, got "abc"`},
	}
	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			err := r.run(ctx, tt.cmd, tt.args)
			var uerr usageError
			require.True(t, errors.As(err, &uerr))
			assert.EqualError(t, err, tt.msg)
		})
	}
	assert.Empty(t, ts.Requests())
}

func TestRunStatsInterrupted(t *testing.T) {
	r, out, _ := newTestRunner(t, func(w http.ResponseWriter, r *http.Request) {
		apitest.JSON(w, 200, `{"data":[{"installs":2}],"paging":{"next":"/x?again=1"}}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.run(ctx, "stats", []string{"2024-05-01", "2024-05-02"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}
