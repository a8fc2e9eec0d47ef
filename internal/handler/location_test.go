package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhaul/planner/backend/internal/routing"
)

func TestSearchLocations(t *testing.T) {
	var gotQuery string
	var gotLimit int
	locations := &mockLocationSearcher{
		SearchLocationsFn: func(_ context.Context, query string, limit int) ([]routing.SearchResult, error) {
			gotQuery = query
			gotLimit = limit
			return []routing.SearchResult{
				{ID: "node-123", Label: "Chicago, IL, USA", Lat: 41.8781, Lng: -87.6298},
			}, nil
		},
	}
	router := newRouter(deps{locations: locations})

	rec := doRequest(t, router, uuid.New(), http.MethodGet, "/locations/search?q=%20chicago%20&limit=3", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "chicago", gotQuery, "query whitespace is trimmed")
	assert.Equal(t, 3, gotLimit)

	var body struct {
		Data []routing.SearchResult `json:"data"`
	}
	decodeBody(t, rec, &body)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Chicago, IL, USA", body.Data[0].Label)
}

func TestSearchLocations_LimitDefaults(t *testing.T) {
	cases := []struct {
		name   string
		target string
	}{
		{"absent", "/locations/search?q=denver"},
		{"malformed", "/locations/search?q=denver&limit=lots"},
		{"non-positive", "/locations/search?q=denver&limit=0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var gotLimit int
			locations := &mockLocationSearcher{
				SearchLocationsFn: func(_ context.Context, _ string, limit int) ([]routing.SearchResult, error) {
					gotLimit = limit
					return nil, nil
				},
			}
			router := newRouter(deps{locations: locations})

			rec := doRequest(t, router, uuid.New(), http.MethodGet, tc.target, "")

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, 5, gotLimit)
		})
	}
}

func TestSearchLocations_NilResultsEncodeAsEmptyArray(t *testing.T) {
	locations := &mockLocationSearcher{
		SearchLocationsFn: func(_ context.Context, _ string, _ int) ([]routing.SearchResult, error) {
			return nil, nil
		},
	}
	router := newRouter(deps{locations: locations})

	rec := doRequest(t, router, uuid.New(), http.MethodGet, "/locations/search?q=nowhere", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}
