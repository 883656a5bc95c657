package geocoder_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/resqdesk/resqdesk-api/external/geocoder"
)

func TestGeocode(t *testing.T) {
	var address string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		address = r.URL.Query().Get("address")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"results": [{
				"formatted_address": "Temple Rd, Old Town",
				"geometry": {"location": {"lat": 12.5, "lng": 77.25}}
			}]
		}`))
	}))
	defer ts.Close()

	g, err := geocoder.New("AIzaTestKey", "in", ts.URL)
	assert.Nil(t, err)

	c, err := g.Geocode(context.Background(), "the temple")
	assert.Nil(t, err, "wrong Geocode")
	assert.Equal(t, "the temple", address)
	assert.Equal(t, 12.5, c.Latitude)
	assert.Equal(t, 77.25, c.Longitude)
	assert.Equal(t, "Temple Rd, Old Town", c.FormattedAddress)
}

func TestGeocodeNoResult(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer ts.Close()

	g, err := geocoder.New("AIzaTestKey", "", ts.URL)
	assert.Nil(t, err)

	c, err := g.Geocode(context.Background(), "nowhere")
	assert.Nil(t, c)
	assert.Equal(t, geocoder.ErrNoResult, err)

	_, err = g.Geocode(context.Background(), " ")
	assert.Equal(t, geocoder.ErrEmptyLocation, err)
}
