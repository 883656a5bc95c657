package analyzer_test

import (
	"context"
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/resqdesk/resqdesk-api/consts"
	"github.com/resqdesk/resqdesk-api/external/analyzer"
	"github.com/resqdesk/resqdesk-api/schema"
)

func TestAnalyze(t *testing.T) {
	var received map[string]string
	calls := 0

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/analyze", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		b, _ := ioutil.ReadAll(r.Body)
		_ = json.Unmarshal(b, &received)

		_, _ = w.Write([]byte(`{
			"analysis": {
				"location": "Kali temple, old town",
				"emergency_type": "Structural collapse",
				"severity": "CRITICAL",
				"keywords": ["trapped", "temple"],
				"reasoning": "Callers report being trapped",
				"confidence_score": 0.92
			},
			"suggested_unit": "R03"
		}`))
	}))
	defer ts.Close()

	a := analyzer.New(ts.URL+"/", nil)
	r, err := a.Analyze(context.Background(), "We are trapped at the temple")

	assert.Nil(t, err, "wrong Analyze")
	assert.Equal(t, 1, calls)
	assert.Equal(t, map[string]string{"text": "We are trapped at the temple"}, received)
	assert.Equal(t, "Kali temple, old town", r.Location)
	assert.Equal(t, "Structural collapse", r.EmergencyType)
	assert.Equal(t, schema.SeverityCritical, r.Severity)
	assert.Equal(t, []string{"trapped", "temple"}, r.Keywords)
	assert.Equal(t, 0.92, r.ConfidenceScore)
	assert.Equal(t, "R03", r.SuggestedUnit)
}

func TestAnalyzeEmptyUtterance(t *testing.T) {
	a := analyzer.New("http://127.0.0.1:1", nil)
	_, err := a.Analyze(context.Background(), "  ")
	assert.Equal(t, analyzer.ErrEmptyUtterance, err)
}

func TestAnalyzeErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"analysis": {"location": "somewhere"}}`))
	}))
	defer ts.Close()

	r, err := analyzer.New(ts.URL, nil).Analyze(context.Background(), "help")
	assert.Nil(t, r)
	assert.True(t, errors.Is(err, analyzer.ErrResponseStatus), "wrong error %v", err)
}

func TestAnalyzeMalformed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway timeout</html>`))
	}))
	defer ts.Close()

	r, err := analyzer.New(ts.URL, nil).Analyze(context.Background(), "help")
	assert.Nil(t, r)
	assert.True(t, errors.Is(err, analyzer.ErrMalformedResult), "wrong error %v", err)
}

func TestAnalyzeTransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	url := ts.URL
	ts.Close()

	_, err := analyzer.New(url, nil).Analyze(context.Background(), "help")
	assert.NotNil(t, err)
}

func TestDecodeFlatBody(t *testing.T) {
	r, err := analyzer.Decode([]byte(`{"location":"Main street","severity":"low","keywords":"smoke","suggested_unit":"F07"}`))
	assert.Nil(t, err)
	assert.Equal(t, "Main street", r.Location)
	assert.Equal(t, schema.SeverityLow, r.Severity)
	assert.Equal(t, []string{}, r.Keywords)
	assert.Equal(t, "F07", r.SuggestedUnit)
}

func TestDecodeVictimRegistry(t *testing.T) {
	r, err := analyzer.Decode([]byte(`{"analysis":{"location":"River bank","severity":"high","adults":"2","children":"1","elderly":"0","flags":["flood"]}}`))
	assert.Nil(t, err)
	assert.Equal(t, "River bank", r.Location)
	assert.Equal(t, &schema.VictimCount{Adults: 2, Children: 1}, r.Victims)
	assert.Equal(t, []string{"flood"}, r.Keywords)
}

func TestDecodeMissingFields(t *testing.T) {
	r, err := analyzer.Decode([]byte(`{"analysis":{}}`))
	assert.Nil(t, err)
	assert.Equal(t, consts.AwaitingData, r.Location)
	assert.Equal(t, []string{}, r.Keywords)

	_, err = analyzer.Decode([]byte(`{"analysis":"not an object"}`))
	assert.True(t, errors.Is(err, analyzer.ErrMalformedResult))

	_, err = analyzer.Decode([]byte(`[]`))
	assert.True(t, errors.Is(err, analyzer.ErrMalformedResult))
}

func TestDecodeNullResult(t *testing.T) {
	for _, body := range []string{`null`, ` null `, `{"analysis": null}`, `{"analysis": null, "suggested_unit": "A12"}`} {
		r, err := analyzer.Decode([]byte(body))
		assert.Nil(t, r, body)
		assert.True(t, errors.Is(err, analyzer.ErrMalformedResult), body)
	}
}
