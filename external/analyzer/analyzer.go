package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/resqdesk/resqdesk-api/consts"
	"github.com/resqdesk/resqdesk-api/schema"
)

//go:generate mockgen -destination=../../mocks/analyzer.go -package=mocks github.com/resqdesk/resqdesk-api/external/analyzer Analyzer

const (
	analyzePath = "/analyze"

	// read limit of a response body
	maxResponseSize = 1 << 20
)

var (
	ErrEmptyUtterance  = fmt.Errorf("empty utterance")
	ErrResponseStatus  = fmt.Errorf("analysis service responded with an error status")
	ErrMalformedResult = fmt.Errorf("malformed analysis result")
)

// Analyzer extracts an incident from a caller utterance
type Analyzer interface {
	Analyze(ctx context.Context, utterance string) (*schema.IncidentRecord, error)
}

type analyzer struct {
	url    string
	client *http.Client
}

type analyzeRequest struct {
	Text string `json:"text"`
}

// envelope is the response of the analysis service:
//
//	{"analysis": {...incident...}, "suggested_unit": "A12"}
//
// A body without the `analysis` key is read as a bare incident. Both the
// body and `analysis` must be objects.
type envelope struct {
	SuggestedUnit string `json:"suggested_unit"`
}

// New returns an analysis client for the service at baseURL
func New(baseURL string, client *http.Client) Analyzer {
	u := consts.DefaultAnalyzerURL
	if baseURL != "" {
		u = baseURL
	}
	if client == nil {
		client = &http.Client{Timeout: consts.DefaultAnalyzerTimeout}
	}

	return &analyzer{
		url:    strings.TrimRight(u, "/") + analyzePath,
		client: client,
	}
}

func (a *analyzer) Analyze(ctx context.Context, utterance string) (*schema.IncidentRecord, error) {
	if strings.TrimSpace(utterance) == "" {
		return nil, ErrEmptyUtterance
	}

	body, err := json.Marshal(analyzeRequest{Text: utterance})
	if nil != err {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if nil != err {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if nil != err {
		return nil, err
	}
	defer resp.Body.Close()

	d, err := ioutil.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if nil != err {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %d", ErrResponseStatus, resp.StatusCode)
	}

	return Decode(d)
}

// Decode reads an analysis result. The record is normalized before it is
// returned.
func Decode(data []byte) (*schema.IncidentRecord, error) {
	if !isObject(data) {
		return nil, fmt.Errorf("%w: body is not an object", ErrMalformedResult)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedResult, err)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedResult, err)
	}

	payload := data
	if analysis, ok := keys["analysis"]; ok {
		if !isObject(analysis) {
			return nil, fmt.Errorf("%w: analysis is not an object", ErrMalformedResult)
		}
		payload = analysis
	}

	record, err := decodeRecord(payload)
	if err != nil {
		return nil, err
	}

	if record.SuggestedUnit == "" {
		record.SuggestedUnit = env.SuggestedUnit
	}
	record.Normalize()
	return record, nil
}

func isObject(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

func decodeRecord(payload []byte) (*schema.IncidentRecord, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedResult, err)
	}

	if schema.IsVictimRegistry(fields) {
		var v schema.VictimRegistry
		if err := json.Unmarshal(payload, &v); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformedResult, err)
		}
		r := v.ToIncident()
		return &r, nil
	}

	var r schema.IncidentRecord
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedResult, err)
	}
	return &r, nil
}
