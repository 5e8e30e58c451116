// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pyroscope

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/bureau-foundation/explore-profiles/lib/clock"
	"github.com/bureau-foundation/explore-profiles/lib/datasource"
	"github.com/bureau-foundation/explore-profiles/lib/netutil"
	"github.com/bureau-foundation/explore-profiles/lib/variable"
)

const servicePath = "/querier.v1.QuerierService/"

// DefaultLookback is the window option queries cover when Config
// leaves it unset.
const DefaultLookback = time.Hour

// defaultMaxPoints caps series resolution when a request does not.
const defaultMaxPoints = 120

// Config configures a [Client].
type Config struct {
	// BaseURL is the querier's root URL, for example
	// "http://localhost:4040". Required.
	BaseURL string

	// Lookback is how far back option queries look. Defaults to
	// DefaultLookback.
	Lookback time.Duration

	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Clock defaults to clock.Real().
	Clock clock.Clock

	Logger *slog.Logger
}

// Client talks to one Pyroscope querier. Safe for concurrent use.
type Client struct {
	baseURL    string
	lookback   time.Duration
	httpClient *http.Client
	clock      clock.Clock
	logger     *slog.Logger
}

// NewClient validates config and returns a client.
func NewClient(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("pyroscope: base URL is required")
	}
	parsed, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("pyroscope: base URL %q: %w", config.BaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("pyroscope: base URL %q must use http or https", config.BaseURL)
	}

	lookback := config.Lookback
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	timeSource := config.Clock
	if timeSource == nil {
		timeSource = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		lookback:   lookback,
		httpClient: httpClient,
		clock:      timeSource,
		logger:     logger.With("querier", parsed.Host),
	}, nil
}

type labelValuesRequest struct {
	Name     string   `json:"name"`
	Matchers []string `json:"matchers,omitempty"`
	Start    int64    `json:"start"`
	End      int64    `json:"end"`
}

type labelNamesRequest struct {
	Matchers []string `json:"matchers,omitempty"`
	Start    int64    `json:"start"`
	End      int64    `json:"end"`
}

type namesResponse struct {
	Names []string `json:"names"`
}

type profileTypesResponse struct {
	ProfileTypes []struct {
		ID string `json:"ID"`
	} `json:"profileTypes"`
}

type selectSeriesRequest struct {
	ProfileTypeID string   `json:"profileTypeID"`
	LabelSelector string   `json:"labelSelector"`
	Start         int64    `json:"start"`
	End           int64    `json:"end"`
	GroupBy       []string `json:"groupBy,omitempty"`
	Step          float64  `json:"step"`
}

type selectSeriesResponse struct {
	Series []struct {
		Labels []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"labels"`
		Points []struct {
			Value     float64       `json:"value"`
			Timestamp flexibleInt64 `json:"timestamp"`
		} `json:"points"`
	} `json:"series"`
}

// flexibleInt64 accepts both JSON numbers and the quoted form Connect
// uses for 64-bit integers.
type flexibleInt64 int64

func (value *flexibleInt64) UnmarshalJSON(data []byte) error {
	text := strings.Trim(string(data), `"`)
	parsed, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return fmt.Errorf("pyroscope: integer %s: %w", data, err)
	}
	*value = flexibleInt64(parsed)
	return nil
}

// FetchOptions answers label_values, label_names and profile_types
// queries over the lookback window.
func (client *Client) FetchOptions(ctx context.Context, query string) ([]variable.Option, error) {
	parsed, err := datasource.ParseOptionQuery(query)
	if err != nil {
		return nil, err
	}
	end := client.clock.Now()
	start := end.Add(-client.lookback)
	matchers := selectorMatchers(parsed.Selector)

	switch parsed.Function {
	case datasource.FunctionLabelValues:
		var response namesResponse
		err := client.post(ctx, "LabelValues", labelValuesRequest{
			Name:     parsed.Label,
			Matchers: matchers,
			Start:    start.UnixMilli(),
			End:      end.UnixMilli(),
		}, &response)
		if err != nil {
			return nil, err
		}
		return options(response.Names, nil), nil

	case datasource.FunctionLabelNames:
		var response namesResponse
		err := client.post(ctx, "LabelNames", labelNamesRequest{
			Matchers: matchers,
			Start:    start.UnixMilli(),
			End:      end.UnixMilli(),
		}, &response)
		if err != nil {
			return nil, err
		}
		return options(response.Names, func(name string) bool {
			return name == datasource.ServiceNameLabel || strings.HasPrefix(name, "__")
		}), nil

	case datasource.FunctionProfileTypes:
		var response profileTypesResponse
		err := client.post(ctx, "ProfileTypes", labelNamesRequest{
			Matchers: matchers,
			Start:    start.UnixMilli(),
			End:      end.UnixMilli(),
		}, &response)
		if err != nil {
			return nil, err
		}
		identifiers := make([]string, 0, len(response.ProfileTypes))
		for _, profileType := range response.ProfileTypes {
			identifiers = append(identifiers, profileType.ID)
		}
		return options(identifiers, nil), nil
	}
	return nil, fmt.Errorf("pyroscope: %q: %w", query, datasource.ErrUnsupportedQuery)
}

// FetchSeries runs SelectSeries for the request.
func (client *Client) FetchSeries(ctx context.Context, request datasource.Request) datasource.Result {
	timeRange := request.Range
	if timeRange.From.IsZero() || !timeRange.To.After(timeRange.From) {
		timeRange.To = client.clock.Now()
		timeRange.From = timeRange.To.Add(-client.lookback)
	}
	maxPoints := request.MaxPoints
	if maxPoints <= 0 {
		maxPoints = defaultMaxPoints
	}
	step := max(timeRange.To.Sub(timeRange.From).Seconds()/float64(maxPoints), 1)

	selector := request.Selector()
	body := selectSeriesRequest{
		ProfileTypeID: selector.ProfileType,
		LabelSelector: datasource.Selector{Matchers: selector.Matchers}.String(),
		Start:         timeRange.From.UnixMilli(),
		End:           timeRange.To.UnixMilli(),
		Step:          step,
	}
	if request.Params.GroupBy != nil && request.Params.GroupBy.Label != "" {
		body.GroupBy = []string{request.Params.GroupBy.Label}
	}

	var response selectSeriesResponse
	if err := client.post(ctx, "SelectSeries", body, &response); err != nil {
		return datasource.Result{State: datasource.StateError, Err: err}
	}

	result := datasource.Result{State: datasource.StateDone}
	for _, series := range response.Series {
		converted := datasource.Series{Labels: make(map[string]string, len(series.Labels))}
		for _, label := range series.Labels {
			converted.Labels[label.Name] = label.Value
		}
		for _, point := range series.Points {
			converted.Points = append(converted.Points, datasource.Point{
				Timestamp: time.UnixMilli(int64(point.Timestamp)).UTC(),
				Value:     point.Value,
			})
		}
		result.Series = append(result.Series, converted)
	}
	return result
}

func (client *Client) post(ctx context.Context, method string, requestBody, result any) error {
	encoded, err := json.Marshal(requestBody)
	if err != nil {
		return fmt.Errorf("pyroscope: encoding %s request: %w", method, err)
	}
	endpoint := client.baseURL + servicePath + method
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("pyroscope: creating %s request: %w", method, err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Connect-Protocol-Version", "1")

	started := client.clock.Now()
	response, err := client.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("pyroscope: %s: %w", method, err)
	}
	defer response.Body.Close()

	if err := netutil.CheckStatus(response); err != nil {
		return fmt.Errorf("pyroscope: %s: %w", method, err)
	}
	if err := netutil.DecodeResponse(response.Body, result); err != nil {
		return fmt.Errorf("pyroscope: %s: %w", method, err)
	}
	client.logger.Debug("querier request",
		"method", method,
		"duration", client.clock.Now().Sub(started),
	)
	return nil
}

// selectorMatchers renders a selector as the querier's matcher list: a
// single selector string including the profile type's name label when
// one is set.
func selectorMatchers(selector datasource.Selector) []string {
	if len(selector.Matchers) == 0 && selector.ProfileType == "" {
		return nil
	}
	matchers := datasource.Selector{Matchers: selector.Matchers}.String()
	if selector.ProfileType != "" {
		name, _, _ := strings.Cut(selector.ProfileType, ":")
		inner := strings.TrimSuffix(strings.TrimPrefix(matchers, "{"), "}")
		nameMatcher := `__name__="` + name + `"`
		if inner == "" {
			matchers = "{" + nameMatcher + "}"
		} else {
			matchers = "{" + nameMatcher + "," + inner + "}"
		}
	}
	return []string{matchers}
}

func options(values []string, skip func(string) bool) []variable.Option {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	result := make([]variable.Option, 0, len(sorted))
	for _, value := range sorted {
		if skip != nil && skip(value) {
			continue
		}
		result = append(result, variable.Option{Value: value, Label: value})
	}
	return result
}
