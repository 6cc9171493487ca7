package transit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/parigo/parigo/pkg/util"
)

const defaultEndpoint = "https://prim.iledefrance-mobilites.fr/marketplace/v2/navitia"
const requestTimeout = 20 * time.Second
const maxRetries = 3
const stopAreasPageSize = 1000

// Client talks to the PRIM marketplace Navitia API. It is an explicitly
// constructed object - callers own its lifecycle, there is no package level
// instance.
type Client struct {
	endpoint string
	apiKey   string

	httpClient *http.Client
}

func NewClient(endpoint string, apiKey string) *Client {
	return &Client{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

func NewClientFromEnvironment() (*Client, error) {
	apiKey := util.GetEnvironmentVariable("PARIGO_PRIM_API_KEY", "")
	if apiKey == "" {
		return nil, errors.New("PRIM API key not set (PARIGO_PRIM_API_KEY)")
	}

	endpoint := util.GetEnvironmentVariable("PARIGO_PRIM_ENDPOINT", defaultEndpoint)

	return NewClient(endpoint, apiKey), nil
}

// LineReports returns the current disruptions for a physical mode
// (eg. "Metro", "RapidTransit").
func (c *Client) LineReports(ctx context.Context, physicalMode string) (*LineReportsResponse, error) {
	var response LineReportsResponse

	path := fmt.Sprintf("line_reports/physical_modes/physical_mode:%s/line_reports", physicalMode)
	if err := c.get(ctx, path, nil, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// StopAreas returns one page of stop areas for a commercial mode
// (eg. "Metro", "RapidTransit").
func (c *Client) StopAreas(ctx context.Context, commercialMode string, startPage int) ([]StopArea, error) {
	var response StopAreasResponse

	path := fmt.Sprintf("commercial_modes/commercial_mode:%s/stop_areas", commercialMode)
	params := url.Values{}
	params.Set("count", fmt.Sprint(stopAreasPageSize))
	params.Set("start_page", fmt.Sprint(startPage))

	if err := c.get(ctx, path, params, &response); err != nil {
		return nil, err
	}

	return response.StopAreas, nil
}

// AllStopAreas pages through every stop area of a commercial mode.
func (c *Client) AllStopAreas(ctx context.Context, commercialMode string) ([]StopArea, error) {
	var stopAreas []StopArea

	for page := 0; ; page++ {
		pageStopAreas, err := c.StopAreas(ctx, commercialMode, page)
		if err != nil {
			return nil, err
		}

		stopAreas = append(stopAreas, pageStopAreas...)

		if len(pageStopAreas) < stopAreasPageSize {
			return stopAreas, nil
		}
	}
}

func (c *Client) Places(ctx context.Context, query string) ([]Place, error) {
	var response PlacesResponse

	params := url.Values{}
	params.Set("q", query)

	if err := c.get(ctx, "places", params, &response); err != nil {
		return nil, err
	}

	return response.Places, nil
}

// Journeys plans between two points. from and to are either stop ids or
// "lon;lat" pairs - the URL is assembled by hand as the upstream rejects a
// percent encoded ";" in the coordinate form.
func (c *Client) Journeys(ctx context.Context, from string, to string, count int) (*JourneysResponse, error) {
	var response JourneysResponse

	requestURL := fmt.Sprintf("%s/journeys?from=%s&to=%s&count=%d", c.endpoint, from, to, count)
	if err := c.getURL(ctx, requestURL, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, target interface{}) error {
	requestURL := fmt.Sprintf("%s/%s", c.endpoint, path)
	if len(params) > 0 {
		requestURL = fmt.Sprintf("%s?%s", requestURL, params.Encode())
	}

	return c.getURL(ctx, requestURL, target)
}

func (c *Client) getURL(ctx context.Context, requestURL string, target interface{}) error {
	operation := func() error {
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return backoff.Permanent(newError(KindUnavailable, err, "PRIM request could not be created"))
		}
		request.Header.Set("apikey", c.apiKey)

		response, err := c.httpClient.Do(request)
		if err != nil {
			return newError(KindUnavailable, err, "PRIM API unreachable: %s", err)
		}
		defer response.Body.Close()

		switch {
		case response.StatusCode == http.StatusUnauthorized:
			return backoff.Permanent(newError(KindAuthRejected, nil,
				"PRIM API rejected the API key (401) - check PARIGO_PRIM_API_KEY"))
		case response.StatusCode == http.StatusTooManyRequests || response.StatusCode >= 500:
			return newError(KindUnavailable, nil, "PRIM API returned %s", response.Status)
		case response.StatusCode != http.StatusOK:
			return backoff.Permanent(newError(KindMalformedPayload, nil,
				"PRIM API returned unexpected %s", response.Status))
		}

		body, err := io.ReadAll(response.Body)
		if err != nil {
			return newError(KindUnavailable, err, "PRIM response could not be read")
		}

		if err := json.Unmarshal(body, target); err != nil {
			return backoff.Permanent(newError(KindMalformedPayload, err,
				"PRIM response could not be decoded"))
		}

		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx))

	var transitError *Error
	if err != nil && !errors.As(err, &transitError) {
		return newError(KindUnavailable, err, "PRIM API unreachable: %s", err)
	}

	return err
}
