package esios

import (
	"context"
	"fmt"
	"time"

	"github.com/sablalpz/GreenEnergy-Insights/internal/domain/models"
	xhttp "github.com/sablalpz/GreenEnergy-Insights/pkg/http"
)

// Indicator IDs on the e.sios API: 600 is the day-ahead spot price, 1293 the
// real-time demand.
var indicatorIDs = map[models.Indicator]int{
	models.IndicatorPrice:  600,
	models.IndicatorDemand: 1293,
}

// Client fetches historical hourly values from the grid operator REST API.
type Client struct {
	http    *xhttp.Client
	baseURL string
	apiKey  string
}

func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type indicatorValue struct {
	Value    float64   `json:"value"`
	Datetime time.Time `json:"datetime_utc"`
}

type indicatorResponse struct {
	Indicator struct {
		Values []indicatorValue `json:"values"`
	} `json:"indicator"`
}

// FetchRange returns hourly readings for one indicator over [from, to).
func (c *Client) FetchRange(ctx context.Context, indicator models.Indicator, from, to time.Time) ([]*models.MeterReading, error) {
	id, ok := indicatorIDs[indicator]
	if !ok {
		return nil, fmt.Errorf("no remote indicator id for %q", indicator)
	}

	var resp indicatorResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/indicators/%d", c.baseURL, id),
		Headers: map[string]string{
			"Accept":    "application/json",
			"x-api-key": c.apiKey,
		},
		QueryParams: map[string][]string{
			"start_date": {from.UTC().Format(time.RFC3339)},
			"end_date":   {to.UTC().Format(time.RFC3339)},
			"time_trunc": {"hour"},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch indicator %d: %w", id, err)
	}

	readings := make([]*models.MeterReading, 0, len(resp.Indicator.Values))
	for _, v := range resp.Indicator.Values {
		if v.Datetime.IsZero() {
			continue
		}
		readings = append(readings, &models.MeterReading{
			Timestamp: v.Datetime.UTC(),
			Indicator: indicator,
			Value:     v.Value,
			Source:    "esios",
		})
	}
	return readings, nil
}
