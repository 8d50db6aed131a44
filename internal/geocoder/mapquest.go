package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/utafrali/devcamper/internal/domain"
	"github.com/utafrali/devcamper/pkg/httpclient"
)

// Getter issues GET requests. *httpclient.BreakerClient satisfies it.
type Getter interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

var _ Getter = (*httpclient.BreakerClient)(nil)

// MapQuest geocodes through the MapQuest Geocoding API v1.
type MapQuest struct {
	http    Getter
	baseURL string
	apiKey  string
	timeout time.Duration
}

// NewMapQuest creates a MapQuest geocoder. Each lookup is bounded by timeout.
func NewMapQuest(client Getter, baseURL, apiKey string, timeout time.Duration) *MapQuest {
	return &MapQuest{
		http:    client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
	}
}

type mapQuestResponse struct {
	Info struct {
		StatusCode int      `json:"statuscode"`
		Messages   []string `json:"messages"`
	} `json:"info"`
	Results []struct {
		Locations []mapQuestLocation `json:"locations"`
	} `json:"results"`
}

type mapQuestLocation struct {
	Street     string `json:"street"`
	City       string `json:"adminArea5"`
	State      string `json:"adminArea3"`
	Country    string `json:"adminArea1"`
	PostalCode string `json:"postalCode"`
	Quality    string `json:"geocodeQuality"`
	LatLng     struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"latLng"`
}

// Geocode returns the provider's best match for query, or ErrNoResult.
func (m *MapQuest) Geocode(ctx context.Context, query string) (*domain.Location, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrNoResult
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	params := url.Values{}
	params.Set("key", m.apiKey)
	params.Set("location", query)
	params.Set("maxResults", "1")

	resp, err := m.http.Get(ctx, m.baseURL+"/geocoding/v1/address?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("mapquest request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("mapquest status %d: %s", resp.StatusCode, body)
	}

	var out mapQuestResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode mapquest response: %w", err)
	}
	if out.Info.StatusCode != 0 {
		return nil, fmt.Errorf("mapquest status code %d: %s", out.Info.StatusCode, strings.Join(out.Info.Messages, "; "))
	}
	if len(out.Results) == 0 || len(out.Results[0].Locations) == 0 {
		return nil, ErrNoResult
	}

	loc := out.Results[0].Locations[0]
	// MapQuest answers unknown input with the centroid of the country.
	if loc.Quality == "COUNTRY" || (loc.LatLng.Lat == 0 && loc.LatLng.Lng == 0) {
		return nil, ErrNoResult
	}
	return loc.toDomain(), nil
}

func (l mapQuestLocation) toDomain() *domain.Location {
	stateZip := strings.TrimSpace(l.State + " " + l.PostalCode)
	var parts []string
	for _, p := range []string{l.Street, l.City, stateZip, l.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return &domain.Location{
		Latitude:         l.LatLng.Lat,
		Longitude:        l.LatLng.Lng,
		FormattedAddress: strings.Join(parts, ", "),
		Street:           l.Street,
		City:             l.City,
		State:            l.State,
		Zipcode:          l.PostalCode,
		Country:          l.Country,
	}
}
