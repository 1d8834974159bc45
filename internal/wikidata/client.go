package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mkarpis/eventkb/internal/model"
	"github.com/mkarpis/eventkb/internal/resolve"
	"github.com/mkarpis/eventkb/internal/util"
	"github.com/mkarpis/eventkb/internal/worker"
)

// Wikidata property identifiers mined from entity claims
const (
	propInstanceOf   = "P31"
	propCountry      = "P17"
	propOccupation   = "P106"
	propEmployer     = "P108"
	propHeadquarters = "P159"
	propIndustry     = "P452"
	propBirthDate    = "P569"
	propInception    = "P571"
	propCoordinates  = "P625"
	propPopulation   = "P1082"
)

// Client talks to the Wikidata action API. It implements resolve.Source:
// a best-ranked name search plus a detail fetch that returns every
// instance-of classification, with claim values flattened into the plain
// string attribute encoding the resolver expects.
type Client struct {
	httpClient *http.Client
	endpoint   string
	userAgent  string
	language   string
	maxBytes   int64
	limiter    *worker.Limiter
}

// NewClient creates a Wikidata client from configuration. The limiter may
// be nil when pacing is handled entirely by the caller.
func NewClient(cfg *model.Config, limiter *worker.Limiter) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.HTTP.Timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTP.ProxyHTTP, cfg.HTTP.ProxyHTTPS),
			},
		},
		endpoint:  cfg.Source.Endpoint,
		userAgent: cfg.HTTP.UserAgent,
		language:  cfg.Source.Language,
		maxBytes:  cfg.HTTP.MaxBodyBytes,
		limiter:   limiter,
	}
}

type searchResponse struct {
	Search []struct {
		ID string `json:"id"`
	} `json:"search"`
}

// SearchByName returns the best-ranked candidate identifier for a name, or
// "" when the source has no match.
func (c *Client) SearchByName(ctx context.Context, name string) (string, error) {
	params := url.Values{
		"action":   {"wbsearchentities"},
		"search":   {name},
		"language": {c.language},
		"limit":    {"1"},
		"format":   {"json"},
	}

	var resp searchResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return "", fmt.Errorf("search %q: %w", name, err)
	}
	if len(resp.Search) == 0 {
		return "", nil
	}
	return resp.Search[0].ID, nil
}

type entitiesResponse struct {
	Entities map[string]wdEntity `json:"entities"`
}

type wdEntity struct {
	Missing      *json.RawMessage     `json:"missing,omitempty"`
	Labels       map[string]wdLabel   `json:"labels"`
	Descriptions map[string]wdLabel   `json:"descriptions"`
	Claims       map[string][]wdClaim `json:"claims"`
}

type wdLabel struct {
	Value string `json:"value"`
}

type wdClaim struct {
	Mainsnak struct {
		Datavalue struct {
			Type  string          `json:"type"`
			Value json.RawMessage `json:"value"`
		} `json:"datavalue"`
	} `json:"mainsnak"`
}

// FetchDetails retrieves the full detail record for an entity: label,
// description, every instance-of classification label, and the attribute
// map. Referenced entities (classifications, occupation, country, ...) are
// label-resolved in a single follow-up batch call.
func (c *Client) FetchDetails(ctx context.Context, id string) (*resolve.Details, error) {
	entity, err := c.fetchEntity(ctx, id, "labels|descriptions|claims")
	if err != nil {
		return nil, err
	}

	// Collect every referenced entity ID so their labels resolve in one call.
	classIDs := entityValues(entity.Claims[propInstanceOf])
	refIDs := append([]string{}, classIDs...)
	entityProps := []string{propCountry, propOccupation, propEmployer, propHeadquarters, propIndustry}
	for _, prop := range entityProps {
		refIDs = append(refIDs, entityValues(entity.Claims[prop])...)
	}

	labels, err := c.fetchLabels(ctx, refIDs)
	if err != nil {
		return nil, err
	}

	details := &resolve.Details{
		Label:       entity.Labels[c.language].Value,
		Description: entity.Descriptions[c.language].Value,
		Attributes:  map[string]string{},
	}
	for _, classID := range classIDs {
		if label := labels[classID]; label != "" {
			details.Classifications = append(details.Classifications, label)
		}
	}

	setRef := func(attr, prop string) {
		if ids := entityValues(entity.Claims[prop]); len(ids) > 0 {
			if label := labels[ids[0]]; label != "" {
				details.Attributes[attr] = label
			}
		}
	}
	setRef(resolve.AttrCountry, propCountry)
	setRef(resolve.AttrOccupation, propOccupation)
	setRef(resolve.AttrEmployer, propEmployer)
	setRef(resolve.AttrHeadquarters, propHeadquarters)
	setRef(resolve.AttrIndustry, propIndustry)

	if date := timeValue(entity.Claims[propBirthDate]); date != "" {
		details.Attributes[resolve.AttrBirthDate] = date
	}
	if date := timeValue(entity.Claims[propInception]); date != "" {
		details.Attributes[resolve.AttrInception] = date
	}
	if amount := quantityValue(entity.Claims[propPopulation]); amount != "" {
		details.Attributes[resolve.AttrPopulation] = amount
	}
	if point := coordinateValue(entity.Claims[propCoordinates]); point != "" {
		details.Attributes[resolve.AttrCoordinates] = point
	}

	return details, nil
}

// fetchEntity retrieves one entity with the requested props
func (c *Client) fetchEntity(ctx context.Context, id, props string) (*wdEntity, error) {
	params := url.Values{
		"action":    {"wbgetentities"},
		"ids":       {id},
		"props":     {props},
		"languages": {c.language},
		"format":    {"json"},
	}

	var resp entitiesResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, fmt.Errorf("fetch entity %s: %w", id, err)
	}
	entity, ok := resp.Entities[id]
	if !ok || entity.Missing != nil {
		return nil, fmt.Errorf("entity %s not found", id)
	}
	return &entity, nil
}

// fetchLabels resolves labels for a set of entity IDs in one batch call
func (c *Client) fetchLabels(ctx context.Context, ids []string) (map[string]string, error) {
	labels := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return labels, nil
	}

	// The API caps one request at 50 IDs.
	for start := 0; start < len(ids); start += 50 {
		end := min(start+50, len(ids))
		params := url.Values{
			"action":    {"wbgetentities"},
			"ids":       {strings.Join(ids[start:end], "|")},
			"props":     {"labels"},
			"languages": {c.language},
			"format":    {"json"},
		}

		var resp entitiesResponse
		if err := c.get(ctx, params, &resp); err != nil {
			return nil, fmt.Errorf("fetch labels: %w", err)
		}
		for id, entity := range resp.Entities {
			labels[id] = entity.Labels[c.language].Value
		}
	}
	return labels, nil
}

// get performs one paced API request and decodes the JSON response
func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// entityValues extracts wikibase-entityid claim values
func entityValues(claims []wdClaim) []string {
	var ids []string
	for _, claim := range claims {
		if claim.Mainsnak.Datavalue.Type != "wikibase-entityid" {
			continue
		}
		var value struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(claim.Mainsnak.Datavalue.Value, &value); err == nil && value.ID != "" {
			ids = append(ids, value.ID)
		}
	}
	return ids
}

// timeValue extracts the first time claim as "YYYY-MM-DD"
func timeValue(claims []wdClaim) string {
	for _, claim := range claims {
		if claim.Mainsnak.Datavalue.Type != "time" {
			continue
		}
		var value struct {
			Time string `json:"time"`
		}
		if err := json.Unmarshal(claim.Mainsnak.Datavalue.Value, &value); err != nil {
			continue
		}
		// Wikidata times look like "+1984-12-30T00:00:00Z".
		t := strings.TrimPrefix(value.Time, "+")
		if idx := strings.Index(t, "T"); idx > 0 {
			t = t[:idx]
		}
		if t != "" {
			return t
		}
	}
	return ""
}

// quantityValue extracts the first quantity claim amount as plain digits
func quantityValue(claims []wdClaim) string {
	for _, claim := range claims {
		if claim.Mainsnak.Datavalue.Type != "quantity" {
			continue
		}
		var value struct {
			Amount string `json:"amount"`
		}
		if err := json.Unmarshal(claim.Mainsnak.Datavalue.Value, &value); err == nil && value.Amount != "" {
			return strings.TrimPrefix(value.Amount, "+")
		}
	}
	return ""
}

// coordinateValue extracts the first globe coordinate as "Point(lon lat)"
func coordinateValue(claims []wdClaim) string {
	for _, claim := range claims {
		if claim.Mainsnak.Datavalue.Type != "globecoordinate" {
			continue
		}
		var value struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		}
		if err := json.Unmarshal(claim.Mainsnak.Datavalue.Value, &value); err == nil {
			return fmt.Sprintf("Point(%g %g)", value.Longitude, value.Latitude)
		}
	}
	return ""
}
