package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"nemostore/config"
	"nemostore/models"
)

// sortByNewest is the sort key the store search web UI sends. Kept fixed so
// successive pages enumerate a stable ordering.
const sortByNewest = "29"

// APIHandler fetches one page of the store search API at a time. Pagination
// policy (how far to go, when to stop) lives in the orchestrator; this type
// only knows how to issue and decode a single page request.
type APIHandler struct {
	baseURL string
	client  *http.Client
}

func NewAPIHandler(baseURL string, client *http.Client) *APIHandler {
	return &APIHandler{
		baseURL: baseURL,
		client:  client,
	}
}

type searchListResponse struct {
	Items []models.RawListing `json:"items"`
}

// FetchPage issues one bounding-box query for the given page index and
// returns the decoded records. An empty slice with a nil error means the
// region is exhausted. Any transport or decode failure is returned as-is;
// the caller decides what it aborts.
func (h *APIHandler) FetchPage(ctx context.Context, region *config.RegionConfig, page int) ([]models.RawListing, error) {
	params := url.Values{}
	params.Set("CompletedOnly", "false")
	params.Set("NELat", strconv.FormatFloat(region.NELat, 'f', -1, 64))
	params.Set("NELng", strconv.FormatFloat(region.NELng, 'f', -1, 64))
	params.Set("SWLat", strconv.FormatFloat(region.SWLat, 'f', -1, 64))
	params.Set("SWLng", strconv.FormatFloat(region.SWLng, 'f', -1, 64))
	params.Set("Zoom", strconv.Itoa(region.Zoom))
	params.Set("SortBy", sortByNewest)
	params.Set("PageIndex", strconv.Itoa(page))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Referer", "https://www.nemoapp.kr/store")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/145.0.0.0 Safari/537.36")
	req.Header.Set("sec-ch-ua-platform", `"Windows"`)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("page %d: API error %d: %s", page, resp.StatusCode, string(body))
	}

	var result searchListResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode page %d: %w", page, err)
	}

	return result.Items, nil
}
