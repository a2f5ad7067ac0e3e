package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"boardroom/internal/domain"
)

type httpAdvisor struct {
	client  *http.Client
	baseURL string
}

// NewHTTPAdvisor returns a PlacementAdvisor that calls an external advisory
// service. The service receives the item's requirements and the current grid
// occupancy and answers with a candidate cell; callers revalidate the answer
// through the normal placement checks.
func NewHTTPAdvisor(client *http.Client, baseURL string) domain.PlacementAdvisor {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpAdvisor{client: client, baseURL: baseURL}
}

func (a *httpAdvisor) Suggest(ctx context.Context, placeReq domain.PlacementRequest) (domain.Cell, error) {
	body, err := json.Marshal(placeReq)
	if err != nil {
		return domain.Cell{}, fmt.Errorf("failed to marshal placement request: %w", err)
	}
	url := a.baseURL + "/suggest"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return domain.Cell{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return domain.Cell{}, fmt.Errorf("failed to fetch suggestion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Cell{}, fmt.Errorf("advisor returned status: %d", resp.StatusCode)
	}

	var cell domain.Cell
	if err := json.NewDecoder(resp.Body).Decode(&cell); err != nil {
		return domain.Cell{}, fmt.Errorf("failed to decode advisor response: %w", err)
	}
	if cell.RoomID == "" || cell.SlotID == "" {
		return domain.Cell{}, fmt.Errorf("advisor returned an incomplete cell")
	}
	return cell, nil
}
