package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/studybuddy-app/backend/internal/models"
)

// MatchClient talks to the external AI matching microservice. The service is
// an opaque HTTP dependency: any failure degrades to an unranked result.
type MatchClient struct {
	baseURL string
	client  *http.Client
}

// NewMatchClient creates a client for the matching service. An empty baseURL
// disables ranking entirely.
func NewMatchClient(baseURL string) *MatchClient {
	return &MatchClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

type matchRequest struct {
	UserID     string           `json:"userId"`
	Candidates []matchCandidate `json:"candidates"`
}

type matchCandidate struct {
	UserID   string   `json:"userId"`
	Exam     string   `json:"exam"`
	Class    string   `json:"class"`
	Subjects []string `json:"subjects"`
	Rating   float64  `json:"rating"`
}

type matchResponse struct {
	RankedIDs []string `json:"rankedIds"`
}

// RankCandidates asks the matching service to order candidates by fit for the
// given user. Returns the candidate ids in ranked order.
func (c *MatchClient) RankCandidates(ctx context.Context, userID string, candidates []models.User) ([]string, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("match service not configured")
	}

	req := matchRequest{UserID: userID}
	for _, cand := range candidates {
		req.Candidates = append(req.Candidates, matchCandidate{
			UserID:   cand.ID.Hex(),
			Exam:     cand.Exam,
			Class:    cand.Class,
			Subjects: cand.Subjects,
			Rating:   cand.Rating,
		})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode match request: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rank", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build match request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("match service request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("match service returned status %d", resp.StatusCode)
	}

	var result matchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode match response: %v", err)
	}
	return result.RankedIDs, nil
}
