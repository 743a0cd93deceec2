//go:build integration

// Package integration contains end-to-end integration tests for the Clover API.
// Run with: go test -v ./test/integration/... -tags=integration
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	baseURL = getEnv("TEST_BASE_URL", "http://localhost:3004/api/v1")
	userID  = getEnv("TEST_USER_ID", "11111111-1111-1111-1111-111111111111")
)

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// TestClient wraps http.Client with common headers
type TestClient struct {
	*http.Client
	baseURL string
	userID  string
}

func NewTestClient() *TestClient {
	return &TestClient{
		Client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		userID:  userID,
	}
}

func (c *TestClient) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", c.userID)
	return c.Client.Do(req)
}

func (c *TestClient) Get(path string) (*http.Response, error) {
	req, err := http.NewRequest("GET", c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

func (c *TestClient) Post(path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest("POST", c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

func (c *TestClient) Put(path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest("PUT", c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

func (c *TestClient) Delete(path string) (*http.Response, error) {
	req, err := http.NewRequest("DELETE", c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

func parseResponse(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	if target != nil {
		require.NoError(t, json.Unmarshal(body, target), "failed to parse response: %s", string(body))
	}
}

// TestHealthCheck verifies the API is running
func TestHealthCheck(t *testing.T) {
	client := NewTestClient()

	resp, err := client.Get("/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// TestSaveLifecycleE2E walks one item through create, relationship edit,
// note replacement, and delete.
func TestSaveLifecycleE2E(t *testing.T) {
	client := NewTestClient()
	suffix := time.Now().UnixNano()

	roleA := uuid.NewString()
	roleB := uuid.NewString()
	domain := uuid.NewString()

	// Step 1: create a task with two roles and one domain
	create := map[string]any{
		"parent_type":         "task",
		"title":               fmt.Sprintf("Plan anniversary %d", suffix),
		"selected_role_ids":   []string{roleA, roleB},
		"selected_domain_ids": []string{domain},
		"notes":               "book the restaurant",
	}
	resp, err := client.Post("/items", create)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "failed to create item")

	var created map[string]any
	parseResponse(t, resp, &created)
	parent := created["parent"].(map[string]any)
	itemID := parent["id"].(string)
	require.NotEmpty(t, itemID)
	assert.Equal(t, true, created["created"])
	assert.NotEmpty(t, created["note_id"])

	t.Cleanup(func() {
		resp, _ := client.Delete("/items/task/" + itemID)
		if resp != nil {
			resp.Body.Close()
		}
	})

	// Step 2: read it back with its selections
	resp, err = client.Get("/items/task/" + itemID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var detail map[string]any
	parseResponse(t, resp, &detail)
	assert.Len(t, detail["role_ids"], 2)
	assert.Len(t, detail["domain_ids"], 1)
	note := detail["note"].(map[string]any)
	assert.Equal(t, "book the restaurant", note["content"])

	// Step 3: edit with a reduced selection; the save replaces everything
	update := map[string]any{
		"parent_type":       "task",
		"title":             fmt.Sprintf("Plan anniversary %d", suffix),
		"selected_role_ids": []string{roleB},
		"notes":             "restaurant booked, order flowers",
	}
	resp, err = client.Put("/items/"+itemID, update)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated map[string]any
	parseResponse(t, resp, &updated)
	assert.Equal(t, false, updated["created"])

	resp, err = client.Get("/items/task/" + itemID)
	require.NoError(t, err)
	parseResponse(t, resp, &detail)
	roleIDs := detail["role_ids"].([]any)
	require.Len(t, roleIDs, 1)
	assert.Equal(t, roleB, roleIDs[0])
	assert.Empty(t, detail["domain_ids"])
	note = detail["note"].(map[string]any)
	assert.Equal(t, "restaurant booked, order flowers", note["content"])

	// Step 4: delete
	resp, err = client.Delete("/items/task/" + itemID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp, err = client.Get("/items/task/" + itemID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

// TestGoalLinkingE2E verifies goal-flagged saves aggregate onto the goal
func TestGoalLinkingE2E(t *testing.T) {
	client := NewTestClient()
	suffix := time.Now().UnixNano()

	goalID := uuid.NewString()
	role := uuid.NewString()

	create := map[string]any{
		"parent_type":         "depositIdea",
		"title":               fmt.Sprintf("Morning walk together %d", suffix),
		"is_twelve_week_goal": true,
		"goal_id":             goalID,
		"selected_role_ids":   []string{role},
	}
	resp, err := client.Post("/items", create)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created map[string]any
	parseResponse(t, resp, &created)
	parent := created["parent"].(map[string]any)
	itemID := parent["id"].(string)

	t.Cleanup(func() {
		resp, _ := client.Delete("/items/depositIdea/" + itemID)
		if resp != nil {
			resp.Body.Close()
		}
	})

	// the goal row itself doesn't exist, only its aggregation tables do,
	// so the goal read 404s while the links are still written
	resp, err = client.Get("/goals/" + goalID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

// TestValidationErrors exercises the reject-before-write paths
func TestValidationErrors(t *testing.T) {
	client := NewTestClient()

	cases := []map[string]any{
		{"parent_type": "reminder", "title": "nope"},
		{"parent_type": "task", "title": "   "},
		{"parent_type": "task", "title": "x", "is_twelve_week_goal": true},
	}
	for _, body := range cases {
		resp, err := client.Post("/items", body)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	}
}
