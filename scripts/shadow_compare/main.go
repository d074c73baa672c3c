// Command shadow_compare replays read-only requests against the legacy
// deployment and this API and reports response differences. It is used
// while both systems run side by side to confirm that ranking and
// aggregation outputs agree.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"strings"
	"time"
)

type endpoint struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
}

type result struct {
	Endpoint     endpoint
	NewStatus    int
	LegacyStatus int
	StatusMatch  bool
	BodyMatch    bool
	Err          error
}

// defaultEndpoints covers the derived-analytics surface, where silent
// divergence would be hardest to notice by hand.
var defaultEndpoints = []endpoint{
	{Method: "GET", Path: "/api/v1/classes/1/ranking", Critical: true},
	{Method: "GET", Path: "/api/v1/classes/1/students", Critical: true},
	{Method: "GET", Path: "/api/v1/students/1/overview", Critical: true},
	{Method: "GET", Path: "/api/v1/schedule?class=1", Critical: false},
	{Method: "GET", Path: "/api/v1/grading-config", Critical: false},
}

func main() {
	var (
		newBase    string
		legacyBase string
		targets    string
		token      string
		timeout    time.Duration
	)

	flag.StringVar(&newBase, "new-base", "http://localhost:8080", "new API base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:8000", "legacy API base URL")
	flag.StringVar(&targets, "targets", "", "optional JSON file with endpoints to replay")
	flag.StringVar(&token, "token", os.Getenv("SHADOW_TOKEN"), "bearer token sent to both APIs")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")
	flag.Parse()

	endpoints := defaultEndpoints
	if targets != "" {
		loaded, err := loadEndpoints(targets)
		if err != nil {
			log.Fatalf("failed to load targets: %v", err)
		}
		endpoints = loaded
	}

	client := &http.Client{Timeout: timeout}
	breaking := 0
	for _, ep := range endpoints {
		res := compare(client, newBase, legacyBase, token, ep)
		report(res)
		if ep.Critical && (res.Err != nil || !res.StatusMatch || !res.BodyMatch) {
			breaking++
		}
	}

	fmt.Printf("breaking diffs: %d\n", breaking)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadEndpoints(path string) ([]endpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg struct {
		Endpoints []endpoint `json:"endpoints"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Endpoints) == 0 {
		return nil, fmt.Errorf("no endpoints defined in %s", path)
	}
	return cfg.Endpoints, nil
}

func compare(client *http.Client, newBase, legacyBase, token string, ep endpoint) result {
	res := result{Endpoint: ep}

	newStatus, newBody, err := fetch(client, newBase, token, ep)
	if err != nil {
		res.Err = fmt.Errorf("new api: %w", err)
		return res
	}
	legacyStatus, legacyBody, err := fetch(client, legacyBase, token, ep)
	if err != nil {
		res.Err = fmt.Errorf("legacy api: %w", err)
		return res
	}

	res.NewStatus = newStatus
	res.LegacyStatus = legacyStatus
	res.StatusMatch = newStatus == legacyStatus
	res.BodyMatch = bodiesEqual(newBody, legacyBody)
	return res
}

func fetch(client *http.Client, base, token string, ep endpoint) (int, []byte, error) {
	url := strings.TrimRight(base, "/") + ep.Path
	req, err := http.NewRequest(strings.ToUpper(ep.Method), url, nil)
	if err != nil {
		return 0, nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

// bodiesEqual compares JSON bodies structurally. Numbers are compared
// with a small tolerance since the legacy system rounds averages before
// serialising and this API rounds at the edge.
func bodiesEqual(a, b []byte) bool {
	var aj, bj interface{}
	if err := json.Unmarshal(a, &aj); err != nil {
		return string(a) == string(b)
	}
	if err := json.Unmarshal(b, &bj); err != nil {
		return false
	}
	return deepEqual(aj, bj)
}

func deepEqual(a, b interface{}) bool {
	switch av := a.(type) {
	case map[string]interface{}:
		bv, ok := b.(map[string]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			if !deepEqual(v, bv[k]) {
				return false
			}
		}
		return true
	case []interface{}:
		bv, ok := b.([]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !deepEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case float64:
		bv, ok := b.(float64)
		return ok && math.Abs(av-bv) < 0.005
	default:
		return a == b
	}
}

func report(res result) {
	status := "OK"
	if res.Err != nil {
		status = "ERROR"
	} else if !res.StatusMatch || !res.BodyMatch {
		status = "DIFF"
	}
	fmt.Printf("[%s] %s %s\n", status, res.Endpoint.Method, res.Endpoint.Path)
	if res.Err != nil {
		fmt.Printf("  error: %v\n", res.Err)
		return
	}
	fmt.Printf("  status new=%d legacy=%d body_match=%t critical=%t\n",
		res.NewStatus, res.LegacyStatus, res.BodyMatch, res.Endpoint.Critical)
}
