// Command smoke drives a running server through a small records scenario:
// a play, a later version of it, a ceremony nominating the later version,
// and the award lookups that should surface the nomination on both.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

var baseURL = "http://localhost:8080"

func main() {
	if u := os.Getenv("PLAYBILL_URL"); u != "" {
		baseURL = u
	}

	fmt.Println("Starting smoke run against", baseURL)
	suffix := fmt.Sprintf("smoke-%d", time.Now().Unix())

	fmt.Println("1. Creating original material...")
	var original struct {
		UUID string `json:"uuid"`
	}
	if !sendRequest("POST", "/api/materials", map[string]any{
		"name":           "Hamlet",
		"differentiator": suffix,
		"format":         "play",
		"year":           1600,
		"writingCredits": []map[string]any{{
			"entities": []map[string]any{{"model": "PERSON", "name": "William Shakespeare", "differentiator": suffix}},
		}},
	}, &original) {
		fail("Create original material")
	}
	fmt.Println("PASSED: Create original material")

	fmt.Println("2. Creating subsequent version...")
	var redux struct {
		UUID string `json:"uuid"`
	}
	if !sendRequest("POST", "/api/materials", map[string]any{
		"name":                    "Hamlet Redux",
		"differentiator":          suffix,
		"format":                  "play",
		"year":                    2024,
		"originalVersionMaterial": map[string]any{"name": "Hamlet", "differentiator": suffix},
	}, &redux) {
		fail("Create subsequent version")
	}
	fmt.Println("PASSED: Create subsequent version")

	fmt.Println("3. Creating award ceremony...")
	if !sendRequest("POST", "/api/award-ceremonies", map[string]any{
		"name":  "2024",
		"award": map[string]any{"name": "Bard Prize", "differentiator": suffix},
		"categories": []map[string]any{{
			"name": "Best Revival",
			"nominations": []map[string]any{{
				"isWinner":  true,
				"materials": []map[string]any{{"name": "Hamlet Redux", "differentiator": suffix}},
			}},
		}},
	}, nil) {
		fail("Create award ceremony")
	}
	fmt.Println("PASSED: Create award ceremony")

	fmt.Println("4. Checking awards...")
	for _, m := range []struct{ label, uuid string }{
		{"subsequent version", redux.UUID},
		{"original material", original.UUID},
	} {
		var awards []struct {
			Name string `json:"name"`
		}
		if !sendRequest("GET", "/api/materials/"+m.uuid+"/awards", nil, &awards) || len(awards) != 1 {
			fail("Awards for " + m.label)
		}
		fmt.Println("PASSED: Awards for", m.label)
	}

	fmt.Println("5. Checking the ceremony blocks deletion...")
	if sendRequest("DELETE", "/api/materials/"+redux.UUID, nil, nil) {
		fail("Nominated material was deleted")
	}
	fmt.Println("PASSED: Nominated material kept")
}

func fail(step string) {
	fmt.Println("FAILED:", step)
	os.Exit(1)
}

// sendRequest reports whether the call succeeded with a 2xx status and,
// when out is non-nil, decodes the response body into it.
func sendRequest(method, endpoint string, payload, out any) bool {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return false
	}
	fmt.Printf("Response: %s\n", string(respBody))

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			fmt.Printf("Error decoding response: %v\n", err)
			return false
		}
	}
	return true
}
