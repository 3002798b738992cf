package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTagsList(t *testing.T) {
	router := testRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tags", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var response struct {
		TagCount int       `json:"tag_count"`
		Tags     []tagView `json:"tags"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	if response.TagCount != 3 || len(response.Tags) != 3 {
		t.Fatalf("tag_count = %d, tags = %d, want 3 each", response.TagCount, len(response.Tags))
	}
	for i := 1; i < len(response.Tags); i++ {
		if response.Tags[i].ID < response.Tags[i-1].ID {
			t.Errorf("tags not sorted by ID: %v", response.Tags)
		}
	}

	want := tagView{
		ID:          "rendering.lumen.global_illumination",
		DisplayName: "Lumen Global Illumination",
		Type:        "system",
	}
	found := false
	for _, tag := range response.Tags {
		if tag == want {
			found = true
		}
	}
	if !found {
		t.Errorf("tags = %v, want entry %v", response.Tags, want)
	}
}

func TestTagsExtract(t *testing.T) {
	router := testRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/extract", strings.NewReader(`{"query":"gi lighting"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var response struct {
		MatchedTagIDs []string `json:"matched_tag_ids"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(response.MatchedTagIDs) == 0 {
		t.Error("no tags extracted")
	}
}
