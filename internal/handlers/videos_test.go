package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFeedVisibilityAndPagination(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	for i := 0; i < 12; i++ {
		video := env.createVideo(t, alice.ID, fmt.Sprintf("published %02d", i), true)
		video.CreatedAt = time.Now().UTC().Add(time.Duration(i) * time.Minute)
		_ = env.videos.Update(httptest.NewRequest(http.MethodGet, "/", nil).Context(), video)
	}
	draft := env.createVideo(t, alice.ID, "secret draft", false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos?page=1&limit=10", nil)
	rec := env.do(t, req, bob.ID)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	payload := decodeEnvelope(t, rec)
	data := payload["data"].(map[string]any)
	items := data["items"].([]any)
	meta := data["meta"].(map[string]any)
	if len(items) != 10 {
		t.Fatalf("expected 10 items, got %d", len(items))
	}
	if meta["total"] != float64(12) {
		t.Fatalf("expected total 12, got %v", meta["total"])
	}
	for _, raw := range items {
		item := raw.(map[string]any)
		if item["id"] == draft.ID {
			t.Fatal("draft leaked into another viewer's feed")
		}
		if _, ok := item["owner"].(map[string]any); !ok {
			t.Fatalf("expected owner profile on feed item, got %v", item)
		}
	}

	// Page and limit values outside range clamp instead of erroring.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/videos?page=-3&limit=9999", nil)
	rec = env.do(t, req, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for clamped window, got %d", rec.Code)
	}
	meta = decodeEnvelope(t, rec)["data"].(map[string]any)["meta"].(map[string]any)
	if meta["page"] != float64(1) || meta["limit"] != float64(100) {
		t.Fatalf("expected clamped page=1 limit=100, got %v", meta)
	}
}

func TestGetVideoVisibility(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	draft := env.createVideo(t, alice.ID, "draft", false)

	// Non-owner gets a 404, not a 403, so the draft's existence stays hidden.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/"+draft.ID, nil)
	rec := env.do(t, req, bob.ID)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for non-owner, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/videos/"+draft.ID, nil)
	rec = env.do(t, req, alice.ID)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGetVideoIncrementsViews(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	video := env.createVideo(t, alice.ID, "watched", true)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/"+video.ID, nil)
		if rec := env.do(t, req, ""); rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	}

	stored, err := env.videos.FindByID(httptest.NewRequest(http.MethodGet, "/", nil).Context(), video.ID)
	if err != nil {
		t.Fatalf("find video: %v", err)
	}
	if stored.Views != 3 {
		t.Fatalf("expected 3 views, got %d", stored.Views)
	}
}

func TestGetVideoMalformedID(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/not-a-uuid", nil)
	rec := env.do(t, req, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", rec.Code)
	}
}

func TestUpdateVideoOwnership(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	video := env.createVideo(t, alice.ID, "original", true)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/videos/"+video.ID,
		strings.NewReader(`{"title":"hijacked"}`))
	rec := env.do(t, req, bob.ID)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPatch, "/api/v1/videos/"+video.ID,
		strings.NewReader(`{"title":"renamed"}`))
	rec = env.do(t, req, alice.ID)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner, got %d: %s", rec.Code, rec.Body.String())
	}

	stored, _ := env.videos.FindByID(req.Context(), video.ID)
	if stored.Title != "renamed" {
		t.Fatalf("expected title to change, got %q", stored.Title)
	}
}

func TestTogglePublish(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	video := env.createVideo(t, alice.ID, "toggle me", true)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/videos/toggle/publish/"+video.ID, nil)
	rec := env.do(t, req, alice.ID)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["isPublished"] != false {
		t.Fatalf("expected isPublished false after toggle, got %v", data["isPublished"])
	}

	req = httptest.NewRequest(http.MethodPatch, "/api/v1/videos/toggle/publish/"+video.ID, nil)
	rec = env.do(t, req, alice.ID)
	data = decodeEnvelope(t, rec)["data"].(map[string]any)
	if data["isPublished"] != true {
		t.Fatalf("expected isPublished true after second toggle, got %v", data["isPublished"])
	}
}

func TestDeleteVideo(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	video := env.createVideo(t, alice.ID, "doomed", true)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/videos/"+video.ID, nil)
	rec := env.do(t, req, alice.ID)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/videos/"+video.ID, nil)
	rec = env.do(t, req, alice.ID)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}
