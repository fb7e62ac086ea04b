package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/seantiz/vigil/internal/actor"
	"github.com/seantiz/vigil/internal/model"
)

func TestListEventsEmpty(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/events")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	var body listEventsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Total != 0 || len(body.Events) != 0 {
		t.Errorf("events = %+v, want empty", body)
	}
	if body.Limit != defaultListLimit {
		t.Errorf("limit = %d, want %d", body.Limit, defaultListLimit)
	}
}

func TestActorEventsAfterSpawn(t *testing.T) {
	srv := newTestServer(t)
	a, err := srv.scheduler.Spawn(context.Background(), "w", actor.BehaviorNoop, actor.Params{})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	srv.scheduler.Wait()

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/actors/" + a.ID + "/events")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body actorEventsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(body.Events))
	}
	if body.Events[0].Kind != model.EventStarted || body.Events[1].Kind != model.EventTerminated {
		t.Errorf("kinds = %s, %s; want started, terminated", body.Events[0].Kind, body.Events[1].Kind)
	}

	list, err := http.Get(ts.URL + "/v1/events?limit=1")
	if err != nil {
		t.Fatalf("GET list: %v", err)
	}
	defer list.Body.Close()
	var page listEventsResponse
	if err := json.NewDecoder(list.Body).Decode(&page); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if page.Total != 2 || len(page.Events) != 1 {
		t.Errorf("page = total %d len %d, want total 2 len 1", page.Total, len(page.Events))
	}
}

func TestActorEventsNotFound(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/actors/nonexistent/events")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestStreamEventsReceivesLifecycle(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/v1/events/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET stream: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}

	if _, err := srv.scheduler.Spawn(context.Background(), "streamed", actor.BehaviorNoop, actor.Params{}); err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	var kinds []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() && len(kinds) < 2 {
		line := scanner.Text()
		if kind, ok := strings.CutPrefix(line, "event: "); ok {
			kinds = append(kinds, kind)
		}
	}

	if len(kinds) != 2 || kinds[0] != model.EventStarted || kinds[1] != model.EventTerminated {
		t.Errorf("streamed kinds = %v, want [started terminated]", kinds)
	}
}

func TestStreamEventsStoppedScheduler(t *testing.T) {
	srv := newTestServer(t)
	srv.scheduler.Stop()

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/events/stream")
	if err != nil {
		t.Fatalf("GET stream: %v", err)
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	if !scanner.Scan() || scanner.Text() != "event: done" {
		t.Errorf("first line = %q, want %q", scanner.Text(), "event: done")
	}
}
