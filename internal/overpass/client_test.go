package overpass_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"osmblocks/internal/geom"
	"osmblocks/internal/overpass"
)

var nycBox = geom.BoundingBox{MinLat: 40.7128, MinLon: -74.0060, MaxLat: 40.7138, MaxLon: -74.0050}

const nycBody = `{
  "version": 0.6,
  "generator": "Overpass API",
  "bounds": {"minlat": 40.7128, "minlon": -74.0060, "maxlat": 40.7138, "maxlon": -74.0050},
  "elements": [
    {
      "type": "way",
      "id": 1001,
      "tags": {"building": "yes", "height": 15, "name": "Test Hall"},
      "geometry": [
        {"lat": 40.7130, "lon": -74.0058},
        {"lat": 40.7130, "lon": -74.0055},
        {"lat": 40.7133, "lon": -74.0055},
        {"lat": 40.7133, "lon": -74.0058},
        {"lat": 40.7130, "lon": -74.0058}
      ]
    }
  ]
}`

type server struct {
	*httptest.Server
	hits    atomic.Int32
	lastReq atomic.Value // url.Values
	lastUA  atomic.Value // string
}

func newServer(t *testing.T, status int, body string) *server {
	t.Helper()
	s := &server{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		raw, _ := io.ReadAll(r.Body)
		form, _ := url.ParseQuery(string(raw))
		s.lastReq.Store(form)
		s.lastUA.Store(r.Header.Get("User-Agent"))
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(s.Close)
	return s
}

func clientFor(s *server) *overpass.Client {
	return overpass.NewClient(overpass.Options{Endpoint: s.URL, UserAgent: "osmblocks-test"})
}

func TestFetchSuccess(t *testing.T) {
	s := newServer(t, http.StatusOK, nycBody)
	box := nycBox

	res, err := clientFor(s).Fetch(context.Background(), box)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got := s.hits.Load(); got != 1 {
		t.Errorf("requests = %d, want 1", got)
	}
	if box != nycBox {
		t.Errorf("input box mutated: %+v", box)
	}
	if res.Box != nycBox || res.Bounds != nycBox {
		t.Errorf("Box = %+v, Bounds = %+v", res.Box, res.Bounds)
	}
	if len(res.Features) != 1 {
		t.Fatalf("features = %d, want 1", len(res.Features))
	}
	f := res.Features[0]
	if f.ID != 1001 || f.Kind != "way" || len(f.Geometry) != 5 {
		t.Errorf("feature = %+v", f)
	}
	if f.Tags["height"] != "15" || f.Tags["name"] != "Test Hall" {
		t.Errorf("tags = %v", f.Tags)
	}

	form := s.lastReq.Load().(url.Values)
	q := form.Get("data")
	if !strings.Contains(q, `way["building"](40.7128,-74.006,40.7138,-74.005)`) || !strings.Contains(q, "out geom;") {
		t.Errorf("query = %q", q)
	}
	if ua := s.lastUA.Load().(string); ua != "osmblocks-test" {
		t.Errorf("User-Agent = %q", ua)
	}
}

func TestFetchInvalidBoxMakesNoRequest(t *testing.T) {
	s := newServer(t, http.StatusOK, nycBody)
	c := clientFor(s)
	boxes := []geom.BoundingBox{
		{MinLat: 40.7138, MinLon: -74.0060, MaxLat: 40.7128, MaxLon: -74.0050},
		{MinLat: 40.7128, MinLon: -74.0050, MaxLat: 40.7138, MaxLon: -74.0060},
		{MinLat: 1, MinLon: 1, MaxLat: 1, MaxLon: 1},
	}
	for _, b := range boxes {
		_, err := c.Fetch(context.Background(), b)
		if !errors.Is(err, geom.ErrInvalidBounds) {
			t.Errorf("Fetch(%+v) error = %v, want ErrInvalidBounds", b, err)
		}
		if errors.Is(err, overpass.ErrFetch) {
			t.Errorf("Fetch(%+v) error also matches ErrFetch", b)
		}
	}
	if got := s.hits.Load(); got != 0 {
		t.Errorf("requests = %d, want 0", got)
	}
}

func TestFetchFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		op     string
	}{
		{"server error", http.StatusInternalServerError, "boom", "status"},
		{"rate limited", http.StatusTooManyRequests, "slow down", "status"},
		{"malformed body", http.StatusOK, "{not json", "decode"},
		{"null body", http.StatusOK, "null", "decode"},
		{"empty object", http.StatusOK, "{}", "decode"},
		{"null elements", http.StatusOK, `{"elements":null}`, "decode"},
		{"remark without elements", http.StatusOK, `{"remark":"nope"}`, "decode"},
		{"elements not an array", http.StatusOK, `{"elements":{"a":1}}`, "decode"},
		{"runtime remark", http.StatusOK, `{"elements":[],"remark":"runtime error: Query timed out"}`, "remark"},
		{"no bounds", http.StatusOK, `{"elements":[{"type":"way","id":1,"tags":{"building":"yes"}}]}`, "bounds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newServer(t, tt.status, tt.body)
			_, err := clientFor(s).Fetch(context.Background(), nycBox)
			if !errors.Is(err, overpass.ErrFetch) {
				t.Fatalf("error = %v, want ErrFetch", err)
			}
			var fe *overpass.FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("error %T is not *FetchError", err)
			}
			if fe.Op != tt.op {
				t.Errorf("Op = %q, want %q", fe.Op, tt.op)
			}
			if !strings.HasPrefix(err.Error(), "overpass "+tt.op) {
				t.Errorf("error text %q does not name op %q", err.Error(), tt.op)
			}
			if tt.op == "status" && fe.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", fe.StatusCode, tt.status)
			}
			if got := s.hits.Load(); got != 1 {
				t.Errorf("requests = %d, want 1 (no retry)", got)
			}
		})
	}
}

func TestFetchTransportError(t *testing.T) {
	s := newServer(t, http.StatusOK, nycBody)
	endpoint := s.URL
	s.Close()

	_, err := overpass.NewClient(overpass.Options{Endpoint: endpoint}).Fetch(context.Background(), nycBox)
	var fe *overpass.FetchError
	if !errors.As(err, &fe) || fe.Op != "request" {
		t.Fatalf("error = %v, want request FetchError", err)
	}
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	c := overpass.NewClient(overpass.Options{Endpoint: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := c.Fetch(context.Background(), nycBox)
	if !errors.Is(err, overpass.ErrFetch) {
		t.Fatalf("error = %v, want ErrFetch", err)
	}
}

func TestFetchEmptyAnswerUsesQueryBox(t *testing.T) {
	s := newServer(t, http.StatusOK, `{"version":0.6,"elements":[]}`)
	res, err := clientFor(s).Fetch(context.Background(), nycBox)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(res.Features) != 0 || res.Bounds != nycBox {
		t.Errorf("result = %+v", res)
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := overpass.NewClient(overpass.Options{})
	if c.Endpoint() != overpass.DefaultEndpoint {
		t.Errorf("Endpoint() = %q", c.Endpoint())
	}
}
