package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/park285/chess960-arena/internal/arena"
	"github.com/park285/chess960-arena/internal/directory"
	"github.com/park285/chess960-arena/internal/history"
	"github.com/park285/chess960-arena/internal/rating"
	"github.com/park285/chess960-arena/pkg/gamedto"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := directory.New()
	mgr := arena.New(arena.Params{
		Ratings:   rating.NewService(rating.NewMemoryStore()),
		History:   history.NewMemoryStore(),
		Directory: dir,
	})
	return New(mgr, dir)
}

func doGET(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := doGET(t, newTestServer(t), "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := doGET(t, s, "/api/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := body["online"]; !ok {
		t.Fatalf("stats missing online count: %v", body)
	}
}

func TestRatingsEndpointDefaultsUnknownUser(t *testing.T) {
	s := newTestServer(t)
	rec := doGET(t, s, "/api/users/alice/ratings")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var acct rating.Account
	if err := json.Unmarshal(rec.Body.Bytes(), &acct); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if acct.EloBlitz != rating.DefaultRating {
		t.Fatalf("blitz = %d", acct.EloBlitz)
	}
}

func TestRepeatedHelloKeepsFirstIdentity(t *testing.T) {
	s := newTestServer(t)
	cl := &client{id: "c1"}
	ctx := context.Background()

	s.dispatch(ctx, cl, gamedto.Request{Op: gamedto.OpHello, UserID: "alice"})
	if cl.userID != "alice" || !s.dir.IsOnline("alice") {
		t.Fatalf("hello not registered: userID=%q", cl.userID)
	}

	// a second hello under another id must not rebind the connection
	s.dispatch(ctx, cl, gamedto.Request{Op: gamedto.OpHello, UserID: "mallory"})
	if cl.userID != "alice" {
		t.Fatalf("connection rebound to %q", cl.userID)
	}
	if !s.dir.IsOnline("alice") || s.dir.IsOnline("mallory") {
		t.Fatalf("directory state wrong after repeated hello")
	}
	if s.dir.OnlineCount() != 1 {
		t.Fatalf("OnlineCount = %d", s.dir.OnlineCount())
	}

	// teardown releases the registered identity
	s.mgr.Disconnect(cl.userID, cl.id)
	if s.dir.OnlineCount() != 0 {
		t.Fatalf("identity stranded after disconnect: %d", s.dir.OnlineCount())
	}
}

func TestGameEndpointUnknownID(t *testing.T) {
	rec := doGET(t, newTestServer(t), "/api/games/NOPE42")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}
