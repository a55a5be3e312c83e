package hub

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/park285/chess960-arena/internal/arena"
	"github.com/park285/chess960-arena/internal/directory"
	"github.com/park285/chess960-arena/internal/obslog"
	"github.com/park285/chess960-arena/pkg/gamedto"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// Server hosts the websocket surface and a small read-only REST API on
// a single echo instance.
type Server struct {
	e   *echo.Echo
	mgr *arena.Manager
	dir *directory.Directory

	mu      sync.RWMutex
	clients map[string]*client // conn id -> client
}

func New(mgr *arena.Manager, dir *directory.Directory) *Server {
	s := &Server{
		mgr:     mgr,
		dir:     dir,
		clients: make(map[string]*client),
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	e.GET("/healthz", s.handleHealth)
	e.GET("/ws", s.handleWS)

	api := e.Group("/api")
	api.GET("/stats", s.handleStats)
	api.GET("/users/:id/ratings", s.handleRatings)
	api.GET("/users/:id/games", s.handleGames)
	api.GET("/games/:id", s.handleGame)

	s.e = e
	return s
}

func (s *Server) Start(addr string) error { return s.e.Start(addr) }

func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"online":       s.mgr.OnlineCount(),
		"active_games": s.mgr.ActiveGames(),
	})
}

func (s *Server) handleRatings(c echo.Context) error {
	userID := strings.TrimSpace(c.Param("id"))
	if userID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing user id"})
	}
	acct, err := s.mgr.Account(c.Request().Context(), userID)
	if err != nil {
		obslog.L().Error("ratings_query_error", zap.String("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "ratings unavailable"})
	}
	return c.JSON(http.StatusOK, acct)
}

func (s *Server) handleGames(c echo.Context) error {
	userID := strings.TrimSpace(c.Param("id"))
	if userID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing user id"})
	}
	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	games, err := s.mgr.RecentGames(c.Request().Context(), userID, limit)
	if err != nil {
		obslog.L().Error("games_query_error", zap.String("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "history unavailable"})
	}
	return c.JSON(http.StatusOK, games)
}

func (s *Server) handleGame(c echo.Context) error {
	gameID := strings.TrimSpace(c.Param("id"))
	snap, err := s.mgr.GameSnapshot(c.Request().Context(), gameID)
	if err != nil {
		obslog.L().Error("game_query_error", zap.String("game_id", gameID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "game unavailable"})
	}
	if snap == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "game not found"})
	}
	return c.JSON(http.StatusOK, snap)
}

func (s *Server) handleWS(c echo.Context) error {
	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		obslog.L().Warn("ws_accept_error", zap.Error(err))
		return nil
	}
	cl := &client{id: uuid.NewString(), conn: conn}

	s.mu.Lock()
	s.clients[cl.id] = cl
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, cl.id)
		s.mu.Unlock()
		if cl.userID != "" {
			s.mgr.Disconnect(cl.userID, cl.id)
		}
		cl.close(websocket.StatusNormalClosure, "")
	}()

	s.readLoop(c.Request().Context(), cl)
	return nil
}

func (s *Server) readLoop(ctx context.Context, cl *client) {
	for {
		var req gamedto.Request
		if err := wsjson.Read(ctx, cl.conn, &req); err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				obslog.L().Debug("ws_read_closed", zap.String("conn_id", cl.id), zap.Error(err))
			}
			return
		}
		s.dispatch(ctx, cl, req)
	}
}

func (s *Server) dispatch(ctx context.Context, cl *client, req gamedto.Request) {
	if req.Op == gamedto.OpHello {
		userID := strings.TrimSpace(req.UserID)
		if userID == "" {
			return
		}
		// one identity per connection; a repeated hello is ignored so
		// the registered identity's directory entry is never stranded
		if cl.userID != "" {
			if cl.userID != userID {
				obslog.L().Debug("ws_hello_repeated",
					zap.String("conn_id", cl.id),
					zap.String("user_id", cl.userID),
				)
			}
			return
		}
		cl.userID = userID
		s.mgr.Connect(userID, cl.id)
		return
	}
	// every other op requires a completed hello
	if cl.userID == "" {
		obslog.L().Debug("ws_op_before_hello", zap.String("conn_id", cl.id), zap.String("op", req.Op))
		return
	}

	var out []gamedto.Outbound
	switch req.Op {
	case gamedto.OpFindMatch:
		out = s.mgr.RequestMatch(ctx, cl.id, cl.userID, req.TimeControl, req.Tolerance)
	case gamedto.OpCreateGame:
		out = s.mgr.CreateGame(ctx, cl.id, cl.userID, req.TimeControl)
	case gamedto.OpJoinGame:
		out = s.mgr.JoinGame(ctx, cl.id, cl.userID, req.GameID)
	case gamedto.OpMove:
		out = s.mgr.ApplyMove(ctx, cl.userID, req.GameID, req.Move)
	case gamedto.OpResign:
		out = s.mgr.Resign(ctx, cl.userID, req.GameID)
	case gamedto.OpAbort:
		out = s.mgr.Abort(ctx, cl.userID, req.GameID)
	case gamedto.OpOfferDraw:
		out = s.mgr.OfferDraw(ctx, cl.userID, req.GameID)
	case gamedto.OpRespondDraw:
		out = s.mgr.RespondDraw(ctx, cl.userID, req.GameID, req.Accept)
	default:
		obslog.L().Debug("ws_unknown_op", zap.String("op", req.Op))
		return
	}
	s.deliver(ctx, out)
}

// deliver fans outbound events to their recipients' live connections.
// Offline recipients are skipped; they re-sync via join on reconnect.
func (s *Server) deliver(ctx context.Context, outs []gamedto.Outbound) {
	for _, out := range outs {
		for _, userID := range out.To {
			connID, ok := s.dir.ConnFor(userID)
			if !ok {
				continue
			}
			s.mu.RLock()
			cl := s.clients[connID]
			s.mu.RUnlock()
			if cl == nil {
				continue
			}
			if err := cl.send(ctx, out.Event); err != nil {
				obslog.L().Warn("ws_send_error",
					zap.String("user_id", userID),
					zap.String("event", out.Event.Kind()),
					zap.Error(err),
				)
			}
		}
	}
}
