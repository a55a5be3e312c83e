package hub

import (
	"context"
	"sync"
	"time"

	"github.com/park285/chess960-arena/pkg/gamedto"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const writeTimeout = 10 * time.Second

// envelope is the outbound wire frame: a kind discriminator plus the
// event payload.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// client is one live websocket connection. userID is empty until the
// hello frame arrives; writes are serialized per connection.
type client struct {
	id     string
	userID string
	conn   *websocket.Conn
	mu     sync.Mutex
}

func (c *client) send(ctx context.Context, ev gamedto.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, c.conn, envelope{Event: ev.Kind(), Data: ev})
}

func (c *client) close(code websocket.StatusCode, reason string) {
	_ = c.conn.Close(code, reason)
}
