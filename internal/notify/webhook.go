package notify

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/park285/chess960-arena/internal/obslog"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// GameOverNotice is the JSON body posted to the configured webhook
// after each terminal game.
type GameOverNotice struct {
	GameID      string    `json:"game_id"`
	WhiteID     string    `json:"white_id"`
	BlackID     string    `json:"black_id"`
	Result      string    `json:"result"`
	Reason      string    `json:"reason"`
	WinnerID    string    `json:"winner_id,omitempty"`
	TimeControl string    `json:"time_control"`
	EndedAt     time.Time `json:"ended_at"`
}

// Webhook posts game-over notices. Delivery is best effort: failures
// are logged and never surfaced to the game pipeline.
type Webhook struct {
	url      string
	http     *fasthttp.Client
	timeout  time.Duration
	retryMax int
}

type Option func(*Webhook)

func WithTimeout(d time.Duration) Option {
	return func(w *Webhook) { w.timeout = d }
}

func WithRetry(max int) Option {
	return func(w *Webhook) { w.retryMax = max }
}

// New returns nil when no URL is configured; a nil Webhook is safe to
// call and does nothing.
func New(url string, opts ...Option) *Webhook {
	if strings.TrimSpace(url) == "" {
		return nil
	}
	w := &Webhook{
		url:      strings.TrimSpace(url),
		http:     &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 8},
		timeout:  5 * time.Second,
		retryMax: 2,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Webhook) GameOver(notice GameOverNotice) {
	if w == nil {
		return
	}
	body, err := json.Marshal(notice)
	if err != nil {
		obslog.L().Error("webhook_encode_error", zap.String("game_id", notice.GameID), zap.Error(err))
		return
	}
	if err := w.post(body); err != nil {
		obslog.L().Warn("webhook_delivery_failed",
			zap.String("game_id", notice.GameID),
			zap.String("url", w.url),
			zap.Error(err),
		)
		return
	}
	obslog.L().Debug("webhook_delivered", zap.String("game_id", notice.GameID))
}

func (w *Webhook) post(body []byte) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodPost)
	req.SetRequestURI(w.url)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	var lastErr error
	for attempt := 0; attempt <= w.retryMax; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * 250 * time.Millisecond)
		}
		if err := w.http.DoTimeout(req, resp, w.timeout); err != nil {
			lastErr = err
			continue
		}
		code := resp.StatusCode()
		if code >= 200 && code < 300 {
			return nil
		}
		lastErr = fmt.Errorf("webhook status %d", code)
		if code >= 400 && code < 500 {
			break
		}
	}
	return lastErr
}
