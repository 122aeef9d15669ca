package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// PlayerIDHeader carries the client-chosen player id on the handshake.
const PlayerIDHeader = "X-Player-ID"

var ErrUnknownMessage = errors.New("unknown message type")

// Peer is the server link as seen by the loop.
type Peer interface {
	// Events delivers decoded server messages. It is closed when the link drops.
	Events() <-chan Event
	SendMovement(m PlayerMovement) error
	SendEatFood(foodID string) error
	Close() error
	// Err returns why the link dropped, if it did.
	Err() error
}

// BridgeConfig describes how to reach the server.
type BridgeConfig struct {
	URL              string
	PlayerID         string
	Codec            Codec
	HandshakeTimeout time.Duration
}

// Bridge is the websocket link to the game server. It relays local movement
// and food intents and turns incoming messages into Events.
type Bridge struct {
	ws     *websocket.Conn
	codec  Codec
	log    *zap.SugaredLogger
	events chan Event
	done   chan struct{}

	mu        sync.Mutex // protects ws writes
	closeOnce sync.Once

	errMu sync.Mutex
	err   error
}

var _ Peer = (*Bridge)(nil)

// Dial establishes the server link. The returned Bridge must be closed by its
// owner.
func Dial(ctx context.Context, cfg BridgeConfig, log *zap.SugaredLogger) (*Bridge, error) {
	codec := cfg.Codec
	if codec == nil {
		codec = jsonCodec{}
	}
	dialer := websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout}
	if dialer.HandshakeTimeout == 0 {
		dialer.HandshakeTimeout = 10 * time.Second
	}

	headers := make(http.Header)
	headers.Set(PlayerIDHeader, cfg.PlayerID)

	ws, _, err := dialer.DialContext(ctx, cfg.URL, headers)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.URL, err)
	}

	b := &Bridge{
		ws:     ws,
		codec:  codec,
		log:    log,
		events: make(chan Event, 256),
		done:   make(chan struct{}),
	}
	go b.reader()
	log.Infow("connected to server", "url", cfg.URL, "id", cfg.PlayerID, "codec", codec.Name())
	return b, nil
}

// Events returns the channel of decoded server messages.
func (b *Bridge) Events() <-chan Event {
	return b.events
}

// reader is the background reader for the bridge. It is spawned from Dial and
// is alive until the connection is closed.
func (b *Bridge) reader() {
	defer close(b.events)
	for {
		_, raw, err := b.ws.ReadMessage()
		if err != nil {
			select {
			case <-b.done:
			default:
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					b.log.Warnw("server read error", "err", err)
				}
				b.setErr(err)
			}
			return
		}

		ev, err := decodeEvent(b.codec, raw)
		if err != nil {
			b.log.Debugw("dropping server message", "err", err)
			continue
		}
		select {
		case b.events <- ev:
		case <-b.done:
			return
		}
	}
}

// decodeEvent turns one raw frame into an Event.
func decodeEvent(codec Codec, raw []byte) (Event, error) {
	msgType, payload, err := codec.Decode(raw)
	if err != nil {
		return Event{}, err
	}
	ev := Event{Type: msgType}
	switch msgType {
	case MsgCurrentPlayers:
		err = codec.Unmarshal(payload, &ev.Players)
	case MsgNewPlayer, MsgPlayerMoved:
		err = codec.Unmarshal(payload, &ev.Player)
	case MsgDisconnect, MsgRemovePlayer, MsgRemoveFood:
		err = codec.Unmarshal(payload, &ev.ID)
	case MsgCurrentFoods:
		err = codec.Unmarshal(payload, &ev.Foods)
	case MsgAddFood:
		err = codec.Unmarshal(payload, &ev.Food)
	case MsgYouDied:
	default:
		return ev, fmt.Errorf("%w: %q", ErrUnknownMessage, msgType)
	}
	if err != nil {
		return ev, fmt.Errorf("decode %s: %w", msgType, err)
	}
	return ev, nil
}

// SendMovement pushes the local snake state.
func (b *Bridge) SendMovement(m PlayerMovement) error {
	return b.send(MsgPlayerMovement, m)
}

// SendEatFood reports that the local snake ate foodID.
func (b *Bridge) SendEatFood(foodID string) error {
	return b.send(MsgEatFood, foodID)
}

func (b *Bridge) send(msgType string, payload any) error {
	data, err := b.codec.Encode(msgType, payload)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	select {
	case <-b.done:
		return ErrPeerClosed
	default:
	}
	return b.ws.WriteMessage(b.codec.FrameType(), data)
}

// Close closes the connection to the server. Further calls are no-ops.
func (b *Bridge) Close() error {
	var err error
	b.closeOnce.Do(func() {
		b.mu.Lock()
		close(b.done)
		_ = b.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		b.mu.Unlock()
		err = b.ws.Close()
	})
	return err
}

// Err returns the error that caused the connection to drop, if any.
func (b *Bridge) Err() error {
	b.errMu.Lock()
	defer b.errMu.Unlock()
	return b.err
}

func (b *Bridge) setErr(err error) {
	b.errMu.Lock()
	defer b.errMu.Unlock()
	b.err = err
}
