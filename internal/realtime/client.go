// Package realtime streams chat session events to WebSocket clients and
// accepts prompt and submit commands from them.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/neboloop/runbook/internal/chat"
	"github.com/neboloop/runbook/internal/logging"
	"github.com/neboloop/runbook/internal/types"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 32768

	sendBuffer = 512
)

var ErrClientSendBufferFull = errors.New("client send buffer full")

// Inbound frame types.
const (
	TypePing      = "ping"
	TypeSetPrompt = "set_prompt"
	TypeSubmit    = "submit"
)

// Outbound frame types besides the session event types.
const (
	TypePong  = "pong"
	TypeState = "state"
	TypeError = "error"
	TypeDone  = "submit_done"
)

// Inbound is a frame sent by the client.
type Inbound struct {
	Type   string  `json:"type"`
	Prompt *string `json:"prompt,omitempty"`
}

// Outbound is a frame sent to the client.
type Outbound struct {
	Type         string                   `json:"type"`
	Loading      *bool                    `json:"loading,omitempty"`
	Text         string                   `json:"text,omitempty"`
	RunbookId    int64                    `json:"runbookId,omitempty"`
	Interaction  *types.Interaction       `json:"interaction,omitempty"`
	Notification *types.Notification      `json:"notification,omitempty"`
	State        *types.ChatStateResponse `json:"state,omitempty"`
	Result       *types.SubmitResponse    `json:"result,omitempty"`
	Message      string                   `json:"message,omitempty"`
}

// FromEvent converts a session event into an outbound frame.
func FromEvent(ev chat.Event) Outbound {
	out := Outbound{Type: string(ev.Type), Text: ev.Text, RunbookId: ev.RunbookID}
	if ev.Type == chat.EventLoading {
		loading := ev.Loading
		out.Loading = &loading
	}
	if ev.Interaction != nil {
		ci := types.FromInteraction(*ev.Interaction)
		out.Interaction = &ci
	}
	if ev.Notification != nil {
		out.Notification = &types.Notification{Level: ev.Notification.Level, Message: ev.Notification.Message}
	}
	return out
}

// Client is one WebSocket connection bound to a chat session.
type Client struct {
	conn    *websocket.Conn
	session *chat.Session
	send    chan []byte

	ctx    context.Context
	cancel context.CancelFunc

	closed   bool
	closedMu sync.RWMutex
	submits  sync.WaitGroup
}

// NewClient creates a client for session over conn.
func NewClient(conn *websocket.Conn, session *chat.Session) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		conn:    conn,
		session: session,
		send:    make(chan []byte, sendBuffer),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Serve pushes the current state, relays session events and processes
// inbound frames until the connection closes. Submissions still running
// when the peer goes away are cancelled.
func (c *Client) Serve() {
	unsubscribe := c.session.Subscribe(func(ev chat.Event) {
		if err := c.Send(FromEvent(ev)); err != nil {
			logging.Warnf("[realtime] dropping client: %v", err)
			c.Close()
		}
	})

	st := types.FromState(c.session.Snapshot())
	_ = c.Send(Outbound{Type: TypeState, State: &st})

	go c.writePump()
	c.readPump()

	unsubscribe()
	c.Close()
	c.submits.Wait()
}

// Send queues a frame. It never blocks; a client that cannot keep up is an
// error.
func (c *Client) Send(out Outbound) error {
	data, err := json.Marshal(out)
	if err != nil {
		return err
	}
	c.closedMu.RLock()
	defer c.closedMu.RUnlock()
	if c.closed {
		return nil
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrClientSendBufferFull
	}
}

// Close shuts the connection down. Safe to call more than once.
func (c *Client) Close() {
	c.closedMu.Lock()
	if c.closed {
		c.closedMu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.closedMu.Unlock()
	c.cancel()
}

// readPump pumps frames from the websocket connection to the session.
func (c *Client) readPump() {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Errorf("WebSocket read error: %v", err)
			}
			return
		}
		var in Inbound
		if err := json.Unmarshal(msg, &in); err != nil {
			_ = c.Send(Outbound{Type: TypeError, Message: "malformed frame"})
			continue
		}
		c.handle(in)
	}
}

func (c *Client) handle(in Inbound) {
	switch in.Type {
	case TypePing:
		_ = c.Send(Outbound{Type: TypePong})
	case TypeSetPrompt:
		prompt := ""
		if in.Prompt != nil {
			prompt = *in.Prompt
		}
		c.session.SetPrompt(prompt)
	case TypeSubmit:
		if in.Prompt != nil {
			c.session.SetPrompt(*in.Prompt)
		}
		c.submits.Add(1)
		go func() {
			defer c.submits.Done()
			c.submit()
		}()
	default:
		_ = c.Send(Outbound{Type: TypeError, Message: "unknown frame type: " + in.Type})
	}
}

func (c *Client) submit() {
	res, err := c.session.SubmitResult(c.ctx)
	if err != nil {
		_ = c.Send(Outbound{Type: TypeError, Message: err.Error()})
		return
	}
	out := types.SubmitResponse{
		Submitted: res.Interaction != nil || res.Verdict.Reason != "",
		Allowed:   res.Verdict.Allowed,
		Reason:    string(res.Verdict.Reason),
		Message:   res.Verdict.Message,
	}
	if res.Interaction != nil {
		ci := types.FromInteraction(*res.Interaction)
		out.Interaction = &ci
	}
	_ = c.Send(Outbound{Type: TypeDone, Result: &out})
}

// writePump pumps queued frames to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
