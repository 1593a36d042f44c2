// ABOUTME: Matrix bridge connecting chat rooms to the conversation engine
// ABOUTME: Handles login, the sync loop, per-room ordered dispatch and replies

package matrix

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/Enne678/RGZ-1SEM/internal/config"
	"github.com/Enne678/RGZ-1SEM/internal/conversation"
	"github.com/Enne678/RGZ-1SEM/internal/dedupe"
)

// Handler answers conversation events for an identity
type Handler interface {
	Handle(ctx context.Context, identity string, ev conversation.Event) conversation.Response
}

// messenger is the part of the Matrix client used to reply
type messenger interface {
	SendMessageEvent(ctx context.Context, roomID id.RoomID, eventType event.Type, contentJSON any, extra ...mautrix.ReqSendEvent) (*mautrix.RespSendEvent, error)
	UserTyping(ctx context.Context, roomID id.RoomID, typing bool, timeout time.Duration) (*mautrix.RespTyping, error)
}

// typingTimeout is the duration the typing indicator shows (30 seconds).
const typingTimeout = 30 * time.Second

// networkTimeout is the timeout for Matrix API calls.
const networkTimeout = 10 * time.Second

// queueSize is how many unprocessed messages a room may have waiting
const queueSize = 16

// queueIdle is how long a room worker waits for more messages before exiting
const queueIdle = time.Minute

// Redelivered events are recognised for this long
const (
	seenTTL  = 10 * time.Minute
	seenSize = 4096
)

// Bridge connects Matrix rooms to a Handler. Each room is one identity.
type Bridge struct {
	config  config.MatrixConfig
	matrix  *mautrix.Client
	out     messenger
	handler Handler
	logger  *slog.Logger

	menus *menuMemory
	seen  *dedupe.Window

	queuesMu sync.Mutex
	queues   map[id.RoomID]chan string

	// ctx is the parent context for room workers
	ctx    context.Context
	cancel context.CancelFunc
}

// NewBridge creates a new Matrix bridge.
func NewBridge(cfg config.MatrixConfig, handler Handler, logger *slog.Logger) (*Bridge, error) {
	if handler == nil {
		return nil, errors.New("handler is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := mautrix.NewClient(cfg.Homeserver, id.UserID(cfg.UserID), cfg.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("creating matrix client: %w", err)
	}

	return newBridge(cfg, client, client, handler, logger), nil
}

func newBridge(cfg config.MatrixConfig, client *mautrix.Client, out messenger, handler Handler, logger *slog.Logger) *Bridge {
	ctx, cancel := context.WithCancel(context.Background())
	return &Bridge{
		config:  cfg,
		matrix:  client,
		out:     out,
		handler: handler,
		logger:  logger.With("component", "matrix"),
		menus:   newMenuMemory(),
		seen:    dedupe.New(seenTTL, seenSize),
		queues:  make(map[id.RoomID]chan string),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Login authenticates with the homeserver. With an access token it only
// resolves the device; otherwise it performs a password login and keeps
// the returned credentials on the client.
func (b *Bridge) Login(ctx context.Context) error {
	if b.config.AccessToken != "" {
		resp, err := b.matrix.Whoami(ctx)
		if err != nil {
			return fmt.Errorf("checking access token: %w", err)
		}
		b.matrix.UserID = resp.UserID
		b.matrix.DeviceID = resp.DeviceID
		b.logger.Info("using access token", "user_id", resp.UserID.String(), "device_id", resp.DeviceID.String())
		return nil
	}

	resp, err := b.matrix.Login(ctx, &mautrix.ReqLogin{
		Type: mautrix.AuthTypePassword,
		Identifier: mautrix.UserIdentifier{
			Type: mautrix.IdentifierTypeUser,
			User: b.config.Username,
		},
		Password:                 b.config.Password,
		InitialDeviceDisplayName: "finance-bot",
		StoreCredentials:         true,
	})
	if err != nil {
		return fmt.Errorf("password login: %w", err)
	}

	b.logger.Info("logged in", "user_id", resp.UserID.String(), "device_id", resp.DeviceID.String())
	return nil
}

// UserID returns the bot's Matrix user ID
func (b *Bridge) UserID() string {
	return b.matrix.UserID.String()
}

// Client returns the underlying Matrix client
func (b *Bridge) Client() *mautrix.Client {
	return b.matrix
}

// Run starts the bridge and blocks until context is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	b.logger.Info("starting matrix bridge",
		"homeserver", b.config.Homeserver,
		"user_id", b.UserID(),
		"allowed_rooms", len(b.config.AllowedRooms),
	)
	defer b.cancel()

	syncer, ok := b.matrix.Syncer.(*mautrix.DefaultSyncer)
	if !ok {
		return fmt.Errorf("unexpected syncer type: %T", b.matrix.Syncer)
	}
	syncer.OnEventType(event.EventMessage, b.handleMessageEvent)
	syncer.OnEventType(event.StateMember, b.handleMemberEvent)

	syncCtx, stopSync := context.WithCancel(ctx)
	defer stopSync()

	syncErr := make(chan error, 1)
	go func() {
		syncErr <- b.matrix.SyncWithContext(syncCtx)
	}()

	b.logger.Info("matrix bridge running")

	select {
	case <-ctx.Done():
		b.logger.Info("shutting down matrix bridge")
		return nil
	case err := <-syncErr:
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("matrix sync failed: %w", err)
	}
}

// handleMessageEvent filters incoming messages and queues them for their room.
func (b *Bridge) handleMessageEvent(_ context.Context, evt *event.Event) {
	if evt.Sender == b.matrix.UserID {
		return
	}

	content, ok := evt.Content.Parsed.(*event.MessageEventContent)
	if !ok || content.MsgType != event.MsgText {
		return
	}

	if !b.isRoomAllowed(evt.RoomID.String()) {
		b.logger.Debug("ignoring message from non-allowed room", "room", evt.RoomID.String())
		return
	}

	body, ok := b.stripPrefix(content.Body)
	if !ok {
		return
	}

	if evt.ID != "" && b.seen.Seen(evt.ID.String()) {
		b.logger.Debug("ignoring redelivered event", "event_id", evt.ID.String())
		return
	}

	b.logger.Debug("received message",
		"room", evt.RoomID.String(),
		"sender", evt.Sender.String(),
		"content", truncate(body, 50),
	)
	b.enqueue(evt.RoomID, body)
}

// handleMemberEvent joins rooms the bot is invited to, when allowed.
func (b *Bridge) handleMemberEvent(ctx context.Context, evt *event.Event) {
	if evt.GetStateKey() != b.matrix.UserID.String() {
		return
	}
	member, ok := evt.Content.Parsed.(*event.MemberEventContent)
	if !ok || member.Membership != event.MembershipInvite {
		return
	}
	if !b.isRoomAllowed(evt.RoomID.String()) {
		b.logger.Info("ignoring invite to non-allowed room", "room", evt.RoomID.String())
		return
	}

	joinCtx, cancel := context.WithTimeout(ctx, networkTimeout)
	defer cancel()
	if _, err := b.matrix.JoinRoomByID(joinCtx, evt.RoomID); err != nil {
		b.logger.Warn("failed to join room", "room", evt.RoomID.String(), "error", err)
		return
	}
	b.logger.Info("joined room", "room", evt.RoomID.String(), "inviter", evt.Sender.String())
}

// stripPrefix removes the configured command prefix. ok is false when the
// body must be ignored.
func (b *Bridge) stripPrefix(body string) (string, bool) {
	if b.config.CommandPrefix != "" {
		if !strings.HasPrefix(body, b.config.CommandPrefix) {
			return "", false
		}
		body = strings.TrimSpace(strings.TrimPrefix(body, b.config.CommandPrefix))
	}
	if strings.TrimSpace(body) == "" {
		return "", false
	}
	return body, true
}

// isRoomAllowed checks if the room is in the allowed list.
func (b *Bridge) isRoomAllowed(roomID string) bool {
	if len(b.config.AllowedRooms) == 0 {
		return true // Allow all if no filter
	}
	return slices.Contains(b.config.AllowedRooms, roomID)
}

// enqueue hands body to the room's worker, starting one if needed.
// Messages of one room are processed in arrival order.
func (b *Bridge) enqueue(roomID id.RoomID, body string) {
	b.queuesMu.Lock()
	defer b.queuesMu.Unlock()

	q, ok := b.queues[roomID]
	if !ok {
		q = make(chan string, queueSize)
		b.queues[roomID] = q
		go b.roomWorker(roomID, q)
	}

	select {
	case q <- body:
	default:
		b.logger.Warn("room queue full, dropping message", "room", roomID.String())
	}
}

// roomWorker processes one room's messages until it has been idle for queueIdle
func (b *Bridge) roomWorker(roomID id.RoomID, q chan string) {
	idle := time.NewTimer(queueIdle)
	defer idle.Stop()

	for {
		select {
		case body := <-q:
			b.process(b.ctx, roomID, body)
			idle.Reset(queueIdle)
		case <-idle.C:
			b.queuesMu.Lock()
			if len(q) == 0 {
				delete(b.queues, roomID)
				b.queuesMu.Unlock()
				return
			}
			b.queuesMu.Unlock()
			idle.Reset(queueIdle)
		case <-b.ctx.Done():
			return
		}
	}
}

// process runs one message through the handler and sends the reply.
func (b *Bridge) process(ctx context.Context, roomID id.RoomID, body string) {
	ev := toEvent(body, b.menus.get(roomID))

	if b.config.TypingIndicator {
		b.setTyping(roomID, true)
		defer b.setTyping(roomID, false)
	}

	resp := b.handler.Handle(ctx, roomID.String(), ev)
	if resp.Empty() {
		return
	}
	b.menus.set(roomID, resp.Menu)
	b.sendResponse(roomID, resp)
}

// setTyping sends typing indicator to room.
func (b *Bridge) setTyping(roomID id.RoomID, typing bool) {
	var timeout time.Duration
	if typing {
		timeout = typingTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), networkTimeout)
	defer cancel()
	if _, err := b.out.UserTyping(ctx, roomID, typing, timeout); err != nil {
		b.logger.Debug("failed to set typing indicator", "room", roomID.String(), "error", err)
	}
}

// sendResponse sends resp to a room as a formatted text message.
func (b *Bridge) sendResponse(roomID id.RoomID, resp conversation.Response) {
	ctx, cancel := context.WithTimeout(context.Background(), networkTimeout)
	defer cancel()

	if _, err := b.out.SendMessageEvent(ctx, roomID, event.EventMessage, messageContent(resp)); err != nil {
		b.logger.Error("failed to send message", "room", roomID.String(), "error", err)
	}
}

// Close stops all room workers
func (b *Bridge) Close() {
	b.cancel()
}

// truncate shortens a string to the given max rune count, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
