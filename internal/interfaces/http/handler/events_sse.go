package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/physiomanager/backend/internal/domain/billing"
	"github.com/physiomanager/backend/internal/domain/clinic"
	"github.com/physiomanager/backend/internal/domain/shared"
	"github.com/physiomanager/backend/internal/interfaces/http/middleware"
)

// SSEClient represents a connected SSE client
type SSEClient struct {
	ID        string
	AccountID string
	Chan      chan SSEMessage
	Done      chan struct{}
}

// SSEMessage represents a message to be sent to SSE clients
type SSEMessage struct {
	Event string `json:"event"`
	Data  string `json:"data"`
	ID    string `json:"id,omitempty"`
}

// ClinicUpdateEvent is the payload pushed when clinical data changes.
// Clients refetch the roster or dashboard when they receive one.
type ClinicUpdateEvent struct {
	Type        string `json:"type"`
	AggregateID string `json:"aggregate_id"`
	OccurredAt  string `json:"occurred_at"`
}

// ClinicEventSSEHandler streams clinical domain events to the browser so
// open dashboards refresh without polling. Events are delivered only to
// clients of the account that produced them.
type ClinicEventSSEHandler struct {
	BaseHandler
	subscriber shared.EventSubscriber
	logger     *zap.Logger
	clients    sync.Map // map[string]*SSEClient
	ctx        context.Context
	cancel     context.CancelFunc
	heartbeat  time.Duration
	started    bool
	startMu    sync.Mutex
	maxClients int
}

// ClinicEventSSEOption is a functional option for configuring the handler
type ClinicEventSSEOption func(*ClinicEventSSEHandler)

// WithSSELogger sets the logger for the handler
func WithSSELogger(logger *zap.Logger) ClinicEventSSEOption {
	return func(h *ClinicEventSSEHandler) {
		h.logger = logger
	}
}

// WithSSEHeartbeat sets the heartbeat interval
func WithSSEHeartbeat(interval time.Duration) ClinicEventSSEOption {
	return func(h *ClinicEventSSEHandler) {
		h.heartbeat = interval
	}
}

// WithSSEMaxClients sets the maximum number of concurrent SSE clients
func WithSSEMaxClients(max int) ClinicEventSSEOption {
	return func(h *ClinicEventSSEHandler) {
		h.maxClients = max
	}
}

// NewClinicEventSSEHandler creates a new SSE handler for clinical updates
func NewClinicEventSSEHandler(subscriber shared.EventSubscriber, opts ...ClinicEventSSEOption) *ClinicEventSSEHandler {
	ctx, cancel := context.WithCancel(context.Background())
	h := &ClinicEventSSEHandler{
		subscriber: subscriber,
		logger:     zap.NewNop(),
		ctx:        ctx,
		cancel:     cancel,
		heartbeat:  30 * time.Second,
		maxClients: 100,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Start subscribes to the event bus and begins heartbeating
func (h *ClinicEventSSEHandler) Start() error {
	h.startMu.Lock()
	defer h.startMu.Unlock()

	if h.started {
		return fmt.Errorf("SSE handler already started")
	}

	go h.sendHeartbeats()
	h.subscriber.Subscribe(h)

	h.started = true
	h.logger.Info("Clinic event SSE handler started")
	return nil
}

// Stop unsubscribes and disconnects all clients
func (h *ClinicEventSSEHandler) Stop() {
	h.cancel()
	h.subscriber.Unsubscribe(h)

	h.clients.Range(func(key, value any) bool {
		if client, ok := value.(*SSEClient); ok {
			close(client.Done)
		}
		return true
	})

	h.logger.Info("Clinic event SSE handler stopped")
}

// EventTypes returns the domain events worth pushing to the browser
func (h *ClinicEventSSEHandler) EventTypes() []string {
	return []string{
		clinic.EventTypeSessionLogged,
		clinic.EventTypePatientCreated,
		clinic.EventTypePatientUpdated,
		clinic.EventTypePatientCompleted,
		clinic.EventTypePatientReactivated,
		clinic.EventTypePatientDeleted,
		billing.EventTypePaymentRecorded,
	}
}

// Handle broadcasts a domain event to the clients of its tenant
func (h *ClinicEventSSEHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	payload := ClinicUpdateEvent{
		Type:        event.EventType(),
		AggregateID: event.AggregateID().String(),
		OccurredAt:  event.OccurredAt().Format(time.RFC3339),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msg := SSEMessage{
		Event: "clinic_update",
		Data:  string(data),
		ID:    event.EventID().String(),
	}

	h.broadcast(event.TenantID().String(), msg)
	return nil
}

// broadcast sends a message to the connected clients of one account
func (h *ClinicEventSSEHandler) broadcast(accountID string, msg SSEMessage) {
	h.clients.Range(func(key, value any) bool {
		client, ok := value.(*SSEClient)
		if !ok || client.AccountID != accountID {
			return true
		}

		select {
		case client.Chan <- msg:
		default:
			// Channel full, client might be slow
			h.logger.Warn("Client channel full, dropping message",
				zap.String("client_id", client.ID))
		}
		return true
	})
}

// sendHeartbeats periodically pings every client to keep connections alive
func (h *ClinicEventSSEHandler) sendHeartbeats() {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-ticker.C:
			beat := SSEMessage{
				Event: "heartbeat",
				Data:  fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix()),
			}
			h.clients.Range(func(_, value any) bool {
				if client, ok := value.(*SSEClient); ok {
					select {
					case client.Chan <- beat:
					default:
					}
				}
				return true
			})
		}
	}
}

// Stream establishes a Server-Sent Events connection for the caller
func (h *ClinicEventSSEHandler) Stream(c *gin.Context) {
	if h.maxClients > 0 && h.GetClientCount() >= h.maxClients {
		h.Error(c, 503, "MAX_CONNECTIONS_REACHED", "Maximum number of SSE connections reached")
		return
	}

	accountID := middleware.GetJWTAccountID(c)
	if accountID == "" {
		h.Unauthorized(c, "Authentication required")
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	// Buffer size allows messages to queue without blocking broadcast
	const sseMessageBufferSize = 64
	client := &SSEClient{
		ID:        uuid.New().String(),
		AccountID: accountID,
		Chan:      make(chan SSEMessage, sseMessageBufferSize),
		Done:      make(chan struct{}),
	}

	// Chan is never closed: broadcast and heartbeat goroutines may
	// still hold a reference after departure, so cleanup only removes
	// the client from the registry
	h.clients.Store(client.ID, client)
	defer h.clients.Delete(client.ID)

	h.logger.Info("SSE client connected",
		zap.String("client_id", client.ID),
		zap.String("account_id", accountID))

	h.sendEvent(c.Writer, SSEMessage{
		Event: "connected",
		Data:  fmt.Sprintf(`{"client_id":"%s","timestamp":%d}`, client.ID, time.Now().Unix()),
	})
	c.Writer.Flush()

	reqCtx := c.Request.Context()

	for {
		select {
		case <-reqCtx.Done():
			h.logger.Info("SSE client disconnected",
				zap.String("client_id", client.ID))
			return
		case <-client.Done:
			return
		case <-h.ctx.Done():
			return
		case msg := <-client.Chan:
			h.sendEvent(c.Writer, msg)
			c.Writer.Flush()
		}
	}
}

// sendEvent writes an SSE event to the response writer
func (h *ClinicEventSSEHandler) sendEvent(w io.Writer, msg SSEMessage) {
	if msg.Event != "" {
		fmt.Fprintf(w, "event: %s\n", msg.Event)
	}
	if msg.ID != "" {
		fmt.Fprintf(w, "id: %s\n", msg.ID)
	}
	fmt.Fprintf(w, "data: %s\n\n", msg.Data)
}

// GetClientCount returns the number of connected SSE clients
func (h *ClinicEventSSEHandler) GetClientCount() int {
	count := 0
	h.clients.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}
