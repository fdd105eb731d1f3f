package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/patelvedant312/team-matching/internal/goroutine"
	"github.com/patelvedant312/team-matching/internal/logger"
)

// Event уходит клиенту как {"type": имя события, "data": полезная нагрузка}.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub рассылает события формирования команд подключённым клиентам организации.
type Hub struct {
	mu         sync.RWMutex
	clients    map[uuid.UUID]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	done       chan struct{}
	log        logrus.FieldLogger
}

type message struct {
	orgID   uuid.UUID
	payload []byte
}

// NewHub создаёт новый хаб.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 64),
		done:       make(chan struct{}),
		log:        logger.Component("ws"),
	}
}

// Run запускает главный цикл хаба до отмены ctx. При остановке все
// соединения закрываются.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.send(msg.orgID, msg.payload)
		}
	}
}

// Register добавляет клиента. После остановки хаба возвращает false.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// PublishToOrganization ставит событие в очередь рассылки. Вызов не блокируется:
// при переполненной очереди событие отбрасывается с предупреждением.
func (h *Hub) PublishToOrganization(orgID uuid.UUID, eventType string, payload interface{}) {
	raw, err := json.Marshal(Event{Type: eventType, Data: payload})
	if err != nil {
		h.log.WithError(fmt.Errorf("ws: не удалось сериализовать событие: %w", err)).
			WithField("event", eventType).Error("событие не отправлено")
		return
	}

	select {
	case h.broadcast <- message{orgID: orgID, payload: raw}:
	default:
		h.log.WithFields(logrus.Fields{"org_id": orgID, "event": eventType}).Warn("очередь событий переполнена")
	}
}

// Connections возвращает число подключений организации.
func (h *Hub) Connections(orgID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[orgID])
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.orgID]; !ok {
		h.clients[client.orgID] = make(map[*Client]struct{})
	}
	h.clients[client.orgID][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.orgID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)
		}
		if len(clients) == 0 {
			delete(h.clients, client.orgID)
		}
	}
}

func (h *Hub) send(orgID uuid.UUID, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[orgID] {
		select {
		case client.send <- payload:
		default:
			// медленный клиент
			goroutine.SafeGo(client.Close)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for orgID, clients := range h.clients {
		for client := range clients {
			close(client.send)
		}
		delete(h.clients, orgID)
	}
}
