package handler

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client представляет одно WebSocket соединение, подписанное на книгу.
type Client struct {
	BookID uuid.UUID
	Conn   *websocket.Conn
	send   chan []byte // Канал исходящих сообщений этого клиента
}

// Hub управляет активными WebSocket соединениями, сгруппированными по книгам.
// На одну книгу может быть подписано несколько клиентов; уведомление о задаче
// рассылается всем подписчикам ее книги.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]struct{} // Карта bookID -> подписанные клиенты
	register   chan *Client                       // Канал регистрации нового клиента
	unregister chan *Client                       // Канал удаления клиента
	mu         sync.RWMutex                       // Мьютекс для защиты доступа к clients
	logger     *zap.Logger
}

// NewHub создает и запускает новый менеджер соединений.
func NewHub(logger *zap.Logger) *Hub {
	h := &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.Named("Hub"),
	}
	go h.run() // Запускаем цикл управления в отдельной горутине
	return h
}

// run обрабатывает регистрацию и дерегистрацию клиентов.
func (h *Hub) run() {
	h.logger.Info("WebSocket hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			subs, ok := h.clients[client.BookID]
			if !ok {
				subs = make(map[*Client]struct{})
				h.clients[client.BookID] = subs
			}
			subs[client] = struct{}{}
			count := len(subs)
			h.mu.Unlock()
			h.logger.Info("Client subscribed",
				zap.String("book_id", client.BookID.String()),
				zap.Int("subscribers", count),
			)

		case client := <-h.unregister:
			h.mu.Lock()
			if subs, ok := h.clients[client.BookID]; ok {
				if _, ok := subs[client]; ok {
					delete(subs, client)
					close(client.send)
					if len(subs) == 0 {
						delete(h.clients, client.BookID)
					}
				}
			}
			h.mu.Unlock()
			h.logger.Info("Client unsubscribed", zap.String("book_id", client.BookID.String()))
		}
	}
}

// RegisterClient подписывает клиента на уведомления его книги.
func (h *Hub) RegisterClient(client *Client) {
	h.register <- client
}

// UnregisterClient снимает подписку и закрывает канал отправки клиента.
// Повторный вызов для того же клиента безопасен.
func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}

// BroadcastToBook ставит сообщение в очередь каждому подписчику книги.
// Возвращает число клиентов, принявших сообщение; клиенты с переполненным
// буфером пропускаются.
func (h *Hub) BroadcastToBook(bookID uuid.UUID, message []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for client := range h.clients[bookID] {
		select {
		case client.send <- message:
			delivered++
		default:
			h.logger.Warn("Client send buffer full, dropping message", zap.String("book_id", bookID.String()))
		}
	}
	return delivered
}
