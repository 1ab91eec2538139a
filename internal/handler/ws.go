package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	// Время, разрешенное для записи сообщения клиенту.
	writeWait = 10 * time.Second
	// Время, разрешенное для чтения следующего pong сообщения от клиента.
	pongWait = 60 * time.Second
	// Отправлять пинги клиенту с этим периодом. Должно быть меньше pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Максимальный размер сообщения, разрешенный от клиента.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Авторизации на чтении нет, origin не ограничиваем
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler обрабатывает запросы на установку WebSocket соединения
// для подписки на уведомления о задачах иллюстраций книги.
type WSHandler struct {
	hub    *Hub
	logger *zap.Logger
}

// NewWSHandler создает новый обработчик WebSocket.
func NewWSHandler(hub *Hub, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		hub:    hub,
		logger: logger.Named("WSHandler"),
	}
}

// RegisterRoutes регистрирует маршрут подписки.
func (h *WSHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.serveWS)
}

// serveWS апгрейдит соединение и подписывает клиента на книгу из query.
func (h *WSHandler) serveWS(c echo.Context) error {
	bookIDStr := c.QueryParam("book_id")
	bookID, err := uuid.Parse(bookIDStr)
	if err != nil {
		h.logger.Warn("Invalid book_id query parameter in serveWS", zap.String("book_id", bookIDStr), zap.Error(err))
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid 'book_id' query parameter"})
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Ответ об ошибке upgrader уже записал сам
		h.logger.Error("Failed to upgrade connection", zap.String("book_id", bookID.String()), zap.Error(err))
		return nil
	}

	h.logger.Info("WebSocket connection established", zap.String("book_id", bookID.String()))

	client := &Client{
		BookID: bookID,
		Conn:   conn,
		send:   make(chan []byte, 256), // Буферизованный канал для отправки
	}
	h.hub.RegisterClient(client)

	clientLogger := h.logger.With(zap.String("book_id", bookID.String()))
	go client.writePump(clientLogger)
	go client.readPump(h.hub, clientLogger)

	return nil
}

// readPump читает из соединения до его закрытия. Сообщения от клиента не
// ожидаются и игнорируются; цикл чтения нужен для обработки pong и закрытия.
func (c *Client) readPump(hub *Hub, logger *zap.Logger) {
	defer func() {
		hub.UnregisterClient(c)
		_ = c.Conn.Close()
		logger.Debug("readPump finished")
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket read error", zap.Error(err))
			}
			break
		}
		logger.Debug("Ignoring unexpected client message", zap.ByteString("message", message))
	}
}

// writePump переносит сообщения из канала send в соединение и шлет пинги.
func (c *Client) writePump(logger *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
		logger.Debug("writePump finished")
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Хаб закрыл канал при дерегистрации
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("Failed to write message", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Warn("Failed to send ping", zap.Error(err))
				return
			}
		}
	}
}
