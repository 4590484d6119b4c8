package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// SafeWriter обеспечивает потокобезопасную запись в WebSocket
// соединение: в него пишут тик (кадры), обработчики входящих
// сообщений (pong, подтверждения) и пинг-горутина.
type SafeWriter struct {
	conn  *websocket.Conn
	mutex sync.Mutex
}

// NewSafeWriter создает новый экземпляр SafeWriter
func NewSafeWriter(conn *websocket.Conn) *SafeWriter {
	return &SafeWriter{conn: conn}
}

// WriteJSON потокобезопасно записывает JSON данные в соединение
func (w *SafeWriter) WriteJSON(v interface{}) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.conn.WriteJSON(v)
}

// WriteControl потокобезопасно отправляет управляющий фрейм
func (w *SafeWriter) WriteControl(messageType int, data []byte, deadline time.Time) error {
	// WriteControl у gorilla сам сериализует конкурентные вызовы,
	// но не совместим с параллельным WriteJSON
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.conn.WriteControl(messageType, data, deadline)
}

// ReadMessage читает сообщение из соединения. Вызывается только из
// горутины чтения, блокировка не нужна.
func (w *SafeWriter) ReadMessage() (int, []byte, error) {
	return w.conn.ReadMessage()
}

// Close закрывает WebSocket соединение
func (w *SafeWriter) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.conn.Close()
}
