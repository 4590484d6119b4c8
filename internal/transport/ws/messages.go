package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"relic-hunt/internal/game"
	"relic-hunt/internal/world"
)

// Константы для WebSocket сообщений
const (
	// Входящие от клиента
	MessageTypeInput      = "input"       // Снимок состояния ввода
	MessageTypeClick      = "click"       // Клик указателя (NDC)
	MessageTypeStart      = "start"       // Запуск сценария поиска
	MessageTypeMoveObject = "move_object" // Перемещение манипулируемого объекта
	MessageTypePing       = "ping"        // Пинг для измерения задержки

	// Исходящие к клиенту
	MessageTypePong     = "pong"     // Ответ на пинг
	MessageTypeWelcome  = "welcome"  // Приветствие с идентификатором сессии
	MessageTypeObject   = "object"   // Описание объекта сцены
	MessageTypeState    = "state"    // Кадр симуляции
	MessageTypeProgress = "progress" // Срез прогрессии
	MessageTypeClue     = "clue"     // Открытая улика
	MessageTypeInfo     = "info"     // Текст для HUD
)

// ErrInvalidMessage возвращается при сообщении без типа или с
// неизвестным типом.
var ErrInvalidMessage = errors.New("invalid message")

// InputMessage — снимок состояния ввода клиента. Клиент шлёт его при
// каждом изменении; сервер хранит последний применённый снимок.
type InputMessage struct {
	Type     string  `json:"type"`
	Forward  float64 `json:"forward"`
	Right    float64 `json:"right"`
	Yaw      float64 `json:"yaw"`
	Pitch    float64 `json:"pitch"`
	Jump     bool    `json:"jump"`
	Fly      bool    `json:"fly"`
	Descend  bool    `json:"descend"`
	Crouch   bool    `json:"crouch"`
	PointerX float64 `json:"pointer_x"`
	PointerY float64 `json:"pointer_y"`
}

// ClickMessage — клик указателя в нормализованных экранных
// координатах [-1, 1].
type ClickMessage struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// StartMessage — запрос на запуск сценария поиска.
type StartMessage struct {
	Type string `json:"type"`
}

// MoveObjectMessage — перемещение манипулируемого объекта сцены.
type MoveObjectMessage struct {
	Type     string     `json:"type"`
	ID       string     `json:"id"`
	Position [3]float64 `json:"position"`
}

// PingMessage — пинг клиента
type PingMessage struct {
	Type       string  `json:"type"`
	ClientTime float64 `json:"client_time"`
}

// PongMessage — ответ на пинг
type PongMessage struct {
	Type       string  `json:"type"`
	ClientTime float64 `json:"client_time"`
	ServerTime int64   `json:"server_time"`
}

// WelcomeMessage — первое сообщение новой сессии.
type WelcomeMessage struct {
	Type       string     `json:"type"`
	SessionID  string     `json:"session_id"`
	Spawn      [3]float64 `json:"spawn"`
	ServerTime int64      `json:"server_time"`
}

// ObjectMessage — описание объекта сцены для начальной загрузки и
// уведомлений о перемещении.
type ObjectMessage struct {
	Type       string     `json:"type"`
	ID         string     `json:"id"`
	ObjectKind string     `json:"object_kind"`
	Position   [3]float64 `json:"position"`
	Radius     float64    `json:"radius,omitempty"`
	Movable    bool       `json:"movable,omitempty"`
	ServerTime int64      `json:"server_time"`
}

// HitPayload — попадание прицела в составе кадра.
type HitPayload struct {
	HasHit   bool       `json:"has_hit"`
	Point    [3]float64 `json:"point"`
	ObjectID string     `json:"object_id,omitempty"`
	Kind     string     `json:"kind"`
	Distance float64    `json:"distance"`
}

// StateMessage — кадр симуляции, транслируется каждый тик.
type StateMessage struct {
	Type       string     `json:"type"`
	Position   [3]float64 `json:"position"`
	Yaw        float64    `json:"yaw"`
	Pitch      float64    `json:"pitch"`
	Grounded   bool       `json:"grounded"`
	Crouching  bool       `json:"crouching"`
	Hit        HitPayload `json:"hit"`
	ServerTime int64      `json:"server_time"`
}

// ProgressMessage — срез прогрессии сценария.
type ProgressMessage struct {
	Type           string `json:"type"`
	Started        bool   `json:"started"`
	Complete       bool   `json:"complete"`
	CurrentLevel   int    `json:"current_level"`
	TreasuresFound int    `json:"treasures_found"`
	TotalTreasures int    `json:"total_treasures"`
}

// ClueMessage — открытая улика с текстом подсказки.
type ClueMessage struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Level int    `json:"level"`
	Title string `json:"title"`
	Hint  string `json:"hint"`
}

// InfoMessage — информационное сообщение для HUD.
type InfoMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// GetCurrentServerTime возвращает текущее серверное время в миллисекундах
func GetCurrentServerTime() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}

// ParseMessage разбирает входящее сообщение в соответствующий тип
func ParseMessage(data []byte) (interface{}, error) {
	var baseMessage struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &baseMessage); err != nil {
		return nil, fmt.Errorf("error parsing message: %w", err)
	}

	switch baseMessage.Type {
	case MessageTypeInput:
		var msg InputMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("error parsing input message: %w", err)
		}
		return &msg, nil

	case MessageTypeClick:
		var msg ClickMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("error parsing click message: %w", err)
		}
		return &msg, nil

	case MessageTypeStart:
		var msg StartMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("error parsing start message: %w", err)
		}
		return &msg, nil

	case MessageTypeMoveObject:
		var msg MoveObjectMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("error parsing move_object message: %w", err)
		}
		return &msg, nil

	case MessageTypePing:
		var msg PingMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("error parsing ping message: %w", err)
		}
		return &msg, nil

	case "":
		return nil, fmt.Errorf("%w: missing type field", ErrInvalidMessage)

	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidMessage, baseMessage.Type)
	}
}

// NewPongMessage создает новое сообщение-ответ на пинг
func NewPongMessage(clientTime float64) *PongMessage {
	return &PongMessage{
		Type:       MessageTypePong,
		ClientTime: clientTime,
		ServerTime: GetCurrentServerTime(),
	}
}

// NewWelcomeMessage создает приветственное сообщение для новой сессии
func NewWelcomeMessage(sessionID string, spawn [3]float64) *WelcomeMessage {
	return &WelcomeMessage{
		Type:       MessageTypeWelcome,
		SessionID:  sessionID,
		Spawn:      spawn,
		ServerTime: GetCurrentServerTime(),
	}
}

// NewObjectMessage создает описание объекта сцены
func NewObjectMessage(obj *world.Object) *ObjectMessage {
	msg := &ObjectMessage{
		Type:       MessageTypeObject,
		ID:         obj.ID,
		ObjectKind: obj.Kind.String(),
		Position:   [3]float64{obj.Position.X(), obj.Position.Y(), obj.Position.Z()},
		ServerTime: GetCurrentServerTime(),
	}
	switch obj.Kind {
	case world.KindClue:
		if obj.Clue != nil {
			msg.Radius = obj.Clue.Radius
		}
	case world.KindObstacle:
		if obj.Obstacle != nil {
			msg.Radius = obj.Obstacle.Radius
			msg.Movable = obj.Obstacle.Movable
		}
	case world.KindDecoration:
		if obj.Decoration != nil {
			msg.Radius = obj.Decoration.Radius
		}
	}
	return msg
}

// NewStateMessage создает кадр симуляции из снимка сессии
func NewStateMessage(frame game.SessionFrame) *StateMessage {
	return &StateMessage{
		Type:      MessageTypeState,
		Position:  [3]float64{frame.Position.X(), frame.Position.Y(), frame.Position.Z()},
		Yaw:       frame.Yaw,
		Pitch:     frame.Pitch,
		Grounded:  frame.Grounded,
		Crouching: frame.Crouching,
		Hit: HitPayload{
			HasHit:   frame.Hit.HasHit,
			Point:    [3]float64{frame.Hit.Point.X(), frame.Hit.Point.Y(), frame.Hit.Point.Z()},
			ObjectID: frame.Hit.ObjectID,
			Kind:     string(frame.Hit.Kind),
			Distance: frame.Hit.Distance,
		},
		ServerTime: GetCurrentServerTime(),
	}
}

// NewProgressMessage создает срез прогрессии
func NewProgressMessage(s game.ProgressSnapshot) *ProgressMessage {
	return &ProgressMessage{
		Type:           MessageTypeProgress,
		Started:        s.Started,
		Complete:       s.Complete,
		CurrentLevel:   s.CurrentLevel,
		TreasuresFound: s.TreasuresFound,
		TotalTreasures: s.TotalTreasures,
	}
}

// NewClueMessage создает сообщение об открытой улике
func NewClueMessage(c game.Clue) *ClueMessage {
	return &ClueMessage{
		Type:  MessageTypeClue,
		ID:    c.ID,
		Level: c.Level,
		Title: c.Title,
		Hint:  c.Hint,
	}
}

// NewInfoMessage создает новое информационное сообщение
func NewInfoMessage(message string) *InfoMessage {
	return &InfoMessage{
		Type:    MessageTypeInfo,
		Message: message,
	}
}
