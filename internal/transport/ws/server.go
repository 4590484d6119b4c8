package ws

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"relic-hunt/internal/game"
	"relic-hunt/internal/physics"
	"relic-hunt/internal/world"
)

const pingInterval = 15 * time.Second

// WSServer принимает WebSocket соединения, заводит на каждое игровую
// сессию и раздаёт исходящие сообщения. Реализует game.StateSink:
// системы тика шлют кадры и события прогрессии через него.
type WSServer struct {
	upgrader  websocket.Upgrader
	ticker    *game.GameTicker
	world     *world.World
	resolver  *physics.Resolver
	raycaster *physics.Raycaster
	savePath  string
	logger    zerolog.Logger

	clients   map[string]*SafeWriter
	clientsMu sync.Mutex

	nextID atomic.Int64
}

// NewWSServer создает новый WebSocket сервер
func NewWSServer(ticker *game.GameTicker, w *world.World, resolver *physics.Resolver, raycaster *physics.Raycaster, savePath string, logger zerolog.Logger) *WSServer {
	return &WSServer{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		ticker:    ticker,
		world:     w,
		resolver:  resolver,
		raycaster: raycaster,
		savePath:  savePath,
		logger:    logger.With().Str("component", "ws").Logger(),
		clients:   make(map[string]*SafeWriter),
	}
}

// HandleWS обрабатывает WebSocket соединения
func (srv *WSServer) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := srv.upgrader.Upgrade(w, r, nil)
	if err != nil {
		srv.logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	writer := NewSafeWriter(conn)
	sessionID := fmt.Sprintf("player-%d", srv.nextID.Add(1))

	session := game.NewSession(sessionID, srv.world.Spawn(), game.CluesFromWorld(srv.world))
	srv.ticker.AddSession(session)

	srv.clientsMu.Lock()
	srv.clients[sessionID] = writer
	srv.clientsMu.Unlock()

	srv.logger.Info().Str("session", sessionID).Str("remote", r.RemoteAddr).Msg("client connected")

	defer func() {
		srv.DropSession(sessionID)
		writer.Close()
		srv.logger.Info().Str("session", sessionID).Msg("client disconnected")
	}()

	srv.sendInitialState(sessionID, session, writer)

	done := make(chan struct{})
	defer close(done)
	go srv.pingLoop(session, writer, done)

	srv.readLoop(session, writer)
}

// sendInitialState отправляет новой сессии приветствие, все объекты
// сцены и срез прогрессии.
func (srv *WSServer) sendInitialState(sessionID string, session *game.Session, writer *SafeWriter) {
	spawn := srv.world.Spawn()
	if err := writer.WriteJSON(NewWelcomeMessage(sessionID, [3]float64{spawn.X(), spawn.Y(), spawn.Z()})); err != nil {
		srv.logger.Error().Err(err).Str("session", sessionID).Msg("failed to send welcome")
		return
	}

	objects := srv.world.Objects()
	for _, obj := range objects {
		if obj.Kind == world.KindBoundary {
			continue // контур границы клиенту не рисуется
		}
		if err := writer.WriteJSON(NewObjectMessage(obj)); err != nil {
			srv.logger.Error().Err(err).Str("session", sessionID).Str("object", obj.ID).Msg("failed to send object")
			return
		}
	}
	srv.logger.Debug().Str("session", sessionID).Int("objects", len(objects)).Msg("initial objects sent")

	if err := writer.WriteJSON(NewProgressMessage(session.Progress())); err != nil {
		srv.logger.Error().Err(err).Str("session", sessionID).Msg("failed to send progress")
	}
}

// readLoop читает входящие сообщения до закрытия соединения.
// Неразборчивое сообщение логируется и пропускается, соединение
// не рвётся.
func (srv *WSServer) readLoop(session *game.Session, writer *SafeWriter) {
	for {
		_, data, err := writer.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				srv.logger.Warn().Err(err).Str("session", session.ID).Msg("unexpected connection close")
			}
			return
		}

		msg, err := ParseMessage(data)
		if err != nil {
			srv.logger.Warn().Err(err).Str("session", session.ID).Msg("dropping malformed message")
			continue
		}

		if err := srv.dispatch(session, writer, msg); err != nil {
			srv.logger.Error().Err(err).Str("session", session.ID).Msg("message handler failed")
		}
	}
}

// dispatch направляет разобранное сообщение в обработчик по типу.
func (srv *WSServer) dispatch(session *game.Session, writer *SafeWriter, msg interface{}) error {
	switch m := msg.(type) {
	case *InputMessage:
		return srv.handleInput(session, m)
	case *ClickMessage:
		return srv.handleClick(session, m)
	case *StartMessage:
		return srv.handleStart(session, m)
	case *MoveObjectMessage:
		return srv.handleMoveObject(session, writer, m)
	case *PingMessage:
		return srv.handlePing(session, writer, m)
	default:
		return fmt.Errorf("%w: unhandled message %T", ErrInvalidMessage, msg)
	}
}

// pingLoop периодически шлёт ws ping для поддержания соединения через
// прокси с таймаутом простоя.
func (srv *WSServer) pingLoop(session *game.Session, writer *SafeWriter, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(5 * time.Second)
			if err := writer.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				srv.logger.Debug().Err(err).Str("session", session.ID).Msg("ping failed, stopping")
				return
			}
		}
	}
}

// DropSession убирает сессию из тикера и забывает её клиента.
// Используется и при закрытии соединения, и жнецом простаивающих
// сессий.
func (srv *WSServer) DropSession(sessionID string) {
	srv.ticker.RemoveSession(sessionID)

	srv.clientsMu.Lock()
	writer, ok := srv.clients[sessionID]
	delete(srv.clients, sessionID)
	srv.clientsMu.Unlock()

	if ok {
		writer.Close()
	}
}

// client возвращает писателя сессии, если соединение ещё живо.
func (srv *WSServer) client(sessionID string) (*SafeWriter, bool) {
	srv.clientsMu.Lock()
	defer srv.clientsMu.Unlock()
	writer, ok := srv.clients[sessionID]
	return writer, ok
}

// SendState реализует game.StateSink: кадр симуляции клиенту.
func (srv *WSServer) SendState(sessionID string, frame game.SessionFrame) {
	srv.send(sessionID, NewStateMessage(frame))
}

// SendProgress реализует game.StateSink: срез прогрессии клиенту.
func (srv *WSServer) SendProgress(sessionID string, snapshot game.ProgressSnapshot) {
	srv.send(sessionID, NewProgressMessage(snapshot))
}

// SendClue реализует game.StateSink: открытая улика клиенту.
func (srv *WSServer) SendClue(sessionID string, clue game.Clue) {
	srv.send(sessionID, NewClueMessage(clue))
}

// SendInfo реализует game.StateSink: текст для HUD клиенту.
func (srv *WSServer) SendInfo(sessionID string, message string) {
	srv.send(sessionID, NewInfoMessage(message))
}

func (srv *WSServer) send(sessionID string, msg interface{}) {
	writer, ok := srv.client(sessionID)
	if !ok {
		return
	}
	if err := writer.WriteJSON(msg); err != nil {
		srv.logger.Debug().Err(err).Str("session", sessionID).Msg("send failed")
	}
}
