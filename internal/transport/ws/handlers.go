package ws

import (
	"github.com/go-gl/mathgl/mgl64"

	"relic-hunt/internal/game"
	"relic-hunt/internal/physics"
	"relic-hunt/internal/world"
)

// handleInput откладывает снимок ввода до границы следующего тика.
func (srv *WSServer) handleInput(session *game.Session, msg *InputMessage) error {
	session.QueueInput(physics.Input{
		Forward:  msg.Forward,
		Right:    msg.Right,
		Yaw:      msg.Yaw,
		Pitch:    msg.Pitch,
		Jump:     msg.Jump,
		Fly:      msg.Fly,
		Descend:  msg.Descend,
		Crouch:   msg.Crouch,
		PointerX: msg.PointerX,
		PointerY: msg.PointerY,
	})
	return nil
}

// handleClick откладывает клик указателя.
func (srv *WSServer) handleClick(session *game.Session, msg *ClickMessage) error {
	session.QueueClick(msg.X, msg.Y)
	return nil
}

// handleStart откладывает запуск сценария.
func (srv *WSServer) handleStart(session *game.Session, _ *StartMessage) error {
	session.QueueStart()
	return nil
}

// handleMoveObject перемещает манипулируемый объект. Изменение мира
// применяется на границе тика через очередь записей тикера, чтобы не
// наблюдать сцену в полуобновлённом состоянии посреди тика.
func (srv *WSServer) handleMoveObject(session *game.Session, writer *SafeWriter, msg *MoveObjectMessage) error {
	id := msg.ID
	pos := mgl64.Vec3{msg.Position[0], msg.Position[1], msg.Position[2]}

	srv.ticker.QueueWrite(func() {
		if err := srv.world.MoveObject(id, pos); err != nil {
			srv.logger.Warn().Err(err).Str("session", session.ID).Str("object", id).Msg("move rejected")
			if werr := writer.WriteJSON(NewInfoMessage(err.Error())); werr != nil {
				srv.logger.Debug().Err(werr).Str("session", session.ID).Msg("send failed")
			}
			return
		}

		srv.resolver.MoveObstacle(id, pos)
		srv.raycaster.SetTargets(srv.world.Targets())

		srv.logger.Info().Str("session", session.ID).Str("object", id).
			Floats64("position", msg.Position[:]).Msg("object moved")

		// Все клиенты узнают о новом положении объекта
		if obj, ok := srv.world.Object(id); ok {
			srv.broadcast(NewObjectMessage(obj))
		}

		if srv.savePath != "" {
			saved := world.SavedTransform{ObjectID: id, Position: msg.Position}
			if err := world.SaveTransform(srv.savePath, saved); err != nil {
				srv.logger.Warn().Err(err).Str("path", srv.savePath).Msg("failed to persist transform")
			}
		}
	})
	return nil
}

// handlePing отвечает pong и отмечает активность клиента.
func (srv *WSServer) handlePing(session *game.Session, writer *SafeWriter, msg *PingMessage) error {
	session.Touch()
	return writer.WriteJSON(NewPongMessage(msg.ClientTime))
}

// broadcast шлёт сообщение всем подключённым клиентам.
func (srv *WSServer) broadcast(msg interface{}) {
	srv.clientsMu.Lock()
	writers := make([]*SafeWriter, 0, len(srv.clients))
	for _, w := range srv.clients {
		writers = append(writers, w)
	}
	srv.clientsMu.Unlock()

	for _, w := range writers {
		if err := w.WriteJSON(msg); err != nil {
			srv.logger.Debug().Err(err).Msg("broadcast send failed")
		}
	}
}
