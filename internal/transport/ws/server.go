package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"landfall.gg/internal/protocol"
	"landfall.gg/internal/sim/world"
)

// Per-connection command budget. COMMAND messages beyond this are answered
// with E_RATE_LIMIT and never reach the tick loop.
const (
	commandRatePerSec = 20
	commandBurst      = 40
)

type Server struct {
	world *world.World
	log   *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(w *world.World, logger *log.Logger) *Server {
	s := &Server{
		world: w,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	return s
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		playerID, out := s.handshake(conn)
		if playerID == world.NoOwner {
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine. The out channel carries both tick-loop STATE
		// frames and reader-side error replies; nothing else touches conn.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		limiter := rate.NewLimiter(commandRatePerSec, commandBurst)

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				continue
			}
			if base.Type != protocol.TypeCommand {
				continue
			}
			if !limiter.Allow() {
				s.reply(out, protocol.ErrRateLimit, "command rate exceeded")
				continue
			}
			if err := protocol.ValidateCommand(msg); err != nil {
				s.reply(out, protocol.ErrProtoBadRequest, err.Error())
				continue
			}
			var cmd protocol.CommandMsg
			if err := json.Unmarshal(msg, &cmd); err != nil {
				s.reply(out, protocol.ErrProtoBadRequest, "malformed COMMAND")
				continue
			}
			if cmd.ProtocolVersion != protocol.Version {
				s.reply(out, protocol.ErrProtoBadRequest, "bad protocol_version")
				continue
			}
			s.world.Inbox() <- world.CommandEnvelope{PlayerID: playerID, Msg: cmd}
		}

		// Cleanup.
		s.world.Leave() <- playerID
	}
}

func (s *Server) handshake(conn *websocket.Conn) (world.PlayerID, chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return world.NoOwner, nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return world.NoOwner, nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return world.NoOwner, nil
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return world.NoOwner, nil
	}
	if hello.PlayerName == "" {
		hello.PlayerName = "player"
	}

	out := make(chan []byte, 16)

	respCh := make(chan world.JoinResponse, 1)
	s.world.Join() <- world.JoinRequest{
		Name: hello.PlayerName,
		Out:  out,
		Resp: respCh,
	}
	resp := <-respCh

	if err := writeJSON(conn, resp.Welcome); err != nil {
		return world.NoOwner, nil
	}
	return world.PlayerID(resp.Welcome.PlayerID), out
}

type errorReply struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message"`
}

// reply queues an error frame without blocking the reader; a client that
// cannot drain its own channel just loses the reply.
func (s *Server) reply(out chan []byte, code, message string) {
	b, err := json.Marshal(errorReply{
		Type:            "ERROR",
		ProtocolVersion: protocol.Version,
		Code:            code,
		Message:         message,
	})
	if err != nil {
		return
	}
	select {
	case out <- b:
	default:
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
