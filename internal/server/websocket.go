package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"

	"sweeperctl/internal/capture"
	t "sweeperctl/internal/types"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// handleWS upgrades /ws?clientId=<id> to a control connection. A second
// connection for the same client replaces the first.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("clientId")
	if clientID == "" {
		clientID = "default"
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade error", "err", err)
		return
	}
	ws.SetReadLimit(1 << 20)

	s.log.Info("control connection", "client", clientID, "remote", r.RemoteAddr)
	if old := s.cfg.Manager.SetControl(clientID, ws); old != nil {
		old.Close()
	}
	go s.serveControl(clientID, ws)
}

func (s *Server) serveControl(clientID string, ws *websocket.Conn) {
	defer func() {
		s.cfg.Manager.RemoveControl(clientID, ws)
		ws.Close()
	}()

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			s.log.Debug("control read close", "client", clientID, "err", err)
			return
		}

		kind, payload, err := s.dispatch(msg)
		if err != nil {
			s.log.Warn("control command failed", "client", clientID, "err", err)
			kind, payload = commandError(err)
		}

		if err := ws.WriteMessage(kind, payload); err != nil {
			s.log.Debug("control write error", "client", clientID, "err", err)
			return
		}
	}
}

func (s *Server) dispatch(msg []byte) (int, []byte, error) {
	var cmd t.Command
	if err := json.Unmarshal(msg, &cmd); err != nil {
		return 0, nil, fmt.Errorf("invalid command: %w", err)
	}
	return s.execute(cmd)
}

// execute runs one control command and returns the frame to send back.
func (s *Server) execute(cmd t.Command) (int, []byte, error) {
	var (
		loc t.Location
		err error
	)
	switch cmd.Type {
	case "mousemove":
		loc, err = s.moveTo(cmd.X, cmd.Y)
	case "mouseclick":
		loc, err = s.click()
	case "location":
		loc, err = s.location()
	case "screencap":
		rect, err := capture.Rect(cmd.X, cmd.Y, cmd.W, cmd.H, s.cfg.Screen.Bounds())
		if err != nil {
			return 0, nil, err
		}
		data, err := s.screencap(rect)
		if err != nil {
			return 0, nil, err
		}
		return websocket.BinaryMessage, data, nil
	default:
		return 0, nil, fmt.Errorf("unknown command type %q", cmd.Type)
	}
	if err != nil {
		return 0, nil, err
	}
	b, err := json.Marshal(loc)
	if err != nil {
		return 0, nil, err
	}
	return websocket.TextMessage, b, nil
}

func commandError(err error) (int, []byte) {
	b, _ := json.Marshal(t.CommandError{Error: err.Error()})
	return websocket.TextMessage, b
}
