package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"sweeperctl/internal/capture"
	"sweeperctl/internal/query"
)

type response struct {
	status      int
	contentType string
	body        []byte
}

type handlerFunc func(params query.Params) (*response, error)

// handle adapts a handlerFunc to net/http. Parameter and region errors answer
// 400; any other failure is logged and the connection is dropped without a
// response.
func (s *Server) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := fn(query.Parse(r.URL.RawQuery))
		if err != nil {
			var perr *query.ParseError
			if errors.As(err, &perr) || errors.Is(err, capture.ErrOutOfBounds) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			s.log.Error("request failed", "path", r.URL.Path, "query", r.URL.RawQuery, "err", err)
			panic(http.ErrAbortHandler)
		}

		status := resp.status
		if status == 0 {
			status = http.StatusOK
		}
		w.Header().Set("Content-Type", resp.contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(resp.body)))
		w.WriteHeader(status)
		_, _ = w.Write(resp.body)
	}
}

func jsonResponse(v any) (*response, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &response{contentType: "application/json", body: b}, nil
}

// handleMouseMove handles /mousemove?x=<int>&y=<int>. Missing coordinates default to -1.
func (s *Server) handleMouseMove(p query.Params) (*response, error) {
	x, err := p.Int("x", -1)
	if err != nil {
		return nil, err
	}
	y, err := p.Int("y", -1)
	if err != nil {
		return nil, err
	}

	loc, err := s.moveTo(x, y)
	if err != nil {
		return nil, err
	}
	s.log.Debug("mouse location", "x", loc.X, "y", loc.Y)
	return jsonResponse(loc)
}

// handleMouseClick handles /mouseclick.
func (s *Server) handleMouseClick(query.Params) (*response, error) {
	loc, err := s.click()
	if err != nil {
		return nil, err
	}
	s.log.Debug("mouse clicked", "x", loc.X, "y", loc.Y)
	return jsonResponse(loc)
}

// handleScreencap handles /screencap with optional x, y, w, h.
func (s *Server) handleScreencap(p query.Params) (*response, error) {
	rect, err := capture.Region(p, s.cfg.Screen.Bounds())
	if err != nil {
		return nil, err
	}
	data, err := s.screencap(rect)
	if err != nil {
		return nil, err
	}
	s.log.Debug("screen captured", "rect", rect.String(), "bytes", len(data))
	return &response{contentType: "image/png", body: data}, nil
}

// handleStop answers "Bye" and exits the process once the response is out.
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	const bye = "Bye\n"
	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Content-Length", strconv.Itoa(len(bye)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(bye))
	if err := http.NewResponseController(w).Flush(); err != nil {
		s.log.Warn("flush stop response", "err", err)
	}

	s.log.Info("stop requested", "delay", s.cfg.StopDelay)
	time.AfterFunc(s.cfg.StopDelay, func() {
		s.cfg.Manager.CloseAll()
		if s.cfg.Exit != nil {
			s.cfg.Exit(0)
		}
	})
}
