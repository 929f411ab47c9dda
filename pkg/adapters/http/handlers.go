package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/kinema"
	"github.com/aretw0/kinema/internal/presentation/graph"
	"github.com/aretw0/kinema/pkg/domain"
	"github.com/aretw0/kinema/pkg/runner"
	"github.com/gorilla/websocket"
)

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"name": "kinema", "version": kinema.Version})
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	stored, err := s.Sessions.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if stored == nil {
		stored = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"active": s.Sessions.Active(), "stored": stored})
}

func (s *Server) inspectSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	p, err := s.Sessions.Open(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runner.Inspect(p))
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// mutate decodes the JSON body into body, runs fn under the session lock
// and answers with the resulting status.
func mutate[T any](s *Server, w http.ResponseWriter, r *http.Request, fn func(p *kinema.Player, body T) error) {
	id, err := pathParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	var body T
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	var status runner.Status
	err = s.Do(r.Context(), id, func(ctx context.Context, p *kinema.Player) error {
		if err := fn(p, body); err != nil {
			return err
		}
		status = runner.Inspect(p)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) postEvent(w http.ResponseWriter, r *http.Request) {
	mutate(s, w, r, func(p *kinema.Player, ev domain.Event) error {
		if err := ev.Validate(); err != nil {
			return err
		}
		return p.StateMachinePostEvent(ev)
	})
}

type triggerWrite struct {
	Value any `json:"value"`
}

func (s *Server) setTrigger(w http.ResponseWriter, r *http.Request) {
	name, err := pathParam(r, "name")
	if err != nil {
		s.writeError(w, err)
		return
	}
	mutate(s, w, r, func(p *kinema.Player, body triggerWrite) error {
		return runner.SetTrigger(p, name, body.Value)
	})
}

type tickRequest struct {
	ElapsedMs float64 `json:"elapsedMs"`
}

func (s *Server) tick(w http.ResponseWriter, r *http.Request) {
	mutate(s, w, r, func(p *kinema.Player, body tickRequest) error {
		return runner.Advance(p, time.Duration(body.ElapsedMs*float64(time.Millisecond)))
	})
}

func (s *Server) runCommand(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	var cmd runner.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	var reply string
	err = s.Do(r.Context(), id, func(ctx context.Context, p *kinema.Player) error {
		var err error
		reply, err = runner.Apply(p, cmd)
		return err
	})
	if errors.Is(err, runner.ErrQuit) {
		err = fmt.Errorf("%w: %q has no meaning over HTTP", errBadRequest, cmd.Verb)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	p, err := s.Sessions.Open(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	def := p.StateMachineDefinition()
	if def == nil {
		s.writeError(w, fmt.Errorf("%w: session %q has no state machine", domain.ErrNotLoaded, id))
		return
	}
	var overlay *graph.Overlay
	if current := p.StateMachineCurrentState(); current != "" {
		overlay = &graph.Overlay{Current: current}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(graph.GenerateMermaid(def, overlay)))
}

// streamSession upgrades to a websocket. The first frame is the full
// snapshot as a diff; then notifications and diffs follow as they happen.
func (s *Server) streamSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		s.writeError(w, err)
		return
	}
	withDiff, err := boolQuery(r, "diff", true)
	if err != nil {
		s.writeError(w, err)
		return
	}
	p, err := s.Sessions.Open(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader already answered the client.
		s.logger.Debug("Websocket upgrade failed", "session_id", id, "err", err)
		return
	}
	defer conn.Close()

	messages, unsubscribe := s.Streams.Subscribe(id)
	defer unsubscribe()

	// Reads only detect the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	if withDiff {
		snap := p.Snapshot()
		snap.ID = id
		if err := conn.WriteJSON(Message{Diff: domain.Diff(nil, &snap)}); err != nil {
			return
		}
	}
	for {
		select {
		case <-closed:
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if msg.Diff != nil && !withDiff {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(msg); err != nil {
				s.logger.Debug("Websocket write failed", "session_id", id, "err", err)
				_ = conn.WriteControl(websocket.CloseMessage, nil, time.Now().Add(time.Second))
				return
			}
		}
	}
}
