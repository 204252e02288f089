package server

import (
	"context"
	"encoding/json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/matryer/way"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/enemies/model"
	"net"
	"net/http"
	"time"
)

func NewGameServer(cfg MatchConfig, bots BotFactory) *GameServer {
	return &GameServer{
		Matches:        make([]*MatchSession, 0),
		MatchRequests:  make(chan MatchRequest),
		ListRequests:   make(chan ListRequest),
		Upgrader:       &websocket.Upgrader{},
		Config:         cfg,
		Bots:           bots,
		RequestTimeout: 200 * time.Millisecond,
		SweepInterval:  time.Minute,
	}
}

// Loop owns the match list. It returns when ctx ends.
func (s *GameServer) Loop(ctx context.Context) {
	log.Printf("GameServer.Loop starting")
	sweep := time.NewTicker(s.SweepInterval)
	defer sweep.Stop()
	for {
		select {
		case req := <-s.MatchRequests:
			if req.ID == "" {
				ms := NewMatchSession(uuid.New().String(), s.Config, s.Bots)
				log.WithField("match", ms.ID).Info("GameServer.Loop create MatchSession")
				go ms.Loop(ctx)
				s.Matches = append(s.Matches, ms)
				req.MatchAwaiting <- MatchAwaiting{ResponseCode: MATCH_READY, Match: ms}
				continue
			}
			if _, err := uuid.Parse(req.ID); err != nil {
				req.MatchAwaiting <- MatchAwaiting{ResponseCode: MATCH_INVALID}
				continue
			}
			found := MatchAwaiting{ResponseCode: MATCH_NOT_FOUND}
			for _, ms := range s.Matches {
				if ms.ID == req.ID {
					found = MatchAwaiting{ResponseCode: MATCH_READY, Match: ms}
					break
				}
			}
			req.MatchAwaiting <- found
		case req := <-s.ListRequests:
			matches := make([]*MatchSession, len(s.Matches))
			copy(matches, s.Matches)
			req.Matches <- matches
		case <-sweep.C:
			s.sweep()
		case <-ctx.Done():
			log.Printf("GameServer.Loop ENDED")
			return
		}
	}
}

// sweep drops matches whose session loop has returned.
func (s *GameServer) sweep() {
	live := s.Matches[:0]
	for _, ms := range s.Matches {
		select {
		case <-ms.Done:
			log.WithField("match", ms.ID).Info("GameServer.sweep forget MatchSession")
		default:
			live = append(live, ms)
		}
	}
	for i := len(live); i < len(s.Matches); i++ {
		s.Matches[i] = nil
	}
	s.Matches = live
}

// match hands a MatchRequest to Loop and waits for the answer.
func (s *GameServer) match(id string) (MatchAwaiting, bool) {
	awaiting := make(chan MatchAwaiting, 1)
	select {
	case s.MatchRequests <- MatchRequest{ID: id, MatchAwaiting: awaiting}:
	case <-time.After(s.RequestTimeout):
		log.Warn("MatchRequests TIMEOUTED")
		return MatchAwaiting{}, false
	}
	select {
	case ma := <-awaiting:
		return ma, true
	case <-time.After(s.RequestTimeout):
		log.Warn("MatchAwaiting TIMEOUTED")
		return MatchAwaiting{}, false
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("writeJSON %v", err)
	}
}

func (s *GameServer) HandleStart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ma, ok := s.match("")
		if !ok {
			w.WriteHeader(HTTP_TIMEOUT)
			return
		}
		writeJSON(w, HTTP_CREATED, map[string]string{"id": ma.Match.ID})
	}
}

func (s *GameServer) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := ListRequest{Matches: make(chan []*MatchSession, 1)}
		select {
		case s.ListRequests <- req:
		case <-time.After(s.RequestTimeout):
			w.WriteHeader(HTTP_TIMEOUT)
			return
		}
		matches := <-req.Matches
		statuses := make([]MatchStatus, 0, len(matches))
		for _, ms := range matches {
			if st, ok := ms.Status(s.RequestTimeout); ok {
				statuses = append(statuses, st)
			}
		}
		writeJSON(w, HTTP_SUCCESS, statuses)
	}
}

func (s *GameServer) HandleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ma, ok := s.match(way.Param(r.Context(), "id"))
		if !ok {
			w.WriteHeader(HTTP_TIMEOUT)
			return
		}
		if ma.ResponseCode != MATCH_READY {
			w.WriteHeader(ma.ResponseCode.ToHttp())
			return
		}
		st, ok := ma.Match.Status(s.RequestTimeout)
		if !ok {
			w.WriteHeader(HTTP_TIMEOUT)
			return
		}
		writeJSON(w, HTTP_SUCCESS, st)
	}
}

// HandleWatch upgrades to a websocket that streams the match to a viewer.
func (s *GameServer) HandleWatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := way.Param(r.Context(), "id")
		logger := log.WithField("match", id)
		logger.Info("HandleWatch - Connection received")

		ma, ok := s.match(id)
		if !ok {
			w.WriteHeader(HTTP_TIMEOUT)
			return
		}
		if ma.ResponseCode != MATCH_READY {
			w.WriteHeader(ma.ResponseCode.ToHttp())
			return
		}

		con, err := s.Upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already answered the client
			logger.Warnf("HandleWatch websocket upgrade err %v", err)
			return
		}
		defer con.Close()

		gameOver := make(chan struct{})
		select {
		case ma.Match.ViewerConnectRequests <- ViewerConnectRequest{Con: con, GameOver: gameOver}:
		case <-ma.Match.Done:
			return
		case <-time.After(s.RequestTimeout):
			logger.Warn("HandleWatch ViewerConnectRequests TIMEOUTED")
			return
		}

		logger.Info("HandleWatch wait for viewer to leave")
		select {
		case <-gameOver:
		case <-ma.Match.Done:
		}
	}
}

func NewMatchSession(id string, cfg MatchConfig, bots BotFactory) *MatchSession {
	return &MatchSession{
		ID:                    id,
		State:                 MS_NEW,
		Config:                cfg,
		Bots:                  bots,
		Viewers:               make([]*ViewerSession, 0),
		Events:                make(chan TurnEvent),
		ViewerConnectRequests: make(chan ViewerConnectRequest),
		StatusRequests:        make(chan chan MatchStatus),
		Errors:                make(chan *ViewerSession),
		Done:                  make(chan struct{}),
	}
}

// Status asks the session loop for a snapshot of the match.
func (ms *MatchSession) Status(timeout time.Duration) (MatchStatus, bool) {
	reply := make(chan MatchStatus, 1)
	select {
	case ms.StatusRequests <- reply:
	case <-ms.Done:
		return MatchStatus{}, false
	case <-time.After(timeout):
		return MatchStatus{}, false
	}
	return <-reply, true
}

func (ms *MatchSession) status() MatchStatus {
	st := MatchStatus{
		ID:        ms.ID,
		State:     ms.State.Name(),
		Moves:     ms.Moves,
		Viewers:   len(ms.Viewers),
		RedPower:  ms.RedPower,
		BluePower: ms.BluePower,
	}
	if ms.Setup != nil {
		st.NodeCount = ms.Setup.NodeCount
	}
	if ms.Result != nil {
		st.Winner = ms.Result.Winner.String()
		st.Reason = ms.Result.Reason
	}
	return st
}

// Loop plays the match in its own goroutine and fans its events out to
// viewers. It keeps answering viewers and status requests for
// Config.Retention after the match ends and returns then or when ctx ends.
func (ms *MatchSession) Loop(ctx context.Context) {
	logger := log.WithField("match", ms.ID)
	logger.Info("MatchSession.Loop start")
	defer func() {
		for _, vs := range append([]*ViewerSession(nil), ms.Viewers...) {
			ms.dropViewer(vs)
		}
		close(ms.Done)
		logger.Info("MatchSession.Loop ENDED")
	}()

	ms.State = MS_PLAY
	go ms.play(ctx)

	events := ms.Events
	var expired <-chan time.Time
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				events = nil
				if ms.State == MS_PLAY {
					ms.State = MS_ERR
				}
				if ms.Config.Retention > 0 {
					expired = time.After(ms.Config.Retention)
				}
				continue
			}
			ms.record(ev)
			ms.broadcast(ev.Message.Encode())
		case vcr := <-ms.ViewerConnectRequests:
			logger.Info("MatchSession.Loop ViewerConnectRequests")
			ms.addViewer(vcr.Con, vcr.GameOver)
		case vs := <-ms.Errors:
			logger.Warn("MatchSession.Loop dropping viewer")
			ms.dropViewer(vs)
		case reply := <-ms.StatusRequests:
			reply <- ms.status()
		case <-expired:
			logger.Info("MatchSession.Loop retention over")
			return
		case <-ctx.Done():
			return
		}
	}
}

func (ms *MatchSession) record(ev TurnEvent) {
	ms.RedPower, ms.BluePower = ev.RedPower, ev.BluePower
	switch m := ev.Message.(type) {
	case model.Setup:
		ms.Setup = &m
	case model.MoveResult:
		ms.LastMove = &m
		ms.Moves++
	case model.GameOver:
		ms.Result = &m
		ms.State = MS_OVER
	}
}

func (ms *MatchSession) broadcast(message string) {
	for _, vs := range ms.Viewers {
		select {
		case vs.MessagesToSend <- message:
		default:
			log.WithField("match", ms.ID).Warn("Dropping viewer, MessagesToSend FULL")
			go func(vs *ViewerSession) {
				select {
				case ms.Errors <- vs:
				case <-ms.Done:
				}
			}(vs)
		}
	}
}

func (ms *MatchSession) addViewer(conn *websocket.Conn, gameOver chan struct{}) {
	vs := &ViewerSession{
		State:          VS_NEW,
		Match:          ms,
		Conn:           conn,
		GameOver:       gameOver,
		MessagesToSend: make(chan string, 64),
	}
	conn.SetPingHandler(
		func(message string) error {
			err := conn.WriteControl(websocket.PongMessage, []byte(message), time.Now().Add(time.Second))
			vs.DebugLastPing = time.Now()
			vs.DebugPings++
			if err == websocket.ErrCloseSent {
				return nil
			} else if e, ok := err.(net.Error); ok && e.Timeout() {
				return nil
			}
			return err
		})
	// catch up: positions never change, ownership and power come with the last move
	if ms.Setup != nil {
		vs.MessagesToSend <- ms.Setup.Encode()
	}
	if ms.LastMove != nil {
		vs.MessagesToSend <- ms.LastMove.Encode()
	}
	if ms.Result != nil {
		vs.MessagesToSend <- ms.Result.Encode()
	}
	vs.State = VS_WATCH
	go vs.LoopChannelRead()
	go vs.LoopChannelWrite()
	ms.Viewers = append(ms.Viewers, vs)
}

func (ms *MatchSession) dropViewer(vs *ViewerSession) {
	for i, v := range ms.Viewers {
		if v == vs {
			ms.Viewers = append(ms.Viewers[:i], ms.Viewers[i+1:]...)
			vs.State = VS_ERR
			close(vs.MessagesToSend)
			close(vs.GameOver)
			return
		}
	}
}

func (vs *ViewerSession) report() {
	select {
	case vs.Match.Errors <- vs:
	case <-vs.Match.Done:
	}
}

// LoopChannelRead only watches for the viewer going away; viewers send nothing.
func (vs *ViewerSession) LoopChannelRead() {
	for {
		if _, _, err := vs.Conn.NextReader(); err != nil {
			log.Debugf("ViewerSession.LoopChannelRead %v", err)
			vs.report()
			return
		}
	}
}

// LoopChannelWrite sends until MessagesToSend is closed. After a failed
// write it keeps draining so the session loop never blocks on it.
func (vs *ViewerSession) LoopChannelWrite() {
	failed := false
	for mes := range vs.MessagesToSend {
		if failed {
			continue
		}
		if err := vs.Conn.WriteMessage(websocket.TextMessage, []byte(mes)); err != nil {
			log.Warnf("ViewerSession.LoopChannelWrite cant write %v", err)
			failed = true
			go vs.report()
			continue
		}
		vs.DebugOutMessages++
	}
}
