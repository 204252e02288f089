package server

import (
	"github.com/gorilla/websocket"
	"github.com/zucenko/enemies/bot"
	"github.com/zucenko/enemies/model"
	"time"
)

// BotFactory provides the bot playing color c in a new match.
type BotFactory func(matchID string, c model.Color) (bot.Bot, error)

type GameServer struct {
	Matches        []*MatchSession
	MatchRequests  chan MatchRequest
	ListRequests   chan ListRequest
	Upgrader       *websocket.Upgrader
	Config         MatchConfig
	Bots           BotFactory
	RequestTimeout time.Duration
	// SweepInterval is how often Loop forgets matches whose session ended.
	SweepInterval  time.Duration
}

type MatchState int

const (
	MS_NEW MatchState = iota
	MS_PLAY
	MS_OVER
	MS_ERR
)

// MatchSession is one match. Only the turn loop touches the board; the
// session loop owns everything else.
type MatchSession struct {
	ID      string
	State   MatchState
	Config  MatchConfig
	Bots    BotFactory
	Viewers []*ViewerSession

	Setup     *model.Setup
	LastMove  *model.MoveResult
	Result    *model.GameOver
	Moves     int
	RedPower  float64
	BluePower float64

	Events                chan TurnEvent
	ViewerConnectRequests chan ViewerConnectRequest
	StatusRequests        chan chan MatchStatus
	Errors                chan *ViewerSession
	Done                  chan struct{}
}

type ViewerSessionState int

const (
	VS_NEW ViewerSessionState = iota + 1
	VS_WATCH
	VS_ERR
)

type ViewerSession struct {
	State    ViewerSessionState
	Match    *MatchSession
	Conn     *websocket.Conn
	GameOver chan struct{}

	MessagesToSend chan string

	DebugOutMessages int
	DebugLastPing    time.Time
	DebugPings       int
}
