package server

import (
	"fmt"
	"github.com/gorilla/websocket"
	"github.com/zucenko/enemies/model"
)

const HTTP_SUCCESS = 200
const HTTP_CREATED = 201
const HTTP_BAD_REQUEST = 400
const HTTP_NOT_FOUND = 404
const HTTP_TIMEOUT = 408
const HTTP_SERVER_ERR = 503

type ResponseCode int

const (
	MATCH_READY ResponseCode = iota
	MATCH_NOT_FOUND
	MATCH_INVALID
)

func (h ResponseCode) ToHttp() int {
	switch h {
	case MATCH_READY:
		return HTTP_SUCCESS
	case MATCH_NOT_FOUND:
		return HTTP_NOT_FOUND
	case MATCH_INVALID:
		return HTTP_BAD_REQUEST
	default:
		panic(h)
	}
}

func (ms MatchState) Name() string {
	switch ms {
	case MS_NEW:
		return "NEW"
	case MS_PLAY:
		return "PLAY"
	case MS_OVER:
		return "OVER"
	case MS_ERR:
		return "ERR"
	default:
		return fmt.Sprintf("n/a:%d", ms)
	}
}

func (vs ViewerSessionState) Name() string {
	switch vs {
	case VS_NEW:
		return "NEW"
	case VS_WATCH:
		return "WATCH"
	case VS_ERR:
		return "ERR"
	default:
		return "N/A"
	}
}

type MatchAwaiting struct {
	ResponseCode ResponseCode
	Match        *MatchSession
}

// MatchRequest asks GameServer.Loop for a match: ID empty starts a new one.
type MatchRequest struct {
	ID            string
	MatchAwaiting chan MatchAwaiting
}

type ListRequest struct {
	Matches chan []*MatchSession
}

type ViewerConnectRequest struct {
	Con      *websocket.Conn
	GameOver chan struct{}
}

// MatchStatus is the JSON view of a match.
type MatchStatus struct {
	ID        string  `json:"id"`
	State     string  `json:"state"`
	Moves     int     `json:"moves"`
	NodeCount int     `json:"node_count"`
	Viewers   int     `json:"viewers"`
	Winner    string  `json:"winner,omitempty"`
	Reason    string  `json:"reason,omitempty"`
	RedPower  float64 `json:"red_power"`
	BluePower float64 `json:"blue_power"`
}

// TurnEvent is produced by the turn loop and consumed by MatchSession.Loop.
type TurnEvent struct {
	Message   model.ServerMessage
	RedPower  float64
	BluePower float64
}
