package main

import (
	"github.com/matryer/way"
)

const URI_MATCHES = "/matches"
const URI_MATCH = "/matches/:id"
const URI_WATCH = "/matches/:id/watch"

func (s *Server) routes() {
	s.router = way.NewRouter()
	s.router.HandleFunc("POST", URI_MATCHES, s.GameServer.HandleStart())
	s.router.HandleFunc("GET", URI_MATCHES, s.GameServer.HandleList())
	s.router.HandleFunc("GET", URI_WATCH, s.GameServer.HandleWatch())
	s.router.HandleFunc("GET", URI_MATCH, s.GameServer.HandleStatus())
}
