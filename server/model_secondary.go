package server

import (
	"context"
	"fmt"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/enemies/bot"
	"github.com/zucenko/enemies/model"
)

var playerColors = [2]model.Color{model.Red, model.Blue}

// play runs the turn loop. It is the only goroutine touching the board.
func (ms *MatchSession) play(ctx context.Context) {
	defer close(ms.Events)
	logger := log.WithField("match", ms.ID)
	logger.Info("MatchSession.play start")

	board, err := model.NewBoard(ms.Config.NodePairs, ms.Config.Width, ms.Config.Height)
	if err != nil {
		logger.Errorf("MatchSession.play board %v", err)
		ms.emit(ctx, nil, model.GameOver{Winner: model.Neutral, Reason: "board setup failed"})
		return
	}
	ms.emit(ctx, board, model.Setup{
		MatchID:     ms.ID,
		NodeCount:   board.NodeCount(),
		Description: board.FullBoardDescription(),
	})

	bots := make(map[model.Color]bot.Bot, 2)
	defer func() {
		for c, b := range bots {
			if err := b.Close(); err != nil {
				logger.WithField("color", c).Warnf("MatchSession.play close bot %v", err)
			}
		}
	}()
	for _, c := range playerColors {
		b, err := ms.Bots(ms.ID, c)
		if err != nil {
			ms.forfeit(ctx, board, bots, c, err)
			return
		}
		bots[c] = b
	}
	for _, c := range playerColors {
		start := fmt.Sprintf("start %d %s", int(c), board.FullBoardDescription())
		if err := bots[c].Notify(ctx, start); err != nil {
			ms.forfeit(ctx, board, bots, c, err)
			return
		}
	}

	for turn := 0; turn < ms.Config.MaxMoves; turn++ {
		c := playerColors[turn%2]
		moveCtx, cancel := context.WithTimeout(ctx, ms.Config.MoveTimeout)
		m, err := bots[c].RequestMove(moveCtx, "turn "+board.BoardPowerState())
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("MatchSession.play cancelled")
				return
			}
			ms.forfeit(ctx, board, bots, c, err)
			return
		}

		ok, err := applyMove(board, c, m)
		if err != nil {
			logger.WithFields(log.Fields{"color": c, "move": m.String()}).Warnf("invalid move: %v", err)
		}
		result := fmt.Sprintf("result %d %d %d %d", int(c), m.A, m.B, boolInt(ok))
		for _, rc := range playerColors {
			if err := bots[rc].Notify(ctx, result); err != nil {
				if rc != c && !ok {
					// the mover's rejected move is not the listener's fault;
					// a broken listener shows up on its own turn
					logger.WithField("color", rc).Warnf("result notify %v", err)
					continue
				}
				ms.forfeit(ctx, board, bots, rc, err)
				return
			}
		}
		ms.emit(ctx, board, model.MoveResult{
			Color:      c,
			A:          m.A,
			B:          m.B,
			Success:    ok,
			Ownership:  board.OwnershipState(),
			PowerState: board.BoardPowerState(),
		})

		if board.Owned(c.Opponent()) == 0 {
			ms.finish(ctx, board, bots, c, fmt.Sprintf("%s lost every node", c.Opponent()))
			return
		}
	}
	winner, reason := judge(board)
	ms.finish(ctx, board, bots, winner, reason)
}

// applyMove plays m for color c. A move is invalid when its first node is
// not owned by c or when the board rejects it.
func applyMove(board *model.Board, c model.Color, m bot.Move) (bool, error) {
	n, err := board.Node(m.A)
	if err != nil {
		return false, err
	}
	if n.Color() != c {
		return false, &model.InvalidMoveError{A: m.A, B: m.B, Reason: fmt.Sprintf("node %d is not %s", m.A, c)}
	}
	return board.Connect(m.A, m.B)
}

// judge decides a match that ran out of moves: greater total power wins.
func judge(board *model.Board) (model.Color, string) {
	red, blue := board.TotalPower(model.Red), board.TotalPower(model.Blue)
	switch {
	case red > blue:
		return model.Red, "move limit, more power"
	case blue > red:
		return model.Blue, "move limit, more power"
	default:
		return model.Neutral, "move limit, draw"
	}
}

func (ms *MatchSession) forfeit(ctx context.Context, board *model.Board, bots map[model.Color]bot.Bot, loser model.Color, err error) {
	log.WithFields(log.Fields{"match": ms.ID, "color": loser}).Warnf("forfeit: %v", err)
	reason := "bot error"
	var unavailable *bot.BotUnavailableError
	switch {
	case errors.As(err, &unavailable):
		reason = "bot unavailable"
	case errors.Is(err, bot.ErrMoveTimeout), errors.Is(err, context.DeadlineExceeded):
		reason = "bot timed out"
	case errors.Is(err, bot.ErrBotDisconnected):
		reason = "bot disconnected"
	case errors.Is(err, bot.ErrMalformedMove):
		reason = "bot sent garbage"
	}
	ms.finish(ctx, board, bots, loser.Opponent(), fmt.Sprintf("%s %s", loser, reason))
}

func (ms *MatchSession) finish(ctx context.Context, board *model.Board, bots map[model.Color]bot.Bot, winner model.Color, reason string) {
	log.WithFields(log.Fields{"match": ms.ID, "winner": winner}).Infof("match over: %s", reason)
	for c, b := range bots {
		if err := b.Notify(ctx, fmt.Sprintf("end %d", int(winner))); err != nil {
			log.WithFields(log.Fields{"match": ms.ID, "color": c}).Debugf("end notify %v", err)
		}
	}
	ms.emit(ctx, board, model.GameOver{Winner: winner, Reason: reason})
}

func (ms *MatchSession) emit(ctx context.Context, board *model.Board, msg model.ServerMessage) {
	ev := TurnEvent{Message: msg}
	if board != nil {
		ev.RedPower = board.TotalPower(model.Red)
		ev.BluePower = board.TotalPower(model.Blue)
	}
	select {
	case ms.Events <- ev:
	case <-ctx.Done():
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
