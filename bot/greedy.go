package bot

import (
	"context"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/zucenko/enemies/model"
	"math"
	"strconv"
	"strings"
)

// Greedy is an in-process bot. It captures whatever it can take with the
// widest margin and otherwise reinforces its two closest nodes.
type Greedy struct {
	name   string
	me     model.Color
	coords []r2.Point
	colors []model.Color
	powers []float64
}

func NewGreedy(name string) *Greedy {
	return &Greedy{name: name}
}

func (g *Greedy) Name() string {
	return g.name
}

func (g *Greedy) Close() error {
	return nil
}

func (g *Greedy) Notify(ctx context.Context, message string) error {
	fields := strings.Fields(message)
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "start":
		return g.start(fields[1:])
	case "result":
		return g.result(fields[1:])
	}
	return nil
}

func (g *Greedy) start(fields []string) error {
	if len(fields) < 1 || (len(fields)-1)%4 != 0 {
		return errors.Errorf("greedy %s: bad start line", g.name)
	}
	me, err := model.ParseColor(fields[0])
	if err != nil {
		return errors.Wrap(err, "greedy start color")
	}
	g.me = me
	count := (len(fields) - 1) / 4
	g.coords = make([]r2.Point, count)
	g.colors = make([]model.Color, count)
	g.powers = make([]float64, count)
	for i := 0; i < count; i++ {
		f := fields[1+4*i : 5+4*i]
		x, errX := strconv.ParseFloat(f[0], 64)
		y, errY := strconv.ParseFloat(f[1], 64)
		c, errC := model.ParseColor(f[2])
		p, errP := strconv.ParseFloat(f[3], 64)
		for _, e := range []error{errX, errY, errC, errP} {
			if e != nil {
				return errors.Wrapf(e, "greedy start node %d", i)
			}
		}
		g.coords[i] = r2.Point{X: x, Y: y}
		g.colors[i] = c
		g.powers[i] = p
	}
	return nil
}

func (g *Greedy) result(fields []string) error {
	if len(fields) != 4 {
		return errors.Errorf("greedy %s: bad result line", g.name)
	}
	c, err := model.ParseColor(fields[0])
	if err != nil {
		return err
	}
	switch fields[3] {
	case "0":
		// failed and invalid moves change nothing, their indexes may be anything
		return nil
	case "1":
	default:
		return errors.Errorf("greedy %s: bad result flag %q", g.name, fields[3])
	}
	a, errA := strconv.Atoi(fields[1])
	b, errB := strconv.Atoi(fields[2])
	if errA != nil || errB != nil || b < 0 || b >= len(g.colors) || a < 0 || a >= len(g.colors) {
		return errors.Errorf("greedy %s: bad result indexes %v", g.name, fields[1:3])
	}
	g.colors[b] = c
	return nil
}

func (g *Greedy) RequestMove(ctx context.Context, snapshot string) (Move, error) {
	if err := ctx.Err(); err != nil {
		return Move{}, err
	}
	fields := strings.Fields(snapshot)
	if len(fields) != len(g.powers)+1 || fields[0] != "turn" {
		return Move{}, errors.Wrapf(ErrMalformedMove, "greedy %s: unexpected request %q", g.name, snapshot)
	}
	for i, f := range fields[1:] {
		p, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Move{}, errors.Wrapf(ErrMalformedMove, "greedy %s: power %q", g.name, f)
		}
		g.powers[i] = p
	}
	return g.choose(), nil
}

func (g *Greedy) choose() Move {
	var best, closest, nearest Move
	bestMargin := 0.0
	closestDist, nearestDist := math.Inf(1), math.Inf(1)
	for a := range g.colors {
		if g.colors[a] != g.me {
			continue
		}
		for b := range g.colors {
			if a == b {
				continue
			}
			d := g.coords[a].Sub(g.coords[b]).Norm()
			if g.colors[b] == g.me {
				if d < closestDist {
					closestDist, closest = d, Move{A: a, B: b}
				}
				continue
			}
			if d < nearestDist {
				nearestDist, nearest = d, Move{A: a, B: b}
			}
			margin := g.powers[a]*math.Pow(model.TerrainDecay, d) - g.powers[b]
			if margin > bestMargin {
				bestMargin, best = margin, Move{A: a, B: b}
			}
		}
	}
	switch {
	case bestMargin > 0:
		return best
	case !math.IsInf(closestDist, 1):
		return closest
	default:
		return nearest
	}
}
