package model

import (
	"github.com/golang/geo/r2"
	"math"
	"math/rand"
	"time"
)

type boardOptions struct {
	rng *rand.Rand
}

type BoardOption func(*boardOptions)

// WithRand places the generated nodes with rng instead of a time seeded source.
func WithRand(rng *rand.Rand) BoardOption {
	return func(o *boardOptions) {
		o.rng = rng
	}
}

// NewBoard builds a board of 2*nodePairs nodes. Node 0 is the red home at
// (0,0), node 1 the blue home at (width,0). Every other node i is placed at
// random and node i+1 is its mirror image across x = width/2.
func NewBoard(nodePairs int, width, height float64, opts ...BoardOption) (*Board, error) {
	if nodePairs <= 0 {
		return nil, &InvalidArgumentError{Name: "nodePairs", Value: nodePairs}
	}
	if !(width > 0) || math.IsInf(width, 0) {
		return nil, &InvalidArgumentError{Name: "width", Value: width}
	}
	if !(height > 0) || math.IsInf(height, 0) {
		return nil, &InvalidArgumentError{Name: "height", Value: height}
	}
	o := boardOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	count := 2 * nodePairs
	nodes := make([]Node, 0, count)
	nextID := 0
	add := func(p r2.Point, c Color) {
		nodes = append(nodes, Node{id: nextID, coords: p, color: c, power: 1})
		nextID++
	}
	// homes
	add(r2.Point{X: 0, Y: 0}, Red)
	add(r2.Point{X: width, Y: 0}, Blue)
	for nextID < count {
		x := width * o.rng.Float64()
		y := height * o.rng.Float64()
		add(r2.Point{X: x, Y: y}, Neutral)
		add(r2.Point{X: width - x, Y: y}, Neutral)
	}

	return &Board{
		nodes:         nodes,
		contributions: NewContributionMatrix(count),
		width:         width,
		height:        height,
	}, nil
}

func (b *Board) NodeCount() int {
	return len(b.nodes)
}

func (b *Board) Width() float64 {
	return b.width
}

func (b *Board) Height() float64 {
	return b.height
}

func (b *Board) check(i int) error {
	if i < 0 || i >= len(b.nodes) {
		return &IndexError{Index: i, Count: len(b.nodes)}
	}
	return nil
}

func (b *Board) Node(i int) (Node, error) {
	if err := b.check(i); err != nil {
		return Node{}, err
	}
	return b.nodes[i], nil
}

// Nodes returns a copy of all nodes in index order.
func (b *Board) Nodes() []Node {
	nodes := make([]Node, len(b.nodes))
	copy(nodes, b.nodes)
	return nodes
}

func (b *Board) Contribution(i, j int) (float64, error) {
	return b.contributions.Get(i, j)
}

// Clone returns a deep copy that shares nothing with b.
func (b *Board) Clone() *Board {
	return &Board{
		nodes:         b.Nodes(),
		contributions: b.contributions.clone(),
		width:         b.width,
		height:        b.height,
	}
}

func (b *Board) Distance(a, c int) (float64, error) {
	if err := b.check(a); err != nil {
		return 0, err
	}
	if err := b.check(c); err != nil {
		return 0, err
	}
	return NodeDistance(b.nodes[a], b.nodes[c]), nil
}

func NodeDistance(a, b Node) float64 {
	return a.coords.Sub(b.coords).Norm()
}

// owners lists the indexes of nodes of color c in ascending order.
func (b *Board) owners(c Color) []int {
	idx := make([]int, 0, len(b.nodes))
	for i := range b.nodes {
		if b.nodes[i].color == c {
			idx = append(idx, i)
		}
	}
	return idx
}

func (b *Board) Owned(c Color) int {
	return len(b.owners(c))
}

func (b *Board) TotalPower(c Color) float64 {
	total := 0.0
	for _, n := range b.nodes {
		if n.color == c {
			total += n.power
		}
	}
	return total
}

// Connect joins node a to node b. Nodes of different colors make a an
// attacker and b a defender; the result reports whether the capture took
// place. Nodes of the same color reinforce their alliance and always succeed.
// Nothing is written unless the move is valid.
func (b *Board) Connect(a, c int) (bool, error) {
	if err := b.check(a); err != nil {
		return false, err
	}
	if err := b.check(c); err != nil {
		return false, err
	}
	if a == c {
		return false, &InvalidMoveError{A: a, B: c, Reason: "node connected to itself"}
	}
	if b.nodes[a].color == Neutral {
		return false, &InvalidMoveError{A: a, B: c, Reason: "neutral node cannot act"}
	}

	factor := math.Pow(TerrainDecay, NodeDistance(b.nodes[a], b.nodes[c]))
	if b.nodes[a].color != b.nodes[c].color {
		return b.capture(a, c, factor), nil
	}
	b.reinforce(a, c, factor)
	return true, nil
}

func (b *Board) capture(a, d int, factor float64) bool {
	attacker, defender := &b.nodes[a], &b.nodes[d]
	strength := attacker.power * factor
	if strength <= defender.power {
		return false
	}

	// d leaves its old alliance: drop the paths that ran through it
	if old := defender.color; old != Neutral {
		col := b.contributions.column(d)
		allies := b.owners(old)
		for p := 0; p < len(allies); p++ {
			for q := p + 1; q < len(allies); q++ {
				i, x := allies[p], allies[q]
				b.contributions.addSymmetric(i, x, -col[i]*col[x])
			}
		}
	}

	defender.power = strength
	defender.color = attacker.color

	for _, i := range b.owners(attacker.color) {
		if i == d {
			continue
		}
		support := b.contributions.at(i, a)
		b.nodes[i].power = bounded(b.nodes[i].power + bounded(math.Pow(TerrainDecay, support)*factor))
		b.contributions.setSymmetric(i, d, support*factor)
	}
	return true
}

func (b *Board) reinforce(a, c int, difficulty float64) {
	allies := b.owners(b.nodes[a].color)
	colA := b.contributions.column(a)
	colC := b.contributions.column(c)
	gain := make([]float64, len(b.nodes))
	for p := 0; p < len(allies); p++ {
		for q := p + 1; q < len(allies); q++ {
			i, x := allies[p], allies[q]
			delta := bounded(difficulty * (colA[i]*colC[x] + colC[i]*colA[x]))
			b.contributions.addSymmetric(i, x, delta)
			gain[i] = bounded(gain[i] + delta)
			gain[x] = bounded(gain[x] + delta)
		}
	}
	for _, i := range allies {
		n := &b.nodes[i]
		n.power = bounded(n.power + gain[i])
		if !(n.power >= MinPower) {
			n.power = MinPower
		}
	}
}
