package model

import (
	"fmt"
	"github.com/golang/geo/r2"
)

// TerrainDecay is raised to the distance between two nodes to get the share
// of force or support that crosses that distance.
const TerrainDecay = 0.5

// MinPower is the floor a node's power never drops below.
const MinPower = 1e-9

type Color int

const (
	Neutral Color = -1
	Red     Color = 1
	Blue    Color = 2
)

func (c Color) String() string {
	switch c {
	case Neutral:
		return "NEUTRAL"
	case Red:
		return "RED"
	case Blue:
		return "BLUE"
	default:
		return fmt.Sprintf("n/a:%d", int(c))
	}
}

// Opponent returns the other player color, Neutral has none.
func (c Color) Opponent() Color {
	switch c {
	case Red:
		return Blue
	case Blue:
		return Red
	default:
		return Neutral
	}
}

type Node struct {
	id     int
	coords r2.Point
	color  Color
	power  float64
}

func (n Node) ID() int { return n.id }
func (n Node) Coords() r2.Point { return n.coords }
func (n Node) X() float64 { return n.coords.X }
func (n Node) Y() float64 { return n.coords.Y }
func (n Node) Color() Color { return n.color }
func (n Node) Power() float64 { return n.power }
func (n Node) Owned() bool { return n.color != Neutral }
func (n Node) String() string {
	return fmt.Sprintf("node %d (%.2f,%.2f) %s %.4f", n.id, n.coords.X, n.coords.Y, n.color, n.power)
}

type Board struct {
	nodes         []Node
	contributions *ContributionMatrix
	width, height float64
}
