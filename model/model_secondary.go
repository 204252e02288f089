package model

import (
	"strconv"
	"strings"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func tokens(count int, fields func(i int) []string) string {
	parts := make([]string, 0, count*4)
	for i := 0; i < count; i++ {
		parts = append(parts, fields(i)...)
	}
	return strings.Join(parts, " ")
}

// FullBoardDescription lists "x y color power" for every node in index order.
// Sent once, when a match starts.
func (b *Board) FullBoardDescription() string {
	return tokens(len(b.nodes), func(i int) []string {
		n := b.nodes[i]
		return []string{
			formatFloat(n.coords.X),
			formatFloat(n.coords.Y),
			strconv.Itoa(int(n.color)),
			formatFloat(n.power),
		}
	})
}

// BoardPowerState lists every node's power in index order.
func (b *Board) BoardPowerState() string {
	return tokens(len(b.nodes), func(i int) []string {
		return []string{formatFloat(b.nodes[i].power)}
	})
}

// OwnershipState lists every node's color in index order. Paired with
// BoardPowerState it lets a client follow captures without a full snapshot.
func (b *Board) OwnershipState() string {
	return tokens(len(b.nodes), func(i int) []string {
		return []string{strconv.Itoa(int(b.nodes[i].color))}
	})
}
