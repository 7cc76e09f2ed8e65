package repository

import (
	"math/rand/v2"

	model "github.com/okian/scoutrank/internal/domain/model"
)

// Treap ordered by ranking points DESC, then team ID ASC. In-order
// traversal yields the standings from first to last.

type node struct {
	id    string
	rp    int
	prio  uint64
	left  *node
	right *node
}

// less returns true if (aRP, aID) should appear before (bRP, bID).
func less(aRP int, aID string, bRP int, bID string) bool {
	if aRP != bRP {
		return aRP > bRP
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	return y
}

func insert(n *node, id string, rp int) *node {
	if n == nil {
		return &node{id: id, rp: rp, prio: rand.Uint64()}
	}
	if less(rp, id, n.rp, n.id) {
		n.left = insert(n.left, id, rp)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, rp)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	return n
}

func deleteNode(n *node, id string, rp int) *node {
	if n == nil {
		return nil
	}
	switch {
	case rp == n.rp && id == n.id:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		// Rotate the higher-priority child up until n is a leaf.
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, rp)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, rp)
		}
	case less(rp, id, n.rp, n.id):
		n.left = deleteNode(n.left, id, rp)
	default:
		n.right = deleteNode(n.right, id, rp)
	}
	return n
}

// collectAll appends every team's row in standings order.
func collectAll(n *node, stats map[string]model.TeamStatistics, out *[]Entry) {
	if n == nil {
		return
	}
	collectAll(n.left, stats, out)
	if s, ok := stats[n.id]; ok {
		*out = append(*out, Entry{Stats: s})
	}
	collectAll(n.right, stats, out)
}

// assignRanksWithTies assigns ranks to rows already in standings order.
// Teams with equal ranking points share a rank and the next distinct
// total takes the following rank.
func assignRanksWithTies(entries []Entry) {
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].Stats.RankingPoints != entries[i-1].Stats.RankingPoints {
			rank++
		}
		entries[i].Rank = rank
	}
}
