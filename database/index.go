package database

import (
	"github.com/markdingo/autozone/dnsutil"
	"github.com/markdingo/autozone/zone"
)

// If zones example.net. and sub.example.net. are present, then:
//
// db.index.children["net"].children["example"].zone is example.net.
// db.index.children["net"].children["example"].children["sub"].zone is sub.example.net.

type labelMap map[string]*node

type node struct {
	zone     *zone.Zone // Nil for intermediate labels
	children labelMap   // Created on-demand
}

// BuildIndex (re)builds the closest-match index from the current zone map. It must be
// called before the database is published as the index is immutable thereafter.
func (t *Database) BuildIndex() {
	root := &node{}
	for name, z := range t.zones {
		n := root
		for _, label := range dnsutil.ReverseLabels(name) {
			if n.children == nil {
				n.children = make(labelMap)
			}
			child := n.children[label]
			if child == nil {
				child = &node{}
				n.children[label] = child
			}
			n = child
		}
		n.zone = z
	}
	t.index = root
}

// FindClosest returns the deepest zone which encloses qName, or nil if no zone does.
// It only consults the index so it is safe for concurrent readers.
func (t *Database) FindClosest(qName string) *zone.Zone {
	n := t.index
	if n == nil {
		return nil
	}
	best := n.zone // Root zone, if served
	for _, label := range dnsutil.ReverseLabels(qName) {
		n = n.children[label]
		if n == nil {
			break
		}
		if n.zone != nil {
			best = n.zone
		}
	}

	return best
}
