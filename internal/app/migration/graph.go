// internal/app/migration/graph.go
package migration

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/cityseva/internal/domain/models"
)

// Kind is an entity type; its value is the target collection name.
type Kind string

const (
	KindUsers            Kind = models.CollUsers
	KindCategories       Kind = models.CollCategories
	KindComplaints       Kind = models.CollComplaints
	KindMedia            Kind = models.CollComplaintMedia
	KindUpdates          Kind = models.CollComplaintUpdates
	KindFeedback         Kind = models.CollFeedback
	KindAuditLogs        Kind = models.CollAuditLogs
	KindNotifications    Kind = models.CollNotifications
	KindOfficialRequests Kind = models.CollOfficialRequests
)

// ErrCycle is returned by Order when the dependencies loop.
var ErrCycle = errors.New("migration graph has a cycle")

// Node is one entity type and the types it references.
type Node struct {
	Kind Kind
	Deps []Kind
}

// Graph is the entity dependency graph in declaration order. Declaration
// order also breaks ties in Order, so independent kinds run in the order
// listed here.
var Graph = []Node{
	{Kind: KindUsers},
	{Kind: KindCategories},
	{Kind: KindComplaints, Deps: []Kind{KindUsers, KindCategories}},
	{Kind: KindMedia, Deps: []Kind{KindComplaints}},
	{Kind: KindUpdates, Deps: []Kind{KindComplaints, KindUsers}},
	{Kind: KindFeedback, Deps: []Kind{KindComplaints, KindUsers}},
	{Kind: KindAuditLogs, Deps: []Kind{KindUsers}},
	{Kind: KindNotifications, Deps: []Kind{KindUsers, KindComplaints}},
	{Kind: KindOfficialRequests, Deps: []Kind{KindUsers}},
}

// Order sorts nodes topologically with Kahn's algorithm. Among the nodes
// ready at each step the earliest declared is taken first.
func Order(nodes []Node) ([]Kind, error) {
	pos := make(map[Kind]int, len(nodes))
	for i, n := range nodes {
		if _, dup := pos[n.Kind]; dup {
			return nil, fmt.Errorf("migration graph: %s declared twice", n.Kind)
		}
		pos[n.Kind] = i
	}

	indeg := make([]int, len(nodes))
	children := make([][]int, len(nodes))
	for i, n := range nodes {
		for _, d := range n.Deps {
			p, ok := pos[d]
			if !ok {
				return nil, fmt.Errorf("migration graph: %s depends on unknown %s", n.Kind, d)
			}
			indeg[i]++
			children[p] = append(children[p], i)
		}
	}

	done := make([]bool, len(nodes))
	out := make([]Kind, 0, len(nodes))
	for len(out) < len(nodes) {
		next := -1
		for i := range nodes {
			if !done[i] && indeg[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			var stuck []string
			for i, n := range nodes {
				if !done[i] {
					stuck = append(stuck, string(n.Kind))
				}
			}
			return nil, fmt.Errorf("%w: %s", ErrCycle, strings.Join(stuck, ", "))
		}
		done[next] = true
		out = append(out, nodes[next].Kind)
		for _, c := range children[next] {
			indeg[c]--
		}
	}
	return out, nil
}
