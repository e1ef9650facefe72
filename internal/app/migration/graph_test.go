package migration

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrder_DefaultGraph(t *testing.T) {
	order, err := Order(Graph)
	require.NoError(t, err)
	assert.Equal(t, []Kind{
		KindUsers, KindCategories, KindComplaints,
		KindMedia, KindUpdates, KindFeedback,
		KindAuditLogs, KindNotifications, KindOfficialRequests,
	}, order)
}

func TestOrder_ParentsBeforeChildren(t *testing.T) {
	order, err := Order(Graph)
	require.NoError(t, err)

	at := map[Kind]int{}
	for i, k := range order {
		at[k] = i
	}
	for _, n := range Graph {
		for _, d := range n.Deps {
			assert.Less(t, at[d], at[n.Kind], "%s must come before %s", d, n.Kind)
		}
	}
}

func TestOrder_DeclarationOrderDoesNotOverrideDeps(t *testing.T) {
	nodes := []Node{
		{Kind: "c", Deps: []Kind{"b"}},
		{Kind: "a"},
		{Kind: "b", Deps: []Kind{"a"}},
	}
	order, err := Order(nodes)
	require.NoError(t, err)
	assert.Equal(t, []Kind{"a", "b", "c"}, order)
}

func TestOrder_Cycle(t *testing.T) {
	nodes := []Node{
		{Kind: "a", Deps: []Kind{"b"}},
		{Kind: "b", Deps: []Kind{"a"}},
		{Kind: "c"},
	}
	_, err := Order(nodes)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCycle))
	assert.Contains(t, err.Error(), "a, b")
}

func TestOrder_UnknownDep(t *testing.T) {
	_, err := Order([]Node{{Kind: "a", Deps: []Kind{"zzz"}}})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrCycle))
}
