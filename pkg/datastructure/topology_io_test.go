package datastructure

import (
	"path/filepath"
	"testing"

	"github.com/lintang-b-s/evacroute/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadTopology(t *testing.T) {
	nodes := []Node{
		NewNodeWithCoordinates("UNA", "RS Universitas Airlangga", pkg.UPPER_TIER, -7.269874626602621, 112.7848445619724),
		NewRoadVertex(123456789, -7.28, 112.79),
		NewNodeWithCoordinates("ITS", "Medical Center ITS", pkg.MIDDLE_TIER, -7.29042166801988, 112.7928147461148),
	}
	edges := []Edge{
		NewEdge(0, 1, 61.5, "Jalan Mulyorejo"),
		NewEdge(1, 0, 61.5, "Jalan Mulyorejo"),
		NewEdge(1, 2, 80.25, "Jalan Arief Rahman Hakim"),
		NewEdge(2, 1, 80.25, ""),
	}
	top, err := NewTopologyFromEdges(nodes, edges)
	require.NoError(t, err)

	filename := filepath.Join(t.TempDir(), "test.topology")
	require.NoError(t, top.WriteTopology(filename))

	got, err := ReadTopology(filename)
	require.NoError(t, err)

	assert.Equal(t, top.GetNodes(), got.GetNodes())
	assert.Equal(t, top.Edges(), got.Edges())
	assert.Equal(t, "osm:123456789", got.GetNode(1).GetCode())
	assert.Equal(t, pkg.UNTIERED, got.GetNode(1).GetTier())
	assert.Equal(t, "Jalan Arief Rahman Hakim", got.EdgeRoadName(1, 2))
	assert.True(t, got.HasCoordinates())
}

func TestReadTopologyMissingFile(t *testing.T) {
	_, err := ReadTopology(filepath.Join(t.TempDir(), "missing.topology"))
	assert.Error(t, err)
}
