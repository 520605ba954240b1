package instile

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/require"

	"github.com/tilemesa/instile/content"
	"github.com/tilemesa/instile/fetch"
	"github.com/tilemesa/instile/tile"
)

func triangleGLB(t *testing.T) []byte {
	t.Helper()

	doc := gltf.NewDocument()
	posAccessor := modeler.WritePosition(doc, [][3]float32{{-1, 0, 0}, {1, 0, 0}, {0, 2, 0}})
	indicesAccessor := modeler.WriteIndices(doc, []uint32{0, 1, 2})
	doc.Meshes = []*gltf.Mesh{{Primitives: []*gltf.Primitive{{
		Attributes: map[string]int{gltf.POSITION: posAccessor},
		Indices:    gltf.Index(indicesAccessor),
	}}}}
	doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	var buf bytes.Buffer
	require.NoError(t, gltf.NewEncoder(&buf).Encode(doc))

	return buf.Bytes()
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	positions := make([]byte, 0, 24)
	for _, v := range []float32{0, 0, 0, 10, 20, 30} {
		positions = binary.LittleEndian.AppendUint32(positions, math.Float32bits(v))
	}

	data, err := EncodeTile(tile.EncodeInput{
		FeatureTableJSON:   []byte(`{"INSTANCES_LENGTH":2,"POSITION":{"byteOffset":0}}`),
		FeatureTableBinary: positions,
		BatchTableJSON:     []byte(`{"name":["a","b"]}`),
		Payload:            triangleGLB(t),
	})
	require.NoError(t, err)

	decoded, err := DecodeTile(data)
	require.NoError(t, err)
	require.Len(t, decoded.Instances, 2)
	require.Equal(t, uint32(0), decoded.Instances[0].BatchID)
	require.Equal(t, uint32(1), decoded.Instances[1].BatchID)
	require.InDelta(t, 10.0, decoded.Instances[1].Transform.Col(3).X(), 1e-9)
	require.InDelta(t, 20.0, decoded.Instances[1].Transform.Col(3).Y(), 1e-9)
	require.InDelta(t, 30.0, decoded.Instances[1].Transform.Col(3).Z(), 1e-9)

	name, ok := decoded.Batch.Property("name", 1)
	require.True(t, ok)
	require.Equal(t, "b", name)
}

func TestContentEndToEnd(t *testing.T) {
	positions := make([]byte, 0, 12)
	for _, v := range []float32{5, 0, 0} {
		positions = binary.LittleEndian.AppendUint32(positions, math.Float32bits(v))
	}
	data, err := EncodeTile(tile.EncodeInput{
		FeatureTableJSON:   []byte(`{"INSTANCES_LENGTH":1,"POSITION":{"byteOffset":0}}`),
		FeatureTableBinary: positions,
		Payload:            triangleGLB(t),
	})
	require.NoError(t, err)

	fetcher := fetch.FetcherFunc(func(ctx context.Context, url string) ([]byte, error) {
		return data, nil
	})
	scheduler, err := NewScheduler(fetch.WithFetcher(fetcher))
	require.NoError(t, err)

	c, err := NewContent("https://tiles.test/e2e.i3dm", scheduler)
	require.NoError(t, err)
	require.True(t, c.Request(context.Background(), 1, 50))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.WaitReady(ctx))
	require.Equal(t, content.StateReady, c.State())
	require.Equal(t, 1, c.FeaturesLength())
}

func TestTileKey(t *testing.T) {
	require.Equal(t, TileKey("a"), TileKey("a"))
	require.NotEqual(t, TileKey("a"), TileKey("b"))
}
