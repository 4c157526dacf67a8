package materialize

import (
	"bytes"
	"io"
	"math/rand"
	"testing"

	"github.com/itchio/img4kit/container"
	"github.com/itchio/img4kit/resource"
	"github.com/itchio/wharf/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomBytes(size int) []byte {
	buf := make([]byte, size)
	rand.New(rand.NewSource(0xf00d)).Read(buf)
	return buf
}

func Test_WrapRoundTrip(t *testing.T) {
	for _, size := range []int{0, 1, ChunkSize - 1, ChunkSize, ChunkSize*3 + 17} {
		payload := randomBytes(size)

		var lastProgress float64
		consumer := &state.Consumer{
			OnProgress: func(alpha float64) { lastProgress = alpha },
		}

		p, backing, err := Wrap(resource.NewMemory(payload), consumer)
		require.NoError(t, err, "size %d", size)
		require.NoError(t, p.Sync())

		img, err := container.Decode(backing.Bytes())
		require.NoError(t, err)
		assert.EqualValues(t, len(payload), len(img.Payload), "size %d", size)
		assert.True(t, bytes.Equal(payload, img.Payload), "size %d", size)
		assert.EqualValues(t, "none", img.Type)
		assert.EqualValues(t, "Unknown", img.Description)

		if size > 0 {
			assert.EqualValues(t, 1.0, lastProgress)
		}
	}
}

func Test_ReplaceKeepsFraming(t *testing.T) {
	original := &container.Image{
		Kind:        container.KindIMG4,
		Type:        "rdsk",
		Description: "RamDisk",
		Payload:     randomBytes(10000),
		Extra:       [][]byte{{0x04, 0x01, 0x99}},
		OuterExtra:  [][]byte{{0xA0, 0x00}},
	}
	data, err := original.Encode()
	require.NoError(t, err)

	backing := resource.NewMemory(data)
	replacement := randomBytes(123)

	p, err := Replace(backing, resource.NewMemory(replacement), nil)
	require.NoError(t, err)
	require.NoError(t, p.Sync())

	img, err := container.Decode(backing.Bytes())
	require.NoError(t, err)
	assert.EqualValues(t, container.KindIMG4, img.Kind)
	assert.EqualValues(t, "rdsk", img.Type)
	assert.EqualValues(t, replacement, img.Payload)
	assert.EqualValues(t, original.Extra, img.Extra)
	assert.EqualValues(t, original.OuterExtra, img.OuterExtra)
}

func Test_ReplaceRejectsNonContainer(t *testing.T) {
	_, err := Replace(resource.NewMemory([]byte("not der")), resource.NewMemory([]byte{1}), nil)
	assert.Error(t, err)
}

// shortSource lies about its length
type shortSource struct {
	*resource.Memory
	claimed int64
}

func (s *shortSource) Length() (int64, error) {
	return s.claimed, nil
}

func Test_CopyDetectsExhaustedSource(t *testing.T) {
	src := &shortSource{Memory: resource.NewMemory(randomBytes(100)), claimed: 5000}
	dst := resource.NewMemory(nil)

	written, err := Copy(dst, src, nil)
	require.Error(t, err)
	assert.True(t, IsShortCopyError(err))
	assert.EqualValues(t, 100, written)
	assert.Contains(t, err.Error(), "wrote 100 of 5000 bytes")
}

// stingyDest accepts at most limit bytes overall
type stingyDest struct {
	*resource.Memory
	limit int
}

func (d *stingyDest) Write(p []byte) (int, error) {
	if len(p) > d.limit {
		p = p[:d.limit]
	}
	d.limit -= len(p)
	return d.Memory.Write(p)
}

func Test_CopyDetectsShortWrite(t *testing.T) {
	src := resource.NewMemory(randomBytes(ChunkSize * 2))
	dst := &stingyDest{Memory: resource.NewMemory(nil), limit: ChunkSize + 10}

	written, err := Copy(dst, src, nil)
	require.Error(t, err)
	assert.True(t, IsShortCopyError(err))
	assert.EqualValues(t, ChunkSize+10, written)
	assert.Contains(t, err.Error(), io.ErrShortWrite.Error())
}

func Test_WrapFailureReturnsNothing(t *testing.T) {
	src := &shortSource{Memory: resource.NewMemory([]byte{1, 2, 3}), claimed: 4}

	p, backing, err := Wrap(src, nil)
	assert.Error(t, err)
	assert.Nil(t, p)
	assert.Nil(t, backing)
}
