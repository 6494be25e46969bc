package pool

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(16, 8)

	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, 16, bb.Cap())
	assert.Equal(t, 8, bb.Growth())
}

func TestNewByteBuffer_DefaultGrowth(t *testing.T) {
	bb := NewByteBuffer(4, 0)
	assert.Equal(t, BitStreamGrowth, bb.Growth())
}

func TestByteBuffer_GrowFixedIncrement(t *testing.T) {
	bb := NewByteBuffer(4, 10)

	bb.MustWrite([]byte{1, 2, 3, 4})
	require.Equal(t, 4, bb.Cap())

	bb.MustWrite([]byte{5})
	assert.Equal(t, 14, bb.Cap(), "growth should add the fixed increment")

	bb.MustWrite(make([]byte, 9))
	assert.Equal(t, 14, bb.Cap())

	bb.MustWrite([]byte{0})
	assert.Equal(t, 24, bb.Cap(), "growth stays linear")
}

func TestByteBuffer_GrowLargeRequest(t *testing.T) {
	bb := NewByteBuffer(4, 10)
	bb.MustWrite(make([]byte, 100))

	assert.Equal(t, 100, bb.Len())
	assert.GreaterOrEqual(t, bb.Cap(), 100)
}

func TestByteBuffer_GrowPreservesData(t *testing.T) {
	bb := NewByteBuffer(2, 2)
	for i := range 50 {
		bb.MustWrite([]byte{byte(i)})
	}

	require.Equal(t, 50, bb.Len())
	for i := range 50 {
		require.Equal(t, byte(i), bb.B[i])
	}
}

func TestByteBuffer_ExtendOrGrowZeroes(t *testing.T) {
	bb := NewByteBuffer(8, 8)
	bb.MustWrite([]byte{9, 9, 9, 9})
	bb.Reset()

	bb.ExtendOrGrow(4)
	assert.Equal(t, []byte{0, 0, 0, 0}, bb.Bytes(), "reused capacity must be cleared")
}

func TestByteBuffer_WriteAt(t *testing.T) {
	bb := NewByteBuffer(4, 4)
	bb.MustWrite([]byte{1, 2, 3})

	bb.WriteAt([]byte{9}, 1)
	assert.Equal(t, []byte{1, 9, 3}, bb.Bytes())

	bb.WriteAt([]byte{7, 7}, 5)
	assert.Equal(t, []byte{1, 9, 3, 0, 0, 7, 7}, bb.Bytes())

	assert.Panics(t, func() { bb.WriteAt([]byte{1}, -1) })
}

func TestByteBuffer_SliceAndSetLength(t *testing.T) {
	bb := NewByteBuffer(8, 8)
	bb.MustWrite([]byte("abcdef"))

	assert.Equal(t, []byte("bcd"), bb.Slice(1, 4))
	assert.Panics(t, func() { bb.Slice(4, 1) })

	bb.SetLength(2)
	assert.Equal(t, []byte("ab"), bb.Bytes())
	assert.Panics(t, func() { bb.SetLength(100) })
}

func TestByteBuffer_WriteTo(t *testing.T) {
	bb := NewByteBuffer(8, 8)
	_, err := bb.Write([]byte("route"))
	require.NoError(t, err)
	require.NoError(t, bb.WriteByte('!'))

	var out bytes.Buffer
	n, err := bb.WriteTo(&out)
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)
	assert.Equal(t, "route!", out.String())
}

func TestByteBufferPool_GetPut(t *testing.T) {
	p := NewByteBufferPool(16, 16, 64)

	bb := p.Get()
	require.NotNil(t, bb)
	bb.MustWrite([]byte("data"))
	p.Put(bb)

	again := p.Get()
	require.NotNil(t, again)
	assert.Equal(t, 0, again.Len(), "pooled buffers come back empty")

	p.Put(nil)
}

func TestByteBufferPool_DropsOversized(t *testing.T) {
	p := NewByteBufferPool(4, 4, 8)

	bb := p.Get()
	bb.MustWrite(make([]byte, 32))
	p.Put(bb)

	fresh := p.Get()
	assert.LessOrEqual(t, fresh.Cap(), 8)
}

func TestDefaultPools(t *testing.T) {
	bs := GetBitStreamBuffer()
	assert.Equal(t, BitStreamGrowth, bs.Growth())
	PutBitStreamBuffer(bs)

	pb := GetPartitionBuffer()
	assert.Equal(t, PartitionGrowth, pb.Growth())
	PutPartitionBuffer(pb)
}
