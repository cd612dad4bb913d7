package stuffer

import (
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteRead(t *testing.T) {
	s := New(8)
	defer s.Close()

	n, err := s.Write([]byte("ping"))
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, uint32(4), s.WriteCursor())
	require.Equal(t, 4, s.Space())

	buf := make([]byte, 3)
	n, err = s.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, "pin", string(buf))
	require.Equal(t, "g", string(s.Bytes()))

	n, err = s.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	_, err = s.Read(buf)
	require.ErrorIs(t, err, io.EOF)

	require.NoError(t, s.Reread())
	require.Equal(t, "ping", string(s.Bytes()))
}

func TestWriteFull(t *testing.T) {
	s := New(4)
	_, err := s.Write([]byte("hello"))
	require.ErrorIs(t, err, ErrFull)
	require.Equal(t, uint32(0), s.WriteCursor())
	require.NoError(t, s.Validate())
}

func TestGrowable(t *testing.T) {
	s := NewGrowable(0)
	payload := make([]byte, 3000)
	for i := range payload {
		payload[i] = byte(i)
	}
	for i := 0; i < 3; i++ {
		_, err := s.Write(payload)
		require.NoError(t, err)
	}
	require.Equal(t, 9000, s.Len())
	require.GreaterOrEqual(t, s.Cap(), 9000)
	require.Equal(t, payload, s.Bytes()[3000:6000])
	require.NoError(t, s.Validate())
}

func TestReserveWriteOverflow(t *testing.T) {
	s := NewGrowable(16)
	s.write = 10
	require.ErrorIs(t, s.reserveWrite(math.MaxUint32-5), ErrOverflow)
	require.ErrorIs(t, s.reserveWrite(uint32(maxStorage-5)), ErrOverflow)
	require.NoError(t, s.reserveWrite(6))
	require.Equal(t, uint32(10), s.WriteCursor(), "reservation must not move the cursor")
}

func TestReserveRead(t *testing.T) {
	s := New(16)
	_, err := s.Write([]byte("0123456789"))
	require.NoError(t, err)

	require.NoError(t, s.reserveRead(10))
	require.ErrorIs(t, s.reserveRead(11), ErrOutOfData)
	require.Equal(t, uint32(0), s.ReadCursor())

	s.commitRead(4)
	require.ErrorIs(t, s.reserveRead(7), ErrOutOfData)
}

func TestValidate(t *testing.T) {
	s := New(4)
	require.NoError(t, s.Validate())

	s.read = 2
	require.ErrorIs(t, s.Validate(), ErrInvariant)

	s.read, s.write = 0, 5
	require.ErrorIs(t, s.Validate(), ErrInvariant)

	var empty *Stuffer
	require.ErrorIs(t, empty.Validate(), ErrInvariant)
}

func TestRewrite(t *testing.T) {
	s := New(4)
	_, err := s.Write([]byte("abcd"))
	require.NoError(t, err)
	require.NoError(t, s.Rewrite())
	require.Equal(t, 0, s.Len())
	require.Equal(t, 4, s.Space())
}

func TestClose(t *testing.T) {
	s := New(4)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err := s.Write([]byte("a"))
	require.ErrorIs(t, err, ErrClosed)
	require.Nil(t, s.Bytes())

	for _, n := range []uint32{0, 1} {
		_, err = s.RecvFromFd(0, n)
		require.ErrorIs(t, err, ErrRead)
		require.ErrorIs(t, err, ErrClosed)

		_, err = s.SendToFd(1, n)
		require.ErrorIs(t, err, ErrWrite)
		require.ErrorIs(t, err, ErrClosed)
	}
}

func TestGrowTarget(t *testing.T) {
	require.Equal(t, uint64(minGrowth), growTarget(0, 10))
	require.Equal(t, uint64(6000), growTarget(3000, 3500))
	require.Equal(t, uint64(9000), growTarget(3000, 9000))
	require.Equal(t, uint64(maxStorage), growTarget(maxStorage-10, maxStorage-5))
	require.Equal(t, uint64(maxStorage), growTarget(maxStorage/2+1, maxStorage/2+2))
}
