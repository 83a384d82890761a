package wire

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSliceSource(t *testing.T) {
	input := []byte{1, 2, 3, 4}
	src := NewSliceSource(input)

	b, ref, err := src.Fill(1)
	require.NoError(t, err)
	require.Equal(t, RefLong, ref)
	require.Equal(t, input, b)
	require.True(t, &b[0] == &input[0])

	src.Advance(3)
	b, _, err = src.Fill(1)
	require.NoError(t, err)
	require.Equal(t, []byte{4}, b)

	src.Advance(1)
	_, _, err = src.Fill(1)
	require.Equal(t, io.EOF, err)
}

func TestReaderSource(t *testing.T) {
	src := NewReaderSource(bytes.NewReader([]byte{1, 2, 3, 4}))

	b, ref, err := src.Fill(4)
	require.NoError(t, err)
	require.Equal(t, RefShort, ref)
	require.Equal(t, []byte{1, 2, 3, 4}, b)

	src.Advance(4)
	_, _, err = src.Fill(1)
	require.Equal(t, io.EOF, err)
}

func TestReaderSourceCompaction(t *testing.T) {
	payload := make([]byte, readerSourceBufLen+128)
	for i := range payload {
		payload[i] = byte(i)
	}
	src := NewReaderSource(bytes.NewReader(payload))

	// Consume most of the buffer, then ask for more than remains
	// buffered so the leftover bytes compact to the front.
	b, _, err := src.Fill(readerSourceBufLen)
	require.NoError(t, err)
	require.Len(t, b, readerSourceBufLen)
	src.Advance(readerSourceBufLen - 16)

	b, _, err = src.Fill(64)
	require.NoError(t, err)
	require.True(t, len(b) >= 64)
	require.Equal(t, payload[readerSourceBufLen-16:readerSourceBufLen-16+64], b[:64])
}

func TestReaderSourcePartialReads(t *testing.T) {
	src := NewReaderSource(&slowReader{data: []byte{1, 2, 3}})
	var got []byte
	for {
		b, _, err := src.Fill(3)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, b...)
		src.Advance(len(b))
	}
	require.Equal(t, []byte{1, 2, 3}, got)
}
