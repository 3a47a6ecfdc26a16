package utils

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlushingWriterFlushesBufferedWriters(t *testing.T) {
	var destination bytes.Buffer
	bufferedWriter := bufio.NewWriterSize(&destination, 4096)

	writer := NewFlushingWriter(bufferedWriter)
	bytesWritten, writeError := writer.Write([]byte("npm test\n"))
	require.NoError(t, writeError)
	require.Equal(t, 9, bytesWritten)
	require.Equal(t, "npm test\n", destination.String())
}

func TestNewFlushingWriterReusesWrappedWriter(t *testing.T) {
	require.Nil(t, NewFlushingWriter(nil))

	var destination bytes.Buffer
	wrapped := NewFlushingWriter(&destination)
	require.Same(t, wrapped, NewFlushingWriter(wrapped))
}
