// Package cmd is the command line of queueboard.
package cmd

import (
	"bytes"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

// mu serialises TestExecute, as it replaces os.Stdout and os.Stderr
// for the time a command runs.
var mu sync.Mutex

// TestExecute is a helper that executes a cobra command and returns its output and error.
// Output written to cmd.OutOrStdout, cmd.ErrOrStderr, os.Stdout and os.Stderr is captured.
func TestExecute(t *testing.T, command *cobra.Command, args ...string) (string, error) {
	t.Helper()

	mu.Lock()
	defer mu.Unlock()

	buf := new(syncBuffer)
	command.SetOut(buf)
	command.SetErr(buf)

	stdout, stderr := os.Stdout, os.Stderr

	rOut, wOut, err := os.Pipe()
	assert.NoError(t, err)
	rErr, wErr, err := os.Pipe()
	assert.NoError(t, err)

	os.Stdout, os.Stderr = wOut, wErr

	// read concurrently, so a command writing more than the pipe buffer does not block
	captured := sync.WaitGroup{}
	captured.Add(2)

	for _, r := range []*os.File{rOut, rErr} {
		go func() {
			defer captured.Done()

			_, err := io.Copy(buf, r)
			assert.NoError(t, err)
		}()
	}

	command.SetArgs(args)
	_, cmdErr := command.ExecuteC()

	assert.NoError(t, wOut.Close())
	assert.NoError(t, wErr.Close())
	captured.Wait()

	os.Stdout, os.Stderr = stdout, stderr

	return buf.String(), cmdErr
}

// syncBuffer is an io.Writer safe for concurrent use.
type syncBuffer struct {
	b bytes.Buffer
	m sync.Mutex
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.m.Lock()
	defer b.m.Unlock()

	return b.b.Write(p) //nolint:wrapcheck
}

func (b *syncBuffer) String() string {
	b.m.Lock()
	defer b.m.Unlock()

	return b.b.String()
}
