package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoauthor/autoauthor/internal/editor/connectivity"
	"github.com/autoauthor/autoauthor/internal/editor/saver"
)

func TestFormatStatus(t *testing.T) {
	tests := []struct {
		name string
		save saver.Status
		conn connectivity.State
		want string
	}{
		{"online idle", saver.Status{State: saver.StateIdle}, connectivity.State{IsOnline: true}, "(online)"},
		{"online pending", saver.Status{State: saver.StatePending}, connectivity.State{IsOnline: true}, "(online, pending)"},
		{"recovered", saver.Status{State: saver.StateSaved}, connectivity.State{IsOnline: true, WasOffline: true}, "(back online, saved)"},
		{"offline failed", saver.Status{State: saver.StateFailed}, connectivity.State{}, "(offline, failed)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatStatus(tt.save, tt.conn))
		})
	}
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader("  book1:ch1  \n"))

	got, err := GetSimpleText(reader, "Chapter key", &out)
	require.NoError(t, err)
	assert.Equal(t, "book1:ch1", got)
	assert.Contains(t, out.String(), "Chapter key")
}

func TestGetSimpleText_PartialLineOnEOF(t *testing.T) {
	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader("no-newline"))

	got, err := GetSimpleText(reader, "Chapter key", &out)
	require.NoError(t, err)
	assert.Equal(t, "no-newline", got)
}
