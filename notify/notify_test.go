package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"bizsite/domain"
)

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	n := NewLogNotifier(zap.New(core))

	err := n.Notify(context.Background(), domain.ContactSubmission{ID: "c1", Name: "Sam", Email: "sam@example.com", Message: "hello"})
	require.NoError(t, err)

	entries := logs.FilterMessage("new contact submission").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "sam@example.com", entries[0].ContextMap()["email"])
	assert.EqualValues(t, 5, entries[0].ContextMap()["message_length"])
}
