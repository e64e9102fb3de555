package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := WithContext(context.Background(), "abc")
	assert.Equal(t, "abc", FromContext(ctx))
	assert.Equal(t, "", FromContext(context.Background()))
}

func TestFromHeaderPrefersFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "req-1", FromHeader("", "req-1"))
	assert.Equal(t, "trace-1", FromHeader("trace-1", "req-1"))
	assert.Equal(t, "", FromHeader("", ""))
}

func TestGenerateTraceIDUnique(t *testing.T) {
	a, b := GenerateTraceID(), GenerateTraceID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
