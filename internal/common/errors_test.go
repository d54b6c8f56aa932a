package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeNotFound, CodeOf(NotFound("vendor", "v1")))
	assert.Equal(t, CodeInvalidInput, CodeOf(fmt.Errorf("wrap: %w", ErrInvalidInput)))
	assert.Equal(t, CodeUpstream, CodeOf(fmt.Errorf("extract: %w", ErrUpstream)))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
}

func TestMessageOf_HidesInternalErrors(t *testing.T) {
	assert.Equal(t, "internal error", MessageOf(errors.New("pq: password authentication failed")))
	assert.Equal(t, `vendor "v1" not found`, MessageOf(NotFound("vendor", "v1")))
}

func TestGRPCError(t *testing.T) {
	assert.Nil(t, GRPCError(nil))
	st, ok := status.FromError(GRPCError(InvalidInput("bad %s", "date")))
	assert.True(t, ok)
	assert.Equal(t, codes.InvalidArgument, st.Code())
	assert.Equal(t, "bad date", st.Message())
}
