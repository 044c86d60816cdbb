package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy(t *testing.T) {
	decodeErr := fmt.Errorf("json transport: %w", &DecodeError{Reason: "invalid JSON", Err: errors.New("unexpected EOF")})
	authErr := &AuthError{Reason: "unknown server id"}
	storeErr := &TransientStoreError{Op: "ingest", Err: context.DeadlineExceeded}

	assert.True(t, IsDecodeError(decodeErr))
	assert.False(t, IsDecodeError(authErr))
	assert.Equal(t, "json transport: decode: invalid JSON: unexpected EOF", decodeErr.Error())

	assert.True(t, IsAuthError(authErr))
	assert.False(t, IsAuthError(storeErr))

	assert.True(t, IsTransient(storeErr))
	assert.ErrorIs(t, storeErr, context.DeadlineExceeded)
	assert.Equal(t, "store: ingest: context deadline exceeded", storeErr.Error())
}
