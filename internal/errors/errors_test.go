package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ValidationError("bad").HTTPStatus())
	assert.Equal(t, http.StatusNotFound, NotFoundError("gone").HTTPStatus())
	assert.Equal(t, http.StatusBadGateway, ExternalError("upstream", nil).HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, InternalError("boom", nil).HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, (&Error{Type: "weird"}).HTTPStatus())
}

func TestErrorStringIncludesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := ExternalError("feed unreachable", cause)

	assert.Contains(t, err.Error(), "external")
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)
}

func TestWithFieldAccumulatesContext(t *testing.T) {
	err := ValidationError("bad input").
		WithField("room", "r1").
		WithContext("state", "warp")

	assert.Equal(t, "r1", err.Context["room"])
	assert.Equal(t, "warp", err.Context["state"])
}

func TestToResponse(t *testing.T) {
	err := NotFoundError("room not found").WithField("room", "ghost")

	resp := err.ToResponse()
	assert.Equal(t, "room not found", resp.Error)
	assert.Equal(t, TypeNotFound, resp.Type)
	assert.Equal(t, "ghost", resp.Context["room"])
}

func TestAsStructuredError(t *testing.T) {
	assert.Nil(t, AsStructuredError(nil))

	structured := ValidationError("bad")
	assert.Same(t, structured, AsStructuredError(structured))

	wrapped := fmt.Errorf("handler: %w", structured)
	assert.Same(t, structured, AsStructuredError(wrapped))

	plain := AsStructuredError(stderrors.New("boom"))
	require.NotNil(t, plain)
	assert.Equal(t, TypeInternal, plain.Type)
}
