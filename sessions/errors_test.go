package sessions

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkline/roomsession/internal/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		kind      errors.Code
		reason    string
		retryable bool
		banned    bool
	}{
		{"no status", &StatusError{StatusCode: 0}, KindTransport, ReasonNoResponse, true, false},
		{"plain error", errors.PureNew("dial tcp: refused"), KindTransport, ReasonNoResponse, true, false},
		{"password", &StatusError{StatusCode: 403, Reason: "password"}, KindAuthorization, ReasonWrongPassword, false, false},
		{"ban", &StatusError{StatusCode: 403, Reason: "ban"}, KindAuthorization, ReasonBanned, false, true},
		{"forbidden", &StatusError{StatusCode: 403}, KindAuthorization, ReasonForbidden, false, false},
		{"not found", &StatusError{StatusCode: 404}, KindNotFound, ReasonNotFound, true, false},
		{"conflict", &StatusError{StatusCode: 409}, KindConflict, ReasonDuplicateSession, true, false},
		{"remote", &StatusError{StatusCode: 422}, KindRemoteUnreachable, ReasonRemoteUnreachable, true, false},
		{"maintenance", &StatusError{StatusCode: 503}, KindServerUnavailable, ReasonMaintenance, true, false},
		{"server error", &StatusError{StatusCode: 500}, KindUnknown, ReasonUnknown, true, false},
		{"wrapped", fmt.Errorf("join: %w", &StatusError{StatusCode: 409}), KindConflict, ReasonDuplicateSession, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Classify(tt.err)
			require.NotNil(t, e)

			assert.Equal(t, tt.kind, e.Kind)
			assert.Equal(t, tt.reason, e.Reason)
			assert.Equal(t, tt.retryable, e.Retryable())
			assert.Equal(t, tt.banned, e.IsBanned)
			assert.ErrorIs(t, e, tt.kind)
		})
	}
}

func TestClassifyKeepsStatusAndCause(t *testing.T) {
	cause := &StatusError{StatusCode: 503, Reason: "maintenance"}
	e := Classify(cause)

	assert.Equal(t, 503, e.StatusCode)
	assert.ErrorIs(t, e, cause)
	assert.Contains(t, e.Error(), "status 503")
}

func TestClassifyNil(t *testing.T) {
	assert.Nil(t, Classify(nil))
}

func TestClassifyIdempotent(t *testing.T) {
	e := NewSignalingError(errors.PureNew("hello timeout"))
	assert.Same(t, e, Classify(fmt.Errorf("phase 2: %w", e)))
}

func TestNonRetryableKinds(t *testing.T) {
	assert.False(t, NewSignalingError(nil).Retryable())
	assert.False(t, NewConfigurationError(nil).Retryable())
	assert.ErrorIs(t, NewConfigurationError(nil), KindConfiguration)
}

func TestIsCancelled(t *testing.T) {
	assert.True(t, IsCancelled(&StatusError{Err: context.Canceled}))
	assert.False(t, IsCancelled(&StatusError{Err: context.DeadlineExceeded}))
}

func TestErrorJSON(t *testing.T) {
	bs, err := json.Marshal(Classify(&StatusError{StatusCode: 403, Reason: "ban"}))
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(bs, &out))
	assert.Equal(t, "authorization error", out["kind"])
	assert.Equal(t, true, out["isBanned"])
	assert.Equal(t, false, out["retryable"])
	assert.InDelta(t, 403, out["statusCode"], 0)
}

func TestHandleUsage(t *testing.T) {
	h := Handle{Token: "room42", SessionID: "s1"}.With(UsageChat, true)
	assert.True(t, h.Has(UsageChat))
	assert.False(t, h.Has(UsageCall))
	assert.False(t, h.Idle())

	h = h.With(UsageCall, true).With(UsageChat, false)
	assert.True(t, h.InCall)
	assert.False(t, h.InChat)

	assert.True(t, h.With(UsageCall, false).Idle())
	assert.False(t, Usage("video").Valid())
}

func TestFederationParams(t *testing.T) {
	var none *SignalingSettings
	assert.Nil(t, none.FederationParams())
	assert.Nil(t, (&SignalingSettings{}).FederationParams())

	s := &SignalingSettings{Federation: &FederationSettings{
		Server:          "wss://remote.example.com/standalone-signaling/",
		NextcloudServer: "https://remote.example.com",
		RoomID:          "abc123",
		HelloAuthParams: HelloAuthParams{Token: "jwt"},
	}}
	assert.Equal(t, &FederationParams{
		SignalingURL: "wss://remote.example.com/standalone-signaling/",
		NextcloudURL: "https://remote.example.com",
		RoomID:       "abc123",
		Token:        "jwt",
	}, s.FederationParams())

	assert.True(t, (&RoomMetadata{RemoteServer: "https://remote.example.com"}).IsFederated())
	assert.False(t, (&RoomMetadata{}).IsFederated())
}
