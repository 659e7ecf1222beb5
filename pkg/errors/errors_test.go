package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromStatusClassification(t *testing.T) {
	cases := []struct {
		status int
		code   string
		kind   Kind
		action Action
	}{
		{http.StatusUnauthorized, "", KindAuthExpired, ActionReload},
		{http.StatusForbidden, "", KindForbidden, ActionNone},
		{http.StatusNotFound, "", KindNotFound, ActionNone},
		{http.StatusBadRequest, "", KindValidationFailed, ActionNone},
		{http.StatusUnprocessableEntity, "", KindValidationFailed, ActionNone},
		{http.StatusConflict, "", KindBusinessRuleViolation, ActionNone},
		{http.StatusBadRequest, "BUSINESS_RULE_VIOLATION", KindBusinessRuleViolation, ActionNone},
		{http.StatusInternalServerError, "", KindNetworkOrServer, ActionRetry},
		{http.StatusServiceUnavailable, "", KindNetworkOrServer, ActionRetry},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%d_%s", tc.status, tc.code), func(t *testing.T) {
			err := FromStatus(tc.status, tc.code, "boom")
			assert.Equal(t, tc.kind, err.Kind)
			assert.Equal(t, tc.action, err.Action)
		})
	}
}

func TestFromStatusKeepsBackendWordingForRules(t *testing.T) {
	err := FromStatus(http.StatusConflict, "", "cannot edit a completed event")
	assert.Equal(t, "cannot edit a completed event", err.Message)

	server := FromStatus(http.StatusInternalServerError, "", "pq: relation does not exist")
	assert.Equal(t, ErrUpstream.Message, server.Message)
}

func TestSentinelMatchingSurvivesClone(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", Clone(ErrNotFound, "event not found"))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestFromErrorDefaultsToServerKind(t *testing.T) {
	err := FromError(errors.New("dial tcp: refused"))
	assert.Equal(t, KindNetworkOrServer, err.Kind)
	assert.Equal(t, KindNetworkOrServer, Transport(errors.New("eof")).Kind)
	assert.Nil(t, FromError(nil))
}
