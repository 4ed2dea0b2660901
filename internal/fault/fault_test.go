package fault

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindForStatus(t *testing.T) {
	tests := []struct {
		status int
		want   Kind
	}{
		{http.StatusUnauthorized, Auth},
		{http.StatusForbidden, Auth},
		{http.StatusNotFound, NotFoundOrServer},
		{http.StatusInternalServerError, NotFoundOrServer},
		{http.StatusBadRequest, Generic},
		{http.StatusConflict, Generic},
		{http.StatusBadGateway, Generic},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, KindForStatus(tt.status))
		})
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("refresh: %w", FromStatus("list events", http.StatusForbidden, "denied"))

	assert.Equal(t, Auth, KindOf(err))
	assert.True(t, Is(err, Auth))
	assert.Equal(t, "denied", MessageOf(err))
}

func TestKindOfUnclassified(t *testing.T) {
	err := errors.New("boom")

	assert.Equal(t, Generic, KindOf(err))
	assert.Empty(t, MessageOf(err))
}

func TestTransportMessageFallsBackToCause(t *testing.T) {
	err := Transport("list users", errors.New("connection refused"))

	assert.Equal(t, Generic, err.Kind)
	assert.Equal(t, "connection refused", MessageOf(err))
	assert.Contains(t, err.Error(), "list users")
}
