package minio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/koustreak/warehouser/internal/errs"
	"github.com/koustreak/warehouser/internal/filestore"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind errs.ErrKind
	}{
		{"no such key", miniogo.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}, errs.ErrKindNotFound},
		{"no such bucket", miniogo.ErrorResponse{Code: "NoSuchBucket"}, errs.ErrKindNotFound},
		{"access denied", miniogo.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden}, errs.ErrKindPermissionDenied},
		{"bad bucket name", miniogo.ErrorResponse{Code: "InvalidBucketName"}, errs.ErrKindInvalidInput},
		{"bare 404", miniogo.ErrorResponse{StatusCode: http.StatusNotFound}, errs.ErrKindNotFound},
		{"bare 401", miniogo.ErrorResponse{StatusCode: http.StatusUnauthorized}, errs.ErrKindPermissionDenied},
		{"server error", miniogo.ErrorResponse{Code: "InternalError", StatusCode: http.StatusInternalServerError}, errs.ErrKindConnectionFailed},
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), errs.ErrKindConnectionFailed},
		{"network", errors.New("dial tcp: connection refused"), errs.ErrKindConnectionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapError(tt.err, "failed")
			require.NotNil(t, err)
			assert.Equal(t, tt.kind, err.Kind)
			assert.NotNil(t, err.Cause)
		})
	}

	assert.Nil(t, mapError(nil, "ignored"))
}

func TestNew_RequiresEndpoint(t *testing.T) {
	_, err := New(context.Background(), filestore.DefaultConfig("", "ak", "sk"))
	assert.True(t, errs.IsInvalidInput(err))

	_, err = New(context.Background(), nil)
	assert.True(t, errs.IsInvalidInput(err))
}
