package errprocess

import (
	"unsend_service/pkg/logger"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

var (
	// ErrNotFound record not present in the local store
	ErrNotFound = errors.New("not found")
)

// Set set err info
func Set(errMsg string) error {
	logger.Log.Error(errMsg)
	return errors.New(errMsg)
}

// Invariant 呼叫端違反前置條件 (程式錯誤), 記錄後回傳 assertion failure
func Invariant(format string, args ...interface{}) error {
	err := errors.AssertionFailedWithDepthf(1, format, args...)
	logger.Log.Error("invariant violated", zap.Error(err))
	return err
}

// IsInvariant reports whether err (or anything it wraps) came from Invariant.
func IsInvariant(err error) bool {
	return err != nil && errors.IsAssertionFailure(err)
}
