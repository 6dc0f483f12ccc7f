package s3store

import (
	"context"
	"errors"
	"net/http"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/HaiFongPan/r2s3-browser/internal/storage"
)

// mapError translates an SDK error into a *storage.Error
func mapError(op, key string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return storage.Wrap(storage.ErrKindTimeout, op, key, err)
	}

	var nsk *types.NoSuchKey
	var nf *types.NotFound
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsk) || errors.As(err, &nf) || errors.As(err, &nsb) {
		return storage.Wrap(storage.ErrKindNotFound, op, key, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return storage.Wrap(storage.ErrKindNotFound, op, key, err)
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return storage.Wrap(storage.ErrKindPermissionDenied, op, key, err)
		case "InvalidBucketName", "KeyTooLongError", "InvalidArgument":
			return storage.Wrap(storage.ErrKindInvalidInput, op, key, err)
		case "RequestTimeout", "SlowDown":
			return storage.Wrap(storage.ErrKindTimeout, op, key, err)
		}
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.HTTPStatusCode() {
		case http.StatusNotFound:
			return storage.Wrap(storage.ErrKindNotFound, op, key, err)
		case http.StatusForbidden, http.StatusUnauthorized:
			return storage.Wrap(storage.ErrKindPermissionDenied, op, key, err)
		}
		return storage.Wrap(storage.ErrKindCommandFailed, op, key, err)
	}

	return storage.Wrap(storage.ErrKindConnectionFailed, op, key, err)
}

// isInvalidRange reports a 416 answer to a range request
func isInvalidRange(err error) bool {
	if err == nil {
		return false
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "InvalidRange" {
		return true
	}
	var respErr *awshttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusRequestedRangeNotSatisfiable
}
