package miniostore

import (
	"context"
	"errors"
	"net/http"

	miniogo "github.com/minio/minio-go/v7"

	"github.com/HaiFongPan/r2s3-browser/internal/storage"
)

// mapError translates a MinIO SDK error into a *storage.Error
func mapError(op, key string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return storage.Wrap(storage.ErrKindTimeout, op, key, err)
	}

	var resp miniogo.ErrorResponse
	if errors.As(err, &resp) {
		switch resp.StatusCode {
		case http.StatusNotFound:
			return storage.Wrap(storage.ErrKindNotFound, op, key, err)
		case http.StatusForbidden, http.StatusUnauthorized:
			return storage.Wrap(storage.ErrKindPermissionDenied, op, key, err)
		case http.StatusBadRequest:
			return storage.Wrap(storage.ErrKindInvalidInput, op, key, err)
		}

		switch resp.Code {
		case "NoSuchBucket", "NoSuchKey", "NoSuchUpload":
			return storage.Wrap(storage.ErrKindNotFound, op, key, err)
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return storage.Wrap(storage.ErrKindPermissionDenied, op, key, err)
		case "InvalidBucketName", "InvalidObjectName", "KeyTooLongError":
			return storage.Wrap(storage.ErrKindInvalidInput, op, key, err)
		case "RequestTimeout", "SlowDown":
			return storage.Wrap(storage.ErrKindTimeout, op, key, err)
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
	var resp miniogo.ErrorResponse
	if !errors.As(err, &resp) {
		return false
	}
	return resp.Code == "InvalidRange" || resp.StatusCode == http.StatusRequestedRangeNotSatisfiable
}
