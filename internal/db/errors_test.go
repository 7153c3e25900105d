package db

import (
	"errors"
	"testing"
)

func TestError_WrapsAndFormats(t *testing.T) {
	cause := errors.New("connection reset")
	err := error(&Error{Op: OpHSet, Err: cause})

	if err.Error() != "HSET: connection reset" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to reach the cause")
	}

	var dbErr *Error
	if !errors.As(err, &dbErr) || dbErr.Op != OpHSet {
		t.Errorf("expected *Error with op HSET, got %v", err)
	}
}
