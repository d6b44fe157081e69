package node

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrNotFound    = errors.New("node: not found")
	ErrUnavailable = errors.New("node: unavailable")
)

func mapRPC(method string, err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%s: %w", method, err)
	}

	switch st.Code() {
	case codes.NotFound:
		return fmt.Errorf("%s: %w: %s", method, ErrNotFound, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%s: %w: %s", method, ErrUnavailable, st.Message())
	default:
		return fmt.Errorf("%s: %w", method, err)
	}
}
