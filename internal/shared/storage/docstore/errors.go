package docstore

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"

	"osapio-backend/internal/shared/apperr"
)

// Classify wraps a driver error for op. Network, timeout and server
// selection failures become apperr.ErrUnavailable.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if Unreachable(err) {
		return apperr.Wrap(apperr.ErrUnavailable, fmt.Errorf("%s: %w", op, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Unreachable reports whether err means the deployment could not be reached.
func Unreachable(err error) bool {
	switch {
	case mongo.IsNetworkError(err), mongo.IsTimeout(err):
		return true
	case errors.Is(err, topology.ErrServerSelectionTimeout), errors.Is(err, mongo.ErrClientDisconnected):
		return true
	}
	return false
}
