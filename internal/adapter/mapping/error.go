package mapping

import (
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/eslsoft/revise/internal/entity"
)

// ToStatusError classifies a domain error as a gRPC status error.
func ToStatusError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, entity.ErrInvalidLearner),
		errors.Is(err, entity.ErrInvalidProgressID),
		errors.Is(err, entity.ErrInvalidSignal),
		errors.Is(err, entity.ErrInvalidFilter):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, entity.ErrProgressNotFound), errors.Is(err, entity.ErrUnitNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, entity.ErrDuplicateProgress):
		return status.Error(codes.AlreadyExists, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// HTTPStatus maps a status error produced by ToStatusError to an HTTP
// response code.
func HTTPStatus(err error) int {
	switch status.Code(err) {
	case codes.OK:
		return http.StatusOK
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.AlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
