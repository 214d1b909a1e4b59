package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-trip-keeper/internal/app"
	"github.com/MKhiriev/go-trip-keeper/internal/service"
	"github.com/MKhiriev/go-trip-keeper/internal/store"
	"github.com/MKhiriev/go-trip-keeper/models"
)

type errorResponse struct {
	status  int
	message string
}

// errorStatusMap maps errors to the status and body sent to the client. The
// body is one of the app.Msg* constants, which the client maps back to its
// own errors.
var errorStatusMap = map[error]errorResponse{
	service.ErrInvalidDataProvided:     {http.StatusBadRequest, app.MsgInvalidDataProvided},
	service.ErrTokenIsExpired:          {http.StatusUnauthorized, app.MsgTokenIsExpired},
	service.ErrTokenIsExpiredOrInvalid: {http.StatusUnauthorized, app.MsgTokenIsExpiredOrInvalid},
	service.ErrValidationNoUserID:      {http.StatusBadRequest, app.MsgNoUserIDProvided},
	service.ErrValidationNoIDsProvided: {http.StatusBadRequest, app.MsgNoIDsProvided},
	service.ErrUnknownCollection:       {http.StatusBadRequest, app.MsgUnknownCollection},
	service.ErrIntegrityCheckFailed:    {http.StatusBadRequest, app.MsgIntegrityCheckFailed},
	models.ErrMalformedCollection:      {http.StatusBadRequest, app.MsgMalformedCollection},

	store.ErrBuildingSQLQuery:     {http.StatusInternalServerError, app.MsgInternalServerError},
	store.ErrExecutingQuery:       {http.StatusInternalServerError, app.MsgInternalServerError},
	store.ErrExecutingStatement:   {http.StatusInternalServerError, app.MsgInternalServerError},
	store.ErrBeginningTransaction: {http.StatusInternalServerError, app.MsgInternalServerError},
	store.ErrCommitingTransaction: {http.StatusInternalServerError, app.MsgInternalServerError},
	store.ErrScanningRows:         {http.StatusInternalServerError, app.MsgInternalServerError},
}

func lookupError(err error) errorResponse {
	// transient database failures also carry the failed operation
	if errors.Is(err, store.ErrTemporarilyUnavailable) {
		return errorResponse{http.StatusServiceUnavailable, app.MsgStoreUnavailable}
	}

	for target, resp := range errorStatusMap {
		if errors.Is(err, target) {
			return resp
		}
	}
	return errorResponse{http.StatusInternalServerError, app.MsgInternalServerError}
}

func statusFromError(err error) int {
	return lookupError(err).status
}

func messageFromError(err error) string {
	return lookupError(err).message
}
