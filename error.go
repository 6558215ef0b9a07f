package wsgraphql

import (
	"errors"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
)

var (
	// ErrHTTPQueryRejected is returned for plain HTTP requests, which are not served
	ErrHTTPQueryRejected = errors.New("HTTP query rejected")

	// ErrUpgraderRequired is returned by NewServer when no Upgrader is provided
	ErrUpgraderRequired = errors.New("upgrader is required")

	// ErrUnsupportedProtocol is returned by NewServer for unknown protocol
	ErrUnsupportedProtocol = errors.New("unsupported protocol")
)

// ResultError is returned when operation produced result with errors, either at validation or execution stage
type ResultError struct {
	Result *graphql.Result
}

func (r ResultError) Error() string {
	var errs []string

	for _, err := range r.Result.Errors {
		errs = append(errs, err.Message)
	}

	return strings.Join(errs, "; ")
}

func wrapExtendedError(err error) error {
	var ext gqlerrors.ExtendedError

	if errors.As(err, &ext) {
		return &gqlerrors.Error{
			Message:       err.Error(),
			OriginalError: ext,
		}
	}

	return err
}

// FormatError formats provided error as graphql error, preserving extensions of gqlerrors.ExtendedError
func FormatError(err error) gqlerrors.FormattedError {
	if fmterr, ok := err.(gqlerrors.FormattedError); ok {
		return fmterr
	}

	if _, ok := err.(*gqlerrors.Error); ok {
		return gqlerrors.FormatError(err)
	}

	return gqlerrors.FormatError(wrapExtendedError(err))
}

func combineErrors(errs []gqlerrors.FormattedError) gqlerrors.FormattedError {
	if len(errs) == 1 {
		return errs[0]
	}

	errmsg := "preparing operation"

	var errmsgs []string

	for _, err := range errs {
		errmsgs = append(errmsgs, err.Error())
	}

	if len(errmsgs) > 0 {
		errmsg += ": " + strings.Join(errmsgs, "; ")
	}

	rooterr := gqlerrors.NewFormattedError(errmsg)

	if len(errs) > 0 {
		rooterr.Extensions = map[string]interface{}{
			"errors": errs,
		}
	}

	return rooterr
}
