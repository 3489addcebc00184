package types

import "github.com/m-mizutani/goerr/v2"

var (
	ErrInvalidOption    = goerr.New("invalid option")
	ErrInvalidRequest   = goerr.New("invalid request")
	ErrConfigRequired   = goerr.New("required configuration is missing")
	ErrResourceNotFound = goerr.New("resource not found")
	ErrJobNotFound      = goerr.New("job not found")
	ErrJobNotCompleted  = goerr.New("job is not completed")
	ErrUnsupportedKind  = goerr.New("unsupported kind")
	ErrExternalCommand  = goerr.New("external command failed")
	ErrUploadDenied     = goerr.New("upload is not permitted")
)
