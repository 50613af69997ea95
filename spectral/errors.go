package spectral

import (
	"errors"

	"github.com/notargets/gospectral/kernels"
)

var (
	ErrShapeMismatch      = errors.New("shape mismatch")
	ErrUnsupportedFamily  = errors.New("unsupported basis family")
	ErrSingularOperator   = errors.New("singular operator")
	ErrBackendUnavailable = kernels.ErrBackendUnavailable
	ErrInvalidBasis       = errors.New("invalid basis")
)
