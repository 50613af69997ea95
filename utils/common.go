package utils

const (
	// DROPTOL is the relative magnitude below which assembled operator
	// entries are treated as structural zeros.
	DROPTOL = 1.e-12
)
