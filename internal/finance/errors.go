package finance

import "errors"

var (
	// ErrMissingColumns is returned when a dataset does not expose both X and Y.
	ErrMissingColumns = errors.New("CSV must contain 'X' and 'Y' columns")

	// ErrColumnLength is returned when the X and Y columns differ in length.
	ErrColumnLength = errors.New("X and Y columns have different lengths")

	// ErrEmptyDataset is returned when there are no observations to compute on.
	ErrEmptyDataset = errors.New("dataset has no observations")

	// ErrNonNumeric is returned when an X or Y value is not a finite number.
	ErrNonNumeric = errors.New("non-numeric value")

	// ErrNoDefinedRisk is returned when a chart has no point with a defined risk.
	ErrNoDefinedRisk = errors.New("no portfolio with a defined risk to plot")
)
