package apperrors_test

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/SscSPs/ecb_rates_pipeline/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchError(t *testing.T) {
	err := fmt.Errorf("refresh rates: %w", apperrors.NewStatusError("http://feed", 500))

	assert.ErrorIs(t, err, apperrors.ErrFetch)
	assert.NotErrorIs(t, err, apperrors.ErrParse)

	var fetchErr *apperrors.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 500, fetchErr.StatusCode)
	assert.Contains(t, err.Error(), "unexpected status 500")

	transport := apperrors.NewFetchError("http://feed", io.ErrUnexpectedEOF)
	assert.ErrorIs(t, transport, io.ErrUnexpectedEOF)
	assert.ErrorIs(t, transport, apperrors.ErrFetch)
}

func TestParseError(t *testing.T) {
	err := apperrors.NewParseError("no rates in feed", nil)
	assert.ErrorIs(t, err, apperrors.ErrParse)
	assert.Equal(t, "parse feed: no rates in feed", err.Error())

	cause := errors.New("EOF")
	wrapped := apperrors.NewParseError("decode xml", cause)
	assert.ErrorIs(t, wrapped, cause)
}

func TestPersistenceError(t *testing.T) {
	cause := errors.New("connection reset")
	err := apperrors.NewPersistenceError("upsert exchange rate", "USD", cause)

	assert.ErrorIs(t, err, apperrors.ErrPersistence)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "upsert exchange rate (USD): connection reset", err.Error())
}

func TestMissingRateError(t *testing.T) {
	err := errors.Join(
		&apperrors.MissingRateError{OrderID: "1", CurrencyCode: "XYZ"},
		&apperrors.MissingRateError{OrderID: "2", CurrencyCode: "ABC"},
	)

	assert.ErrorIs(t, err, apperrors.ErrMissingRate)
	var missing *apperrors.MissingRateError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "1", missing.OrderID)
}

func TestNewValidationError(t *testing.T) {
	err := apperrors.NewValidationError("rate must be positive")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "rate must be positive")
}
