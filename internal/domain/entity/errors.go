package entity

import (
	"errors"
	"fmt"
)

// ErrorKind classifies donation flow failures.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindUnsupportedAsset
	KindPriceFeed
	KindInvalidAmount
	KindBelowMinimum
	KindInsufficientBalance
	KindWalletRejected
	KindTransactionFailed
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnsupportedAsset:
		return "unsupported_asset"
	case KindPriceFeed:
		return "price_feed"
	case KindInvalidAmount:
		return "invalid_amount"
	case KindBelowMinimum:
		return "below_minimum"
	case KindInsufficientBalance:
		return "insufficient_balance"
	case KindWalletRejected:
		return "wallet_rejected"
	case KindTransactionFailed:
		return "transaction_failed"
	default:
		return "unknown"
	}
}

// DonationError is the single error type of the donation flow. Compare with errors.Is against the Err* sentinels.
type DonationError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Sentinels for errors.Is. They only carry a kind.
var (
	ErrUnsupportedAsset    = &DonationError{Kind: KindUnsupportedAsset}
	ErrPriceFeed           = &DonationError{Kind: KindPriceFeed}
	ErrInvalidAmount       = &DonationError{Kind: KindInvalidAmount}
	ErrBelowMinimum        = &DonationError{Kind: KindBelowMinimum}
	ErrInsufficientBalance = &DonationError{Kind: KindInsufficientBalance}
	ErrWalletRejected      = &DonationError{Kind: KindWalletRejected}
	ErrTransactionFailed   = &DonationError{Kind: KindTransactionFailed}
)

func (e *DonationError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *DonationError) Unwrap() error { return e.Err }

// Is matches any DonationError of the same kind.
func (e *DonationError) Is(target error) bool {
	t, ok := target.(*DonationError)
	return ok && t.Kind == e.Kind
}

// UserMessage is the text shown to the donor. Every kind has its own wording.
func (e *DonationError) UserMessage() string {
	switch e.Kind {
	case KindUnsupportedAsset:
		return "Donations with this network or token are not supported."
	case KindPriceFeed:
		return "Could not fetch the current exchange rate. Please try again."
	case KindInvalidAmount:
		return "Please enter a valid donation amount greater than zero."
	case KindBelowMinimum:
		if e.Message != "" {
			return "The donation is below the minimum amount: " + e.Message + "."
		}
		return "The donation is below the minimum amount."
	case KindInsufficientBalance:
		return "Your wallet balance is too low for this donation."
	case KindWalletRejected:
		return "The transaction was rejected in your wallet."
	case KindTransactionFailed:
		if e.Err != nil {
			return "The transaction failed: " + e.Err.Error()
		}
		return "The transaction failed on chain."
	default:
		return "Something went wrong. Please try again later."
	}
}

// Retryable reports whether re-invoking the same operation may succeed without changing input.
func (e *DonationError) Retryable() bool {
	return e.Kind == KindPriceFeed
}

func newError(kind ErrorKind, err error, format string, args ...any) *DonationError {
	return &DonationError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func NewUnsupportedAssetError(format string, args ...any) *DonationError {
	return newError(KindUnsupportedAsset, nil, format, args...)
}

func NewPriceFeedError(err error, format string, args ...any) *DonationError {
	return newError(KindPriceFeed, err, format, args...)
}

func NewInvalidAmountError(format string, args ...any) *DonationError {
	return newError(KindInvalidAmount, nil, format, args...)
}

func NewBelowMinimumError(format string, args ...any) *DonationError {
	return newError(KindBelowMinimum, nil, format, args...)
}

func NewInsufficientBalanceError(format string, args ...any) *DonationError {
	return newError(KindInsufficientBalance, nil, format, args...)
}

func NewWalletRejectedError(err error) *DonationError {
	return newError(KindWalletRejected, err, "wallet rejected the transaction")
}

func NewTransactionFailedError(err error, format string, args ...any) *DonationError {
	return newError(KindTransactionFailed, err, format, args...)
}

// KindOf returns the kind of the first DonationError in err's chain.
func KindOf(err error) ErrorKind {
	var de *DonationError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}
