package service

import "errors"

var (
	ErrUnknownCategory      = errors.New("unknown property type")
	ErrUnknownProduct       = errors.New("unknown product type")
	ErrInvalidRetentionBand = errors.New("invalid retention LTV band")
	ErrInvalidLoanMode      = errors.New("invalid loan type")
	ErrInvalidClient        = errors.New("invalid client details")
	ErrNotQuotable          = errors.New("quote is incomplete")
	ErrDeliveryFailed       = errors.New("quote delivery failed")
)
