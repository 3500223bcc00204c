package domain

import "errors"

var (
	ErrNotFound = errors.New("billing record not found")
	// ErrInsufficientBalance is returned when a charge would take the balance below zero.
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrUnknownPriceClass   = errors.New("unknown number price class")
	// ErrWebhookSignature is returned when a payment webhook fails signature verification.
	ErrWebhookSignature = errors.New("webhook signature verification failed")
	// ErrPaymentIntentNotFound is returned for webhook events that reference an unknown intent.
	ErrPaymentIntentNotFound = errors.New("payment intent not found")
	ErrPaymentGateway        = errors.New("payment gateway error")
)
