// Package sms is the outbound code-delivery boundary: a destination and a
// message go out, success or failure comes back. No delivery receipts.
package sms

import (
	"context"
	"errors"
)

var ErrDeliveryFailed = errors.New("sms delivery failed")

type Sender interface {
	Send(ctx context.Context, toPhoneNumber, messageText string) error
}
