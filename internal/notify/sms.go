// Package notify holds the outbound SMS and mail transports.
package notify

import (
	"context"
	"time"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSTransport delivers a text message to a phone number.
type SMSTransport interface {
	SendSMS(ctx context.Context, to, body string) error
}

// TwilioTransport sends SMS through the Twilio Messages API.
type TwilioTransport struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioTransport builds a transport authenticated with the account SID and auth token.
func NewTwilioTransport(accountSID, authToken, from string, timeout time.Duration) *TwilioTransport {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &TwilioTransport{client: client, from: from}
}

// SendSMS creates one outbound message. The Twilio client has no context
// support, so ctx is only checked before the call; the client timeout bounds it.
func (t *TwilioTransport) SendSMS(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)

	_, err := t.client.Api.CreateMessage(params)
	return err
}
