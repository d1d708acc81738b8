package gateway

import (
	"context"

	"github.com/rahul/meetprep/internal/meeting"
	"github.com/rahul/meetprep/internal/prep"
)

// Preparer runs one preparation request. *prep.Service satisfies it.
type Preparer interface {
	CheckCredentials(creds prep.Credentials) error
	Prepare(ctx context.Context, creds prep.Credentials, req meeting.Request) (prep.Outcome, error)
}

// Messenger defines the interface for chat gateways.
type Messenger interface {
	// Start begins the message listening loop
	Start(ctx context.Context) error
	// Send sends a message to a specific chat
	Send(chatID string, text string) error
	// Stop gracefully shuts down the gateway
	Stop() error
}
