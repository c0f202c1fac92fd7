package docstore

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/MrEthical07/sessionkit"
	"github.com/MrEthical07/sessionkit/audit"
	"github.com/MrEthical07/sessionkit/internal/conn"
)

// AuditCollection holds security audit records keyed by record id.
const AuditCollection = "SecurityAudit"

// AuditSink writes audit records to Firestore. It shares the lazily dialed client of
// the Firestore store it was created from.
type AuditSink struct {
	client  *conn.Lazy[*firestore.Client]
	timeout time.Duration
}

// AuditSink returns a sink over the same client and call timeout as f.
func (f *Firestore) AuditSink() *AuditSink {
	return &AuditSink{client: f.client, timeout: f.callTimeout}
}

func (s *AuditSink) Write(ctx context.Context, rec audit.Record) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	client, err := s.client.Get(ctx)
	if err != nil {
		return errors.Join(sessionkit.ErrStoreUnavailable, err)
	}
	if _, err := client.Collection(AuditCollection).Doc(rec.ID).Set(ctx, rec); err != nil {
		return classify(err)
	}
	return nil
}
