package audit

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// TypeRefreshTokenReuse is recorded when a refresh token that was already rotated away
// is presented again.
const TypeRefreshTokenReuse = "refresh_token_reuse"

// Record is one entry of the security audit log.
type Record struct {
	ID         string    `json:"id" firestore:"id"`
	Type       string    `json:"type" firestore:"type"`
	Email      string    `json:"email" firestore:"email"`
	IP         string    `json:"ip,omitempty" firestore:"ip"`
	UserAgent  string    `json:"userAgent,omitempty" firestore:"userAgent"`
	OccurredAt time.Time `json:"occurredAt" firestore:"occurredAt"`
}

// NewRecord builds a record with a fresh time-sortable id.
func NewRecord(typ, email, ip, userAgent string, at time.Time) Record {
	return Record{
		ID:         ulid.Make().String(),
		Type:       typ,
		Email:      email,
		IP:         ip,
		UserAgent:  userAgent,
		OccurredAt: at.UTC(),
	}
}

// Sink persists audit records.
type Sink interface {
	Write(ctx context.Context, rec Record) error
}

// NoOpSink drops audit records.
type NoOpSink struct{}

func (NoOpSink) Write(context.Context, Record) error { return nil }

// ChannelSink writes audit records into a buffered channel.
type ChannelSink struct {
	records chan Record
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		records: make(chan Record, buffer),
	}
}

func (s *ChannelSink) Write(ctx context.Context, rec Record) error {
	select {
	case s.records <- rec:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ChannelSink) Records() <-chan Record {
	return s.records
}

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Write(ctx context.Context, rec Record) error {
	if s == nil || s.writer == nil {
		return nil
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.writer.Write(data)
	return err
}
