package docstore

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/MrEthical07/sessionkit"
	"github.com/MrEthical07/sessionkit/internal/conn"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// UsersCollection holds one document per identity, keyed by its id.
	UsersCollection = "Users"

	fieldEmail = "email_address"

	// DefaultCallTimeout bounds each Firestore call when NewFirestore is given no timeout.
	DefaultCallTimeout = 5 * time.Second
)

// errEmailTaken aborts a registration transaction that found an existing email.
var errEmailTaken = errors.New("email already registered")

type userDoc struct {
	ID          string     `firestore:"_id"`
	Avatar      *string    `firestore:"avatar"`
	FullName    string     `firestore:"full_name"`
	Email       string     `firestore:"email_address"`
	Password    string     `firestore:"password"`
	Groups      []string   `firestore:"groups"`
	Roles       string     `firestore:"roles"`
	Verified    bool       `firestore:"verified"`
	CreatedAt   time.Time  `firestore:"created_at"`
	UpdatedAt   *time.Time `firestore:"updated_at"`
	LastLoginIP string     `firestore:"lastLoginIp,omitempty"`
	LastLoginUA string     `firestore:"lastLoginUserAgent,omitempty"`
	LastLoginAt *time.Time `firestore:"lastLoginAt,omitempty"`
}

func toDoc(rec sessionkit.IdentityRecord) userDoc {
	groups := rec.Groups
	if groups == nil {
		groups = []string{}
	}
	return userDoc{
		ID:        rec.ID,
		Avatar:    rec.Avatar,
		FullName:  rec.FullName,
		Email:     rec.Email,
		Password:  rec.PasswordHash,
		Groups:    groups,
		Roles:     rec.Roles,
		Verified:  rec.Verified,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

func (d userDoc) record() sessionkit.IdentityRecord {
	return sessionkit.IdentityRecord{
		ID:           d.ID,
		Avatar:       d.Avatar,
		FullName:     d.FullName,
		Email:        d.Email,
		PasswordHash: d.Password,
		Groups:       d.Groups,
		Roles:        d.Roles,
		Verified:     d.Verified,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// Firestore is the Firestore-backed identity store.
type Firestore struct {
	client      *conn.Lazy[*firestore.Client]
	collection  string
	callTimeout time.Duration
}

// NewFirestore returns a store that dials lazily through dial, typically [Dialer].
// Every call, including the first dial, is bounded by callTimeout; <= 0 means
// DefaultCallTimeout.
func NewFirestore(dial func(ctx context.Context) (*firestore.Client, error), callTimeout time.Duration) *Firestore {
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	return &Firestore{
		client:      conn.NewLazy(dial, callTimeout),
		collection:  UsersCollection,
		callTimeout: callTimeout,
	}
}

func (f *Firestore) users(ctx context.Context) (*firestore.Client, *firestore.CollectionRef, error) {
	client, err := f.client.Get(ctx)
	if err != nil {
		return nil, nil, errors.Join(sessionkit.ErrStoreUnavailable, err)
	}
	return client, client.Collection(f.collection), nil
}

// FindByEmail looks the identity up by its normalized email.
func (f *Firestore) FindByEmail(ctx context.Context, email string) (sessionkit.IdentityRecord, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, f.callTimeout)
	defer cancel()

	_, users, err := f.users(ctx)
	if err != nil {
		return sessionkit.IdentityRecord{}, false, err
	}

	iter := users.Where(fieldEmail, "==", email).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return sessionkit.IdentityRecord{}, false, nil
	}
	if err != nil {
		return sessionkit.IdentityRecord{}, false, classify(err)
	}

	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return sessionkit.IdentityRecord{}, false, err
	}
	if doc.ID == "" {
		doc.ID = snap.Ref.ID
	}
	return doc.record(), true, nil
}

// Insert creates the identity document. The email check and the write run in one
// transaction, so two concurrent registrations of one email cannot both succeed.
func (f *Firestore) Insert(ctx context.Context, rec sessionkit.IdentityRecord) error {
	ctx, cancel := context.WithTimeout(ctx, f.callTimeout)
	defer cancel()

	client, users, err := f.users(ctx)
	if err != nil {
		return err
	}

	err = client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docs, err := tx.Documents(users.Where(fieldEmail, "==", rec.Email).Limit(1)).GetAll()
		if err != nil {
			return err
		}
		if len(docs) > 0 {
			return errEmailTaken
		}
		return tx.Create(users.Doc(rec.ID), toDoc(rec))
	})
	if errors.Is(err, errEmailTaken) {
		return sessionkit.ErrDuplicateIdentity
	}
	if err != nil {
		return classify(err)
	}
	return nil
}

// RecordLogin stores the last successful login on the identity document.
func (f *Firestore) RecordLogin(ctx context.Context, identityID string, info sessionkit.LoginInfo) error {
	ctx, cancel := context.WithTimeout(ctx, f.callTimeout)
	defer cancel()

	_, users, err := f.users(ctx)
	if err != nil {
		return err
	}
	at := info.At.UTC()
	_, err = users.Doc(identityID).Update(ctx, []firestore.Update{
		{Path: "lastLoginIp", Value: info.IP},
		{Path: "lastLoginUserAgent", Value: info.UserAgent},
		{Path: "lastLoginAt", Value: at},
	})
	if err != nil {
		return classify(err)
	}
	return nil
}

// Close releases the Firestore client if one was dialed.
func (f *Firestore) Close() error {
	if client, ok := f.client.Peek(); ok {
		return client.Close()
	}
	return nil
}

// classify maps gRPC status codes onto the session core's errors.
func classify(err error) error {
	switch status.Code(err) {
	case codes.AlreadyExists:
		return sessionkit.ErrDuplicateIdentity
	case codes.NotFound:
		return err
	default:
		return errors.Join(sessionkit.ErrStoreUnavailable, err)
	}
}
