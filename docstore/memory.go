package docstore

import (
	"context"
	"sync"

	"github.com/MrEthical07/sessionkit"
)

// Memory is an in-process identity store for development and tests. Records are lost
// on restart.
type Memory struct {
	mu      sync.RWMutex
	byEmail map[string]sessionkit.IdentityRecord
	logins  map[string]sessionkit.LoginInfo
}

func NewMemory() *Memory {
	return &Memory{
		byEmail: make(map[string]sessionkit.IdentityRecord),
		logins:  make(map[string]sessionkit.LoginInfo),
	}
}

func (m *Memory) FindByEmail(_ context.Context, email string) (sessionkit.IdentityRecord, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.byEmail[email]
	return rec, ok, nil
}

func (m *Memory) Insert(_ context.Context, rec sessionkit.IdentityRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[rec.Email]; ok {
		return sessionkit.ErrDuplicateIdentity
	}
	m.byEmail[rec.Email] = rec
	return nil
}

func (m *Memory) RecordLogin(_ context.Context, identityID string, info sessionkit.LoginInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logins[identityID] = info
	return nil
}

// LastLogin returns what RecordLogin stored for identityID.
func (m *Memory) LastLogin(identityID string) (sessionkit.LoginInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	info, ok := m.logins[identityID]
	return info, ok
}
