package utils

import "sync"

// KeyMutex serializes operations per key. Lifecycle operations for the same
// phone number must not interleave; different numbers run in parallel.
type KeyMutex struct {
	locks sync.Map // key -> *sync.Mutex
}

func NewKeyMutex() *KeyMutex {
	return &KeyMutex{}
}

func (m *KeyMutex) Lock(key string) {
	lock, _ := m.locks.LoadOrStore(key, &sync.Mutex{})
	lock.(*sync.Mutex).Lock()
}

func (m *KeyMutex) Unlock(key string) {
	lock, ok := m.locks.Load(key)
	if !ok {
		panic("keymutex: unlock of unheld key " + key)
	}
	lock.(*sync.Mutex).Unlock()
}
