package gemini

import "sync"

// Keyring holds the ordered credential pool and the process-wide rotation
// cursor. Every call advances the cursor, regardless of the outcome of prior
// calls, so load spreads across quota pools.
type Keyring struct {
	mu     sync.Mutex
	keys   []string
	cursor int
}

func NewKeyring(keys []string) *Keyring {
	filtered := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			filtered = append(filtered, k)
		}
	}
	return &Keyring{keys: filtered}
}

func (k *Keyring) Len() int {
	return len(k.keys)
}

// Next returns the next credential in round-robin order and its index.
func (k *Keyring) Next() (string, int) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if len(k.keys) == 0 {
		return "", -1
	}
	idx := k.cursor
	key := k.keys[idx]
	k.cursor = (k.cursor + 1) % len(k.keys)
	return key, idx
}
