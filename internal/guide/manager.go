package guide

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("guide session not found")
	ErrTooManySessions = errors.New("guide session limit reached")
)

const (
	defaultSessionTTL  = 30 * time.Minute
	defaultMaxSessions = 10000
)

// Manager 会话管理器：内存存储，闲置过期在访问时惰性清理
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	max      int
}

// NewManager 创建会话管理器
func NewManager(ttl time.Duration, maxSessions int) *Manager {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	if maxSessions <= 0 {
		maxSessions = defaultMaxSessions
	}
	return &Manager{
		sessions: map[string]*Session{},
		ttl:      ttl,
		max:      maxSessions,
	}
}

// Create 创建新会话
func (m *Manager) Create() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purgeExpiredLocked(time.Now())
	if len(m.sessions) >= m.max {
		return nil, ErrTooManySessions
	}
	session := NewSession(uuid.NewString())
	m.sessions[session.ID] = session
	return session, nil
}

// Get 获取会话
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	session, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.Expired(m.ttl, time.Now()) {
		m.Remove(id)
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Remove 删除会话
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len 当前在存会话数
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) purgeExpiredLocked(now time.Time) {
	for id, session := range m.sessions {
		if session.Expired(m.ttl, now) {
			delete(m.sessions, id)
		}
	}
}
