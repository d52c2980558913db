package session

import (
	"context"

	"github.com/studymate-app/studymate/internal/api"
	"github.com/studymate-app/studymate/pkg/logger"
	"github.com/studymate-app/studymate/pkg/models"
)

// Manager owns the Session. All other components read it; only the
// manager's own methods mutate it, so no locking is needed.
type Manager struct {
	client    *api.Client
	logger    *logger.Logger
	resolved  bool
	current   models.Session
	listeners []func(models.Session)
}

func NewManager(client *api.Client, log *logger.Logger) *Manager {
	return &Manager{
		client: client,
		logger: log,
	}
}

// OnChange registers a listener fired after every identity change.
// Views that depend on the session (the sign-in screen, the document
// list reload) subscribe here instead of being re-rendered imperatively.
func (m *Manager) OnChange(fn func(models.Session)) {
	m.listeners = append(m.listeners, fn)
}

// Resolved reports whether the initial session check has completed.
// The loading screen stays up until it has.
func (m *Manager) Resolved() bool {
	return m.resolved
}

func (m *Manager) Current() models.Session {
	return m.current
}

// CheckSession asks the backend whether the ambient cookie still names an
// authenticated user. The session is considered resolved afterwards even
// on failure, so an unreachable backend lands on the login view rather
// than a stuck loading screen.
func (m *Manager) CheckSession(ctx context.Context) (models.Session, error) {
	sess, err := m.client.CheckAuth(ctx)
	m.resolved = true
	if err != nil {
		m.logger.Error("Auth check failed: %v", err)
		m.current = models.Session{}
		m.notify()
		return models.Session{}, err
	}

	m.current = sess
	if sess.Authenticated {
		m.logger.Info("Session restored for %s", sess.DisplayName())
	} else {
		m.logger.Debug("No existing session")
	}
	m.notify()
	return sess, nil
}

// Login exchanges a provider-issued credential for a server session. On
// failure no session is established and the previous state is kept.
func (m *Manager) Login(ctx context.Context, credential string) (models.Session, error) {
	user, err := m.client.Login(ctx, credential)
	if err != nil {
		return models.Session{}, err
	}

	m.current = models.Session{Authenticated: true, User: &user}
	m.resolved = true
	m.notify()
	return m.current, nil
}

// Logout invalidates the server session. Local session state is cleared
// even if the server call fails; listeners are responsible for resetting
// their own caches.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.client.Logout(ctx)
	if err != nil {
		m.logger.Error("Logout request failed: %v", err)
	} else {
		m.logger.Info("Logged out")
	}

	m.current = models.Session{}
	m.notify()
	return err
}

func (m *Manager) notify() {
	for _, fn := range m.listeners {
		fn(m.current)
	}
}
