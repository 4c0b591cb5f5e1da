package stores

import (
	"log/slog"

	"timewallet/internal/api"
)

// SessionState is the durable session surface the stores need.
type SessionState interface {
	SessionStorage
	AnalyticsBookkeeping
}

// Set bundles one store per server-owned resource family plus the
// derived views, with the cross-store invalidation wired: a task
// mutation that can change today's spent hours refreshes the wallet.
type Set struct {
	Auth       *AuthStore
	Tasks      *TasksStore
	Events     *EventsStore
	Categories *CategoriesStore
	Wallet     *WalletStore
	Analytics  *AnalyticsStore
	Session    SessionState
}

func NewSet(client *api.Client, sess SessionState, log *slog.Logger) *Set {
	s := &Set{
		Session:    sess,
		Auth:       NewAuthStore(client, sess, log),
		Tasks:      NewTasksStore(client, log),
		Events:     NewEventsStore(client, log),
		Categories: NewCategoriesStore(client, log),
		Wallet:     NewWalletStore(client, log),
		Analytics:  NewAnalyticsStore(client, log),
	}
	s.Tasks.SetInvalidationHook(s.Wallet.Refresh)
	return s
}
