package store

import "github.com/starford/propdesk/internal/models"

// SetUser replaces the signed-in user. Nil signs out without a notice.
func (s *Store) SetUser(u *models.User) {
	s.mutate(func(next *Snapshot) (Change, bool) {
		if u == nil {
			next.User = nil
			return Change{Topic: TopicSessionUser}, true
		}
		cp := *u
		next.User = &cp
		return Change{Topic: TopicSessionUser, ID: cp.ID}, true
	})
}

// Logout clears the signed-in user.
func (s *Store) Logout() {
	s.mutate(func(next *Snapshot) (Change, bool) {
		next.User = nil
		return Change{Topic: TopicSessionLogout, Notice: success("Logged out successfully!")}, true
	})
}

// SetLanguage changes the UI language. Setting the current value is a no-op.
func (s *Store) SetLanguage(lang models.Language) {
	s.mutate(func(next *Snapshot) (Change, bool) {
		if next.Preferences.Language == lang {
			return Change{}, false
		}
		next.Preferences.Language = lang
		return Change{Topic: TopicPreferencesUpdated}, true
	})
}

// SetNotifications toggles notifications. Setting the current value is a
// no-op.
func (s *Store) SetNotifications(enabled bool) {
	s.mutate(func(next *Snapshot) (Change, bool) {
		if next.Preferences.Notifications == enabled {
			return Change{}, false
		}
		next.Preferences.Notifications = enabled
		return Change{Topic: TopicPreferencesUpdated}, true
	})
}
