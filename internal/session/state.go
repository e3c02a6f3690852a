package session

import (
	"github.com/MKhiriev/go-vrc-link/internal/observable"
	"github.com/MKhiriev/go-vrc-link/models"
)

// State is the auth state shared by the API client, the auth manager and
// the realtime session. Status starts at PRE_INIT and User at nil.
type State struct {
	Status *observable.Value[models.AuthStatus]
	User   *observable.Value[*models.CurrentUser]
}

func NewState() *State {
	return &State{
		Status: observable.New(models.AuthStatusPreInit),
		User:   observable.New[*models.CurrentUser](nil),
	}
}

// IsLoggedIn reports whether Status is LOGGED_IN.
func (s *State) IsLoggedIn() bool {
	return s.Status.Get() == models.AuthStatusLoggedIn
}

// SetLoggedIn replaces the user snapshot and then moves to LOGGED_IN, so a
// status subscriber always sees the new user.
func (s *State) SetLoggedIn(user *models.CurrentUser) {
	s.User.Set(user.Clone())
	s.Status.Set(models.AuthStatusLoggedIn)
}

// SetLoggedOut moves to LOGGED_OUT and drops the user snapshot.
func (s *State) SetLoggedOut() {
	s.Status.Set(models.AuthStatusLoggedOut)
	s.User.Set(nil)
}

// PatchUser applies fn to a copy of the current user and publishes it.
// It returns the patched snapshot, or nil when no user is set.
func (s *State) PatchUser(fn func(u *models.CurrentUser)) *models.CurrentUser {
	var patched *models.CurrentUser
	s.User.Update(func(cur *models.CurrentUser) *models.CurrentUser {
		if cur == nil {
			return nil
		}
		patched = cur.Clone()
		fn(patched)
		return patched
	})
	return patched.Clone()
}
