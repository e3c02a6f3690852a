package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// UserStatus is the presence status a user advertises to their friends.
type UserStatus string

const (
	StatusJoinMe  UserStatus = "join me"
	StatusActive  UserStatus = "active"
	StatusAskMe   UserStatus = "ask me"
	StatusBusy    UserStatus = "busy"
	StatusOffline UserStatus = "offline"
)

// CurrentUser is the authoritative local snapshot of the signed-in identity.
//
// The snapshot is replaced wholesale only on login or session restore. All
// other changes (mutation responses, push events) are applied as incremental
// patches via [CurrentUser.ApplyPatch] so that fields missing from a partial
// payload keep their previous values.
type CurrentUser struct {
	ID                             string     `json:"id"`
	Username                       string     `json:"username,omitempty"`
	DisplayName                    string     `json:"displayName"`
	Bio                            string     `json:"bio,omitempty"`
	Status                         UserStatus `json:"status"`
	StatusDescription              string     `json:"statusDescription"`
	State                          string     `json:"state,omitempty"`
	CurrentAvatar                  string     `json:"currentAvatar,omitempty"`
	CurrentAvatarImageURL          string     `json:"currentAvatarImageUrl,omitempty"`
	CurrentAvatarThumbnailImageURL string     `json:"currentAvatarThumbnailImageUrl,omitempty"`
	UserIcon                       string     `json:"userIcon,omitempty"`
	Friends                        []string   `json:"friends,omitempty"`
	OnlineFriends                  []string   `json:"onlineFriends,omitempty"`
	ActiveFriends                  []string   `json:"activeFriends,omitempty"`
	OfflineFriends                 []string   `json:"offlineFriends,omitempty"`
	Tags                           []string   `json:"tags,omitempty"`
	TwoFactorAuthEnabled           bool       `json:"twoFactorAuthEnabled,omitempty"`
	EmailVerified                  bool       `json:"emailVerified,omitempty"`
	LastActivity                   *time.Time `json:"last_activity,omitempty"`
}

// ApplyPatch merges a partial JSON user object into u. Only keys present in
// patch are overwritten.
func (u *CurrentUser) ApplyPatch(patch json.RawMessage) error {
	if len(patch) == 0 {
		return nil
	}
	if err := json.Unmarshal(patch, u); err != nil {
		return fmt.Errorf("apply user patch: %w", err)
	}
	return nil
}

// Clone returns a deep copy of u, so that observers can keep a snapshot
// that is not affected by subsequent patches.
func (u *CurrentUser) Clone() *CurrentUser {
	if u == nil {
		return nil
	}
	c := *u
	c.Friends = append([]string(nil), u.Friends...)
	c.OnlineFriends = append([]string(nil), u.OnlineFriends...)
	c.ActiveFriends = append([]string(nil), u.ActiveFriends...)
	c.OfflineFriends = append([]string(nil), u.OfflineFriends...)
	c.Tags = append([]string(nil), u.Tags...)
	if u.LastActivity != nil {
		t := *u.LastActivity
		c.LastActivity = &t
	}
	return &c
}

// LimitedUser is the reduced user representation returned by collection
// endpoints such as the friends list.
type LimitedUser struct {
	ID                    string     `json:"id"`
	DisplayName           string     `json:"displayName"`
	Status                UserStatus `json:"status"`
	StatusDescription     string     `json:"statusDescription,omitempty"`
	Location              string     `json:"location,omitempty"`
	CurrentAvatarImageURL string     `json:"currentAvatarImageUrl,omitempty"`
	Tags                  []string   `json:"tags,omitempty"`
}
