package models

import "time"

// Avatar is a single avatar entry as returned by the avatar listing endpoint.
type Avatar struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	AuthorID          string    `json:"authorId,omitempty"`
	AuthorName        string    `json:"authorName,omitempty"`
	ReleaseStatus     string    `json:"releaseStatus,omitempty"`
	ThumbnailImageURL string    `json:"thumbnailImageUrl,omitempty"`
	UpdatedAt         time.Time `json:"updated_at,omitempty"`
}

// Group describes a group membership of the current user.
type Group struct {
	ID                string `json:"id"`
	GroupID           string `json:"groupId"`
	Name              string `json:"name"`
	ShortCode         string `json:"shortCode,omitempty"`
	Discriminator     string `json:"discriminator,omitempty"`
	IconURL           string `json:"iconUrl,omitempty"`
	MemberCount       int    `json:"memberCount,omitempty"`
	IsRepresenting    bool   `json:"isRepresenting"`
	MutualGroup       bool   `json:"mutualGroup,omitempty"`
	MemberVisibility  string `json:"memberVisibility,omitempty"`
	LastPostCreatedAt string `json:"lastPostCreatedAt,omitempty"`
}

// GroupMemberUpdate is the content of a group-member-updated push event.
type GroupMemberUpdate struct {
	Member struct {
		ID             string `json:"id"`
		GroupID        string `json:"groupId"`
		UserID         string `json:"userId"`
		IsRepresenting bool   `json:"isRepresenting"`
		Visibility     string `json:"visibility,omitempty"`
	} `json:"member"`
}

// Notification is a platform notification (friend request, invite, ...)
// delivered either by push or by polling.
type Notification struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	SenderUserID   string    `json:"senderUserId"`
	SenderUsername string    `json:"senderUsername,omitempty"`
	ReceiverUserID string    `json:"receiverUserId,omitempty"`
	Message        string    `json:"message,omitempty"`
	Details        any       `json:"details,omitempty"`
	Seen           bool      `json:"seen,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
