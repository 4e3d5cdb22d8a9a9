package profiles

import "time"

// Profile is the side-store record kept for each authenticated subject.
type Profile struct {
	UID           string     `bson:"_id" json:"uid"`
	Email         string     `bson:"email,omitempty" json:"email,omitempty"`
	PhoneNumber   string     `bson:"phone_number,omitempty" json:"phone_number,omitempty"`
	DisplayName   string     `bson:"display_name,omitempty" json:"display_name,omitempty"`
	EmailVerified bool       `bson:"email_verified" json:"email_verified"`
	ProviderID    string     `bson:"provider_id,omitempty" json:"provider_id,omitempty"`
	CreatedAt     time.Time  `bson:"created_at" json:"created_at"`
	LastLogin     time.Time  `bson:"last_login" json:"last_login"`
	UpdatedAt     *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// ProfileUpdate lists the only fields a client may change. Nil leaves the
// stored value alone.
type ProfileUpdate struct {
	DisplayName *string
}
