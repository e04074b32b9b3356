package model

import "time"

// Follow is a directed edge: FollowingUserID follows FollowedUserID.
type Follow struct {
	FollowingUserID int64     `db:"following_user_id"`
	FollowedUserID  int64     `db:"followed_user_id"`
	CreatedAt       time.Time `db:"created_at"`
}

func (f Follow) Validate() error {
	if f.FollowingUserID == f.FollowedUserID {
		return ErrSelfFollow
	}
	return nil
}

// FollowUser is a user on the other end of a follow edge.
type FollowUser struct {
	ID        int64  `db:"id" json:"id"`
	Username  string `db:"username" json:"username"`
	FirstName string `db:"first_name" json:"firstName"`
	LastName  string `db:"last_name" json:"lastName"`
}

type FollowEntry struct {
	CreatedAt time.Time  `json:"createdAt"`
	User      FollowUser `json:"User"`
}

type FollowListResponse struct {
	Users []FollowEntry `json:"users"`
}
