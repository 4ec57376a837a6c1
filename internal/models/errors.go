package models

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrRequestNotFound   = errors.New("friend request not found")
	ErrRequestNotPending = errors.New("friend request is not pending")
	ErrNotRecipient      = errors.New("friend request is addressed to another user")
	ErrSelfFriend        = errors.New("cannot befriend yourself")
	ErrAlreadyFriends    = errors.New("users are already friends")
	ErrDuplicateRequest  = errors.New("a pending friend request already exists")
)
