/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import "errors"

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomFull          = errors.New("room is full")
	ErrNameTaken         = errors.New("that name is already taken in this room")
	ErrInvalidName       = errors.New("names must be at most 32 characters")
	ErrAlreadyJoined     = errors.New("already joined this room")
	ErrNotMember         = errors.New("not a member of this room")
	ErrNotHost           = errors.New("only the host may do that")
	ErrWrongState        = errors.New("not allowed in the current game state")
	ErrNotYourTurn       = errors.New("it is not your turn")
	ErrDeclarationTooLow = errors.New("declaration must exceed the previous one")
	ErrNoDeclaration     = errors.New("nothing has been declared yet")
)

// Visible reports whether err should be shown to the client that caused it.
// Every other rejection is dropped silently.
func Visible(err error) bool {
	return errors.Is(err, ErrNameTaken) ||
		errors.Is(err, ErrInvalidName) ||
		errors.Is(err, ErrRoomFull)
}
