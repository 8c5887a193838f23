package tracker

import "errors"

// Protocol errors. The learner's state is left unchanged when one is returned.
var (
	// ErrSessionAlreadyOpen is returned when starting a session while one is open
	ErrSessionAlreadyOpen = errors.New("tracker: a study session is already open")
	// ErrNoOpenSession is returned when reviewing or closing without an open session
	ErrNoOpenSession = errors.New("tracker: no open study session")
	// ErrUnknownItem is returned when the vocabulary has no item with the given id
	ErrUnknownItem = errors.New("tracker: unknown vocabulary item")
)
