// Package userdata provides the storage policies for script instance state.
//
// The engine may call into a script instance from any thread and re-enter it
// through signals, so instance state is never handed out directly. Each
// script class picks a policy, and every method call reaches the state
// through it:
//
//	Policy      Map        MapMut     MapOwned
//	Mutex       exclusive  exclusive  -
//	RWLock      shared     exclusive  -
//	Arc         shared     -          -
//	LocalCell   shared     exclusive  -    (owning thread only)
//	Aether      zero value -          -
//	Once        -          -          first call only
//
// No policy blocks. Contention is reported as ErrWouldBlock so a re-entrant
// call on the same thread fails instead of deadlocking.
package userdata
