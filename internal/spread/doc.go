// Package spread decides when, and with which arguments, a job is handed to
// the queue so that jobs triggered at the same instant do not all run at the
// same instant.
//
// A call to [Spreader.Schedule] takes the positional arguments meant for a
// job handler. The last argument may be a [Map] that mixes spread control
// keys with payload keys:
//
//	spread_duration   size of the window in seconds (default: handler, then 1h)
//	spread_in         start of the window, seconds from now (default 0)
//	spread_at         start of the window as an absolute time; wins over spread_in
//	spread_method     rand (default) or mod
//	spread_mod_value  integer key for mod; falls back to the first argument
//
// Each key is also recognized in its symbol form (":spread_in"). Control
// keys are removed. What is left of the map is pushed back onto the argument
// list only when the handler's [Signature] still has a slot for it.
//
// The offset is drawn uniformly from [0, duration) using crypto/rand, or
// computed as key mod duration. The resulting [Call] is dispatched to
// exactly one [Enqueuer] operation:
//
//	spread_at given        EnqueueAt(at + offset)
//	in + offset == 0       EnqueueNow
//	otherwise              EnqueueIn(in + offset)
package spread
