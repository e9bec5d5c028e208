package eventstream

import "errors"

// ErrNilEvent is returned by every Publisher handed a nil event.
var ErrNilEvent = errors.New("nil event")
