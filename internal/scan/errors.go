package scan

import "github.com/pkg/errors"

// errCancelled signals that a scan was aborted by Stop rather than by a
// genuine failure; run() treats it as a clean exit, not a logged error.
var errCancelled = errors.New("scan cancelled")
