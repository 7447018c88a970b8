package robot

import _ "embed"

// pickPlaceProgram is the fixed pick/place motion program uploaded by
// ReleaseAndRun. The document is an opaque payload to this package: its
// poses and motion primitives are the controller's concern, which keeps the
// dispatch mechanism testable independently of the motion content.
//
//go:embed pickplace.script
var pickPlaceProgram string
