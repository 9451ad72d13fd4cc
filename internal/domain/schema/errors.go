package schema

import "errors"

var ErrUnknownFileKind = errors.New("file kind must be cosec or bbhr")
