package parser

import (
	"fmt"

	"github.com/wowlog/wowlog-go/pkg/combatlog/event"
)

// FramingError reports that a line could not be split into the timestamp
// and event-body segments. A line that fails framing is not in combat log
// format at all, which is why drivers may choose to treat it as fatal for
// the whole file.
type FramingError struct {
	Msg string
}

func (e *FramingError) Error() string {
	return "framing: " + e.Msg
}

// ArityError reports that an event body decoded to a different number of
// cells than its fixed schema requires.
type ArityError struct {
	Type event.Type
	Want int
	Got  int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s: expected %d fields, got %d", e.Type, e.Want, e.Got)
}
