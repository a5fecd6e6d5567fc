package combatlog

import "github.com/wowlog/wowlog-go/pkg/combatlog/event"

// compiledFilter holds include/exclude event type sets. Exclude takes
// precedence over include; an empty include set allows everything.
type compiledFilter struct {
	include map[event.Type]struct{}
	exclude map[event.Type]struct{}
}

func newCompiledFilter(include, exclude []event.Type) *compiledFilter {
	f := &compiledFilter{}
	if len(include) > 0 {
		f.include = make(map[event.Type]struct{}, len(include))
		for _, t := range include {
			f.include[t] = struct{}{}
		}
	}
	if len(exclude) > 0 {
		f.exclude = make(map[event.Type]struct{}, len(exclude))
		for _, t := range exclude {
			f.exclude[t] = struct{}{}
		}
	}
	return f
}

// Allows reports whether events of type t pass the filter.
func (f *compiledFilter) Allows(t event.Type) bool {
	if f == nil {
		return true
	}
	if _, excluded := f.exclude[t]; excluded {
		return false
	}
	if len(f.include) == 0 {
		return true
	}
	_, included := f.include[t]
	return included
}
