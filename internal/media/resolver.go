package media

import "github.com/kalambet/dayone2notes/internal/journal"

// Resolved pairs a reference with the file found for it. Unresolved
// references stay in the output so the result always has the same length and
// order as the input.
type Resolved struct {
	Ref        journal.MediaRef
	Path       string
	Unresolved bool
}

// Resolve looks up every reference in declared order. A miss is recorded,
// never an error; filtering unresolved entries is the planner's job.
func (i *Index) Resolve(refs []journal.MediaRef) []Resolved {
	out := make([]Resolved, 0, len(refs))
	for _, ref := range refs {
		p := i.photos
		if ref.Kind == journal.KindVideo {
			p = i.videos
		}
		if path, ok := p.lookup(ref); ok {
			out = append(out, Resolved{Ref: ref, Path: path})
		} else {
			out = append(out, Resolved{Ref: ref, Unresolved: true})
		}
	}
	return out
}
