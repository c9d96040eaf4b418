package posts

// Drafter is implemented by front matter types that can mark a post as draft.
type Drafter interface {
	IsDraft() bool
}

// Tagger is implemented by front matter types that carry tag names.
type Tagger interface {
	TagNames() []string
}

// MetadataCarrier is implemented by front matter types that choose the
// metadata handed to the render stage. Without it the front matter value
// itself is passed.
type MetadataCarrier interface {
	PageMetadata() any
}

type capabilities struct {
	drafts   bool
	tags     bool
	metadata bool
}

// probe checks F once for each capability, with value or pointer receivers.
func probe[F any]() capabilities {
	var zero F
	return capabilities{
		drafts:   implements[Drafter](&zero),
		tags:     implements[Tagger](&zero),
		metadata: implements[MetadataCarrier](&zero),
	}
}

func implements[C any, F any](v *F) bool {
	_, ok := as[C](v)
	return ok
}

func as[C any, F any](v *F) (C, bool) {
	if c, ok := any(v).(C); ok {
		return c, true
	}
	c, ok := any(*v).(C)
	return c, ok
}
