package domain

type Category struct {
	ID   int64
	Name string
}

type Publisher struct {
	ID          int64
	Name        string
	Description *string
}

type Game struct {
	ID          int64
	Title       string
	Description string
	StarRating  *float64
	CategoryID  int64
	PublisherID int64
}

// Summary is the {id, name} reference embedded in game projections.
type Summary struct {
	ID   int64
	Name string
}

// GameView is a game joined with its publisher and category. Either side is
// nil when the foreign key does not resolve.
type GameView struct {
	ID          int64
	Title       string
	Description string
	StarRating  *float64
	Publisher   *Summary
	Category    *Summary
}

// GamePatch carries only the fields an update supplied.
type GamePatch struct {
	Title         *string
	Description   *string
	SetStarRating bool
	StarRating    *float64
	PublisherID   *int64
	CategoryID    *int64
}

func (p GamePatch) Empty() bool {
	return p.Title == nil && p.Description == nil && !p.SetStarRating && p.PublisherID == nil && p.CategoryID == nil
}

// Apply returns g with the patch fields overwritten.
func (p GamePatch) Apply(g Game) Game {
	if p.Title != nil {
		g.Title = *p.Title
	}
	if p.Description != nil {
		g.Description = *p.Description
	}
	if p.SetStarRating {
		g.StarRating = p.StarRating
	}
	if p.PublisherID != nil {
		g.PublisherID = *p.PublisherID
	}
	if p.CategoryID != nil {
		g.CategoryID = *p.CategoryID
	}
	return g
}

// ChangedFields lists the patched fields whose value differs from g.
func (p GamePatch) ChangedFields(g Game) []string {
	var changed []string
	if p.Title != nil && *p.Title != g.Title {
		changed = append(changed, FieldTitle)
	}
	if p.Description != nil && *p.Description != g.Description {
		changed = append(changed, FieldDescription)
	}
	if p.SetStarRating && !sameRating(p.StarRating, g.StarRating) {
		changed = append(changed, FieldStarRating)
	}
	if p.PublisherID != nil && *p.PublisherID != g.PublisherID {
		changed = append(changed, FieldPublisherID)
	}
	if p.CategoryID != nil && *p.CategoryID != g.CategoryID {
		changed = append(changed, FieldCategoryID)
	}
	return changed
}

func sameRating(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldStarRating  = "starRating"
	FieldCategoryID  = "categoryId"
	FieldPublisherID = "publisherId"
)

// Field is a single payload value that distinguishes "omitted" from
// "explicitly null".
type Field struct {
	Present bool
	Value   any
}

// GameInput is a decoded create/update body. Values keep their JSON types
// (string, json.Number, bool, nil, ...).
type GameInput struct {
	Title       Field
	Description Field
	StarRating  Field
	CategoryID  Field
	PublisherID Field

	keys int
}

func GameInputFromMap(m map[string]any) GameInput {
	in := GameInput{keys: len(m)}
	pick := func(name string) Field {
		v, ok := m[name]
		return Field{Present: ok, Value: v}
	}
	in.Title = pick(FieldTitle)
	in.Description = pick(FieldDescription)
	in.StarRating = pick(FieldStarRating)
	in.CategoryID = pick(FieldCategoryID)
	in.PublisherID = pick(FieldPublisherID)
	return in
}

// Empty is true for a missing, null or {} body.
func (in GameInput) Empty() bool {
	return in.keys == 0 && !in.Title.Present && !in.Description.Present && !in.StarRating.Present &&
		!in.CategoryID.Present && !in.PublisherID.Present
}

// MissingForCreate lists required create fields absent from the input, in
// a stable order.
func (in GameInput) MissingForCreate() []string {
	var missing []string
	for _, f := range []struct {
		name  string
		field Field
	}{
		{FieldTitle, in.Title},
		{FieldDescription, in.Description},
		{FieldCategoryID, in.CategoryID},
		{FieldPublisherID, in.PublisherID},
	} {
		if !f.field.Present {
			missing = append(missing, f.name)
		}
	}
	return missing
}
