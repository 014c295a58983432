package categories

import "go.mongodb.org/mongo-driver/bson/primitive"

// Ref is how a card points at its category: either the bare id or the
// category itself once looked up. Callers switch on the concrete type.
type Ref interface {
	RefID() primitive.ObjectID
	isRef()
}

// Unexpanded is a reference whose category was not loaded, or no longer
// exists.
type Unexpanded struct {
	ID primitive.ObjectID
}

// Expanded is a reference with the category fields resolved.
type Expanded struct {
	ID    primitive.ObjectID
	Name  string
	Color Color
}

func (u Unexpanded) RefID() primitive.ObjectID { return u.ID }
func (e Expanded) RefID() primitive.ObjectID   { return e.ID }
func (Unexpanded) isRef()                      {}
func (Expanded) isRef()                        {}

// Index maps categories by id for Resolve.
func Index(list []*Category) map[primitive.ObjectID]*Category {
	m := make(map[primitive.ObjectID]*Category, len(list))
	for _, c := range list {
		m[c.ID] = c
	}
	return m
}

// Resolve turns a card's category id into a Ref, expanding it when the
// category is known. A nil id means the card has no category and yields nil.
func Resolve(id *primitive.ObjectID, known map[primitive.ObjectID]*Category) Ref {
	if id == nil || id.IsZero() {
		return nil
	}
	if c, ok := known[*id]; ok {
		return Expanded{ID: c.ID, Name: c.Name, Color: c.Color}
	}
	return Unexpanded{ID: *id}
}

// ColorOf returns the colour to draw ref with; unexpanded or missing
// references use the default.
func ColorOf(ref Ref) Color {
	switch r := ref.(type) {
	case Expanded:
		return r.Color
	default:
		return DefaultColor
	}
}

// NameOf returns the category label of ref, empty when it is not expanded.
func NameOf(ref Ref) string {
	switch r := ref.(type) {
	case Expanded:
		return r.Name
	default:
		return ""
	}
}
