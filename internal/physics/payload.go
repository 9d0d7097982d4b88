package physics

// PayloadKind discriminates the user payload attached to a body.
type PayloadKind int

const (
	KindTerrain PayloadKind = iota
	KindArchitecture
)

// Payload is the gameplay data kept beside a body in the registry's side
// table. Packages owning a payload shape provide the matching predicate.
type Payload interface {
	PayloadKind() PayloadKind
}

// Terrain marks walls, floor, sensors and the cursor. Terrain bodies are
// never saved.
type Terrain struct {
	Name string
}

func (Terrain) PayloadKind() PayloadKind { return KindTerrain }
