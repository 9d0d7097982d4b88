package ecs

// World pairs the entity pool with the side tables that hang off it. Destroy
// frees the handle and strips the entity from every tracked table.
type World struct {
	pool   *EntityPool
	tables []Removable
}

func NewWorld(tables ...Removable) *World {
	return &World{
		pool:   NewEntityPool(),
		tables: tables,
	}
}

func (w *World) Pool() *EntityPool { return w.pool }

// Track adds a side table to be cleared on Destroy.
func (w *World) Track(t Removable) {
	w.tables = append(w.tables, t)
}

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// Destroy removes id from every table and invalidates the handle. Stale ids
// are ignored and reported as false.
func (w *World) Destroy(id EntityID) bool {
	if !w.pool.Alive(id) {
		return false
	}
	for _, t := range w.tables {
		t.Remove(id)
	}
	return w.pool.Destroy(id)
}
