package piece

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ByteArena/box2d"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"
)

// ErrUnknownAsset is returned for a mesh or collider the catalog lacks.
var ErrUnknownAsset = errors.New("unknown asset")

// Request names the mesh and collider to resolve.
type Request struct {
	MeshName     string
	ColliderName string
}

// Collider is a triangle soup in body-local simulation coordinates.
type Collider struct {
	Points  []box2d.B2Vec2
	Indices []int
}

// Resolved is the answer to a Request.
type Resolved struct {
	MeshName string
	Collider Collider
}

// Resolver turns piece names into colliders. Implementations may block and
// are called off the game loop.
type Resolver interface {
	Resolve(ctx context.Context, req Request) (Resolved, error)
}

type bundleFile struct {
	Mesh      string `yaml:"mesh"`
	Colliders map[string]struct {
		Vertices [][3]float64 `yaml:"vertices"`
		Indices  []int        `yaml:"indices"`
	} `yaml:"colliders"`
}

type bundle struct {
	mesh      string
	colliders map[string]Collider
}

// CatalogResolver reads one YAML bundle per mesh from a directory. Each
// bundle is loaded at most once; concurrent requests for the same bundle
// share one load.
type CatalogResolver struct {
	dir   string
	scale float64

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]*bundle
}

// NewCatalogResolver maps mesh-space (x, y, z) to simulation (x*scale, -z*scale).
func NewCatalogResolver(dir string, scale float64) *CatalogResolver {
	return &CatalogResolver{
		dir:   dir,
		scale: scale,
		cache: make(map[string]*bundle),
	}
}

func (r *CatalogResolver) Resolve(ctx context.Context, req Request) (Resolved, error) {
	b, err := r.bundle(ctx, req.MeshName)
	if err != nil {
		return Resolved{}, err
	}
	c, ok := b.colliders[req.ColliderName]
	if !ok {
		return Resolved{}, fmt.Errorf("%s/%s: %w", req.MeshName, req.ColliderName, ErrUnknownAsset)
	}
	return Resolved{MeshName: b.mesh, Collider: c}, nil
}

func (r *CatalogResolver) bundle(ctx context.Context, name string) (*bundle, error) {
	r.mu.RLock()
	b, ok := r.cache[name]
	r.mu.RUnlock()
	if ok {
		return b, nil
	}

	ch := r.group.DoChan(name, func() (any, error) {
		b, err := r.load(name)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.cache[name] = b
		r.mu.Unlock()
		return b, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*bundle), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *CatalogResolver) load(name string) (*bundle, error) {
	if name == "" || filepath.Base(name) != name {
		return nil, fmt.Errorf("mesh %q: %w", name, ErrUnknownAsset)
	}
	raw, err := os.ReadFile(filepath.Join(r.dir, name+".yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("mesh %q: %w", name, ErrUnknownAsset)
		}
		return nil, fmt.Errorf("read bundle %s: %w", name, err)
	}
	var f bundleFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse bundle %s: %w", name, err)
	}
	b := &bundle{mesh: f.Mesh, colliders: make(map[string]Collider, len(f.Colliders))}
	if b.mesh == "" {
		b.mesh = name
	}
	for cname, c := range f.Colliders {
		pts := make([]box2d.B2Vec2, len(c.Vertices))
		for i, v := range c.Vertices {
			pts[i] = box2d.MakeB2Vec2(v[0]*r.scale, -v[2]*r.scale)
		}
		b.colliders[cname] = Collider{Points: pts, Indices: c.Indices}
	}
	return b, nil
}
