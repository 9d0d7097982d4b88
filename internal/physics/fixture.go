package physics

import "github.com/ByteArena/box2d"

// Filter builds a collision filter for category colliding with mask.
func Filter(category Category, mask ...Category) box2d.B2Filter {
	f := box2d.MakeB2Filter()
	f.CategoryBits = category.Bit()
	f.MaskBits = MakeBitMask(mask...)
	return f
}

// FilterBits builds a filter from raw category and mask bits.
func FilterBits(category, mask uint16) box2d.B2Filter {
	f := box2d.MakeB2Filter()
	f.CategoryBits = category
	f.MaskBits = mask
	return f
}

// AddPolygon attaches a convex polygon fixture in body-local coordinates.
func AddPolygon(body *box2d.B2Body, verts []box2d.B2Vec2, density float64, filter box2d.B2Filter) *box2d.B2Fixture {
	shape := box2d.MakeB2PolygonShape()
	shape.Set(verts, len(verts))
	def := box2d.MakeB2FixtureDef()
	def.Shape = &shape
	def.Density = density
	def.Filter = filter
	return body.CreateFixtureFromDef(&def)
}

// AddBox attaches a box of half extents hx, hy centred on the body.
func AddBox(body *box2d.B2Body, hx, hy float64, filter box2d.B2Filter, sensor bool) *box2d.B2Fixture {
	shape := box2d.MakeB2PolygonShape()
	shape.SetAsBox(hx, hy)
	def := box2d.MakeB2FixtureDef()
	def.Shape = &shape
	def.Density = 1
	def.IsSensor = sensor
	def.Filter = filter
	return body.CreateFixtureFromDef(&def)
}

// AddCircle attaches a circle centred on the body.
func AddCircle(body *box2d.B2Body, radius float64, filter box2d.B2Filter, sensor bool) *box2d.B2Fixture {
	shape := box2d.MakeB2CircleShape()
	shape.M_radius = radius
	def := box2d.MakeB2FixtureDef()
	def.Shape = &shape
	def.Density = 1
	def.IsSensor = sensor
	def.Filter = filter
	return body.CreateFixtureFromDef(&def)
}

// SetCategoryBits rewrites the category of every fixture on body, keeping
// each fixture's mask.
func SetCategoryBits(body *box2d.B2Body, bits uint16) {
	for f := body.GetFixtureList(); f != nil; f = f.GetNext() {
		filter := f.GetFilterData()
		filter.CategoryBits = bits
		f.SetFilterData(filter)
	}
}

// BodyDef returns a definition of the given kind at (x, y, angle).
func BodyDef(kind uint8, x, y, angle float64) *box2d.B2BodyDef {
	def := box2d.MakeB2BodyDef()
	def.Type = kind
	def.Position.Set(x, y)
	def.Angle = angle
	return &def
}

var (
	StaticBody    = box2d.B2BodyType.B2_staticBody
	KinematicBody = box2d.B2BodyType.B2_kinematicBody
	DynamicBody   = box2d.B2BodyType.B2_dynamicBody
)
