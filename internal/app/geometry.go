package app

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/glprojects/pkg/mesh"
)

// cubeFace is one side of the unit cube: its outward normal and four
// corners counter-clockwise when viewed from outside.
type cubeFace struct {
	normal  mgl32.Vec3
	corners [4]mgl32.Vec3
}

var cubeFaces = []cubeFace{
	{mgl32.Vec3{0, 0, -1}, [4]mgl32.Vec3{{0.5, -0.5, -0.5}, {-0.5, -0.5, -0.5}, {-0.5, 0.5, -0.5}, {0.5, 0.5, -0.5}}},
	{mgl32.Vec3{0, 0, 1}, [4]mgl32.Vec3{{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5}}},
	{mgl32.Vec3{-1, 0, 0}, [4]mgl32.Vec3{{-0.5, -0.5, -0.5}, {-0.5, -0.5, 0.5}, {-0.5, 0.5, 0.5}, {-0.5, 0.5, -0.5}}},
	{mgl32.Vec3{1, 0, 0}, [4]mgl32.Vec3{{0.5, -0.5, 0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {0.5, 0.5, 0.5}}},
	{mgl32.Vec3{0, -1, 0}, [4]mgl32.Vec3{{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, -0.5, 0.5}, {-0.5, -0.5, 0.5}}},
	{mgl32.Vec3{0, 1, 0}, [4]mgl32.Vec3{{-0.5, 0.5, 0.5}, {0.5, 0.5, 0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5}}},
}

var quadUVs = [4]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// Cube returns a unit cube centered on the origin with per-face normals and
// texture coordinates.
func Cube(name string) *mesh.Record {
	rec := &mesh.Record{Name: name, MaterialIndex: -1}
	for _, f := range cubeFaces {
		base := uint32(len(rec.Vertices))
		for i, p := range f.corners {
			rec.Vertices = append(rec.Vertices, mesh.Vertex{Position: p, Normal: f.normal, TexCoord: quadUVs[i]})
		}
		rec.Indices = append(rec.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return rec
}

// cubePositions places the cubes of the textured scene.
var cubePositions = []mgl32.Vec3{
	{0.0, 0.0, 0.0},
	{2.0, 5.0, -15.0},
	{-1.5, -2.2, -2.5},
	{-3.8, -2.0, -12.3},
	{2.4, -0.4, -3.5},
	{-1.7, 3.0, -7.5},
	{1.3, -2.0, -2.5},
	{1.5, 2.0, -2.5},
	{1.5, 0.2, -1.5},
	{-1.3, 1.0, -1.5},
}

// sceneModel positions cube i and tilts it a further 20 degrees per index.
func sceneModel(i int, pos mgl32.Vec3) mgl32.Mat4 {
	angle := mgl32.DegToRad(20 * float32(i))
	axis := mgl32.Vec3{1.0, 0.3, 0.5}.Normalize()
	return mgl32.Translate3D(pos.X(), pos.Y(), pos.Z()).Mul4(mgl32.HomogRotate3D(angle, axis))
}
