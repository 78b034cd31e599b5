package scene

import (
	"fmt"
	"sort"
)

// SceneInfo describes a built-in scene
type SceneInfo struct {
	ID          string
	DisplayName string
	Description string
	build       func() (*Scene, error)
}

var builtinScenes = []SceneInfo{
	{ID: "cornell", DisplayName: "Cornell Box", Description: "Diffuse box with a metal and a glass sphere", build: NewCornellBox},
	{ID: "caustic", DisplayName: "Caustic", Description: "Glass ball focusing a small light onto a floor", build: NewCausticScene},
	{ID: "foggy", DisplayName: "Foggy", Description: "Spot light shining through haze and smoke", build: NewFoggyScene},
	{ID: "spheregrid", DisplayName: "Sphere Grid", Description: "Grid of glossy and frosted spheres", build: NewSphereGridScene},
	{ID: "meshes", DisplayName: "Triangle Meshes", Description: "Instanced box, pyramid and icosahedron meshes", build: NewTriangleMeshScene},
	{ID: "textures", DisplayName: "Textures", Description: "Every texture kind on simple shapes", build: NewTextureScene},
}

// ListScenes returns the built-in scenes sorted by ID
func ListScenes() []SceneInfo {
	scenes := append([]SceneInfo(nil), builtinScenes...)
	sort.Slice(scenes, func(i, j int) bool { return scenes[i].ID < scenes[j].ID })
	return scenes
}

// Load builds the built-in scene with the given ID
func Load(id string) (*Scene, error) {
	for _, info := range builtinScenes {
		if info.ID == id {
			return info.build()
		}
	}
	return nil, fmt.Errorf("%w: unknown scene %q", ErrInvalidScene, id)
}
