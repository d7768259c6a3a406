// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// ModelVertexShader transforms imported model vertices.
//
//go:embed model.vert
var ModelVertexShader string

// ModelFragmentShader samples material.texture_diffuse1.
//
//go:embed model.frag
var ModelFragmentShader string

// LightingVertexShader is shared by the lit object and the lamp.
//
//go:embed lighting.vert
var LightingVertexShader string

// LightingFragmentShader is Phong lighting with a single point light.
//
//go:embed lighting.frag
var LightingFragmentShader string

// LampFragmentShader draws the light source as a flat white cube.
//
//go:embed lamp.frag
var LampFragmentShader string

// SceneVertexShader is used by the textured cube scene.
//
//go:embed scene.vert
var SceneVertexShader string

// SceneFragmentShader mixes two textures.
//
//go:embed scene.frag
var SceneFragmentShader string
