// Package gpu uploads mesh records into GPU buffers and textures.
package gpu

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Device is the subset of OpenGL used to create, draw and destroy mesh resources.
// GLDevice forwards to the driver; tests substitute a recording implementation.
type Device interface {
	GenVertexArray() uint32
	BindVertexArray(vao uint32)
	DeleteVertexArray(vao uint32)

	GenBuffer() uint32
	BindBuffer(target, buffer uint32)
	BufferData(target uint32, size int, data unsafe.Pointer, usage uint32)
	DeleteBuffer(buffer uint32)

	VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr)
	EnableVertexAttribArray(index uint32)

	GenTexture() uint32
	ActiveTexture(unit uint32)
	BindTexture(target, texture uint32)
	TexImage2D(target uint32, level, internalFormat, width, height int32, format, xtype uint32, pixels unsafe.Pointer)
	GenerateMipmap(target uint32)
	TexParameteri(target, pname uint32, param int32)
	DeleteTexture(texture uint32)

	UseProgram(program uint32)
	UniformLocation(program uint32, name string) int32
	Uniform1i(location int32, v int32)
	DrawElements(mode uint32, count int32, xtype uint32, offset uintptr)

	GetError() uint32
}

// GLDevice implements Device with the current OpenGL context.
// It must only be used on the thread that owns the context.
type GLDevice struct{}

// GenVertexArray creates a vertex array object.
func (GLDevice) GenVertexArray() uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return vao
}

// BindVertexArray binds vao; 0 unbinds.
func (GLDevice) BindVertexArray(vao uint32) { gl.BindVertexArray(vao) }

// DeleteVertexArray deletes vao.
func (GLDevice) DeleteVertexArray(vao uint32) { gl.DeleteVertexArrays(1, &vao) }

// GenBuffer creates a buffer object.
func (GLDevice) GenBuffer() uint32 {
	var buf uint32
	gl.GenBuffers(1, &buf)
	return buf
}

// BindBuffer binds buffer to target.
func (GLDevice) BindBuffer(target, buffer uint32) { gl.BindBuffer(target, buffer) }

// BufferData allocates size bytes for the bound buffer and copies data into it.
func (GLDevice) BufferData(target uint32, size int, data unsafe.Pointer, usage uint32) {
	gl.BufferData(target, size, data, usage)
}

// DeleteBuffer deletes buffer.
func (GLDevice) DeleteBuffer(buffer uint32) { gl.DeleteBuffers(1, &buffer) }

// VertexAttribPointer describes one attribute of the bound vertex buffer.
func (GLDevice) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr) {
	gl.VertexAttribPointerWithOffset(index, size, xtype, normalized, stride, offset)
}

// EnableVertexAttribArray enables attribute index for the bound vertex array.
func (GLDevice) EnableVertexAttribArray(index uint32) { gl.EnableVertexAttribArray(index) }

// GenTexture creates a texture object.
func (GLDevice) GenTexture() uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	return tex
}

// ActiveTexture selects the texture unit (gl.TEXTURE0 + n).
func (GLDevice) ActiveTexture(unit uint32) { gl.ActiveTexture(unit) }

// BindTexture binds texture to target.
func (GLDevice) BindTexture(target, texture uint32) { gl.BindTexture(target, texture) }

// TexImage2D uploads pixel data to the bound texture.
func (GLDevice) TexImage2D(target uint32, level, internalFormat, width, height int32, format, xtype uint32, pixels unsafe.Pointer) {
	gl.TexImage2D(target, level, internalFormat, width, height, 0, format, xtype, pixels)
}

// GenerateMipmap builds the mipmap chain of the bound texture.
func (GLDevice) GenerateMipmap(target uint32) { gl.GenerateMipmap(target) }

// TexParameteri sets an integer parameter on the bound texture.
func (GLDevice) TexParameteri(target, pname uint32, param int32) {
	gl.TexParameteri(target, pname, param)
}

// DeleteTexture deletes texture.
func (GLDevice) DeleteTexture(texture uint32) { gl.DeleteTextures(1, &texture) }

// UseProgram makes program current.
func (GLDevice) UseProgram(program uint32) { gl.UseProgram(program) }

// UniformLocation returns the location of a uniform, or -1 if it is not active.
func (GLDevice) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

// Uniform1i sets an int (or sampler) uniform of the current program.
func (GLDevice) Uniform1i(location int32, v int32) { gl.Uniform1i(location, v) }

// DrawElements draws from the bound element buffer.
func (GLDevice) DrawElements(mode uint32, count int32, xtype uint32, offset uintptr) {
	gl.DrawElementsWithOffset(mode, count, xtype, offset)
}

// GetError returns the oldest unreported GL error.
func (GLDevice) GetError() uint32 { return gl.GetError() }
