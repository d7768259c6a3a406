// Package gputest provides a recording gpu.Device for tests that run without a GL context.
package gputest

import (
	"fmt"
	"unsafe"
)

// Call is one recorded device call.
type Call struct {
	Name string
	Args []any
}

func (c Call) String() string {
	return fmt.Sprintf("%s%v", c.Name, c.Args)
}

// TexParam is one recorded TexParameteri call.
type TexParam struct {
	Texture uint32
	Pname   uint32
	Param   int32
}

// Device records calls and hands out sequential handles.
type Device struct {
	Calls []Call

	// BufferSizes maps buffer handle to the size passed to BufferData.
	BufferSizes map[uint32]int
	// TexParams lists parameters set per texture, in call order.
	TexParams []TexParam
	// Uniforms maps uniform name to the last int value set on it.
	Uniforms map[string]int32

	Deleted map[string][]uint32

	// ErrorCode is returned (once) by the next GetError call.
	ErrorCode uint32

	next         uint32
	boundBuffer  map[uint32]uint32
	boundTexture uint32
	locations    map[int32]string
}

// New creates an empty recording device.
func New() *Device {
	return &Device{
		BufferSizes: make(map[uint32]int),
		Uniforms:    make(map[string]int32),
		Deleted:     make(map[string][]uint32),
		boundBuffer: make(map[uint32]uint32),
		locations:   make(map[int32]string),
	}
}

func (d *Device) record(name string, args ...any) {
	d.Calls = append(d.Calls, Call{Name: name, Args: args})
}

func (d *Device) handle() uint32 {
	d.next++
	return d.next
}

// Count returns how many times the named call was made.
func (d *Device) Count(name string) int {
	n := 0
	for _, c := range d.Calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

func (d *Device) GenVertexArray() uint32 {
	h := d.handle()
	d.record("GenVertexArray", h)
	return h
}

func (d *Device) BindVertexArray(vao uint32) { d.record("BindVertexArray", vao) }

func (d *Device) DeleteVertexArray(vao uint32) {
	d.record("DeleteVertexArray", vao)
	d.Deleted["vao"] = append(d.Deleted["vao"], vao)
}

func (d *Device) GenBuffer() uint32 {
	h := d.handle()
	d.record("GenBuffer", h)
	return h
}

func (d *Device) BindBuffer(target, buffer uint32) {
	d.record("BindBuffer", target, buffer)
	d.boundBuffer[target] = buffer
}

func (d *Device) BufferData(target uint32, size int, _ unsafe.Pointer, usage uint32) {
	d.record("BufferData", target, size, usage)
	d.BufferSizes[d.boundBuffer[target]] = size
}

func (d *Device) DeleteBuffer(buffer uint32) {
	d.record("DeleteBuffer", buffer)
	d.Deleted["buffer"] = append(d.Deleted["buffer"], buffer)
}

func (d *Device) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr) {
	d.record("VertexAttribPointer", index, size, xtype, normalized, stride, offset)
}

func (d *Device) EnableVertexAttribArray(index uint32) { d.record("EnableVertexAttribArray", index) }

func (d *Device) GenTexture() uint32 {
	h := d.handle()
	d.record("GenTexture", h)
	return h
}

func (d *Device) ActiveTexture(unit uint32) { d.record("ActiveTexture", unit) }

func (d *Device) BindTexture(target, texture uint32) {
	d.record("BindTexture", target, texture)
	d.boundTexture = texture
}

func (d *Device) TexImage2D(target uint32, level, internalFormat, width, height int32, format, xtype uint32, _ unsafe.Pointer) {
	d.record("TexImage2D", d.boundTexture, width, height)
}

func (d *Device) GenerateMipmap(target uint32) { d.record("GenerateMipmap", d.boundTexture) }

func (d *Device) TexParameteri(target, pname uint32, param int32) {
	d.record("TexParameteri", pname, param)
	d.TexParams = append(d.TexParams, TexParam{Texture: d.boundTexture, Pname: pname, Param: param})
}

func (d *Device) DeleteTexture(texture uint32) {
	d.record("DeleteTexture", texture)
	d.Deleted["texture"] = append(d.Deleted["texture"], texture)
}

func (d *Device) UseProgram(program uint32) { d.record("UseProgram", program) }

func (d *Device) UniformLocation(program uint32, name string) int32 {
	for loc, n := range d.locations {
		if n == name {
			return loc
		}
	}
	loc := int32(len(d.locations))
	d.locations[loc] = name
	return loc
}

func (d *Device) Uniform1i(location int32, v int32) {
	d.record("Uniform1i", d.locations[location], v)
	d.Uniforms[d.locations[location]] = v
}

func (d *Device) DrawElements(mode uint32, count int32, xtype uint32, offset uintptr) {
	d.record("DrawElements", mode, count, xtype)
}

func (d *Device) GetError() uint32 {
	code := d.ErrorCode
	d.ErrorCode = 0
	return code
}
