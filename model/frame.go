package model

import "github.com/go-gl/mathgl/mgl64"

// FrameState carries the per-frame inputs the update pass needs.
type FrameState struct {
	FrameNumber    uint64
	CameraPosition mgl64.Vec3
}

// DrawCommand is one instanced draw emitted during the update pass.
type DrawCommand struct {
	Transform mgl64.Mat4
	BatchID   uint32
	Color     Color
}

// CommandSink receives the draw commands of one update pass. The destination
// is passed explicitly to every Update call rather than held as ambient
// state, so a render pass can direct commands into its own collection
// without any save/restore dance.
type CommandSink interface {
	Push(cmd DrawCommand)
}

// CommandList is a simple slice-backed CommandSink.
type CommandList struct {
	Commands []DrawCommand
}

func (l *CommandList) Push(cmd DrawCommand) {
	l.Commands = append(l.Commands, cmd)
}

// Reset empties the list, keeping its capacity for the next frame.
func (l *CommandList) Reset() {
	l.Commands = l.Commands[:0]
}
