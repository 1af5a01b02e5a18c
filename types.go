package videoflip

import (
	"github.com/e7canasta/orion-care-sensor/modules/video-flip/graph"
	"github.com/e7canasta/orion-care-sensor/modules/video-flip/internal/orientation"
)

// FactoryName is the element factory name of the filter.
const FactoryName = "glvideoflip"

// Method is a flip method; its String form is the property nick.
type Method = orientation.Method

const (
	// MethodIdentity leaves frames untouched (nick "none")
	MethodIdentity = orientation.Identity
	// MethodClockwise rotates clockwise 90 degrees
	MethodClockwise = orientation.Rotate90CW
	// MethodRotate180 rotates 180 degrees
	MethodRotate180 = orientation.Rotate180
	// MethodCounterClockwise rotates counter-clockwise 90 degrees
	MethodCounterClockwise = orientation.Rotate90CCW
	// MethodHorizontalFlip mirrors around the vertical axis
	MethodHorizontalFlip = orientation.FlipHorizontal
	// MethodVerticalFlip mirrors around the horizontal axis
	MethodVerticalFlip = orientation.FlipVertical
	// MethodUpperLeftDiagonal flips across the upper-left/lower-right diagonal
	MethodUpperLeftDiagonal = orientation.FlipDiagonalA
	// MethodUpperRightDiagonal flips across the upper-right/lower-left diagonal
	MethodUpperRightDiagonal = orientation.FlipDiagonalB
	// MethodAutomatic follows the image-orientation tag
	MethodAutomatic = orientation.Auto
)

// DefaultMethod is the method of a filter created without WithMethod.
const DefaultMethod = MethodIdentity

// ParseMethod resolves a property nick such as "clockwise".
func ParseMethod(nick string) (Method, error) {
	return orientation.ParseMethod(nick)
}

// MethodInfo describes one value of the "method" property.
type MethodInfo struct {
	Method      Method
	Nick        string
	Description string
}

// Methods lists every accepted method in property order.
func Methods() []MethodInfo {
	all := orientation.Methods()
	out := make([]MethodInfo, 0, len(all))
	for _, m := range all {
		out = append(out, MethodInfo{Method: m, Nick: m.String(), Description: m.Description()})
	}
	return out
}

// Metadata describes the element for introspection.
type Metadata struct {
	LongName       string
	Classification string
	Description    string
	Author         string
}

// ElementMetadata is the metadata of every Filter.
var ElementMetadata = Metadata{
	LongName:       "OpenGL video flip filter",
	Classification: "Filter/Effect/Video",
	Description:    "Flip video on the GPU",
	Author:         "Orion Team",
}

// PadTemplate is the caps template of both boundary pads: RGBA 2D GL
// textures of any size and frame rate.
const PadTemplate = graph.GLTemplate

// State is a consistent view of the orientation state.
type State = orientation.Snapshot
