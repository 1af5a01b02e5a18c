package orientation

// TagImageOrientation is the tag carrying the stream orientation.
const TagImageOrientation = "image-orientation"

var tagMethods = map[string]Method{
	"rotate-0":        Identity,
	"rotate-90":       Rotate90CW,
	"rotate-180":      Rotate180,
	"rotate-270":      Rotate90CCW,
	"flip-rotate-0":   FlipHorizontal,
	"flip-rotate-90":  FlipDiagonalB,
	"flip-rotate-180": FlipVertical,
	"flip-rotate-270": FlipDiagonalA,
}

// FromTag maps an image-orientation tag value onto a concrete method.
// Unknown values report false.
func FromTag(value string) (Method, bool) {
	m, ok := tagMethods[value]
	return m, ok
}

// Tag returns the image-orientation value for a concrete method.
func (m Method) Tag() (string, bool) {
	for v, tm := range tagMethods {
		if tm == m {
			return v, true
		}
	}
	return "", false
}
