// Package guidance implements the road classification model and the
// turn-obviousness heuristics used to decide whether a continuation at an
// intersection needs a maneuver instruction.
//
// A RoadClassification is attached to every directed edge during network
// preprocessing and is read-only at query time. The packed two-byte encoding
// is part of the persisted dataset format, so its layout must never change
// without a snapshot version bump.
package guidance

import "strconv"

// RoadPriority ranks road categories. Lower values mean higher real-world
// priority. The value is stored in five bits, so the usable range is 0-31.
type RoadPriority uint8

const (
	// Top priority roads.
	PriorityMotorway     RoadPriority = 0
	PriorityMotorwayLink RoadPriority = 1
	// Second highest priority.
	PriorityTrunk     RoadPriority = 2
	PriorityTrunkLink RoadPriority = 3
	// Main roads and their links.
	PriorityPrimary       RoadPriority = 4
	PriorityPrimaryLink   RoadPriority = 5
	PrioritySecondary     RoadPriority = 6
	PrioritySecondaryLink RoadPriority = 7
	PriorityTertiary      RoadPriority = 8
	PriorityTertiaryLink  RoadPriority = 9
	// Residential categories.
	PriorityMainResidential RoadPriority = 10
	PrioritySideResidential RoadPriority = 11
	PriorityAlley           RoadPriority = 12
	PriorityParking         RoadPriority = 13
	// Generic link category.
	PriorityLinkRoad RoadPriority = 14
	// Bike accessible.
	PriorityBikePath RoadPriority = 16
	// Walk accessible.
	PriorityFootPath RoadPriority = 18
	// A road offered purely for connectivity. Ignored in fork decisions and
	// never an obvious continuation.
	PriorityConnectivity RoadPriority = 31
)

// RoadClassification describes a single directed edge for guidance purposes.
// It is a small value type: copy it freely, never share pointers to it.
//
// Equality (see Equal) deliberately ignores the lane count, matching the
// packed comparison used during preprocessing.
type RoadClassification struct {
	// behaves like a motorway (separated directions)
	motorwayClass bool
	// any kind of link/ramp class
	linkClass bool
	// pure connectivity way, can be ignored in fork decisions
	mayBeIgnored bool
	// fork indicator: roads within one priority step form a genuine fork
	roadPriorityClass RoadPriority
	numberOfLanes     uint8
}

// DefaultRoadClassification returns the classification assigned to edges the
// preprocessor knows nothing about: an ignorable connectivity way.
func DefaultRoadClassification() RoadClassification {
	return RoadClassification{
		mayBeIgnored:      true,
		roadPriorityClass: PriorityConnectivity,
	}
}

// NewRoadClassification builds a fully specified classification. Priorities
// above 31 are truncated to five bits like the packed form would.
func NewRoadClassification(motorwayClass, linkClass, mayBeIgnored bool, priority RoadPriority, numberOfLanes uint8) RoadClassification {
	return RoadClassification{
		motorwayClass:     motorwayClass,
		linkClass:         linkClass,
		mayBeIgnored:      mayBeIgnored,
		roadPriorityClass: priority & 0x1f,
		numberOfLanes:     numberOfLanes,
	}
}

func (rc RoadClassification) IsMotorwayClass() bool { return rc.motorwayClass }

func (rc *RoadClassification) SetMotorwayFlag(v bool) { rc.motorwayClass = v }

// IsRampClass reports whether the road is a motorway on/off-ramp.
func (rc RoadClassification) IsRampClass() bool { return rc.motorwayClass && rc.linkClass }

func (rc RoadClassification) IsLinkClass() bool { return rc.linkClass }

func (rc *RoadClassification) SetLinkClass(v bool) { rc.linkClass = v }

// IsLowPriorityRoadClass reports whether the road is a pure connectivity way
// that fork decisions may ignore.
func (rc RoadClassification) IsLowPriorityRoadClass() bool { return rc.mayBeIgnored }

func (rc *RoadClassification) SetLowPriorityFlag(v bool) { rc.mayBeIgnored = v }

func (rc RoadClassification) GetNumberOfLanes() uint8 { return rc.numberOfLanes }

func (rc *RoadClassification) SetNumberOfLanes(v uint8) { rc.numberOfLanes = v }

// GetPriority returns the raw 0-31 priority value.
func (rc RoadClassification) GetPriority() uint32 { return uint32(rc.roadPriorityClass) }

func (rc RoadClassification) GetClass() RoadPriority { return rc.roadPriorityClass }

func (rc *RoadClassification) SetClass(v RoadPriority) { rc.roadPriorityClass = v & 0x1f }

// Equal compares everything except the lane count.
func (rc RoadClassification) Equal(other RoadClassification) bool {
	return rc.motorwayClass == other.motorwayClass &&
		rc.linkClass == other.linkClass &&
		rc.mayBeIgnored == other.mayBeIgnored &&
		rc.roadPriorityClass == other.roadPriorityClass
}

// String renders a diagnostic description. It is not parseable and not part
// of any wire format.
func (rc RoadClassification) String() string {
	s := "normal"
	if rc.motorwayClass {
		s = "motorway"
	}
	if rc.linkClass {
		s += "_link"
	}
	if rc.mayBeIgnored {
		s += " ignorable "
	} else {
		s += " important "
	}
	return s + strconv.Itoa(int(rc.roadPriorityClass))
}

// Packed layout, two bytes, little end first:
//
//	byte 0, bit 0: motorway class
//	byte 0, bit 1: link class
//	byte 0, bit 2: may be ignored
//	byte 0, bits 3-7: road priority class
//	byte 1: number of lanes
//
// This mirrors the record embedded in the preprocessed edge data. Changing
// it breaks every existing dataset.
const (
	packedMotorwayBit = 1 << 0
	packedLinkBit     = 1 << 1
	packedIgnoredBit  = 1 << 2
	packedClassShift  = 3
)

// Pack encodes the classification into its persisted two-byte form.
func (rc RoadClassification) Pack() [2]byte {
	var b [2]byte
	if rc.motorwayClass {
		b[0] |= packedMotorwayBit
	}
	if rc.linkClass {
		b[0] |= packedLinkBit
	}
	if rc.mayBeIgnored {
		b[0] |= packedIgnoredBit
	}
	b[0] |= uint8(rc.roadPriorityClass&0x1f) << packedClassShift
	b[1] = rc.numberOfLanes
	return b
}

// UnpackRoadClassification decodes the persisted two-byte form.
func UnpackRoadClassification(b [2]byte) RoadClassification {
	return RoadClassification{
		motorwayClass:     b[0]&packedMotorwayBit != 0,
		linkClass:         b[0]&packedLinkBit != 0,
		mayBeIgnored:      b[0]&packedIgnoredBit != 0,
		roadPriorityClass: RoadPriority(b[0] >> packedClassShift),
		numberOfLanes:     b[1],
	}
}
