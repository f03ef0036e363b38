package guidance

// PriorityDistinctionFactor is the margin by which a continuation's priority
// must beat a competitor before the continuation counts as the obvious
// choice on priority alone.
const PriorityDistinctionFactor = 2

// CanBeSeenAsFork reports whether two roads are close enough in priority
// that the intersection is a genuine fork and the caller must emit guidance
// distinguishing them.
func CanBeSeenAsFork(first, second RoadClassification) bool {
	diff := int(first.GetPriority()) - int(second.GetPriority())
	if diff < 0 {
		diff = -diff
	}
	return diff <= 1
}

// priorityDividers marks the inclusive end of each general road category.
// Two priorities between the same pair of dividers belong to the same
// category and are never strictly ordered against each other.
var priorityDividers = [6]RoadPriority{
	PriorityTrunkLink,
	PrioritySecondaryLink,
	PrioritySideResidential,
	PriorityAlley,
	PriorityParking,
	PriorityConnectivity,
}

func priorityBand(p uint32) int {
	for i, div := range priorityDividers {
		if p <= uint32(div) {
			return i
		}
	}
	return len(priorityDividers)
}

// StrictlyLess reports whether lhs belongs to a lower general category of
// roads than rhs. Alleys are strictly less than inner-city roads, city roads
// strictly less than a motorway. Within one category it is false in both
// directions, whatever the exact priority values.
func StrictlyLess(lhs, rhs RoadClassification) bool {
	return priorityBand(lhs.GetPriority()) > priorityBand(rhs.GetPriority())
}

// IsLinkTo reports whether link is the fitting link class for road: a
// motorway link matches a motorway, a trunk link a trunk, and so on down to
// tertiary. Any other combination, including link-to-link, does not qualify.
func IsLinkTo(link, road RoadClassification) bool {
	if !link.IsLinkClass() || road.IsLinkClass() {
		return false
	}
	switch RoadPriority(link.GetPriority()) {
	case PriorityMotorwayLink:
		return road.GetPriority() == uint32(PriorityMotorway)
	case PriorityTrunkLink:
		return road.GetPriority() == uint32(PriorityTrunk)
	case PriorityPrimaryLink:
		return road.GetPriority() == uint32(PriorityPrimary)
	case PrioritySecondaryLink:
		return road.GetPriority() == uint32(PrioritySecondary)
	case PriorityTertiaryLink:
		return road.GetPriority() == uint32(PriorityTertiary)
	default:
		return false
	}
}

// ObviousByRoadClass decides whether continuing from in onto obviousCandidate
// is the obvious choice when compareCandidate is the competing road at the
// same intersection.
func ObviousByRoadClass(in, obviousCandidate, compareCandidate RoadClassification) bool {
	// passing a motorway ramp while staying on the motorway
	if in.IsMotorwayClass() && obviousCandidate.IsMotorwayClass() && compareCandidate.IsRampClass() {
		return true
	}

	passingRamp := compareCandidate.IsRampClass() && !in.IsMotorwayClass() && !in.IsRampClass()

	// passing a link class other than a motorway ramp
	if !in.IsMotorwayClass() && !obviousCandidate.IsMotorwayClass() &&
		!in.IsLinkClass() && !obviousCandidate.IsLinkClass() &&
		!compareCandidate.IsRampClass() && compareCandidate.IsLinkClass() {
		return true
	}

	// lower numbers are of higher priority, except for motorway links which
	// are links in general but also quite high priority roads
	hasHighPriority := PriorityDistinctionFactor*int(obviousCandidate.GetPriority()) < int(compareCandidate.GetPriority()) &&
		!compareCandidate.IsRampClass()

	continuesOnSameClass := in.Equal(obviousCandidate)

	return (hasHighPriority && continuesOnSameClass && !passingRamp) ||
		(!obviousCandidate.IsLowPriorityRoadClass() &&
			!in.IsLowPriorityRoadClass() &&
			compareCandidate.IsLowPriorityRoadClass())
}

// ObviousByRoadClassOld is the legacy obviousness strategy. It flattens every
// link class onto the generic link road priority and skips the motorway and
// ramp special cases of ObviousByRoadClass. Kept as an independently callable
// strategy until its remaining callers are retired.
func ObviousByRoadClassOld(in, obviousCandidate, compareCandidate RoadClassification) bool {
	firstPriority := obviousCandidate.GetPriority()
	if obviousCandidate.IsLinkClass() {
		firstPriority = uint32(PriorityLinkRoad)
	}
	secondPriority := compareCandidate.GetPriority()
	if compareCandidate.IsLinkClass() {
		secondPriority = uint32(PriorityLinkRoad)
	}

	hasHighPriority := PriorityDistinctionFactor*int(firstPriority) < int(secondPriority)

	continuesOnSameClass := in.Equal(obviousCandidate)

	return (hasHighPriority && continuesOnSameClass) ||
		(!obviousCandidate.IsLowPriorityRoadClass() &&
			!in.IsLowPriorityRoadClass() &&
			compareCandidate.IsLowPriorityRoadClass())
}
