package wizard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/thevivek0408/couchsurfing-sub002/pkg/service"
)

// BaseRoute prefixes every wizard route.
const BaseRoute = "/leave-reference"

var (
	// ErrInvalidStep is returned for a step name outside the wizard.
	ErrInvalidStep = errors.New("invalid reference step")

	// ErrInvalidReferenceType is returned for a type other than friend,
	// surfed or hosted.
	ErrInvalidReferenceType = errors.New("invalid reference type")

	// ErrInvalidRoute is returned when a path is not a wizard route.
	ErrInvalidRoute = errors.New("invalid leave-reference route")
)

// Step is one view of the wizard.
type Step string

const (
	StepAppropriate Step = "appropriate"
	StepRating      Step = "rating"
	StepReference   Step = "reference"
	StepSubmit      Step = "submit"
)

// Steps lists the wizard steps in order.
var Steps = []Step{StepAppropriate, StepRating, StepReference, StepSubmit}

// ParseStep parses a route step. The empty string is the first step.
func ParseStep(s string) (Step, error) {
	if s == "" {
		return StepAppropriate, nil
	}
	for _, step := range Steps {
		if string(step) == s {
			return step, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStep, s)
}

func (s Step) index() int {
	for i, step := range Steps {
		if step == s {
			return i
		}
	}
	return -1
}

// Next returns the step after s. The last step is its own successor.
func (s Step) Next() Step {
	i := s.index()
	if i < 0 || i == len(Steps)-1 {
		return s
	}
	return Steps[i+1]
}

// ReferenceType is the relation the reference is about, as it appears in
// routes.
type ReferenceType string

const (
	TypeFriend ReferenceType = "friend"
	TypeSurfed ReferenceType = "surfed"
	TypeHosted ReferenceType = "hosted"
)

var serviceTypes = map[ReferenceType]service.ReferenceType{
	TypeFriend: service.ReferenceTypeFriend,
	TypeSurfed: service.ReferenceTypeSurfed,
	TypeHosted: service.ReferenceTypeHosted,
}

// ParseReferenceType parses a route reference type.
func ParseReferenceType(s string) (ReferenceType, error) {
	t := ReferenceType(s)
	if _, ok := serviceTypes[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidReferenceType, s)
	}
	return t, nil
}

// ServiceType returns the backend reference type.
func (t ReferenceType) ServiceType() service.ReferenceType {
	return serviceTypes[t]
}

// IsHostRequest reports whether t is about a stay rather than a friendship.
func (t ReferenceType) IsHostRequest() bool {
	return t == TypeSurfed || t == TypeHosted
}

// Target identifies who the reference is for. HostRequestID is set for
// surfed and hosted references only.
type Target struct {
	Type          ReferenceType
	UserID        int64
	HostRequestID int64
}

// Validate checks that t names a writable reference.
func (t Target) Validate() error {
	if _, ok := serviceTypes[t.Type]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidReferenceType, t.Type)
	}
	if t.UserID <= 0 {
		return fmt.Errorf("%w: user id required", ErrInvalidRoute)
	}
	if t.Type.IsHostRequest() && t.HostRequestID <= 0 {
		return fmt.Errorf("%w: host request id required for %s references", ErrInvalidRoute, t.Type)
	}
	return nil
}

// BaseRoute is the wizard entry route, which shows the first step.
func (t Target) BaseRoute() string {
	route := fmt.Sprintf("%s/%s/%d", BaseRoute, t.Type, t.UserID)
	if t.Type.IsHostRequest() {
		route += "/" + strconv.FormatInt(t.HostRequestID, 10)
	}
	return route
}

// Route returns the route of step.
func (t Target) Route(step Step) string {
	return t.BaseRoute() + "/" + string(step)
}

// ParseRoute splits a wizard route into its target and step. A route
// without a step addresses the first step.
func ParseRoute(path string) (Target, Step, error) {
	rest, ok := strings.CutPrefix(path, BaseRoute+"/")
	if !ok {
		return Target{}, "", fmt.Errorf("%w: %q", ErrInvalidRoute, path)
	}
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	refType, err := ParseReferenceType(parts[0])
	if err != nil {
		return Target{}, "", err
	}
	target := Target{Type: refType}
	parts = parts[1:]

	ids := 1
	if refType.IsHostRequest() {
		ids = 2
	}
	if len(parts) < ids || len(parts) > ids+1 {
		return Target{}, "", fmt.Errorf("%w: %q", ErrInvalidRoute, path)
	}

	if target.UserID, err = strconv.ParseInt(parts[0], 10, 64); err != nil {
		return Target{}, "", fmt.Errorf("%w: user id %q", ErrInvalidRoute, parts[0])
	}
	if ids == 2 {
		if target.HostRequestID, err = strconv.ParseInt(parts[1], 10, 64); err != nil {
			return Target{}, "", fmt.Errorf("%w: host request id %q", ErrInvalidRoute, parts[1])
		}
	}

	var step Step
	if len(parts) > ids {
		step, err = ParseStep(parts[ids])
	} else {
		step, err = ParseStep("")
	}
	if err != nil {
		return Target{}, "", err
	}
	return target, step, target.Validate()
}
