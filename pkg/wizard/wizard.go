package wizard

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/thevivek0408/couchsurfing-sub002/pkg/cache"
	"github.com/thevivek0408/couchsurfing-sub002/pkg/queries"
	"github.com/thevivek0408/couchsurfing-sub002/pkg/service"
)

var (
	// ErrNotAvailable is returned when the caller may not write this reference.
	ErrNotAvailable = errors.New("reference type not available")

	// ErrStepSkipped is returned when a later step is answered before the
	// first one.
	ErrStepSkipped = errors.New("first step not answered")

	// ErrCompleted is returned once the reference has been written.
	ErrCompleted = errors.New("reference already submitted")
)

// Navigation is the outcome of visiting a step. When Redirected is set the
// requested step was not reachable and Step is the one to show instead.
type Navigation struct {
	Step       Step
	Route      string
	Redirected bool
}

// Wizard drives the leave-reference flow for one target. A Wizard is not
// safe for concurrent use.
type Wizard struct {
	q       *queries.Queries
	target  Target
	draft   Draft
	current Step
	done    bool
	logger  zerolog.Logger
}

// New creates a wizard with an empty draft positioned on the first step.
func New(q *queries.Queries, target Target) (*Wizard, error) {
	if q == nil {
		panic("queries cannot be nil")
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}
	return &Wizard{
		q:       q,
		target:  target,
		draft:   NewDraft(),
		current: StepAppropriate,
		logger: log.With().
			Str("component", "wizard").
			Str("type", string(target.Type)).
			Int64("user_id", target.UserID).
			Logger(),
	}, nil
}

// Target returns who the reference is for.
func (w *Wizard) Target() Target {
	return w.target
}

// Draft returns a copy of the answers collected so far.
func (w *Wizard) Draft() Draft {
	return w.draft
}

// Current returns the step last shown.
func (w *Wizard) Current() Step {
	return w.current
}

// Done reports whether the reference was written.
func (w *Wizard) Done() bool {
	return w.done
}

// Visit moves to step. Any step after the first redirects to the entry
// route while the first step is unanswered.
func (w *Wizard) Visit(step Step) Navigation {
	if step.index() < 0 {
		step = StepAppropriate
	}
	if w.draft.WasAppropriate == "" && step != StepAppropriate {
		w.current = StepAppropriate
		w.logger.Debug().Str("step", string(step)).Msg("Redirecting skipped step")
		return Navigation{Step: StepAppropriate, Route: w.target.BaseRoute(), Redirected: true}
	}
	w.current = step
	return Navigation{Step: step, Route: w.target.Route(step)}
}

// VisitRoute is Visit for a route string, which must address this wizard's
// target.
func (w *Wizard) VisitRoute(path string) (Navigation, error) {
	target, step, err := ParseRoute(path)
	if err != nil {
		return Navigation{}, err
	}
	if target != w.target {
		return Navigation{}, fmt.Errorf("%w: %q belongs to another reference", ErrInvalidRoute, path)
	}
	return w.Visit(step), nil
}

// Advance validates the answers of step, merges them into the draft and
// returns the route of the next step. Nothing is sent to the backend. A
// later step answered before the first returns the entry route together
// with ErrStepSkipped.
func (w *Wizard) Advance(step Step, answer Draft) (string, error) {
	if w.done {
		return "", ErrCompleted
	}
	nav := w.Visit(step)
	if nav.Redirected {
		return nav.Route, ErrStepSkipped
	}
	if err := w.draft.merge(step, answer); err != nil {
		return "", err
	}
	next := step.Next()
	w.current = next
	return w.target.Route(next), nil
}

// CheckAvailable reports ErrNotAvailable unless the caller may write this
// reference: friend references need a writable friendship, stay references
// need the host request among the available ones.
func (w *Wizard) CheckAvailable(ctx context.Context) error {
	available, err := w.q.AvailableWriteReferences(ctx, w.target.UserID)
	if err != nil {
		return fmt.Errorf("load available references: %w", err)
	}

	if !w.target.Type.IsHostRequest() {
		if !available.CanWriteFriendReference {
			return ErrNotAvailable
		}
		user, err := w.q.User(ctx, w.target.UserID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if user.Friends != service.FriendFriends {
			return ErrNotAvailable
		}
		return nil
	}

	if !available.HasHostRequest(w.target.HostRequestID) {
		return ErrNotAvailable
	}
	return nil
}

// Submit writes the reference from the draft. Every answer is validated
// first and availability is checked against the backend. On success the
// reference queries about the recipient are invalidated and the draft is
// discarded.
func (w *Wizard) Submit(ctx context.Context) (service.Reference, error) {
	if w.done {
		return service.Reference{}, ErrCompleted
	}
	if nav := w.Visit(StepSubmit); nav.Redirected {
		return service.Reference{}, ErrStepSkipped
	}
	if err := w.draft.Validate(); err != nil {
		return service.Reference{}, err
	}
	if err := w.CheckAvailable(ctx); err != nil {
		return service.Reference{}, err
	}

	ref, err := cache.Mutate(ctx, w.q.Cache(), w.draft, w.write, cache.MutationOptions[Draft, service.Reference]{
		OnError: func(ctx context.Context, _ Draft, err error) {
			w.logger.Warn().Err(err).Msg("Writing reference failed")
		},
		OnSuccess: func(ctx context.Context, _ Draft, ref service.Reference) {
			w.q.InvalidateReferences(w.target.UserID)
			w.logger.Info().Int64("reference_id", ref.ReferenceID).Msg("Reference written")
		},
	})
	if err != nil {
		return service.Reference{}, err
	}

	w.draft = NewDraft()
	w.done = true
	return ref, nil
}

func (w *Wizard) write(ctx context.Context, d Draft) (service.Reference, error) {
	refs := w.q.Service().References
	wasAppropriate := d.WasAppropriate == "true"

	if w.target.Type.IsHostRequest() {
		return refs.WriteHostRequestReference(ctx, service.WriteHostRequestReferenceReq{
			HostRequestID:  w.target.HostRequestID,
			Text:           d.Text,
			WasAppropriate: wasAppropriate,
			Rating:         d.Rating,
		})
	}
	return refs.WriteFriendReference(ctx, service.WriteFriendReferenceReq{
		ToUserID:       w.target.UserID,
		Text:           d.Text,
		WasAppropriate: wasAppropriate,
		Rating:         d.Rating,
	})
}
