package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"thesisflow/internal/identity"
	"thesisflow/internal/offer"
	"thesisflow/internal/supervision"
	"thesisflow/internal/thesis"
	id "thesisflow/pkg/domain"
	auditmem "thesisflow/pkg/platform/audit/store/memory"
)

// TestWorkflowEndToEnd walks the whole supervision story through the
// composed services: offer published, student applies and is accepted,
// thesis registered, supervision requested and accepted, co-supervisor
// added, thesis submitted and defended.
func TestWorkflowEndToEnd(t *testing.T) {
	ctx := context.Background()
	oracle := identity.NewMemoryOracle()
	application := New(Stores{
		Theses:   thesis.NewMemoryStore(),
		Requests: supervision.NewMemoryStore(),
		Offers:   offer.NewMemoryStore(),
	}, oracle, auditmem.New())

	student := id.NewUserID()
	tutor := id.NewUserID()
	coTutor := id.NewUserID()
	area := id.NewSubjectAreaID()
	oracle.GrantRole(student, identity.RoleStudent)
	oracle.GrantRole(tutor, identity.RoleTutor)
	oracle.GrantRole(coTutor, identity.RoleTutor)
	oracle.AssociateSubjectArea(tutor, area)
	oracle.AssociateSubjectArea(coTutor, area)

	// tutor advertises, student applies, tutor accepts
	off, err := application.Offers.CreateOffer(ctx, offer.CreateOfferInput{
		Tutor:       tutor,
		Title:       "Consensus tracing",
		SubjectArea: area,
	})
	require.NoError(t, err)
	app2, err := application.Offers.Apply(ctx, off.ID, student, "seminar alumn")
	require.NoError(t, err)
	_, err = application.Offers.RespondToApplication(ctx, app2.ID, tutor, true, "")
	require.NoError(t, err)

	// thesis registered, supervision requested and accepted
	th, err := application.Theses.CreateThesis(ctx, "Consensus tracing in practice", "", student, &area)
	require.NoError(t, err)
	req, err := application.Requests.CreateRequest(ctx, supervision.CreateRequestInput{
		Requester: student,
		ThesisID:  th.ID,
		Receiver:  tutor,
		Type:      supervision.TypeSupervision,
	})
	require.NoError(t, err)
	_, err = application.Requests.Respond(ctx, req.ID, tutor, true, "")
	require.NoError(t, err)

	// primary tutor brings in a co-supervisor
	coReq, err := application.Requests.CreateRequest(ctx, supervision.CreateRequestInput{
		Requester: tutor,
		ThesisID:  th.ID,
		Receiver:  coTutor,
		Type:      supervision.TypeCoSupervision,
	})
	require.NoError(t, err)
	_, err = application.Requests.Respond(ctx, coReq.ID, coTutor, true, "")
	require.NoError(t, err)

	// lifecycle completes
	_, err = application.Theses.Submit(ctx, th.ID)
	require.NoError(t, err)
	defended, err := application.Theses.Defend(ctx, th.ID)
	require.NoError(t, err)
	require.Equal(t, thesis.StatusDefended, defended.Status)
	require.Equal(t, tutor, *defended.Tutor)
	require.Equal(t, coTutor, *defended.SecondSupervisor)

	// audit trail captured the journey
	trail, err := application.Auditor.List(ctx, th.ID.String())
	require.NoError(t, err)
	require.NotEmpty(t, trail)
}

// TestDeleteCascade verifies the wiring removes a thesis's requests
// when the thesis goes.
func TestDeleteCascade(t *testing.T) {
	ctx := context.Background()
	oracle := identity.NewMemoryOracle()
	application := New(Stores{
		Theses:   thesis.NewMemoryStore(),
		Requests: supervision.NewMemoryStore(),
		Offers:   offer.NewMemoryStore(),
	}, oracle, auditmem.New())

	student := id.NewUserID()
	tutor := id.NewUserID()
	oracle.GrantRole(student, identity.RoleStudent)
	oracle.GrantRole(tutor, identity.RoleTutor)

	th, err := application.Theses.CreateThesis(ctx, "Short-lived", "", student, nil)
	require.NoError(t, err)
	_, err = application.Requests.CreateRequest(ctx, supervision.CreateRequestInput{
		Requester: student,
		ThesisID:  th.ID,
		Receiver:  tutor,
		Type:      supervision.TypeSupervision,
	})
	require.NoError(t, err)

	require.NoError(t, application.Theses.Delete(ctx, th.ID))

	remaining, err := application.Requests.ListByThesis(ctx, th.ID)
	require.NoError(t, err)
	require.Empty(t, remaining)
}
