//go:build integration

package offer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "thesisflow/pkg/domain"
	"thesisflow/pkg/platform/sentinel"
	"thesisflow/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgres(s.pg.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(context.Background(), "offer_applications", "thesis_offers"))
}

func (s *PostgresStoreSuite) newOffer(tutor id.UserID) *ThesisOffer {
	max := 3
	expiry := time.Now().UTC().AddDate(0, 1, 0).Truncate(time.Microsecond)
	o, err := NewThesisOffer(id.NewOfferID(), tutor, "Master thesis: vector index tuning", "",
		id.NewSubjectAreaID(), &max, &expiry, time.Now().UTC())
	s.Require().NoError(err)
	return o
}

func (s *PostgresStoreSuite) TestOfferRoundTrip() {
	ctx := context.Background()
	o := s.newOffer(id.NewUserID())
	s.Require().NoError(s.store.CreateOffer(ctx, o))

	found, err := s.store.FindOfferByID(ctx, o.ID)
	s.Require().NoError(err)
	s.Equal(StatusOpen, found.Status)
	s.Require().NotNil(found.MaxStudents)
	s.Equal(3, *found.MaxStudents)
	s.Require().NotNil(found.ExpiresAt)
	s.True(found.ExpiresAt.Equal(*o.ExpiresAt))

	_, err = s.store.FindOfferByID(ctx, id.NewOfferID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestExecuteOfferTransition() {
	ctx := context.Background()
	o := s.newOffer(id.NewUserID())
	s.Require().NoError(s.store.CreateOffer(ctx, o))

	now := time.Now().UTC()
	closed, err := s.store.ExecuteOffer(ctx, o.ID,
		func(o *ThesisOffer) error { return o.CanClose() },
		func(o *ThesisOffer) { o.ApplyStatus(StatusClosed, now) },
	)
	s.Require().NoError(err)
	s.Equal(StatusClosed, closed.Status)

	_, err = s.store.ExecuteOffer(ctx, o.ID,
		func(o *ThesisOffer) error { return o.CanClose() },
		func(o *ThesisOffer) { o.ApplyStatus(StatusClosed, now) },
	)
	s.Require().Error(err)
}

func (s *PostgresStoreSuite) TestOpenOfferListing() {
	ctx := context.Background()
	tutor := id.NewUserID()
	first := s.newOffer(tutor)
	second := s.newOffer(tutor)
	s.Require().NoError(s.store.CreateOffer(ctx, first))
	s.Require().NoError(s.store.CreateOffer(ctx, second))

	now := time.Now().UTC()
	_, err := s.store.ExecuteOffer(ctx, second.ID,
		func(o *ThesisOffer) error { return o.CanClose() },
		func(o *ThesisOffer) { o.ApplyStatus(StatusClosed, now) },
	)
	s.Require().NoError(err)

	open, err := s.store.ListOpenOffers(ctx, nil)
	s.Require().NoError(err)
	s.Require().Len(open, 1)
	s.Equal(first.ID, open[0].ID)

	byArea, err := s.store.ListOpenOffers(ctx, &first.SubjectArea)
	s.Require().NoError(err)
	s.Len(byArea, 1)

	byTutor, err := s.store.ListOffersByTutor(ctx, tutor)
	s.Require().NoError(err)
	s.Len(byTutor, 2)
}

func (s *PostgresStoreSuite) TestApplicationLifecycle() {
	ctx := context.Background()
	o := s.newOffer(id.NewUserID())
	s.Require().NoError(s.store.CreateOffer(ctx, o))

	student := id.NewUserID()
	a, err := NewApplication(id.NewApplicationID(), o.ID, student, "interested", time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateApplication(ctx, a))

	now := time.Now().UTC()
	resolved, err := s.store.ExecuteApplication(ctx, a.ID,
		func(a *Application) error { return a.CanResolve() },
		func(a *Application) { a.ApplyResolution(true, "", now) },
	)
	s.Require().NoError(err)
	s.Equal(ApplicationAccepted, resolved.Status)

	byOffer, err := s.store.ListApplicationsByOffer(ctx, o.ID)
	s.Require().NoError(err)
	s.Len(byOffer, 1)

	byStudent, err := s.store.ListApplicationsByStudent(ctx, student)
	s.Require().NoError(err)
	s.Len(byStudent, 1)
}

func (s *PostgresStoreSuite) TestApplicationRequiresOffer() {
	a, err := NewApplication(id.NewApplicationID(), id.NewOfferID(), id.NewUserID(), "", time.Now().UTC())
	s.Require().NoError(err)
	s.ErrorIs(s.store.CreateApplication(context.Background(), a), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestOfferDeleteCascadesApplications() {
	ctx := context.Background()
	o := s.newOffer(id.NewUserID())
	s.Require().NoError(s.store.CreateOffer(ctx, o))

	a, err := NewApplication(id.NewApplicationID(), o.ID, id.NewUserID(), "", time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateApplication(ctx, a))

	_, err = s.pg.DB.ExecContext(ctx, `DELETE FROM thesis_offers WHERE id = $1`, o.ID.String())
	s.Require().NoError(err)

	_, err = s.store.FindApplicationByID(ctx, a.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
