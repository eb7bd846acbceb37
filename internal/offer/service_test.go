package offer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"thesisflow/internal/identity"
	id "thesisflow/pkg/domain"
	dErrors "thesisflow/pkg/domain-errors"
	"thesisflow/pkg/platform/audit"
	auditmem "thesisflow/pkg/platform/audit/store/memory"
	"thesisflow/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	oracle  *identity.MemoryOracle
	store   *MemoryStore
	sink    *auditmem.Store
	service *Service

	tutor   id.UserID
	student id.UserID
	area    id.SubjectAreaID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.oracle = identity.NewMemoryOracle()
	s.store = NewMemoryStore()
	s.sink = auditmem.New()
	s.service = NewService(s.store, s.oracle, WithAuditPublisher(audit.NewPublisher(s.sink)))

	s.tutor = id.NewUserID()
	s.student = id.NewUserID()
	s.area = id.NewSubjectAreaID()
	s.oracle.GrantRole(s.tutor, identity.RoleTutor)
	s.oracle.GrantRole(s.student, identity.RoleStudent)
	s.oracle.AssociateSubjectArea(s.tutor, s.area)
}

func (s *ServiceSuite) createOffer(opts ...func(*CreateOfferInput)) *ThesisOffer {
	input := CreateOfferInput{
		Tutor:       s.tutor,
		Title:       "Bachelor thesis: cache coherence tracing",
		SubjectArea: s.area,
	}
	for _, opt := range opts {
		opt(&input)
	}
	o, err := s.service.CreateOffer(context.Background(), input)
	s.Require().NoError(err)
	return o
}

func (s *ServiceSuite) TestCreateOffer() {
	ctx := context.Background()

	s.Run("tutor publishes an open offer", func() {
		o := s.createOffer()
		s.Equal(StatusOpen, o.Status)
		s.Equal(s.tutor, o.Tutor)
	})

	s.Run("rejects non-tutor author", func() {
		_, err := s.service.CreateOffer(ctx, CreateOfferInput{
			Tutor:       s.student,
			Title:       "Topic",
			SubjectArea: s.area,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("rejects subject area the tutor does not cover", func() {
		_, err := s.service.CreateOffer(ctx, CreateOfferInput{
			Tutor:       s.tutor,
			Title:       "Topic",
			SubjectArea: id.NewSubjectAreaID(),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("rejects empty title as validation failure", func() {
		_, err := s.service.CreateOffer(ctx, CreateOfferInput{
			Tutor:       s.tutor,
			SubjectArea: s.area,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestOfferTransitions() {
	ctx := context.Background()

	s.Run("tutor closes and archives", func() {
		o := s.createOffer()
		closed, err := s.service.CloseOffer(ctx, o.ID, s.tutor)
		s.Require().NoError(err)
		s.Equal(StatusClosed, closed.Status)

		archived, err := s.service.ArchiveOffer(ctx, o.ID, s.tutor)
		s.Require().NoError(err)
		s.Equal(StatusArchived, archived.Status)
	})

	s.Run("closing twice conflicts", func() {
		o := s.createOffer()
		_, err := s.service.CloseOffer(ctx, o.ID, s.tutor)
		s.Require().NoError(err)
		_, err = s.service.CloseOffer(ctx, o.ID, s.tutor)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("only the offer's tutor may transition it", func() {
		o := s.createOffer()
		other := id.NewUserID()
		s.oracle.GrantRole(other, identity.RoleTutor)
		_, err := s.service.CloseOffer(ctx, o.ID, other)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("unknown offer is not found", func() {
		_, err := s.service.CloseOffer(ctx, id.NewOfferID(), s.tutor)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Contains(err.Error(), "thesis offer not found")
	})
}

func (s *ServiceSuite) TestApply() {
	ctx := context.Background()

	s.Run("student applies to an open offer", func() {
		o := s.createOffer()
		a, err := s.service.Apply(ctx, o.ID, s.student, "I took your seminar")
		s.Require().NoError(err)
		s.Equal(ApplicationPending, a.Status)
		s.Equal(o.ID, a.OfferID)
	})

	s.Run("absent offer is not found with its own message", func() {
		_, err := s.service.Apply(ctx, id.NewOfferID(), s.student, "")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Contains(err.Error(), "thesis offer not found")
	})

	s.Run("closed offer conflicts with its own message", func() {
		o := s.createOffer()
		_, err := s.service.CloseOffer(ctx, o.ID, s.tutor)
		s.Require().NoError(err)

		_, err = s.service.Apply(ctx, o.ID, s.student, "")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Contains(err.Error(), "thesis offer does not have open state anymore")
	})

	s.Run("expired offer is treated as not open", func() {
		expiry := time.Now().Add(time.Minute)
		o := s.createOffer(func(in *CreateOfferInput) { in.ExpiresAt = &expiry })

		late := requestcontext.WithTime(ctx, expiry.Add(time.Second))
		_, err := s.service.Apply(late, o.ID, s.student, "")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Contains(err.Error(), "does not have open state anymore")
	})

	s.Run("rejects non-student applicant", func() {
		o := s.createOffer()
		_, err := s.service.Apply(ctx, o.ID, s.tutor, "")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("max students cap is not enforced at apply time", func() {
		one := 1
		o := s.createOffer(func(in *CreateOfferInput) { in.MaxStudents = &one })

		second := id.NewUserID()
		s.oracle.GrantRole(second, identity.RoleStudent)

		a1, err := s.service.Apply(ctx, o.ID, s.student, "")
		s.Require().NoError(err)
		a2, err := s.service.Apply(ctx, o.ID, second, "")
		s.Require().NoError(err)
		s.Equal(ApplicationPending, a1.Status)
		s.Equal(ApplicationPending, a2.Status)
	})
}

func (s *ServiceSuite) TestRespondToApplication() {
	ctx := context.Background()

	s.Run("tutor accepts a pending application", func() {
		o := s.createOffer()
		a, err := s.service.Apply(ctx, o.ID, s.student, "")
		s.Require().NoError(err)

		resolved, err := s.service.RespondToApplication(ctx, a.ID, s.tutor, true, "see you Monday")
		s.Require().NoError(err)
		s.Equal(ApplicationAccepted, resolved.Status)
		s.NotNil(resolved.ResolvedAt)
	})

	s.Run("only the offer's tutor may respond", func() {
		o := s.createOffer()
		a, err := s.service.Apply(ctx, o.ID, s.student, "")
		s.Require().NoError(err)

		other := id.NewUserID()
		s.oracle.GrantRole(other, identity.RoleTutor)
		_, err = s.service.RespondToApplication(ctx, a.ID, other, true, "")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("second response conflicts", func() {
		o := s.createOffer()
		a, err := s.service.Apply(ctx, o.ID, s.student, "")
		s.Require().NoError(err)

		_, err = s.service.RespondToApplication(ctx, a.ID, s.tutor, false, "")
		s.Require().NoError(err)
		_, err = s.service.RespondToApplication(ctx, a.ID, s.tutor, true, "")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Contains(err.Error(), "already resolved")
	})

	s.Run("unknown application is not found", func() {
		_, err := s.service.RespondToApplication(ctx, id.NewApplicationID(), s.tutor, true, "")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestQueries() {
	ctx := context.Background()

	s.Run("open offers filter by subject area and expiry", func() {
		s.createOffer()
		otherArea := id.NewSubjectAreaID()
		s.oracle.AssociateSubjectArea(s.tutor, otherArea)
		s.createOffer(func(in *CreateOfferInput) { in.SubjectArea = otherArea })

		expiry := time.Now().Add(time.Minute)
		expiring := s.createOffer(func(in *CreateOfferInput) { in.ExpiresAt = &expiry })

		all, err := s.service.ListOpenOffers(ctx, nil)
		s.Require().NoError(err)
		s.Len(all, 3)

		byArea, err := s.service.ListOpenOffers(ctx, &otherArea)
		s.Require().NoError(err)
		s.Len(byArea, 1)

		late := requestcontext.WithTime(ctx, expiry.Add(time.Second))
		stillOpen, err := s.service.ListOpenOffers(late, nil)
		s.Require().NoError(err)
		s.Len(stillOpen, 2)
		for _, o := range stillOpen {
			s.NotEqual(expiring.ID, o.ID)
		}
	})

	s.Run("applications list by offer and by student", func() {
		o := s.createOffer()
		_, err := s.service.Apply(ctx, o.ID, s.student, "")
		s.Require().NoError(err)

		byOffer, err := s.service.ListApplicationsByOffer(ctx, o.ID)
		s.Require().NoError(err)
		s.Len(byOffer, 1)

		byStudent, err := s.service.ListApplicationsByStudent(ctx, s.student)
		s.Require().NoError(err)
		s.Len(byStudent, 1)
	})

	s.Run("offers list by tutor", func() {
		s.createOffer()
		offers, err := s.service.ListOffersByTutor(ctx, s.tutor)
		s.Require().NoError(err)
		s.NotEmpty(offers)
	})
}
