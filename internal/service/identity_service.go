package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ptdat2/Magpie/internal/model"
	"github.com/ptdat2/Magpie/internal/normalize"
	"github.com/ptdat2/Magpie/internal/repository"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// IdentityService resolves the students and tests referenced by incoming
// attempt events, creating them on first sight.
type IdentityService interface {
	// ResolveStudent finds or creates the student for the given raw contact
	// fields. It returns model.ErrNoIdentity when neither the email nor the
	// phone survives normalization.
	ResolveStudent(ctx context.Context, fullName string, email, phone *string) (*model.Student, error)
	// ResolveTest finds or creates the test by name. The metadata of the
	// first event that mentions a test wins; later events never overwrite it.
	ResolveTest(ctx context.Context, name string, maxMarks int, scheme model.MarkingScheme) (*model.Test, error)
}

type identityService struct {
	studentRepo  repository.StudentRepository
	testRepo     repository.TestRepository
	studentGroup singleflight.Group
	testGroup    singleflight.Group
}

func NewIdentityService(studentRepo repository.StudentRepository, testRepo repository.TestRepository) IdentityService {
	return &identityService{studentRepo: studentRepo, testRepo: testRepo}
}

func (s *identityService) ResolveStudent(ctx context.Context, fullName string, email, phone *string) (*model.Student, error) {
	var (
		normEmail, normPhone string
		emailOK, phoneOK     bool
	)
	if email != nil {
		normEmail, _, emailOK = normalize.Email(*email)
	}
	if phone != nil {
		normPhone, phoneOK = normalize.Phone(*phone)
	}
	if !emailOK && !phoneOK {
		return nil, model.ErrNoIdentity
	}

	// Concurrent events for the same person collapse onto one lookup-or-create.
	key := "phone:" + normPhone
	if emailOK {
		key = "email:" + normEmail
	}

	v, err, _ := s.studentGroup.Do(key, func() (interface{}, error) {
		return s.resolveStudent(ctx, fullName, email, phone, normEmail, normPhone, emailOK, phoneOK)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Student), nil
}

func (s *identityService) resolveStudent(ctx context.Context, fullName string, email, phone *string, normEmail, normPhone string, emailOK, phoneOK bool) (*model.Student, error) {
	student, err := s.findStudent(ctx, normEmail, normPhone, emailOK, phoneOK)
	if err != nil {
		return nil, err
	}
	if student != nil {
		if err := s.enrichStudent(ctx, student, fullName, email, phone, normEmail, normPhone, emailOK, phoneOK); err != nil {
			return nil, err
		}
		return student, nil
	}

	student = &model.Student{FullName: normalize.Name(fullName)}
	if email != nil && strings.TrimSpace(*email) != "" {
		trimmed := strings.TrimSpace(*email)
		student.Email = &trimmed
	}
	if phone != nil && strings.TrimSpace(*phone) != "" {
		trimmed := strings.TrimSpace(*phone)
		student.Phone = &trimmed
	}
	if emailOK {
		student.NormalizedEmail = &normEmail
	}
	if phoneOK {
		student.NormalizedPhone = &normPhone
	}

	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}
	if student.ID != 0 {
		zerolog.Ctx(ctx).Info().Uint("studentID", student.ID).Str("fullName", student.FullName).Msg("ResolveStudent: created new student")
		return student, nil
	}

	// Another writer inserted the same identity first; the conflict was
	// swallowed, so fetch the winning row.
	existing, err := s.findStudent(ctx, normEmail, normPhone, emailOK, phoneOK)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("student vanished after insert conflict (email=%q phone=%q)", normEmail, normPhone)
	}
	return existing, nil
}

// findStudent looks the student up by normalized email first, then by
// normalized phone, so events carrying a new email still land on the student
// created earlier from the same phone number.
func (s *identityService) findStudent(ctx context.Context, normEmail, normPhone string, emailOK, phoneOK bool) (*model.Student, error) {
	if emailOK {
		student, err := s.studentRepo.FindByNormalizedEmail(ctx, normEmail)
		if err == nil {
			return student, nil
		}
		if err != model.ErrNotFound {
			return nil, fmt.Errorf("failed to find student by email: %w", err)
		}
	}
	if phoneOK {
		student, err := s.studentRepo.FindByNormalizedPhone(ctx, normPhone)
		if err == nil {
			return student, nil
		}
		if err != model.ErrNotFound {
			return nil, fmt.Errorf("failed to find student by phone: %w", err)
		}
	}
	return nil, nil
}

// enrichStudent backfills contact fields the stored row is missing and keeps
// the longest seen variant of the name. Normalized keys are never replaced
// once set.
func (s *identityService) enrichStudent(ctx context.Context, student *model.Student, fullName string, email, phone *string, normEmail, normPhone string, emailOK, phoneOK bool) error {
	changed := false

	if name := normalize.Name(fullName); len(name) > len(student.FullName) {
		student.FullName = name
		changed = true
	}
	if student.Email == nil && email != nil && strings.TrimSpace(*email) != "" {
		trimmed := strings.TrimSpace(*email)
		student.Email = &trimmed
		changed = true
	}
	if student.NormalizedEmail == nil && emailOK {
		student.NormalizedEmail = &normEmail
		changed = true
	}
	if student.Phone == nil && phone != nil && strings.TrimSpace(*phone) != "" {
		trimmed := strings.TrimSpace(*phone)
		student.Phone = &trimmed
		changed = true
	}
	if student.NormalizedPhone == nil && phoneOK {
		student.NormalizedPhone = &normPhone
		changed = true
	}

	if !changed {
		return nil
	}
	if err := s.studentRepo.Update(ctx, student); err != nil {
		return fmt.Errorf("failed to update student %d: %w", student.ID, err)
	}
	return nil
}

func (s *identityService) ResolveTest(ctx context.Context, name string, maxMarks int, scheme model.MarkingScheme) (*model.Test, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Unknown Test"
	}

	v, err, _ := s.testGroup.Do(name, func() (interface{}, error) {
		test, err := s.testRepo.FindByName(ctx, name)
		if err == nil {
			return test, nil
		}
		if err != model.ErrNotFound {
			return nil, fmt.Errorf("failed to find test %q: %w", name, err)
		}

		test = &model.Test{Name: name, MaxMarks: maxMarks, MarkingScheme: scheme}
		if err := s.testRepo.Create(ctx, test); err != nil {
			return nil, fmt.Errorf("failed to create test %q: %w", name, err)
		}
		if test.ID != 0 {
			zerolog.Ctx(ctx).Info().Uint("testID", test.ID).Str("name", name).Msg("ResolveTest: created new test")
			return test, nil
		}
		return s.testRepo.FindByName(ctx, name)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Test), nil
}
