package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"gymapp/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newStudentServiceForTest() (StudentService, *fakeStudentRepo, *fakeFileStorage) {
	repo := newFakeStudentRepo()
	files := &fakeFileStorage{}
	return NewStudentService(repo, files), repo, files
}

func validStudentInput() CreateStudentInput {
	return CreateStudentInput{
		Name:     "Maria Silva",
		Age:      28,
		Goal:     "Hypertrophy",
		Username: "maria",
		Password: "secret123",
	}
}

func TestCreateStudentDefaults(t *testing.T) {
	svc, _, _ := newStudentServiceForTest()
	ownerID := primitive.NewObjectID()

	student, err := svc.CreateStudent(context.Background(), ownerID, validStudentInput())
	if err != nil {
		t.Fatalf("CreateStudent: %v", err)
	}
	if !student.Active {
		t.Error("new student should be active by default")
	}
	if student.OwnerID != ownerID {
		t.Errorf("owner = %s, want %s", student.OwnerID.Hex(), ownerID.Hex())
	}
	if student.Password != "secret123" {
		t.Errorf("supplied password was not kept: %q", student.Password)
	}
}

func TestCreateStudentGeneratesPassword(t *testing.T) {
	svc, _, _ := newStudentServiceForTest()

	input := validStudentInput()
	input.Password = ""
	student, err := svc.CreateStudent(context.Background(), primitive.NewObjectID(), input)
	if err != nil {
		t.Fatalf("CreateStudent: %v", err)
	}
	if len(student.Password) != 8 {
		t.Fatalf("generated password %q, want 8 characters", student.Password)
	}
	for _, c := range student.Password {
		if !strings.ContainsRune(passwordChars, c) {
			t.Errorf("generated password contains %q outside the allowed set", c)
		}
	}
}

func TestCreateStudentAgeBounds(t *testing.T) {
	svc, _, _ := newStudentServiceForTest()

	for _, age := range []int{10, 11, 121, 200, 0, -3} {
		input := validStudentInput()
		input.Age = age
		_, err := svc.CreateStudent(context.Background(), primitive.NewObjectID(), input)

		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("age %d: got %v, want ValidationError", age, err)
		}
		if validationErr.Field != "age" {
			t.Errorf("age %d: field = %q, want \"age\"", age, validationErr.Field)
		}
		if validationErr.Message != "age must be between 12 and 120" {
			t.Errorf("age %d: message = %q", age, validationErr.Message)
		}
	}

	// Boundary values are accepted.
	for _, age := range []int{12, 120} {
		input := validStudentInput()
		input.Age = age
		input.Username = fmt.Sprintf("maria%d", age)
		if _, err := svc.CreateStudent(context.Background(), primitive.NewObjectID(), input); err != nil {
			t.Errorf("age %d should be valid, got %v", age, err)
		}
	}
}

func TestCreateStudentRequiredFields(t *testing.T) {
	svc, _, _ := newStudentServiceForTest()

	cases := []struct {
		field  string
		mutate func(*CreateStudentInput)
	}{
		{"name", func(in *CreateStudentInput) { in.Name = "  " }},
		{"goal", func(in *CreateStudentInput) { in.Goal = "" }},
		{"username", func(in *CreateStudentInput) { in.Username = "" }},
	}
	for _, tc := range cases {
		input := validStudentInput()
		tc.mutate(&input)
		_, err := svc.CreateStudent(context.Background(), primitive.NewObjectID(), input)

		var validationErr *ValidationError
		if !errors.As(err, &validationErr) || validationErr.Field != tc.field {
			t.Errorf("missing %s: got %v", tc.field, err)
		}
	}
}

func TestCreateStudentDuplicateUsername(t *testing.T) {
	svc, _, _ := newStudentServiceForTest()
	ownerID := primitive.NewObjectID()

	if _, err := svc.CreateStudent(context.Background(), ownerID, validStudentInput()); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.CreateStudent(context.Background(), ownerID, validStudentInput())
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("got %v, want ErrUsernameTaken", err)
	}
}

func TestListStudentsNewestFirst(t *testing.T) {
	svc, _, _ := newStudentServiceForTest()
	ownerID := primitive.NewObjectID()

	for _, name := range []string{"First", "Second", "Third"} {
		input := validStudentInput()
		input.Name = name
		input.Username = strings.ToLower(name)
		if _, err := svc.CreateStudent(context.Background(), ownerID, input); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	students, err := svc.ListStudents(context.Background())
	if err != nil {
		t.Fatalf("ListStudents: %v", err)
	}
	if len(students) != 3 {
		t.Fatalf("got %d students, want 3", len(students))
	}
	if students[0].Name != "Third" || students[2].Name != "First" {
		t.Errorf("order = [%s %s %s], want newest first", students[0].Name, students[1].Name, students[2].Name)
	}
}

func TestToggleStudentStatusRoundTrip(t *testing.T) {
	svc, _, _ := newStudentServiceForTest()

	student, err := svc.CreateStudent(context.Background(), primitive.NewObjectID(), validStudentInput())
	if err != nil {
		t.Fatalf("CreateStudent: %v", err)
	}

	toggled, err := svc.ToggleStudentStatus(context.Background(), student.ID)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if toggled.Active {
		t.Error("after first toggle student should be inactive")
	}

	toggled, err = svc.ToggleStudentStatus(context.Background(), student.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if !toggled.Active {
		t.Error("two toggles should restore the original state")
	}
}

func TestUpdateStudentPartial(t *testing.T) {
	svc, _, _ := newStudentServiceForTest()

	student, err := svc.CreateStudent(context.Background(), primitive.NewObjectID(), validStudentInput())
	if err != nil {
		t.Fatalf("CreateStudent: %v", err)
	}

	newGoal := "Weight loss"
	updated, err := svc.UpdateStudent(context.Background(), student.ID, domain.StudentUpdate{Goal: &newGoal})
	if err != nil {
		t.Fatalf("UpdateStudent: %v", err)
	}
	if updated.Goal != newGoal {
		t.Errorf("goal = %q, want %q", updated.Goal, newGoal)
	}
	if updated.Name != student.Name || updated.Age != student.Age {
		t.Error("fields absent from the update must be untouched")
	}

	badAge := 7
	_, err = svc.UpdateStudent(context.Background(), student.ID, domain.StudentUpdate{Age: &badAge})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("invalid age update: got %v, want ValidationError", err)
	}
}

func TestDeleteStudentNotFound(t *testing.T) {
	svc, _, _ := newStudentServiceForTest()

	err := svc.DeleteStudent(context.Background(), primitive.NewObjectID())
	if !errors.Is(err, ErrStudentNotFound) {
		t.Fatalf("got %v, want ErrStudentNotFound", err)
	}
}

func TestPhotoUploadFlow(t *testing.T) {
	svc, repo, files := newStudentServiceForTest()

	student, err := svc.CreateStudent(context.Background(), primitive.NewObjectID(), validStudentInput())
	if err != nil {
		t.Fatalf("CreateStudent: %v", err)
	}

	// Non-image content types are rejected up front.
	if _, err := svc.RequestPhotoUploadURL(context.Background(), student.ID, "application/pdf"); !errors.Is(err, ErrInvalidPhotoType) {
		t.Fatalf("pdf upload: got %v, want ErrInvalidPhotoType", err)
	}

	resp, err := svc.RequestPhotoUploadURL(context.Background(), student.ID, "image/jpeg")
	if err != nil {
		t.Fatalf("RequestPhotoUploadURL: %v", err)
	}
	if !strings.HasPrefix(resp.ObjectKey, "photos/"+student.ID.Hex()+"/") {
		t.Errorf("object key %q not scoped to the student", resp.ObjectKey)
	}
	if !strings.HasSuffix(resp.ObjectKey, ".jpeg") {
		t.Errorf("object key %q missing content-type extension", resp.ObjectKey)
	}

	if _, err := svc.ConfirmPhotoUpload(context.Background(), student.ID, resp.ObjectKey); err != nil {
		t.Fatalf("ConfirmPhotoUpload: %v", err)
	}
	stored, _ := repo.GetByID(context.Background(), student.ID)
	if stored.PhotoKey != resp.ObjectKey {
		t.Errorf("photo key = %q, want %q", stored.PhotoKey, resp.ObjectKey)
	}

	// Replacing the photo deletes the previous object.
	second, err := svc.RequestPhotoUploadURL(context.Background(), student.ID, "image/png")
	if err != nil {
		t.Fatalf("second RequestPhotoUploadURL: %v", err)
	}
	if _, err := svc.ConfirmPhotoUpload(context.Background(), student.ID, second.ObjectKey); err != nil {
		t.Fatalf("second ConfirmPhotoUpload: %v", err)
	}
	if len(files.deleted) != 1 || files.deleted[0] != resp.ObjectKey {
		t.Errorf("previous object not cleaned up, deleted = %v", files.deleted)
	}

	url, err := svc.GetPhotoDownloadURL(context.Background(), student.ID)
	if err != nil {
		t.Fatalf("GetPhotoDownloadURL: %v", err)
	}
	if !strings.Contains(url, second.ObjectKey) {
		t.Errorf("download URL %q does not reference the stored key", url)
	}
}

func TestGetPhotoDownloadURLWithoutPhoto(t *testing.T) {
	svc, _, _ := newStudentServiceForTest()

	student, err := svc.CreateStudent(context.Background(), primitive.NewObjectID(), validStudentInput())
	if err != nil {
		t.Fatalf("CreateStudent: %v", err)
	}
	if _, err := svc.GetPhotoDownloadURL(context.Background(), student.ID); !errors.Is(err, ErrStudentHasNoPhoto) {
		t.Fatalf("got %v, want ErrStudentHasNoPhoto", err)
	}
}
