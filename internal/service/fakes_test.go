package service

import (
	"context"
	"sort"
	"time"

	"gymapp/internal/domain"
	"gymapp/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes. They implement the repository interfaces
// with the same ordering and error semantics as the Mongo versions.

// --- students ---

type fakeStudentRepo struct {
	students map[primitive.ObjectID]domain.Student
	order    []primitive.ObjectID // insertion order
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{students: map[primitive.ObjectID]domain.Student{}}
}

func (r *fakeStudentRepo) Create(ctx context.Context, student *domain.Student) (primitive.ObjectID, error) {
	for _, existing := range r.students {
		if existing.Username == student.Username {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	id := primitive.NewObjectID()
	student.ID = id
	student.CreatedAt = time.Now()
	student.UpdatedAt = student.CreatedAt
	r.students[id] = *student
	r.order = append(r.order, id)
	return id, nil
}

func (r *fakeStudentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Student, error) {
	student, ok := r.students[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &student, nil
}

func (r *fakeStudentRepo) GetByUsername(ctx context.Context, username string) (*domain.Student, error) {
	for _, student := range r.students {
		if student.Username == username {
			s := student
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeStudentRepo) List(ctx context.Context) ([]domain.Student, error) {
	// Newest first, like the Mongo repo's createdAt desc sort.
	out := make([]domain.Student, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		out = append(out, r.students[r.order[i]])
	}
	return out, nil
}

func (r *fakeStudentRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Student, error) {
	var out []domain.Student
	for _, id := range ids {
		if student, ok := r.students[id]; ok {
			out = append(out, student)
		}
	}
	return out, nil
}

func (r *fakeStudentRepo) Update(ctx context.Context, id primitive.ObjectID, update domain.StudentUpdate) (*domain.Student, error) {
	student, ok := r.students[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if update.Username != nil {
		for otherID, other := range r.students {
			if otherID != id && other.Username == *update.Username {
				return nil, repository.ErrDuplicate
			}
		}
		student.Username = *update.Username
	}
	if update.Name != nil {
		student.Name = *update.Name
	}
	if update.Age != nil {
		student.Age = *update.Age
	}
	if update.Goal != nil {
		student.Goal = *update.Goal
	}
	if update.MedicalNotes != nil {
		student.MedicalNotes = *update.MedicalNotes
	}
	if update.Active != nil {
		student.Active = *update.Active
	}
	if update.Password != nil {
		student.Password = *update.Password
	}
	student.UpdatedAt = time.Now()
	r.students[id] = student
	return &student, nil
}

func (r *fakeStudentRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.students[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.students, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeStudentRepo) SetPhotoKey(ctx context.Context, id primitive.ObjectID, photoKey string) error {
	student, ok := r.students[id]
	if !ok {
		return repository.ErrNotFound
	}
	student.PhotoKey = photoKey
	r.students[id] = student
	return nil
}

// --- admins ---

type fakeAdminRepo struct {
	admins map[primitive.ObjectID]domain.Admin
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{admins: map[primitive.ObjectID]domain.Admin{}}
}

func (r *fakeAdminRepo) Create(ctx context.Context, admin *domain.Admin) (primitive.ObjectID, error) {
	for _, existing := range r.admins {
		if existing.Email == admin.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	id := primitive.NewObjectID()
	admin.ID = id
	r.admins[id] = *admin
	return id, nil
}

func (r *fakeAdminRepo) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	for _, admin := range r.admins {
		if admin.Email == email {
			a := admin
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAdminRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Admin, error) {
	admin, ok := r.admins[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &admin, nil
}

// --- exercises ---

type fakeExerciseRepo struct {
	exercises map[primitive.ObjectID]domain.Exercise
}

func newFakeExerciseRepo() *fakeExerciseRepo {
	return &fakeExerciseRepo{exercises: map[primitive.ObjectID]domain.Exercise{}}
}

func (r *fakeExerciseRepo) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	exercise.ID = id
	r.exercises[id] = *exercise
	return id, nil
}

func (r *fakeExerciseRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	exercise, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &exercise, nil
}

func (r *fakeExerciseRepo) List(ctx context.Context) ([]domain.Exercise, error) {
	out := make([]domain.Exercise, 0, len(r.exercises))
	for _, exercise := range r.exercises {
		out = append(out, exercise)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeExerciseRepo) Update(ctx context.Context, exercise *domain.Exercise) error {
	if _, ok := r.exercises[exercise.ID]; !ok {
		return repository.ErrNotFound
	}
	r.exercises[exercise.ID] = *exercise
	return nil
}

func (r *fakeExerciseRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.exercises[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.exercises, id)
	return nil
}

// --- workouts + assignments ---

type fakeWorkoutRepo struct {
	workouts    map[primitive.ObjectID]domain.Workout
	order       []primitive.ObjectID
	assignments map[primitive.ObjectID]domain.WorkoutExercise

	failCreateAssignments bool
}

func newFakeWorkoutRepo() *fakeWorkoutRepo {
	return &fakeWorkoutRepo{
		workouts:    map[primitive.ObjectID]domain.Workout{},
		assignments: map[primitive.ObjectID]domain.WorkoutExercise{},
	}
}

func (r *fakeWorkoutRepo) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	workout.ID = id
	workout.CreatedAt = time.Now()
	workout.UpdatedAt = workout.CreatedAt
	r.workouts[id] = *workout
	r.order = append(r.order, id)
	return id, nil
}

func (r *fakeWorkoutRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	workout, ok := r.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &workout, nil
}

func (r *fakeWorkoutRepo) GetByStudentID(ctx context.Context, studentID primitive.ObjectID, activeOnly bool, exclude []primitive.ObjectID) ([]domain.Workout, error) {
	excluded := map[primitive.ObjectID]struct{}{}
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}
	var out []domain.Workout
	for _, id := range r.order { // creation order = createdAt asc
		w := r.workouts[id]
		if w.StudentID != studentID {
			continue
		}
		if activeOnly && !w.Active {
			continue
		}
		if _, skip := excluded[w.ID]; skip {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

func (r *fakeWorkoutRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Workout, error) {
	var out []domain.Workout
	for _, id := range ids {
		if w, ok := r.workouts[id]; ok {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *fakeWorkoutRepo) List(ctx context.Context) ([]domain.Workout, error) {
	out := make([]domain.Workout, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		out = append(out, r.workouts[r.order[i]])
	}
	return out, nil
}

func (r *fakeWorkoutRepo) Update(ctx context.Context, id primitive.ObjectID, update domain.WorkoutUpdate) (*domain.Workout, error) {
	workout, ok := r.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if update.Name != nil {
		workout.Name = *update.Name
	}
	if update.Description != nil {
		workout.Description = *update.Description
	}
	if update.WorkoutType != nil {
		workout.WorkoutType = *update.WorkoutType
	}
	if update.Active != nil {
		workout.Active = *update.Active
	}
	workout.UpdatedAt = time.Now()
	r.workouts[id] = workout
	return &workout, nil
}

func (r *fakeWorkoutRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.workouts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.workouts, id)
	for aid, a := range r.assignments {
		if a.WorkoutID == id {
			delete(r.assignments, aid)
		}
	}
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeWorkoutRepo) CreateAssignments(ctx context.Context, assignments []domain.WorkoutExercise) error {
	if r.failCreateAssignments {
		return repository.ErrUpdateFailed
	}
	for _, a := range assignments {
		a.ID = primitive.NewObjectID()
		r.assignments[a.ID] = a
	}
	return nil
}

func (r *fakeWorkoutRepo) AddAssignment(ctx context.Context, assignment *domain.WorkoutExercise) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	assignment.ID = id
	r.assignments[id] = *assignment
	return id, nil
}

func (r *fakeWorkoutRepo) GetAssignmentsByWorkoutIDs(ctx context.Context, workoutIDs []primitive.ObjectID) ([]domain.WorkoutExercise, error) {
	wanted := map[primitive.ObjectID]struct{}{}
	for _, id := range workoutIDs {
		wanted[id] = struct{}{}
	}
	var out []domain.WorkoutExercise
	for _, a := range r.assignments {
		if _, ok := wanted[a.WorkoutID]; ok {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (r *fakeWorkoutRepo) RemoveAssignment(ctx context.Context, assignmentID primitive.ObjectID) error {
	if _, ok := r.assignments[assignmentID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.assignments, assignmentID)
	return nil
}

// --- history ---

type fakeHistoryRepo struct {
	entries []domain.WorkoutHistoryEntry
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{}
}

func (r *fakeHistoryRepo) Create(ctx context.Context, entry *domain.WorkoutHistoryEntry) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	entry.ID = id
	r.entries = append(r.entries, *entry)
	return id, nil
}

func (r *fakeHistoryRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutHistoryEntry, error) {
	for _, e := range r.entries {
		if e.ID == id {
			entry := e
			return &entry, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeHistoryRepo) List(ctx context.Context, studentID *primitive.ObjectID) ([]domain.WorkoutHistoryEntry, error) {
	var out []domain.WorkoutHistoryEntry
	for _, e := range r.entries {
		if studentID != nil && e.StudentID != *studentID {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.After(out[j].CompletedAt) })
	return out, nil
}

func (r *fakeHistoryRepo) CompletedWorkoutIDs(ctx context.Context, studentID primitive.ObjectID, completionDate string) ([]primitive.ObjectID, error) {
	var out []primitive.ObjectID
	for _, e := range r.entries {
		if e.StudentID == studentID && e.CompletionDate == completionDate {
			out = append(out, e.WorkoutID)
		}
	}
	return out, nil
}

// --- file storage ---

type fakeFileStorage struct {
	deleted []string
	uploads []string
}

func (s *fakeFileStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey, contentType string, expiry time.Duration) (string, error) {
	s.uploads = append(s.uploads, objectKey)
	return "https://storage.test/upload/" + objectKey, nil
}

func (s *fakeFileStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	return "https://storage.test/download/" + objectKey, nil
}

func (s *fakeFileStorage) DeleteObject(ctx context.Context, objectKey string) error {
	s.deleted = append(s.deleted, objectKey)
	return nil
}
