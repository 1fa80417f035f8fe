package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/kfc-academy/learning-service/internal/models"
	"github.com/kfc-academy/learning-service/internal/repositories"
)

// fakeRepo is an in-memory Repository used by the service tests. It
// mirrors the persistence contracts the services rely on: not-found is
// gorm.ErrRecordNotFound, Upsert keeps one row per (user, question),
// GetOrCreate is idempotent.
type fakeRepo struct {
	mu sync.Mutex

	courses     map[uint]*models.Course
	modules     map[uint]*models.CourseModule
	topics      map[uint]*models.ModuleTopic
	quizzes     map[uint]*models.ModuleQuiz
	questions   map[uint]*models.QuizQuestion
	submissions map[string]*models.QuizSubmission
	progress    map[string]*models.ModuleProgress
	enrollments map[string]*models.CourseEnrollment
	discussions map[uint]*models.CourseDiscussion
	users       map[uint]*models.User

	nextID uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		courses:     make(map[uint]*models.Course),
		modules:     make(map[uint]*models.CourseModule),
		topics:      make(map[uint]*models.ModuleTopic),
		quizzes:     make(map[uint]*models.ModuleQuiz),
		questions:   make(map[uint]*models.QuizQuestion),
		submissions: make(map[string]*models.QuizSubmission),
		progress:    make(map[string]*models.ModuleProgress),
		enrollments: make(map[string]*models.CourseEnrollment),
		discussions: make(map[uint]*models.CourseDiscussion),
		users:       make(map[uint]*models.User),
	}
}

func (f *fakeRepo) id() uint {
	f.nextID++
	return f.nextID
}

func pairKey(a, b uint) string {
	return fmt.Sprintf("%d:%d", a, b)
}

func (f *fakeRepo) Course() repositories.CourseRepository         { return fakeCourseRepo{f} }
func (f *fakeRepo) Module() repositories.ModuleRepository         { return fakeModuleRepo{f} }
func (f *fakeRepo) Topic() repositories.TopicRepository           { return fakeTopicRepo{f} }
func (f *fakeRepo) Quiz() repositories.QuizRepository             { return fakeQuizRepo{f} }
func (f *fakeRepo) Question() repositories.QuestionRepository     { return fakeQuestionRepo{f} }
func (f *fakeRepo) Submission() repositories.SubmissionRepository { return fakeSubmissionRepo{f} }
func (f *fakeRepo) Progress() repositories.ProgressRepository     { return fakeProgressRepo{f} }
func (f *fakeRepo) Enrollment() repositories.EnrollmentRepository { return fakeEnrollmentRepo{f} }
func (f *fakeRepo) Discussion() repositories.DiscussionRepository { return fakeDiscussionRepo{f} }
func (f *fakeRepo) User() repositories.UserRepository             { return fakeUserRepo{f} }

func (f *fakeRepo) Transaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(f)
}

// ===== COURSES =====

type fakeCourseRepo struct{ *fakeRepo }

func (r fakeCourseRepo) Create(ctx context.Context, course *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	course.ID = r.id()
	r.courses[course.ID] = course
	return nil
}

func (r fakeCourseRepo) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	course, ok := r.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return course, nil
}

func (r fakeCourseRepo) GetByIDWithModules(ctx context.Context, id uint) (*models.Course, error) {
	return r.GetByID(ctx, id)
}

func (r fakeCourseRepo) Update(ctx context.Context, course *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[course.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.courses[course.ID] = course
	return nil
}

func (r fakeCourseRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.courses, id)
	return nil
}

func (r fakeCourseRepo) List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Course, 0, len(r.courses))
	for _, c := range r.courses {
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

func (r fakeCourseRepo) TotalDurationSeconds(ctx context.Context, courseID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, topic := range r.topics {
		module, ok := r.modules[topic.ModuleID]
		if ok && module.CourseID == courseID {
			total += topic.DurationSeconds
		}
	}
	return total, nil
}

// ===== MODULES =====

type fakeModuleRepo struct{ *fakeRepo }

func (r fakeModuleRepo) Create(ctx context.Context, module *models.CourseModule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	module.ID = r.id()
	r.modules[module.ID] = module
	return nil
}

func (r fakeModuleRepo) GetByID(ctx context.Context, id uint) (*models.CourseModule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	module, ok := r.modules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return module, nil
}

func (r fakeModuleRepo) Update(ctx context.Context, module *models.CourseModule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.modules[module.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.modules[module.ID] = module
	return nil
}

func (r fakeModuleRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.modules, id)
	return nil
}

func (r fakeModuleRepo) ListByCourse(ctx context.Context, courseID uint) ([]*models.CourseModule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.CourseModule, 0)
	for _, m := range r.modules {
		if m.CourseID == courseID {
			out = append(out, m)
		}
	}
	return out, nil
}

// ===== TOPICS =====

type fakeTopicRepo struct{ *fakeRepo }

func (r fakeTopicRepo) Create(ctx context.Context, topic *models.ModuleTopic) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	topic.ID = r.id()
	r.topics[topic.ID] = topic
	return nil
}

func (r fakeTopicRepo) GetByID(ctx context.Context, id uint) (*models.ModuleTopic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	topic, ok := r.topics[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return topic, nil
}

func (r fakeTopicRepo) GetByIDWithModule(ctx context.Context, id uint) (*models.ModuleTopic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	topic, ok := r.topics[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *topic
	if module, ok := r.modules[topic.ModuleID]; ok {
		clone.Module = module
	}
	return &clone, nil
}

func (r fakeTopicRepo) Update(ctx context.Context, topic *models.ModuleTopic) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.topics[topic.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *topic
	stored.Module = nil
	r.topics[topic.ID] = &stored
	return nil
}

func (r fakeTopicRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.topics, id)
	return nil
}

func (r fakeTopicRepo) ListByModule(ctx context.Context, moduleID uint) ([]*models.ModuleTopic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.ModuleTopic, 0)
	for _, t := range r.topics {
		if t.ModuleID == moduleID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r fakeTopicRepo) CountByModule(ctx context.Context, moduleID uint) (int64, error) {
	topics, _ := r.ListByModule(ctx, moduleID)
	return int64(len(topics)), nil
}

// ===== QUIZZES =====

type fakeQuizRepo struct{ *fakeRepo }

func (r fakeQuizRepo) Create(ctx context.Context, quiz *models.ModuleQuiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	quiz.ID = r.id()
	r.quizzes[quiz.ID] = quiz
	return nil
}

func (r fakeQuizRepo) GetByID(ctx context.Context, id uint) (*models.ModuleQuiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	quiz, ok := r.quizzes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return quiz, nil
}

func (r fakeQuizRepo) GetByIDWithQuestions(ctx context.Context, id uint) (*models.ModuleQuiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	quiz, ok := r.quizzes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *quiz
	clone.Questions = nil
	for _, q := range r.questions {
		if q.QuizID == id {
			clone.Questions = append(clone.Questions, *q)
		}
	}
	return &clone, nil
}

func (r fakeQuizRepo) Update(ctx context.Context, quiz *models.ModuleQuiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quizzes[quiz.ID] = quiz
	return nil
}

func (r fakeQuizRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.quizzes, id)
	return nil
}

func (r fakeQuizRepo) ListByModule(ctx context.Context, moduleID uint) ([]*models.ModuleQuiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.ModuleQuiz, 0)
	for _, q := range r.quizzes {
		if q.ModuleID == moduleID {
			out = append(out, q)
		}
	}
	return out, nil
}

// ===== QUESTIONS =====

type fakeQuestionRepo struct{ *fakeRepo }

func (r fakeQuestionRepo) Create(ctx context.Context, question *models.QuizQuestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	question.ID = r.id()
	r.questions[question.ID] = question
	return nil
}

func (r fakeQuestionRepo) GetByID(ctx context.Context, id uint) (*models.QuizQuestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	question, ok := r.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return question, nil
}

func (r fakeQuestionRepo) GetByIDWithQuiz(ctx context.Context, id uint) (*models.QuizQuestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	question, ok := r.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *question
	if quiz, ok := r.quizzes[question.QuizID]; ok {
		clone.Quiz = quiz
	}
	return &clone, nil
}

func (r fakeQuestionRepo) Update(ctx context.Context, question *models.QuizQuestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.questions[question.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *question
	stored.Quiz = nil
	r.questions[question.ID] = &stored
	return nil
}

func (r fakeQuestionRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.questions, id)
	return nil
}

func (r fakeQuestionRepo) ListByQuiz(ctx context.Context, quizID uint) ([]*models.QuizQuestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.QuizQuestion, 0)
	for _, q := range r.questions {
		if q.QuizID == quizID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r fakeQuestionRepo) CountByModule(ctx context.Context, moduleID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, q := range r.questions {
		quiz, ok := r.quizzes[q.QuizID]
		if ok && quiz.ModuleID == moduleID {
			count++
		}
	}
	return count, nil
}

// ===== SUBMISSIONS =====

type fakeSubmissionRepo struct{ *fakeRepo }

func (r fakeSubmissionRepo) Upsert(ctx context.Context, submission *models.QuizSubmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairKey(submission.UserID, submission.QuestionID)
	if existing, ok := r.submissions[key]; ok {
		existing.Answer = submission.Answer
		existing.IsCorrect = submission.IsCorrect
		existing.AnsweredAt = submission.AnsweredAt
		*submission = *existing
		return nil
	}
	submission.ID = r.id()
	clone := *submission
	r.submissions[key] = &clone
	return nil
}

func (r fakeSubmissionRepo) GetByUserAndQuestion(ctx context.Context, userID, questionID uint) (*models.QuizSubmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	submission, ok := r.submissions[pairKey(userID, questionID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (r fakeSubmissionRepo) ListByUserAndQuiz(ctx context.Context, userID, quizID uint) ([]*models.QuizSubmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.QuizSubmission, 0)
	for _, s := range r.submissions {
		if s.UserID != userID {
			continue
		}
		question, ok := r.questions[s.QuestionID]
		if ok && question.QuizID == quizID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r fakeSubmissionRepo) CountByUserAndModule(ctx context.Context, userID, moduleID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, s := range r.submissions {
		if s.UserID != userID {
			continue
		}
		question, ok := r.questions[s.QuestionID]
		if !ok {
			continue
		}
		quiz, ok := r.quizzes[question.QuizID]
		if ok && quiz.ModuleID == moduleID {
			count++
		}
	}
	return count, nil
}

// ===== PROGRESS =====

type fakeProgressRepo struct{ *fakeRepo }

func (r fakeProgressRepo) GetOrCreate(ctx context.Context, userID, moduleID uint) (*models.ModuleProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairKey(userID, moduleID)
	if p, ok := r.progress[key]; ok {
		return p, nil
	}
	p := &models.ModuleProgress{
		ID:       r.id(),
		UserID:   userID,
		ModuleID: moduleID,
	}
	r.progress[key] = p
	return p, nil
}

func (r fakeProgressRepo) GetForUpdate(ctx context.Context, userID, moduleID uint) (*models.ModuleProgress, error) {
	return r.Get(ctx, userID, moduleID)
}

func (r fakeProgressRepo) Get(ctx context.Context, userID, moduleID uint) (*models.ModuleProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.progress[pairKey(userID, moduleID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *p
	return &clone, nil
}

func (r fakeProgressRepo) Save(ctx context.Context, progress *models.ModuleProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *progress
	r.progress[pairKey(progress.UserID, progress.ModuleID)] = &clone
	return nil
}

func (r fakeProgressRepo) ListByUserAndCourse(ctx context.Context, userID, courseID uint) ([]*models.ModuleProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.ModuleProgress, 0)
	for _, p := range r.progress {
		if p.UserID != userID {
			continue
		}
		module, ok := r.modules[p.ModuleID]
		if ok && module.CourseID == courseID {
			out = append(out, p)
		}
	}
	return out, nil
}

// ===== ENROLLMENTS =====

type fakeEnrollmentRepo struct{ *fakeRepo }

func (r fakeEnrollmentRepo) Create(ctx context.Context, enrollment *models.CourseEnrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairKey(enrollment.UserID, enrollment.CourseID)
	if _, ok := r.enrollments[key]; ok {
		return gorm.ErrDuplicatedKey
	}
	enrollment.ID = r.id()
	r.enrollments[key] = enrollment
	return nil
}

func (r fakeEnrollmentRepo) IsEnrolled(ctx context.Context, userID, courseID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.enrollments[pairKey(userID, courseID)]
	return ok, nil
}

func (r fakeEnrollmentRepo) Unenroll(ctx context.Context, userID, courseID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.enrollments, pairKey(userID, courseID))
	return nil
}

func (r fakeEnrollmentRepo) ListByUser(ctx context.Context, userID uint) ([]*models.CourseEnrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.CourseEnrollment, 0)
	for _, e := range r.enrollments {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r fakeEnrollmentRepo) ListByCourse(ctx context.Context, courseID uint) ([]*models.CourseEnrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.CourseEnrollment, 0)
	for _, e := range r.enrollments {
		if e.CourseID == courseID {
			clone := *e
			if user, ok := r.users[e.UserID]; ok {
				clone.User = user
			}
			out = append(out, &clone)
		}
	}
	return out, nil
}

// ===== DISCUSSIONS =====

type fakeDiscussionRepo struct{ *fakeRepo }

func (r fakeDiscussionRepo) Create(ctx context.Context, discussion *models.CourseDiscussion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	discussion.ID = r.id()
	r.discussions[discussion.ID] = discussion
	return nil
}

func (r fakeDiscussionRepo) ListByCourse(ctx context.Context, courseID uint, limit, offset int) ([]*models.CourseDiscussion, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.CourseDiscussion, 0)
	for _, d := range r.discussions {
		if d.CourseID == courseID {
			out = append(out, d)
		}
	}
	return out, int64(len(out)), nil
}

func (r fakeDiscussionRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.discussions[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.discussions, id)
	return nil
}

// ===== USERS =====

type fakeUserRepo struct{ *fakeRepo }

func (r fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.id()
	r.users[user.ID] = user
	return nil
}

// ===== SEED HELPERS =====

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func (f *fakeRepo) seedUser(name, email string) *models.User {
	user := &models.User{FullName: name, Email: email, Role: models.RoleLearner}
	_ = fakeUserRepo{f}.Create(context.Background(), user)
	return user
}

func (f *fakeRepo) seedCourse(title string) *models.Course {
	course := &models.Course{Title: title, Status: models.CoursePublished}
	_ = fakeCourseRepo{f}.Create(context.Background(), course)
	return course
}

func (f *fakeRepo) seedModule(courseID uint, name string) *models.CourseModule {
	module := &models.CourseModule{CourseID: courseID, Name: name}
	_ = fakeModuleRepo{f}.Create(context.Background(), module)
	return module
}

func (f *fakeRepo) seedTopic(moduleID uint, name string, durationSeconds int64) *models.ModuleTopic {
	topic := &models.ModuleTopic{ModuleID: moduleID, Name: name, DurationSeconds: durationSeconds}
	_ = fakeTopicRepo{f}.Create(context.Background(), topic)
	return topic
}

func (f *fakeRepo) seedQuiz(moduleID uint, name string) *models.ModuleQuiz {
	quiz := &models.ModuleQuiz{ModuleID: moduleID, Name: name}
	_ = fakeQuizRepo{f}.Create(context.Background(), quiz)
	return quiz
}

func (f *fakeRepo) seedEnrollment(userID, courseID uint) *models.CourseEnrollment {
	enrollment := &models.CourseEnrollment{UserID: userID, CourseID: courseID, EnrolledAt: time.Now().UTC()}
	_ = fakeEnrollmentRepo{f}.Create(context.Background(), enrollment)
	return enrollment
}

func (f *fakeRepo) seedQuestion(quizID uint, text, correct string, options ...string) *models.QuizQuestion {
	question := &models.QuizQuestion{
		QuizID:        quizID,
		Type:          models.QuestionMultipleChoice,
		Text:          text,
		Options:       datatypes.JSONSlice[string](options),
		CorrectAnswer: correct,
		Marks:         1,
	}
	_ = fakeQuestionRepo{f}.Create(context.Background(), question)
	return question
}
