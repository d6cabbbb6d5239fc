package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"strings"
	"time"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"
	"lms_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EnrollRequest is the curriculum payload of an enrollment. It arrives as
// a JSON string field beside the file parts.
type EnrollRequest struct {
	CourseID  string           `json:"courseId"`
	Badge     string           `json:"badge"`
	Level     string           `json:"level"`
	Tags      []string         `json:"tags"`
	Modules   []model.Module   `json:"modules"`
	FinalTest *model.FinalTest `json:"finalTest"`
}

// ParseEnrollRequest is strict: a payload that does not parse rejects the
// whole enrollment before any upload or write happens.
func ParseEnrollRequest(raw string) (*EnrollRequest, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("missing course payload")
	}

	var req EnrollRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return nil, fmt.Errorf("malformed course payload: %w", err)
	}
	if req.CourseID == "" {
		return nil, fmt.Errorf("courseId is required")
	}
	return &req, nil
}

type EnrollmentService struct {
	Catalog  CourseCatalog
	Students *repository.CourseStudentRepository
	Storage  *StorageService
	// MaxUploadBytes caps each uploaded file part; zero means no cap.
	MaxUploadBytes int64
}

func NewEnrollmentService(catalog CourseCatalog, students *repository.CourseStudentRepository, storage *StorageService, maxUploadBytes int64) *EnrollmentService {
	return &EnrollmentService{
		Catalog:        catalog,
		Students:       students,
		Storage:        storage,
		MaxUploadBytes: maxUploadBytes,
	}
}

// UploadAssets pushes every manifest-addressed file part to the object
// store and probes media durations on the way. Every manifest entry must
// have its file part. If any upload fails, objects uploaded so far are
// deleted best-effort and the whole operation fails; a cleanup miss is
// logged and the object stays orphaned.
func (s *EnrollmentService) UploadAssets(ctx context.Context, form *multipart.Form, refs []AssetRef) ([]UploadedAsset, error) {
	var uploaded []UploadedAsset

	cleanup := func() {
		for _, a := range uploaded {
			if err := s.Storage.DeleteByURL(ctx, a.URL); err != nil {
				logger.Log.Warn("orphaned upload left behind after failed enrollment",
					zap.String("url", a.URL), zap.Error(err))
			}
		}
	}

	for _, ref := range refs {
		headers := form.File[ref.Field]
		if len(headers) == 0 {
			cleanup()
			return nil, fmt.Errorf("%w: manifest references field %q but no file was uploaded for it", util.ErrInvalidAsset, ref.Field)
		}

		asset, err := s.uploadOne(ctx, headers[0], ref)
		if err != nil {
			cleanup()
			return nil, err
		}
		uploaded = append(uploaded, *asset)
	}

	return uploaded, nil
}

func allowedMimes(t model.ContentType) []string {
	switch t {
	case model.ContentVideo:
		return []string{util.MimeVideo, util.MimeOctetStream}
	case model.ContentAudio:
		return []string{util.MimeAudio, util.MimeVideo, util.MimeOctetStream}
	case model.ContentImage:
		return []string{util.MimeImage}
	case model.ContentPDF:
		return []string{util.MimePDF, util.MimeOctetStream}
	default:
		return nil
	}
}

func (s *EnrollmentService) uploadOne(ctx context.Context, fh *multipart.FileHeader, ref AssetRef) (*UploadedAsset, error) {
	if s.MaxUploadBytes > 0 && fh.Size > s.MaxUploadBytes {
		return nil, fmt.Errorf("%w: field %q: file exceeds the %d MB upload limit",
			util.ErrInvalidAsset, ref.Field, s.MaxUploadBytes>>20)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	// Spool to disk so the file can be sniffed and probed before upload.
	tmp, err := os.CreateTemp("", "lms-upload-*")
	if err != nil {
		return nil, err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return nil, err
	}
	tmp.Close()

	if allowed := allowedMimes(ref.Type); allowed != nil {
		f, err := os.Open(tmpPath)
		if err != nil {
			return nil, err
		}
		_, mimeErr := util.ValidateMimeType(f, allowed)
		f.Close()
		if mimeErr != nil {
			return nil, fmt.Errorf("%w: field %q: %v", util.ErrInvalidAsset, ref.Field, mimeErr)
		}
	}

	var durationHours float64
	if ref.Type == model.ContentVideo || ref.Type == model.ContentAudio {
		if info, err := util.ProbeMedia(tmpPath); err == nil {
			durationHours = info.DurationHours()
		} else {
			logger.Log.Warn("media probe failed, duration left to the payload",
				zap.String("field", ref.Field), zap.Error(err))
		}
	}

	key := BuildObjectKey(assetFolder(ref.Type), fh.Filename)
	contentType := fh.Header.Get("Content-Type")
	url, err := s.Storage.UploadFile(ctx, key, tmpPath, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload field %q: %w", ref.Field, err)
	}

	return &UploadedAsset{
		Ref:           ref,
		URL:           url,
		FileName:      fh.Filename,
		DurationHours: durationHours,
	}, nil
}

// Enroll materializes the curriculum snapshot for one user and course.
func (s *EnrollmentService) Enroll(ctx context.Context, userID uint, req *EnrollRequest, assets []UploadedAsset) (*model.EnrolledCourse, error) {
	course, err := s.Catalog.FindStudentCourse(req.CourseID)
	if err != nil {
		return nil, err
	}

	student, err := s.Students.FindOrCreateByUserID(userID)
	if err != nil {
		return nil, err
	}

	for i := range student.EnrolledCourses {
		if student.EnrolledCourses[i].CourseID == course.CourseID {
			return nil, util.ErrAlreadyEnrolled
		}
	}

	enrollment := buildSnapshot(course, req, assets)

	student.EnrolledCourses = append(student.EnrolledCourses, *enrollment)
	student.RecomputeGlobal()

	if err := s.Students.AddEnrollment(student, enrollment); err != nil {
		return nil, err
	}

	monitoring.EnrollmentCounter.Inc()
	return enrollment, nil
}

// buildSnapshot assembles the per-student copy: the submitted curriculum
// (falling back to the template's) with fresh topic ids and reset progress
// state, display fields taken from the course, and totals derived from the
// resolved content instead of anything the caller claims.
func buildSnapshot(course *model.Course, req *EnrollRequest, assets []UploadedAsset) *model.EnrolledCourse {
	modules := req.Modules
	if len(modules) == 0 {
		modules = cloneModules(course.Modules)
	}
	normalizeModules(modules)

	stats := ResolveCurriculum(modules, assets)

	level := req.Level
	if level == "" {
		level = "Beginner"
	}
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	enrollment := &model.EnrolledCourse{
		CourseID:         course.CourseID,
		Title:            course.Title,
		Image:            course.Image,
		PreviewVideo:     course.PreviewVideo,
		Badge:            req.Badge,
		Level:            level,
		Tags:             tags,
		TotalHours:       stats.TotalHours,
		Assignments:      stats.Assignments,
		Assessments:      stats.Assessments,
		Modules:          modules,
		FinalTest:        normalizeFinalTest(req.FinalTest),
		CompletedContent: []string{},
		StartedAt:        time.Now(),
	}
	enrollment.Recompute()
	return enrollment
}

func cloneModules(modules []model.Module) []model.Module {
	// The template comes out of a JSON column; a marshal round-trip is the
	// simplest deep copy for a tree of plain values.
	raw, err := json.Marshal(modules)
	if err != nil {
		return nil
	}
	var out []model.Module
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// normalizeModules resets all student-mutable state and stamps each topic
// with its per-student id. Topic ids are generated exactly once here and
// never shared with the template or other students.
func normalizeModules(modules []model.Module) {
	for mi := range modules {
		modules[mi].Completed = false
		for ti := range modules[mi].Topics {
			topic := &modules[mi].Topics[ti]
			topic.TopicID = model.GenerateUUID()
			topic.Completed = false
			for ci := range topic.Contents {
				content := &topic.Contents[ci]
				content.Completed = false
				content.Score = 0
				for qi := range content.Questions {
					content.Questions[qi].SelectedAnswer = ""
					content.Questions[qi].IsCorrect = false
				}
			}
		}
	}
}

func normalizeFinalTest(ft *model.FinalTest) *model.FinalTest {
	if ft == nil {
		return nil
	}
	out := &model.FinalTest{
		Name:      ft.Name,
		Type:      "test",
		Questions: ft.Questions,
	}
	if out.Questions == nil {
		out.Questions = []model.Question{}
	}
	for qi := range out.Questions {
		out.Questions[qi].SelectedAnswer = ""
		out.Questions[qi].IsCorrect = false
	}
	return out
}

// List returns the user's student record; a user who never enrolled gets
// an empty shell rather than an error.
func (s *EnrollmentService) List(userID uint) (*model.CourseStudent, error) {
	student, err := s.Students.FindByUserID(userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &model.CourseStudent{
				UserID:              userID,
				GlobalProgressColor: model.ColorRed,
				EnrolledCourses:     []model.EnrolledCourse{},
			}, nil
		}
		return nil, err
	}
	if student.EnrolledCourses == nil {
		student.EnrolledCourses = []model.EnrolledCourse{}
	}
	return student, nil
}

// GetCourse returns one enrollment of the user.
func (s *EnrollmentService) GetCourse(userID uint, courseID string) (*model.EnrolledCourse, error) {
	student, err := s.Students.FindByUserID(userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrStudentNotFound
		}
		return nil, err
	}
	for i := range student.EnrolledCourses {
		if student.EnrolledCourses[i].CourseID == courseID {
			return &student.EnrolledCourses[i], nil
		}
	}
	return nil, util.ErrEnrollmentNotFound
}

// AttachFinalTest attaches or overwrites the final test of an enrollment.
func (s *EnrollmentService) AttachFinalTest(userID uint, courseID string, ft *model.FinalTest) (*model.EnrolledCourse, error) {
	if ft == nil || strings.TrimSpace(ft.Name) == "" {
		return nil, fmt.Errorf("%w: final test name must not be blank", util.ErrInvalidRequest)
	}

	student, err := s.Students.FindByUserID(userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrStudentNotFound
		}
		return nil, err
	}

	var enrollment *model.EnrolledCourse
	for i := range student.EnrolledCourses {
		if student.EnrolledCourses[i].CourseID == courseID {
			enrollment = &student.EnrolledCourses[i]
			break
		}
	}
	if enrollment == nil {
		return nil, util.ErrEnrollmentNotFound
	}

	enrollment.FinalTest = normalizeFinalTest(ft)
	student.RecomputeGlobal()

	if err := s.Students.SaveEnrollment(student, enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// Delete removes an enrollment, requests deletion of each of its uploaded
// media objects (best-effort, failures logged), and refreshes the global
// rollup without the removed course.
func (s *EnrollmentService) Delete(ctx context.Context, userID uint, courseID string) error {
	student, err := s.Students.FindByUserID(userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrStudentNotFound
		}
		return err
	}

	idx := -1
	for i := range student.EnrolledCourses {
		if student.EnrolledCourses[i].CourseID == courseID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return util.ErrEnrollmentNotFound
	}

	enrollment := student.EnrolledCourses[idx]
	for _, mediaURL := range enrollment.MediaURLs() {
		if err := s.Storage.DeleteByURL(ctx, mediaURL); err != nil {
			logger.Log.Warn("failed to delete enrollment media",
				zap.String("url", mediaURL), zap.Error(err))
		}
	}

	student.EnrolledCourses = append(student.EnrolledCourses[:idx], student.EnrolledCourses[idx+1:]...)
	student.RecomputeGlobal()

	return s.Students.RemoveEnrollment(student, &enrollment)
}
