package controller

import (
	"errors"
	"net/http"
	"strings"

	"lms_backend/internal/model"
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseStudentController struct {
	Enrollments *service.EnrollmentService
	Progress    *service.ProgressService
	Attempts    *service.AttemptService
}

func NewCourseStudentController(enrollments *service.EnrollmentService, progress *service.ProgressService, attempts *service.AttemptService) *CourseStudentController {
	return &CourseStudentController{
		Enrollments: enrollments,
		Progress:    progress,
		Attempts:    attempts,
	}
}

// @Summary Enroll in a course
// @Description Creates the student's curriculum snapshot for a course. Accepts multipart form data with a "course" JSON payload, an "assets" upload manifest and the referenced file parts, or a plain JSON body when there is nothing to upload.
// @Tags student-courses
// @Accept mpfd
// @Produce json
// @Security ApiKeyAuth
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /student-courses/enroll [post]
func (c *CourseStudentController) Enroll(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var (
		req    *service.EnrollRequest
		assets []service.UploadedAsset
		err    error
	)

	if strings.HasPrefix(ctx.ContentType(), "multipart/form-data") {
		req, err = service.ParseEnrollRequest(ctx.PostForm("course"))
		if err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}

		refs, err := service.ParseAssetManifest(ctx.PostForm("assets"))
		if err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}

		if len(refs) > 0 {
			// Every manifest entry must land on a matching node before any
			// byte reaches the object store.
			if err := service.ValidateAssetRefs(req.Modules, refs); err != nil {
				util.BadRequest(ctx, err.Error())
				return
			}

			form, err := ctx.MultipartForm()
			if err != nil {
				util.BadRequest(ctx, "invalid multipart form")
				return
			}
			assets, err = c.Enrollments.UploadAssets(ctx.Request.Context(), form, refs)
			if err != nil {
				if errors.Is(err, util.ErrInvalidAsset) {
					util.BadRequest(ctx, err.Error())
					return
				}
				util.LogInternalError(ctx, err)
				return
			}
		}
	} else {
		var body service.EnrollRequest
		if err := ctx.ShouldBindJSON(&body); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
		if body.CourseID == "" {
			util.BadRequest(ctx, "courseId is required")
			return
		}
		req = &body
	}

	enrollment, err := c.Enrollments.Enroll(ctx.Request.Context(), user.UserID, req, assets)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCourseNotFound):
			util.NotFound(ctx, err.Error())
		case errors.Is(err, util.ErrAlreadyEnrolled):
			util.Conflict(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, enrollment)
}

// @Summary List enrollments
// @Description Returns all of the user's enrolled courses together with the global progress rollup.
// @Tags student-courses
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /student-courses [get]
func (c *CourseStudentController) List(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	student, err := c.Enrollments.List(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, student)
}

// @Summary Get one enrollment
// @Tags student-courses
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /student-courses/{courseId} [get]
func (c *CourseStudentController) GetCourse(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	enrollment, err := c.Enrollments.GetCourse(user.UserID, ctx.Param("courseId"))
	if err != nil {
		c.respondEnrollmentError(ctx, err)
		return
	}

	util.Success(ctx, enrollment)
}

// @Summary Get resume checkpoint
// @Description Returns the last-watched position and completion state. Answers a zero-value checkpoint when nothing has been watched yet.
// @Tags student-courses
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Success 200 {object} util.Response
// @Router /student-courses/{courseId}/resume [get]
func (c *CourseStudentController) GetResume(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	resume, err := c.Progress.GetResume(user.UserID, ctx.Param("courseId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, resume)
}

// @Summary Update resume checkpoint
// @Description Stores the playback position, adds watched time and marks completed content, then recomputes all progress aggregates.
// @Tags student-courses
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Param checkpoint body service.ResumeUpdateRequest true "Checkpoint"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /student-courses/{courseId}/resume [put]
func (c *CourseStudentController) UpdateResume(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ResumeUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resume, err := c.Progress.UpdateResume(user.UserID, ctx.Param("courseId"), req)
	if err != nil {
		if errors.Is(err, util.ErrStudentNotFound) || errors.Is(err, util.ErrEnrollmentNotFound) {
			util.NotFound(ctx, err.Error())
			return
		}
		if errors.Is(err, util.ErrInvalidRequest) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, resume)
}

type progressUpdateRequest struct {
	WatchedHours float64 `json:"watchedHours" binding:"required"`
}

// @Summary Report watched time
// @Description Adds the reported watched hours to the enrollment and recomputes its progress.
// @Tags student-courses
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Param progress body progressUpdateRequest true "Watched hours increment"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /student-courses/{courseId}/progress [patch]
func (c *CourseStudentController) UpdateProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req progressUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	enrollment, err := c.Progress.UpdateWatched(user.UserID, ctx.Param("courseId"), req.WatchedHours)
	if err != nil {
		c.respondEnrollmentError(ctx, err)
		return
	}

	util.Success(ctx, enrollment)
}

type finalTestRequest struct {
	CourseID  string           `json:"courseId" binding:"required"`
	FinalTest *model.FinalTest `json:"finalTest" binding:"required"`
}

// @Summary Attach final test
// @Description Attaches or overwrites the final test of an enrollment.
// @Tags student-courses
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param test body finalTestRequest true "Final test"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /student-courses/final-test [post]
func (c *CourseStudentController) AttachFinalTest(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req finalTestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	enrollment, err := c.Enrollments.AttachFinalTest(user.UserID, req.CourseID, req.FinalTest)
	if err != nil {
		if errors.Is(err, util.ErrStudentNotFound) || errors.Is(err, util.ErrEnrollmentNotFound) {
			util.NotFound(ctx, err.Error())
			return
		}
		if errors.Is(err, util.ErrInvalidRequest) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, enrollment)
}

// @Summary Remove an enrollment
// @Description Deletes the enrollment, requests deletion of its uploaded media and recomputes the global rollup.
// @Tags student-courses
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /student-courses/{courseId} [delete]
func (c *CourseStudentController) Delete(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	err := c.Enrollments.Delete(ctx.Request.Context(), user.UserID, ctx.Param("courseId"))
	if err != nil {
		c.respondEnrollmentError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "Enrollment removed"})
}

// @Summary Submit a quiz or final-test attempt
// @Description Grades the submitted answers against the enrollment snapshot, records the attempt, and updates the content's score and completion. quizKey is a content position key ("m-t-c") or "final" for the final test.
// @Tags student-courses
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Param attempt body service.AttemptSubmission true "Answers"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 429 {object} util.Response
// @Router /student-courses/{courseId}/attempts [post]
func (c *CourseStudentController) SubmitAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var sub service.AttemptSubmission
	if err := ctx.ShouldBindJSON(&sub); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.Attempts.Submit(user.UserID, ctx.Param("courseId"), sub)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrStudentNotFound),
			errors.Is(err, util.ErrEnrollmentNotFound),
			errors.Is(err, util.ErrQuizNotFound):
			util.NotFound(ctx, err.Error())
		case errors.Is(err, util.ErrInvalidRequest):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrAttemptsExhausted):
			util.Error(ctx, http.StatusTooManyRequests, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, attempt)
}

// @Summary List quiz attempts for a course
// @Tags student-courses
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /student-courses/{courseId}/attempts [get]
func (c *CourseStudentController) ListAttempts(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attempts, err := c.Attempts.History(user.UserID, ctx.Param("courseId"))
	if err != nil {
		c.respondEnrollmentError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"count": len(attempts), "attempts": attempts})
}

// @Summary List all quiz attempts
// @Description Admin view over every student's attempt history, optionally filtered by course.
// @Tags student-courses
// @Produce json
// @Security ApiKeyAuth
// @Param courseId query string false "Course ID filter"
// @Success 200 {object} util.Response
// @Router /quiz-attempts [get]
func (c *CourseStudentController) ListAllAttempts(ctx *gin.Context) {
	attempts, err := c.Attempts.ListAll(ctx.Query("courseId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"count": len(attempts), "attempts": attempts})
}

func (c *CourseStudentController) respondEnrollmentError(ctx *gin.Context, err error) {
	if errors.Is(err, util.ErrStudentNotFound) || errors.Is(err, util.ErrEnrollmentNotFound) {
		util.NotFound(ctx, err.Error())
		return
	}
	util.LogInternalError(ctx, err)
}
