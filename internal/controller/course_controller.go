package controller

import (
	"errors"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/service"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CourseController struct {
	Catalog *service.CatalogService
	Storage *service.StorageService
}

func NewCourseController(catalog *service.CatalogService, storage *service.StorageService) *CourseController {
	return &CourseController{Catalog: catalog, Storage: storage}
}

// @Summary Create a course template
// @Tags courses
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param course body model.Course true "Course"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /courses [post]
func (c *CourseController) Create(ctx *gin.Context) {
	var course model.Course
	if err := ctx.ShouldBindJSON(&course); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if course.Title == "" || course.Type == "" {
		util.BadRequest(ctx, "'title' and 'type' fields are required")
		return
	}
	if course.Type != model.StudentCourse && course.Type != model.BusinessCourse {
		util.BadRequest(ctx, "invalid course type, must be 'Student' or 'Business'")
		return
	}

	created, err := c.Catalog.CreateCourse(&course)
	if err != nil {
		if errors.Is(err, util.ErrDuplicateCourse) {
			util.Conflict(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, created)
}

// @Summary List courses
// @Tags courses
// @Produce json
// @Param type query string false "Course type filter"
// @Param category query string false "Category filter"
// @Param search query string false "Title search"
// @Success 200 {object} util.Response
// @Router /courses [get]
func (c *CourseController) List(ctx *gin.Context) {
	filter := repository.CourseFilter{
		Type:     ctx.Query("type"),
		Category: ctx.Query("category"),
		Search:   ctx.Query("search"),
	}

	courses, err := c.Catalog.ListCourses(filter)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"count": len(courses), "courses": courses})
}

// @Summary Get a student-facing course
// @Tags courses
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /courses/{courseId} [get]
func (c *CourseController) Get(ctx *gin.Context) {
	course, err := c.Catalog.FindStudentCourse(ctx.Param("courseId"))
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, course)
}

// @Summary Delete a course template
// @Tags courses
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /courses/{courseId} [delete]
func (c *CourseController) Delete(ctx *gin.Context) {
	course, err := c.Catalog.DeleteCourse(ctx.Param("courseId"))
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	// Best-effort media cleanup; a miss leaves an orphaned object only.
	for _, mediaURL := range []string{course.Image, course.PreviewVideo, course.DownloadBrochure} {
		if mediaURL == "" {
			continue
		}
		if err := c.Storage.DeleteByURL(ctx.Request.Context(), mediaURL); err != nil {
			logger.Log.Warn("failed to delete course media",
				zap.String("url", mediaURL), zap.Error(err))
		}
	}

	util.Success(ctx, gin.H{"message": "Course deleted"})
}
