package http

import (
	"net/http"

	"github.com/aussiebroadwan/lessondesk/internal/devapi/service"
	"github.com/aussiebroadwan/lessondesk/pkg/httpx"
)

type StudentsHandler struct {
	LessonService *service.LessonService
}

// List serves GET /api/students/.
func (h *StudentsHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerFrom(r)
	students, err := h.LessonService.ListStudents(r.Context(), caller)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, students)
}

// Create serves POST /api/students/.
func (h *StudentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.StudentInput
	if !httpx.DecodeJSON(w, r, &in) {
		return
	}

	caller, _ := callerFrom(r)
	st, err := h.LessonService.CreateStudent(r.Context(), caller, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, st)
}

type CoursesHandler struct {
	LessonService *service.LessonService
}

// List serves GET /api/courses/.
func (h *CoursesHandler) List(w http.ResponseWriter, r *http.Request) {
	courses, err := h.LessonService.ListCourses(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, courses)
}

// Create serves POST /api/courses/ (admin only).
func (h *CoursesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CourseInput
	if !httpx.DecodeJSON(w, r, &in) {
		return
	}

	c, err := h.LessonService.CreateCourse(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, c)
}
