package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"schoolportal/internal/apperr"
	"schoolportal/internal/auth"
	"schoolportal/internal/metrics"
	"schoolportal/internal/users"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type markAttendanceRequest struct {
	StudentID numeric `form:"student_id" json:"student_id" binding:"required"`
	Status    string  `form:"status" json:"status" binding:"required"`
}

// MarkAttendance records today's status for a student.
func (h *Handler) MarkAttendance(c *gin.Context) {
	var req markAttendanceRequest
	if err := c.ShouldBind(&req); err != nil {
		writeError(c, apperr.FromValidator(err))
		return
	}
	studentID, err := req.StudentID.int64("student_id")
	if err != nil {
		writeError(c, err)
		return
	}

	rec, err := h.Attendance.Mark(c.Request.Context(), studentID, req.Status, auth.IdentityFrom(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	metrics.AttendanceMarks.WithLabelValues(rec.Status.String()).Inc()
	ok(c, "Attendance marked successfully")
}

type submitMarksRequest struct {
	StudentID numeric `form:"student_id" json:"student_id" binding:"required"`
	Subject   string  `form:"subject" json:"subject" binding:"required"`
	Marks     numeric `form:"marks" json:"marks" binding:"required"`
}

// SubmitMarks appends a mark for a student.
func (h *Handler) SubmitMarks(c *gin.Context) {
	var req submitMarksRequest
	if err := c.ShouldBind(&req); err != nil {
		writeError(c, apperr.FromValidator(err))
		return
	}
	studentID, err := req.StudentID.int64("student_id")
	if err != nil {
		writeError(c, err)
		return
	}
	marks, err := req.Marks.int("marks")
	if err != nil {
		writeError(c, err)
		return
	}

	if _, err := h.Academics.SubmitMarks(c.Request.Context(), studentID, req.Subject, marks, auth.IdentityFrom(c).ID); err != nil {
		writeError(c, err)
		return
	}
	metrics.MarksSubmitted.Inc()
	ok(c, "Marks submitted successfully")
}

// AddUser creates an account.
func (h *Handler) AddUser(c *gin.Context) {
	var req users.NewUser
	if err := c.ShouldBind(&req); err != nil {
		writeError(c, apperr.FromValidator(err))
		return
	}
	if _, err := h.Users.Add(c.Request.Context(), req); err != nil {
		writeError(c, err)
		return
	}
	ok(c, "User added successfully")
}

type deleteUserRequest struct {
	UserID numeric `form:"user_id" json:"user_id" binding:"required"`
}

// DeleteUser removes an account other than the caller's own.
func (h *Handler) DeleteUser(c *gin.Context) {
	var req deleteUserRequest
	if err := c.ShouldBind(&req); err != nil {
		writeError(c, apperr.FromValidator(err))
		return
	}
	userID, err := req.UserID.int64("user_id")
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.Users.Delete(c.Request.Context(), userID, auth.IdentityFrom(c).ID); err != nil {
		writeError(c, err)
		return
	}
	ok(c, "User deleted successfully")
}

// AttendanceReport streams the ledger as an XLSX workbook.
func (h *Handler) AttendanceReport(c *gin.Context) {
	from, to := c.Query("from"), c.Query("to")
	var buf bytes.Buffer
	if err := h.Reports.Attendance(c.Request.Context(), from, to, &buf); err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, reportFilename(from, to)))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func reportFilename(from, to string) string {
	switch {
	case from != "" && to != "":
		return "attendance_" + from + "_" + to + ".xlsx"
	case from != "":
		return "attendance_from_" + from + ".xlsx"
	case to != "":
		return "attendance_to_" + to + ".xlsx"
	}
	return "attendance.xlsx"
}
