package client

import (
	"context"
	"net/http"
	"strconv"
)

// ListClassrooms returns every classroom
func (c *Client) ListClassrooms(ctx context.Context) ([]Classroom, error) {
	req, err := c.jsonRequest("list classrooms", http.MethodGet, "/api/classroom", authRequired, nil)
	if err != nil {
		return nil, err
	}

	out := []Classroom{}
	if _, err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetClassroom returns a single classroom
func (c *Client) GetClassroom(ctx context.Context, id int) (*Classroom, error) {
	req, err := c.jsonRequest("get classroom", http.MethodGet, "/api/classroom/"+strconv.Itoa(id), authRequired, nil)
	if err != nil {
		return nil, err
	}

	out := &Classroom{}
	if _, err := c.do(ctx, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// AttendanceByStudent returns the attendance records of a student
func (c *Client) AttendanceByStudent(ctx context.Context, studentID int) ([]AttendanceRecord, error) {
	path := "/api/Attendance/AttendanceRecordThroughStudentId/" + strconv.Itoa(studentID)
	req, err := c.jsonRequest("attendance by student", http.MethodGet, path, authRequired, nil)
	if err != nil {
		return nil, err
	}

	out := []AttendanceRecord{}
	if _, err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GradesByStudent returns the grade records of a student. The API answers
// 404 when a student has no grades yet, which is reported as an empty list.
func (c *Client) GradesByStudent(ctx context.Context, studentID int) ([]GradeRecord, error) {
	path := "/api/Grade/GradeRecordByStudentId/" + strconv.Itoa(studentID)
	req, err := c.jsonRequest("grades by student", http.MethodGet, path, authRequired, nil)
	if err != nil {
		return nil, err
	}

	out := []GradeRecord{}
	if _, err := c.do(ctx, req, &out); err != nil {
		if IsNotFound(err) {
			return []GradeRecord{}, nil
		}
		return nil, err
	}
	return out, nil
}
